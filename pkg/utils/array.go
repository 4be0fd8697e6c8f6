package utils

// Generates a sequence of n elements given a generation function
func Iota[T any](n int, gen func(int) T) []T {
	values := make([]T, n)

	for i := range values {
		values[i] = gen(i)
	}

	return values
}

// Returns a sequence of n indices
func Indices(n int) []int {
	return Iota(n, func(i int) int { return i })
}

// Splits a sequence into consecutive chunks of at most n items
func Chunks[T any](input []T, n int) [][]T {
	chunks := make([][]T, 0, (len(input)+n-1)/n)

	for begin := 0; begin < len(input); begin += n {
		end := min(begin+n, len(input))
		chunks = append(chunks, input[begin:end])
	}

	return chunks
}
