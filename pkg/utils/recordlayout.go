package utils

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidRecordLayout = errors.New("invalid record layout")

// RecordField is a run of consecutive bytes within a record
type RecordField struct {
	Name string
	// Offset of the first byte of the field
	Offset int
	// Number of bytes of the field
	Size int
}

// Offset of the first byte past the field
func (f RecordField) End() int {
	return f.Offset + f.Size
}

// Returns the record fields with the bytes not covered by any field filled with unused fields
func fillRecordGaps(fields []RecordField, recordSize int) ([]RecordField, error) {
	result := make([]RecordField, 0, len(fields)+1)
	offset := 0

	for _, field := range fields {
		if field.Size <= 0 {
			return nil, MakeError(ErrInvalidRecordLayout, "field '%v' has size %v", field.Name, field.Size)
		}

		if field.Offset < offset {
			return nil, MakeError(ErrInvalidRecordLayout, "field '%v' at offset %v overlaps the previous field, fields must be sorted and disjoint", field.Name, field.Offset)
		}

		if field.Offset > offset {
			result = append(result, RecordField{Name: "(unused)", Offset: offset, Size: field.Offset - offset})
		}

		result = append(result, field)
		offset = field.End()
	}

	if offset > recordSize {
		return nil, MakeError(ErrInvalidRecordLayout, "fields take %v bytes but the record is only %v bytes long", offset, recordSize)
	}

	if offset < recordSize {
		result = append(result, RecordField{Name: "(unused)", Offset: offset, Size: recordSize - offset})
	}

	return result, nil
}

// Pads text on both sides up to the given width. The extra filler goes to the right
func center(text string, width int, filler string) string {
	left := (width - len(text)) / 2
	right := width - len(text) - left
	return strings.Repeat(filler, left) + text + strings.Repeat(filler, right)
}

// RecordLayout draws a record as a row of boxed fields, with the offset of each field
// above it and its size below:
//
//	0            1            2             4
//	+------------+------------+-------------+
//	|    0x01    |    dst     |     imm     |
//	+------------+------------+-------------+
//	 <- 1 byte -> <- 1 byte -> <- 2 bytes ->
//
// Bytes not covered by any field are drawn as unused fields. Fields must be sorted by
// offset and must not overlap
func RecordLayout(fields []RecordField, recordSize int, leftpad int) (string, error) {
	if recordSize <= 0 {
		return "", MakeError(ErrInvalidRecordLayout, "record size %v", recordSize)
	}

	cells, err := fillRecordGaps(fields, recordSize)
	if err != nil {
		return "", err
	}

	var offsets, border, names, sizes strings.Builder

	for _, cell := range cells {
		offset := strconv.Itoa(cell.Offset)
		name := " " + cell.Name + " "
		size := " " + strconv.Itoa(cell.Size) + " byte "
		if cell.Size > 1 {
			size = " " + strconv.Itoa(cell.Size) + " bytes "
		}

		width := max(len(offset)+1, len(name), len("<-")+len(size)+len("->"))

		offsets.WriteString(offset + strings.Repeat(" ", width+1-len(offset)))
		border.WriteString("+" + strings.Repeat("-", width))
		names.WriteString("|" + center(name, width, " "))
		sizes.WriteString(" <-" + center(size, width-len("<-")-len("->"), "-") + "->")
	}

	offsets.WriteString(strconv.Itoa(recordSize))
	border.WriteString("+")
	names.WriteString("|")

	pad := strings.Repeat(" ", leftpad)

	var result strings.Builder
	for _, row := range []string{offsets.String(), border.String(), names.String(), border.String(), sizes.String()} {
		result.WriteString(pad)
		result.WriteString(row)
		result.WriteString("\n")
	}

	return result.String(), nil
}
