package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Manu343726/iridium/pkg/vm/instructions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProgram() []byte {
	return instructions.Encode([]instructions.Instruction{
		instructions.Load(1, 500),
		instructions.Load(3, 5),
		instructions.Add(1, 3, 6),
		instructions.Gt(1, 3, 3),
		instructions.Hlt(),
	})
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatRaw, DetectFormat("program.bin"))
	assert.Equal(t, FormatListing, DetectFormat("dir/program.yaml"))
	assert.Equal(t, FormatListing, DetectFormat("program.YML"))
	assert.Equal(t, FormatImage, DetectFormat("program.irm"))
	assert.Equal(t, FormatUnknown, DetectFormat("program.s"))
	assert.Equal(t, FormatUnknown, DetectFormat("program"))

	assert.True(t, IsSupportedFile("a.irm"))
	assert.False(t, IsSupportedFile("a.o"))
	assert.Equal(t, "listing", FormatListing.String())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	for _, ext := range []string{".bin", ".yaml", ".yml", ".irm"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "add"+ext)

			require.NoError(t, Save(path, testProgram()))

			result, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, testProgram(), result.Program)
			assert.Equal(t, DetectFormat(path), result.Format)
			assert.Equal(t, "add", result.Name)
			assert.Equal(t, path, result.Path)

			program, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, testProgram(), program)
		})
	}
}

func TestLoad_RawIsByteIdentical(t *testing.T) {
	// Raw binaries are not validated, the interpreter reports bad records when it reaches them
	raw := []byte{1, 0, 1, 244, 200, 7}
	path := filepath.Join(t.TempDir(), "raw.bin")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	program, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, raw, program)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "program.txt"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.bin"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "garbage.irm")
	require.NoError(t, os.WriteFile(path, []byte("not cbor at all"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidImage)

	path = filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("instructions:\n  - opcode: JMP\n    bytes: [0, 0, 0]\n"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, instructions.ErrIllegalOpCode)
}

func TestSave_Errors(t *testing.T) {
	dir := t.TempDir()

	err := Save(filepath.Join(dir, "program.txt"), testProgram())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	// Listings can only hold complete, legal records
	err = Save(filepath.Join(dir, "truncated.yaml"), []byte{1, 0, 1})
	assert.ErrorIs(t, err, instructions.ErrTruncatedInstruction)

	err = Save(filepath.Join(dir, "illegal.yaml"), []byte{200, 0, 0, 0})
	assert.ErrorIs(t, err, instructions.ErrIllegalOpCode)
	assert.NoFileExists(t, filepath.Join(dir, "illegal.yaml"))

	// Other containers keep any byte sequence
	require.NoError(t, Save(filepath.Join(dir, "truncated.irm"), []byte{1, 0, 1}))
	program, err := Load(filepath.Join(dir, "truncated.irm"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 1}, program)
}

func TestListing(t *testing.T) {
	data := []byte(`
name: example
instructions:
  - opcode: load
    bytes: [1, 1, 244]
  - opcode: ADD
    bytes: [1, 1, 2]
  - opcode: HLT
    bytes: [0, 0, 0]
`)

	listing, err := UnmarshalListing(data)
	require.NoError(t, err)
	assert.Equal(t, "example", listing.Name)

	instrs, err := listing.Decode()
	require.NoError(t, err)
	assert.Equal(t, []instructions.Instruction{
		instructions.Load(1, 500),
		instructions.Add(1, 1, 2),
		instructions.Hlt(),
	}, instrs)

	program, err := listing.Program()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 1, 1, 244, 2, 1, 1, 2, 0, 0, 0, 0}, program)
}

func TestListing_Marshal(t *testing.T) {
	data, err := MarshalListing(NewListing("add", []instructions.Instruction{
		instructions.Load(1, 500),
		instructions.Hlt(),
	}))
	require.NoError(t, err)

	assert.Equal(t, `name: add
instructions:
  - opcode: LOAD
    bytes: [1, 1, 244]
  - opcode: HLT
    bytes: [0, 0, 0]
`, string(data))
}

func TestListing_Errors(t *testing.T) {
	cases := map[string]string{
		"too few bytes":  "instructions:\n  - opcode: ADD\n    bytes: [1, 2]\n",
		"too many bytes": "instructions:\n  - opcode: ADD\n    bytes: [1, 2, 3, 4]\n",
		"byte overflow":  "instructions:\n  - opcode: LOAD\n    bytes: [1, 256, 0]\n",
		"negative byte":  "instructions:\n  - opcode: LOAD\n    bytes: [1, -1, 0]\n",
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			listing, err := UnmarshalListing([]byte(data))
			require.NoError(t, err)

			_, err = listing.Program()
			assert.ErrorIs(t, err, ErrInvalidListing)
		})
	}

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := UnmarshalListing([]byte("instructions: {opcode"))
		assert.ErrorIs(t, err, ErrInvalidListing)
	})
}

func TestImage(t *testing.T) {
	data, err := MarshalImage(NewImage("add", testProgram()))
	require.NoError(t, err)

	// Canonical encoding is deterministic
	again, err := MarshalImage(NewImage("add", testProgram()))
	require.NoError(t, err)
	assert.Equal(t, data, again)

	image, err := UnmarshalImage(data)
	require.NoError(t, err)
	assert.Equal(t, uint(ImageVersion), image.Version)
	assert.Equal(t, "add", image.Name)
	assert.Equal(t, testProgram(), image.Program)
	assert.Equal(t, ProgramDigest(testProgram()), image.Digest)

	t.Run("version mismatch", func(t *testing.T) {
		data, err := MarshalImage(&Image{Version: 2, Program: testProgram()})
		require.NoError(t, err)

		_, err = UnmarshalImage(data)
		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("corrupted program", func(t *testing.T) {
		image := NewImage("add", testProgram())
		image.Program = []byte{0, 0, 0, 0}

		data, err := MarshalImage(image)
		require.NoError(t, err)

		_, err = UnmarshalImage(data)
		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("missing digest", func(t *testing.T) {
		data, err := MarshalImage(&Image{Version: ImageVersion, Program: testProgram()})
		require.NoError(t, err)

		_, err = UnmarshalImage(data)
		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("empty program", func(t *testing.T) {
		data, err := MarshalImage(NewImage("", nil))
		require.NoError(t, err)

		image, err := UnmarshalImage(data)
		require.NoError(t, err)
		assert.Empty(t, image.Program)
		assert.NotNil(t, image.Program)
	})
}
