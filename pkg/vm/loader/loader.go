// Package loader reads and writes iridium programs from files.
//
// Programs are always flat byte buffers of 4-byte instruction records. The loader
// knows three containers for them, picked by file extension:
//
//   - Raw binaries (.bin): the program bytes as is
//   - Instruction listings (.yaml, .yml): one entry per instruction record
//   - Program images (.irm): CBOR encoded image with a version and a name
//
// Typical usage:
//
//	program, err := loader.Load("program.yaml")
//	if err != nil { ... }
//	interp.LoadProgram(program)
package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/Manu343726/iridium/pkg/utils"
	"github.com/Manu343726/iridium/pkg/vm/instructions"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported program format")
	ErrInvalidImage      = errors.New("invalid program image")
	ErrInvalidListing    = errors.New("invalid instruction listing")
)

// FileFormat represents the type of program file
type FileFormat int

const (
	// FormatUnknown indicates an unknown file format
	FormatUnknown FileFormat = iota
	// FormatRaw indicates a raw program binary (.bin)
	FormatRaw
	// FormatListing indicates a YAML instruction listing (.yaml, .yml)
	FormatListing
	// FormatImage indicates a CBOR program image (.irm)
	FormatImage
)

// String returns the string representation of a FileFormat
func (f FileFormat) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatListing:
		return "listing"
	case FormatImage:
		return "image"
	default:
		return "unknown"
	}
}

// DetectFormat returns the program format of a file given its extension
func DetectFormat(path string) FileFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin":
		return FormatRaw
	case ".yaml", ".yml":
		return FormatListing
	case ".irm":
		return FormatImage
	default:
		return FormatUnknown
	}
}

// IsSupportedFile returns true if the file extension is supported
func IsSupportedFile(path string) bool {
	return DetectFormat(path) != FormatUnknown
}

// Result contains the result of a load operation
type Result struct {
	// Program bytes, ready to be installed in the interpreter
	Program []byte

	// Path is the file path provided
	Path string

	// Format is the detected file format
	Format FileFormat

	// Name of the program. Taken from the image or listing if they have one, the file name otherwise
	Name string
}

// LoadFile loads a program file from the given path, detecting the file format from its extension
func LoadFile(path string) (*Result, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, utils.MakeError(ErrUnsupportedFormat, "unsupported file extension '%s' (supported: .bin, .yaml, .yml, .irm)", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.MakeError(err, "reading program file")
	}

	result := &Result{
		Path:   path,
		Format: format,
		Name:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	var name string

	switch format {
	case FormatRaw:
		result.Program = data
	case FormatListing:
		var listing *Listing
		if listing, err = UnmarshalListing(data); err == nil {
			name = listing.Name
			result.Program, err = listing.Program()
		}
	case FormatImage:
		var image *Image
		if image, err = UnmarshalImage(data); err == nil {
			name = image.Name
			result.Program = image.Program
		}
	}

	if err != nil {
		return nil, utils.MakeError(err, "loading %v file '%v'", format, path)
	}

	if name != "" {
		result.Name = name
	}

	return result, nil
}

// Load reads the program stored in the given file
func Load(path string) ([]byte, error) {
	result, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	return result.Program, nil
}

// Save writes a program into a file, in the format matching the file extension.
// Listings require the program to be made of complete, legal instruction records
func Save(path string, program []byte) error {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var data []byte
	var err error

	switch format := DetectFormat(path); format {
	case FormatRaw:
		data = program
	case FormatListing:
		var instrs []instructions.Instruction
		if instrs, err = instructions.DecodeInstructions(program); err == nil {
			data, err = MarshalListing(NewListing(name, instrs))
		}
	case FormatImage:
		data, err = MarshalImage(NewImage(name, program))
	default:
		return utils.MakeError(ErrUnsupportedFormat, "unsupported file extension '%s' (supported: .bin, .yaml, .yml, .irm)", filepath.Ext(path))
	}

	if err != nil {
		return utils.MakeError(err, "encoding program for '%v'", path)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return utils.MakeError(err, "writing program file")
	}

	return nil
}
