package loader

import (
	"bytes"
	"fmt"

	"github.com/Manu343726/iridium/pkg/utils"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// Version of the program image format written by this package
const ImageVersion = 1

// Image is a program stored together with its metadata
type Image struct {
	Version uint   `cbor:"1,keyasint"`
	Name    string `cbor:"2,keyasint,omitempty"`
	Program []byte `cbor:"3,keyasint"`
	// BLAKE2b-256 digest of Program
	Digest []byte `cbor:"4,keyasint"`
}

// Returns the digest stored in images of the given program
func ProgramDigest(program []byte) []byte {
	digest := blake2b.Sum256(program)
	return digest[:]
}

// Images are encoded in canonical mode, so the same program always produces the same bytes
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("loader: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// NewImage returns the current version image of a program
func NewImage(name string, program []byte) *Image {
	return &Image{
		Version: ImageVersion,
		Name:    name,
		Program: program,
		Digest:  ProgramDigest(program),
	}
}

// MarshalImage serializes an image to CBOR bytes
func MarshalImage(image *Image) ([]byte, error) {
	return cborEncMode.Marshal(image)
}

// UnmarshalImage deserializes an image from CBOR bytes
func UnmarshalImage(data []byte) (*Image, error) {
	var image Image
	if err := cbor.Unmarshal(data, &image); err != nil {
		return nil, utils.MakeError(ErrInvalidImage, "%v", err)
	}

	if image.Version != ImageVersion {
		return nil, utils.MakeError(ErrInvalidImage, "unsupported image version %v (expected %v)", image.Version, ImageVersion)
	}

	if !bytes.Equal(image.Digest, ProgramDigest(image.Program)) {
		return nil, utils.MakeError(ErrInvalidImage, "program digest mismatch")
	}

	if image.Program == nil {
		image.Program = []byte{}
	}

	return &image, nil
}
