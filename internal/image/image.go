// Package image persists VM images: the used prefix of a VM's memory along
// with the layout needed to resume it.
package image

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// FormatVersion is bumped whenever the meaning of an Image's fields changes.
const FormatVersion = 1

// Image is a position independent VM snapshot. Registers and dictionary live
// inside Memory, so the layout fields are all that is needed to resume.
type Image struct {
	Seq       uint64    `cbor:"1,keyasint"`
	Format    int       `cbor:"2,keyasint"`
	Version   int       `cbor:"3,keyasint"`
	CellSize  int       `cbor:"4,keyasint"`
	DataDepth uint      `cbor:"5,keyasint"`
	RetDepth  uint      `cbor:"6,keyasint"`
	Memory    []byte    `cbor:"7,keyasint"`
	Saved     time.Time `cbor:"8,keyasint"`
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Marshal serializes an Image to canonical CBOR.
func Marshal(img *Image) ([]byte, error) {
	return encMode.Marshal(img)
}

// Unmarshal deserializes an Image from CBOR, rejecting unknown formats.
func Unmarshal(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("image: unmarshal: %w", err)
	}
	if img.Format != FormatVersion {
		return nil, fmt.Errorf("image: unsupported format %v", img.Format)
	}
	return &img, nil
}
