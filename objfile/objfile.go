// Package objfile reads and writes LC-3 object files. The format is a flat
// sequence of little-endian 16-bit words: word 0 is the load address, every
// subsequent word is placed at successive memory addresses starting there.
// There is no header, no section table and no symbols.
package objfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Image is the in-memory form of an object file
type Image struct {
	Origin uint16   // load address
	Words  []uint16 // program image, placed starting at Origin
}

// Write serializes the image to w
func (img *Image) Write(w io.Writer) error {
	buf := make([]byte, 2*(len(img.Words)+1))
	binary.LittleEndian.PutUint16(buf, img.Origin)
	for i, word := range img.Words {
		binary.LittleEndian.PutUint16(buf[2*(i+1):], word)
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write object image: %w", err)
	}
	return nil
}

// Read deserializes an image from r
func Read(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read object image: %w", err)
	}

	if len(data) < 2 {
		return nil, fmt.Errorf("object image too short: %d bytes", len(data))
	}
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("object image has odd size: %d bytes", len(data))
	}

	img := &Image{
		Origin: binary.LittleEndian.Uint16(data),
		Words:  make([]uint16, len(data)/2-1),
	}
	for i := range img.Words {
		img.Words[i] = binary.LittleEndian.Uint16(data[2*(i+1):])
	}
	return img, nil
}

// WriteFile writes the image to the named file
func WriteFile(path string, img *Image) (err error) {
	f, err := os.Create(path) // #nosec G304 -- user-specified output path
	if err != nil {
		return fmt.Errorf("failed to create object file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close object file: %w", closeErr)
		}
	}()

	return img.Write(f)
}

// ReadFile reads an image from the named file
func ReadFile(path string) (*Image, error) {
	f, err := os.Open(path) // #nosec G304 -- user-specified input path
	if err != nil {
		return nil, fmt.Errorf("failed to open object file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return Read(f)
}
