// Package pngio reads input images and writes paletted PNGs.
package pngio

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
)

// Decode reads any image format imaging understands and returns it as
// non-premultiplied RGBA.
func Decode(r io.Reader) (*image.NRGBA, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return imaging.Clone(img), nil
}

// DecodeBytes is Decode over an in-memory file.
func DecodeBytes(data []byte) (*image.NRGBA, error) {
	return Decode(bytes.NewReader(data))
}

// Encode writes img as PNG. fast trades file size for encoding speed.
//
// The encoder emits no ancillary chunks, so metadata is always stripped.
func Encode(w io.Writer, img image.Image, fast bool) error {
	level := png.BestCompression
	if fast {
		level = png.BestSpeed
	}
	if err := imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(level)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// EncodeBytes is Encode into a new buffer.
func EncodeBytes(img image.Image, fast bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, fast); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
