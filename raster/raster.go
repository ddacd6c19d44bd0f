// Package raster decodes, rescales, pads and stores frame textures.
package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/eak1mov/go-libframes/frame"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode parses PNG, JPEG, GIF, WebP, BMP or TIFF data into an NRGBA image.
func Decode(data []byte) (*image.NRGBA, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", frame.ErrDecode, err)
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %v image has zero dimensions", frame.ErrDecode, format)
	}
	if img, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return img, nil
	}
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)
	return img, nil
}

// Resize scales img to w x h with nearest-neighbour sampling, which keeps
// pixel-art textures crisp. w and h must be positive.
func Resize(img image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// PadToGrid grows each dimension of img to the next multiple of step. The
// original content is drawn at the origin, the remainder is transparent.
// An already aligned image is returned unchanged.
func PadToGrid(img *image.NRGBA, step int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	newW := (w + step - 1) / step * step
	newH := (h + step - 1) / step * step
	if newW == w && newH == h {
		return img
	}

	dst := image.NewNRGBA(image.Rect(0, 0, newW, newH))
	draw.BiLinear.Scale(dst, image.Rect(0, 0, w, h), img, b, draw.Src, nil)
	return dst
}

// Save encodes img as PNG into dir/filename, creating dir as needed.
func Save(img image.Image, dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: %w", frame.ErrIO, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("%w: encode %v: %w", frame.ErrIO, filename, err)
	}

	filePath := filepath.Join(dir, filename)
	if err := os.WriteFile(filePath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("%w: %w", frame.ErrIO, err)
	}
	return filePath, nil
}
