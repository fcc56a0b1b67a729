package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Registered image formats.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrDecode is returned when an image file exists but cannot be decoded.
var ErrDecode = errors.New("cannot decode image")

// Decoder turns an image file into a packed pixel buffer.
//
// With flip set, row 0 of the result is the bottom row of the picture,
// matching a bottom-left texture origin. Without it the file's row order
// is kept.
type Decoder interface {
	Decode(path string, flip bool) (*Image, error)
}

// FileDecoder decodes JPEG, PNG, BMP, TIFF and TGA files from disk.
// Grayscale images produce one component per pixel, everything else RGB.
type FileDecoder struct{}

// Decode implements Decoder.
func (FileDecoder) Decode(path string, flip bool) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	var img image.Image
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrDecode, path, err)
	}

	return FromImage(img, flip), nil
}

// FromImage packs img into an Image, optionally reversing the row order.
func FromImage(img image.Image, flip bool) *Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	destRow := func(y int) int {
		if flip {
			return h - 1 - y
		}
		return y
	}

	if gray, ok := img.(*image.Gray); ok {
		out := &Image{Components: 1, Width: w, Height: h, Pix: make([]byte, w*h)}
		for y := 0; y < h; y++ {
			src := gray.Pix[y*gray.Stride : y*gray.Stride+w]
			copy(out.Pix[destRow(y)*w:], src)
		}
		return out
	}

	out := &Image{Components: 3, Width: w, Height: h, Pix: make([]byte, w*h*3)}
	for y := 0; y < h; y++ {
		row := out.Pix[destRow(y)*w*3:]
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			row[x*3] = uint8(r >> 8)
			row[x*3+1] = uint8(g >> 8)
			row[x*3+2] = uint8(b >> 8)
		}
	}
	return out
}
