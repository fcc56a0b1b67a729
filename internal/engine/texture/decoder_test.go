package texture

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// twoRows returns a 2x2 image with a red top row and a blue bottom row.
func twoRows() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		img.SetRGBA(x, 0, color.RGBA{R: 255, A: 255})
		img.SetRGBA(x, 1, color.RGBA{B: 255, A: 255})
	}
	return img
}

func TestFileDecoder_Flip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.png")
	writePNG(t, path, twoRows())

	var dec FileDecoder

	img, err := dec.Decode(path, false)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Components)
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.Equal(t, []byte{255, 0, 0}, img.Pix[0:3], "row 0 is the top row")

	flipped, err := dec.Decode(path, true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 255}, flipped.Pix[0:3], "row 0 is the bottom row")
	assert.Equal(t, []byte{255, 0, 0}, flipped.Pix[6:9])
}

func TestFileDecoder_Gray(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 1))
	gray.Pix = []byte{10, 20, 30}
	path := filepath.Join(t.TempDir(), "gray.png")
	writePNG(t, path, gray)

	img, err := FileDecoder{}.Decode(path, true)
	require.NoError(t, err)
	assert.Equal(t, 1, img.Components)
	assert.Equal(t, FormatLuminance, img.Format())
	assert.Equal(t, []byte{10, 20, 30}, img.Pix)
}

func TestFileDecoder_JPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brick.jpg")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, twoRows(), &jpeg.Options{Quality: 95}))
	require.NoError(t, f.Close())

	img, err := FileDecoder{}.Decode(path, true)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Components)
	assert.Len(t, img.Pix, 2*2*3)
}

func TestFileDecoder_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := FileDecoder{}.Decode(filepath.Join(dir, "missing.jpg"), true)
	assert.ErrorIs(t, err, os.ErrNotExist)

	garbage := filepath.Join(dir, "garbage.jpg")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))
	_, err = FileDecoder{}.Decode(garbage, true)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeTGA(t *testing.T) {
	// 2x2, 24 bpp, bottom-left origin: first row in the file is the bottom.
	header := make([]byte, 18)
	header[2] = TGATypeUncompressed
	header[12], header[14], header[16] = 2, 2, 24
	pixels := []byte{
		255, 0, 0, 255, 0, 0, // bottom row: blue (BGR)
		0, 0, 255, 0, 0, 255, // top row: red
	}

	img, err := DecodeTGA(append(header, pixels...))
	require.NoError(t, err)
	r, _, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r, "top-left is red")
	assert.Equal(t, uint32(0), b)

	path := filepath.Join(t.TempDir(), "tile.tga")
	require.NoError(t, os.WriteFile(path, append(header, pixels...), 0o644))
	packed, err := FileDecoder{}.Decode(path, true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 255}, packed.Pix[0:3], "flipped row 0 is the blue bottom row")
}

func TestDecodeTGA_RLE(t *testing.T) {
	header := make([]byte, 18)
	header[2] = TGATypeRLE
	header[12], header[14], header[16] = 4, 1, 24
	header[17] = 0x20
	data := append(header, 0x83, 0, 255, 0) // run of 4 green pixels

	img, err := DecodeTGA(data)
	require.NoError(t, err)
	for x := 0; x < 4; x++ {
		_, g, _, _ := img.At(x, 0).RGBA()
		assert.Equal(t, uint32(0xffff), g)
	}
}

func TestDecodeTGA_Invalid(t *testing.T) {
	_, err := DecodeTGA([]byte{1, 2, 3})
	assert.Error(t, err)

	header := make([]byte, 18)
	header[2] = 3 // grayscale, unsupported
	header[16] = 8
	_, err = DecodeTGA(header)
	assert.Error(t, err)
}

func TestBuildMipChain(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		comps int
		sizes [][2]int
	}{
		{"power of two", 4, 2, 3, [][2]int{{4, 2}, {2, 1}, {1, 1}}},
		{"rescaled", 3, 5, 3, [][2]int{{4, 4}, {2, 2}, {1, 1}}},
		{"luminance", 2, 2, 1, [][2]int{{2, 2}, {1, 1}}},
		{"single pixel", 1, 1, 3, [][2]int{{1, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := BuildMipChain(solid(tt.comps, tt.w, tt.h))
			require.Len(t, chain, len(tt.sizes))
			for i, lvl := range chain {
				assert.Equal(t, tt.sizes[i][0], lvl.Width, "level %d width", i)
				assert.Equal(t, tt.sizes[i][1], lvl.Height, "level %d height", i)
				assert.Equal(t, tt.comps, lvl.Components)
				assert.Len(t, lvl.Pix, lvl.Width*lvl.Height*lvl.Components)
			}
		})
	}
}

func TestNearestPowerOfTwo(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 5: 4, 6: 8, 100: 128, 64: 64, 90: 64}
	for in, want := range cases {
		assert.Equal(t, want, nearestPowerOfTwo(in), "n=%d", in)
	}
}
