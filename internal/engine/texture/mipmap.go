package texture

import (
	"image"

	"golang.org/x/image/draw"
)

// BuildMipChain returns the full mip chain for base. Level 0 is base
// rescaled to power-of-two dimensions; each following level halves the
// previous one down to 1x1.
func BuildMipChain(base *Image) []*Image {
	w, h := nearestPowerOfTwo(base.Width), nearestPowerOfTwo(base.Height)

	level := base
	if w != base.Width || h != base.Height {
		level = resize(base, w, h, draw.CatmullRom)
	}

	chain := []*Image{level}
	for w > 1 || h > 1 {
		w, h = max(w/2, 1), max(h/2, 1)
		level = resize(level, w, h, draw.ApproxBiLinear)
		chain = append(chain, level)
	}
	return chain
}

// nearestPowerOfTwo rounds n to the closest power of two, preferring the
// larger one on ties.
func nearestPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p*2 <= n {
		p *= 2
	}
	if n-p >= 2*p-n {
		return 2 * p
	}
	return p
}

// resize scales img to w x h keeping its component count.
func resize(img *Image, w, h int, scaler draw.Scaler) *Image {
	src := img.toStd()
	var dst draw.Image
	if img.Components == 1 {
		dst = image.NewGray(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return FromImage(dst, false)
}

// toStd wraps the packed pixels in a standard library image.
func (img *Image) toStd() image.Image {
	rect := image.Rect(0, 0, img.Width, img.Height)
	if img.Components == 1 {
		return &image.Gray{Pix: img.Pix, Stride: img.Width, Rect: rect}
	}

	rgba := image.NewRGBA(rect)
	for i, j := 0, 0; i < len(img.Pix); i, j = i+3, j+4 {
		rgba.Pix[j] = img.Pix[i]
		rgba.Pix[j+1] = img.Pix[i+1]
		rgba.Pix[j+2] = img.Pix[i+2]
		rgba.Pix[j+3] = 255
	}
	return rgba
}
