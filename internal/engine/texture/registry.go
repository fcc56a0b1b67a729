package texture

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/objscene/internal/logger"
)

// ErrNotFound is returned for handles or names the registry does not know.
var ErrNotFound = errors.New("texture not found")

// Uploader is the backend side of texture loading.
type Uploader interface {
	// GenTexture reserves a new texture handle.
	GenTexture() Handle
	// Upload sends one mip level. face is ignored for Target2D.
	Upload(h Handle, target Target, face CubeFace, level int, img *Image)
	// SetFilter sets the minification and magnification filters.
	SetFilter(h Handle, target Target, min, mag Filter)
	// DeleteTexture frees the handle.
	DeleteTexture(h Handle)
}

// Registry caches uploaded textures by name. A name is loaded once; later
// loads of the same name return the cached entry without touching the file.
// It is not safe for concurrent use; scene.Scene serializes access.
type Registry struct {
	decoder  Decoder
	uploader Uploader
	textures []*Texture
	byName   map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry(dec Decoder, up Uploader) *Registry {
	return &Registry{
		decoder:  dec,
		uploader: up,
		byName:   make(map[string]int),
	}
}

// Len returns the number of registered textures.
func (r *Registry) Len() int {
	return len(r.textures)
}

// Find returns the texture registered under name.
func (r *Registry) Find(name string) (*Texture, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.textures[idx], true
}

// Textures returns the registered textures in load order.
func (r *Registry) Textures() []*Texture {
	return append([]*Texture(nil), r.textures...)
}

// Load returns the texture registered as name, decoding and uploading the
// file on first use. Rows are flipped so row 0 is the bottom of the image.
func (r *Registry) Load(name string, mipmap bool) (*Texture, error) {
	if tex, ok := r.Find(name); ok {
		return tex, nil
	}

	img, err := r.decoder.Decode(name, true)
	if err != nil {
		return nil, fmt.Errorf("loading texture %s: %w", name, err)
	}

	tex := &Texture{
		Name:       name,
		Components: img.Components,
		Width:      img.Width,
		Height:     img.Height,
		Handle:     r.uploader.GenTexture(),
		Target:     Target2D,
	}
	r.upload(tex, 0, img, mipmap)
	r.setDefaultFilter(tex, mipmap)
	r.register(tex)

	logger.Named("texture").Debug("texture loaded",
		zap.String("name", name),
		zap.Int("width", tex.Width),
		zap.Int("height", tex.Height),
		zap.Stringer("format", tex.Format()),
		zap.Uint32("handle", uint32(tex.Handle)),
		zap.Bool("mipmap", mipmap),
	)
	return tex, nil
}

// LoadCube loads the six images {baseName}_{posx,negx,posy,negy,posz,negz}.jpg
// into one cube map registered as baseName. Only the first face's metadata
// is kept. Cube faces keep the file's row order.
func (r *Registry) LoadCube(baseName string, mipmap bool) (*Texture, error) {
	if tex, ok := r.Find(baseName); ok {
		return tex, nil
	}

	var first *Texture
	for _, face := range CubeFaces {
		file := fmt.Sprintf("%s_%s.jpg", baseName, face.Suffix())
		img, err := r.decoder.Decode(file, false)
		if err != nil {
			if first != nil {
				r.uploader.DeleteTexture(first.Handle)
			}
			return nil, fmt.Errorf("loading cube map %s: %w", baseName, err)
		}

		if first == nil {
			first = &Texture{
				Name:       baseName,
				Components: img.Components,
				Width:      img.Width,
				Height:     img.Height,
				Handle:     r.uploader.GenTexture(),
				Target:     TargetCubeMap,
			}
		}
		r.upload(first, face, img, mipmap)
	}

	r.setDefaultFilter(first, mipmap)
	r.register(first)

	logger.Named("texture").Debug("cube map loaded",
		zap.String("name", baseName),
		zap.Int("size", first.Width),
		zap.Uint32("handle", uint32(first.Handle)),
	)
	return first, nil
}

// upload sends img (and its mip chain when requested) then drops the pixels.
func (r *Registry) upload(tex *Texture, face CubeFace, img *Image, mipmap bool) {
	if !mipmap {
		r.uploader.Upload(tex.Handle, tex.Target, face, 0, img)
		img.Pix = nil
		return
	}
	for level, mip := range BuildMipChain(img) {
		r.uploader.Upload(tex.Handle, tex.Target, face, level, mip)
		mip.Pix = nil
	}
	img.Pix = nil
}

func (r *Registry) setDefaultFilter(tex *Texture, mipmap bool) {
	if mipmap {
		r.uploader.SetFilter(tex.Handle, tex.Target, FilterLinearMipmapLinear, FilterLinear)
		return
	}
	r.uploader.SetFilter(tex.Handle, tex.Target, FilterLinear, FilterLinear)
}

func (r *Registry) register(tex *Texture) {
	r.byName[tex.Name] = len(r.textures)
	r.textures = append(r.textures, tex)
}

// SetFilter changes the filters of the texture with handle h.
func (r *Registry) SetFilter(h Handle, min, mag Filter) error {
	for _, tex := range r.textures {
		if tex.Handle == h {
			r.uploader.SetFilter(tex.Handle, tex.Target, min, mag)
			return nil
		}
	}
	return fmt.Errorf("%w: handle %d", ErrNotFound, h)
}

// SetFilterAll changes the filters of every registered texture.
func (r *Registry) SetFilterAll(min, mag Filter) {
	for _, tex := range r.textures {
		r.uploader.SetFilter(tex.Handle, tex.Target, min, mag)
	}
}

// ReleaseAll deletes every texture from the backend and the registry.
func (r *Registry) ReleaseAll() {
	for _, tex := range r.textures {
		logger.Named("texture").Debug("releasing texture",
			zap.String("name", tex.Name),
			zap.Int("width", tex.Width),
			zap.Int("height", tex.Height),
			zap.Uint32("handle", uint32(tex.Handle)),
		)
		r.uploader.DeleteTexture(tex.Handle)
	}
	r.textures = nil
	r.byName = make(map[string]int)
}
