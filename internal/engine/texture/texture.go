// Package texture provides the name-keyed texture registry, the image
// decoder boundary and CPU-side mip chain generation.
package texture

import "fmt"

// Handle is a backend texture name. Zero means no texture.
type Handle uint32

// None is the handle of "no texture".
const None Handle = 0

// Format is the pixel layout handed to the backend.
type Format int

const (
	FormatRGB       Format = iota // 3 components
	FormatLuminance               // 1 component, intensity
)

// String returns the format name.
func (f Format) String() string {
	if f == FormatLuminance {
		return "luminance"
	}
	return "rgb"
}

// Target is the kind of texture object.
type Target int

const (
	Target2D Target = iota
	TargetCubeMap
)

// String returns the target name.
func (t Target) String() string {
	if t == TargetCubeMap {
		return "cube"
	}
	return "2d"
}

// CubeFace selects one face of a cube map.
type CubeFace int

const (
	CubePosX CubeFace = iota
	CubeNegX
	CubePosY
	CubeNegY
	CubePosZ
	CubeNegZ
)

// CubeFaces lists the faces in upload order.
var CubeFaces = [6]CubeFace{CubePosX, CubeNegX, CubePosY, CubeNegY, CubePosZ, CubeNegZ}

var cubeSuffixes = [6]string{"posx", "negx", "posy", "negy", "posz", "negz"}

// Suffix returns the file name suffix of the face, e.g. "posx".
func (f CubeFace) Suffix() string {
	if f < 0 || int(f) >= len(cubeSuffixes) {
		return fmt.Sprintf("face%d", int(f))
	}
	return cubeSuffixes[f]
}

// Filter is a texture sampling filter.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
	FilterNearestMipmapNearest
	FilterLinearMipmapNearest
	FilterNearestMipmapLinear
	FilterLinearMipmapLinear
)

var filterNames = map[string]Filter{
	"nearest":                FilterNearest,
	"linear":                 FilterLinear,
	"nearest_mipmap_nearest": FilterNearestMipmapNearest,
	"linear_mipmap_nearest":  FilterLinearMipmapNearest,
	"nearest_mipmap_linear":  FilterNearestMipmapLinear,
	"linear_mipmap_linear":   FilterLinearMipmapLinear,
}

// ParseFilter converts a config name such as "linear_mipmap_linear" to a Filter.
func ParseFilter(name string) (Filter, error) {
	f, ok := filterNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown texture filter %q", name)
	}
	return f, nil
}

// String returns the config name of the filter.
func (f Filter) String() string {
	for name, v := range filterNames {
		if v == f {
			return name
		}
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

// Texture is a decoded image that has been uploaded to the backend.
// The pixels are not retained once uploaded.
type Texture struct {
	Name       string
	Components int // 1 = intensity, 3 = RGB
	Width      int
	Height     int
	Handle     Handle
	Target     Target
}

// Format returns the pixel layout matching the component count.
func (t *Texture) Format() Format {
	return formatFor(t.Components)
}

func formatFor(components int) Format {
	if components == 1 {
		return FormatLuminance
	}
	return FormatRGB
}

// Image is a decoded, tightly packed, row-major pixel buffer.
type Image struct {
	Components int
	Width      int
	Height     int
	Pix        []byte
}

// Format returns the pixel layout matching the component count.
func (img *Image) Format() Format {
	return formatFor(img.Components)
}

// Stride returns the length of one row in bytes.
func (img *Image) Stride() int {
	return img.Width * img.Components
}
