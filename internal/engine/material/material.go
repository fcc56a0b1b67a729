// Package material holds the name-keyed registry of surface shading
// parameters loaded from MTL material libraries.
package material

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/objscene/internal/logger"
	"github.com/Faultbox/objscene/pkg/formats"
)

// None is the material index of faces without a material.
const None = -1

// ErrNotFound is returned when a material name is not registered.
var ErrNotFound = errors.New("material not found")

// MTL shininess is 0..1000; fixed-function lighting accepts 0..128.
const (
	mtlShininessMax = 1000.0
	glShininessMax  = 128.0
)

// Material is a named set of lighting parameters. Colors are RGBA.
type Material struct {
	Name      string
	Ambient   [4]float32
	Diffuse   [4]float32
	Specular  [4]float32
	Emission  [4]float32
	Shininess float32 // 0..128
}

// newMaterial returns a material with the fixed-function pipeline defaults.
func newMaterial(name string) *Material {
	return &Material{
		Name:     name,
		Ambient:  [4]float32{0.2, 0.2, 0.2, 1},
		Diffuse:  [4]float32{0.8, 0.8, 0.8, 1},
		Specular: [4]float32{0, 0, 0, 1},
		Emission: [4]float32{0, 0, 0, 1},
	}
}

// Registry stores materials in load order and indexes them by name.
// It is not safe for concurrent use; scene.Scene serializes access.
type Registry struct {
	materials []*Material
	byName    map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Len returns the number of registered materials.
func (r *Registry) Len() int {
	return len(r.materials)
}

// Find returns the index of the named material.
func (r *Registry) Find(name string) (int, bool) {
	idx, ok := r.byName[name]
	return idx, ok
}

// At returns the material at index, or nil if the index is out of range.
func (r *Registry) At(index int) *Material {
	if index < 0 || index >= len(r.materials) {
		return nil
	}
	return r.materials[index]
}

// Lookup returns the named material, or nil.
func (r *Registry) Lookup(name string) *Material {
	if idx, ok := r.byName[name]; ok {
		return r.materials[idx]
	}
	return nil
}

// Materials returns the registered materials in load order.
func (r *Registry) Materials() []*Material {
	return append([]*Material(nil), r.materials...)
}

// LoadFile opens and loads a material library file.
// A missing file yields an error wrapping os.ErrNotExist.
func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening material library: %w", err)
	}
	defer f.Close()

	if err := r.Load(f); err != nil {
		return fmt.Errorf("loading material library %s: %w", path, err)
	}
	return nil
}

// Load reads a material library and registers every material it declares.
//
// A material whose name is already registered keeps its existing values;
// the redeclared block is skipped entirely. Malformed numbers stop the
// update of that one field and are logged; they never abort the load.
func (r *Registry) Load(src io.Reader) error {
	log := logger.Named("material")

	var current *Material
	added := 0
	err := formats.ScanMTL(src, func(rec formats.MTLRecord) error {
		if rec.Directive == formats.MTLNewMaterial {
			current = nil
			if rec.Err != nil {
				log.Warn("skipping material", zap.Int("line", rec.Line), zap.Error(rec.Err))
				return nil
			}
			if _, exists := r.byName[rec.Name]; exists {
				log.Debug("material already registered", zap.String("name", rec.Name))
				return nil
			}
			current = newMaterial(rec.Name)
			r.byName[rec.Name] = len(r.materials)
			r.materials = append(r.materials, current)
			added++
			return nil
		}

		if current == nil {
			return nil
		}
		if rec.Err != nil {
			log.Warn("malformed material field",
				zap.String("material", current.Name),
				zap.Stringer("directive", rec.Directive),
				zap.Int("line", rec.Line),
				zap.Error(rec.Err),
			)
		}
		apply(current, rec)
		return nil
	})

	log.Debug("material library loaded", zap.Int("added", added), zap.Int("total", len(r.materials)))
	return err
}

// apply copies the decoded values of rec into m.
func apply(m *Material, rec formats.MTLRecord) {
	switch rec.Directive {
	case formats.MTLAmbient:
		copy(m.Ambient[:3], rec.Values)
	case formats.MTLDiffuse:
		copy(m.Diffuse[:3], rec.Values)
	case formats.MTLSpecular:
		copy(m.Specular[:3], rec.Values)
	case formats.MTLShininess:
		if len(rec.Values) == 1 {
			m.Shininess = rec.Values[0] / mtlShininessMax * glShininessMax
		}
	case formats.MTLDissolve:
		if len(rec.Values) == 1 {
			alpha := rec.Values[0]
			m.Ambient[3] = alpha
			m.Diffuse[3] = alpha
			m.Specular[3] = alpha
		}
	}
}

// SetEmission sets the emissive color of a registered material. The MTL
// format has no emission directive, so this is the only way to set it.
func (r *Registry) SetEmission(name string, red, green, blue float32) error {
	m := r.Lookup(name)
	if m == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	m.Emission[0], m.Emission[1], m.Emission[2] = red, green, blue
	return nil
}

// ReleaseAll removes every material. Indices held by meshes become invalid.
func (r *Registry) ReleaseAll() {
	for _, m := range r.materials {
		logger.Named("material").Debug("releasing material",
			zap.String("name", m.Name),
			zap.Float32s("ambient", m.Ambient[:]),
			zap.Float32s("diffuse", m.Diffuse[:]),
			zap.Float32s("specular", m.Specular[:]),
			zap.Float32("shininess", m.Shininess),
		)
	}
	r.materials = nil
	r.byName = make(map[string]int)
}
