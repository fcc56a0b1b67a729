package renderer

import (
	"github.com/Faultbox/objscene/internal/engine/material"
	"github.com/Faultbox/objscene/internal/engine/rendercache"
	"github.com/Faultbox/objscene/internal/engine/texture"
	"github.com/Faultbox/objscene/pkg/math"
)

// Primitive is the kind of primitive a face is submitted as.
type Primitive int

const (
	Polygon Primitive = iota
	LineLoop
)

// Backend receives the draw calls of a mesh traversal.
type Backend interface {
	rendercache.Compiler

	// PushLighting saves lighting and material state; PopLighting restores it.
	PushLighting()
	PopLighting()

	// SetTexturing enables or disables 2D texturing.
	SetTexturing(enabled bool)
	// DisableColorMaterial stops vertex colors from overriding materials.
	DisableColorMaterial()
	BindTexture(h texture.Handle)
	// SetMaterial applies m to front faces with diffuse in place of m.Diffuse.
	SetMaterial(m *material.Material, diffuse [4]float32)

	Begin(p Primitive)
	End()
	Normal(n math.Vec3)
	TexCoord(s, t float32)
	Vertex(v math.Vec3)
}

// Materials resolves face material indices.
type Materials interface {
	At(index int) *material.Material
}
