package renderer

import (
	"fmt"
	"strings"

	"github.com/Faultbox/objscene/internal/engine/material"
	"github.com/Faultbox/objscene/internal/engine/model"
	"github.com/Faultbox/objscene/internal/engine/texture"
)

// DrawMode selects how meshes are drawn.
type DrawMode int

const (
	Wireframe DrawMode = iota // Face outlines
	Solid                     // Lit polygons, no textures
	Textured                  // Lit, textured polygons
)

// String returns the config name of the mode.
func (m DrawMode) String() string {
	switch m {
	case Wireframe:
		return "wireframe"
	case Solid:
		return "solid"
	case Textured:
		return "textured"
	default:
		return fmt.Sprintf("DrawMode(%d)", int(m))
	}
}

// ParseDrawMode accepts a mode name or its key letter: w, s or t.
func ParseDrawMode(s string) (DrawMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "wireframe":
		return Wireframe, nil
	case "s", "solid":
		return Solid, nil
	case "t", "textured":
		return Textured, nil
	}
	return 0, fmt.Errorf("unknown draw mode %q", s)
}

var white = [4]float32{1, 1, 1, 1}

// Renderer draws meshes through a Backend.
type Renderer struct {
	backend   Backend
	materials Materials
	mode      DrawMode
}

// New creates a renderer drawing in Textured mode.
func New(backend Backend, materials Materials) *Renderer {
	return &Renderer{
		backend:   backend,
		materials: materials,
		mode:      Textured,
	}
}

// Backend returns the backend the renderer draws to.
func (r *Renderer) Backend() Backend {
	return r.backend
}

// Mode returns the current draw mode.
func (r *Renderer) Mode() DrawMode {
	return r.mode
}

// SetMode changes the draw mode. Unknown modes are ignored.
func (r *Renderer) SetMode(mode DrawMode) {
	if mode < Wireframe || mode > Textured {
		return
	}
	r.mode = mode
}

// Draw renders mesh through its cache.
func (r *Renderer) Draw(mesh *model.Mesh) {
	mesh.Cache.Draw(r.backend, func() { r.DrawMesh(mesh) })
}

// DrawMesh submits every face of mesh to the backend, bypassing the cache.
// Texture binds are issued only when the texture changes between faces.
func (r *Renderer) DrawMesh(mesh *model.Mesh) {
	b := r.backend

	prim := Polygon
	if r.mode == Wireframe {
		prim = LineLoop
	}

	b.PushLighting()
	b.SetTexturing(false)
	if mesh.HasMaterials {
		b.DisableColorMaterial()
	}

	faceNormals := mesh.FaceNormals()
	last := texture.None
	for i := range mesh.Faces {
		face := &mesh.Faces[i]

		if !mesh.HasPerVertexNormals {
			b.Normal(faceNormals[i])
		}

		if face.Material != material.None {
			if mat := r.materials.At(face.Material); mat != nil {
				diffuse := mat.Diffuse
				if face.Texture != texture.None && r.mode == Textured {
					diffuse = white
				}
				b.SetMaterial(mat, diffuse)
			}
		}

		tex := mesh.Texture()
		if tex == texture.None {
			tex = face.Texture
		}
		if tex == texture.None && last != texture.None {
			b.SetTexturing(false)
		}
		if tex != texture.None && tex != last && r.mode == Textured {
			b.SetTexturing(true)
			b.BindTexture(tex)
		}

		b.Begin(prim)
		for k, vi := range face.Vertices {
			if mesh.HasPerVertexNormals {
				b.Normal(mesh.Normals[face.Normals[k]])
			}
			if tex != texture.None && face.TexCoords != nil {
				tc := mesh.TexCoords[face.TexCoords[k]]
				b.TexCoord(tc.S, tc.T)
			}
			b.Vertex(mesh.Vertices[vi])
		}
		b.End()

		last = tex
	}

	b.SetTexturing(false)
	b.PopLighting()
}
