// Package model loads Wavefront OBJ models into meshes.
package model

import (
	"github.com/Faultbox/objscene/internal/engine/material"
	"github.com/Faultbox/objscene/internal/engine/rendercache"
	"github.com/Faultbox/objscene/internal/engine/texture"
	"github.com/Faultbox/objscene/pkg/math"
)

// TexCoord is a texture coordinate. R is carried but never used.
type TexCoord struct {
	S, T, R float32
}

// Face is one polygon of a mesh. Index slices are 0-based and share the
// mesh's index arena. Normals and TexCoords are nil when the source line
// did not supply them; otherwise they have the same length as Vertices.
type Face struct {
	Vertices  []int32
	Normals   []int32
	TexCoords []int32
	Material  int            // material index or material.None
	Texture   texture.Handle // per-face texture or texture.None
}

// HasMaterial reports whether the face references a material.
func (f *Face) HasMaterial() bool {
	return f.Material != material.None
}

// Mesh is a loaded model. It exclusively owns its arrays.
type Mesh struct {
	Path string

	Vertices  []math.Vec3
	Normals   []math.Vec3
	TexCoords []TexCoord
	Faces     []Face

	// HasPerVertexNormals is set when the file declared vn records. Every
	// face then carries normal indices.
	HasPerVertexNormals bool
	// HasMaterials is set when the file referenced a material library,
	// whether or not the library could be loaded.
	HasMaterials bool

	// Cache is the compiled draw cache state.
	Cache rendercache.Cache

	texture     texture.Handle
	faceNormals []math.Vec3
	indices     []int32
}

// NumVertices returns the vertex count.
func (m *Mesh) NumVertices() int { return len(m.Vertices) }

// NumFaces returns the face count.
func (m *Mesh) NumFaces() int { return len(m.Faces) }

// NumNormals returns the vertex normal count.
func (m *Mesh) NumNormals() int { return len(m.Normals) }

// NumTexCoords returns the texture coordinate count.
func (m *Mesh) NumTexCoords() int { return len(m.TexCoords) }

// Texture returns the mesh-wide texture override, or texture.None.
func (m *Mesh) Texture() texture.Handle {
	return m.texture
}

// SetTexture sets a texture used for every face instead of the per-face
// bindings. Pass texture.None to go back to per-face textures.
func (m *Mesh) SetTexture(h texture.Handle) {
	m.texture = h
}

// FaceNormals returns one unit normal per face, computed from the first
// three vertices of each face on first use. Meshes with vertex normals
// return nil.
func (m *Mesh) FaceNormals() []math.Vec3 {
	if m.HasPerVertexNormals {
		return nil
	}
	if len(m.faceNormals) != len(m.Faces) {
		m.faceNormals = make([]math.Vec3, len(m.Faces))
		for i := range m.Faces {
			v := m.Faces[i].Vertices
			m.faceNormals[i] = math.FaceNormal(m.Vertices[v[0]], m.Vertices[v[1]], m.Vertices[v[2]])
		}
	}
	return m.faceNormals
}

// Release drops every array the mesh owns. The mesh must not be drawn
// afterwards.
func (m *Mesh) Release() {
	m.Vertices = nil
	m.Normals = nil
	m.TexCoords = nil
	m.Faces = nil
	m.faceNormals = nil
	m.indices = nil
	m.texture = texture.None
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the middle of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extent on each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// extend grows b to contain p. first marks the first point seen.
func (b *Bounds) extend(p math.Vec3, first bool) {
	if first {
		b.Min, b.Max = p, p
		return
	}
	b.Min.X, b.Max.X = min(b.Min.X, p.X), max(b.Max.X, p.X)
	b.Min.Y, b.Max.Y = min(b.Min.Y, p.Y), max(b.Max.Y, p.Y)
	b.Min.Z, b.Max.Z = min(b.Min.Z, p.Z), max(b.Max.Z, p.Z)
}

// Union returns the smallest box containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	b.extend(other.Min, false)
	b.extend(other.Max, false)
	return b
}
