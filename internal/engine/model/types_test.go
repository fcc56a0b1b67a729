package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/objscene/internal/engine/texture"
	"github.com/Faultbox/objscene/pkg/math"
)

func TestFaceNormals(t *testing.T) {
	mesh, _ := load(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\nf 1 3 2\n", nil)

	normals := mesh.FaceNormals()
	require.Len(t, normals, 2)
	assert.InDelta(t, 1, normals[0].Z, 1e-6, "counter-clockwise face points along +Z")
	assert.InDelta(t, -1, normals[1].Z, 1e-6)

	again := mesh.FaceNormals()
	assert.Same(t, &normals[0], &again[0], "computed once")
}

func TestFaceNormals_VertexNormalMesh(t *testing.T) {
	mesh, _ := load(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//1 3//1\n", nil)
	assert.Nil(t, mesh.FaceNormals())
}

func TestTextureOverride(t *testing.T) {
	var mesh Mesh
	assert.Equal(t, texture.None, mesh.Texture())

	mesh.SetTexture(5)
	assert.Equal(t, texture.Handle(5), mesh.Texture())

	mesh.SetTexture(texture.None)
	assert.Equal(t, texture.None, mesh.Texture())
}

func TestRelease(t *testing.T) {
	mesh, _ := load(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nf 1 2 3\n", nil)
	mesh.SetTexture(2)
	mesh.FaceNormals()

	mesh.Release()
	assert.Equal(t, 0, mesh.NumVertices())
	assert.Equal(t, 0, mesh.NumFaces())
	assert.Equal(t, 0, mesh.NumTexCoords())
	assert.Nil(t, mesh.indices)
	assert.Nil(t, mesh.faceNormals)
	assert.Equal(t, texture.None, mesh.Texture())
}

func TestBounds(t *testing.T) {
	var b Bounds
	b.extend(math.Vec3{X: 1, Y: -2, Z: 3}, true)
	b.extend(math.Vec3{X: -1, Y: 4, Z: 0}, false)

	assert.Equal(t, math.Vec3{X: -1, Y: -2, Z: 0}, b.Min)
	assert.Equal(t, math.Vec3{X: 1, Y: 4, Z: 3}, b.Max)
	assert.Equal(t, math.Vec3{X: 0, Y: 1, Z: 1.5}, b.Center())
	assert.Equal(t, math.Vec3{X: 2, Y: 6, Z: 3}, b.Size())
}

func TestBounds_Union(t *testing.T) {
	a := Bounds{Min: math.Vec3{X: 0, Y: 0, Z: 0}, Max: math.Vec3{X: 1, Y: 1, Z: 1}}
	b := Bounds{Min: math.Vec3{X: -2, Y: 0.5, Z: 0}, Max: math.Vec3{X: 0, Y: 3, Z: 0.5}}

	u := a.Union(b)
	assert.Equal(t, math.Vec3{X: -2, Y: 0, Z: 0}, u.Min)
	assert.Equal(t, math.Vec3{X: 1, Y: 3, Z: 1}, u.Max)
	assert.Equal(t, math.Vec3{X: 1, Y: 1, Z: 1}, a.Max, "receiver is a copy")
}
