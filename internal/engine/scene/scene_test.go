package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/objscene/internal/engine/material"
	"github.com/Faultbox/objscene/internal/engine/rendercache"
	"github.com/Faultbox/objscene/internal/engine/renderer"
	"github.com/Faultbox/objscene/internal/engine/texture"
)

// stubDecoder returns a small RGB image for every file that exists on disk.
type stubDecoder struct{}

func (stubDecoder) Decode(path string, flip bool) (*texture.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return &texture.Image{Components: 3, Width: 2, Height: 2, Pix: make([]byte, 12)}, nil
}

const houseMTL = `newmtl wall
Kd 0.5 0.5 0.5
newmtl roof
Kd 0.8 0.1 0.1
`

const houseOBJ = `mtllib house.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
usemtl wall
usemat brick.jpg
f 1/1 2/2 3/3
usemtl roof
f 1 3 4
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func newTestScene() (*Scene, *renderer.HeadlessBackend) {
	b := &renderer.HeadlessBackend{}
	return New(b, stubDecoder{}), b
}

func TestLoadObject(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"house.obj": houseOBJ,
		"house.mtl": houseMTL,
		"brick.jpg": "",
	})
	s, b := newTestScene()

	mesh, err := s.LoadObject(filepath.Join(dir, "house.obj"), false)
	require.NoError(t, err)

	assert.Equal(t, 4, mesh.NumVertices())
	require.Equal(t, 2, mesh.NumFaces())
	assert.True(t, mesh.HasMaterials)
	assert.Equal(t, []int{0, 1}, []int{mesh.Faces[0].Material, mesh.Faces[1].Material})

	textures := s.Textures()
	require.Len(t, textures, 1)
	assert.Equal(t, filepath.Join(dir, "brick.jpg"), textures[0].Name)
	assert.Equal(t, textures[0].Handle, mesh.Faces[0].Texture)
	assert.Equal(t, texture.None, mesh.Faces[1].Texture, "usemtl resets the texture")
	assert.Equal(t, 1, b.Counters.Uploads)

	idx, ok := s.FindMaterial("roof")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "roof", s.Material(idx).Name)
	assert.Len(t, s.Materials(), 2)

	assert.Equal(t, []any{mesh}, toAny(s.Meshes()))
}

func TestLoadObject_SharedRegistries(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"house.obj": houseOBJ,
		"house.mtl": houseMTL,
		"brick.jpg": "",
	})
	s, b := newTestScene()

	first, err := s.LoadObject(filepath.Join(dir, "house.obj"), false)
	require.NoError(t, err)
	second, err := s.LoadObject(filepath.Join(dir, "house.obj"), false)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Len(t, s.Meshes(), 2)
	assert.Len(t, s.Materials(), 2, "the library is not registered twice")
	assert.Equal(t, 1, b.Counters.Uploads, "the texture is loaded once")
	assert.Equal(t, first.Faces[0].Texture, second.Faces[0].Texture)
}

func TestLoadObject_FailureAddsNothing(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"house.obj": houseOBJ,
		"house.mtl": houseMTL,
	})
	s, _ := newTestScene()

	mesh, err := s.LoadObject(filepath.Join(dir, "house.obj"), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, mesh)
	assert.Empty(t, s.Meshes())

	_, ok := s.FindMaterial("wall")
	assert.True(t, ok, "materials loaded before the failure stay registered")

	_, err = s.LoadObject(filepath.Join(dir, "missing.obj"), false)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRelease(t *testing.T) {
	dir := writeFiles(t, map[string]string{"tri.obj": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"})
	path := filepath.Join(dir, "tri.obj")
	s, _ := newTestScene()

	a, err := s.LoadObject(path, false)
	require.NoError(t, err)
	bMesh, err := s.LoadObject(path, false)
	require.NoError(t, err)
	c, err := s.LoadObject(path, false)
	require.NoError(t, err)

	require.NoError(t, s.Release(bMesh))
	assert.Equal(t, 0, bMesh.NumVertices())
	assert.Equal(t, []any{a, c}, toAny(s.Meshes()))

	assert.ErrorIs(t, s.Release(bMesh), ErrUnknownMesh)

	require.NoError(t, s.Release(nil))
	assert.Empty(t, s.Meshes())
	assert.Equal(t, 0, a.NumFaces())
	assert.Equal(t, 0, c.NumFaces())
}

func TestCaching(t *testing.T) {
	dir := writeFiles(t, map[string]string{"tri.obj": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"})
	path := filepath.Join(dir, "tri.obj")
	s, b := newTestScene()

	cached, err := s.LoadObject(path, false)
	require.NoError(t, err)
	disabled, err := s.LoadObject(path, false)
	require.NoError(t, err)

	s.DisableCache(disabled)
	s.CreateCache(nil)
	assert.Equal(t, rendercache.PendingCompile, cached.Cache.Kind())
	assert.Equal(t, rendercache.Disabled, disabled.Cache.Kind())

	s.DrawAll()
	s.DrawAll()

	assert.Equal(t, rendercache.Cached, cached.Cache.Kind())
	assert.Equal(t, 1, b.Counters.ListsCompiled)
	assert.Equal(t, 1, b.Counters.ListsCalled)
	assert.Equal(t, 3, b.Counters.Primitives, "one recorded traversal and two plain ones")

	s.InvalidateCache(cached)
	assert.Equal(t, rendercache.Uncached, cached.Cache.Kind())

	s.DisableCache(nil)
	s.CreateCache(cached)
	assert.Equal(t, rendercache.Disabled, cached.Cache.Kind())
}

func TestDrawMode(t *testing.T) {
	s, _ := newTestScene()
	assert.Equal(t, renderer.Textured, s.DrawMode())
	s.SetDrawMode(renderer.Wireframe)
	assert.Equal(t, renderer.Wireframe, s.DrawMode())
}

func TestReload(t *testing.T) {
	dir := writeFiles(t, map[string]string{"tri.obj": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"})
	path := filepath.Join(dir, "tri.obj")
	s, _ := newTestScene()

	other, err := s.LoadObject(path, false)
	require.NoError(t, err)
	old, err := s.LoadObject(path, false)
	require.NoError(t, err)
	old.SetTexture(3)
	s.CreateCache(old)

	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nf 1 2 3\nf 2 4 3\n"), 0o644))

	fresh, err := s.Reload(old)
	require.NoError(t, err)
	assert.Equal(t, 4, fresh.NumVertices())
	assert.Equal(t, texture.Handle(3), fresh.Texture())
	assert.Equal(t, rendercache.PendingCompile, fresh.Cache.Kind())
	assert.Equal(t, 0, old.NumVertices(), "old mesh is released")
	assert.Equal(t, []any{other, fresh}, toAny(s.Meshes()))

	_, err = s.Reload(old)
	assert.ErrorIs(t, err, ErrUnknownMesh)
}

func TestReload_FailureKeepsOldMesh(t *testing.T) {
	dir := writeFiles(t, map[string]string{"tri.obj": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"})
	path := filepath.Join(dir, "tri.obj")
	s, _ := newTestScene()

	old, err := s.LoadObject(path, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0\nf 1 2 3\n"), 0o644))

	_, err = s.Reload(old)
	require.Error(t, err)
	assert.Equal(t, 3, old.NumVertices())
	assert.Equal(t, []any{old}, toAny(s.Meshes()))
}

func TestReloadPath(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.obj": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n",
		"b.obj": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n",
	})
	s, _ := newTestScene()
	for _, name := range []string{"a.obj", "a.obj", "b.obj"} {
		_, err := s.LoadObject(filepath.Join(dir, name), false)
		require.NoError(t, err)
	}

	n, err := s.ReloadPath(filepath.Join(dir, "a.obj"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, os.Remove(filepath.Join(dir, "b.obj")))
	n, err = s.ReloadPath(filepath.Join(dir, "b.obj"))
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Len(t, s.Meshes(), 3)
}

func TestReleaseMaterials(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"house.obj": houseOBJ,
		"house.mtl": houseMTL,
		"brick.jpg": "",
	})
	s, _ := newTestScene()
	mesh, err := s.LoadObject(filepath.Join(dir, "house.obj"), false)
	require.NoError(t, err)

	s.ReleaseMaterials()
	assert.Empty(t, s.Materials())
	assert.Empty(t, s.Textures())
	assert.Nil(t, s.Material(mesh.Faces[0].Material))

	s.Draw(mesh)
}

func TestTextures(t *testing.T) {
	files := map[string]string{"a.jpg": "", "b.jpg": ""}
	for _, face := range texture.CubeFaces {
		files["sky_"+face.Suffix()+".jpg"] = ""
	}
	dir := writeFiles(t, files)
	s, b := newTestScene()

	a, err := s.LoadTexture(filepath.Join(dir, "a.jpg"), true)
	require.NoError(t, err)
	_, err = s.LoadTexture(filepath.Join(dir, "b.jpg"), false)
	require.NoError(t, err)

	cube, err := s.LoadCubeTextures(filepath.Join(dir, "sky"), false)
	require.NoError(t, err)
	assert.Equal(t, texture.TargetCubeMap, cube.Target)
	assert.Equal(t, filepath.Join(dir, "sky"), cube.Name)
	assert.Len(t, s.Textures(), 3)
	assert.Equal(t, 2+1+6, b.Counters.Uploads, "a has a 2x2 and a 1x1 level")

	require.NoError(t, s.SetTextureFilter(a.Handle, texture.FilterNearest, texture.FilterNearest))
	require.NoError(t, s.SetTextureFilter(texture.None, texture.FilterLinear, texture.FilterLinear))
	assert.ErrorIs(t, s.SetTextureFilter(99, texture.FilterLinear, texture.FilterLinear), texture.ErrNotFound)
}

func TestSetEmission(t *testing.T) {
	dir := writeFiles(t, map[string]string{"house.mtl": houseMTL})
	s, _ := newTestScene()
	require.NoError(t, s.materials.LoadFile(filepath.Join(dir, "house.mtl")))

	require.NoError(t, s.SetEmission("roof", 1, 0.5, 0))
	idx, _ := s.FindMaterial("roof")
	assert.Equal(t, [4]float32{1, 0.5, 0, 1}, s.Material(idx).Emission)

	assert.ErrorIs(t, s.SetEmission("chimney", 1, 1, 1), material.ErrNotFound)
}

func TestConcurrentAccess(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"house.obj": houseOBJ,
		"house.mtl": houseMTL,
		"brick.jpg": "",
	})
	path := filepath.Join(dir, "house.obj")
	s, _ := newTestScene()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.LoadObject(path, false)
			assert.NoError(t, err)
			s.FindMaterial("wall")
			s.CreateCache(nil)
			s.DrawAll()
		}()
	}
	wg.Wait()

	assert.Len(t, s.Meshes(), 8)
	assert.Len(t, s.Materials(), 2)
	assert.Len(t, s.Textures(), 1)
}

func toAny[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}
