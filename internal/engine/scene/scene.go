// Package scene owns everything a set of loaded models shares: the
// material and texture registries, the live meshes and the renderer.
// Every method is safe for concurrent use; backend calls still have to
// happen on the thread that owns the GL context.
package scene

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/objscene/internal/engine/material"
	"github.com/Faultbox/objscene/internal/engine/model"
	"github.com/Faultbox/objscene/internal/engine/rendercache"
	"github.com/Faultbox/objscene/internal/engine/renderer"
	"github.com/Faultbox/objscene/internal/engine/texture"
	"github.com/Faultbox/objscene/internal/logger"
)

// ErrUnknownMesh is returned for meshes that are not in the live set.
var ErrUnknownMesh = errors.New("mesh is not loaded in this scene")

// Backend is everything the scene needs from the graphics layer.
type Backend interface {
	renderer.Backend
	texture.Uploader
}

// Scene is the loading and drawing context for models.
type Scene struct {
	mu sync.Mutex

	backend   Backend
	materials *material.Registry
	textures  *texture.Registry
	renderer  *renderer.Renderer
	meshes    []*model.Mesh
	mipmap    map[string]bool // mipmap flag each path was last loaded with

	log *zap.Logger
}

// New creates an empty scene drawing to backend and decoding images with dec.
func New(backend Backend, dec texture.Decoder) *Scene {
	materials := material.NewRegistry()
	return &Scene{
		backend:   backend,
		materials: materials,
		textures:  texture.NewRegistry(dec, backend),
		renderer:  renderer.New(backend, materials),
		mipmap:    make(map[string]bool),
		log:       logger.Named("scene"),
	}
}

// LoadObject loads a model file and adds it to the live set. Relative
// material and texture paths resolve against the model's directory.
// A failed load adds nothing, but materials and textures registered before
// the failure stay registered.
func (s *Scene) LoadObject(path string, mipmap bool) (*model.Mesh, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mesh, _, err := s.load(path, mipmap)
	if err != nil {
		return nil, err
	}
	s.meshes = append(s.meshes, mesh)
	return mesh, nil
}

// LoadObjectStats is LoadObject that also returns the parse statistics.
func (s *Scene) LoadObjectStats(path string, mipmap bool) (*model.Mesh, model.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mesh, stats, err := s.load(path, mipmap)
	if err != nil {
		return nil, stats, err
	}
	s.meshes = append(s.meshes, mesh)
	return mesh, stats, nil
}

func (s *Scene) load(path string, mipmap bool) (*model.Mesh, model.Stats, error) {
	mesh, stats, err := model.LoadFile(path, mipmap, resolver{s})
	if err != nil {
		return nil, stats, err
	}
	s.mipmap[path] = mipmap

	s.log.Info("model loaded",
		zap.String("path", path),
		zap.Int("vertices", mesh.NumVertices()),
		zap.Int("faces", mesh.NumFaces()),
		zap.Int("normals", mesh.NumNormals()),
		zap.Int("texcoords", mesh.NumTexCoords()),
		zap.Int("warnings", stats.Warnings),
	)
	return mesh, stats, nil
}

// Release frees mesh and removes it from the live set. A nil mesh releases
// every live mesh.
func (s *Scene) Release(mesh *model.Mesh) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mesh == nil {
		s.releaseAll()
		return nil
	}

	i := slices.Index(s.meshes, mesh)
	if i < 0 {
		return ErrUnknownMesh
	}
	s.releaseMesh(mesh)
	s.meshes = slices.Delete(s.meshes, i, i+1)
	return nil
}

// ReleaseAll frees every live mesh.
func (s *Scene) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseAll()
}

func (s *Scene) releaseAll() {
	for _, mesh := range s.meshes {
		s.releaseMesh(mesh)
	}
	s.log.Debug("released all models", zap.Int("count", len(s.meshes)))
	s.meshes = nil
}

func (s *Scene) releaseMesh(mesh *model.Mesh) {
	mesh.Cache.Invalidate(s.backend)
	mesh.Release()
}

// ReleaseMaterials empties the material and texture registries. Textures
// are deleted from the backend. Live meshes keep their indices; faces whose
// material is gone are drawn without one.
func (s *Scene) ReleaseMaterials() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("releasing materials and textures",
		zap.Int("materials", s.materials.Len()),
		zap.Int("textures", s.textures.Len()),
	)
	s.materials.ReleaseAll()
	s.textures.ReleaseAll()
}

// CreateCache asks for mesh to be compiled on its next draw. A nil mesh
// applies to every live mesh whose cache is not disabled.
func (s *Scene) CreateCache(mesh *model.Mesh) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.targets(mesh) {
		m.Cache.Create(s.backend)
	}
}

// DisableCache drops the compiled form of mesh and stops it from being
// cached again until it is reloaded. A nil mesh applies to every live mesh.
func (s *Scene) DisableCache(mesh *model.Mesh) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.targets(mesh) {
		m.Cache.Disable(s.backend)
	}
}

// InvalidateCache drops the compiled form of mesh so the next draw walks
// its faces again. A nil mesh applies to every live mesh.
func (s *Scene) InvalidateCache(mesh *model.Mesh) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.targets(mesh) {
		m.Cache.Invalidate(s.backend)
	}
}

func (s *Scene) targets(mesh *model.Mesh) []*model.Mesh {
	if mesh == nil {
		return s.meshes
	}
	return []*model.Mesh{mesh}
}

// Draw renders mesh in the current draw mode.
func (s *Scene) Draw(mesh *model.Mesh) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer.Draw(mesh)
}

// DrawAll renders every live mesh in load order.
func (s *Scene) DrawAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, mesh := range s.meshes {
		s.renderer.Draw(mesh)
	}
}

// SetDrawMode changes how meshes are drawn. Compiled meshes keep the mode
// they were recorded with until their cache is invalidated.
func (s *Scene) SetDrawMode(mode renderer.DrawMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderer.SetMode(mode)
}

// DrawMode returns the current draw mode.
func (s *Scene) DrawMode() renderer.DrawMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.Mode()
}

// LoadTexture returns the texture registered under name, loading it first
// if needed.
func (s *Scene) LoadTexture(name string, mipmap bool) (*texture.Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textures.Load(name, mipmap)
}

// LoadCubeTextures loads the six faces {baseName}_{posx..negz}.jpg into one
// cube map registered as baseName.
func (s *Scene) LoadCubeTextures(baseName string, mipmap bool) (*texture.Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textures.LoadCube(baseName, mipmap)
}

// SetTextureFilter changes the filters of one texture, or of every texture
// when h is texture.None.
func (s *Scene) SetTextureFilter(h texture.Handle, min, mag texture.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h == texture.None {
		s.textures.SetFilterAll(min, mag)
		return nil
	}
	return s.textures.SetFilter(h, min, mag)
}

// Textures returns the registered textures.
func (s *Scene) Textures() []*texture.Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textures.Textures()
}

// SetEmission sets the emissive color of a material.
func (s *Scene) SetEmission(name string, r, g, b float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.materials.SetEmission(name, r, g, b)
}

// FindMaterial returns the registry index of a material.
func (s *Scene) FindMaterial(name string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.materials.Find(name)
}

// Material returns the material at index, or nil.
func (s *Scene) Material(index int) *material.Material {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.materials.At(index)
}

// Materials returns the registered materials.
func (s *Scene) Materials() []*material.Material {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.materials.Materials()
}

// Meshes returns the live meshes in load order.
func (s *Scene) Meshes() []*model.Mesh {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.meshes)
}

// Reload loads mesh's file again and swaps the result into mesh's place in
// the live set. The old mesh is released only if the new load succeeds.
// The new mesh keeps the old texture override, and is scheduled for
// compilation if the old one was compiled or pending.
func (s *Scene) Reload(mesh *model.Mesh) (*model.Mesh, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(mesh)
}

func (s *Scene) reload(old *model.Mesh) (*model.Mesh, error) {
	i := slices.Index(s.meshes, old)
	if i < 0 {
		return nil, ErrUnknownMesh
	}

	mesh, _, err := s.load(old.Path, s.mipmap[old.Path])
	if err != nil {
		return nil, fmt.Errorf("reloading: %w", err)
	}

	mesh.SetTexture(old.Texture())
	switch old.Cache.Kind() {
	case rendercache.Cached, rendercache.PendingCompile:
		mesh.Cache.Create(s.backend)
	}

	s.releaseMesh(old)
	s.meshes[i] = mesh
	return mesh, nil
}

// ReloadPath reloads every live mesh loaded from path and returns how many
// were reloaded.
func (s *Scene) ReloadPath(path string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		n    int
		errs error
	)
	for _, mesh := range slices.Clone(s.meshes) {
		if mesh.Path != path {
			continue
		}
		if _, err := s.reload(mesh); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		n++
	}
	return n, errs
}

// resolver gives the model loader access to the registries. It is used
// while the scene lock is already held.
type resolver struct {
	s *Scene
}

func (r resolver) LoadMaterialLibrary(path string) error {
	return r.s.materials.LoadFile(path)
}

func (r resolver) FindMaterial(name string) (int, bool) {
	return r.s.materials.Find(name)
}

func (r resolver) LoadTexture(path string, mipmap bool) (texture.Handle, error) {
	tex, err := r.s.textures.Load(path, mipmap)
	if err != nil {
		return texture.None, err
	}
	return tex.Handle, nil
}
