package renderer

import (
	"github.com/Faultbox/objscene/internal/engine/material"
	"github.com/Faultbox/objscene/internal/engine/texture"
	"github.com/Faultbox/objscene/pkg/math"
)

// Counters tallies the work submitted to a HeadlessBackend.
type Counters struct {
	Primitives    int
	Vertices      int
	TextureBinds  int
	MaterialSets  int
	ListsCompiled int
	ListsCalled   int
	Uploads       int
}

// HeadlessBackend accepts every call without a GL context and counts the
// work it is given. It hands out increasing handles and list ids.
type HeadlessBackend struct {
	Counters Counters

	nextList    uint32
	nextTexture texture.Handle
}

func (h *HeadlessBackend) GenList() uint32 {
	h.nextList++
	return h.nextList
}

func (h *HeadlessBackend) BeginCompile(uint32) { h.Counters.ListsCompiled++ }
func (h *HeadlessBackend) EndCompile() {}
func (h *HeadlessBackend) CallList(uint32) { h.Counters.ListsCalled++ }
func (h *HeadlessBackend) DeleteList(uint32) {}

func (h *HeadlessBackend) PushLighting() {}
func (h *HeadlessBackend) PopLighting() {}
func (h *HeadlessBackend) SetTexturing(bool) {}
func (h *HeadlessBackend) DisableColorMaterial() {}
func (h *HeadlessBackend) BindTexture(texture.Handle) { h.Counters.TextureBinds++ }
func (h *HeadlessBackend) SetMaterial(*material.Material, [4]float32) { h.Counters.MaterialSets++ }
func (h *HeadlessBackend) Begin(Primitive) { h.Counters.Primitives++ }
func (h *HeadlessBackend) End() {}
func (h *HeadlessBackend) Normal(math.Vec3) {}
func (h *HeadlessBackend) TexCoord(float32, float32) {}
func (h *HeadlessBackend) Vertex(math.Vec3) { h.Counters.Vertices++ }

func (h *HeadlessBackend) GenTexture() texture.Handle {
	h.nextTexture++
	return h.nextTexture
}

func (h *HeadlessBackend) Upload(texture.Handle, texture.Target, texture.CubeFace, int, *texture.Image) {
	h.Counters.Uploads++
}

func (h *HeadlessBackend) SetFilter(texture.Handle, texture.Target, texture.Filter, texture.Filter) {}
func (h *HeadlessBackend) DeleteTexture(texture.Handle) {}

var (
	_ Backend          = (*HeadlessBackend)(nil)
	_ texture.Uploader = (*HeadlessBackend)(nil)
)
