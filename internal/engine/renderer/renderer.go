// Package renderer draws meshes with the OpenGL 2.1 fixed-function pipeline.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/objscene/internal/engine/material"
	"github.com/Faultbox/objscene/internal/engine/texture"
	"github.com/Faultbox/objscene/internal/logger"
	"github.com/Faultbox/objscene/pkg/math"
)

// Config holds GL backend configuration.
type Config struct {
	Width  int
	Height int
	FOV    float32 // vertical field of view in degrees
}

// GLBackend implements Backend and texture.Uploader over an OpenGL 2.1
// compatibility context. All methods must run on the thread that owns the
// context.
type GLBackend struct {
	config Config
	log    *zap.Logger
}

// NewGLBackend loads the GL entry points and sets up default state.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func NewGLBackend(cfg Config) (*GLBackend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	b := &GLBackend{config: cfg, log: logger.Named("renderer")}
	b.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ShadeModel(gl.SMOOTH)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	gl.Enable(gl.LIGHTING)
	gl.Enable(gl.LIGHT0)
	gl.Enable(gl.NORMALIZE)
	gl.LightModeli(gl.LIGHT_MODEL_TWO_SIDE, gl.TRUE)
	gl.Lightfv(gl.LIGHT0, gl.AMBIENT, &[]float32{0.2, 0.2, 0.2, 1}[0])
	gl.Lightfv(gl.LIGHT0, gl.DIFFUSE, &[]float32{0.8, 0.8, 0.8, 1}[0])
	gl.Lightfv(gl.LIGHT0, gl.SPECULAR, &[]float32{0.5, 0.5, 0.5, 1}[0])

	b.Resize(cfg.Width, cfg.Height)
	return b, nil
}

// Resize updates the viewport and projection.
func (b *GLBackend) Resize(width, height int) {
	if height <= 0 {
		height = 1
	}
	b.config.Width = width
	b.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))

	fov := b.config.FOV
	if fov <= 0 {
		fov = 45
	}
	proj := mgl32.Perspective(mgl32.DegToRad(fov), float32(width)/float32(height), 0.1, 10000)
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadMatrixf(&proj[0])
	gl.MatrixMode(gl.MODELVIEW)

	b.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// BeginFrame clears the buffers and loads the view matrix. The light sits
// at the eye.
func (b *GLBackend) BeginFrame(view mgl32.Mat4) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()
	gl.Lightfv(gl.LIGHT0, gl.POSITION, &[]float32{0, 0, 1, 0}[0])
	gl.LoadMatrixf(&view[0])
}

// EndFrame reports any GL error raised during the frame.
func (b *GLBackend) EndFrame() {
	if code := gl.GetError(); code != gl.NO_ERROR {
		b.log.Warn("GL error", zap.Uint32("code", code))
	}
}

// GenList reserves a display list.
func (b *GLBackend) GenList() uint32 {
	return gl.GenLists(1)
}

// BeginCompile records the following calls into list id while executing them.
func (b *GLBackend) BeginCompile(id uint32) {
	gl.NewList(id, gl.COMPILE_AND_EXECUTE)
}

func (b *GLBackend) EndCompile() {
	gl.EndList()
}

func (b *GLBackend) CallList(id uint32) {
	gl.CallList(id)
}

func (b *GLBackend) DeleteList(id uint32) {
	gl.DeleteLists(id, 1)
}

func (b *GLBackend) PushLighting() {
	gl.PushAttrib(gl.LIGHTING_BIT)
}

func (b *GLBackend) PopLighting() {
	gl.PopAttrib()
}

func (b *GLBackend) SetTexturing(enabled bool) {
	if enabled {
		gl.Enable(gl.TEXTURE_2D)
	} else {
		gl.Disable(gl.TEXTURE_2D)
	}
}

func (b *GLBackend) DisableColorMaterial() {
	gl.Disable(gl.COLOR_MATERIAL)
}

func (b *GLBackend) BindTexture(h texture.Handle) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(h))
}

func (b *GLBackend) SetMaterial(m *material.Material, diffuse [4]float32) {
	gl.Materialfv(gl.FRONT, gl.AMBIENT, &m.Ambient[0])
	gl.Materialfv(gl.FRONT, gl.DIFFUSE, &diffuse[0])
	gl.Materialfv(gl.FRONT, gl.SPECULAR, &m.Specular[0])
	gl.Materialfv(gl.FRONT, gl.EMISSION, &m.Emission[0])
	gl.Materialf(gl.FRONT, gl.SHININESS, m.Shininess)
}

func (b *GLBackend) Begin(p Primitive) {
	if p == LineLoop {
		gl.Begin(gl.LINE_LOOP)
		return
	}
	gl.Begin(gl.POLYGON)
}

func (b *GLBackend) End() {
	gl.End()
}

func (b *GLBackend) Normal(n math.Vec3) {
	gl.Normal3f(n.X, n.Y, n.Z)
}

func (b *GLBackend) TexCoord(s, t float32) {
	gl.TexCoord2f(s, t)
}

func (b *GLBackend) Vertex(v math.Vec3) {
	gl.Vertex3f(v.X, v.Y, v.Z)
}

// GenTexture reserves a texture name.
func (b *GLBackend) GenTexture() texture.Handle {
	var id uint32
	gl.GenTextures(1, &id)
	return texture.Handle(id)
}

// Upload sends one mip level of img.
func (b *GLBackend) Upload(h texture.Handle, target texture.Target, face texture.CubeFace, level int, img *texture.Image) {
	bindTarget, imageTarget := uint32(gl.TEXTURE_2D), uint32(gl.TEXTURE_2D)
	if target == texture.TargetCubeMap {
		bindTarget = gl.TEXTURE_CUBE_MAP
		imageTarget = gl.TEXTURE_CUBE_MAP_POSITIVE_X + uint32(face)
	}

	format := uint32(gl.RGB)
	if img.Format() == texture.FormatLuminance {
		format = gl.LUMINANCE
	}

	gl.BindTexture(bindTarget, uint32(h))
	gl.TexImage2D(imageTarget, int32(level), int32(format),
		int32(img.Width), int32(img.Height),
		0, format, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))

	if target == texture.TargetCubeMap {
		gl.TexParameteri(bindTarget, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(bindTarget, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(bindTarget, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	} else {
		gl.TexParameteri(bindTarget, gl.TEXTURE_WRAP_S, gl.REPEAT)
		gl.TexParameteri(bindTarget, gl.TEXTURE_WRAP_T, gl.REPEAT)
	}
}

// SetFilter sets the minification and magnification filters of h.
func (b *GLBackend) SetFilter(h texture.Handle, target texture.Target, min, mag texture.Filter) {
	bindTarget := uint32(gl.TEXTURE_2D)
	if target == texture.TargetCubeMap {
		bindTarget = gl.TEXTURE_CUBE_MAP
	}
	gl.BindTexture(bindTarget, uint32(h))
	gl.TexParameteri(bindTarget, gl.TEXTURE_MIN_FILTER, glFilter(min))
	gl.TexParameteri(bindTarget, gl.TEXTURE_MAG_FILTER, glFilter(mag))
}

// DeleteTexture frees h.
func (b *GLBackend) DeleteTexture(h texture.Handle) {
	id := uint32(h)
	gl.DeleteTextures(1, &id)
}

func glFilter(f texture.Filter) int32 {
	switch f {
	case texture.FilterNearest:
		return gl.NEAREST
	case texture.FilterNearestMipmapNearest:
		return gl.NEAREST_MIPMAP_NEAREST
	case texture.FilterLinearMipmapNearest:
		return gl.LINEAR_MIPMAP_NEAREST
	case texture.FilterNearestMipmapLinear:
		return gl.NEAREST_MIPMAP_LINEAR
	case texture.FilterLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	default:
		return gl.LINEAR
	}
}

var (
	_ Backend          = (*GLBackend)(nil)
	_ texture.Uploader = (*GLBackend)(nil)
)
