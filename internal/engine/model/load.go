package model

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/objscene/internal/engine/material"
	"github.com/Faultbox/objscene/internal/engine/texture"
	"github.com/Faultbox/objscene/internal/logger"
	"github.com/Faultbox/objscene/pkg/formats"
	"github.com/Faultbox/objscene/pkg/math"
)

// Load errors.
var (
	ErrRecordOverflow  = errors.New("more records than counted in the first pass")
	ErrRecordShortfall = errors.New("fewer records than counted in the first pass")
	ErrIndexOutOfRange = errors.New("face index out of range")
	ErrMissingNormals  = errors.New("face has no normal indices in a mesh with vertex normals")
)

// Resolver supplies the materials and textures a model file refers to.
type Resolver interface {
	// LoadMaterialLibrary loads an MTL file into the material registry.
	LoadMaterialLibrary(path string) error
	// FindMaterial returns the registry index of a material.
	FindMaterial(name string) (int, bool)
	// LoadTexture returns the handle of a texture, loading it on first use.
	LoadTexture(path string, mipmap bool) (texture.Handle, error)
}

// Options control a load.
type Options struct {
	// Dir is the directory relative mtllib and usemat paths resolve against.
	Dir string
	// Mipmap requests mip chains for textures referenced by usemat.
	Mipmap bool
}

// Stats describes a loaded mesh.
type Stats struct {
	Census       formats.OBJCensus
	Bounds       Bounds
	Materials    int // usemtl lines that resolved to a material
	Warnings     int // numeric fields that failed to parse, plus skipped faces
	SkippedFaces int // malformed face lines left out of the mesh
}

// LoadFile opens path and loads it with Load. Relative material and texture
// paths resolve against the model's directory.
func LoadFile(path string, mipmap bool, res Resolver) (*Mesh, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("opening model: %w", err)
	}
	defer f.Close()

	mesh, stats, err := Load(f, Options{Dir: filepath.Dir(path), Mipmap: mipmap}, res)
	if err != nil {
		return nil, stats, fmt.Errorf("loading %s: %w", path, err)
	}
	mesh.Path = path
	return mesh, stats, nil
}

// Load reads an OBJ stream in two passes. The first pass counts records so
// the second can fill exactly sized arrays. The mesh is returned only if the
// whole stream parsed and every face index is valid.
func Load(r io.ReadSeeker, opts Options, res Resolver) (*Mesh, Stats, error) {
	census, err := formats.CountOBJ(r)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("counting records: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, Stats{}, fmt.Errorf("rewinding: %w", err)
	}

	p := newParser(census, opts, res)
	if err := formats.ScanLines(r, p.line); err != nil {
		return nil, p.stats, err
	}
	if err := p.finish(); err != nil {
		return nil, p.stats, err
	}

	log := logger.Named("model")
	log.Debug("model loaded",
		zap.Stringer("census", census),
		zap.Bool("vertex_normals", p.mesh.HasPerVertexNormals),
		zap.Bool("materials", p.mesh.HasMaterials),
		zap.Int("indices", len(p.mesh.indices)),
	)
	if census.Vertices > 0 {
		lo, hi := p.stats.Bounds.Min.Array(), p.stats.Bounds.Max.Array()
		log.Debug("model bounds",
			zap.Float32s("min", lo[:]),
			zap.Float32s("max", hi[:]),
		)
	}
	return p.mesh, p.stats, nil
}

// span locates one index sequence in the arena.
type span struct {
	off, n int
}

// pendingFace is a face whose index sequences still point into the growing
// arena by offset.
type pendingFace struct {
	line      int
	vertices  span
	normals   span
	texCoords span
	hasNorm   bool
	hasTex    bool
	material  int
	texture   texture.Handle
}

type parser struct {
	opts  Options
	res   Resolver
	mesh  *Mesh
	stats Stats

	nv, nn, nt int
	faces      []pendingFace

	material int
	texture  texture.Handle
}

func newParser(census formats.OBJCensus, opts Options, res Resolver) *parser {
	return &parser{
		opts: opts,
		res:  res,
		mesh: &Mesh{
			Vertices:  make([]math.Vec3, census.Vertices),
			Normals:   make([]math.Vec3, census.Normals),
			TexCoords: make([]TexCoord, census.TexCoords),
			indices:   make([]int32, 0, census.Faces*4),
		},
		stats:    Stats{Census: census},
		faces:    make([]pendingFace, 0, census.Faces),
		material: material.None,
		texture:  texture.None,
	}
}

func (p *parser) line(lineNo int, line string) error {
	kind, rest := formats.ClassifyOBJLine(line)
	var err error
	switch kind {
	case formats.OBJMaterialLib:
		p.materialLib(rest)
	case formats.OBJUseMaterial:
		p.useMaterial(rest)
	case formats.OBJUseTexture:
		err = p.useTexture(rest)
	case formats.OBJVertex:
		err = p.vertex(lineNo, rest)
	case formats.OBJNormal:
		err = p.normal(lineNo, rest)
	case formats.OBJTexCoord:
		err = p.texCoord(lineNo, rest)
	case formats.OBJFace:
		err = p.face(lineNo, rest)
	}
	if err != nil {
		return &formats.LineError{Line: lineNo, Err: err}
	}
	return nil
}

func (p *parser) resolve(name string) string {
	if p.opts.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.opts.Dir, name)
}

func (p *parser) materialLib(name string) {
	p.mesh.HasMaterials = true
	if name == "" {
		return
	}
	path := p.resolve(name)
	if err := p.res.LoadMaterialLibrary(path); err != nil {
		logger.Named("model").Warn("material library not loaded",
			zap.String("path", path), zap.Error(err))
	}
}

func (p *parser) useMaterial(name string) {
	p.texture = texture.None
	idx, ok := p.res.FindMaterial(name)
	if !ok {
		logger.Named("model").Debug("unknown material", zap.String("name", name))
		p.material = material.None
		return
	}
	p.material = idx
	p.stats.Materials++
}

func (p *parser) useTexture(name string) error {
	if name == formats.NullTexture || name == "" {
		p.texture = texture.None
		return nil
	}
	h, err := p.res.LoadTexture(p.resolve(name), p.opts.Mipmap)
	if err != nil {
		return err
	}
	p.texture = h
	return nil
}

func (p *parser) vector(lineNo int, kind formats.OBJRecord, rest string) [3]float32 {
	var v [3]float32
	if _, err := formats.ParseVector(rest, &v); err != nil {
		p.stats.Warnings++
		logger.Named("model").Warn("malformed record",
			zap.Int("line", lineNo),
			zap.Stringer("kind", kind),
			zap.Error(err),
		)
	}
	return v
}

func (p *parser) vertex(lineNo int, rest string) error {
	if p.nv >= len(p.mesh.Vertices) {
		return fmt.Errorf("%w: vertex %d", ErrRecordOverflow, p.nv+1)
	}
	v := p.vector(lineNo, formats.OBJVertex, rest)
	pt := math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	p.mesh.Vertices[p.nv] = pt
	p.stats.Bounds.extend(pt, p.nv == 0)
	p.nv++
	return nil
}

func (p *parser) normal(lineNo int, rest string) error {
	if p.nn >= len(p.mesh.Normals) {
		return fmt.Errorf("%w: normal %d", ErrRecordOverflow, p.nn+1)
	}
	v := p.vector(lineNo, formats.OBJNormal, rest)
	p.mesh.Normals[p.nn] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	p.mesh.HasPerVertexNormals = true
	p.nn++
	return nil
}

func (p *parser) texCoord(lineNo int, rest string) error {
	if p.nt >= len(p.mesh.TexCoords) {
		return fmt.Errorf("%w: texcoord %d", ErrRecordOverflow, p.nt+1)
	}
	v := p.vector(lineNo, formats.OBJTexCoord, rest)
	p.mesh.TexCoords[p.nt] = TexCoord{S: v[0], T: v[1], R: v[2]}
	p.nt++
	return nil
}

func (p *parser) face(lineNo int, rest string) error {
	if read := len(p.faces) + p.stats.SkippedFaces; read >= p.stats.Census.Faces {
		return fmt.Errorf("%w: face %d", ErrRecordOverflow, read+1)
	}
	rec, err := formats.ParseFace(rest)
	if err != nil {
		p.stats.SkippedFaces++
		p.stats.Warnings++
		logger.Named("model").Warn("skipping malformed face",
			zap.Int("line", lineNo),
			zap.Error(err),
		)
		return nil
	}

	f := pendingFace{
		line:     lineNo,
		material: p.material,
		texture:  p.texture,
	}
	if f.vertices, err = p.appendIndices(rec.Vertices, p.nv, "vertex"); err != nil {
		return err
	}
	if rec.TexCoords != nil {
		f.hasTex = true
		if f.texCoords, err = p.appendIndices(rec.TexCoords, p.nt, "texcoord"); err != nil {
			return err
		}
	}
	if rec.Normals != nil {
		f.hasNorm = true
		if f.normals, err = p.appendIndices(rec.Normals, p.nn, "normal"); err != nil {
			return err
		}
	}
	p.faces = append(p.faces, f)
	return nil
}

// appendIndices converts raw file indices to 0-based ones and appends them
// to the arena. Negative indices count back from the seen records. Indices
// that do not fit the arena's int32 are out of range for any mesh.
func (p *parser) appendIndices(raw []int, seen int, kind string) (span, error) {
	s := span{off: len(p.mesh.indices), n: len(raw)}
	for _, idx := range raw {
		abs := idx - 1
		if idx < 0 {
			abs = seen + idx
		}
		if int(int32(abs)) != abs {
			return span{}, fmt.Errorf("%w: %s %d", ErrIndexOutOfRange, kind, idx)
		}
		p.mesh.indices = append(p.mesh.indices, int32(abs))
	}
	return s, nil
}

// finish checks the record counts, validates every face and builds the
// final face slices over the arena.
func (p *parser) finish() error {
	c := p.stats.Census
	read := len(p.faces) + p.stats.SkippedFaces
	if p.nv != c.Vertices || p.nn != c.Normals || p.nt != c.TexCoords || read != c.Faces {
		return fmt.Errorf("%w: read v=%d vn=%d vt=%d f=%d, counted %s",
			ErrRecordShortfall, p.nv, p.nn, p.nt, read, c)
	}

	m := p.mesh
	m.Faces = make([]Face, len(p.faces))
	for i, pf := range p.faces {
		face := &m.Faces[i]
		face.Material = pf.material
		face.Texture = pf.texture
		face.Vertices = p.window(pf.vertices)
		if err := checkRange(face.Vertices, len(m.Vertices), "vertex"); err != nil {
			return &formats.LineError{Line: pf.line, Err: err}
		}
		if pf.hasTex {
			face.TexCoords = p.window(pf.texCoords)
			if err := checkRange(face.TexCoords, len(m.TexCoords), "texcoord"); err != nil {
				return &formats.LineError{Line: pf.line, Err: err}
			}
		}
		if pf.hasNorm {
			face.Normals = p.window(pf.normals)
			if err := checkRange(face.Normals, len(m.Normals), "normal"); err != nil {
				return &formats.LineError{Line: pf.line, Err: err}
			}
		} else if m.HasPerVertexNormals {
			return &formats.LineError{Line: pf.line, Err: ErrMissingNormals}
		}
	}
	return nil
}

func (p *parser) window(s span) []int32 {
	return p.mesh.indices[s.off : s.off+s.n : s.off+s.n]
}

func checkRange(indices []int32, n int, kind string) error {
	for _, idx := range indices {
		if idx < 0 || int(idx) >= n {
			return fmt.Errorf("%w: %s %d of %d", ErrIndexOutOfRange, kind, idx+1, n)
		}
	}
	return nil
}
