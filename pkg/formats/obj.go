package formats

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrMalformedFace      = errors.New("malformed face record")
	ErrTooFewFaceVertices = errors.New("face has fewer than 3 vertices")
	ErrTooManyFaceVerts   = errors.New("face has more than 10 vertices")
)

// Face size limits accepted by the loader.
const (
	MinFaceVertices = 3
	MaxFaceVertices = 10
)

// NullTexture is the texture name some exporters write to mean "no texture".
const NullTexture = "(null)"

// OBJRecord identifies the kind of an OBJ line.
type OBJRecord int

const (
	OBJUnknown     OBJRecord = iota // Unrecognized line, ignored
	OBJComment                      // # comment
	OBJVertex                       // v x y z
	OBJNormal                       // vn x y z
	OBJTexCoord                     // vt s t r
	OBJFace                         // f v/t/n ...
	OBJMaterialLib                  // mtllib file
	OBJUseMaterial                  // usemtl name
	OBJUseTexture                   // usemat file
)

// String returns the directive keyword of the record kind.
func (k OBJRecord) String() string {
	switch k {
	case OBJComment:
		return "#"
	case OBJVertex:
		return "v"
	case OBJNormal:
		return "vn"
	case OBJTexCoord:
		return "vt"
	case OBJFace:
		return "f"
	case OBJMaterialLib:
		return "mtllib"
	case OBJUseMaterial:
		return "usemtl"
	case OBJUseTexture:
		return "usemat"
	default:
		return "unknown"
	}
}

// ClassifyOBJLine returns the record kind of line and the text following
// its keyword.
func ClassifyOBJLine(line string) (OBJRecord, string) {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return OBJComment, trimmed[1:]
	}

	keyword, rest := splitDirective(trimmed)
	switch keyword {
	case "v":
		return OBJVertex, rest
	case "vn":
		return OBJNormal, rest
	case "vt":
		return OBJTexCoord, rest
	case "f":
		return OBJFace, rest
	case "mtllib":
		return OBJMaterialLib, rest
	case "usemtl":
		return OBJUseMaterial, rest
	case "usemat":
		return OBJUseTexture, rest
	default:
		return OBJUnknown, rest
	}
}

// OBJCensus holds per-kind record counts of an OBJ stream.
type OBJCensus struct {
	Vertices  int
	Faces     int
	Normals   int
	TexCoords int
}

// String returns a compact summary of the counts.
func (c OBJCensus) String() string {
	return fmt.Sprintf("v=%d vn=%d vt=%d f=%d", c.Vertices, c.Normals, c.TexCoords, c.Faces)
}

// CountOBJ reads r to the end and counts vertex, normal, texcoord and face
// records. All other lines are ignored.
func CountOBJ(r io.Reader) (OBJCensus, error) {
	var c OBJCensus
	err := ScanLines(r, func(_ int, line string) error {
		kind, _ := ClassifyOBJLine(line)
		switch kind {
		case OBJVertex:
			c.Vertices++
		case OBJNormal:
			c.Normals++
		case OBJTexCoord:
			c.TexCoords++
		case OBJFace:
			c.Faces++
		}
		return nil
	})
	return c, err
}

// FaceRecord is a decoded face line. Indices are exactly as written in the
// file: positive values are 1-based, negative values are relative to the
// end of the records read so far. TexCoords and Normals are nil when the
// face does not supply them.
type FaceRecord struct {
	Vertices  []int
	TexCoords []int
	Normals   []int
}

// ParseFace decodes the arguments of an "f" line. Each whitespace separated
// group is one of v, v/t, v//n or v/t/n. An empty field between slashes
// means the index is absent.
//
// Every group must agree on which optional fields are present; a face that
// gives a texcoord for one vertex but not another is rejected.
func ParseFace(args string) (FaceRecord, error) {
	groups := strings.Fields(args)
	if len(groups) < MinFaceVertices {
		return FaceRecord{}, fmt.Errorf("%w: %w (%d)", ErrMalformedFace, ErrTooFewFaceVertices, len(groups))
	}
	if len(groups) > MaxFaceVertices {
		return FaceRecord{}, fmt.Errorf("%w: %w (%d)", ErrMalformedFace, ErrTooManyFaceVerts, len(groups))
	}

	var rec FaceRecord
	rec.Vertices = make([]int, len(groups))
	texIdx := make([]int, len(groups))
	normIdx := make([]int, len(groups))

	hasTex, hasNorm := false, false
	for i, group := range groups {
		parts := strings.Split(group, "/")
		if len(parts) > 3 {
			return FaceRecord{}, fmt.Errorf("%w: group %q has too many fields", ErrMalformedFace, group)
		}

		v, ok, err := parseIndex(parts[0])
		if err != nil {
			return FaceRecord{}, err
		}
		if !ok {
			return FaceRecord{}, fmt.Errorf("%w: group %q has no vertex index", ErrMalformedFace, group)
		}
		rec.Vertices[i] = v

		t, tOK := 0, false
		if len(parts) > 1 {
			if t, tOK, err = parseIndex(parts[1]); err != nil {
				return FaceRecord{}, err
			}
		}
		n, nOK := 0, false
		if len(parts) > 2 {
			if n, nOK, err = parseIndex(parts[2]); err != nil {
				return FaceRecord{}, err
			}
		}

		if i == 0 {
			hasTex, hasNorm = tOK, nOK
		} else if tOK != hasTex || nOK != hasNorm {
			return FaceRecord{}, fmt.Errorf("%w: group %q does not match the fields of the first group", ErrMalformedFace, group)
		}
		texIdx[i] = t
		normIdx[i] = n
	}

	if hasTex {
		rec.TexCoords = texIdx
	}
	if hasNorm {
		rec.Normals = normIdx
	}
	return rec, nil
}

// parseIndex decodes one index field. An empty field is reported as absent.
func parseIndex(field string) (int, bool, error) {
	if field == "" {
		return 0, false, nil
	}
	idx, err := strconv.Atoi(field)
	if err != nil {
		return 0, false, fmt.Errorf("%w: bad index %q", ErrMalformedFace, field)
	}
	if idx == 0 {
		return 0, false, fmt.Errorf("%w: index 0 is not valid", ErrMalformedFace)
	}
	return idx, true, nil
}

// ParseVector decodes up to three numbers of a v, vn or vt line into dst.
// It has the same partial-decode semantics as ParseFloats.
func ParseVector(args string, dst *[3]float32) (int, error) {
	return ParseFloats(strings.Fields(args), dst[:])
}
