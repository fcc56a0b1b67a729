package formats

import (
	"fmt"
	"io"
	"strings"
)

// MTLDirective identifies an MTL directive understood by the loader.
type MTLDirective int

const (
	MTLNewMaterial MTLDirective = iota // newmtl name
	MTLAmbient                         // Ka r g b
	MTLDiffuse                         // Kd r g b
	MTLSpecular                        // Ks r g b
	MTLShininess                       // Ns 0..1000
	MTLDissolve                        // d alpha
)

// String returns the directive keyword.
func (d MTLDirective) String() string {
	switch d {
	case MTLNewMaterial:
		return "newmtl"
	case MTLAmbient:
		return "Ka"
	case MTLDiffuse:
		return "Kd"
	case MTLSpecular:
		return "Ks"
	case MTLShininess:
		return "Ns"
	case MTLDissolve:
		return "d"
	default:
		return fmt.Sprintf("MTLDirective(%d)", int(d))
	}
}

var mtlDirectives = map[string]MTLDirective{
	"newmtl": MTLNewMaterial,
	"Ka":     MTLAmbient,
	"Kd":     MTLDiffuse,
	"Ks":     MTLSpecular,
	"Ns":     MTLShininess,
	"d":      MTLDissolve,
}

// mtlArity is the number of values each numeric directive carries.
var mtlArity = map[MTLDirective]int{
	MTLAmbient:   3,
	MTLDiffuse:   3,
	MTLSpecular:  3,
	MTLShininess: 1,
	MTLDissolve:  1,
}

// MTLRecord is one recognized line of a material library.
//
// For newmtl, Name holds the material name. For the numeric directives,
// Values holds the leading numbers that decoded successfully; Err is set
// when a malformed token cut decoding short.
type MTLRecord struct {
	Line      int
	Directive MTLDirective
	Name      string
	Values    []float32
	Err       error
}

// ScanMTL streams the recognized records of a material library to fn.
// Comments and every other directive (map_Kd, illum, Ni, Tr, bump, ...)
// are skipped. Scanning stops at the first error returned by fn.
func ScanMTL(r io.Reader, fn func(MTLRecord) error) error {
	return ScanLines(r, func(lineNo int, line string) error {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || trimmed[0] == '#' {
			return nil
		}

		keyword, rest := splitDirective(trimmed)
		dir, ok := mtlDirectives[keyword]
		if !ok {
			return nil
		}

		rec := MTLRecord{Line: lineNo, Directive: dir}
		if dir == MTLNewMaterial {
			if rest == "" {
				rec.Err = ErrMissingArgument
			}
			rec.Name = rest
			return fn(rec)
		}

		values := make([]float32, mtlArity[dir])
		n, err := ParseFloats(strings.Fields(rest), values)
		rec.Values = values[:n]
		rec.Err = err
		return fn(rec)
	})
}
