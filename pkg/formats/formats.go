// Package formats provides line-level parsers for the Wavefront OBJ model
// format and its MTL material library companion.
//
// The parsers here are stateless grammars: they classify lines, count
// records and decode single records. Building meshes and registering
// materials is done by the engine packages on top of them.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Shared parse errors.
var (
	ErrMalformedNumber = errors.New("malformed numeric field")
	ErrMissingArgument = errors.New("directive is missing its argument")
)

// maxLineLength bounds a single line. Real exports stay far below it.
const maxLineLength = 1 << 20

// LineError annotates a parse error with the 1-based line it occurred on.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// ScanLines calls fn for every line of r with its 1-based line number.
// Trailing carriage returns are stripped. Scanning stops at the first
// error returned by fn.
func ScanLines(r io.Reader, fn func(lineNo int, line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineLength)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if err := fn(lineNo, line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading line %d: %w", lineNo+1, err)
	}
	return nil
}

// splitDirective splits a line into its keyword and the trimmed remainder.
// Leading whitespace is ignored.
func splitDirective(line string) (keyword, rest string) {
	line = strings.TrimLeft(line, " \t")
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}

// ParseFloats decodes whitespace-separated numbers from fields into dst.
// Like sscanf it stops at the first token that is not a number: the
// returned count says how many leading elements of dst were written, and
// err is ErrMalformedNumber when a bad token stopped decoding early.
// Missing trailing fields are not an error.
func ParseFloats(fields []string, dst []float32) (int, error) {
	n := 0
	for n < len(dst) && n < len(fields) {
		f, err := strconv.ParseFloat(fields[n], 32)
		if err != nil {
			return n, fmt.Errorf("%w: %q", ErrMalformedNumber, fields[n])
		}
		dst[n] = float32(f)
		n++
	}
	return n, nil
}
