package material

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const redBlue = `# two materials
newmtl Red
Ka 0.2 0.0 0.0
Kd 0.9 0.1 0.1
Ks 1.0 1.0 1.0
Ns 500
d 0.5
illum 2
map_Kd red.jpg

newmtl Blue
Kd 0.0 0.0 1.0
`

func TestLoad(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Load(strings.NewReader(redBlue)))
	require.Equal(t, 2, r.Len())

	idx, ok := r.Find("Red")
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	red := r.At(idx)
	assert.Equal(t, [4]float32{0.2, 0, 0, 0.5}, red.Ambient)
	assert.Equal(t, [4]float32{0.9, 0.1, 0.1, 0.5}, red.Diffuse)
	assert.Equal(t, [4]float32{1, 1, 1, 0.5}, red.Specular)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, red.Emission)
	assert.InDelta(t, 64.0, red.Shininess, 1e-4)

	blue := r.Lookup("Blue")
	require.NotNil(t, blue)
	assert.Equal(t, [4]float32{0, 0, 1, 1}, blue.Diffuse)
	assert.Equal(t, [4]float32{0.2, 0.2, 0.2, 1}, blue.Ambient, "unset fields keep defaults")

	_, ok = r.Find("Green")
	assert.False(t, ok)
	assert.Nil(t, r.At(5))
	assert.Nil(t, r.At(None))
}

func TestLoad_DuplicateKeepsFirst(t *testing.T) {
	src := "newmtl Foo\nKd 1 0 0\nNs 1000\nnewmtl Foo\nKd 0 1 0\nNs 0\n"
	r := NewRegistry()
	require.NoError(t, r.Load(strings.NewReader(src)))

	require.Equal(t, 1, r.Len())
	foo := r.Lookup("Foo")
	assert.Equal(t, [4]float32{1, 0, 0, 1}, foo.Diffuse)
	assert.Equal(t, float32(128), foo.Shininess)
}

func TestLoad_DuplicateAcrossLibraries(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Load(strings.NewReader("newmtl Foo\nKa 1 1 1\n")))
	require.NoError(t, r.Load(strings.NewReader("newmtl Foo\nKa 0 0 0\nnewmtl Bar\n")))

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, r.Lookup("Foo").Ambient)
	idx, _ := r.Find("Bar")
	assert.Equal(t, 1, idx)
}

func TestLoad_MalformedFieldKeepsGoing(t *testing.T) {
	src := "newmtl M\nKd 0.5 bad 0.7\nKs 0.3 0.3 0.3\nNs x\n"
	r := NewRegistry()
	require.NoError(t, r.Load(strings.NewReader(src)))

	m := r.Lookup("M")
	require.NotNil(t, m)
	assert.Equal(t, [4]float32{0.5, 0.8, 0.8, 1}, m.Diffuse, "components after the bad token are untouched")
	assert.Equal(t, [4]float32{0.3, 0.3, 0.3, 1}, m.Specular)
	assert.Equal(t, float32(0), m.Shininess)
}

func TestLoad_FieldsBeforeNewmtlIgnored(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Load(strings.NewReader("Kd 1 1 1\nd 0\n")))
	assert.Equal(t, 0, r.Len())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.mtl")
	require.NoError(t, os.WriteFile(path, []byte(redBlue), 0o644))

	r := NewRegistry()
	require.NoError(t, r.LoadFile(path))
	assert.Equal(t, 2, r.Len())

	err := r.LoadFile(filepath.Join(dir, "missing.mtl"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSetEmission(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Load(strings.NewReader("newmtl Lamp\n")))

	require.NoError(t, r.SetEmission("Lamp", 1, 0.5, 0.25))
	assert.Equal(t, [4]float32{1, 0.5, 0.25, 1}, r.Lookup("Lamp").Emission)

	err := r.SetEmission("Nope", 1, 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReleaseAll(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Load(strings.NewReader(redBlue)))
	r.ReleaseAll()

	assert.Equal(t, 0, r.Len())
	_, ok := r.Find("Red")
	assert.False(t, ok)

	require.NoError(t, r.Load(strings.NewReader("newmtl Red\n")))
	idx, ok := r.Find("Red")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}
