package formats

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func collectMTL(t *testing.T, src string) []MTLRecord {
	t.Helper()
	var recs []MTLRecord
	err := ScanMTL(strings.NewReader(src), func(r MTLRecord) error {
		recs = append(recs, r)
		return nil
	})
	if err != nil {
		t.Fatalf("ScanMTL: %v", err)
	}
	return recs
}

func TestScanMTL(t *testing.T) {
	src := `# Blender MTL
newmtl Red
Ns 96.078431
Ka 0.1 0.0 0.0
Kd 0.8 0.0 0.0
Ks 0.5 0.5 0.5
Ni 1.000000
d 0.5
illum 2
map_Kd red.jpg
`
	recs := collectMTL(t, src)

	want := []struct {
		dir    MTLDirective
		name   string
		values []float32
	}{
		{MTLNewMaterial, "Red", nil},
		{MTLShininess, "", []float32{96.078431}},
		{MTLAmbient, "", []float32{0.1, 0, 0}},
		{MTLDiffuse, "", []float32{0.8, 0, 0}},
		{MTLSpecular, "", []float32{0.5, 0.5, 0.5}},
		{MTLDissolve, "", []float32{0.5}},
	}
	if len(recs) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(recs), len(want), recs)
	}
	for i, w := range want {
		r := recs[i]
		if r.Directive != w.dir {
			t.Errorf("record %d directive = %v, want %v", i, r.Directive, w.dir)
		}
		if r.Name != w.name {
			t.Errorf("record %d name = %q, want %q", i, r.Name, w.name)
		}
		if w.values != nil && !reflect.DeepEqual(r.Values, w.values) {
			t.Errorf("record %d values = %v, want %v", i, r.Values, w.values)
		}
		if r.Err != nil {
			t.Errorf("record %d unexpected error: %v", i, r.Err)
		}
	}
	if recs[0].Line != 2 {
		t.Errorf("newmtl line = %d, want 2", recs[0].Line)
	}
}

func TestScanMTL_Malformed(t *testing.T) {
	recs := collectMTL(t, "newmtl A\nKd 0.3 oops 0.1\nNs\nnewmtl\n")
	if len(recs) != 4 {
		t.Fatalf("got %d records, want 4", len(recs))
	}

	kd := recs[1]
	if !errors.Is(kd.Err, ErrMalformedNumber) {
		t.Errorf("Kd error = %v, want ErrMalformedNumber", kd.Err)
	}
	if !reflect.DeepEqual(kd.Values, []float32{0.3}) {
		t.Errorf("Kd values = %v, want [0.3]", kd.Values)
	}

	ns := recs[2]
	if ns.Err != nil || len(ns.Values) != 0 {
		t.Errorf("Ns without value: values=%v err=%v", ns.Values, ns.Err)
	}

	if !errors.Is(recs[3].Err, ErrMissingArgument) {
		t.Errorf("bare newmtl error = %v, want ErrMissingArgument", recs[3].Err)
	}
}

func TestScanMTL_StopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := ScanMTL(strings.NewReader("newmtl A\nnewmtl B\n"), func(MTLRecord) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("err = %v, want stop", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestMTLDirective_String(t *testing.T) {
	if got := MTLSpecular.String(); got != "Ks" {
		t.Errorf("String() = %q, want Ks", got)
	}
	if got := MTLDirective(99).String(); got != "MTLDirective(99)" {
		t.Errorf("String() = %q", got)
	}
}
