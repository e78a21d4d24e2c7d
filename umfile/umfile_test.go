// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package umfile_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ACCESS-NRI/umfile-utils/umfile"
)

// newTestFile creates a fieldsfile on a 3x4 grid
// with one field per given STASH code.
func newTestFile(t testing.TB, codes ...int) *umfile.File {
	t.Helper()

	f := umfile.New(3, 4, 5)
	for i, c := range codes {
		vals := make([]float64, 12)
		for j := range vals {
			vals[j] = float64(i*100 + j)
		}
		f.NewField(c, 1, vals)
	}
	return f
}

func TestRoundTrip(t *testing.T) {
	f := newTestFile(t, 1, 30, 3225, 33001)
	f.SetHeaderFieldCount(len(f.Fields))
	f.SetDate(1988, 9, 1)

	name := filepath.Join(t.TempDir(), "round-trip")
	if err := f.Save(name, true); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}

	r, err := umfile.Read(name)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}

	if len(r.Fields) != len(f.Fields) {
		t.Fatalf("got %d fields, want %d", len(r.Fields), len(f.Fields))
	}
	for i, fld := range r.Fields {
		want := f.Fields[i]
		if fld.Stash() != want.Stash() {
			t.Errorf("field %d: got stash %d, want %d", i, fld.Stash(), want.Stash())
		}
		got, err := fld.Values()
		if err != nil {
			t.Fatalf("field %d: unexpected error: %v", i, err)
		}
		wv, err := want.Values()
		if err != nil {
			t.Fatalf("field %d: unexpected error: %v", i, err)
		}
		if !reflect.DeepEqual(got, wv) {
			t.Errorf("field %d: got values %v, want %v", i, got, wv)
		}
	}

	y, m, d := r.Date()
	if y != 1988 || m != 9 || d != 1 {
		t.Errorf("date: got %d-%d-%d, want 1988-9-1", y, m, d)
	}
	if r.NumRows() != 3 || r.NumCols() != 4 || r.NumLevels() != 5 {
		t.Errorf("grid: got %dx%dx%d, want 3x4x5", r.NumRows(), r.NumCols(), r.NumLevels())
	}
}

func TestValidate(t *testing.T) {
	f := newTestFile(t, 1, 30)
	f.SetHeaderFieldCount(1)
	if err := f.Validate(); err == nil {
		t.Errorf("expecting error for a wrong field count")
	}

	f.SetHeaderFieldCount(2)
	if err := f.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	f.Fields[0].SetStash(-3)
	if err := f.Validate(); err == nil {
		t.Errorf("expecting error for an invalid STASH code")
	}

	// Save with validation must reject the file
	// without creating the output.
	f.SetHeaderFieldCount(5)
	f.Fields[0].SetStash(1)
	name := filepath.Join(t.TempDir(), "invalid")
	if err := f.Save(name, true); err == nil {
		t.Fatalf("expecting error for an invalid file")
	}
	if _, err := os.Stat(name); err == nil {
		t.Errorf("output file written for an invalid file")
	}
}

// TestReadCorrupt checks that a file
// with out-of-range block sizes or offsets in its headers
// is rejected with an error,
// even when the sizes are large enough
// to overflow a naive extent computation.
func TestReadCorrupt(t *testing.T) {
	f := newTestFile(t, 1, 30)
	f.SetHeaderFieldCount(len(f.Fields))

	name := filepath.Join(t.TempDir(), "corrupt")
	if err := f.Save(name, true); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("unable to read file: %v", err)
	}

	// First lookup record, as a 0-based word offset.
	lookup := int(binary.BigEndian.Uint64(b[149*8:])) - 1

	tests := map[string]struct {
		word int    // 0-based word offset of the patched header word
		v    uint64 // patched value
	}{
		"huge constants block": {word: 100, v: 1 << 60},
		"huge lookup table":    {word: 151, v: 1 << 60},
		"huge payload size":    {word: lookup + 29, v: 1 << 60},
		"huge payload offset":  {word: lookup + 28, v: 1 << 60},
		"negative payload":     {word: lookup + 28, v: 1<<64 - 100},
	}
	dir := t.TempDir()
	for nm, test := range tests {
		c := make([]byte, len(b))
		copy(c, b)
		binary.BigEndian.PutUint64(c[test.word*8:], test.v)

		bad := filepath.Join(dir, nm)
		if err := os.WriteFile(bad, c, 0644); err != nil {
			t.Fatalf("%s: unable to write file: %v", nm, err)
		}
		if _, err := umfile.Read(bad); err == nil {
			t.Errorf("%s: expecting error for a corrupt file", nm)
		}
	}
}

func TestFieldCopy(t *testing.T) {
	f := newTestFile(t, 24)
	fld := f.Fields[0]
	cp := fld.Copy()

	vals, err := cp.Values()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range vals {
		vals[i] = -1
	}
	if err := cp.SetValues(vals); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cp.SetStash(99)

	if fld.Stash() != 24 {
		t.Errorf("original stash: got %d, want 24", fld.Stash())
	}
	orig, err := fld.Values()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orig[0] != 0 {
		t.Errorf("original values mutated: got %g, want 0", orig[0])
	}
}

func TestPackedValues(t *testing.T) {
	f := newTestFile(t, 30)
	fld := f.Fields[0]
	fld.Ints[20] = 2121 // WGDOS-like packed code

	if !fld.IsPacked() {
		t.Errorf("field with lbpack 2121 should be packed")
	}
	if _, err := fld.Values(); err == nil {
		t.Errorf("expecting error when reading packed values")
	}
	if err := fld.SetValues(make([]float64, 12)); err == nil {
		t.Errorf("expecting error when writing packed values")
	}
}

func TestLandSeaPacked(t *testing.T) {
	tests := map[string]struct {
		lbpack int64
		want   bool
	}{
		"unpacked":        {lbpack: 0, want: false},
		"wgdos":           {lbpack: 1, want: false},
		"land compressed": {lbpack: 120, want: true},
		"sea compressed":  {lbpack: 220, want: true},
		"land packed":     {lbpack: 122, want: true},
		"other":           {lbpack: 320, want: false},
	}
	for name, test := range tests {
		fld := &umfile.Field{}
		fld.Ints[20] = test.lbpack
		if got := fld.LandSeaPacked(); got != test.want {
			t.Errorf("%s (lbpack %d): got %v, want %v", name, test.lbpack, got, test.want)
		}
	}
}

func TestDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "dump")

	if got, want := umfile.DefaultOutput(name, "_subset"), name+"_subset"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if err := os.WriteFile(name+"_subset", nil, 0644); err != nil {
		t.Fatalf("unable to write file: %v", err)
	}
	if got, want := umfile.DefaultOutput(name, "_subset"), name+"_subset1"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if err := os.WriteFile(name+"_subset1", nil, 0644); err != nil {
		t.Fatalf("unable to write file: %v", err)
	}
	if got, want := umfile.DefaultOutput(name, "_subset"), name+"_subset2"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
