// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package subset_test

import (
	"reflect"
	"testing"

	"github.com/ACCESS-NRI/umfile-utils/subset"
	"github.com/ACCESS-NRI/umfile-utils/umfile"
)

func TestParseList(t *testing.T) {
	tests := map[string]struct {
		in   string
		want []int
	}{
		"simple":      {in: "1,2,3", want: []int{1, 2, 3}},
		"with spaces": {in: "10,  20,30  ", want: []int{10, 20, 30}},
		"float":       {in: "10.1,10,32"},
		"no commas":   {in: "10 20 30"},
		"negative":    {in: "-1,-2,-3"},
		"zero":        {in: "0,1,2"},
		"alpha":       {in: "a,1,2"},
		"empty":       {in: ""},
	}
	for name, test := range tests {
		got, err := subset.ParseList(test.in)
		if test.want == nil {
			if err == nil {
				t.Errorf("%s: expecting error for %q", name, test.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%s: got %v, want %v", name, got, test.want)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := map[string]struct {
		prognostic bool
		include    []int
		exclude    []int
		want       subset.Mode
	}{
		"prognostic":           {prognostic: true, want: subset.Prognostic},
		"include":              {include: []int{1, 2}, want: subset.Include},
		"exclude":              {exclude: []int{1, 2}, want: subset.Exclude},
		"none":                 {},
		"prognostic+include":   {prognostic: true, include: []int{1}},
		"prognostic+exclude":   {prognostic: true, exclude: []int{1}},
		"include+exclude":      {include: []int{1}, exclude: []int{2}},
		"all three":            {prognostic: true, include: []int{1}, exclude: []int{2}},
		"empty include counts": {include: []int{}, exclude: []int{1}},
	}
	for name, test := range tests {
		c, err := subset.Resolve(test.prognostic, test.include, test.exclude)
		if test.want == 0 {
			if err == nil {
				t.Errorf("%s: expecting error", name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
			continue
		}
		if c.Mode() != test.want {
			t.Errorf("%s: got mode %v, want %v", name, c.Mode(), test.want)
		}
	}
}

func TestPrognosticBounds(t *testing.T) {
	prog := []int{1, 999, 33001, 34999}
	for _, code := range prog {
		if !umfile.IsPrognostic(code) {
			t.Errorf("stash %d should be prognostic", code)
		}
	}
	notProg := []int{0, 1000, 33000, 35000}
	for _, code := range notProg {
		if umfile.IsPrognostic(code) {
			t.Errorf("stash %d should not be prognostic", code)
		}
	}
}

// newTestFile creates a fieldsfile on a 2x3 grid
// with one field per given STASH code.
func newTestFile(t testing.TB, codes ...int) *umfile.File {
	t.Helper()

	f := umfile.New(2, 3, 4)
	for i, c := range codes {
		vals := make([]float64, 6)
		for j := range vals {
			vals[j] = float64(i*10 + j)
		}
		f.NewField(c, 1, vals)
	}
	f.SetHeaderFieldCount(len(f.Fields))
	return f
}

func stashCodes(fields []*umfile.Field) []int {
	var codes []int
	for _, fld := range fields {
		codes = append(codes, fld.Stash())
	}
	return codes
}

func codeSet(codes ...int) map[int]bool {
	set := make(map[int]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}

func TestIncludeFields(t *testing.T) {
	f := newTestFile(t, 1, 30, 3225, 33001)

	got := subset.IncludeFields(f.Fields, codeSet(1, 33001, 9999))
	if want := []int{1, 33001}; !reflect.DeepEqual(stashCodes(got), want) {
		t.Errorf("got %v, want %v", stashCodes(got), want)
	}

	// The copies are independent from the source.
	got[0].SetStash(777)
	if f.Fields[0].Stash() != 1 {
		t.Errorf("source fields mutated: got stash %d, want 1", f.Fields[0].Stash())
	}
}

func TestIncludeAllIdentity(t *testing.T) {
	f := newTestFile(t, 1, 30, 3225, 33001)

	got := subset.IncludeFields(f.Fields, codeSet(1, 30, 3225, 33001))
	if len(got) != len(f.Fields) {
		t.Fatalf("got %d fields, want %d", len(got), len(f.Fields))
	}
	for i, fld := range got {
		if !reflect.DeepEqual(fld, f.Fields[i]) {
			t.Errorf("field %d: copy differs from the original", i)
		}
	}
}

func TestComplementarity(t *testing.T) {
	f := newTestFile(t, 1, 30, 3225, 30, 33001)
	set := codeSet(30, 3225)

	in := subset.IncludeFields(f.Fields, set)
	ex := subset.ExcludeFields(f.Fields, set)

	if len(in)+len(ex) != len(f.Fields) {
		t.Errorf("got %d+%d fields, want %d", len(in), len(ex), len(f.Fields))
	}
	for _, fld := range in {
		if !set[fld.Stash()] {
			t.Errorf("included field %d outside the set", fld.Stash())
		}
	}
	for _, fld := range ex {
		if set[fld.Stash()] {
			t.Errorf("excluded field %d inside the set", fld.Stash())
		}
	}
}

func TestMissingCodes(t *testing.T) {
	f := newTestFile(t, 1, 2, 3)

	got := subset.MissingCodes(f.Fields, codeSet(1, 1000, 2))
	if want := []int{1000}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got := subset.MissingCodes(f.Fields, codeSet(1, 3, 2)); got != nil {
		t.Errorf("got %v, want no missing codes", got)
	}

	if got, want := subset.FormatCodes([]int{1000, 9999}), "{1000, 9999}"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNeedMask(t *testing.T) {
	f := newTestFile(t, 1, 407)
	if subset.NeedMask(f.Fields) {
		t.Errorf("unpacked fields should not need a mask")
	}

	f.Fields[1].Ints[20] = 120
	if !subset.NeedMask(f.Fields) {
		t.Errorf("land compressed field should need a mask")
	}
}

func TestApplyInclude(t *testing.T) {
	f := newTestFile(t, 1, 30, 3225, 33001)

	crit := subset.NewInclude([]int{1, 33001, 9999})
	out, rep := crit.Apply(f)

	if want := []int{1, 33001}; !reflect.DeepEqual(stashCodes(out.Fields), want) {
		t.Errorf("got %v, want %v", stashCodes(out.Fields), want)
	}
	if want := []int{9999}; !reflect.DeepEqual(rep.Missing, want) {
		t.Errorf("missing: got %v, want %v", rep.Missing, want)
	}
	if rep.MaskAdded {
		t.Errorf("mask added with no packed fields")
	}
	if out.HeaderFieldCount() != 2 {
		t.Errorf("header fields: got %d, want 2", out.HeaderFieldCount())
	}
	if out.PrognosticCount() != 2 {
		t.Errorf("header prognostics: got %d, want 2", out.PrognosticCount())
	}

	// The source file is untouched.
	if len(f.Fields) != 4 || f.HeaderFieldCount() != 4 {
		t.Errorf("source file mutated")
	}
}

func TestMaskInjection(t *testing.T) {
	// Field 3226 is sea compressed and needs the mask.
	f := newTestFile(t, 30, 3225, 3226)
	f.Fields[2].Ints[20] = 220

	crit := subset.NewInclude([]int{3226})
	out, rep := crit.Apply(f)

	if !rep.MaskAdded {
		t.Errorf("mask should be added in include mode")
	}
	if rep.MaskUnavailable {
		t.Errorf("mask is present in the source file")
	}
	if want := []int{30, 3226}; !reflect.DeepEqual(stashCodes(out.Fields), want) {
		t.Errorf("got %v, want %v", stashCodes(out.Fields), want)
	}

	// No injection in exclude mode.
	crit = subset.NewExclude([]int{3225})
	out, rep = crit.Apply(f)
	if rep.MaskAdded {
		t.Errorf("mask should not be added in exclude mode")
	}
	if want := []int{30, 3226}; !reflect.DeepEqual(stashCodes(out.Fields), want) {
		t.Errorf("got %v, want %v", stashCodes(out.Fields), want)
	}
}

func TestMaskUnavailable(t *testing.T) {
	f := newTestFile(t, 3225, 3226)
	f.Fields[1].Ints[20] = 120

	crit := subset.NewInclude([]int{3226})
	out, rep := crit.Apply(f)

	if !rep.MaskAdded {
		t.Errorf("mask should be added to the include list")
	}
	if !rep.MaskUnavailable {
		t.Errorf("mask is absent from the source and should be reported")
	}
	// The output is still produced.
	if want := []int{3226}; !reflect.DeepEqual(stashCodes(out.Fields), want) {
		t.Errorf("got %v, want %v", stashCodes(out.Fields), want)
	}
}

func TestApplyPrognostic(t *testing.T) {
	f := newTestFile(t, 1, 999, 1000, 3225, 33000, 33001, 34999, 35000)

	crit := subset.NewPrognostic()
	out, rep := crit.Apply(f)

	if want := []int{1, 999, 33001, 34999}; !reflect.DeepEqual(stashCodes(out.Fields), want) {
		t.Errorf("got %v, want %v", stashCodes(out.Fields), want)
	}
	if rep.Missing != nil {
		t.Errorf("missing codes in prognostic mode: %v", rep.Missing)
	}
}

func TestReconcile(t *testing.T) {
	f := newTestFile(t, 1, 30, 34001, 34002)
	f.SetHeaderFieldCount(10)
	f.SetPrognosticCount(10)
	f.SetTracerVars(0)
	f.SetTracerLevels(1)

	rep := &subset.Report{}
	subset.Reconcile(f, rep)

	if got := f.HeaderFieldCount(); got != 4 {
		t.Errorf("fields: got %d, want 4", got)
	}
	if got := f.PrognosticCount(); got != 4 {
		t.Errorf("prognostics: got %d, want 4", got)
	}
	if got := f.TracerVars(); got != 2 {
		t.Errorf("tracers: got %d, want 2", got)
	}
	if got := f.TracerLevels(); got != f.NumLevels() {
		t.Errorf("tracer levels: got %d, want %d", got, f.NumLevels())
	}
	if len(rep.Notices) != 4 {
		t.Errorf("got %d notices, want 4: %v", len(rep.Notices), rep.Notices)
	}
}

// All four counts are rewritten
// even when no tracer field survives:
// a stale tracer level count
// must not outlive its tracers.
func TestReconcileNoTracers(t *testing.T) {
	f := newTestFile(t, 1, 30)
	f.SetHeaderFieldCount(2)
	f.SetPrognosticCount(2)
	f.SetTracerVars(3)
	f.SetTracerLevels(5)

	rep := &subset.Report{}
	subset.Reconcile(f, rep)

	if got := f.TracerVars(); got != 0 {
		t.Errorf("tracers: got %d, want 0", got)
	}
	if got := f.TracerLevels(); got != 0 {
		t.Errorf("tracer levels: got %d, want 0", got)
	}
	if len(rep.Notices) != 2 {
		t.Errorf("got %d notices, want 2: %v", len(rep.Notices), rep.Notices)
	}
}
