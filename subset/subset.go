// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package subset implements the field subsetting engine
// for UM files:
// selecting or excluding fields by STASH code
// or by prognostic classification,
// adding the land-sea mask
// when a selected field needs it,
// and keeping the file header
// consistent with the filtered field list.
package subset

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ACCESS-NRI/umfile-utils/umfile"
)

// Mode is the kind of a selection criteria.
type Mode int

// Valid selection modes.
const (
	// Keep only prognostic fields.
	Prognostic Mode = iota + 1

	// Keep only fields with a listed STASH code.
	Include

	// Keep only fields without a listed STASH code.
	Exclude
)

func (m Mode) String() string {
	switch m {
	case Prognostic:
		return "prognostic"
	case Include:
		return "include"
	case Exclude:
		return "exclude"
	}
	return "unknown"
}

// ErrCombination is returned by Resolve
// when none,
// or more than one,
// of the selection modes was requested.
var ErrCombination = errors.New("exactly one of prognostic, include, or exclude must be given")

// Criteria is a selection criteria
// in exactly one of the three modes.
// It is built once from the command line arguments
// and never mutated afterwards.
type Criteria struct {
	mode  Mode
	codes map[int]bool
}

// NewPrognostic returns a criteria
// that selects prognostic fields.
func NewPrognostic() Criteria {
	return Criteria{mode: Prognostic}
}

// NewInclude returns a criteria
// that selects the fields
// with one of the given STASH codes.
func NewInclude(codes []int) Criteria {
	return Criteria{mode: Include, codes: codeSet(codes)}
}

// NewExclude returns a criteria
// that selects the fields
// without any of the given STASH codes.
func NewExclude(codes []int) Criteria {
	return Criteria{mode: Exclude, codes: codeSet(codes)}
}

// Resolve builds the selection criteria
// from the three command line selectors.
// A nil list means the selector was not given.
// Exactly one selector must be in use;
// any other combination fails with ErrCombination
// before any file is opened.
func Resolve(prognostic bool, include, exclude []int) (Criteria, error) {
	n := 0
	if prognostic {
		n++
	}
	if include != nil {
		n++
	}
	if exclude != nil {
		n++
	}
	if n != 1 {
		return Criteria{}, ErrCombination
	}
	switch {
	case prognostic:
		return NewPrognostic(), nil
	case include != nil:
		return NewInclude(include), nil
	}
	return NewExclude(exclude), nil
}

// Mode returns the mode of the criteria.
func (c Criteria) Mode() Mode {
	return c.mode
}

// Codes returns the STASH codes of the criteria
// in ascending order.
func (c Criteria) Codes() []int {
	codes := make([]int, 0, len(c.codes))
	for code := range c.codes {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

func codeSet(codes []int) map[int]bool {
	set := make(map[int]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}

// ParseList parses a comma separated list of STASH codes.
// Every token must be a strictly positive integer;
// the error of a bad token names the token,
// so malformed input is rejected
// before any file is loaded.
func ParseList(s string) ([]int, error) {
	var codes []int
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		v, err := strconv.Atoi(tok)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("STASH list: token %q is not a positive integer", tok)
		}
		codes = append(codes, v)
	}
	return codes, nil
}

// IncludeFields returns an independent copy
// of every field whose STASH code is in the set,
// preserving the original order.
// The source fields are never touched.
func IncludeFields(fields []*umfile.Field, codes map[int]bool) []*umfile.Field {
	var out []*umfile.Field
	for _, fld := range fields {
		if codes[fld.Stash()] {
			out = append(out, fld.Copy())
		}
	}
	return out
}

// ExcludeFields returns an independent copy
// of every field whose STASH code is not in the set,
// preserving the original order.
func ExcludeFields(fields []*umfile.Field, codes map[int]bool) []*umfile.Field {
	var out []*umfile.Field
	for _, fld := range fields {
		if !codes[fld.Stash()] {
			out = append(out, fld.Copy())
		}
	}
	return out
}

// MissingCodes returns the codes of the set
// that are absent from the fields,
// in ascending order.
// An absent code is worth a warning
// (a typo, or a code not written to this file)
// but never an error.
func MissingCodes(fields []*umfile.Field, codes map[int]bool) []int {
	present := make(map[int]bool, len(fields))
	for _, fld := range fields {
		present[fld.Stash()] = true
	}
	var missing []int
	for code := range codes {
		if !present[code] {
			missing = append(missing, code)
		}
	}
	slices.Sort(missing)
	return missing
}

// NeedMask reports whether any of the fields
// is stored in a land or sea compressed representation,
// which requires the land-sea mask field
// to recover the grid.
// It never fails:
// the answer only informs the mask injection decision.
func NeedMask(fields []*umfile.Field) bool {
	for _, fld := range fields {
		if fld.LandSeaPacked() {
			return true
		}
	}
	return false
}

func hasMask(fields []*umfile.Field) bool {
	for _, fld := range fields {
		if fld.Stash() == umfile.LandSeaMask {
			return true
		}
	}
	return false
}

// A Report collects the warnings and notices
// of a filter run.
// Warnings never abort the run.
type Report struct {
	// Requested STASH codes
	// absent from the source file.
	Missing []int

	// The land-sea mask was added
	// to the include list
	// because of packed fields.
	MaskAdded bool

	// Packed fields need the land-sea mask
	// but the source file does not hold one;
	// the output is still written
	// and those fields may not be decodable downstream.
	MaskUnavailable bool

	// Header counts rewritten to a new value.
	Notices []string
}

// Apply filters a file with the criteria
// and returns a new file
// with independent copies of the selected fields
// and a reconciled header.
// The source file is left untouched.
func (c Criteria) Apply(src *umfile.File) (*umfile.File, *Report) {
	rep := &Report{}

	selected := c.selectFields(src.Fields, rep)

	if NeedMask(selected) && !hasMask(selected) {
		if c.mode == Include {
			// Prognostic and exclude modes decide membership
			// by their own rule and never inject the mask.
			codes := codeSet(c.Codes())
			codes[umfile.LandSeaMask] = true
			rep.MaskAdded = true
			selected = IncludeFields(src.Fields, codes)
		}
		if !hasMask(selected) {
			rep.MaskUnavailable = true
		}
	}

	out := src.HeaderCopy()
	out.Fields = selected
	Reconcile(out, rep)
	return out, rep
}

func (c Criteria) selectFields(fields []*umfile.Field, rep *Report) []*umfile.Field {
	switch c.mode {
	case Include:
		rep.Missing = MissingCodes(fields, c.codes)
		return IncludeFields(fields, c.codes)
	case Exclude:
		rep.Missing = MissingCodes(fields, c.codes)
		return ExcludeFields(fields, c.codes)
	}

	var out []*umfile.Field
	for _, fld := range fields {
		if umfile.IsPrognostic(fld.Stash()) {
			out = append(out, fld.Copy())
		}
	}
	return out
}

// Reconcile rewrites the header counts of a file
// to match its field list:
// total fields,
// prognostic fields,
// tracer variables,
// and tracer levels.
// All counts are always written;
// a notice is added to the report
// for every count that changed.
func Reconcile(f *umfile.File, rep *Report) {
	nprog := 0
	tracers := make(map[int]bool)
	for _, fld := range f.Fields {
		if umfile.IsPrognostic(fld.Stash()) {
			nprog++
		}
		if umfile.IsTracer(fld.Stash()) {
			tracers[fld.Stash()] = true
		}
	}

	if n := f.HeaderFieldCount(); n != len(f.Fields) {
		rep.notef("resetting number of fields from %d to %d", n, len(f.Fields))
	}
	f.SetHeaderFieldCount(len(f.Fields))

	if n := f.PrognosticCount(); n != nprog {
		rep.notef("resetting number of prognostic fields from %d to %d", n, nprog)
	}
	f.SetPrognosticCount(nprog)

	if n := f.TracerVars(); n != len(tracers) {
		rep.notef("resetting number of tracer fields from %d to %d", n, len(tracers))
	}
	f.SetTracerVars(len(tracers))

	lev := 0
	if len(tracers) > 0 {
		lev = f.NumLevels()
	}
	if n := f.TracerLevels(); n != lev {
		rep.notef("resetting number of tracer levels from %d to %d", n, lev)
	}
	f.SetTracerLevels(lev)
}

func (r *Report) notef(format string, args ...any) {
	r.Notices = append(r.Notices, fmt.Sprintf(format, args...))
}

// FormatCodes formats a list of STASH codes
// as a set,
// for warning messages.
func FormatCodes(codes []int) string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, c := range codes {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d", c)
	}
	sb.WriteString("}")
	return sb.String()
}
