// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package umfile implements reading and writing
// of Unified Model binary files
// (fieldsfiles, dumps, and ancillary files).
//
// A UM file is a sequence of big-endian 64-bit words:
// a fixed-length header of 256 words,
// followed by blocks of integer, real,
// and level dependent constants,
// a lookup table with one 64-word record per field
// (45 integer words and 19 real words),
// and the field payloads at the word offsets
// recorded in the lookup table.
//
// Field payloads are carried as opaque bytes.
// Only unpacked payloads can be decoded into values;
// packed data is copied through untouched,
// as its interpretation belongs to the model,
// not to this package.
package umfile

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
)

// IMDI is the integer missing data indicator
// used for unset header words.
const IMDI = -32768

// Words per lookup record.
const (
	lookupInts  = 45
	lookupReals = 19
	lookupLen   = lookupInts + lookupReals
)

// Length of the fixed length header in words.
const fixedHeaderLen = 256

// Word size in bytes.
const wordSize = 8

// Data records are aligned to sectors of 2048 words.
const sectorSize = 2048

// Indices into the fixed length header.
const (
	fhSubModel      = 1
	fhDataSetType   = 4
	fhT1Year        = 20  // start of the initial date triplet
	fhT2Year        = 27  // start of the valid date triplet
	fhT3Year        = 34  // start of the creation date triplet
	fhIntCStart     = 99
	fhIntCSize      = 100
	fhRealCStart    = 104
	fhRealCSize     = 105
	fhLevDepCStart  = 109
	fhLevDepCDim1   = 110
	fhLevDepCDim2   = 111
	fhLookupStart   = 149
	fhLookupDim1    = 150
	fhLookupDim2    = 151
	fhNumProgFields = 152
	fhDataStart     = 159
	fhDataSize      = 160
)

// Indices into the integer constants.
const (
	icNumCols      = 5
	icNumRows      = 6
	icNumLevels    = 8
	icTracerVars   = 11
	icTracerLevels = 12
)

// Indices into the integer part of a lookup record.
const (
	lbYr    = 0
	lbMon   = 1
	lbDat   = 2
	lbHr    = 3
	lbMin   = 4
	lbDay   = 5
	lbLRec  = 14
	lbRow   = 17
	lbNpt   = 18
	lbPack  = 20
	lbBegin = 28
	lbNRec  = 29
	lbLev   = 32
	lbUser1 = 38
	lbUser4 = 41
	lbUser7 = 44
)

// Indices into the real part of a lookup record.
const (
	bLev = 6
	bZy  = 13
	bDy  = 14
	bZx  = 15
	bDx  = 16
	bMdi = 17
)

// Data type codes stored in lbuser1.
const (
	typeReal    = 1
	typeInteger = 2
	typeLogical = 3
)

// A File is a UM file:
// the header blocks
// plus an ordered sequence of fields.
type File struct {
	Fixhd     [fixedHeaderLen]int64
	IntConst  []int64
	RealConst []float64
	LevDep    []float64 // level dependent constants, row major
	Fields    []*Field
}

// New creates an empty fieldsfile
// with a grid of the indicated number of rows,
// columns,
// and model levels.
func New(rows, cols, levels int) *File {
	f := &File{
		IntConst:  make([]int64, 46),
		RealConst: make([]float64, 38),
	}
	for i := range f.Fixhd {
		f.Fixhd[i] = IMDI
	}
	f.Fixhd[fhSubModel] = 1
	f.Fixhd[fhDataSetType] = 3
	f.IntConst[icNumCols] = int64(cols)
	f.IntConst[icNumRows] = int64(rows)
	f.IntConst[icNumLevels] = int64(levels)
	return f
}

// HeaderCopy returns a new file
// with a copy of every header block
// and no fields.
func (f *File) HeaderCopy() *File {
	nf := &File{
		IntConst:  make([]int64, len(f.IntConst)),
		RealConst: make([]float64, len(f.RealConst)),
		LevDep:    make([]float64, len(f.LevDep)),
	}
	nf.Fixhd = f.Fixhd
	copy(nf.IntConst, f.IntConst)
	copy(nf.RealConst, f.RealConst)
	copy(nf.LevDep, f.LevDep)
	return nf
}

// DataSetType returns the kind of UM file
// (1 for an instantaneous dump,
// 3 for a fieldsfile,
// 4 for an ancillary file).
func (f *File) DataSetType() int {
	return int(f.Fixhd[fhDataSetType])
}

// NumCols returns the number of grid columns.
func (f *File) NumCols() int {
	return int(f.IntConst[icNumCols])
}

// NumRows returns the number of grid rows.
func (f *File) NumRows() int {
	return int(f.IntConst[icNumRows])
}

// NumLevels returns the number of physical model levels.
func (f *File) NumLevels() int {
	return int(f.IntConst[icNumLevels])
}

// HeaderFieldCount returns the number of fields
// recorded in the fixed length header.
func (f *File) HeaderFieldCount() int {
	return int(f.Fixhd[fhLookupDim2])
}

// SetHeaderFieldCount sets the number of fields
// recorded in the fixed length header.
func (f *File) SetHeaderFieldCount(n int) {
	f.Fixhd[fhLookupDim2] = int64(n)
}

// PrognosticCount returns the number of prognostic fields
// recorded in the fixed length header.
func (f *File) PrognosticCount() int {
	return int(f.Fixhd[fhNumProgFields])
}

// SetPrognosticCount sets the number of prognostic fields
// recorded in the fixed length header.
func (f *File) SetPrognosticCount(n int) {
	f.Fixhd[fhNumProgFields] = int64(n)
}

// TracerVars returns the number of tracer variables
// recorded in the integer constants.
func (f *File) TracerVars() int {
	return int(f.IntConst[icTracerVars])
}

// SetTracerVars sets the number of tracer variables
// recorded in the integer constants.
func (f *File) SetTracerVars(n int) {
	f.IntConst[icTracerVars] = int64(n)
}

// TracerLevels returns the number of tracer levels
// recorded in the integer constants.
func (f *File) TracerLevels() int {
	return int(f.IntConst[icTracerLevels])
}

// SetTracerLevels sets the number of tracer levels
// recorded in the integer constants.
func (f *File) SetTracerLevels(n int) {
	f.IntConst[icTracerLevels] = int64(n)
}

// Date returns the initial date
// stored in the fixed length header.
func (f *File) Date() (year, month, day int) {
	return int(f.Fixhd[fhT1Year]), int(f.Fixhd[fhT1Year+1]), int(f.Fixhd[fhT1Year+2])
}

// SetDate sets the initial date
// in the fixed length header.
// Components outside their valid range are left untouched,
// so a single component can be changed
// keeping the others.
func (f *File) SetDate(year, month, day int) {
	if year >= 0 && year <= 9999 {
		f.Fixhd[fhT1Year] = int64(year)
	}
	if month >= 1 && month <= 12 {
		f.Fixhd[fhT1Year+1] = int64(month)
	}
	if day >= 1 && day <= 31 {
		f.Fixhd[fhT1Year+2] = int64(day)
	}
}

// A Field is a single data record:
// its lookup header
// (45 integer and 19 real words)
// and its payload,
// kept as raw bytes
// that might be packed.
type Field struct {
	Ints  [lookupInts]int64
	Reals [lookupReals]float64
	Data  []byte
}

// NewField creates an unpacked real field
// with the given STASH code,
// level,
// and values on the grid of f,
// and appends it to f.
func (f *File) NewField(stash, level int, vals []float64) *Field {
	fld := &Field{}
	fld.Ints[lbLRec] = int64(len(vals))
	fld.Ints[lbRow] = int64(f.NumRows())
	fld.Ints[lbNpt] = int64(f.NumCols())
	fld.Ints[lbLev] = int64(level)
	fld.Ints[lbUser1] = typeReal
	fld.Ints[lbUser4] = int64(stash)
	fld.Ints[lbUser7] = 1
	fld.Reals[bMdi] = -1073741824.0
	fld.Data = make([]byte, len(vals)*wordSize)
	if err := fld.SetValues(vals); err != nil {
		panic(err)
	}
	f.Fields = append(f.Fields, fld)
	return fld
}

// Stash returns the STASH code of the field,
// encoded as section*1000+item.
func (fld *Field) Stash() int {
	return int(fld.Ints[lbUser4])
}

// SetStash sets the STASH code of the field.
func (fld *Field) SetStash(code int) {
	fld.Ints[lbUser4] = int64(code)
}

// Packing returns the packing code (lbpack) of the field.
func (fld *Field) Packing() int {
	return int(fld.Ints[lbPack])
}

// Level returns the level indicator (lblev) of the field.
func (fld *Field) Level() int {
	return int(fld.Ints[lbLev])
}

// Rows returns the number of rows of the field grid.
func (fld *Field) Rows() int {
	return int(fld.Ints[lbRow])
}

// Cols returns the number of columns of the field grid.
func (fld *Field) Cols() int {
	return int(fld.Ints[lbNpt])
}

// MissingValue returns the missing data indicator
// of the field payload.
func (fld *Field) MissingValue() float64 {
	return fld.Reals[bMdi]
}

// SetValidityDate sets the validity date
// in the lookup header of the field.
// Components outside their valid range are left untouched.
func (fld *Field) SetValidityDate(year, month, day int) {
	if year >= 0 && year <= 9999 {
		fld.Ints[lbYr] = int64(year)
	}
	if month >= 1 && month <= 12 {
		fld.Ints[lbMon] = int64(month)
	}
	if day >= 1 && day <= 31 {
		fld.Ints[lbDat] = int64(day)
	}
}

// LatLon returns the coordinates
// of the grid origin
// and the grid spacing,
// taken from the real lookup words.
// The origin words store the position
// one grid step before the first point.
func (fld *Field) LatLon() (lat0, dLat, lon0, dLon float64) {
	return fld.Reals[bZy], fld.Reals[bDy], fld.Reals[bZx], fld.Reals[bDx]
}

// Copy returns a deep copy of the field.
// Mutating the copy does not affect the original.
func (fld *Field) Copy() *Field {
	nf := &Field{}
	nf.Ints = fld.Ints
	nf.Reals = fld.Reals
	nf.Data = make([]byte, len(fld.Data))
	copy(nf.Data, fld.Data)
	return nf
}

// IsPacked reports whether the field payload
// uses any packing scheme.
func (fld *Field) IsPacked() bool {
	return fld.Ints[lbPack]%10 != 0
}

// LandSeaPacked reports whether the field payload
// is compressed to land or sea points only,
// a representation that requires the land-sea mask
// to recover the grid.
func (fld *Field) LandSeaPacked() bool {
	p := fld.Ints[lbPack]
	return p/10%10 == 2 && (p/100%10 == 1 || p/100%10 == 2)
}

var errPacked = errors.New("field data is packed")

// Values decodes the payload of an unpacked field
// into a float64 slice.
// It fails on packed fields.
func (fld *Field) Values() ([]float64, error) {
	if fld.IsPacked() {
		return nil, fmt.Errorf("stash %d: %v", fld.Stash(), errPacked)
	}
	n := len(fld.Data) / wordSize
	vals := make([]float64, n)
	switch fld.Ints[lbUser1] {
	case typeInteger, typeLogical:
		for i := 0; i < n; i++ {
			vals[i] = float64(int64(beWord(fld.Data, i)))
		}
	default:
		for i := 0; i < n; i++ {
			vals[i] = math.Float64frombits(beWord(fld.Data, i))
		}
	}
	return vals, nil
}

// SetValues encodes a float64 slice
// as the payload of an unpacked field.
// It fails on packed fields
// or if the number of values
// does not match the lookup record length.
func (fld *Field) SetValues(vals []float64) error {
	if fld.IsPacked() {
		return fmt.Errorf("stash %d: %v", fld.Stash(), errPacked)
	}
	if int64(len(vals)) != fld.Ints[lbLRec] {
		return fmt.Errorf("stash %d: got %d values, lookup records %d", fld.Stash(), len(vals), fld.Ints[lbLRec])
	}
	data := make([]byte, len(vals)*wordSize)
	switch fld.Ints[lbUser1] {
	case typeInteger, typeLogical:
		for i, v := range vals {
			putBeWord(data, i, uint64(int64(v)))
		}
	default:
		for i, v := range vals {
			putBeWord(data, i, math.Float64bits(v))
		}
	}
	fld.Data = data
	return nil
}

// DefaultOutput returns the default name
// for an output file
// created from the named input file:
// the input name with the suffix appended.
// If that name is already in use
// a numeric suffix is added
// to avoid overwriting a previous output.
func DefaultOutput(name, suffix string) string {
	out := name + suffix
	if _, err := os.Stat(out); err != nil {
		return out
	}
	for i := 1; ; i++ {
		n := out + strconv.Itoa(i)
		if _, err := os.Stat(n); err != nil {
			return n
		}
	}
}
