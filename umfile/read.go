// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package umfile

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// beWord returns the i-th big-endian word of a byte slice.
func beWord(b []byte, i int) uint64 {
	return binary.BigEndian.Uint64(b[i*wordSize:])
}

// putBeWord stores w as the i-th big-endian word of a byte slice.
func putBeWord(b []byte, i int, w uint64) {
	binary.BigEndian.PutUint64(b[i*wordSize:], w)
}

// Read reads a UM file.
//
// The whole file is loaded in memory;
// the returned File owns an independent copy
// of every header block and payload,
// so the source file is not kept open.
func Read(name string) (*File, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	f, err := decode(b)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return f, nil
}

func decode(b []byte) (*File, error) {
	if len(b) < fixedHeaderLen*wordSize {
		return nil, fmt.Errorf("file too short for a fixed length header (%d bytes)", len(b))
	}
	f := &File{}
	for i := 0; i < fixedHeaderLen; i++ {
		f.Fixhd[i] = int64(beWord(b, i))
	}

	ints, err := intBlock(b, f.Fixhd[fhIntCStart], f.Fixhd[fhIntCSize])
	if err != nil {
		return nil, fmt.Errorf("integer constants: %v", err)
	}
	f.IntConst = ints

	reals, err := realBlock(b, f.Fixhd[fhRealCStart], f.Fixhd[fhRealCSize])
	if err != nil {
		return nil, fmt.Errorf("real constants: %v", err)
	}
	f.RealConst = reals

	if f.Fixhd[fhLevDepCStart] != IMDI {
		sz := f.Fixhd[fhLevDepCDim1] * f.Fixhd[fhLevDepCDim2]
		ld, err := realBlock(b, f.Fixhd[fhLevDepCStart], sz)
		if err != nil {
			return nil, fmt.Errorf("level dependent constants: %v", err)
		}
		f.LevDep = ld
	}

	if f.Fixhd[fhLookupStart] == IMDI {
		return f, nil
	}
	if d1 := f.Fixhd[fhLookupDim1]; d1 != lookupLen {
		return nil, fmt.Errorf("lookup records of %d words, want %d", d1, lookupLen)
	}
	// Sizes and offsets come from the file
	// and are checked against the file extent
	// before any multiplication,
	// so a corrupt header cannot overflow the checks.
	fileWords := int64(len(b)) / wordSize
	st := f.Fixhd[fhLookupStart] - 1 // header pointers are 1-based words
	nr := f.Fixhd[fhLookupDim2]
	if st < 0 || nr < 0 || nr > fileWords/lookupLen || st > fileWords-nr*lookupLen {
		return nil, fmt.Errorf("lookup table outside the file (start %d, %d records)", st+1, nr)
	}
	start := int(st)
	n := int(nr)

	for k := 0; k < n; k++ {
		at := start + k*lookupLen
		fld := &Field{}
		for i := 0; i < lookupInts; i++ {
			fld.Ints[i] = int64(beWord(b, at+i))
		}
		if fld.Ints[lbBegin] == -99 {
			// Unused trailing lookup entries.
			break
		}
		for i := 0; i < lookupReals; i++ {
			fld.Reals[i] = math.Float64frombits(beWord(b, at+lookupInts+i))
		}
		words := fld.Ints[lbNRec]
		if words <= 0 {
			words = fld.Ints[lbLRec]
		}
		begin := fld.Ints[lbBegin]
		if begin < 0 || words < 0 || words > fileWords || begin > fileWords-words {
			return nil, fmt.Errorf("field %d (stash %d): payload outside the file (offset %d, %d words)", k, fld.Stash(), begin, words)
		}
		off := begin * wordSize
		end := off + words*wordSize
		fld.Data = make([]byte, words*wordSize)
		copy(fld.Data, b[off:end])
		f.Fields = append(f.Fields, fld)
	}
	return f, nil
}

func intBlock(b []byte, start, size int64) ([]int64, error) {
	if start == IMDI {
		return nil, nil
	}
	fileWords := int64(len(b)) / wordSize
	if at := start - 1; at < 0 || size < 0 || size > fileWords || at > fileWords-size {
		return nil, fmt.Errorf("block outside the file (start %d, %d words)", start, size)
	}
	at := int(start) - 1
	n := int(size)
	v := make([]int64, n)
	for i := 0; i < n; i++ {
		v[i] = int64(beWord(b, at+i))
	}
	return v, nil
}

func realBlock(b []byte, start, size int64) ([]float64, error) {
	if start == IMDI {
		return nil, nil
	}
	fileWords := int64(len(b)) / wordSize
	if at := start - 1; at < 0 || size < 0 || size > fileWords || at > fileWords-size {
		return nil, fmt.Errorf("block outside the file (start %d, %d words)", start, size)
	}
	at := int(start) - 1
	n := int(size)
	v := make([]float64, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float64frombits(beWord(b, at+i))
	}
	return v, nil
}
