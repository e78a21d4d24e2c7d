// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package umfile

import (
	"bufio"
	"fmt"
	"math"
	"os"
)

// Save writes the file under the given name.
//
// The block pointers of the fixed length header
// and the payload addresses of every lookup record
// are rewritten to match the file as laid out on disk,
// with the data block aligned
// to the sector size used by the model I/O layer.
//
// When validate is true
// the laid out file is checked with Validate
// before anything is written,
// so a structurally inconsistent file
// is rejected without touching the output path.
// The caller is expected to report
// when validation is skipped.
func (f *File) Save(name string, validate bool) error {
	f.layout()
	if validate {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("on file %q: %v", name, err)
		}
	}

	w, err := os.Create(name)
	if err != nil {
		return err
	}
	defer w.Close()

	bw := bufio.NewWriter(w)
	if err := f.encode(bw); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}

// layout rewrites the header pointers
// for a sequential arrangement of the blocks:
// fixed length header,
// integer constants,
// real constants,
// level dependent constants,
// lookup table,
// and sector aligned data.
// Pointers stored in the header are 1-based words.
func (f *File) layout() {
	pos := int64(fixedHeaderLen) // next free 0-based word

	pos = setBlock(&f.Fixhd[fhIntCStart], &f.Fixhd[fhIntCSize], pos, len(f.IntConst))
	pos = setBlock(&f.Fixhd[fhRealCStart], &f.Fixhd[fhRealCSize], pos, len(f.RealConst))

	if len(f.LevDep) > 0 {
		f.Fixhd[fhLevDepCStart] = pos + 1
		if f.Fixhd[fhLevDepCDim1] == IMDI || f.Fixhd[fhLevDepCDim1] <= 0 {
			f.Fixhd[fhLevDepCDim1] = int64(len(f.LevDep))
			f.Fixhd[fhLevDepCDim2] = 1
		}
		pos += int64(len(f.LevDep))
	} else {
		f.Fixhd[fhLevDepCStart] = IMDI
		f.Fixhd[fhLevDepCDim1] = IMDI
		f.Fixhd[fhLevDepCDim2] = IMDI
	}

	// The field count (the second lookup dimension)
	// is left to the caller:
	// a count that does not match the fields
	// makes the file unreadable downstream
	// and is what Validate is for.
	f.Fixhd[fhLookupStart] = pos + 1
	f.Fixhd[fhLookupDim1] = lookupLen
	pos += int64(len(f.Fields) * lookupLen)

	// Start of data is at the next sector boundary.
	dstart := (pos/sectorSize + 1) * sectorSize
	f.Fixhd[fhDataStart] = dstart + 1

	at := dstart
	for _, fld := range f.Fields {
		words := int64(len(fld.Data) / wordSize)
		fld.Ints[lbBegin] = at
		fld.Ints[lbNRec] = words
		at += words
	}
	f.Fixhd[fhDataSize] = at - dstart
}

func setBlock(start, size *int64, pos int64, n int) int64 {
	if n == 0 {
		*start = IMDI
		*size = IMDI
		return pos
	}
	*start = pos + 1
	*size = int64(n)
	return pos + int64(n)
}

func (f *File) encode(w *bufio.Writer) error {
	var buf [wordSize]byte
	word := func(v uint64) error {
		putBeWord(buf[:], 0, v)
		_, err := w.Write(buf[:])
		return err
	}

	for _, v := range f.Fixhd {
		if err := word(uint64(v)); err != nil {
			return err
		}
	}
	for _, v := range f.IntConst {
		if err := word(uint64(v)); err != nil {
			return err
		}
	}
	for _, v := range f.RealConst {
		if err := word(math.Float64bits(v)); err != nil {
			return err
		}
	}
	for _, v := range f.LevDep {
		if err := word(math.Float64bits(v)); err != nil {
			return err
		}
	}
	for _, fld := range f.Fields {
		for _, v := range fld.Ints {
			if err := word(uint64(v)); err != nil {
				return err
			}
		}
		for _, v := range fld.Reals {
			if err := word(math.Float64bits(v)); err != nil {
				return err
			}
		}
	}

	// Zero padding up to the data block.
	at := int64(fixedHeaderLen + len(f.IntConst) + len(f.RealConst) + len(f.LevDep) + len(f.Fields)*lookupLen)
	for ; at < f.Fixhd[fhDataStart]-1; at++ {
		if err := word(0); err != nil {
			return err
		}
	}

	for _, fld := range f.Fields {
		if _, err := w.Write(fld.Data); err != nil {
			return err
		}
	}
	return nil
}

/// Validate checks the structural consistency of the file:
// header field counts against the actual fields,
// payload sizes against the lookup records,
// and the STASH code of every field.
// A file that fails validation
// is unreadable by the model tool chain.
func (f *File) Validate() error {
	if n := f.HeaderFieldCount(); n != len(f.Fields) {
		return fmt.Errorf("header records %d fields, file holds %d", n, len(f.Fields))
	}
	// An unset record length is fine:
	// layout writes it before any encoding.
	if d1 := f.Fixhd[fhLookupDim1]; len(f.Fields) > 0 && d1 != lookupLen && d1 != IMDI {
		return fmt.Errorf("lookup records of %d words, want %d", d1, lookupLen)
	}
	for k, fld := range f.Fields {
		if !IsValid(fld.Stash()) {
			return fmt.Errorf("field %d: invalid STASH code %d", k, fld.Stash())
		}
		words := fld.Ints[lbNRec]
		if words <= 0 {
			words = fld.Ints[lbLRec]
		}
		if int64(len(fld.Data)) != words*wordSize {
			return fmt.Errorf("field %d (stash %d): payload of %d bytes, lookup records %d words", k, fld.Stash(), len(fld.Data), words)
		}
		if !fld.IsPacked() && fld.Ints[lbLRec] < fld.Ints[lbRow]*fld.Ints[lbNpt] {
			return fmt.Errorf("field %d (stash %d): %d values for a %dx%d grid", k, fld.Stash(), fld.Ints[lbLRec], fld.Rows(), fld.Cols())
		}
	}
	return nil
}
