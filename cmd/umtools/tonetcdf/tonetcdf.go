// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tonetcdf implements a command
// to convert a UM file to netCDF.
package tonetcdf

import (
	"fmt"
	"os"

	"github.com/ACCESS-NRI/umfile-utils/umfile"
	"github.com/ctessum/cdf"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: "tonetcdf [-o|--output <nc-file>] <um-file>",
	Short: "convert a UM file to netCDF",
	Long: `
Command tonetcdf reads a UM file and writes its unpacked fields to a netCDF
classic file.

The argument of the command is the name of the input file.

Each variable is named from its STASH code, in the form fld_s00i000, with the
descriptive name, when known, as the long_name attribute. Fields sharing a
STASH code are stacked on a level dimension in file order. The latitude and
longitude coordinates are taken from the grid description of the first field
of each variable. Packed fields cannot be decoded without the model packing
tables and are reported and skipped.

By default the output is written to the input name with a ".nc" suffix. Use
the flag --output, or -o, to set the output file name.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

// A variable is a group of fields
// with the same STASH code.
type variable struct {
	stash  int
	fields []*umfile.Field
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting input file")
	}
	f, err := umfile.Read(args[0])
	if err != nil {
		return err
	}

	vars := groupFields(c, f)
	if len(vars) == 0 {
		return fmt.Errorf("no convertible fields in %q", args[0])
	}

	name := output
	if name == "" {
		name = args[0] + ".nc"
	}
	if err := writeNetCDF(name, f, vars); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	fmt.Fprintf(c.Stdout(), "%d variables written to %s\n", len(vars), name)
	return nil
}

// groupFields collects the unpacked fields of a file
// grouped by STASH code,
// preserving file order,
// and reports the fields it skips.
func groupFields(c *command.Command, f *umfile.File) []*variable {
	byStash := make(map[int]*variable)
	var vars []*variable
	for k, fld := range f.Fields {
		if fld.IsPacked() {
			fmt.Fprintf(c.Stderr(), "warning: field %d (stash %d) is packed, skipped\n", k, fld.Stash())
			continue
		}
		v := byStash[fld.Stash()]
		if v == nil {
			v = &variable{stash: fld.Stash()}
			byStash[fld.Stash()] = v
			vars = append(vars, v)
		}
		v.fields = append(v.fields, fld)
	}
	return vars
}

func varName(stash int) string {
	return fmt.Sprintf("fld_s%02di%03d", umfile.Section(stash), umfile.Item(stash))
}

func writeNetCDF(name string, f *umfile.File, vars []*variable) error {
	rows := f.NumRows()
	cols := f.NumCols()

	dims := []string{"latitude", "longitude"}
	lens := []int{rows, cols}
	// One level dimension per distinct level count.
	levDim := make(map[int]string)
	for _, v := range vars {
		n := len(v.fields)
		if n == 1 {
			continue
		}
		if _, ok := levDim[n]; !ok {
			d := fmt.Sprintf("z%d", n)
			levDim[n] = d
			dims = append(dims, d)
			lens = append(lens, n)
		}
	}

	h := cdf.NewHeader(dims, lens)
	h.AddVariable("latitude", []string{"latitude"}, []float64{0})
	h.AddAttribute("latitude", "units", "degrees_north")
	h.AddVariable("longitude", []string{"longitude"}, []float64{0})
	h.AddAttribute("longitude", "units", "degrees_east")

	for _, v := range vars {
		vn := varName(v.stash)
		vd := []string{"latitude", "longitude"}
		if n := len(v.fields); n > 1 {
			vd = []string{levDim[n], "latitude", "longitude"}
		}
		h.AddVariable(vn, vd, []float64{0})
		if ln := umfile.Name(v.stash); ln != "" {
			h.AddAttribute(vn, "long_name", ln)
		}
		h.AddAttribute(vn, "stash_code", []int32{int32(v.stash)})
		mdi := v.fields[0].MissingValue()
		h.AddAttribute(vn, "_FillValue", []float64{mdi})
		h.AddAttribute(vn, "missing_value", []float64{mdi})
	}
	h.Define()
	for _, err := range h.Check() {
		if err != nil {
			return err
		}
	}

	w, err := os.Create(name)
	if err != nil {
		return err
	}
	defer w.Close()

	nc, err := cdf.Create(w, h)
	if err != nil {
		return err
	}

	lat0, dLat, lon0, dLon := vars[0].fields[0].LatLon()
	lat := make([]float64, rows)
	for i := range lat {
		lat[i] = lat0 + float64(i+1)*dLat
	}
	lon := make([]float64, cols)
	for i := range lon {
		lon[i] = lon0 + float64(i+1)*dLon
	}
	if err := writeVar(nc, "latitude", []int{0}, []int{rows}, lat); err != nil {
		return err
	}
	if err := writeVar(nc, "longitude", []int{0}, []int{cols}, lon); err != nil {
		return err
	}

	for _, v := range vars {
		data := make([]float64, 0, len(v.fields)*rows*cols)
		for _, fld := range v.fields {
			vals, err := fld.Values()
			if err != nil {
				return err
			}
			if len(vals) < rows*cols {
				return fmt.Errorf("stash %d: %d values for a %dx%d grid", fld.Stash(), len(vals), rows, cols)
			}
			data = append(data, vals[:rows*cols]...)
		}
		start := []int{0, 0}
		end := []int{rows, cols}
		if n := len(v.fields); n > 1 {
			start = []int{0, 0, 0}
			end = []int{n, rows, cols}
		}
		if err := writeVar(nc, varName(v.stash), start, end, data); err != nil {
			return err
		}
	}
	return nil
}

func writeVar(nc *cdf.File, name string, start, end []int, data []float64) error {
	w := nc.Writer(name, start, end)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("variable %s: %v", name, err)
	}
	return nil
}
