// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package nccompare implements a command
// to compare two netCDF files.
package nccompare

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: "nccompare [--rtol <value>] [--dims] <nc-file-1> <nc-file-2>",
	Short: "compare two netCDF files",
	Long: `
Command nccompare compares the variables of two netCDF files, as a check on
files converted from the same UM source by different tools.

The arguments of the command are the names of the two files to compare.

Variables present in only one of the files are reported. For variables
present in both, the values are compared within a relative tolerance set by
the flag --rtol; the default is 1e-6. Use the flag --dims to also require
identical dimension names on every shared variable.

The command fails if any difference was found.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var rtol float64
var strictDims bool

func setFlags(c *command.Command) {
	c.Flags().Float64Var(&rtol, "rtol", 1e-6, "")
	c.Flags().BoolVar(&strictDims, "dims", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 2 {
		return c.UsageError("expecting two input files")
	}

	g1, err := netcdf.Open(args[0])
	if err != nil {
		return fmt.Errorf("on file %q: %v", args[0], err)
	}
	defer g1.Close()
	g2, err := netcdf.Open(args[1])
	if err != nil {
		return fmt.Errorf("on file %q: %v", args[1], err)
	}
	defer g2.Close()

	diffs := 0
	report := func(format string, a ...any) {
		fmt.Fprintf(c.Stdout(), format, a...)
		diffs++
	}

	v1 := g1.ListVariables()
	v2 := g2.ListVariables()
	slices.Sort(v1)
	slices.Sort(v2)
	for _, n := range v1 {
		if !slices.Contains(v2, n) {
			report("variable %s only in file 1\n", n)
		}
	}
	for _, n := range v2 {
		if !slices.Contains(v1, n) {
			report("variable %s only in file 2\n", n)
		}
	}

	for _, n := range v1 {
		if !slices.Contains(v2, n) {
			continue
		}
		if err := compareVar(g1, g2, n, report); err != nil {
			return err
		}
	}

	if diffs > 0 {
		return fmt.Errorf("files differ (%d differences)", diffs)
	}
	fmt.Fprintf(c.Stdout(), "files are equivalent\n")
	return nil
}

func compareVar(g1, g2 api.Group, name string, report func(string, ...any)) error {
	x1, err := g1.GetVariable(name)
	if err != nil {
		return fmt.Errorf("variable %s: %v", name, err)
	}
	x2, err := g2.GetVariable(name)
	if err != nil {
		return fmt.Errorf("variable %s: %v", name, err)
	}

	if strictDims && !slices.Equal(x1.Dimensions, x2.Dimensions) {
		report("variable %s: dimensions %v vs %v\n", name, x1.Dimensions, x2.Dimensions)
	}

	f1, err := flatten(x1.Values)
	if err != nil {
		return fmt.Errorf("variable %s: %v", name, err)
	}
	f2, err := flatten(x2.Values)
	if err != nil {
		return fmt.Errorf("variable %s: %v", name, err)
	}
	if len(f1) != len(f2) {
		report("variable %s: %d values vs %d\n", name, len(f1), len(f2))
		return nil
	}

	worst := -1.0
	at := -1
	for i := range f1 {
		d := math.Abs(f1[i] - f2[i])
		if d > rtol*math.Max(math.Abs(f1[i]), math.Abs(f2[i])) && d > worst {
			worst = d
			at = i
		}
	}
	if at >= 0 {
		report("variable %s: values differ, largest difference at %d: %g vs %g\n", name, at, f1[at], f2[at])
	}
	return nil
}

var errNotNumeric = errors.New("not a numeric variable")

// flatten turns the possibly nested slices
// returned for a netCDF variable
// into a flat float64 slice.
// Non numeric variables are skipped
// by returning an empty slice.
func flatten(v any) ([]float64, error) {
	var out []float64
	err := walk(reflect.ValueOf(v), &out)
	if err == errNotNumeric {
		return nil, nil
	}
	return out, err
}

func walk(v reflect.Value, out *[]float64) error {
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() > 0 && (v.Index(0).Kind() == reflect.Slice || v.Index(0).Kind() == reflect.Array) {
			for i := 0; i < v.Len(); i++ {
				if err := walk(v.Index(i), out); err != nil {
					return err
				}
			}
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			e := v.Index(i)
			switch e.Kind() {
			case reflect.Float32, reflect.Float64:
				*out = append(*out, e.Float())
			case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
				*out = append(*out, float64(e.Int()))
			case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				*out = append(*out, float64(e.Uint()))
			default:
				return errNotNumeric
			}
		}
		return nil
	case reflect.Float32, reflect.Float64:
		*out = append(*out, v.Float())
		return nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		*out = append(*out, float64(v.Int()))
		return nil
	}
	return errNotNumeric
}
