// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package list implements a command
// to print the contents of a UM file.
package list

import (
	"fmt"

	"github.com/ACCESS-NRI/umfile-utils/umfile"
	"github.com/js-arias/command"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var Command = &command.Command{
	Usage: "list [--header] [--summary] <um-file>",
	Short: "print the fields of a UM file",
	Long: `
Command list reads a UM file and prints one line per field with its position,
STASH code and name, level, packing code, and grid size. For unpacked fields
the minimum, maximum, and mean of the data are also printed.

The argument of the command is the name of the file to read.

With the flag --header, the fixed length header and the constant blocks are
printed before the field list.

With the flag --summary, only one line per variable is printed, with the
number of fields of that variable.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var header bool
var summary bool

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&header, "header", false, "")
	c.Flags().BoolVar(&summary, "summary", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting input file")
	}
	f, err := umfile.Read(args[0])
	if err != nil {
		return err
	}

	if header {
		printHeader(c, f)
	}
	if summary {
		printSummary(c, f)
		return nil
	}

	for k, fld := range f.Fields {
		name := umfile.Name(fld.Stash())
		fmt.Fprintf(c.Stdout(), "%4d  stash %5d  %-38s lev %5d  pack %3d  %dx%d", k, fld.Stash(), name, fld.Level(), fld.Packing(), fld.Rows(), fld.Cols())
		if !fld.IsPacked() {
			if vals, err := fld.Values(); err == nil && len(vals) > 0 {
				fmt.Fprintf(c.Stdout(), "  min %g max %g mean %g", floats.Min(vals), floats.Max(vals), stat.Mean(vals, nil))
			}
		}
		fmt.Fprintf(c.Stdout(), "\n")
	}
	return nil
}

func printHeader(c *command.Command, f *umfile.File) {
	fmt.Fprintf(c.Stdout(), "dataset type: %d\n", f.DataSetType())
	y, m, d := f.Date()
	fmt.Fprintf(c.Stdout(), "initial date: %04d-%02d-%02d\n", y, m, d)
	fmt.Fprintf(c.Stdout(), "grid: %d rows, %d columns, %d levels\n", f.NumRows(), f.NumCols(), f.NumLevels())
	fmt.Fprintf(c.Stdout(), "fields: %d (%d prognostic, %d tracer variables on %d levels)\n", f.HeaderFieldCount(), f.PrognosticCount(), f.TracerVars(), f.TracerLevels())
	fmt.Fprintf(c.Stdout(), "integer constants: %v\n", f.IntConst)
	fmt.Fprintf(c.Stdout(), "real constants: %v\n", f.RealConst)
	if len(f.LevDep) > 0 {
		fmt.Fprintf(c.Stdout(), "level dependent constants: %v\n", f.LevDep)
	}
}

func printSummary(c *command.Command, f *umfile.File) {
	count := make(map[int]int)
	var order []int
	for _, fld := range f.Fields {
		if count[fld.Stash()] == 0 {
			order = append(order, fld.Stash())
		}
		count[fld.Stash()]++
	}
	for _, code := range order {
		fmt.Fprintf(c.Stdout(), "stash %5d  %-38s %4d fields\n", code, umfile.Name(code), count[code])
	}
}
