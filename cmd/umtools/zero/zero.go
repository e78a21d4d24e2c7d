// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package zero implements a command
// to set fields of a UM file to zero.
package zero

import (
	"fmt"

	"github.com/ACCESS-NRI/umfile-utils/subset"
	"github.com/ACCESS-NRI/umfile-utils/umfile"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: "zero [--stash <stash-list>] [--validate] <um-file>",
	Short: "set fields of a UM file to zero",
	Long: `
Command zero sets the data of fields of a UM file to zero, overwriting the
file in place.

The argument of the command is the name of the file to process.

By default every field is zeroed. Use the flag --stash with a comma separated
list of STASH codes to zero only the listed fields. A listed code that is not
present in the file is reported as a warning and otherwise ignored.

Packed fields cannot be zeroed and are reported and skipped.

By default the file is written without structural validation. Use the flag
--validate to check the file before it is written.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var stashList string
var validate bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&stashList, "stash", "", "")
	c.Flags().BoolVar(&validate, "validate", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting input file")
	}

	var codes map[int]bool
	if stashList != "" {
		ls, err := subset.ParseList(stashList)
		if err != nil {
			return c.UsageError(err.Error())
		}
		codes = make(map[int]bool, len(ls))
		for _, v := range ls {
			codes[v] = true
		}
	}

	f, err := umfile.Read(args[0])
	if err != nil {
		return err
	}

	if codes != nil {
		if missing := subset.MissingCodes(f.Fields, codes); len(missing) > 0 {
			fmt.Fprintf(c.Stderr(), "warning: STASH codes not found: %s\n", subset.FormatCodes(missing))
		}
	}

	for k, fld := range f.Fields {
		if codes != nil && !codes[fld.Stash()] {
			continue
		}
		if fld.IsPacked() {
			fmt.Fprintf(c.Stderr(), "warning: field %d (stash %d) is packed, skipped\n", k, fld.Stash())
			continue
		}
		vals, err := fld.Values()
		if err != nil {
			return err
		}
		for i := range vals {
			vals[i] = 0
		}
		if err := fld.SetValues(vals); err != nil {
			return err
		}
		fmt.Fprintf(c.Stdout(), "zeroing field %d, stash code %d\n", k, fld.Stash())
	}

	if !validate {
		fmt.Fprintf(c.Stdout(), "skipping validation of the output file\n")
	}
	return f.Save(args[0], validate)
}
