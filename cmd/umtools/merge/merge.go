// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package merge implements a command
// to merge the fields of two UM files.
package merge

import (
	"fmt"

	"github.com/ACCESS-NRI/umfile-utils/subset"
	"github.com/ACCESS-NRI/umfile-utils/umfile"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `merge [--dup <1|2>] [-o|--output <um-file>] [--validate]
	<um-file-1> <um-file-2>`,
	Short: "merge the fields of two UM files",
	Long: `
Command merge reads two UM files and writes a new file with the fields of
both, ordered by STASH code. All fields are merged; for finer control subset
the files separately first.

The arguments of the command are the names of the two input files. Both files
must store their fields in ascending STASH code order. The header of the
output file is taken from the first file.

When a field appears in both files it is taken from the first file; use the
flag --dup with the value 2 to take duplicates from the second file. Every
duplicate is reported as a warning.

By default the output is written to the first input name with a "_merged"
suffix, picking a new name if one is already in use. Use the flag --output,
or -o, to set the output file name.

By default the output file is written without structural validation. Use the
flag --validate to check the output before it is written.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var dup int
var output string
var validate bool

func setFlags(c *command.Command) {
	c.Flags().IntVar(&dup, "dup", 1, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().BoolVar(&validate, "validate", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 2 {
		return c.UsageError("expecting two input files")
	}
	if dup != 1 && dup != 2 {
		return c.UsageError("flag --dup must be 1 or 2")
	}

	f1, err := umfile.Read(args[0])
	if err != nil {
		return err
	}
	f2, err := umfile.Read(args[1])
	if err != nil {
		return err
	}

	fields, dups := mergeFields(f1.Fields, f2.Fields, dup)
	for _, code := range dups {
		fmt.Fprintf(c.Stderr(), "warning: duplicate field %d (using file %d version)\n", code, dup)
	}

	out := f1.HeaderCopy()
	out.Fields = fields
	rep := &subset.Report{}
	subset.Reconcile(out, rep)
	for _, n := range rep.Notices {
		fmt.Fprintf(c.Stdout(), "%s\n", n)
	}

	name := output
	if name == "" {
		name = umfile.DefaultOutput(args[0], "_merged")
	}
	if !validate {
		fmt.Fprintf(c.Stdout(), "skipping validation of the output file\n")
	}
	if err := out.Save(name, validate); err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout(), "merged file written to %s\n", name)
	return nil
}

// mergeFields merges two field sequences
// sorted by STASH code,
// taking duplicates from the file indicated by dup.
// It returns copies of the merged fields
// and the STASH codes of the duplicates.
func mergeFields(a, b []*umfile.Field, dup int) (fields []*umfile.Field, dups []int) {
	var i, j int
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b):
			fields = append(fields, a[i].Copy())
			i++
		case i >= len(a):
			fields = append(fields, b[j].Copy())
			j++
		case a[i].Stash() == b[j].Stash():
			dups = append(dups, a[i].Stash())
			if dup == 2 {
				fields = append(fields, b[j].Copy())
			} else {
				fields = append(fields, a[i].Copy())
			}
			i++
			j++
		case a[i].Stash() < b[j].Stash():
			fields = append(fields, a[i].Copy())
			i++
		default:
			fields = append(fields, b[j].Copy())
			j++
		}
	}
	return fields, dups
}
