// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package subset implements a command
// to select a subset of the fields of a UM file.
package subset

import (
	"fmt"

	"github.com/ACCESS-NRI/umfile-utils/subset"
	"github.com/ACCESS-NRI/umfile-utils/umfile"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `subset [--prognostic | --include <stash-list> | --exclude <stash-list>]
	[-o|--output <um-file>] [--validate] <um-file>`,
	Short: "select a subset of the fields of a UM file",
	Long: `
Command subset reads a UM file and writes a new file with a subset of its
fields, preserving their order.

The argument of the command is the name of the input file.

Exactly one selection mode must be given. With --prognostic only the
prognostic fields are kept (STASH codes 1-999 and 33001-34999). With
--include only the fields whose STASH code appears in the given list are
kept, and with --exclude the fields whose STASH code appears in the list are
dropped. Both lists are comma separated lists of positive integers. A listed
code that is not present in the input file is reported as a warning and
otherwise ignored.

In include mode, if a selected field is stored compressed to land or sea
points, the land-sea mask (STASH 30) is required to decode it, and it will be
added to the selection automatically if it was not requested.

By default the output is written to the input name with a "_subset" suffix,
picking a new name if one is already in use. Use the flag --output, or -o, to
set the output file name.

By default the output file is written without structural validation. Use the
flag --validate to check the output before it is written.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var prognostic bool
var validate bool
var includeList string
var excludeList string
var output string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&prognostic, "prognostic", false, "")
	c.Flags().BoolVar(&validate, "validate", false, "")
	c.Flags().StringVar(&includeList, "include", "", "")
	c.Flags().StringVar(&excludeList, "exclude", "", "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting input file")
	}

	var include, exclude []int
	var err error
	if includeList != "" {
		include, err = subset.ParseList(includeList)
		if err != nil {
			return c.UsageError(err.Error())
		}
	}
	if excludeList != "" {
		exclude, err = subset.ParseList(excludeList)
		if err != nil {
			return c.UsageError(err.Error())
		}
	}
	crit, err := subset.Resolve(prognostic, include, exclude)
	if err != nil {
		return c.UsageError(err.Error())
	}

	src, err := umfile.Read(args[0])
	if err != nil {
		return err
	}

	out, rep := crit.Apply(src)
	printReport(c, rep)

	name := output
	if name == "" {
		name = umfile.DefaultOutput(args[0], "_subset")
	}
	if !validate {
		fmt.Fprintf(c.Stdout(), "skipping validation of the output file\n")
	}
	if err := out.Save(name, validate); err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout(), "subset written to %s\n", name)
	return nil
}

func printReport(c *command.Command, rep *subset.Report) {
	if len(rep.Missing) > 0 {
		fmt.Fprintf(c.Stderr(), "warning: STASH codes not found: %s\n", subset.FormatCodes(rep.Missing))
	}
	if rep.MaskAdded {
		fmt.Fprintf(c.Stdout(), "adding land-sea mask to output because of packed fields\n")
	}
	if rep.MaskUnavailable {
		fmt.Fprintf(c.Stderr(), "warning: packed fields need a land-sea mask not present in the input file\n")
	}
	for _, n := range rep.Notices {
		fmt.Fprintf(c.Stdout(), "%s\n", n)
	}
}
