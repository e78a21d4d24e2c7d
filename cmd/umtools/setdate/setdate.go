// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package setdate implements a command
// to change the date of a UM dump file.
package setdate

import (
	"fmt"

	"github.com/ACCESS-NRI/umfile-utils/umfile"
	"github.com/js-arias/command"
)

var Command = &command.Command{
	Usage: `setdate [--date <yyyymmdd>] [-y <year>] [-m <month>] [-d <day>]
	[-o|--output <um-file>] [--validate] <um-file>`,
	Short: "change the date of a UM dump file",
	Long: `
Command setdate reads a UM dump file and writes a copy with a new initial
date, changing both the file header and the validity date of every field
lookup header. Changing the lookup headers is not strictly required by the
model but keeps inspection tools from reporting a confusing mix of dates.

The argument of the command is the name of the input file.

The new date is given either as a single --date value in yyyymmdd form, or as
its components with the flags -y, -m, and -d; the two forms are mutually
exclusive. Components not given are left unchanged, so a single component can
be changed on its own. Year must be between 0 and 9999, month between 1 and
12, and day between 1 and 31.

By default the output is written to the input name with a "_newdate" suffix,
picking a new name if one is already in use. Use the flag --output, or -o, to
set the output file name.

By default the output file is written without structural validation. Use the
flag --validate to check the output before it is written.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var date string
var year int
var month int
var day int
var output string
var validate bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&date, "date", "", "")
	c.Flags().IntVar(&year, "y", -1, "")
	c.Flags().IntVar(&month, "m", -1, "")
	c.Flags().IntVar(&day, "d", -1, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().BoolVar(&validate, "validate", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting input file")
	}

	y, m, d := year, month, day
	if date != "" {
		if y >= 0 || m >= 0 || d >= 0 {
			return c.UsageError("--date is incompatible with -y, -m, and -d")
		}
		var err error
		y, m, d, err = parseDate(date)
		if err != nil {
			return c.UsageError(err.Error())
		}
	} else {
		if y < 0 && m < 0 && d < 0 {
			return c.UsageError("expecting a date to set")
		}
		if err := checkComponents(y, m, d); err != nil {
			return c.UsageError(err.Error())
		}
	}

	f, err := umfile.Read(args[0])
	if err != nil {
		return err
	}

	f.SetDate(y, m, d)
	for _, fld := range f.Fields {
		fld.SetValidityDate(y, m, d)
	}

	name := output
	if name == "" {
		name = umfile.DefaultOutput(args[0], "_newdate")
	}
	if !validate {
		fmt.Fprintf(c.Stdout(), "skipping validation of the output file\n")
	}
	if err := f.Save(name, validate); err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout(), "updated file saved as %s\n", name)
	return nil
}

// parseDate parses a date in yyyymmdd form.
func parseDate(s string) (year, month, day int, err error) {
	if len(s) != 8 {
		return 0, 0, 0, fmt.Errorf("invalid date %q: want yyyymmdd", s)
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, 0, 0, fmt.Errorf("invalid date %q: want yyyymmdd", s)
		}
		n = n*10 + int(r-'0')
	}
	year = n / 10000
	month = n / 100 % 100
	day = n % 100
	if err := checkComponents(year, month, day); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid date %q: %v", s, err)
	}
	return year, month, day, nil
}

// checkComponents validates the date components.
// Negative components mean "leave unchanged"
// and are accepted.
func checkComponents(year, month, day int) error {
	if year > 9999 {
		return fmt.Errorf("year %d out of range 0-9999", year)
	}
	if month == 0 || month > 12 {
		return fmt.Errorf("month %d out of range 1-12", month)
	}
	if day == 0 || day > 31 {
		return fmt.Errorf("day %d out of range 1-31", day)
	}
	return nil
}
