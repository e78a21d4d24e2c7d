// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package perturb implements a command
// to add a random perturbation
// to the surface temperature of a UM dump file.
package perturb

import (
	"fmt"
	"time"

	"github.com/ACCESS-NRI/umfile-utils/umfile"
	"github.com/js-arias/command"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

var Command = &command.Command{
	Usage: `perturb [-a <amplitude>] [-s <seed>]
	[-o|--output <um-file>] [--validate] <um-file>`,
	Short: "perturb the surface temperature of a UM dump",
	Long: `
Command perturb adds a small random perturbation to the surface temperature
field (STASH 24) of a UM dump file, as used to generate perturbed initial
conditions for an ensemble. The same perturbation is applied at each level so
vertical stability is not upset, and the polar rows are left untouched.

The argument of the command is the name of the input file, which is modified
in place unless an output file is given with the flag --output, or -o.

The flag -a sets the amplitude of the perturbation; the default is 0.01. The
perturbation of every point is drawn uniformly from (-amplitude, amplitude).

The flag -s sets the random number seed, which must be a non-negative
integer; runs with the same seed produce the same perturbation. By default
the seed is taken from the clock.

By default the output file is written without structural validation. Use the
flag --validate to check the output before it is written.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var amplitude float64
var seed int64
var output string
var validate bool

func setFlags(c *command.Command) {
	c.Flags().Float64Var(&amplitude, "a", 0.01, "")
	c.Flags().Int64Var(&seed, "s", -1, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().BoolVar(&validate, "validate", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting input file")
	}
	if seed < -1 {
		return c.UsageError("seed must be a non-negative integer")
	}
	s := uint64(seed)
	if seed == -1 {
		s = uint64(time.Now().UnixNano())
	}

	f, err := umfile.Read(args[0])
	if err != nil {
		return err
	}

	p := perturbation(amplitude, s, f.NumRows(), f.NumCols())
	if p == nil {
		return fmt.Errorf("on file %q: unusable grid %dx%d", args[0], f.NumRows(), f.NumCols())
	}

	n := 0
	for _, fld := range f.Fields {
		if fld.Stash() != umfile.SurfaceTemperature {
			continue
		}
		vals, err := fld.Values()
		if err != nil {
			return err
		}
		if len(vals) != len(p) {
			return fmt.Errorf("stash %d: field grid %dx%d does not match the file grid %dx%d", fld.Stash(), fld.Rows(), fld.Cols(), f.NumRows(), f.NumCols())
		}
		for i := range vals {
			vals[i] += p[i]
		}
		if err := fld.SetValues(vals); err != nil {
			return err
		}
		n++
	}
	if n == 0 {
		fmt.Fprintf(c.Stderr(), "warning: no surface temperature field (stash %d) in the input file\n", umfile.SurfaceTemperature)
	}

	name := output
	if name == "" {
		name = args[0]
	}
	if !validate {
		fmt.Fprintf(c.Stdout(), "skipping validation of the output file\n")
	}
	if err := f.Save(name, validate); err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout(), "perturbed %d fields, saved as %s\n", n, name)
	return nil
}

// perturbation returns a uniform random perturbation
// on a rows by cols grid,
// with the polar rows set to zero
// (only required for New Dynamics grids,
// and harmless on ENDGame grids).
// It returns nil if the grid has no interior rows.
func perturbation(amplitude float64, seed uint64, rows, cols int) []float64 {
	if rows < 2 || cols < 1 {
		return nil
	}
	u := distuv.Uniform{
		Min: -amplitude,
		Max: amplitude,
		Src: rand.NewSource(seed),
	}
	p := make([]float64, rows*cols)
	for i := range p {
		p[i] = u.Rand()
	}
	for i := 0; i < cols; i++ {
		p[i] = 0
		p[(rows-1)*cols+i] = 0
	}
	return p
}
