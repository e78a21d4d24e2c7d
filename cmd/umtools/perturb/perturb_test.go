// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package perturb

import (
	"math"
	"reflect"
	"testing"
)

func TestPerturbation(t *testing.T) {
	rows, cols := 5, 8
	p := perturbation(0.01, 42, rows, cols)

	if len(p) != rows*cols {
		t.Fatalf("got %d points, want %d", len(p), rows*cols)
	}
	for i := 0; i < cols; i++ {
		if p[i] != 0 {
			t.Errorf("north pole point %d: got %g, want 0", i, p[i])
		}
		if at := (rows-1)*cols + i; p[at] != 0 {
			t.Errorf("south pole point %d: got %g, want 0", i, p[at])
		}
	}

	allZero := true
	for _, v := range p[cols : (rows-1)*cols] {
		if math.Abs(v) >= 0.01 {
			t.Errorf("point outside amplitude: %g", v)
		}
		if v != 0 {
			allZero = false
		}
	}
	if allZero {
		t.Errorf("interior rows should be perturbed")
	}

	// Same seed, same perturbation.
	if q := perturbation(0.01, 42, rows, cols); !reflect.DeepEqual(p, q) {
		t.Errorf("perturbation is not reproducible with a fixed seed")
	}

	if q := perturbation(0.01, 43, rows, cols); reflect.DeepEqual(p, q) {
		t.Errorf("different seeds should give different perturbations")
	}
}

func TestPerturbationDegenerateGrid(t *testing.T) {
	tests := map[string]struct {
		rows, cols int
	}{
		"no rows":    {rows: 0, cols: 8},
		"single row": {rows: 1, cols: 8},
		"no columns": {rows: 5, cols: 0},
	}
	for name, test := range tests {
		if p := perturbation(0.01, 42, test.rows, test.cols); p != nil {
			t.Errorf("%s (%dx%d): got %d points, want nil", name, test.rows, test.cols, len(p))
		}
	}
}
