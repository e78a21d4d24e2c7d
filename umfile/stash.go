// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package umfile

// STASH codes of common fields.
const (
	// Land-sea mask,
	// required to decode fields
	// compressed to land or sea points.
	LandSeaMask = 30

	// Surface temperature after timestep.
	SurfaceTemperature = 24
)

// Prognostic STASH code ranges:
// section 0 (1-999)
// and sections 33 and 34 (33001-34999).
const (
	progSec0Min  = 1
	progSec0Max  = 999
	progSec33Min = 33001
	progSec34Max = 34999
)

// Tracer fields live in section 34.
const tracerSection = 34

// Section returns the section number of a STASH code.
func Section(code int) int {
	return code / 1000
}

// Item returns the item number of a STASH code.
func Item(code int) int {
	return code % 1000
}

// IsValid reports whether a number is a valid STASH code:
// a positive integer
// with section between 0 and 99
// and item between 1 and 999.
func IsValid(code int) bool {
	if code <= 0 {
		return false
	}
	return Section(code) <= 99 && Item(code) >= 1
}

// IsPrognostic reports whether a STASH code
// belongs to a prognostic field,
// a model state variable
// carried forward between timesteps.
func IsPrognostic(code int) bool {
	if code >= progSec0Min && code <= progSec0Max {
		return true
	}
	return code >= progSec33Min && code <= progSec34Max
}

// IsTracer reports whether a STASH code
// belongs to a tracer field.
func IsTracer(code int) bool {
	return Section(code) == tracerSection
}
