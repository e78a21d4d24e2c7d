// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package umfile

// Names of commonly used STASH codes,
// enough for readable listings.
// The authoritative table belongs to the model
// and is far too large to carry here.
var stashNames = map[int]string{
	2:     "u wind component",
	3:     "v wind component",
	4:     "potential temperature",
	10:    "specific humidity",
	12:    "cloud ice content",
	20:    "deep soil temperature",
	23:    "snow amount",
	24:    "surface temperature",
	25:    "boundary layer depth",
	26:    "surface roughness length",
	28:    "surface zonal current",
	29:    "surface meridional current",
	30:    "land-sea mask",
	31:    "sea ice fraction",
	32:    "sea ice depth",
	33:    "orography",
	60:    "ozone",
	150:   "w wind component",
	253:   "density*r*r",
	254:   "qcl",
	255:   "exner pressure",
	272:   "qrain",
	273:   "qgraup",
	409:   "surface pressure",
	1207:  "incoming shortwave flux",
	1235:  "total downward surface shortwave flux",
	2201:  "net downward surface longwave flux",
	2207:  "downward longwave flux",
	3217:  "surface sensible heat flux",
	3225:  "10m u wind",
	3226:  "10m v wind",
	3234:  "surface latent heat flux",
	3236:  "1.5m temperature",
	3237:  "1.5m specific humidity",
	3245:  "1.5m relative humidity",
	4203:  "large scale rainfall rate",
	4204:  "large scale snowfall rate",
	5205:  "convective rainfall rate",
	5206:  "convective snowfall rate",
	5216:  "total precipitation rate",
	8023:  "snow mass",
	8208:  "soil moisture content",
	8225:  "deep soil temperature",
	16202: "geopotential height",
	16203: "temperature on pressure levels",
	16222: "mean sea level pressure",
	30204: "temperature",
	33001: "tracer 1",
	34001: "ukca tracer 1",
}

// Name returns a descriptive name for a STASH code,
// or an empty string if the code is not
// in the local table.
func Name(code int) string {
	return stashNames[code]
}
