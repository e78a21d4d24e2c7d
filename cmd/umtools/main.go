// Copyright © 2025 ACCESS-NRI
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// UMtools is a collection of tools
// to inspect and edit Unified Model files.
package main

import (
	"github.com/ACCESS-NRI/umfile-utils/cmd/umtools/list"
	"github.com/ACCESS-NRI/umfile-utils/cmd/umtools/merge"
	"github.com/ACCESS-NRI/umfile-utils/cmd/umtools/nccompare"
	"github.com/ACCESS-NRI/umfile-utils/cmd/umtools/perturb"
	"github.com/ACCESS-NRI/umfile-utils/cmd/umtools/setdate"
	"github.com/ACCESS-NRI/umfile-utils/cmd/umtools/subset"
	"github.com/ACCESS-NRI/umfile-utils/cmd/umtools/tonetcdf"
	"github.com/ACCESS-NRI/umfile-utils/cmd/umtools/zero"
	"github.com/js-arias/command"
)

var app = &command.Command{
	Usage: "umtools <command> [<argument>...]",
	Short: "a collection of tools to inspect and edit UM files",
}

func init() {
	app.Add(list.Command)
	app.Add(merge.Command)
	app.Add(nccompare.Command)
	app.Add(perturb.Command)
	app.Add(setdate.Command)
	app.Add(subset.Command)
	app.Add(tonetcdf.Command)
	app.Add(zero.Command)
}

func main() {
	app.Main()
}
