// Copyright 2025, EDITO Infra Contributors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var commands = cli.Commands{
	cli.Command{
		Name:      "convert",
		Aliases:   []string{"c"},
		Usage:     "Build a STAC item from a data file",
		ArgsUsage: "<netcdf|zarr|parquet> <path_or_uri> <data_url> <output.json>",
		Flags:     convertFlags,
		Action:    convertAction,
	},
	cli.Command{
		Name:      "validate",
		Aliases:   []string{"val"},
		Usage:     "Validate an existing STAC item JSON file",
		ArgsUsage: "<item.json>",
		Action:    validateAction,
	},
	cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Launch the makestac validation webserver",
		Action:  serveAction,
	},
	cli.Command{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Print the version number of the makestac CLI",
		Action:  versionAction,
	},
}

var convertFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "id",
		Usage: "item id (default: source filename stem)",
	},
	cli.BoolFlag{
		Name:  "quiet, q",
		Usage: "do not print the assembled item to stdout",
	},
}

func createCliApp() (app *cli.App) {
	app = cli.NewApp()
	app.Name = "makestac"
	app.Usage = "Build and validate STAC items for EDITO datasets"
	app.Version = "1.0.0"
	app.Commands = commands
	// bare positional usage maps onto convert, per the historical surface
	app.Flags = convertFlags
	app.Action = convertAction
	return
}

func versionAction(c *cli.Context) {
	cli.ShowVersion(c)
}
