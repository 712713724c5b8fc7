// Copyright 2018, RadiantBlue Technologies, Inc.
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
	"fmt"

	"github.com/mzwsInJjq/sentinel-2-acquisition-map/metrics"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/util"
	cli "gopkg.in/urfave/cli.v1"
)

var version = "1.0.0"

var commands = cli.Commands{
	cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Fetch the latest acquisition plans and write a table for each configured location",
		Action:  runAction,
	},
	cli.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "Print the acquisitions planned over a single point",
		Action:  queryAction,
		Flags: []cli.Flag{
			cli.Float64Flag{Name: "lat", Usage: "Latitude of the point, -90 to 90"},
			cli.Float64Flag{Name: "lon", Usage: "Longitude of the point, -180 to 180"},
		},
	},
	cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Launch the acquisition plan webserver",
		Action:  serveAction,
	},
	cli.Command{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Print the version number of the CLI",
		Action:  versionAction,
	},
}

func createCliApp() (app *cli.App) {
	app = cli.NewApp()
	app.Name = util.AppName
	app.Usage = "Find the Sentinel-2 acquisitions planned over a set of locations"
	app.Version = version
	app.Commands = commands
	app.Action = runAction
	return
}

var loadConfigFunc = util.LoadConfig

// setup reads configuration and prepares the ambient services every command shares
func setup() (*util.Config, *metrics.Collector, error) {
	cfg, err := loadConfigFunc()
	if err != nil {
		return nil, nil, cli.NewExitError(fmt.Sprintf("Invalid configuration: %v", err), 1)
	}
	util.ConfigureLogging(cfg.LogLevel, cfg.LogFormat)

	collector, err := metrics.NewCollector(nil)
	if err != nil {
		return nil, nil, cli.NewExitError(fmt.Sprintf("Could not register metrics: %v", err), 1)
	}
	return cfg, collector, nil
}

func versionAction(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "%s version %s\n", c.App.Name, c.App.Version)
	return nil
}
