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
	"context"
	"fmt"
	"math"

	"github.com/mzwsInJjq/sentinel-2-acquisition-map/coverage"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/model"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/pipeline"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/tsvexport"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/util"
	cli "gopkg.in/urfave/cli.v1"
)

// runAction loads every satellite's plan once and writes <code>.tsv for
// each location with at least one planned acquisition
func runAction(c *cli.Context) error {
	logContext := &(util.BasicLogContext{})
	cfg, collector, err := setup()
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, collector)
	result, err := p.Load(context.Background())
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	written, failed := 0, 0
	for _, locResult := range p.Export(result.Sets, cfg.Locations, cfg.OutputDir) {
		switch {
		case locResult.Err != nil:
			failed++
		case locResult.Written:
			written++
		}
	}
	util.LogInfo(logContext, fmt.Sprintf("Wrote %d of %d location tables to %s (%d failed).", written, len(cfg.Locations), cfg.OutputDir, failed))
	if failed > 0 {
		return cli.NewExitError(fmt.Sprintf("%d location tables could not be written to %s", failed, cfg.OutputDir), 1)
	}
	return nil
}

// queryAction loads every satellite's plan once and prints the acquisitions
// over --lat/--lon to stdout as a table
func queryAction(c *cli.Context) error {
	if !c.IsSet("lat") || !c.IsSet("lon") {
		return cli.NewExitError("Both --lat and --lon are required", 1)
	}
	pt := model.Point{Lat: c.Float64("lat"), Lon: c.Float64("lon")}
	if math.IsNaN(pt.Lat) || math.IsNaN(pt.Lon) || pt.Lat < -90 || pt.Lat > 90 || pt.Lon < -180 || pt.Lon > 180 {
		return cli.NewExitError(fmt.Sprintf("Point (%v, %v) is out of range", pt.Lat, pt.Lon), 1)
	}

	cfg, collector, err := setup()
	if err != nil {
		return err
	}
	result, err := pipeline.New(cfg, collector).Load(context.Background())
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	matches := coverage.Query(pt, result.Sets)
	return tsvexport.NewTable(matches.Records()).Encode(c.App.Writer)
}
