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

package pipeline

import (
	"fmt"
	"runtime"

	"github.com/mzwsInJjq/sentinel-2-acquisition-map/coverage"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/model"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/tsvexport"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/util"
	"golang.org/x/sync/errgroup"
)

// LocationResult is the outcome of exporting one query location
type LocationResult struct {
	Location util.Location
	Matches  model.MatchSet
	Path     string
	Written  bool
	Err      error
}

// Export queries every location against the loaded sets and writes one
// table per location that has matches. Locations are independent and run
// concurrently; results come back in location order.
func (p *Pipeline) Export(sets []model.PlanSet, locations []util.Location, outputDir string) []LocationResult {
	logCtx := &util.BasicLogContext{}
	index := coverage.NewIndex(sets)
	results := make([]LocationResult, len(locations))

	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i, loc := range locations {
		i, loc := i, loc
		group.Go(func() error {
			matches := index.Query(model.Point{Lat: loc.Lat, Lon: loc.Lon})
			p.Metrics.SetLocationMatches(loc.Code, len(matches))

			path, written, err := tsvexport.WriteLocation(outputDir, loc.Code, matches.Records())
			results[i] = LocationResult{Location: loc, Matches: matches, Path: path, Written: written, Err: err}

			switch {
			case err != nil:
				util.LogSimpleErr(logCtx, fmt.Sprintf("Error writing table for %s to %s: ", loc.Name, path), err)
			case !written:
				util.LogInfo(logCtx, fmt.Sprintf("No acquisition plan passes over %s (%.4f, %.4f); no table written.", loc.Name, loc.Lat, loc.Lon))
			default:
				p.Metrics.TableWritten()
				util.LogInfo(logCtx, fmt.Sprintf("Wrote %d acquisition plans over %s to %s.", len(matches), loc.Name, path))
			}
			return nil
		})
	}
	group.Wait()
	return results
}
