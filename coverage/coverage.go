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

// Package coverage answers which planned acquisitions observe a point.
//
// Containment is planar in (longitude, latitude). A point on a footprint's
// boundary counts as contained. Footprints crossing the antimeridian are
// tested as published, without unwrapping.
package coverage

import (
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/model"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

type entry struct {
	satellite string
	record    model.AcquisitionPlanRecord
	polygon   orb.Polygon
	bound     orb.Bound
}

// Index holds footprints prepared for containment queries. It is never
// modified after construction and may be queried concurrently.
type Index struct {
	entries []entry
}

// NewIndex prepares every record with a non-empty footprint. The order of
// sets, then records, is the order matches are returned in.
func NewIndex(sets []model.PlanSet) *Index {
	idx := &Index{}
	for _, set := range sets {
		for _, record := range set.Records {
			polygon := record.Polygon()
			if polygon == nil {
				continue
			}
			idx.entries = append(idx.entries, entry{
				satellite: set.Satellite,
				record:    record,
				polygon:   polygon,
				bound:     polygon.Bound(),
			})
		}
	}
	return idx
}

// Len is the number of queryable footprints
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Query returns every record whose footprint contains pt. Matches from
// different satellites are concatenated, not deduplicated.
func (idx *Index) Query(pt model.Point) model.MatchSet {
	p := pt.OrbPoint()
	matches := model.MatchSet{}
	for _, e := range idx.entries {
		if !e.bound.Contains(p) {
			continue
		}
		if planar.PolygonContains(e.polygon, p) {
			matches = append(matches, model.Match{Satellite: e.satellite, Record: e.record})
		}
	}
	return matches
}

// Query is a one-shot query over sets without keeping the index
func Query(pt model.Point, sets []model.PlanSet) model.MatchSet {
	return NewIndex(sets).Query(pt)
}
