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

package model

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Vertex is one footprint coordinate: X is longitude, Y is latitude
type Vertex struct {
	X, Y, Z float64
	HasZ    bool
}

// Point is a query location
type Point struct {
	Lat float64
	Lon float64
}

// OrbPoint converts the point to planar (lon, lat) form
func (p Point) OrbPoint() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// AcquisitionPlanRecord is one planned observation. Absent values are empty
// strings and a placemark without a polygon has an empty Footprint.
type AcquisitionPlanRecord struct {
	Satellite string
	Layer     string
	Name      string
	ID        string

	Footprint []Vertex

	Begin                string
	End                  string
	OrbitAbsolute        string
	OrbitRelative        string
	Scenes               string
	Timeliness           string
	Station              string
	Mode                 string
	ObservationTimeStart string
	ObservationTimeStop  string
	ObservationDuration  string
	Icon                 string
	Timestamp            string

	// Extra holds extended attributes that are not schema columns
	Extra map[string]string
}

// CanonicalID is the explicit ID, or the placemark name when there is none
func (r AcquisitionPlanRecord) CanonicalID() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Name
}

// Polygon returns the footprint as a closed planar polygon, or nil when the
// footprint is empty
func (r AcquisitionPlanRecord) Polygon() orb.Polygon {
	if len(r.Footprint) == 0 {
		return nil
	}
	ring := make(orb.Ring, 0, len(r.Footprint)+1)
	for _, v := range r.Footprint {
		ring = append(ring, orb.Point{v.X, v.Y})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}

// WKT renders the footprint as well-known text
func (r AcquisitionPlanRecord) WKT() string {
	if len(r.Footprint) == 0 {
		return "POLYGON Z EMPTY"
	}
	hasZ := true
	for _, v := range r.Footprint {
		hasZ = hasZ && v.HasZ
	}

	coords := make([]string, len(r.Footprint))
	for i, v := range r.Footprint {
		parts := []string{formatCoord(v.X), formatCoord(v.Y)}
		if hasZ {
			parts = append(parts, formatCoord(v.Z))
		}
		coords[i] = strings.Join(parts, " ")
	}
	if hasZ {
		return "POLYGON Z ((" + strings.Join(coords, ", ") + "))"
	}
	return "POLYGON ((" + strings.Join(coords, ", ") + "))"
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// PlanSet is the parsed plan of one satellite
type PlanSet struct {
	Satellite  string
	DocumentID string
	Layer      string
	Records    []AcquisitionPlanRecord
}

// Match is a record whose footprint contains a query point
type Match struct {
	Satellite string
	Record    AcquisitionPlanRecord
}
