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

// Column names of the exported table
const (
	ColPolygon              = "Polygon"
	ColID                   = "ID"
	ColBegin                = "TimeSpan.begin"
	ColEnd                  = "TimeSpan.end"
	ColOrbitAbsolute        = "OrbitAbsolute"
	ColOrbitRelative        = "OrbitRelative"
	ColScenes               = "Scenes"
	ColCanonicalID          = "id"
	ColName                 = "Name"
	ColTimestamp            = "timestamp"
	ColIcon                 = "icon"
	ColTimeliness           = "Timeliness"
	ColStation              = "Station"
	ColMode                 = "Mode"
	ColObservationTimeStart = "ObservationTimeStart"
	ColObservationTimeStop  = "ObservationTimeStop"
	ColObservationDuration  = "ObservationDuration"
	ColLayer                = "layer"
)

// Columns is the fixed, ordered export schema
var Columns = []string{
	ColPolygon,
	ColID,
	ColBegin,
	ColEnd,
	ColOrbitAbsolute,
	ColOrbitRelative,
	ColScenes,
	ColCanonicalID,
	ColName,
	ColTimestamp,
	ColIcon,
	ColTimeliness,
	ColStation,
	ColMode,
	ColObservationTimeStart,
	ColObservationTimeStop,
	ColObservationDuration,
	ColLayer,
}

// Value returns the record's value for a schema column; unknown columns are empty
func (r AcquisitionPlanRecord) Value(column string) string {
	switch column {
	case ColPolygon:
		return r.WKT()
	case ColID:
		return r.ID
	case ColBegin:
		return r.Begin
	case ColEnd:
		return r.End
	case ColOrbitAbsolute:
		return r.OrbitAbsolute
	case ColOrbitRelative:
		return r.OrbitRelative
	case ColScenes:
		return r.Scenes
	case ColCanonicalID:
		return r.CanonicalID()
	case ColName:
		return r.Name
	case ColTimestamp:
		return r.Timestamp
	case ColIcon:
		return r.Icon
	case ColTimeliness:
		return r.Timeliness
	case ColStation:
		return r.Station
	case ColMode:
		return r.Mode
	case ColObservationTimeStart:
		return r.ObservationTimeStart
	case ColObservationTimeStop:
		return r.ObservationTimeStop
	case ColObservationDuration:
		return r.ObservationDuration
	case ColLayer:
		return r.Layer
	}
	return ""
}

// Row renders every schema column, in order
func (r AcquisitionPlanRecord) Row() []string {
	row := make([]string, len(Columns))
	for i, col := range Columns {
		row[i] = r.Value(col)
	}
	return row
}
