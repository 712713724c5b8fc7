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

package coverage

import (
	"sync"
	"testing"

	"github.com/mzwsInJjq/sentinel-2-acquisition-map/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x0, y0, size float64) []model.Vertex {
	return []model.Vertex{
		{X: x0, Y: y0}, {X: x0 + size, Y: y0}, {X: x0 + size, Y: y0 + size}, {X: x0, Y: y0 + size},
	}
}

func record(name, layer string, footprint []model.Vertex) model.AcquisitionPlanRecord {
	return model.AcquisitionPlanRecord{Name: name, Layer: layer, Footprint: footprint}
}

var mockSets = []model.PlanSet{
	{Satellite: "Sentinel-2A", Layer: "S2A", Records: []model.AcquisitionPlanRecord{
		record("a1", "S2A", square(0, 0, 10)),
		record("a2", "S2A", square(20, 20, 5)),
		record("a3", "S2A", []model.Vertex{}),
	}},
	{Satellite: "Sentinel-2B", Layer: "S2B", Records: []model.AcquisitionPlanRecord{
		record("b1", "S2B", square(-5, -5, 20)),
	}},
}

// Point is (lat, lon); footprints are (x=lon, y=lat)
func TestQuery_Square(t *testing.T) {
	sets := []model.PlanSet{{Satellite: "Sentinel-2A", Records: []model.AcquisitionPlanRecord{record("sq", "S2A", square(0, 0, 10))}}}

	assert.Len(t, Query(model.Point{Lat: 5, Lon: 5}, sets), 1)
	assert.Len(t, Query(model.Point{Lat: 15, Lon: 15}, sets), 0)
}

func TestQuery_BoundaryIsInside(t *testing.T) {
	sets := []model.PlanSet{{Satellite: "Sentinel-2A", Records: []model.AcquisitionPlanRecord{record("sq", "S2A", square(0, 0, 10))}}}

	assert.Len(t, Query(model.Point{Lat: 0, Lon: 5}, sets), 1)
	assert.Len(t, Query(model.Point{Lat: 10, Lon: 10}, sets), 1)
}

func TestQuery_MultiSatellite(t *testing.T) {
	matches := Query(model.Point{Lat: 5, Lon: 5}, mockSets)

	require.Len(t, matches, 2)
	assert.Equal(t, "Sentinel-2A", matches[0].Satellite)
	assert.Equal(t, "S2A", matches[0].Record.Layer)
	assert.Equal(t, "Sentinel-2B", matches[1].Satellite)
	assert.Equal(t, "S2B", matches[1].Record.Layer)
}

func TestQuery_NoMatches(t *testing.T) {
	matches := Query(model.Point{Lat: -50, Lon: 100}, mockSets)

	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestNewIndex_SkipsEmptyFootprints(t *testing.T) {
	assert.Equal(t, 3, NewIndex(mockSets).Len())
}

func TestQuery_NonConvexFootprint(t *testing.T) {
	// U shape opening upward
	u := []model.Vertex{{X: 0, Y: 0}, {X: 9, Y: 0}, {X: 9, Y: 9}, {X: 6, Y: 9}, {X: 6, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 9}, {X: 0, Y: 9}}
	sets := []model.PlanSet{{Satellite: "Sentinel-2C", Records: []model.AcquisitionPlanRecord{record("u", "S2C", u)}}}

	assert.Len(t, Query(model.Point{Lat: 6, Lon: 4.5}, sets), 0)
	assert.Len(t, Query(model.Point{Lat: 6, Lon: 1.5}, sets), 1)
}

func TestQuery_ConcurrentReadsDoNotMutate(t *testing.T) {
	idx := NewIndex(mockSets)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lat := float64(i % 10)
			assert.Len(t, idx.Query(model.Point{Lat: lat, Lon: lat}), 2)
		}(i)
	}
	wg.Wait()

	assert.Len(t, mockSets[0].Records, 3)
	assert.Equal(t, "a1", mockSets[0].Records[0].Name)
}
