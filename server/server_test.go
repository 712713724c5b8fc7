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

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mzwsInJjq/sentinel-2-acquisition-map/metrics"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/model"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/pipeline"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLoader struct {
	calls int32
	fail  bool
	sets  []model.PlanSet
}

func (m *mockLoader) Load(context.Context) (*pipeline.LoadResult, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.fail {
		return nil, errors.New("index unreachable")
	}
	return &pipeline.LoadResult{
		RunID:    "run-1",
		Sets:     m.sets,
		Statuses: []pipeline.SatelliteStatus{{Satellite: "Sentinel-2A", DocumentID: "s2a_plan", Records: 1}, {Satellite: "Sentinel-2B", Stage: "download", Err: errors.New("timeout")}},
	}, nil
}

func seattleSets() []model.PlanSet {
	return []model.PlanSet{{
		Satellite: "Sentinel-2A",
		Records: []model.AcquisitionPlanRecord{{
			Satellite: "Sentinel-2A",
			Layer:     "S2A",
			Name:      "S2A-1",
			Begin:     "2024-10-12T10:00:00.000",
			Footprint: []model.Vertex{{X: -124, Y: 46}, {X: -121, Y: 46}, {X: -121, Y: 49}, {X: -124, Y: 49}},
		}},
	}}
}

func readyRouter(t *testing.T) (*PlanStore, http.Handler, *metrics.Collector) {
	collector, err := metrics.NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)
	store := NewPlanStore(&mockLoader{sets: seattleSets()})
	require.NoError(t, store.Refresh(context.Background()))
	return store, NewRouter(store, util.DefaultLocations, collector), collector
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", target, nil))
	return recorder
}

func TestPlanStore_FailedRefreshKeepsPreviousPlans(t *testing.T) {
	loader := &mockLoader{sets: seattleSets()}
	store := NewPlanStore(loader)
	assert.False(t, store.Status().Ready)

	require.NoError(t, store.Refresh(context.Background()))
	loadedAt := store.Status().LoadedAt
	require.NotNil(t, loadedAt)

	loader.fail = true
	assert.Error(t, store.Refresh(context.Background()))

	matches, ok := store.Query(model.Point{Lat: 47.6062, Lon: -122.3321})
	assert.True(t, ok)
	assert.Len(t, matches, 1)
	assert.Equal(t, *loadedAt, *store.Status().LoadedAt)
}

func TestPlanStore_RefreshOnTickerStopsWithContext(t *testing.T) {
	loader := &mockLoader{sets: seattleSets()}
	store := NewPlanStore(loader)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		store.RefreshOnTicker(ctx, 10*time.Millisecond)
		close(done)
	}()
	time.Sleep(55 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		assert.Fail(t, "refresh loop did not stop within 1 second of cancel")
	}
	assert.True(t, store.Status().Ready)
	assert.True(t, atomic.LoadInt32(&loader.calls) >= 2)
}

func TestRouter_HealthCheck(t *testing.T) {
	_, router, _ := readyRouter(t)

	response := get(router, "/")

	assert.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "OK", response.Body.String())
}

func TestAcquisitions_TSV(t *testing.T) {
	_, router, collector := readyRouter(t)

	response := get(router, "/acquisitions?lat=47.6062&lon=-122.3321")

	require.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, contentTypeTSV, response.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSuffix(response.Body.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(model.Columns, "\t"), lines[0])
	assert.Contains(t, lines[1], "S2A-1")
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("/acquisitions", "200")))
}

func TestAcquisitions_NoMatchesIsHeaderOnly(t *testing.T) {
	_, router, _ := readyRouter(t)

	response := get(router, "/acquisitions?lat=0&lon=0")

	assert.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, strings.Join(model.Columns, "\t")+"\n", response.Body.String())
}

func TestAcquisitions_GeoJSON(t *testing.T) {
	_, router, _ := readyRouter(t)

	response := get(router, "/acquisitions?lat=47.6062&lon=-122.3321&format=geojson")

	require.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, contentTypeGeoJSON, response.Header().Get("Content-Type"))
	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "S2A-1", fc.Features[0].Properties[model.ColName])
}

func TestAcquisitions_BadRequest(t *testing.T) {
	_, router, collector := readyRouter(t)
	targets := []string{
		"/acquisitions",
		"/acquisitions?lat=north&lon=0",
		"/acquisitions?lat=91&lon=0",
		"/acquisitions?lat=0&lon=180.5",
		"/acquisitions?lat=NaN&lon=0",
		"/acquisitions?lat=0&lon=nan",
		"/acquisitions?lat=0&lon=0&format=kml",
	}

	for _, target := range targets {
		response := get(router, target)
		assert.Equal(t, http.StatusBadRequest, response.Code, target)
		assert.Equal(t, "application/json", response.Header().Get("Content-Type"), target)
	}
	assert.Equal(t, float64(len(targets)), testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("/acquisitions", "400")))
}

func TestAcquisitions_NotReady(t *testing.T) {
	store := NewPlanStore(&mockLoader{fail: true})
	router := NewRouter(store, util.DefaultLocations, nil)

	response := get(router, "/acquisitions?lat=0&lon=0")

	assert.Equal(t, http.StatusServiceUnavailable, response.Code)
}

func TestLocation(t *testing.T) {
	_, router, _ := readyRouter(t)

	sea := get(router, "/locations/sea")
	jfk := get(router, "/locations/jfk")
	unknown := get(router, "/locations/lax")

	assert.Equal(t, http.StatusOK, sea.Code)
	assert.Contains(t, sea.Body.String(), "S2A-1")
	assert.Equal(t, http.StatusOK, jfk.Code)
	assert.NotContains(t, jfk.Body.String(), "S2A-1")
	assert.Equal(t, http.StatusNotFound, unknown.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	_, router, _ := readyRouter(t)
	get(router, "/acquisitions?lat=47.6062&lon=-122.3321")

	response := get(router, "/metrics")

	assert.Equal(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), "acqplan_http_requests_total")
}

func TestStatus(t *testing.T) {
	_, router, _ := readyRouter(t)

	response := get(router, "/status")

	require.Equal(t, http.StatusOK, response.Code)
	var status Status
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &status))
	assert.True(t, status.Ready)
	assert.Equal(t, "run-1", status.RunID)
	assert.Equal(t, 1, status.Footprints)
	require.Len(t, status.Satellites, 2)
	assert.Equal(t, "s2a_plan", status.Satellites[0].DocumentID)
	assert.Equal(t, "download", status.Satellites[1].Stage)
	assert.Equal(t, "timeout", status.Satellites[1].Error)
}

func TestStatus_NotReady(t *testing.T) {
	status := NewPlanStore(&mockLoader{}).Status()

	assert.False(t, status.Ready)
	assert.Nil(t, status.LoadedAt)
	assert.Empty(t, status.Satellites)
}

func TestRefresh_OnePendingRequest(t *testing.T) {
	_, router, _ := readyRouter(t)
	post := func() int {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest("POST", "/refresh", nil))
		return recorder.Code
	}

	assert.Equal(t, http.StatusAccepted, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
	assert.Equal(t, http.StatusMethodNotAllowed, get(router, "/refresh").Code)
}

func TestRefreshOnTicker_HonorsRequests(t *testing.T) {
	loader := &mockLoader{sets: seattleSets()}
	store := NewPlanStore(loader)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go store.RefreshOnTicker(ctx, time.Hour)
	assert.Eventually(t, func() bool { return store.Status().Ready }, time.Second, 5*time.Millisecond)
	require.True(t, store.RequestRefresh())

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&loader.calls) == 2 }, time.Second, 5*time.Millisecond)
}
