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

package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Document fetch results
const (
	ResultDownloaded = "downloaded"
	ResultCached     = "cached"
	ResultFailed     = "failed"
)

// Pipeline stages a satellite can fail in
const (
	StageResolve  = "resolve"
	StageDownload = "download"
	StageParse    = "parse"
)

// Collector bundles the Prometheus metrics of the pipeline and the HTTP
// surface. A nil *Collector records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Documents         *prometheus.CounterVec
	SatelliteFailures *prometheus.CounterVec
	PlanRecords       *prometheus.GaugeVec
	LocationMatches   *prometheus.GaugeVec
	TablesWritten     prometheus.Counter
	LoadDuration      prometheus.Histogram
	HTTPRequests      *prometheus.CounterVec
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Registering twice against one registry reuses the
// existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	documents, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "acqplan_documents_total",
		Help: "Plan documents brought into the cache, labeled by satellite and result.",
	}, []string{"satellite", "result"}), "acqplan_documents_total")
	if err != nil {
		return nil, err
	}
	failures, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "acqplan_satellite_failures_total",
		Help: "Satellites skipped for a run, labeled by satellite and stage.",
	}, []string{"satellite", "stage"}), "acqplan_satellite_failures_total")
	if err != nil {
		return nil, err
	}
	records, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "acqplan_records",
		Help: "Records parsed from the latest plan document of each satellite.",
	}, []string{"satellite"}), "acqplan_records")
	if err != nil {
		return nil, err
	}
	matches, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "acqplan_location_matches",
		Help: "Planned acquisitions covering each configured location.",
	}, []string{"location"}), "acqplan_location_matches")
	if err != nil {
		return nil, err
	}
	tables, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "acqplan_tables_written_total",
		Help: "Location tables written to disk.",
	}), "acqplan_tables_written_total")
	if err != nil {
		return nil, err
	}
	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "acqplan_load_duration_seconds",
		Help:    "Time to resolve, fetch and parse every satellite's plan.",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}), "acqplan_load_duration_seconds")
	if err != nil {
		return nil, err
	}
	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "acqplan_http_requests_total",
		Help: "Handled HTTP requests, labeled by route and status code.",
	}, []string{"route", "code"}), "acqplan_http_requests_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:          gatherer,
		Documents:         documents,
		SatelliteFailures: failures,
		PlanRecords:       records,
		LocationMatches:   matches,
		TablesWritten:     tables,
		LoadDuration:      duration,
		HTTPRequests:      requests,
	}, nil
}

// DocumentFetched records how a satellite's document was obtained
func (c *Collector) DocumentFetched(satellite, result string) {
	if c == nil {
		return
	}
	c.Documents.WithLabelValues(satellite, result).Inc()
}

// SatelliteFailed records a satellite skipped at the given stage
func (c *Collector) SatelliteFailed(satellite, stage string) {
	if c == nil {
		return
	}
	c.SatelliteFailures.WithLabelValues(satellite, stage).Inc()
}

// SetPlanRecords records the size of a satellite's parsed plan
func (c *Collector) SetPlanRecords(satellite string, n int) {
	if c == nil {
		return
	}
	c.PlanRecords.WithLabelValues(satellite).Set(float64(n))
}

// SetLocationMatches records the number of matches for a location
func (c *Collector) SetLocationMatches(location string, n int) {
	if c == nil {
		return
	}
	c.LocationMatches.WithLabelValues(location).Set(float64(n))
}

// TableWritten counts one table written to disk
func (c *Collector) TableWritten() {
	if c == nil {
		return
	}
	c.TablesWritten.Inc()
}

// ObserveLoad records the duration of one load since start
func (c *Collector) ObserveLoad(start time.Time) {
	if c == nil {
		return
	}
	c.LoadDuration.Observe(time.Since(start).Seconds())
}

// RequestHandled counts one HTTP response
func (c *Collector) RequestHandled(route string, code int) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(route, fmt.Sprintf("%d", code)).Inc()
}

// Handler exposes a ready-to-use /metrics handler
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, histogram prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(histogram); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return histogram, nil
}
