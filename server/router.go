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
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/metrics"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/util"
)

// NewRouter creates the HTTP surface over a plan store
func NewRouter(store *PlanStore, locations []util.Location, collector *metrics.Collector) *mux.Router {
	ctx := &util.BasicLogContext{}
	router := mux.NewRouter()
	router.Use(instrument(collector))

	router.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte("OK"))
	})
	router.Handle("/acquisitions", AcquisitionsHandler{Store: store, Context: ctx}).Methods(http.MethodGet)
	router.Handle("/locations/{code}", LocationHandler{Store: store, Locations: locations, Context: ctx}).Methods(http.MethodGet)
	router.Handle("/status", StatusHandler{Store: store}).Methods(http.MethodGet)
	router.Handle("/refresh", RefreshHandler{Store: store, Context: ctx}).Methods(http.MethodPost)
	router.Handle("/metrics", collector.Handler())

	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func instrument(collector *metrics.Collector) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			route := "unknown"
			if current := mux.CurrentRoute(r); current != nil {
				if template, err := current.GetPathTemplate(); err == nil {
					route = template
				}
			}
			collector.RequestHandled(route, recorder.status)
		})
	}
}
