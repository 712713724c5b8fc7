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
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/model"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/tsvexport"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/util"
)

const (
	contentTypeTSV     = "text/tab-separated-values; charset=utf-8"
	contentTypeGeoJSON = "application/geo+json"
)

// AcquisitionsHandler is a handler for /acquisitions
// @Title acquisitionsHandler
// @Description lists the planned acquisitions observing a point
// @Accept  plain
// @Param   lat     query   number  true   "Latitude of the point, -90 to 90"
// @Param   lon     query   number  true   "Longitude of the point, -180 to 180"
// @Param   format  query   string  false  "tsv (default) or geojson"
// @Success 200 {object}  string
// @Failure 400 {object}  util.HTTPErr
// @Failure 503 {object}  util.HTTPErr
// @Router /acquisitions [get]
type AcquisitionsHandler struct {
	Store   *PlanStore
	Context util.LogContext
}

// ServeHTTP implements the http.Handler interface for the AcquisitionsHandler type
func (h AcquisitionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	lat, err := parseCoordinate(r.FormValue("lat"), 90)
	if err != nil {
		util.HTTPError(r, w, h.Context, fmt.Sprintf("The lat value of %v is invalid", r.FormValue("lat")), http.StatusBadRequest)
		return
	}
	lon, err := parseCoordinate(r.FormValue("lon"), 180)
	if err != nil {
		util.HTTPError(r, w, h.Context, fmt.Sprintf("The lon value of %v is invalid", r.FormValue("lon")), http.StatusBadRequest)
		return
	}
	respond(w, r, h.Store, h.Context, model.Point{Lat: lat, Lon: lon})
}

// LocationHandler is a handler for /locations/{code}
// @Title locationHandler
// @Description lists the planned acquisitions observing a configured location
// @Accept  plain
// @Param   code    path    string  true   "Location code, e.g. sea"
// @Param   format  query   string  false  "tsv (default) or geojson"
// @Success 200 {object}  string
// @Failure 404 {object}  util.HTTPErr
// @Failure 503 {object}  util.HTTPErr
// @Router /locations/{code} [get]
type LocationHandler struct {
	Store     *PlanStore
	Locations []util.Location
	Context   util.LogContext
}

// ServeHTTP implements the http.Handler interface for the LocationHandler type
func (h LocationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	for _, loc := range h.Locations {
		if loc.Code == code {
			respond(w, r, h.Store, h.Context, model.Point{Lat: loc.Lat, Lon: loc.Lon})
			return
		}
	}
	util.HTTPError(r, w, h.Context, fmt.Sprintf("No location with code %s", code), http.StatusNotFound)
}

// StatusHandler is a handler for /status
// @Title statusHandler
// @Description reports when plans were last loaded and how each satellite fared
// @Success 200 {object}  server.Status
// @Router /status [get]
type StatusHandler struct {
	Store *PlanStore
}

// ServeHTTP implements the http.Handler interface for the StatusHandler type
func (h StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bytes, _ := json.Marshal(h.Store.Status())
	w.Header().Set("Content-Type", "application/json")
	w.Write(bytes)
}

// RefreshHandler is a handler for /refresh
// @Title refreshHandler
// @Description asks for the plans to be reloaded ahead of schedule
// @Success 202 {object}  string
// @Failure 429 {object}  util.HTTPErr
// @Router /refresh [post]
type RefreshHandler struct {
	Store   *PlanStore
	Context util.LogContext
}

// ServeHTTP implements the http.Handler interface for the RefreshHandler type
func (h RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.Store.RequestRefresh() {
		util.HTTPError(r, w, h.Context, "A refresh is already pending", http.StatusTooManyRequests)
		return
	}
	util.LogAudit(h.Context, util.LogAuditInput{Actor: "anon user", Action: r.Method, Actee: r.URL.String(), Message: "Refresh requested", Severity: util.INFO})
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte("Refresh request submitted."))
}

func parseCoordinate(raw string, limit float64) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || value < -limit || value > limit {
		return 0, fmt.Errorf("%v is outside [-%v, %v]", value, limit, limit)
	}
	return value, nil
}

func respond(w http.ResponseWriter, r *http.Request, store *PlanStore, ctx util.LogContext, pt model.Point) {
	matches, ok := store.Query(pt)
	if !ok {
		util.HTTPError(r, w, ctx, "Acquisition plans are not loaded yet", http.StatusServiceUnavailable)
		return
	}

	switch r.FormValue("format") {
	case "", "tsv":
		w.Header().Set("Content-Type", contentTypeTSV)
		if err := tsvexport.NewTable(matches.Records()).Encode(w); err != nil {
			util.LogSimpleErr(ctx, "Error writing table response: ", err)
		}
	case "geojson":
		fc, err := matches.GeoJSONFeatureCollection()
		if err != nil {
			message := fmt.Sprintf("Error converting to feature collection: %v", err)
			util.LogSimpleErr(ctx, message, err)
			util.HTTPError(r, w, ctx, message, http.StatusInternalServerError)
			return
		}
		bytes, err := json.Marshal(fc)
		if err != nil {
			message := fmt.Sprintf("Error encoding feature collection: %v", err)
			util.LogSimpleErr(ctx, message, err)
			util.HTTPError(r, w, ctx, message, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentTypeGeoJSON)
		w.Write(bytes)
	default:
		util.HTTPError(r, w, ctx, fmt.Sprintf("Unknown format %s", r.FormValue("format")), http.StatusBadRequest)
	}
}
