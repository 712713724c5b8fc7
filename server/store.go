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
	"fmt"
	"sync"
	"time"

	"github.com/mzwsInJjq/sentinel-2-acquisition-map/coverage"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/model"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/pipeline"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/util"
)

// Loader produces a fresh set of plans
type Loader interface {
	Load(ctx context.Context) (*pipeline.LoadResult, error)
}

// PlanStore holds the most recently loaded plans for the HTTP handlers.
// Each refresh swaps in a new immutable index; readers never see a
// partially loaded state.
type PlanStore struct {
	loader  Loader
	context util.LogContext

	// requests buffers at most one pending forced refresh
	requests chan struct{}

	mu       sync.RWMutex
	index    *coverage.Index
	loadedAt time.Time
	last     *pipeline.LoadResult
}

// NewPlanStore creates an empty store backed by loader
func NewPlanStore(loader Loader) *PlanStore {
	return &PlanStore{
		loader:   loader,
		context:  &util.BasicLogContext{},
		requests: make(chan struct{}, 1),
	}
}

// Refresh reloads the plans. On failure the previous plans stay in place.
func (s *PlanStore) Refresh(ctx context.Context) error {
	start := time.Now()
	result, err := s.loader.Load(ctx)
	if err != nil {
		return err
	}
	index := coverage.NewIndex(result.Sets)

	s.mu.Lock()
	s.index = index
	s.loadedAt = time.Now()
	s.last = result
	s.mu.Unlock()

	util.LogAudit(s.context, util.LogAuditInput{
		Actor: util.AppName, Action: "refresh", Actee: "plan store",
		Message:  fmt.Sprintf("Loaded %d footprints; duration: %fs", index.Len(), time.Since(start).Seconds()),
		Severity: util.INFO,
	})
	return nil
}

// RefreshOnTicker refreshes immediately, then every d and whenever a refresh
// is requested, until ctx is done. Errors are logged, never fatal.
func (s *PlanStore) RefreshOnTicker(ctx context.Context, d time.Duration) {
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		if err := s.Refresh(ctx); err != nil {
			util.LogAlert(s.context, "Failed to refresh acquisition plans: "+err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.requests:
		}
	}
}

// RequestRefresh asks the refresh loop for an early refresh. It returns
// false when a request is already pending.
func (s *PlanStore) RequestRefresh() bool {
	select {
	case s.requests <- struct{}{}:
		return true
	default:
		return false
	}
}

// Status summarizes the last successful load
type Status struct {
	Ready      bool              `json:"ready"`
	LoadedAt   *time.Time        `json:"loadedAt,omitempty"`
	RunID      string            `json:"runId,omitempty"`
	Footprints int               `json:"footprints"`
	Satellites []SatelliteStatus `json:"satellites"`
}

// SatelliteStatus is the JSON form of one satellite's load outcome
type SatelliteStatus struct {
	Satellite  string `json:"satellite"`
	DocumentID string `json:"documentId,omitempty"`
	Records    int    `json:"records"`
	Stage      string `json:"failedStage,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Status reports the state of the store
func (s *PlanStore) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{Ready: s.index != nil, Satellites: []SatelliteStatus{}}
	if s.index == nil {
		return status
	}
	loadedAt := s.loadedAt
	status.LoadedAt = &loadedAt
	status.Footprints = s.index.Len()
	if s.last != nil {
		status.RunID = s.last.RunID
		for _, sat := range s.last.Statuses {
			entry := SatelliteStatus{Satellite: sat.Satellite, DocumentID: sat.DocumentID, Records: sat.Records, Stage: sat.Stage}
			if sat.Err != nil {
				entry.Error = sat.Err.Error()
			}
			status.Satellites = append(status.Satellites, entry)
		}
	}
	return status
}

// Query runs a containment query against the current plans. ok is false
// until the first load has succeeded.
func (s *PlanStore) Query(pt model.Point) (matches model.MatchSet, ok bool) {
	s.mu.RLock()
	index := s.index
	s.mu.RUnlock()
	if index == nil {
		return nil, false
	}
	return index.Query(pt), true
}
