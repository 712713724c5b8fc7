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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mzwsInJjq/sentinel-2-acquisition-map/acqplan"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/catalog"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/kmlcache"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/metrics"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/model"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/util"
	"golang.org/x/sync/errgroup"
)

// Resolver maps satellites to their latest plan document
type Resolver interface {
	Resolve(ctx context.Context, satellites []string) (map[string]string, error)
}

// DocumentCache brings plan documents to local disk
type DocumentCache interface {
	EnsureLocal(ctx context.Context, satellite, documentID string) (string, bool, error)
}

// PlanParser reads a local plan document
type PlanParser interface {
	ParseFile(path, satellite, layerCode string) ([]model.AcquisitionPlanRecord, error)
}

// Pipeline loads every tracked satellite's plan. Satellites are processed
// concurrently and independently: one satellite failing never stops another.
type Pipeline struct {
	Satellites []string
	Resolver   Resolver
	Cache      DocumentCache
	Parser     PlanParser
	Metrics    *metrics.Collector
}

// New wires a pipeline from configuration
func New(cfg *util.Config, collector *metrics.Collector) *Pipeline {
	client := util.HTTPClient(cfg.HTTPTimeout)
	return &Pipeline{
		Satellites: cfg.Satellites,
		Resolver:   catalog.NewResolver(cfg.IndexURL, client, cfg.FetchAttempts),
		Cache:      kmlcache.New(cfg.OutputDir, cfg.DocumentBaseURL, client, cfg.FetchAttempts),
		Parser:     acqplan.NewParser(),
		Metrics:    collector,
	}
}

// SatelliteStatus is the outcome of loading one satellite. Stage names the
// step that failed, and is empty on success.
type SatelliteStatus struct {
	Satellite  string
	DocumentID string
	Downloaded bool
	Records    int
	Stage      string
	Err        error
}

// LoadResult holds the plan sets that loaded, in configured satellite order
type LoadResult struct {
	RunID     string
	Sets      []model.PlanSet
	Statuses  []SatelliteStatus
	StartTime time.Time
	EndTime   time.Time
}

func (r *LoadResult) String() string {
	loaded, failed := 0, 0
	for _, status := range r.Statuses {
		if status.Err == nil {
			loaded++
		} else {
			failed++
		}
	}
	return fmt.Sprintf(`
		Run:	%v
		Start:	%v
		End:	%v
		#Loaded:	%v
		#Skipped:	%v
		`,
		r.RunID,
		r.StartTime.Format("Mon Jan _2 15:04:05 2006"),
		r.EndTime.Format("Mon Jan _2 15:04:05 2006"),
		loaded,
		failed)
}

// Load resolves, fetches and parses each satellite's latest plan. Only a
// failure to read the index is returned as an error; every per-satellite
// failure is logged, counted and reported in the statuses.
func (p *Pipeline) Load(ctx context.Context) (*LoadResult, error) {
	runID, _ := util.PsuUUID()
	logCtx := util.NewLogContext(runID)
	result := &LoadResult{RunID: runID, StartTime: time.Now()}
	defer p.Metrics.ObserveLoad(result.StartTime)

	documentIDs, err := p.Resolver.Resolve(ctx, p.Satellites)
	if err != nil {
		return nil, util.LogSimpleErr(logCtx, "Error fetching the acquisition plans index: ", err)
	}

	sets := make([]*model.PlanSet, len(p.Satellites))
	statuses := make([]SatelliteStatus, len(p.Satellites))

	var group errgroup.Group
	group.SetLimit(len(p.Satellites))
	for i, satellite := range p.Satellites {
		i, satellite := i, satellite
		documentID, found := documentIDs[satellite]
		if !found {
			statuses[i] = SatelliteStatus{Satellite: satellite, Stage: metrics.StageResolve, Err: fmt.Errorf("no plan document listed for %s", satellite)}
			p.Metrics.SatelliteFailed(satellite, metrics.StageResolve)
			util.LogAlert(logCtx, statuses[i].Err.Error())
			continue
		}
		group.Go(func() error {
			sets[i], statuses[i] = p.loadSatellite(ctx, logCtx, satellite, documentID)
			return nil
		})
	}
	group.Wait()

	for _, set := range sets {
		if set != nil {
			result.Sets = append(result.Sets, *set)
		}
	}
	result.Statuses = statuses
	result.EndTime = time.Now()
	util.LogInfo(logCtx, "Plan load complete: "+result.String())
	return result, nil
}

func (p *Pipeline) loadSatellite(ctx context.Context, logCtx util.LogContext, satellite, documentID string) (*model.PlanSet, SatelliteStatus) {
	status := SatelliteStatus{Satellite: satellite, DocumentID: documentID}

	path, downloaded, err := p.Cache.EnsureLocal(ctx, satellite, documentID)
	if err != nil {
		status.Stage = metrics.StageDownload
		status.Err = skipError(satellite, status.Stage, err).Log(logCtx, "Skipping "+satellite)
		p.Metrics.DocumentFetched(satellite, metrics.ResultFailed)
		p.Metrics.SatelliteFailed(satellite, metrics.StageDownload)
		return nil, status
	}
	status.Downloaded = downloaded
	if downloaded {
		p.Metrics.DocumentFetched(satellite, metrics.ResultDownloaded)
	} else {
		p.Metrics.DocumentFetched(satellite, metrics.ResultCached)
	}

	layerCode := catalog.LayerCode(documentID, satellite)
	records, err := p.Parser.ParseFile(path, satellite, layerCode)
	if err != nil {
		status.Stage = metrics.StageParse
		status.Err = skipError(satellite, status.Stage, err).Log(logCtx, "Error reading plan from "+path)
		p.Metrics.SatelliteFailed(satellite, metrics.StageParse)
		return nil, status
	}

	status.Records = len(records)
	p.Metrics.SetPlanRecords(satellite, len(records))
	util.LogInfo(logCtx, fmt.Sprintf("Loaded %s plan with %d records.", satellite, len(records)))
	return &model.PlanSet{Satellite: satellite, DocumentID: documentID, Layer: layerCode, Records: records}, status
}

// skipError describes a satellite dropped from the run. Fetch failures carry
// the URL and status code of the failed response.
func skipError(satellite, stage string, err error) *util.Error {
	skipped := &util.Error{
		LogMsg:    fmt.Sprintf("%s skipped at %s stage: %v", satellite, stage, err),
		SimpleMsg: err.Error(),
		Cause:     err,
	}
	var statusErr *util.StatusError
	if errors.As(err, &statusErr) {
		skipped.URL = statusErr.URL
		skipped.HTTPStatus = statusErr.StatusCode
	}
	return skipped
}
