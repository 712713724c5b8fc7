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

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/pipeline"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/server"
	"github.com/mzwsInJjq/sentinel-2-acquisition-map/util"
	cli "gopkg.in/urfave/cli.v1"
)

func serveAction(c *cli.Context) error {
	logContext := &(util.BasicLogContext{})
	cfg, collector, err := setup()
	if err != nil {
		return err
	}

	store := server.NewPlanStore(pipeline.New(cfg, collector))
	util.LogInfo(logContext, fmt.Sprintf("Starting acquisition plan refresh loop every %v", cfg.RefreshInterval))
	go store.RefreshOnTicker(context.Background(), cfg.RefreshInterval)

	router := server.NewRouter(store, cfg.Locations, collector)
	if err := launchServerFunc(cfg.PortString(), router); err != nil {
		return cli.NewExitError(util.LogSimpleErr(logContext, "Server stopped: ", err).Error(), 1)
	}
	return nil
}

var launchServerFunc = launchServer

func launchServer(portStr string, router *mux.Router) error {
	server := http.Server{
		Addr:    portStr,
		Handler: router,
	}

	return server.ListenAndServe()
}
