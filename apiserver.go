// Copyright 2024 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
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
	"os/signal"
	"sync"
	"syscall"
	"time"

	"depforest/cnf"
	"depforest/frames"
	"depforest/handlers"
	"depforest/monitoring"
	"depforest/openapi"
	"depforest/rdb"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type apiServer struct {
	server     *http.Server
	conf       *cnf.Conf
	radapter   *rdb.Adapter
	vocabs     *frames.Registry
	jobLogger  *monitoring.WorkerJobLogger
	versionInf handlers.VersionInfo
}

func (api *apiServer) Start(ctx context.Context) {
	if !api.conf.IsDebugMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(additionalLogEvents())
	engine.Use(logging.GinMiddleware())
	engine.Use(uniresp.AlwaysJSONContentType())
	engine.Use(CORSMiddleware(api.conf))
	engine.NoMethod(uniresp.NoMethodHandler)
	engine.NoRoute(uniresp.NotFoundHandler)

	protected := engine.Group("/").Use(AuthRequired(api.conf))

	actions := handlers.NewActions(api.radapter, api.vocabs, api.conf.DefaultVocabulary)

	engine.GET("/", handlers.MkServerInfo(api.versionInf, api.conf.PublicURL))

	engine.GET("/openapi", openapi.MkHandleRequest(api.conf.PublicURL, api.versionInf.Version))

	protected.POST(
		"/forest", actions.Forest)

	protected.POST(
		"/match", actions.Match)

	engine.GET(
		"/pattern", actions.Pattern)

	engine.GET(
		"/frames/:senseId", actions.Frame)

	engine.GET(
		"/vocabularies", actions.Vocabularies)

	monActions := monitoring.NewActions(api.jobLogger)

	engine.GET(
		"/monitoring/workers-load", monActions.WorkersLoad)

	engine.GET(
		"/monitoring/workers-load/:workerId", monActions.WorkerLoad)

	engine.GET(
		"/monitoring/recent-records", monActions.RecentRecords)

	log.Info().Msgf("starting to listen at %s:%d", api.conf.ListenAddress, api.conf.ListenPort)
	api.server = &http.Server{
		Handler:      engine,
		Addr:         fmt.Sprintf("%s:%d", api.conf.ListenAddress, api.conf.ListenPort),
		WriteTimeout: time.Duration(api.conf.ServerWriteTimeoutSecs) * time.Second,
		ReadTimeout:  time.Duration(api.conf.ServerReadTimeoutSecs) * time.Second,
	}
	go func() {
		if err := api.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()
}

func (api *apiServer) Stop(ctx context.Context) error {
	log.Warn().Msg("shutting down DEPFOREST HTTP API server")
	return api.server.Shutdown(ctx)
}

// runServices starts all the services and waits for SIGINT/SIGTERM
// to stop them gracefully
func runServices(ctx context.Context, services []service) {
	for _, m := range services {
		m.Start(ctx)
	}
	<-ctx.Done()
	log.Warn().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for _, s := range services {
		wg.Add(1)
		go func(srv service) {
			defer wg.Done()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Error().Err(err).Type("service", srv).Msg("Error shutting down service")
			}
		}(s)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("Graceful shutdown completed")
	case <-shutdownCtx.Done():
		log.Warn().Msg("Shutdown timed out")
	}
}

func runApiServer(conf *cnf.Conf) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	radapter := rdb.NewAdapter(conf.Redis, ctx)
	if err := radapter.TestConnection(redisConnectionTestTimeout); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer radapter.Close()

	services := make([]service, 0, 4)
	var statusWriter monitoring.StatusWriter
	if conf.Monitoring != nil {
		tsWriter, err := monitoring.NewTimescaleDBWriter(ctx, conf.Monitoring.DB, conf.TimezoneLocation())
		if err != nil {
			return fmt.Errorf("failed to initialize monitoring storage: %w", err)
		}
		statusWriter = tsWriter
		services = append(services, tsWriter)

	} else {
		log.Warn().Msg("monitoring storage not configured, job logs will be kept in memory only")
	}
	jobLogger := monitoring.NewWorkerJobLogger(statusWriter, conf.TimezoneLocation())
	jobLogger.Consume(ctx, radapter.SubscribeJobLogs())
	services = append(services, jobLogger)

	server := &apiServer{
		conf:       conf,
		radapter:   radapter,
		vocabs:     frames.NewRegistry(conf.Vocabularies),
		jobLogger:  jobLogger,
		versionInf: getVersionInfo(),
	}
	services = append(services, server)
	runServices(ctx, services)
	return nil
}
