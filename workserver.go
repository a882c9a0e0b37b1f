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
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"depforest/cnf"
	"depforest/frames"
	"depforest/rdb"
	"depforest/worker"

	"github.com/rs/zerolog/log"
)

func getWorkerID() (workerID string) {
	workerID = getEnv("WORKER_ID")
	if workerID == "" {
		workerID = strconv.Itoa(os.Getpid())
	}
	return
}

func runWorker(conf *cnf.Conf) error {
	workerID := getWorkerID()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	radapter := rdb.NewAdapter(conf.Redis, ctx)
	if err := radapter.TestConnection(redisConnectionTestTimeout); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer radapter.Close()
	if !radapter.CacheEnabled() {
		log.Info().Msg("result cache disabled")
	}

	vocabs := frames.NewRegistry(conf.Vocabularies)
	pool := worker.NewPool(conf.NumParserWorkers)
	log.Info().Int("numParserWorkers", pool.NumWorkers()).Msg("parser pool ready")

	ch := radapter.Subscribe()
	wrk := worker.NewWorker(
		workerID,
		radapter,
		ch,
		vocabs,
		worker.NewProcessor(pool),
		radapter,
	)
	runServices(ctx, []service{wrk})
	return nil
}
