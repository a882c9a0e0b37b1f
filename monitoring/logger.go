// Copyright 2024 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//   This file is part of DEPFOREST.
//
//  DEPFOREST is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  DEPFOREST is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with DEPFOREST.  If not, see <https://www.gnu.org/licenses/>.

package monitoring

import (
	"context"
	"errors"
	"sync"
	"time"

	"depforest/results"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/rs/zerolog/log"
)

const (
	StaleWorkerLoadTTL = time.Hour * 24
	cleanupInterval    = 10 * time.Minute
	recentLogSize      = 100
)

var (
	ErrWorkerNotFound = errors.New("worker not found")
)

// WorkerJobLogger collects job logs of all the workers
// and provides load statistics.
type WorkerJobLogger struct {
	loadData     WorkersLoad
	recentLog    *collections.CircularList[results.JobLog]
	dataLock     sync.RWMutex
	tz           *time.Location
	statusWriter StatusWriter
}

func (w *WorkerJobLogger) Log(rec results.JobLog) {
	w.dataLock.Lock()
	defer w.dataLock.Unlock()

	entry, ok := w.loadData[rec.WorkerID]
	if !ok {
		entry.FirstUpdate = rec.Begin
		entry.NumWorkers = 1
	}
	entry.add(rec)
	entry.LastUpdate = rec.End
	w.loadData[rec.WorkerID] = entry
	w.recentLog.Append(rec)
	w.statusWriter.Write(rec)
}

func (w *WorkerJobLogger) TotalLoad() WorkerLoad {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	return w.loadData.SumLoad(w.tz)
}

func (w *WorkerJobLogger) RecentLoad() WorkerLoad {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	var ans WorkerLoad
	workers := collections.NewSet[string]()
	w.recentLog.ForEach(func(i int, item results.JobLog) bool {
		workers.Add(item.WorkerID)
		if i == 0 {
			ans.FirstUpdate = item.Begin
		}
		ans.LastUpdate = item.End
		ans.add(item)
		return true
	})
	ans.NumWorkers = workers.Size()
	return ans
}

func (w *WorkerJobLogger) RecentRecords() []results.JobLog {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	ans := make([]results.JobLog, 0, recentLogSize)
	w.recentLog.ForEach(func(i int, item results.JobLog) bool {
		ans = append(ans, item)
		return true
	})
	return ans
}

func (w *WorkerJobLogger) TotalWorkerLoad(workerID string) (WorkerLoad, error) {
	w.dataLock.RLock()
	defer w.dataLock.RUnlock()
	ans, ok := w.loadData[workerID]
	if !ok {
		return ans, ErrWorkerNotFound
	}
	return ans, nil
}

func (w *WorkerJobLogger) cleanup(now time.Time) {
	w.dataLock.Lock()
	defer w.dataLock.Unlock()
	w.loadData.cleanOldRecords(now)
}

// Consume logs all the records from the provided channel
// until the channel is closed or the context is done.
func (w *WorkerJobLogger) Consume(ctx context.Context, records <-chan results.JobLog) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case rec, ok := <-records:
				if !ok {
					return
				}
				w.Log(rec)
			}
		}
	}()
}

func (w *WorkerJobLogger) Start(ctx context.Context) {
	log.Info().Msg("starting worker job logger")
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("requesting worker job logger stop")
				return
			case <-ticker.C:
				w.cleanup(time.Now())
			}
		}
	}()
}

func (w *WorkerJobLogger) Stop(ctx context.Context) error {
	log.Info().Msg("shutting down worker job logger")
	return nil
}

func NewWorkerJobLogger(
	statusWriter StatusWriter,
	tz *time.Location,
) *WorkerJobLogger {
	if statusWriter == nil {
		statusWriter = &NullStatusWriter{}
	}
	return &WorkerJobLogger{
		loadData:     make(WorkersLoad),
		recentLog:    collections.NewCircularList[results.JobLog](recentLogSize),
		statusWriter: statusWriter,
		tz:           tz,
	}
}
