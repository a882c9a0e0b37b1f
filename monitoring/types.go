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
	"time"

	"depforest/results"

	"github.com/bytedance/sonic"
)

// WorkerLoad contains accumulated job statistics
// of one or more workers.
type WorkerLoad struct {
	NumJobs       int
	NumCached     int
	TotalTimeSecs float64
	NumErrors     int
	FirstUpdate   time.Time
	LastUpdate    time.Time
	NumWorkers    int
}

func (wl *WorkerLoad) add(rec results.JobLog) {
	wl.NumJobs++
	if rec.HasError() {
		wl.NumErrors++
	}
	if rec.Cached {
		wl.NumCached++
	}
	wl.TotalTimeSecs += rec.TimeSpent().Seconds()
}

// TotalSpan returns time span covered by the load info
func (wl WorkerLoad) TotalSpan() time.Duration {
	return wl.LastUpdate.Sub(wl.FirstUpdate)
}

// AvgLoad returns a ratio of time spent by processing
// jobs to the total time span (per worker).
func (wl WorkerLoad) AvgLoad() float64 {
	span := wl.TotalSpan().Seconds()
	if wl.TotalTimeSecs == 0 || span <= 0 || wl.NumWorkers == 0 {
		return 0
	}
	return wl.TotalTimeSecs / span / float64(wl.NumWorkers)
}

func (wl WorkerLoad) MarshalJSON() ([]byte, error) {
	var t0, t1 *time.Time
	if !wl.FirstUpdate.IsZero() {
		t0 = &wl.FirstUpdate
	}
	if !wl.LastUpdate.IsZero() {
		t1 = &wl.LastUpdate
	}
	return sonic.Marshal(
		struct {
			NumJobs       int        `json:"numJobs"`
			NumCached     int        `json:"numCached"`
			TotalTimeSecs float64    `json:"totalTimeSecs"`
			NumErrors     int        `json:"numErrors"`
			FirstUpdate   *time.Time `json:"firstUpdate,omitempty"`
			LastUpdate    *time.Time `json:"lastUpdate,omitempty"`
			NumWorkers    int        `json:"numWorkers"`
			AvgLoad       float64    `json:"avgLoad"`
		}{
			NumJobs:       wl.NumJobs,
			NumCached:     wl.NumCached,
			TotalTimeSecs: wl.TotalTimeSecs,
			NumErrors:     wl.NumErrors,
			FirstUpdate:   t0,
			LastUpdate:    t1,
			NumWorkers:    wl.NumWorkers,
			AvgLoad:       wl.AvgLoad(),
		},
	)
}

// ---

// WorkersLoad maps worker IDs to their loads
type WorkersLoad map[string]WorkerLoad

// SumLoad merges loads of all the workers
func (wl WorkersLoad) SumLoad(tz *time.Location) WorkerLoad {
	var ans WorkerLoad
	for _, v := range wl {
		ans.NumJobs += v.NumJobs
		ans.NumCached += v.NumCached
		ans.NumErrors += v.NumErrors
		ans.TotalTimeSecs += v.TotalTimeSecs
		if ans.FirstUpdate.IsZero() || v.FirstUpdate.Before(ans.FirstUpdate) {
			ans.FirstUpdate = v.FirstUpdate
		}
		if v.LastUpdate.After(ans.LastUpdate) {
			ans.LastUpdate = v.LastUpdate
		}
		ans.NumWorkers++
	}
	if !ans.FirstUpdate.IsZero() {
		ans.FirstUpdate = ans.FirstUpdate.In(tz)
		ans.LastUpdate = ans.LastUpdate.In(tz)
	}
	return ans
}

// cleanOldRecords removes workers which have not
// reported anything for StaleWorkerLoadTTL
func (wl WorkersLoad) cleanOldRecords(now time.Time) {
	for k, v := range wl {
		if now.Sub(v.LastUpdate) > StaleWorkerLoadTTL {
			delete(wl, k)
		}
	}
}
