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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"depforest/results"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	records []results.JobLog
}

func (rw *recordingWriter) Write(rec results.JobLog) {
	rw.records = append(rw.records, rec)
}

func jobLog(worker string, begin time.Time, secs int, errMsg string) results.JobLog {
	return results.JobLog{
		WorkerID: worker,
		Func:     "forest",
		Begin:    begin,
		End:      begin.Add(time.Duration(secs) * time.Second),
		Err:      errMsg,
	}
}

func TestWorkerJobLoggerTotals(t *testing.T) {
	writer := &recordingWriter{}
	logger := NewWorkerJobLogger(writer, time.UTC)
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	logger.Log(jobLog("w1", t0, 2, ""))
	logger.Log(jobLog("w2", t0.Add(time.Second), 3, "failed"))
	logger.Log(jobLog("w1", t0.Add(10*time.Second), 5, ""))

	total := logger.TotalLoad()
	assert.Equal(t, 3, total.NumJobs)
	assert.Equal(t, 1, total.NumErrors)
	assert.Equal(t, 2, total.NumWorkers)
	assert.InDelta(t, 10.0, total.TotalTimeSecs, 0.001)
	assert.Equal(t, t0, total.FirstUpdate)
	assert.Equal(t, t0.Add(15*time.Second), total.LastUpdate)
	assert.Len(t, writer.records, 3)

	w1, err := logger.TotalWorkerLoad("w1")
	require.NoError(t, err)
	assert.Equal(t, 2, w1.NumJobs)
	assert.InDelta(t, 7.0, w1.TotalTimeSecs, 0.001)
	_, err = logger.TotalWorkerLoad("w3")
	assert.ErrorIs(t, err, ErrWorkerNotFound)
}

func TestWorkerJobLoggerRecent(t *testing.T) {
	logger := NewWorkerJobLogger(nil, time.UTC)
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < recentLogSize+20; i++ {
		logger.Log(jobLog("w1", t0.Add(time.Duration(i)*time.Second), 1, ""))
	}
	recent := logger.RecentLoad()
	assert.LessOrEqual(t, recent.NumJobs, recentLogSize)
	assert.Greater(t, recent.NumJobs, 0)
	assert.Equal(t, 1, recent.NumWorkers)
	assert.Len(t, logger.RecentRecords(), recent.NumJobs)
	assert.Equal(t, recentLogSize+20, logger.TotalLoad().NumJobs)
}

func TestWorkerJobLoggerCleanup(t *testing.T) {
	logger := NewWorkerJobLogger(nil, time.UTC)
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	logger.Log(jobLog("w1", t0, 1, ""))
	logger.Log(jobLog("w2", t0.Add(20*time.Hour), 1, ""))
	logger.cleanup(t0.Add(StaleWorkerLoadTTL + time.Hour))
	_, err := logger.TotalWorkerLoad("w1")
	assert.ErrorIs(t, err, ErrWorkerNotFound)
	_, err = logger.TotalWorkerLoad("w2")
	assert.NoError(t, err)
}

func TestWorkerJobLoggerConsume(t *testing.T) {
	logger := NewWorkerJobLogger(nil, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := make(chan results.JobLog)
	logger.Consume(ctx, ch)
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ch <- jobLog("w1", t0, 1, "")
	ch <- jobLog("w1", t0, 1, "")
	close(ch)
	assert.Eventually(
		t,
		func() bool { return logger.TotalLoad().NumJobs == 2 },
		time.Second,
		10*time.Millisecond,
	)
}

func TestWorkerLoadAvgLoadAndJSON(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	load := WorkerLoad{
		NumJobs:       4,
		TotalTimeSecs: 50,
		FirstUpdate:   t0,
		LastUpdate:    t0.Add(100 * time.Second),
		NumWorkers:    1,
	}
	assert.InDelta(t, 0.5, load.AvgLoad(), 0.0001)
	assert.Equal(t, 0.0, WorkerLoad{}.AvgLoad())

	data, err := json.Marshal(load)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 4.0, decoded["numJobs"])
	assert.InDelta(t, 0.5, decoded["avgLoad"], 0.0001)

	data, err = json.Marshal(WorkerLoad{})
	require.NoError(t, err)
	decoded = nil
	require.NoError(t, json.Unmarshal(data, &decoded))
	_, ok := decoded["firstUpdate"]
	assert.False(t, ok)
}

func TestActionsWorkersLoad(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := NewWorkerJobLogger(nil, time.UTC)
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	logger.Log(jobLog("w1", t0, 1, ""))
	actions := NewActions(logger)
	engine := gin.New()
	engine.GET("/load", actions.WorkersLoad)
	engine.GET("/load/:workerId", actions.WorkerLoad)
	engine.GET("/records", actions.RecentRecords)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/load?span=total", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, 1.0, decoded["numJobs"])

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/load?span=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/load/w9", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	logger.Log(jobLog("w2", t0.Add(time.Second), 1, ""))
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records?limit=1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var records []results.JobLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "w2", records[0].WorkerID)

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
