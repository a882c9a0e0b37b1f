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

package worker

import (
	"context"
	"strings"
	"testing"

	"depforest/frames"
	"depforest/rdb"
	"depforest/results"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conll08Line(fields ...string) string {
	return strings.Join(fields, "\t")
}

var haagData = strings.Join([]string{
	conll08Line("1", "Ms.", "ms.", "NNP", "_", "_", "_", "NNP", "2", "TITLE", "_", "_"),
	conll08Line("2", "Haag", "haag", "NNP", "_", "_", "_", "NNP", "3", "SBJ", "_", "A0"),
	conll08Line("3", "plays", "play", "VBZ", "_", "_", "_", "VBZ", "0", "ROOT", "play.02", "_"),
	conll08Line("4", "Elianti", "elianti", "NNP", "_", "_", "_", "NNP", "3", "OBJ", "_", "A1"),
	conll08Line("5", ".", ".", ".", "_", "_", "_", ".", "3", "P", "_", "_"),
	"",
	conll08Line("1", "Kids", "kid", "NNS", "_", "_", "_", "NNS", "2", "SBJ", "_"),
	conll08Line("2", "play", "play", "VBP", "_", "_", "_", "VBP", "2", "ROOT", "_"),
	"",
}, "\n")

// ---------------------

type fakeAdapter struct {
	queue        []rdb.Query
	noListeners  bool
	published    map[string]*rdb.WorkerResult
	cache        map[string]*rdb.WorkerResult
	panicOnCache bool
}

func (fa *fakeAdapter) DequeueQuery() (rdb.Query, error) {
	if len(fa.queue) == 0 {
		return rdb.Query{}, rdb.ErrorEmptyQueue
	}
	ans := fa.queue[0]
	fa.queue = fa.queue[1:]
	return ans, nil
}

func (fa *fakeAdapter) SomeoneListens(query rdb.Query) (bool, error) {
	return !fa.noListeners, nil
}

func (fa *fakeAdapter) PublishResult(channelName string, value *rdb.WorkerResult) error {
	fa.published[channelName] = value
	return nil
}

func (fa *fakeAdapter) GetCachedResult(key string) (*rdb.WorkerResult, bool, error) {
	if fa.panicOnCache {
		panic("cache exploded")
	}
	v, ok := fa.cache[key]
	return v, ok, nil
}

func (fa *fakeAdapter) StoreCachedResult(key string, value *rdb.WorkerResult) error {
	fa.cache[key] = value
	return nil
}

func (fa *fakeAdapter) enqueue(t *testing.T, channel, fn string, args any) {
	q, err := rdb.NewQuery(fn, args)
	require.NoError(t, err)
	q.Channel = channel
	fa.queue = append(fa.queue, q)
}

type fakeJobLogger struct {
	records []results.JobLog
}

func (fl *fakeJobLogger) Log(rec results.JobLog) {
	fl.records = append(fl.records, rec)
}

func newTestWorker() (*Worker, *fakeAdapter, *fakeJobLogger) {
	adapter := &fakeAdapter{
		published: make(map[string]*rdb.WorkerResult),
		cache:     make(map[string]*rdb.WorkerResult),
	}
	reg := frames.NewRegistry(nil)
	reg.Set("pb", frames.NewVocabulary([]string{"play.02"}))
	reg.Set("empty", frames.NewVocabulary(nil))
	logger := &fakeJobLogger{}
	w := NewWorker("w1", adapter, nil, reg, NewProcessor(NewPool(2)), logger)
	return w, adapter, logger
}

// ---------------------

func TestWorkerForestJob(t *testing.T) {
	w, adapter, logger := newTestWorker()
	adapter.enqueue(t, "ch1", FuncForest, ForestArgs{Data: haagData, Vocabulary: "pb"})
	require.NoError(t, w.tryNextQuery(context.Background()))

	wr, ok := adapter.published["ch1"]
	require.True(t, ok)
	assert.Equal(t, "ch1", wr.ID)
	assert.False(t, wr.HasUserError)
	var res results.ForestResult
	require.NoError(t, wr.DecodeValue(&res))
	assert.Equal(t, results.FormatTable, res.Format)
	require.Len(t, res.Sentences, 2)
	assert.Equal(t, 1, res.NumFailed)
	assert.Len(t, res.Sentences[0].Table, 5)
	assert.Equal(t, "play.02", res.Sentences[0].Table[2].Pred)
	assert.Equal(t, []string{"play.02"}, res.Sentences[0].Report.Retained)
	assert.NotEmpty(t, res.Sentences[1].Error)

	require.Len(t, logger.records, 1)
	assert.Equal(t, "w1", logger.records[0].WorkerID)
	assert.Equal(t, FuncForest, logger.records[0].Func)
	assert.False(t, logger.records[0].HasError())
	assert.False(t, logger.records[0].Cached)
}

func TestWorkerForestJobFilteredVocabulary(t *testing.T) {
	w, adapter, _ := newTestWorker()
	adapter.enqueue(t, "ch1", FuncForest, ForestArgs{Data: haagData, Vocabulary: "empty", Format: "words"})
	require.NoError(t, w.tryNextQuery(context.Background()))
	var res results.ForestResult
	require.NoError(t, adapter.published["ch1"].DecodeValue(&res))
	assert.Equal(t, []string{"Ms.", "Haag", "plays", "Elianti", "."}, res.Sentences[0].Words)
	assert.Equal(t, []string{"play.02"}, res.Sentences[0].Report.Dropped)
}

func TestWorkerMatchJob(t *testing.T) {
	w, adapter, _ := newTestWorker()
	adapter.enqueue(t, "ch2", FuncMatch, MatchArgs{Data: haagData, Pattern: "SBJ|ROOT|*"})
	require.NoError(t, w.tryNextQuery(context.Background()))
	var res results.MatchResult
	require.NoError(t, adapter.published["ch2"].DecodeValue(&res))
	assert.Equal(t, "( SBJ | ROOT | * )", res.Pattern)
	assert.Equal(t, 1, res.NumMatches)
	require.Len(t, res.Sentences[0].Matches, 1)
	m := res.Sentences[0].Matches[0]
	assert.Equal(t, 3, m.Position)
	assert.Equal(t, "plays", m.Form)
	assert.Equal(t, "Ms. Haag plays Elianti .", m.Subtree)
}

func TestWorkerMatchJobInvalidPattern(t *testing.T) {
	w, adapter, logger := newTestWorker()
	adapter.enqueue(t, "ch2", FuncMatch, MatchArgs{Data: haagData, Pattern: "( a | b"})
	require.NoError(t, w.tryNextQuery(context.Background()))
	wr := adapter.published["ch2"]
	assert.True(t, wr.HasUserError)
	assert.Error(t, wr.Err())
	assert.True(t, logger.records[0].HasError())
	assert.Empty(t, adapter.cache)
}

func TestWorkerUnknownVocabulary(t *testing.T) {
	w, adapter, _ := newTestWorker()
	adapter.enqueue(t, "ch3", FuncForest, ForestArgs{Data: haagData, Vocabulary: "nb"})
	require.NoError(t, w.tryNextQuery(context.Background()))
	wr := adapter.published["ch3"]
	assert.Equal(t, results.ResultTypeError, wr.ResultType)
	assert.True(t, wr.HasUserError)
	assert.Contains(t, wr.Err().Error(), "unknown vocabulary")
}

func TestWorkerUnknownFunction(t *testing.T) {
	w, adapter, _ := newTestWorker()
	adapter.enqueue(t, "ch4", "translate", ForestArgs{})
	require.NoError(t, w.tryNextQuery(context.Background()))
	wr := adapter.published["ch4"]
	assert.Equal(t, results.ResultTypeError, wr.ResultType)
	assert.Contains(t, wr.Err().Error(), "unknown query function")
}

func TestWorkerRecoversPanic(t *testing.T) {
	w, adapter, logger := newTestWorker()
	adapter.panicOnCache = true
	adapter.enqueue(t, "ch5", FuncForest, ForestArgs{Data: haagData})
	require.NoError(t, w.tryNextQuery(context.Background()))
	wr := adapter.published["ch5"]
	assert.Equal(t, results.ResultTypeError, wr.ResultType)
	assert.False(t, wr.HasUserError)
	assert.Contains(t, wr.Err().Error(), "cache exploded")
	assert.True(t, logger.records[0].HasError())
}

func TestWorkerSkipsInactiveQuery(t *testing.T) {
	w, adapter, logger := newTestWorker()
	adapter.noListeners = true
	adapter.enqueue(t, "ch6", FuncForest, ForestArgs{Data: haagData})
	require.NoError(t, w.tryNextQuery(context.Background()))
	assert.Empty(t, adapter.published)
	assert.Empty(t, logger.records)
	assert.Empty(t, adapter.queue)
}

func TestWorkerEmptyQueue(t *testing.T) {
	w, adapter, _ := newTestWorker()
	assert.NoError(t, w.tryNextQuery(context.Background()))
	assert.Empty(t, adapter.published)
}

func TestWorkerUsesCache(t *testing.T) {
	w, adapter, logger := newTestWorker()
	adapter.enqueue(t, "ch7", FuncForest, ForestArgs{Data: haagData, Vocabulary: "pb"})
	adapter.enqueue(t, "ch8", FuncForest, ForestArgs{Data: haagData, Vocabulary: "pb"})
	adapter.enqueue(t, "ch9", FuncForest, ForestArgs{Data: haagData, Vocabulary: "empty"})
	for i := 0; i < 3; i++ {
		require.NoError(t, w.tryNextQuery(context.Background()))
	}
	assert.Len(t, adapter.cache, 2)
	require.Len(t, logger.records, 3)
	assert.False(t, logger.records[0].Cached)
	assert.True(t, logger.records[1].Cached)
	assert.False(t, logger.records[2].Cached)
	assert.Equal(t, "ch8", adapter.published["ch8"].ID)
}

func TestWorkerDoesNotCacheFailedJobs(t *testing.T) {
	w, adapter, logger := newTestWorker()
	adapter.enqueue(t, "ch10", FuncForest, ForestArgs{Data: haagData, Format: "xml"})
	adapter.enqueue(t, "ch11", FuncForest, ForestArgs{Data: haagData, Format: "xml"})
	for i := 0; i < 2; i++ {
		require.NoError(t, w.tryNextQuery(context.Background()))
	}
	assert.Empty(t, adapter.cache)
	require.Len(t, logger.records, 2)
	assert.False(t, logger.records[0].Cached)
	assert.False(t, logger.records[1].Cached)
	assert.True(t, logger.records[1].HasError())
	assert.True(t, adapter.published["ch11"].HasUserError)
}
