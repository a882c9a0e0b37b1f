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
	"errors"
	"fmt"
	"math/rand"
	"time"

	"depforest/dtree"
	"depforest/merror"
	"depforest/rdb"
	"depforest/results"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTickerInterval = 2 * time.Second
)

type queueAdapter interface {
	DequeueQuery() (rdb.Query, error)
	SomeoneListens(query rdb.Query) (bool, error)
	PublishResult(channelName string, value *rdb.WorkerResult) error
	GetCachedResult(key string) (*rdb.WorkerResult, bool, error)
	StoreCachedResult(key string, value *rdb.WorkerResult) error
}

type jobLogger interface {
	Log(rec results.JobLog)
}

type recoveredError struct {
	error
}

type Worker struct {
	ID         string
	messages   <-chan *redis.Message
	radapter   queueAdapter
	vocabs     vocabProvider
	processor  *Processor
	jobLogger  jobLogger
	currJobLog *results.JobLog
	done       chan struct{}
}

// runCached runs a job operation unless its result is already
// cached. The vocabulary is resolved first as its fingerprint
// is a part of the cache key.
func (w *Worker) runCached(
	query rdb.Query,
	vocabName string,
	fn func(vocab dtree.Vocabulary) (results.SerializableResult, error),
) (*rdb.WorkerResult, error) {
	vocab, fingerprint, err := ResolveVocabulary(w.vocabs, vocabName)
	if err != nil {
		return rdb.NewErrorResult(query.Func, err, merror.IsUserError(err)), nil
	}
	key := rdb.CacheKey(query.Func, query.Args, fingerprint)
	cached, ok, err := w.radapter.GetCachedResult(key)
	if err != nil {
		log.Error().Err(err).Msg("failed to read result cache, ignoring")

	} else if ok {
		w.currJobLog.Cached = true
		return cached, nil
	}
	res, jobErr := fn(vocab)
	ans, err := rdb.CreateWorkerResult(res, merror.IsUserError(jobErr))
	if err != nil {
		return nil, err
	}
	if jobErr == nil {
		if err := w.radapter.StoreCachedResult(key, ans); err != nil {
			log.Error().Err(err).Msg("failed to store result to cache, ignoring")
		}
	}
	return ans, nil
}

func (w *Worker) runQueryProtected(ctx context.Context, query rdb.Query) (ans *rdb.WorkerResult, ansErr error) {
	defer func() {
		if r := recover(); r != nil {
			ansErr = recoveredError{merror.RecoveredError{Msg: merror.PanicValueToErr(r).Error()}}
			return
		}
	}()
	switch query.Func {
	case FuncForest:
		var args ForestArgs
		if err := query.DecodeArgs(&args); err != nil {
			return rdb.NewErrorResult(query.Func, err, true), nil
		}
		return w.runCached(query, args.Vocabulary, func(vocab dtree.Vocabulary) (results.SerializableResult, error) {
			return w.processor.Forest(ctx, args, vocab)
		})
	case FuncMatch:
		var args MatchArgs
		if err := query.DecodeArgs(&args); err != nil {
			return rdb.NewErrorResult(query.Func, err, true), nil
		}
		return w.runCached(query, args.Vocabulary, func(vocab dtree.Vocabulary) (results.SerializableResult, error) {
			return w.processor.Match(ctx, args, vocab)
		})
	default:
		return rdb.NewErrorResult(
			query.Func,
			merror.NewInputError("unknown query function: %s", query.Func),
			true,
		), nil
	}
}

func (w *Worker) tryNextQuery(ctx context.Context) error {
	query, err := w.radapter.DequeueQuery()
	if err == rdb.ErrorEmptyQueue {
		return nil

	} else if err != nil {
		return err
	}
	log.Debug().
		Str("channel", query.Channel).
		Str("func", query.Func).
		Msg("received query")

	isActive, err := w.radapter.SomeoneListens(query)
	if err != nil {
		return err
	}
	if !isActive {
		log.Warn().
			Str("func", query.Func).
			Str("channel", query.Channel).
			Msg("worker found an inactive query")
		return nil
	}

	w.currJobLog = &results.JobLog{
		WorkerID: w.ID,
		Func:     query.Func,
		Begin:    time.Now(),
	}
	ans, err := w.runQueryProtected(ctx, query)
	var rcvErr recoveredError
	if errors.As(err, &rcvErr) {
		log.Error().Err(rcvErr).Str("func", query.Func).Msg("worker panicked")
		ans = rdb.NewErrorResult(query.Func, fmt.Errorf("worker panicked: %w", rcvErr.error), false)

	} else if err != nil {
		ans = rdb.NewErrorResult(query.Func, err, false)
	}
	ans.ID = query.Channel
	ans.ProcBegin = w.currJobLog.Begin
	ans.ProcEnd = time.Now()

	w.currJobLog.End = ans.ProcEnd
	if err := ans.Err(); err != nil {
		w.currJobLog.Err = err.Error()
	}
	w.jobLogger.Log(*w.currJobLog)
	w.currJobLog = nil
	return w.radapter.PublishResult(query.Channel, ans)
}

// Listen processes queries until the context is cancelled. New queries
// are announced via messages but the queue is also checked periodically
// in case some announcement was missed.
func (w *Worker) Listen(ctx context.Context) {
	ticker := time.NewTicker(DefaultTickerInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := w.tryNextQuery(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process query")
			}
		case <-ctx.Done():
			log.Info().Msg("worker exiting")
			return
		case msg, ok := <-w.messages:
			if !ok {
				log.Warn().Msg("query announcements channel closed, worker exiting")
				return
			}
			if msg.Payload == rdb.MsgNewQuery {
				// multiple workers compete for the same query
				time.Sleep(time.Duration(rand.Intn(40)) * time.Millisecond)
				if err := w.tryNextQuery(ctx); err != nil {
					log.Error().Err(err).Msg("failed to process query")
				}
			}
		}
	}
}

func (w *Worker) Start(ctx context.Context) {
	log.Info().Str("workerId", w.ID).Msg("starting worker")
	go func() {
		w.Listen(ctx)
		close(w.done)
	}()
}

func (w *Worker) Stop(ctx context.Context) error {
	log.Warn().Str("workerId", w.ID).Msg("shutting down worker")
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to stop worker %s: %w", w.ID, ctx.Err())
	}
}

func NewWorker(
	workerID string,
	radapter queueAdapter,
	messages <-chan *redis.Message,
	vocabs vocabProvider,
	processor *Processor,
	jobLogger jobLogger,
) *Worker {
	return &Worker{
		ID:        workerID,
		radapter:  radapter,
		messages:  messages,
		vocabs:    vocabs,
		processor: processor,
		jobLogger: jobLogger,
		done:      make(chan struct{}),
	}
}
