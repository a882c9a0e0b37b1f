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

package rdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"depforest/merror"
	"depforest/results"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	MsgNewQuery                = "newQuery"
	DefaultQueueKey            = "depforestQueue"
	DefaultResultChannelPrefix = "depforestResults"
	DefaultQueryChannel        = "depforestQueries"
	DefaultJobLogChannel       = "depforestJobLog"
	DefaultResultExpiration    = 10 * time.Minute

	connectionTestInterval = 2 * time.Second
)

var (
	ErrorEmptyQueue = errors.New("no queries in the queue")
)

// Query is a job description sent to workers
type Query struct {
	Channel string          `json:"channel"`
	Func    string          `json:"func"`
	Args    json.RawMessage `json:"args"`
}

func (q Query) ToJSON() (string, error) {
	ans, err := sonic.Marshal(q)
	if err != nil {
		return "", err
	}
	return string(ans), nil
}

// DecodeArgs deserializes query arguments into `dst`
func (q Query) DecodeArgs(dst any) error {
	if err := sonic.Unmarshal(q.Args, dst); err != nil {
		return merror.NewInputError("invalid arguments of %s: %s", q.Func, err)
	}
	return nil
}

func DecodeQuery(q string) (Query, error) {
	var ans Query
	err := sonic.Unmarshal([]byte(q), &ans)
	return ans, err
}

// NewQuery creates a query with serialized arguments. The result
// channel is set once the query is published.
func NewQuery(fn string, args any) (Query, error) {
	data, err := sonic.Marshal(args)
	if err != nil {
		return Query{}, fmt.Errorf("failed to create query %s: %w", fn, err)
	}
	return Query{Func: fn, Args: data}, nil
}

// Adapter provides all the Redis operations of both
// the API server and the workers.
type Adapter struct {
	ctx  context.Context
	c    *redis.Client
	conf *Conf
}

// TestConnection repeatedly pings Redis until it answers
// or the timeout elapses.
func (a *Adapter) TestConnection(timeout time.Duration) error {
	tick := time.NewTicker(connectionTestInterval)
	defer tick.Stop()
	timeoutCh := time.After(timeout)
	for {
		select {
		case <-timeoutCh:
			return fmt.Errorf("failed to connect to Redis at %s: timeout", a.conf.ServerInfo())
		case <-a.ctx.Done():
			return fmt.Errorf("failed to connect to Redis at %s: %w", a.conf.ServerInfo(), a.ctx.Err())
		case <-tick.C:
			err := a.c.Ping(a.ctx).Err()
			if err == nil {
				log.Info().Str("server", a.conf.ServerInfo()).Msg("connected to Redis")
				return nil
			}
			log.Warn().Err(err).Str("server", a.conf.ServerInfo()).Msg("Redis not available yet")
		}
	}
}

func (a *Adapter) SomeoneListens(query Query) (bool, error) {
	cmd := a.c.PubSubNumSub(a.ctx, query.Channel)
	if cmd.Err() != nil {
		return false, fmt.Errorf("failed to check channel listeners: %w", cmd.Err())
	}
	return cmd.Val()[query.Channel] > 0, nil
}

func (a *Adapter) fetchResult(channel string) *WorkerResult {
	cmd := a.c.Get(a.ctx, channel)
	if cmd.Err() != nil {
		return NewErrorResult("", fmt.Errorf("failed to fetch worker result: %w", cmd.Err()), false)
	}
	ans, err := DecodeWorkerResult(cmd.Val())
	if err != nil {
		return NewErrorResult("", err, false)
	}
	return ans
}

// PublishQuery publishes a new query and returns a channel
// the result will be sent to. The result channel is subscribed
// before the query is enqueued so no answer can be missed.
func (a *Adapter) PublishQuery(query Query) (<-chan *WorkerResult, error) {
	query.Channel = fmt.Sprintf("%s:%s", a.conf.ChannelResultPrefix, uuid.New().String())
	log.Debug().
		Str("channel", query.Channel).
		Str("func", query.Func).
		Msg("publishing query")

	msg, err := query.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to publish query: %w", err)
	}
	sub := a.c.Subscribe(a.ctx, query.Channel)
	if _, err := sub.Receive(a.ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe result channel: %w", err)
	}
	if err := a.c.LPush(a.ctx, a.conf.QueueKey, msg).Err(); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to enqueue query: %w", err)
	}
	ans := make(chan *WorkerResult, 1)
	go func() {
		defer close(ans)
		defer sub.Close()
		timeout := time.NewTimer(a.conf.QueryAnswerTimeout())
		defer timeout.Stop()
		select {
		case item := <-sub.Channel():
			ans <- a.fetchResult(item.Payload)
		case <-timeout.C:
			res := NewErrorResult(
				query.Func,
				merror.TimeoutError{Msg: "no worker answered the query in time"},
				false,
			)
			res.TimedOut = true
			ans <- res
		case <-a.ctx.Done():
			ans <- NewErrorResult(query.Func, a.ctx.Err(), false)
		}
	}()
	return ans, a.c.Publish(a.ctx, a.conf.ChannelQuery, MsgNewQuery).Err()
}

func (a *Adapter) DequeueQuery() (Query, error) {
	cmd := a.c.RPop(a.ctx, a.conf.QueueKey)
	if cmd.Err() == redis.Nil {
		return Query{}, ErrorEmptyQueue

	} else if cmd.Err() != nil {
		return Query{}, fmt.Errorf("failed to dequeue query: %w", cmd.Err())
	}
	q, err := DecodeQuery(cmd.Val())
	if err != nil {
		return Query{}, fmt.Errorf("failed to deserialize query: %w", err)
	}
	return q, nil
}

func (a *Adapter) PublishResult(channelName string, value *WorkerResult) error {
	log.Debug().
		Str("channel", channelName).
		Str("resultType", value.ResultType.String()).
		Msg("publishing result")
	data, err := value.ToJSON()
	if err != nil {
		return err
	}
	if err := a.c.Set(a.ctx, channelName, data, DefaultResultExpiration).Err(); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return a.c.Publish(a.ctx, channelName, channelName).Err()
}

// Subscribe subscribes the channel announcing new queries
func (a *Adapter) Subscribe() <-chan *redis.Message {
	sub := a.c.Subscribe(a.ctx, a.conf.ChannelQuery)
	return sub.Channel()
}

// Log publishes a worker job log record so the API server
// can gather statistics of all the workers.
func (a *Adapter) Log(rec results.JobLog) {
	data, err := rec.ToJSON()
	if err != nil {
		log.Error().Err(err).Msg("failed to serialize job log")
		return
	}
	if err := a.c.Publish(a.ctx, a.conf.ChannelJobLog, data).Err(); err != nil {
		log.Error().Err(err).Msg("failed to publish job log")
	}
}

// SubscribeJobLogs returns a channel with job log records
// published by workers. The channel is closed once the adapter's
// context is done.
func (a *Adapter) SubscribeJobLogs() <-chan results.JobLog {
	sub := a.c.Subscribe(a.ctx, a.conf.ChannelJobLog)
	ans := make(chan results.JobLog)
	go func() {
		defer close(ans)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-a.ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				rec, err := results.DecodeJobLog(msg.Payload)
				if err != nil {
					log.Error().Err(err).Msg("failed to decode job log")
					continue
				}
				select {
				case ans <- rec:
				case <-a.ctx.Done():
					return
				}
			}
		}
	}()
	return ans
}

func (a *Adapter) Close() error {
	return a.c.Close()
}

func NewAdapter(conf *Conf, ctx context.Context) *Adapter {
	return &Adapter{
		c: redis.NewClient(&redis.Options{
			Addr:     conf.ServerInfo(),
			Password: conf.Password,
			DB:       conf.DB,
		}),
		ctx:  ctx,
		conf: conf,
	}
}
