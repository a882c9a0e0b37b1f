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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"depforest/merror"
	"depforest/results"

	"github.com/bytedance/sonic"
)

// WorkerResult is an envelope for a job result as it is passed
// from a worker to the API server.
type WorkerResult struct {
	ID           string             `json:"id"`
	ResultType   results.ResultType `json:"resultType"`
	Value        json.RawMessage    `json:"value"`
	HasUserError bool               `json:"hasUserError"`
	TimedOut     bool               `json:"timedOut"`
	ProcBegin    time.Time          `json:"procBegin"`
	ProcEnd      time.Time          `json:"procEnd"`
}

// AttachValue serializes a job result into the envelope
func (wr *WorkerResult) AttachValue(value results.SerializableResult) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to attach worker result value: %w", err)
	}
	wr.ResultType = value.Type()
	wr.Value = data
	return nil
}

// DecodeValue deserializes the envelope value into `dst` which
// must be a pointer to the type matching the result type.
func (wr *WorkerResult) DecodeValue(dst results.SerializableResult) error {
	if wr.ResultType != dst.Type() {
		return fmt.Errorf(
			"unexpected worker result type %s (expected %s)", wr.ResultType, dst.Type())
	}
	if err := sonic.Unmarshal(wr.Value, dst); err != nil {
		return fmt.Errorf("failed to decode worker result value: %w", err)
	}
	return nil
}

// Err returns an error in case the envelope contains
// an error result or a result with error set.
func (wr *WorkerResult) Err() error {
	if wr.ResultType == results.ResultTypeError {
		var errRes results.ErrorResult
		if err := sonic.Unmarshal(wr.Value, &errRes); err != nil {
			return fmt.Errorf("failed to decode worker error: %w", err)
		}
		if errRes.Error == "" {
			return errors.New("unspecified worker error")
		}
		return errRes.Err()
	}
	var generic struct {
		Error string `json:"error"`
	}
	if err := sonic.Unmarshal(wr.Value, &generic); err != nil {
		return fmt.Errorf("failed to decode worker result: %w", err)
	}
	if generic.Error != "" {
		return errors.New(generic.Error)
	}
	return nil
}

// TypedErr returns the same error as Err but restores its kind
// from the envelope flags so the error can be classified again
// after it went through Redis.
func (wr *WorkerResult) TypedErr() error {
	err := wr.Err()
	switch {
	case err == nil:
		return nil
	case wr.HasUserError:
		return merror.InputError{Msg: err.Error()}
	case wr.TimedOut:
		return merror.TimeoutError{Msg: err.Error()}
	default:
		return err
	}
}

func (wr *WorkerResult) ToJSON() (string, error) {
	ans, err := sonic.Marshal(wr)
	if err != nil {
		return "", fmt.Errorf("failed to serialize worker result: %w", err)
	}
	return string(ans), nil
}

func DecodeWorkerResult(data string) (*WorkerResult, error) {
	ans := new(WorkerResult)
	if err := sonic.Unmarshal([]byte(data), ans); err != nil {
		return nil, fmt.Errorf("failed to deserialize worker result: %w", err)
	}
	return ans, nil
}

// CreateWorkerResult wraps a job result into a new envelope
func CreateWorkerResult(value results.SerializableResult, userError bool) (*WorkerResult, error) {
	ans := &WorkerResult{HasUserError: userError}
	if err := ans.AttachValue(value); err != nil {
		return nil, err
	}
	return ans, nil
}

// NewErrorResult creates an envelope with an error result. Unlike
// CreateWorkerResult, it cannot fail.
func NewErrorResult(fn string, err error, userError bool) *WorkerResult {
	errRes := &results.ErrorResult{Func: fn, Error: err.Error()}
	data, mErr := sonic.Marshal(errRes)
	if mErr != nil {
		data = []byte(fmt.Sprintf(`{"func":%q,"error":%q}`, fn, err.Error()))
	}
	return &WorkerResult{
		ResultType:   results.ResultTypeError,
		Value:        data,
		HasUserError: userError,
	}
}
