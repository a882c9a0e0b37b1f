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

package results

import (
	"errors"
	"time"

	"github.com/bytedance/sonic"
)

const (
	ResultTypeForest ResultType = "forest"
	ResultTypeMatch  ResultType = "match"
	ResultTypeError  ResultType = "error"
)

type ResultType string

func (rt ResultType) String() string {
	return string(rt)
}

// SerializableResult is a result of a worker job
// which can be sent back to the API server.
type SerializableResult interface {
	Err() error
	Type() ResultType
}

// ----------------

// JobLog describes a single job processed by a worker
type JobLog struct {
	WorkerID string    `json:"workerId"`
	Func     string    `json:"func"`
	Begin    time.Time `json:"begin"`
	End      time.Time `json:"end"`
	Err      string    `json:"error,omitempty"`
	Cached   bool      `json:"cached,omitempty"`
}

func (jl JobLog) TimeSpent() time.Duration {
	return jl.End.Sub(jl.Begin)
}

func (jl JobLog) HasError() bool {
	return jl.Err != ""
}

func (jl *JobLog) ToJSON() (string, error) {
	ans, err := sonic.Marshal(jl)
	if err != nil {
		return "", err
	}
	return string(ans), nil
}

func DecodeJobLog(data string) (JobLog, error) {
	var ans JobLog
	err := sonic.Unmarshal([]byte(data), &ans)
	return ans, err
}

// ----------------

type ErrorResult struct {
	Func  string `json:"func"`
	Error string `json:"error"`
}

func (res *ErrorResult) Err() error {
	if res.Error != "" {
		return errors.New(res.Error)
	}
	return nil
}

func (res *ErrorResult) Type() ResultType {
	return ResultTypeError
}
