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
	"fmt"
	"net/http"

	"github.com/czcorpus/cnc-gokit/unireq"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

type timeSpan string

func (ts timeSpan) Validate() error {
	if ts != spanTypeRecent && ts != spanTypeTotal {
		return fmt.Errorf("unknown time span `%s`", ts)
	}
	return nil
}

const (
	spanTypeRecent timeSpan = "recent"
	spanTypeTotal  timeSpan = "total"
)

type Actions struct {
	logger *WorkerJobLogger
}

func (a *Actions) WorkersLoad(ctx *gin.Context) {
	span := timeSpan(ctx.DefaultQuery("span", string(spanTypeRecent)))
	if err := span.Validate(); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	if span == spanTypeRecent {
		uniresp.WriteJSONResponse(ctx.Writer, a.logger.RecentLoad())
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, a.logger.TotalLoad())
}

func (a *Actions) WorkerLoad(ctx *gin.Context) {
	load, err := a.logger.TotalWorkerLoad(ctx.Param("workerId"))
	if err == ErrWorkerNotFound {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusNotFound)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, load)
}

// RecentRecords returns recent job logs. The optional `limit`
// argument selects only the newest records.
func (a *Actions) RecentRecords(ctx *gin.Context) {
	limit, ok := unireq.GetURLIntArgOrFail(ctx, "limit", 0)
	if !ok {
		return
	}
	if limit < 0 {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("invalid limit %d", limit), http.StatusBadRequest)
		return
	}
	recs := a.logger.RecentRecords()
	if limit > 0 && limit < len(recs) {
		recs = recs[len(recs)-limit:]
	}
	uniresp.WriteJSONResponse(ctx.Writer, recs)
}

func NewActions(logger *WorkerJobLogger) *Actions {
	return &Actions{logger: logger}
}
