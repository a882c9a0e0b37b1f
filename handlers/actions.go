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

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"depforest/frames"
	"depforest/merror"
	"depforest/pattern"
	"depforest/rdb"
	"depforest/results"
	"depforest/worker"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type queryPublisher interface {
	PublishQuery(query rdb.Query) (<-chan *rdb.WorkerResult, error)
}

type vocabRegistry interface {
	Names() []string
	Get(name string) (*frames.Vocabulary, error)
	Frame(vocabName, senseID string) (frames.Frame, bool, error)
}

type frameInfo struct {
	Vocabulary string        `json:"vocabulary"`
	SenseID    string        `json:"senseId"`
	Known      bool          `json:"known"`
	Frame      *frames.Frame `json:"frame,omitempty"`
}

type patternInfo struct {
	Pattern        string `json:"pattern"`
	Root           string `json:"root"`
	RootIsWildcard bool   `json:"rootIsWildcard"`
}

type Actions struct {
	publisher         queryPublisher
	vocabs            vocabRegistry
	defaultVocabulary string
}

// vocabularyArg returns a vocabulary name specified by the `vocab`
// URL argument. Empty string means no vocabulary restriction.
func (a *Actions) vocabularyArg(ctx *gin.Context) (string, bool) {
	vocab := ctx.DefaultQuery("vocab", a.defaultVocabulary)
	if vocab == frames.AcceptAllFingerprint {
		return "", true
	}
	if vocab != "" && !collections.SliceContains(a.vocabs.Names(), vocab) {
		uniresp.RespondWithErrorJSON(
			ctx,
			fmt.Errorf("unknown vocabulary `%s`", vocab),
			http.StatusNotFound,
		)
		return "", false
	}
	return vocab, true
}

func (a *Actions) inputArg(ctx *gin.Context) (string, bool) {
	input, err := results.ValidateInput(ctx.Query("input"))
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return "", false
	}
	return input, true
}

func (a *Actions) readData(ctx *gin.Context) (string, bool) {
	data, err := ctx.GetRawData()
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return "", false
	}
	if len(data) == 0 {
		uniresp.RespondWithErrorJSON(
			ctx, errors.New("empty request body"), http.StatusBadRequest)
		return "", false
	}
	return string(data), true
}

// runQuery publishes a query and waits for the result. In case of
// an error, the error response is written and nil is returned.
func (a *Actions) runQuery(ctx *gin.Context, fn string, args any) *rdb.WorkerResult {
	query, err := rdb.NewQuery(fn, args)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionErrorFrom(err),
			http.StatusInternalServerError,
		)
		return nil
	}
	wait, err := a.publisher.PublishQuery(query)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionErrorFrom(err),
			http.StatusInternalServerError,
		)
		return nil
	}
	rawResult := <-wait
	if rawResult == nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionErrorFrom(errors.New("no result received")),
			http.StatusInternalServerError,
		)
		return nil
	}
	if ok := HandleWorkerError(ctx, rawResult); !ok {
		return nil
	}
	return rawResult
}

// HandleWorkerError writes an error response in case the worker
// result contains an error. It returns true if the result is OK.
func HandleWorkerError(ctx *gin.Context, result *rdb.WorkerResult) bool {
	err := result.TypedErr()
	if err == nil {
		return true
	}
	status := merror.HTTPStatus(err)
	log.Debug().Err(err).Int("status", status).Msg("worker returned an error")
	uniresp.WriteJSONErrorResponse(
		ctx.Writer,
		uniresp.NewActionErrorFrom(err),
		status,
	)
	return false
}

// Forest parses CoNLL-2008 data sent in the request body and returns
// exported trees.
func (a *Actions) Forest(ctx *gin.Context) {
	format, err := results.ValidateFormat(ctx.Query("format"))
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusBadRequest)
		return
	}
	input, ok := a.inputArg(ctx)
	if !ok {
		return
	}
	vocab, ok := a.vocabularyArg(ctx)
	if !ok {
		return
	}
	data, ok := a.readData(ctx)
	if !ok {
		return
	}
	rawResult := a.runQuery(
		ctx,
		worker.FuncForest,
		worker.ForestArgs{Data: data, Input: input, Format: format, Vocabulary: vocab},
	)
	if rawResult == nil {
		return
	}
	var result results.ForestResult
	if err := rawResult.DecodeValue(&result); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, &result)
}

// Match searches for nodes satisfying a tree pattern in CoNLL-2008
// data sent in the request body.
func (a *Actions) Match(ctx *gin.Context) {
	q := ctx.Query("q")
	if q == "" {
		uniresp.RespondWithErrorJSON(
			ctx, errors.New("missing `q` argument"), http.StatusBadRequest)
		return
	}
	// syntax errors are reported here without bothering workers
	if _, err := pattern.Compile(q); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusUnprocessableEntity)
		return
	}
	input, ok := a.inputArg(ctx)
	if !ok {
		return
	}
	vocab, ok := a.vocabularyArg(ctx)
	if !ok {
		return
	}
	data, ok := a.readData(ctx)
	if !ok {
		return
	}
	rawResult := a.runQuery(
		ctx,
		worker.FuncMatch,
		worker.MatchArgs{Data: data, Input: input, Pattern: q, Vocabulary: vocab},
	)
	if rawResult == nil {
		return
	}
	var result results.MatchResult
	if err := rawResult.DecodeValue(&result); err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, &result)
}

// Pattern compiles a pattern and returns its canonical form
func (a *Actions) Pattern(ctx *gin.Context) {
	q := ctx.Query("q")
	if q == "" {
		uniresp.RespondWithErrorJSON(
			ctx, errors.New("missing `q` argument"), http.StatusBadRequest)
		return
	}
	patt, err := pattern.Compile(q)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusUnprocessableEntity)
		return
	}
	uniresp.WriteJSONResponse(
		ctx.Writer,
		patternInfo{
			Pattern:        patt.String(),
			Root:           patt.Root,
			RootIsWildcard: patt.RootIsWildcard(),
		},
	)
}

// Frame tells whether a predicate sense belongs to a vocabulary
// and provides its roleset description if available.
func (a *Actions) Frame(ctx *gin.Context) {
	vocabName, ok := a.vocabularyArg(ctx)
	if !ok {
		return
	}
	if vocabName == "" {
		uniresp.RespondWithErrorJSON(
			ctx, errors.New("missing `vocab` argument"), http.StatusBadRequest)
		return
	}
	senseID := ctx.Param("senseId")
	vocab, err := a.vocabs.Get(vocabName)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	ans := frameInfo{
		Vocabulary: vocabName,
		SenseID:    senseID,
		Known:      vocab.Contains(senseID),
	}
	frame, ok, err := a.vocabs.Frame(vocabName, senseID)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	if ok {
		ans.Frame = &frame
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

// Vocabularies lists configured vocabularies
func (a *Actions) Vocabularies(ctx *gin.Context) {
	uniresp.WriteJSONResponse(
		ctx.Writer,
		map[string]any{
			"vocabularies": a.vocabs.Names(),
			"default":      a.defaultVocabulary,
		},
	)
}

func NewActions(
	publisher queryPublisher,
	vocabs vocabRegistry,
	defaultVocabulary string,
) *Actions {
	return &Actions{
		publisher:         publisher,
		vocabs:            vocabs,
		defaultVocabulary: defaultVocabulary,
	}
}
