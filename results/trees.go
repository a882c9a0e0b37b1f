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
	"fmt"

	"depforest/dtree"
)

const (
	FormatTable   = "table"
	FormatColumns = "columns"
	FormatWords   = "words"
)

// ValidateFormat tests whether the provided export format is supported.
// An empty value is replaced by the table format.
func ValidateFormat(format string) (string, error) {
	switch format {
	case "":
		return FormatTable, nil
	case FormatTable, FormatColumns, FormatWords:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported export format `%s`", format)
	}
}

const (
	InputCoNLL08 = "conll08"
	InputTable   = "table"
)

// ValidateInput tests whether the input data format is supported.
// An empty value stands for CoNLL-2008.
func ValidateInput(input string) (string, error) {
	switch input {
	case "":
		return InputCoNLL08, nil
	case InputCoNLL08, InputTable:
		return input, nil
	default:
		return "", fmt.Errorf("unsupported input format `%s`", input)
	}
}

// ExportedSentence is a single tree of a processed document
// exported in one of the supported formats.
type ExportedSentence struct {
	Index   int                 `json:"index"`
	Table   dtree.Table         `json:"table,omitempty"`
	Columns *dtree.ColumnFormat `json:"columns,omitempty"`
	Words   []string            `json:"words,omitempty"`
	Report  *dtree.AttachReport `json:"report,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func (es ExportedSentence) Failed() bool {
	return es.Error != ""
}

type ForestResult struct {
	Format     string             `json:"format"`
	Vocabulary string             `json:"vocabulary,omitempty"`
	Sentences  []ExportedSentence `json:"sentences"`
	NumFailed  int                `json:"numFailed"`
	Error      string             `json:"error,omitempty"`
}

func (res *ForestResult) Err() error {
	if res.Error != "" {
		return errors.New(res.Error)
	}
	return nil
}

func (res *ForestResult) Type() ResultType {
	return ResultTypeForest
}

// ----------------

// MatchedNode describes a tree node satisfying a pattern
type MatchedNode struct {
	Position int    `json:"position"`
	Form     string `json:"form"`
	POS      string `json:"pos"`
	Rel      string `json:"rel"`
	Subtree  string `json:"subtree"`
}

type SentenceMatches struct {
	Index   int           `json:"index"`
	Matches []MatchedNode `json:"matches"`
	Error   string        `json:"error,omitempty"`
}

type MatchResult struct {
	Pattern    string            `json:"pattern"`
	Vocabulary string            `json:"vocabulary,omitempty"`
	Sentences  []SentenceMatches `json:"sentences"`
	NumMatches int               `json:"numMatches"`
	Error      string            `json:"error,omitempty"`
}

func (res *MatchResult) Err() error {
	if res.Error != "" {
		return errors.New(res.Error)
	}
	return nil
}

func (res *MatchResult) Type() ResultType {
	return ResultTypeMatch
}
