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

package conll

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"depforest/dtree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conll08Line(fields ...string) string {
	return strings.Join(fields, "\t")
}

var haagConll = strings.Join([]string{
	conll08Line("1", "Ms.", "ms.", "NNP", "_", "_", "_", "NNP", "2", "TITLE", "_", "_"),
	conll08Line("2", "Haag", "haag", "NNP", "_", "_", "_", "NNP", "3", "SBJ", "_", "A0"),
	conll08Line("3", "plays", "play", "VBZ", "_", "_", "_", "VBZ", "0", "ROOT", "play.02", "_"),
	conll08Line("4", "Elianti", "elianti", "NNP", "_", "_", "_", "NNP", "3", "OBJ", "_", "A1"),
	conll08Line("5", ".", ".", ".", "_", "_", "_", ".", "3", "P", "_", "_"),
	"",
	"",
	conll08Line("1", "Kids", "kid", "NNS", "_", "_", "_", "NNS", "2", "SBJ", "_"),
	conll08Line("2", "play", "play", "VBP", "_", "_", "_", "VBP", "0", "ROOT", "_"),
	"",
}, "\n")

func TestReadSentences(t *testing.T) {
	sents, err := ReadSentences(strings.NewReader(haagConll))
	require.NoError(t, err)
	require.Len(t, sents, 2)
	require.Len(t, sents[0], 5)
	assert.Equal(
		t,
		dtree.Row{Form: "plays", POS: "VBZ", Head: 0, Rel: "ROOT", Pred: "play.02", Args: []string{""}},
		sents[0][2],
	)
	assert.Equal(
		t,
		dtree.Row{Form: "Haag", POS: "NNP", Head: 3, Rel: "SBJ", Args: []string{"A0"}},
		sents[0][1],
	)
	assert.Len(t, sents[1], 2)
	assert.Nil(t, sents[1][0].Args)
}

func TestReadSentencesWithoutTrailingBlankLine(t *testing.T) {
	sents, err := ReadSentences(strings.NewReader(strings.TrimSpace(haagConll)))
	require.NoError(t, err)
	assert.Len(t, sents, 2)
}

func TestReadSentencesBuildsTree(t *testing.T) {
	sents, err := ReadSentences(strings.NewReader(haagConll))
	require.NoError(t, err)
	tree, report, err := dtree.Parse(sents[0], dtree.AcceptAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"play.02"}, report.Retained)
	assert.Equal(t, []string{"Ms.", "Haag", "plays", "Elianti", "."}, tree.Words())
}

func TestReadSentencesInvalidHead(t *testing.T) {
	input := strings.Join([]string{
		conll08Line("1", "Kids", "kid", "NNS", "_", "_", "_", "NNS", "2", "SBJ", "_"),
		conll08Line("2", "play", "play", "VBP", "_", "_", "_", "VBP", "x", "ROOT", "_"),
	}, "\n")
	_, err := ReadSentences(strings.NewReader(input))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
}

func TestReadSentencesTooFewColumns(t *testing.T) {
	input := "\n" + conll08Line("1", "Kids", "kid", "NNS", "2", "SBJ")
	_, err := ReadSentences(strings.NewReader(input))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
}

func TestReadSentencesUnexpectedID(t *testing.T) {
	input := strings.Join([]string{
		conll08Line("1", "Kids", "kid", "NNS", "_", "_", "_", "NNS", "2", "SBJ", "_"),
		conll08Line("3", "play", "play", "VBP", "_", "_", "_", "VBP", "0", "ROOT", "_"),
	}, "\n")
	_, err := ReadSentences(strings.NewReader(input))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, perr.Error(), "unexpected ID 3")
}

func TestWriteAndReadTables(t *testing.T) {
	sents, err := ReadSentences(strings.NewReader(haagConll))
	require.NoError(t, err)
	tables := make([]dtree.Table, len(sents))
	for i, sent := range sents {
		tree, _, err := dtree.Parse(sent, dtree.AcceptAll)
		require.NoError(t, err)
		tables[i] = tree.Export()
	}
	var buff bytes.Buffer
	require.NoError(t, WriteTables(&buff, tables))
	lines := strings.Split(buff.String(), "\n")
	assert.Equal(t, "2\tHaag\tNNP\t3\tSBJ\t_\tA0", lines[1])
	assert.Equal(t, "3\tplays\tVBZ\t0\tROOT\tplay.02\t_", lines[2])
	assert.Equal(t, "", lines[5])
	assert.Equal(t, "1\tKids\tNNS\t2\tSBJ\t_", lines[6])

	tables2, err := ReadTables(&buff)
	require.NoError(t, err)
	assert.Equal(t, tables, tables2)
}
