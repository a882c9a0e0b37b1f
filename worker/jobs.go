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
	"strings"

	"depforest/conll"
	"depforest/dtree"
	"depforest/frames"
	"depforest/merror"
	"depforest/pattern"
	"depforest/results"
)

const (
	FuncForest = "forest"
	FuncMatch  = "match"
)

type ForestArgs struct {
	Data       string `json:"data"`
	Input      string `json:"input,omitempty"`
	Format     string `json:"format"`
	Vocabulary string `json:"vocabulary"`
}

type MatchArgs struct {
	Data       string `json:"data"`
	Input      string `json:"input,omitempty"`
	Pattern    string `json:"pattern"`
	Vocabulary string `json:"vocabulary"`
}

type vocabProvider interface {
	Get(name string) (*frames.Vocabulary, error)
}

// ResolveVocabulary finds a vocabulary by its name. An empty name
// stands for a vocabulary accepting all the predicates. Along with
// the vocabulary, its fingerprint is returned.
func ResolveVocabulary(provider vocabProvider, name string) (dtree.Vocabulary, string, error) {
	if name == "" {
		return dtree.AcceptAll, frames.AcceptAllFingerprint, nil
	}
	v, err := provider.Get(name)
	if err != nil {
		var uerr frames.ErrUnknownVocabulary
		if errors.As(err, &uerr) {
			return nil, "", merror.InputError{Msg: uerr.Error()}
		}
		return nil, "", err
	}
	return v, v.Fingerprint(), nil
}

// Processor performs the actual job operations. It does not
// depend on Redis so it can be used also from the command line.
type Processor struct {
	pool *Pool
}

// buildTrees reads input data either as CoNLL-2008 sentences
// or as exported tables and builds their trees. Tables are rebuilt
// as they are, the vocabulary applies to CoNLL-2008 data only.
func (p *Processor) buildTrees(
	ctx context.Context,
	data, input string,
	vocab dtree.Vocabulary,
) ([]ParsedSentence, error) {
	input, err := results.ValidateInput(input)
	if err != nil {
		return nil, merror.InputError{Msg: err.Error()}
	}
	if input == results.InputTable {
		tables, err := conll.ReadTables(strings.NewReader(data))
		if err != nil {
			return nil, merror.NewInputError("invalid input data: %s", err)
		}
		return p.pool.Rebuild(ctx, tables)
	}
	sents, err := conll.ReadSentences(strings.NewReader(data))
	if err != nil {
		return nil, merror.NewInputError("invalid input data: %s", err)
	}
	return p.pool.Parse(ctx, sents, vocab)
}

func exportSentence(idx int, item ParsedSentence, format string) results.ExportedSentence {
	ans := results.ExportedSentence{Index: idx}
	if item.Err != nil {
		ans.Error = item.Err.Error()
		return ans
	}
	report := item.Report
	ans.Report = &report
	switch format {
	case results.FormatColumns:
		cols := item.Tree.Columns()
		ans.Columns = &cols
	case results.FormatWords:
		ans.Words = item.Tree.Words()
	default:
		ans.Table = item.Tree.Export()
	}
	return ans
}

// Forest builds trees of all the sentences found in args.Data and
// exports them in the required format. Malformed sentences are
// reported per sentence. The returned error (also stored in the
// result) concerns the job as a whole.
func (p *Processor) Forest(
	ctx context.Context,
	args ForestArgs,
	vocab dtree.Vocabulary,
) (*results.ForestResult, error) {
	ans := &results.ForestResult{Vocabulary: args.Vocabulary, Sentences: []results.ExportedSentence{}}
	format, err := results.ValidateFormat(args.Format)
	if err != nil {
		err = merror.InputError{Msg: err.Error()}
		ans.Error = err.Error()
		return ans, err
	}
	ans.Format = format
	parsed, err := p.buildTrees(ctx, args.Data, args.Input, vocab)
	if err != nil {
		ans.Error = err.Error()
		return ans, err
	}
	ans.Sentences = make([]results.ExportedSentence, len(parsed))
	for i, item := range parsed {
		ans.Sentences[i] = exportSentence(i, item, format)
		if item.Err != nil {
			ans.NumFailed++
		}
	}
	return ans, nil
}

func subtreeText(tree *dtree.Tree, id dtree.NodeID) string {
	words := make([]string, 0, 8)
	for sid := range tree.InOrder(id) {
		words = append(words, tree.Node(sid).Form())
	}
	return strings.Join(words, " ")
}

// Match searches all the trees built from args.Data for nodes
// matching args.Pattern.
func (p *Processor) Match(
	ctx context.Context,
	args MatchArgs,
	vocab dtree.Vocabulary,
) (*results.MatchResult, error) {
	ans := &results.MatchResult{
		Pattern:    args.Pattern,
		Vocabulary: args.Vocabulary,
		Sentences:  []results.SentenceMatches{},
	}
	patt, err := pattern.Compile(args.Pattern)
	if err != nil {
		ans.Error = err.Error()
		return ans, err
	}
	ans.Pattern = patt.String()
	parsed, err := p.buildTrees(ctx, args.Data, args.Input, vocab)
	if err != nil {
		ans.Error = err.Error()
		return ans, err
	}
	ans.Sentences = make([]results.SentenceMatches, len(parsed))
	for i, item := range parsed {
		sm := results.SentenceMatches{Index: i, Matches: []results.MatchedNode{}}
		if item.Err != nil {
			sm.Error = item.Err.Error()
			ans.Sentences[i] = sm
			continue
		}
		for id := range patt.All(item.Tree, item.Tree.Root()) {
			node := item.Tree.Node(id)
			sm.Matches = append(sm.Matches, results.MatchedNode{
				Position: node.Position(),
				Form:     node.Form(),
				POS:      node.POS(),
				Rel:      node.Rel(),
				Subtree:  subtreeText(item.Tree, id),
			})
		}
		ans.NumMatches += len(sm.Matches)
		ans.Sentences[i] = sm
	}
	return ans, nil
}

func NewProcessor(pool *Pool) *Processor {
	return &Processor{pool: pool}
}
