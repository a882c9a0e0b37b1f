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
	"fmt"
	"runtime"

	"depforest/dtree"

	"golang.org/x/sync/errgroup"
)

// ParsedSentence is a result of building a tree from
// a single sentence. In case Err is set, Tree is nil.
type ParsedSentence struct {
	Tree   *dtree.Tree
	Report dtree.AttachReport
	Err    error
}

// Pool builds trees of multiple sentences in parallel.
// Each tree is built by exactly one goroutine and the order
// of the results matches the order of the input sentences.
type Pool struct {
	numWorkers int
}

func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

func (p *Pool) run(
	ctx context.Context,
	size int,
	build func(i int) (*dtree.Tree, dtree.AttachReport, error),
) ([]ParsedSentence, error) {
	ans := make([]ParsedSentence, size)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.numWorkers)
	for i := range size {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			tree, report, err := build(i)
			if err != nil {
				ans[i] = ParsedSentence{Err: fmt.Errorf("sentence %d: %w", i+1, err)}
				return nil
			}
			ans[i] = ParsedSentence{Tree: tree, Report: report}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to parse sentences: %w", err)
	}
	return ans, nil
}

// Parse builds and annotates trees for all the sentences. Malformed
// sentences do not stop the processing, their errors are stored
// in the respective items. The returned error is set only in
// case the context has been cancelled.
func (p *Pool) Parse(
	ctx context.Context,
	sents []dtree.Sentence,
	vocab dtree.Vocabulary,
) ([]ParsedSentence, error) {
	return p.run(ctx, len(sents), func(i int) (*dtree.Tree, dtree.AttachReport, error) {
		return dtree.Parse(sents[i], vocab)
	})
}

// Rebuild restores trees from previously exported tables. All the
// predicates present in a table are kept, i.e. no vocabulary applies.
func (p *Pool) Rebuild(ctx context.Context, tables []dtree.Table) ([]ParsedSentence, error) {
	return p.run(ctx, len(tables), func(i int) (*dtree.Tree, dtree.AttachReport, error) {
		tree, err := dtree.FromTable(tables[i])
		if err != nil {
			return nil, dtree.AttachReport{}, err
		}
		report := dtree.AttachReport{Retained: make([]string, 0, 2)}
		for _, pid := range tree.Predicates() {
			report.Retained = append(report.Retained, tree.Node(pid).Sense())
		}
		return tree, report, nil
	})
}

// Forest is like Parse but it returns just the successfully
// built trees along with the number of failed sentences.
func (p *Pool) Forest(
	ctx context.Context,
	sents []dtree.Sentence,
	vocab dtree.Vocabulary,
) (dtree.Forest, int, error) {
	parsed, err := p.Parse(ctx, sents, vocab)
	if err != nil {
		return nil, 0, err
	}
	ans := make(dtree.Forest, 0, len(parsed))
	var numFailed int
	for _, item := range parsed {
		if item.Err != nil {
			numFailed++
			continue
		}
		ans = append(ans, item.Tree)
	}
	return ans, numFailed, nil
}

// NewPool creates a new pool. For non-positive numWorkers,
// the number of CPUs is used.
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{numWorkers: numWorkers}
}
