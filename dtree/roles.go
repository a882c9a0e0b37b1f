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

package dtree

import (
	"github.com/rs/zerolog/log"
)

// Vocabulary is a set of known predicate sense names
// (e.g. PropBank rolesets like "play.02").
type Vocabulary interface {
	Contains(name string) bool
}

type acceptAll struct{}

func (a acceptAll) Contains(name string) bool {
	return true
}

// AcceptAll is a vocabulary accepting any predicate.
// It is used when reading back already filtered data.
var AcceptAll Vocabulary = acceptAll{}

// AttachReport summarizes a role attachment pass.
// Both lists contain sense names in sentence order.
type AttachReport struct {
	Retained []string `json:"retained"`
	Dropped  []string `json:"dropped"`
}

type predArgs struct {
	node  NodeID
	sense string
	args  map[string]NodeID
}

// AttachRoles binds predicates and their semantic role arguments
// to the nodes of a tree built from the same sentence.
//
// Argument columns are aligned with the list of all predicates
// of the sentence (in sentence order) so the bindings are collected
// for all the predicates first and only then the predicates
// unknown to the vocabulary are dropped (along with their arguments).
// An argument in a column with no matching predicate makes
// the sentence malformed; in such case the tree is left untouched.
func AttachRoles(tree *Tree, sent Sentence, vocab Vocabulary) (AttachReport, error) {
	var report AttachReport
	if len(sent) != tree.Len() {
		return report, malformed(
			0, "sentence length %d does not match tree size %d", len(sent), tree.Len())
	}
	preds := make([]predArgs, 0, 4)
	for i, row := range sent {
		if row.IsPredicate() {
			preds = append(preds, predArgs{node: NodeID(i), sense: row.Pred, args: make(map[string]NodeID)})
		}
	}
	for i, row := range sent {
		for j, role := range row.Args {
			if role == "" {
				continue
			}
			if j >= len(preds) {
				return report, malformed(
					i+1, "argument %s in column %d has no matching predicate (%d predicates found)",
					role, j+1, len(preds))
			}
			preds[j].args[role] = NodeID(i)
		}
	}

	retained := make([]predArgs, 0, len(preds))
	for _, p := range preds {
		if vocab.Contains(p.sense) {
			retained = append(retained, p)
			report.Retained = append(report.Retained, p.sense)

		} else {
			report.Dropped = append(report.Dropped, p.sense)
			log.Debug().
				Str("sense", p.sense).
				Int("position", int(p.node)+1).
				Int("numArgs", len(p.args)).
				Msg("dropping predicate unknown to the vocabulary")
		}
	}
	for _, p := range retained {
		tree.nodes[p.node].sense = p.sense
		tree.nodes[p.node].args = p.args
	}
	return report, nil
}

// Parse builds a tree out of a sentence and attaches semantic
// roles of the predicates known to the vocabulary.
func Parse(sent Sentence, vocab Vocabulary) (*Tree, AttachReport, error) {
	tree, err := Build(sent)
	if err != nil {
		return nil, AttachReport{}, err
	}
	report, err := AttachRoles(tree, sent, vocab)
	if err != nil {
		return nil, report, err
	}
	return tree, report, nil
}
