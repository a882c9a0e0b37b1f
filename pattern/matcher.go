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

package pattern

import (
	"fmt"
	"iter"

	"depforest/dtree"
)

func labelMatches(label string, node *dtree.Node) bool {
	return label == Wildcard || node.Rel() == label || node.POS() == label
}

func (el Element) matchesAt(t *dtree.Tree, id dtree.NodeID) bool {
	switch el.Kind {
	case WildcardElement:
		return true
	case LabelElement:
		return labelMatches(el.Label, t.Node(id))
	case NestedElement:
		return el.Nested.matchesAt(t, id)
	default:
		panic(fmt.Sprintf("invalid pattern element kind %d", el.Kind))
	}
}

func (b Branch) matchesChildren(t *dtree.Tree, children []dtree.NodeID) bool {
	if b.Any {
		return true
	}
	if len(b.Elements) != len(children) {
		return false
	}
	for i, el := range b.Elements {
		if !el.matchesAt(t, children[i]) {
			return false
		}
	}
	return true
}

// matchesAt tests the local structure of a single node
func (p *Pattern) matchesAt(t *dtree.Tree, id dtree.NodeID) bool {
	node := t.Node(id)
	return labelMatches(p.Root, node) &&
		p.Left.matchesChildren(t, node.Left()) &&
		p.Right.matchesChildren(t, node.Right())
}

// All lazily yields all the nodes of the subtree starting
// at `from` (in the in-order) which satisfy the pattern.
// Matches may overlap.
func (p *Pattern) All(t *dtree.Tree, from dtree.NodeID) iter.Seq[dtree.NodeID] {
	return func(yield func(dtree.NodeID) bool) {
		for id := range t.InOrder(from) {
			if p.matchesAt(t, id) {
				if !yield(id) {
					return
				}
			}
		}
	}
}

// Match returns all the matching nodes of the subtree starting at `from`
func (p *Pattern) Match(t *dtree.Tree, from dtree.NodeID) []dtree.NodeID {
	ans := make([]dtree.NodeID, 0, 4)
	for id := range p.All(t, from) {
		ans = append(ans, id)
	}
	return ans
}

// MatchForest searches whole trees of a forest. The i-th item
// of the result contains matches of the i-th tree.
func MatchForest(p *Pattern, forest dtree.Forest) [][]dtree.NodeID {
	ans := make([][]dtree.NodeID, len(forest))
	for i, tree := range forest {
		ans[i] = p.Match(tree, tree.Root())
	}
	return ans
}
