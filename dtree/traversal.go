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
	"iter"
)

type inOrderFrame struct {
	id     NodeID
	expand bool
}

// InOrder returns a sequence of the nodes of the subtree starting
// at `from` in the order of the original sentence: the subtrees
// of the left children, the node itself and then the subtrees
// of the right children. The sequence can be iterated repeatedly.
func (t *Tree) InOrder(from NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		stack := []inOrderFrame{{id: from, expand: true}}
		for len(stack) > 0 {
			curr := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !curr.expand {
				if !yield(curr.id) {
					return
				}
				continue
			}
			node := &t.nodes[curr.id]
			for i := len(node.right) - 1; i >= 0; i-- {
				stack = append(stack, inOrderFrame{id: node.right[i], expand: true})
			}
			stack = append(stack, inOrderFrame{id: curr.id})
			for i := len(node.left) - 1; i >= 0; i-- {
				stack = append(stack, inOrderFrame{id: node.left[i], expand: true})
			}
		}
	}
}

// Words returns word forms of the tree in the original order
func (t *Tree) Words() []string {
	ans := make([]string, 0, len(t.nodes))
	for id := range t.InOrder(t.root) {
		ans = append(ans, t.nodes[id].form)
	}
	return ans
}

// Group contains children of a single node visited at the
// previous level. Branches[0] holds left children, Branches[1]
// right children. The only group of level zero has no parent
// and a single branch containing the root.
type Group struct {
	Parent   NodeID
	Branches [][]NodeID
}

func (g Group) Size() int {
	var ans int
	for _, b := range g.Branches {
		ans += len(b)
	}
	return ans
}

// Level is a single step of the level-order traversal
type Level struct {
	Depth  int
	Groups []Group
}

// LevelOrder returns a sequence of tree levels. Level zero contains
// the root, each following level contains one group per node of the
// previous level (in the order the nodes were visited). Iteration
// stops after the last level containing at least one node, so the
// groups of the deepest nodes (all of them empty) are never yielded.
// E.g. a tree of depth 2 produces exactly 3 levels.
func (t *Tree) LevelOrder() iter.Seq[Level] {
	return func(yield func(Level) bool) {
		level := Level{
			Groups: []Group{{Parent: NoNode, Branches: [][]NodeID{{t.root}}}},
		}
		for {
			if !yield(level) {
				return
			}
			next := Level{Depth: level.Depth + 1}
			var numNodes int
			for _, grp := range level.Groups {
				for _, branch := range grp.Branches {
					for _, id := range branch {
						node := &t.nodes[id]
						next.Groups = append(
							next.Groups,
							Group{Parent: id, Branches: [][]NodeID{node.left, node.right}},
						)
						numNodes += len(node.left) + len(node.right)
					}
				}
			}
			if numNodes == 0 {
				return
			}
			level = next
		}
	}
}

// Payload is the value part of a node
type Payload struct {
	POS  string `json:"pos"`
	Form string `json:"form"`
}

// ColumnFormat is a flattened level-order encoding of a tree
// suitable for fixed-width tabular export. All the columns
// have the same length (= number of nodes).
type ColumnFormat struct {

	// Parents contains 1-based level-order index of each
	// node's parent (0 for the root)
	Parents []int `json:"parents"`

	// NextSibling is 1 if the node is followed by another
	// node in the same child sequence
	NextSibling []int `json:"nextSibling"`

	Values []Payload `json:"values"`

	HasLeftChild []int `json:"hasLeftChild"`

	HasRightChild []int `json:"hasRightChild"`

	// HasSibling is 1 if the node's child sequence has
	// more than one member
	HasSibling []int `json:"hasSibling"`
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// Columns encodes the tree into ColumnFormat
func (t *Tree) Columns() ColumnFormat {
	ans := ColumnFormat{
		Parents:       make([]int, 0, len(t.nodes)),
		NextSibling:   make([]int, 0, len(t.nodes)),
		Values:        make([]Payload, 0, len(t.nodes)),
		HasLeftChild:  make([]int, 0, len(t.nodes)),
		HasRightChild: make([]int, 0, len(t.nodes)),
		HasSibling:    make([]int, 0, len(t.nodes)),
	}
	var parentID int
	for level := range t.LevelOrder() {
		for _, grp := range level.Groups {
			for _, branch := range grp.Branches {
				for i, id := range branch {
					node := &t.nodes[id]
					ans.Parents = append(ans.Parents, parentID)
					ans.NextSibling = append(ans.NextSibling, boolToInt(i+1 < len(branch)))
					ans.Values = append(ans.Values, Payload{POS: node.pos, Form: node.form})
					ans.HasLeftChild = append(ans.HasLeftChild, boolToInt(len(node.left) > 0))
					ans.HasRightChild = append(ans.HasRightChild, boolToInt(len(node.right) > 0))
					ans.HasSibling = append(ans.HasSibling, boolToInt(len(branch) > 1))
				}
			}
			parentID++
		}
	}
	return ans
}
