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
	"fmt"
)

const (
	// NoNode marks a missing node reference (e.g. parent of the root)
	NoNode NodeID = -1

	// RootRelation is written into exported tables for a root
	// without its own relation label
	RootRelation = "ROOT"
)

// NodeID is an index into a tree's node arena. It is only meaningful
// together with the tree it was obtained from.
type NodeID int

// Row is a single token of an annotated sentence.
// Empty Pred and empty Args cells stand for "none".
type Row struct {
	Form string
	POS  string
	Head int
	Rel  string
	Pred string
	Args []string
}

func (r Row) IsPredicate() bool {
	return r.Pred != ""
}

// Sentence is an ordered sequence of rows; the 1-based position
// of a row is given by its order.
type Sentence []Row

// Node is a single tree vertex. All structural references are
// NodeIDs pointing into the owning tree.
type Node struct {
	form     string
	pos      string
	position int
	parent   NodeID
	rel      string
	left     []NodeID
	right    []NodeID
	sense    string
	args     map[string]NodeID
}

func (n *Node) Form() string {
	return n.form
}

func (n *Node) POS() string {
	return n.pos
}

// Position returns the original 1-based position of the node
// within its sentence.
func (n *Node) Position() int {
	return n.position
}

func (n *Node) Parent() NodeID {
	return n.parent
}

// Rel returns the label of the edge between the node and its parent.
func (n *Node) Rel() string {
	return n.rel
}

// Left returns children preceding the node in the original
// sentence, in ascending position order. The slice must not be modified.
func (n *Node) Left() []NodeID {
	return n.left
}

// Right returns children following the node in the original
// sentence, in ascending position order. The slice must not be modified.
func (n *Node) Right() []NodeID {
	return n.right
}

func (n *Node) IsPredicate() bool {
	return n.sense != ""
}

func (n *Node) Sense() string {
	return n.sense
}

// Args returns a copy of the role -> argument node mapping
// of a predicate node (nil for other nodes).
func (n *Node) Args() map[string]NodeID {
	if n.args == nil {
		return nil
	}
	ans := make(map[string]NodeID, len(n.args))
	for k, v := range n.args {
		ans[k] = v
	}
	return ans
}

func (n *Node) String() string {
	return fmt.Sprintf("Node(%s, %s)", n.pos, n.form)
}

// Tree is a dependency tree of one sentence. The tree owns all
// its nodes (stored in an arena); nodes refer to each other by NodeID.
type Tree struct {
	nodes []Node
	root  NodeID
}

func (t *Tree) Root() NodeID {
	return t.root
}

// Len returns the number of nodes (= sentence length)
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns a node by its ID. The returned node is owned
// by the tree and must be treated as read-only.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// NodeAt returns a node by its original 1-based sentence position.
func (t *Tree) NodeAt(position int) (NodeID, bool) {
	if position < 1 || position > len(t.nodes) {
		return NoNode, false
	}
	return NodeID(position - 1), true
}

// NextSibling returns the next node within the same (left or right)
// child sequence of the node's parent.
func (t *Tree) NextSibling(id NodeID) NodeID {
	parent := t.nodes[id].parent
	if parent == NoNode {
		return NoNode
	}
	chain := t.nodes[parent].right
	if t.nodes[id].position < t.nodes[parent].position {
		chain = t.nodes[parent].left
	}
	for i, v := range chain {
		if v == id && i+1 < len(chain) {
			return chain[i+1]
		}
	}
	return NoNode
}

// Predicates returns predicate nodes in original sentence order
func (t *Tree) Predicates() []NodeID {
	ans := make([]NodeID, 0, 4)
	for i := range t.nodes {
		if t.nodes[i].IsPredicate() {
			ans = append(ans, NodeID(i))
		}
	}
	return ans
}

func (t *Tree) String() string {
	return fmt.Sprintf("Tree(root: %s, size: %d)", t.nodes[t.root].form, len(t.nodes))
}

// Forest is an ordered sequence of independently built trees,
// one per input sentence.
type Forest []*Tree
