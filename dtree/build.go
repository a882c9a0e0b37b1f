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

// Build creates a dependency tree out of a sentence.
//
// All the nodes are allocated first so a row may refer to a head
// which comes later in the sentence. Each node is then appended
// to either the left or the right child sequence of its head
// based on its position relative to the head. As rows are processed
// in sentence order, both sequences end up sorted by position.
//
// The function fails with *MalformedSentenceError in case there is
// no root, more than one root, a head index out of range, a token
// being its own head or a cycle disconnected from the root.
func Build(sent Sentence) (*Tree, error) {
	if len(sent) == 0 {
		return nil, malformed(0, "empty sentence")
	}
	tree := &Tree{
		nodes: make([]Node, len(sent)),
		root:  NoNode,
	}
	for i, row := range sent {
		tree.nodes[i] = Node{
			form:     row.Form,
			pos:      row.POS,
			position: i + 1,
			parent:   NoNode,
			rel:      row.Rel,
		}
	}

	for i, row := range sent {
		pos := i + 1
		switch {
		case row.Head < 0 || row.Head > len(sent):
			return nil, malformed(pos, "head %d out of range [0, %d]", row.Head, len(sent))
		case row.Head == pos:
			return nil, malformed(pos, "token refers to itself as its head")
		case row.Head == 0:
			if tree.root != NoNode {
				return nil, malformed(
					pos, "multiple roots (another root at row %d)", tree.nodes[tree.root].position)
			}
			tree.root = NodeID(i)
		default:
			head := &tree.nodes[row.Head-1]
			tree.nodes[i].parent = NodeID(row.Head - 1)
			if pos < row.Head {
				head.left = append(head.left, NodeID(i))

			} else {
				head.right = append(head.right, NodeID(i))
			}
		}
	}
	if tree.root == NoNode {
		return nil, malformed(0, "no root found")
	}
	if err := tree.checkConnected(); err != nil {
		return nil, err
	}
	return tree, nil
}

// checkConnected makes sure every node is reachable from the root.
// With exactly one root and no self references, an unreachable node
// can only be a member of a head cycle.
func (t *Tree) checkConnected() error {
	visited := make([]bool, len(t.nodes))
	stack := []NodeID{t.root}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visited[curr] = true
		stack = append(stack, t.nodes[curr].left...)
		stack = append(stack, t.nodes[curr].right...)
	}
	for i, v := range visited {
		if !v {
			return malformed(i+1, "token is not connected to the root (head cycle)")
		}
	}
	return nil
}
