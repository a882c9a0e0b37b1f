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
	"testing"

	"depforest/dtree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ms. Haag plays Elianti .
func haagTree(t *testing.T) *dtree.Tree {
	tree, err := dtree.Build(dtree.Sentence{
		{Form: "Ms.", POS: "NNP", Head: 2, Rel: "TITLE"},
		{Form: "Haag", POS: "NNP", Head: 3, Rel: "SBJ"},
		{Form: "plays", POS: "VBZ", Head: 0, Rel: "ROOT"},
		{Form: "Elianti", POS: "NNP", Head: 3, Rel: "OBJ"},
		{Form: ".", POS: ".", Head: 3, Rel: "P"},
	})
	require.NoError(t, err)
	return tree
}

func matchedPositions(t *testing.T, tree *dtree.Tree, expr string) []int {
	ans := make([]int, 0, 5)
	for _, id := range MustCompile(expr).Match(tree, tree.Root()) {
		ans = append(ans, tree.Node(id).Position())
	}
	return ans
}

func TestMatchExactStructure(t *testing.T) {
	tree := haagTree(t)
	assert.Equal(t, []int{3}, matchedPositions(t, tree, "( SBJ | ROOT | OBJ P )"))
	assert.Equal(t, []int{3}, matchedPositions(t, tree, "( NNP | VBZ | NNP . )"))
}

func TestMatchLabelByRelOrPOS(t *testing.T) {
	tree := haagTree(t)
	assert.Equal(t, []int{1, 2, 4}, matchedPositions(t, tree, "( * | NNP | * )"))
	assert.Equal(t, []int{2}, matchedPositions(t, tree, "( * | SBJ | * )"))
}

func TestMatchLeavesOnly(t *testing.T) {
	tree := haagTree(t)
	assert.Equal(t, []int{1, 4}, matchedPositions(t, tree, "( | NNP | )"))
}

func TestMatchWildcardEverything(t *testing.T) {
	tree := haagTree(t)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, matchedPositions(t, tree, "( * | * | * )"))
}

func TestMatchWildcardElementCountsChildren(t *testing.T) {
	tree := haagTree(t)
	assert.Equal(t, []int{3}, matchedPositions(t, tree, "( * | ROOT | * * )"))
	assert.Empty(t, matchedPositions(t, tree, "( * | ROOT | * * * )"))
	assert.Empty(t, matchedPositions(t, tree, "( | ROOT | * )"))
}

func TestMatchNestedPattern(t *testing.T) {
	tree := haagTree(t)
	assert.Equal(t, []int{3}, matchedPositions(t, tree, "( (TITLE|SBJ|) | VBZ | * * )"))
	assert.Empty(t, matchedPositions(t, tree, "( (|SBJ|) | VBZ | * )"))
}

func TestMatchNoMatch(t *testing.T) {
	tree := haagTree(t)
	assert.Empty(t, matchedPositions(t, tree, "( * nsubj * | root | * advmod * )"))
}

func TestMatchSubtreeOnly(t *testing.T) {
	tree := haagTree(t)
	haag, ok := tree.NodeAt(2)
	require.True(t, ok)
	p := MustCompile("( * | NNP | * )")
	ans := p.Match(tree, haag)
	require.Len(t, ans, 2)
	assert.Equal(t, "Ms.", tree.Node(ans[0]).Form())
	assert.Equal(t, "Haag", tree.Node(ans[1]).Form())
}

func TestAllStopsEarly(t *testing.T) {
	tree := haagTree(t)
	p := MustCompile("( * | * | * )")
	var visited []dtree.NodeID
	for id := range p.All(tree, tree.Root()) {
		visited = append(visited, id)
		if len(visited) == 2 {
			break
		}
	}
	assert.Len(t, visited, 2)
	assert.Len(t, p.Match(tree, tree.Root()), 5)
}

func TestMatchForest(t *testing.T) {
	tree1 := haagTree(t)
	tree2, err := dtree.Build(dtree.Sentence{
		{Form: "Kids", POS: "NNS", Head: 2, Rel: "SBJ"},
		{Form: "play", POS: "VBP", Head: 0, Rel: "ROOT"},
	})
	require.NoError(t, err)
	ans := MatchForest(MustCompile("( SBJ | ROOT | * )"), dtree.Forest{tree1, tree2})
	require.Len(t, ans, 2)
	assert.Len(t, ans[0], 1)
	assert.Len(t, ans[1], 1)
	assert.Equal(t, "play", tree2.Node(ans[1][0]).Form())
}
