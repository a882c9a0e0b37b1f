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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// groupRepr renders a group in a compact list-like notation
// (e.g. `[a,[b,c]]`)
func groupRepr(grp *Group) string {
	var buff strings.Builder
	buff.WriteString("[")
	for i, item := range grp.Items {
		if i > 0 {
			buff.WriteString(",")
		}
		if item.IsGroup() {
			buff.WriteString(groupRepr(item.Group))

		} else {
			buff.WriteString(item.Token)
		}
	}
	buff.WriteString("]")
	return buff.String()
}

func closeRepr(t *testing.T, expr string) string {
	grp, err := Close(expr)
	require.NoError(t, err)
	return groupRepr(grp)
}

func assertSyntaxError(t *testing.T, err error) {
	var serr *SyntaxError
	require.Error(t, err)
	assert.True(t, errors.As(err, &serr))
}

func TestCloseNestedFunctionLike(t *testing.T) {
	assert.Equal(t, "[closeBrackets,[pattern]]", closeRepr(t, "(closeBrackets(pattern))"))
}

func TestCloseSingleNestedGroup(t *testing.T) {
	assert.Equal(t, "[[[9],[16],[9],[19]]]", closeRepr(t, "( ( (9)  (16)  (9)  (19) ) )"))
}

func TestCloseDeeplyNested(t *testing.T) {
	expr := "( ( ( 5  (6)  (9)  4  (7) )  4  ( (17)  (10)  (1)  16  (4)  (0)" +
		"  (16)  10  2 )  7  2  1  ( (8)  (5)  3  (9)  (12)  15 )  ( (0)" +
		"  6  (1)  (11)  (17)  4 )  18  12 ) )"
	expected := "[[" +
		"[5,[6],[9],4,[7]],4," +
		"[[17],[10],[1],16,[4],[0],[16],10,2]," +
		"7,2,1," +
		"[[8],[5],3,[9],[12],15]," +
		"[[0],6,[1],[11],[17],4],18,12]]"
	assert.Equal(t, expected, closeRepr(t, expr))
}

func TestCloseMixedItems(t *testing.T) {
	assert.Equal(
		t,
		"[[[10],[7],11,[19],17,[1],[3]],16,2]",
		closeRepr(t, "( ( (10)  (7)  11  (19)  17  (1)  (3) )  16  2 )"),
	)
}

func TestCloseWrapsUnenclosedExpression(t *testing.T) {
	assert.Equal(t, "[*,nsubj,|,root,|,*]", closeRepr(t, "* nsubj | root | *"))
	assert.Equal(t, "[[a],[b]]", closeRepr(t, "(a)(b)"))
}

func TestCloseUnbalanced(t *testing.T) {
	_, err := Close("( a | b | c")
	assertSyntaxError(t, err)
	_, err = Close("a | b | c )")
	assertSyntaxError(t, err)
	_, err = Close("( a ) ) (")
	assertSyntaxError(t, err)
}

func TestCloseEmpty(t *testing.T) {
	_, err := Close("   ")
	assertSyntaxError(t, err)
}

func TestCompileFlatPattern(t *testing.T) {
	p, err := Compile("( * nsubj * | root | * advmod * )")
	require.NoError(t, err)
	assert.Equal(t, "root", p.Root)
	assert.False(t, p.Left.Any)
	assert.Equal(
		t,
		[]Element{{Kind: WildcardElement}, {Kind: LabelElement, Label: "nsubj"}, {Kind: WildcardElement}},
		p.Left.Elements,
	)
	assert.Equal(
		t,
		[]Element{{Kind: WildcardElement}, {Kind: LabelElement, Label: "advmod"}, {Kind: WildcardElement}},
		p.Right.Elements,
	)
}

func TestCompileNestedPattern(t *testing.T) {
	p, err := Compile("( * (*|nsubj|*) * | root | * advmod * )")
	require.NoError(t, err)
	assert.Equal(t, "root", p.Root)
	require.Len(t, p.Left.Elements, 3)
	nested := p.Left.Elements[1]
	assert.Equal(t, NestedElement, nested.Kind)
	assert.Equal(
		t,
		&Pattern{Root: "nsubj", Left: Branch{Any: true}, Right: Branch{Any: true}},
		nested.Nested,
	)
	assert.Equal(t, WildcardElement, p.Left.Elements[0].Kind)
	assert.Equal(t, WildcardElement, p.Left.Elements[2].Kind)
	assert.Len(t, p.Right.Elements, 3)
}

func TestCompileEmptyBranches(t *testing.T) {
	p, err := Compile("( | DT | )")
	require.NoError(t, err)
	assert.Equal(t, "DT", p.Root)
	assert.False(t, p.Left.Any)
	assert.Empty(t, p.Left.Elements)
	assert.False(t, p.Right.Any)
	assert.Empty(t, p.Right.Elements)
}

func TestCompileWildcardRoot(t *testing.T) {
	p, err := Compile("*|*|*")
	require.NoError(t, err)
	assert.True(t, p.RootIsWildcard())
	assert.True(t, p.Left.Any)
	assert.True(t, p.Right.Any)
}

func TestCompileMultiTokenRoot(t *testing.T) {
	_, err := Compile("( | a b | )")
	assertSyntaxError(t, err)
}

func TestCompileGroupAsRoot(t *testing.T) {
	_, err := Compile("( | (x|y|z) | )")
	assertSyntaxError(t, err)
}

func TestCompileWrongNumberOfSegments(t *testing.T) {
	_, err := Compile("( a | b )")
	assertSyntaxError(t, err)
	_, err = Compile("( a | b | c | d )")
	assertSyntaxError(t, err)
	_, err = Compile("( (a|b) | c | d )")
	assertSyntaxError(t, err)
}

func TestCompileEmptyNestedGroup(t *testing.T) {
	_, err := Compile("( () | a | )")
	assertSyntaxError(t, err)
	_, err = Compile("( | a | x () )")
	assertSyntaxError(t, err)
}

func TestCompileUnbalanced(t *testing.T) {
	_, err := Compile("( * nsubj * | root | * advmod *")
	assertSyntaxError(t, err)
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("( a | b )") })
	assert.NotPanics(t, func() { MustCompile("( a | b | c )") })
}

func TestStringRoundTrip(t *testing.T) {
	exprs := []string{
		"( * nsubj * | root | * advmod * )",
		"( * ( * | nsubj | * ) * | root | * advmod * )",
		"( | DT | )",
		"( * | * | ( ( | NNP | ) | OBJ | ) P )",
	}
	for _, expr := range exprs {
		p, err := Compile(expr)
		require.NoError(t, err)
		assert.Equal(t, expr, p.String())
		p2, err := Compile(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, p2)
	}
}

func TestSyntaxErrorMessage(t *testing.T) {
	_, err := Compile("( a | b )")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "( a | b )")
	assert.Contains(t, err.Error(), "expected 3 segments")
}
