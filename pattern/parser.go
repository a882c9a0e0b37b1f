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
	"encoding/json"
	"fmt"
	"strings"
)

// SyntaxError reports an invalid pattern expression
type SyntaxError struct {
	Expr string
	Msg  string
}

func (err *SyntaxError) Error() string {
	return fmt.Sprintf("invalid pattern `%s`: %s", err.Expr, err.Msg)
}

func (err *SyntaxError) MarshalJSON() ([]byte, error) {
	return json.Marshal(err.Error())
}

// Item is a member of a bracketed group. It is either a plain
// token or a nested group (in which case Group is not nil).
type Item struct {
	Token string
	Group *Group
}

func (item Item) IsGroup() bool {
	return item.Group != nil
}

// Group is a sequence of items enclosed in a single pair of brackets
type Group struct {
	Items []Item
}

func tokenize(expr string) []string {
	expr = strings.ReplaceAll(expr, "(", " ( ")
	expr = strings.ReplaceAll(expr, ")", " ) ")
	expr = strings.ReplaceAll(expr, separator, " "+separator+" ")
	return strings.Fields(expr)
}

// checkBalance returns an error message in case brackets
// are not balanced and also tells whether the whole token
// sequence is enclosed in a single pair of brackets.
func checkBalance(tokens []string) (enclosed bool, errMsg string) {
	var depth int
	enclosed = len(tokens) > 0 && tokens[0] == "("
	for i, tok := range tokens {
		switch tok {
		case "(":
			depth++
		case ")":
			depth--
			if depth < 0 {
				return false, fmt.Sprintf("unexpected closing bracket at token %d", i+1)
			}
			if depth == 0 && i < len(tokens)-1 {
				enclosed = false
			}
		}
	}
	if depth != 0 {
		return false, "brackets not closed"
	}
	return enclosed, ""
}

// Close transforms a pattern expression into nested groups
// of tokens based on brackets. An expression not enclosed
// in brackets is treated as if it was.
func Close(expr string) (*Group, error) {
	tokens := tokenize(expr)
	if len(tokens) == 0 {
		return nil, &SyntaxError{Expr: expr, Msg: "empty pattern"}
	}
	enclosed, errMsg := checkBalance(tokens)
	if errMsg != "" {
		return nil, &SyntaxError{Expr: expr, Msg: errMsg}
	}
	if !enclosed {
		tmp := make([]string, 0, len(tokens)+2)
		tmp = append(tmp, "(")
		tmp = append(tmp, tokens...)
		tokens = append(tmp, ")")
	}

	var top *Group
	stack := make([]*Group, 0, 8)
	for _, tok := range tokens {
		switch tok {
		case "(":
			grp := new(Group)
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Items = append(parent.Items, Item{Group: grp})

			} else {
				top = grp
			}
			stack = append(stack, grp)
		case ")":
			stack = stack[:len(stack)-1]
		default:
			curr := stack[len(stack)-1]
			curr.Items = append(curr.Items, Item{Token: tok})
		}
	}
	return top, nil
}

// Compile parses a pattern expression
func Compile(expr string) (*Pattern, error) {
	grp, err := Close(expr)
	if err != nil {
		return nil, err
	}
	ans, errMsg := structure(grp)
	if errMsg != "" {
		return nil, &SyntaxError{Expr: expr, Msg: errMsg}
	}
	return ans, nil
}

// MustCompile is like Compile but panics in case
// the expression is invalid.
func MustCompile(expr string) *Pattern {
	ans, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return ans
}

func structure(grp *Group) (*Pattern, string) {
	segments := [][]Item{{}}
	for _, item := range grp.Items {
		if !item.IsGroup() && item.Token == separator {
			segments = append(segments, []Item{})

		} else {
			segments[len(segments)-1] = append(segments[len(segments)-1], item)
		}
	}
	if len(segments) != 3 {
		return nil, fmt.Sprintf(
			"expected 3 segments separated by `%s`, found %d", separator, len(segments))
	}
	rootSeg := segments[1]
	if len(rootSeg) != 1 || rootSeg[0].IsGroup() {
		return nil, "invalid root specification (a single label expected)"
	}
	left, errMsg := structureBranch(segments[0])
	if errMsg != "" {
		return nil, errMsg
	}
	right, errMsg := structureBranch(segments[2])
	if errMsg != "" {
		return nil, errMsg
	}
	return &Pattern{Root: rootSeg[0].Token, Left: left, Right: right}, ""
}

func structureBranch(items []Item) (Branch, string) {
	if len(items) == 1 && !items[0].IsGroup() && items[0].Token == Wildcard {
		return Branch{Any: true}, ""
	}
	ans := Branch{Elements: make([]Element, 0, len(items))}
	for _, item := range items {
		switch {
		case item.IsGroup():
			nested, errMsg := structure(item.Group)
			if errMsg != "" {
				return ans, errMsg
			}
			ans.Elements = append(ans.Elements, Element{Kind: NestedElement, Nested: nested})
		case item.Token == Wildcard:
			ans.Elements = append(ans.Elements, Element{Kind: WildcardElement})
		default:
			ans.Elements = append(ans.Elements, Element{Kind: LabelElement, Label: item.Token})
		}
	}
	return ans, ""
}
