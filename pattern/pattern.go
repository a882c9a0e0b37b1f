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

// Package pattern implements a small language for matching local
// structures of dependency trees.
//
// A pattern has the form
//
//	( LEFT | ROOT | RIGHT )
//
// where ROOT is a single label (or the `*` wildcard) and LEFT and RIGHT
// describe the node's left and right children. A branch is a space
// separated sequence of labels, wildcards and nested patterns which must
// match the children position by position. A branch consisting of
// a single `*` accepts any children (including none), an empty branch
// accepts no children. A label matches a node with the same dependency
// relation or the same POS tag.
//
// Examples:
//
//	( * nsubj * | root | * advmod * )
//	( * (*|nsubj|*) * | root | * advmod * )
//	( | DT | )
package pattern

import (
	"strings"
)

const (
	Wildcard = "*"

	separator = "|"
)

// ElementKind specifies a variant of a branch element
type ElementKind int

const (
	// WildcardElement matches any single node
	// (along with its whole subtree)
	WildcardElement ElementKind = iota

	// LabelElement matches a single node with matching
	// relation or POS tag
	LabelElement

	// NestedElement matches a single node whose local
	// structure satisfies a nested pattern
	NestedElement
)

func (k ElementKind) String() string {
	switch k {
	case WildcardElement:
		return "wildcard"
	case LabelElement:
		return "label"
	case NestedElement:
		return "nested"
	default:
		return "invalid"
	}
}

// Element is a single member of a branch sequence
type Element struct {
	Kind   ElementKind
	Label  string
	Nested *Pattern
}

func (el Element) String() string {
	switch el.Kind {
	case WildcardElement:
		return Wildcard
	case LabelElement:
		return el.Label
	case NestedElement:
		return el.Nested.String()
	default:
		return "?"
	}
}

// Branch describes children on one side of a node
type Branch struct {

	// Any set to true means the branch accepts any
	// children (Elements are ignored)
	Any bool

	Elements []Element
}

func (b Branch) tokens() []string {
	if b.Any {
		return []string{Wildcard}
	}
	ans := make([]string, len(b.Elements))
	for i, el := range b.Elements {
		ans[i] = el.String()
	}
	return ans
}

// Pattern is a compiled tree pattern. It is immutable
// and can be shared by multiple goroutines.
type Pattern struct {
	Root  string
	Left  Branch
	Right Branch
}

func (p *Pattern) RootIsWildcard() bool {
	return p.Root == Wildcard
}

// String returns a canonical textual form of the pattern
// which compiles back to an equal pattern.
func (p *Pattern) String() string {
	parts := make([]string, 0, len(p.Left.Elements)+len(p.Right.Elements)+5)
	parts = append(parts, "(")
	parts = append(parts, p.Left.tokens()...)
	parts = append(parts, separator, p.Root, separator)
	parts = append(parts, p.Right.tokens()...)
	parts = append(parts, ")")
	return strings.Join(parts, " ")
}
