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

package frames

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
)

// Vocabulary is a sorted set of known predicate sense names
// (e.g. "play.02"). Once created, it is read-only and can be
// shared by any number of goroutines.
type Vocabulary struct {
	names []string
}

// Contains tests whether the name is a member of the vocabulary
// using a binary search.
func (v *Vocabulary) Contains(name string) bool {
	if v == nil {
		return false
	}
	idx := sort.SearchStrings(v.names, name)
	return idx < len(v.names) && v.names[idx] == name
}

func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.names)
}

// Names returns a sorted copy of all the names
func (v *Vocabulary) Names() []string {
	if v == nil {
		return []string{}
	}
	ans := make([]string, len(v.names))
	copy(ans, v.names)
	return ans
}

// Fingerprint returns a hash identifying the vocabulary contents.
func (v *Vocabulary) Fingerprint() string {
	h := sha1.New()
	for _, name := range v.Names() {
		h.Write([]byte(name))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NewVocabulary creates a vocabulary out of an unordered
// collection of names. Duplicates and empty names are removed.
func NewVocabulary(names []string) *Vocabulary {
	tmp := make([]string, 0, len(names))
	for _, name := range names {
		if name != "" {
			tmp = append(tmp, name)
		}
	}
	sort.Strings(tmp)
	ans := &Vocabulary{names: make([]string, 0, len(tmp))}
	for i, name := range tmp {
		if i == 0 || tmp[i-1] != name {
			ans.names = append(ans.names, name)
		}
	}
	return ans
}
