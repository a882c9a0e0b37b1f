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
	"encoding/json"
	"fmt"
)

// MalformedSentenceError reports a sentence which cannot be
// turned into a tree. Position is the 1-based row position the
// problem was found at (0 if it concerns the whole sentence).
type MalformedSentenceError struct {
	Position int
	Reason   string
}

func (err *MalformedSentenceError) Error() string {
	if err.Position > 0 {
		return fmt.Sprintf("malformed sentence at row %d: %s", err.Position, err.Reason)
	}
	return fmt.Sprintf("malformed sentence: %s", err.Reason)
}

func (err *MalformedSentenceError) MarshalJSON() ([]byte, error) {
	return json.Marshal(err.Error())
}

func malformed(pos int, reason string, args ...any) *MalformedSentenceError {
	return &MalformedSentenceError{Position: pos, Reason: fmt.Sprintf(reason, args...)}
}
