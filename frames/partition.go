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
	"github.com/rs/zerolog/log"
)

// PartitionResult splits predicates between two frame inventories
// (typically NomBank and PropBank).
type PartitionResult struct {
	Primary   []string `json:"primary"`
	Secondary []string `json:"secondary"`

	// Unknown contains predicates found in neither of the vocabularies
	Unknown []string `json:"unknown"`

	// Ambiguous contains predicates found in both vocabularies
	Ambiguous []string `json:"ambiguous"`
}

// NumExcluded returns number of predicates which ended up in
// none of the buckets
func (pr PartitionResult) NumExcluded() int {
	return len(pr.Unknown) + len(pr.Ambiguous)
}

// Partition distributes predicate sense names between two disjoint
// buckets based on the vocabulary they are found in. Predicates found
// in neither or in both vocabularies are excluded and only reported.
// The order of the input is preserved within each bucket.
func Partition(preds []string, primary, secondary *Vocabulary) PartitionResult {
	var ans PartitionResult
	for _, pred := range preds {
		inPrimary := primary.Contains(pred)
		inSecondary := secondary.Contains(pred)
		switch {
		case inPrimary && inSecondary:
			log.Warn().Str("predicate", pred).Msg("ambiguous predicate")
			ans.Ambiguous = append(ans.Ambiguous, pred)
		case !inPrimary && !inSecondary:
			log.Warn().Str("predicate", pred).Msg("unknown predicate")
			ans.Unknown = append(ans.Unknown, pred)
		case inPrimary:
			ans.Primary = append(ans.Primary, pred)
		default:
			ans.Secondary = append(ans.Secondary, pred)
		}
	}
	return ans
}
