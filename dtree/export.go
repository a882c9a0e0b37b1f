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

// TableRow is a single row of an exported tree
type TableRow struct {
	ID   int      `json:"id"`
	Form string   `json:"form"`
	POS  string   `json:"pos"`
	Head int      `json:"head"`
	Rel  string   `json:"rel"`
	Pred string   `json:"pred,omitempty"`
	Args []string `json:"args,omitempty"`
}

// Table is a tree exported back to the row form.
type Table []TableRow

// ToSentence converts the table into a sentence usable
// with Build and AttachRoles.
func (tab Table) ToSentence() Sentence {
	ans := make(Sentence, len(tab))
	for i, row := range tab {
		ans[i] = Row{
			Form: row.Form,
			POS:  row.POS,
			Head: row.Head,
			Rel:  row.Rel,
			Pred: row.Pred,
			Args: row.Args,
		}
	}
	return ans
}

// Export converts the tree back into a table. Rows are numbered
// by the in-order traversal. Each predicate still attached to the
// tree gets its own argument column (in the order the predicates
// appear in the traversal); all the argument columns are present
// in every row, empty cells standing for "no argument".
func (t *Tree) Export() Table {
	order := make([]NodeID, 0, len(t.nodes))
	indices := make(map[NodeID]int, len(t.nodes))
	preds := make([]NodeID, 0, 4)
	for id := range t.InOrder(t.root) {
		indices[id] = len(order) + 1
		order = append(order, id)
		if t.nodes[id].IsPredicate() {
			preds = append(preds, id)
		}
	}

	ans := make(Table, len(order))
	for i, id := range order {
		node := &t.nodes[id]
		row := TableRow{
			ID:   i + 1,
			Form: node.form,
			POS:  node.pos,
			Rel:  node.rel,
			Pred: node.sense,
		}
		if node.parent == NoNode {
			if row.Rel == "" {
				row.Rel = RootRelation
			}

		} else {
			row.Head = indices[node.parent]
		}
		if len(preds) > 0 {
			row.Args = make([]string, len(preds))
		}
		ans[i] = row
	}
	for col, pred := range preds {
		for role, arg := range t.nodes[pred].args {
			ans[indices[arg]-1].Args[col] = role
		}
	}
	return ans
}

// FromTable rebuilds a tree from an exported table.
// All the predicates found in the table are attached.
func FromTable(tab Table) (*Tree, error) {
	tree, _, err := Parse(tab.ToSentence(), AcceptAll)
	return tree, err
}
