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

package openapi

func strProp(descr string) ObjectProperty {
	return ObjectProperty{Type: "string", Description: descr}
}

func intProp(descr string) ObjectProperty {
	return ObjectProperty{Type: "integer", Description: descr}
}

func strList(descr string) ObjectProperty {
	return ObjectProperty{Type: "array", Items: &arrayItem{Type: "string"}, Description: descr}
}

func intList(descr string) ObjectProperty {
	return ObjectProperty{Type: "array", Items: &arrayItem{Type: "integer"}, Description: descr}
}

func createSchemas() ObjectProperties {
	ans := make(ObjectProperties)
	ans["Error"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"error": strProp("error message"),
		},
	}
	ans["AttachReport"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"retained": strList("predicate senses kept in the tree"),
			"dropped":  strList("predicate senses not found in the vocabulary"),
		},
	}
	ans["TableRow"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"id":   intProp("1-based in-order position"),
			"form": strProp(""),
			"pos":  strProp(""),
			"head": intProp("position of the parent (0 for the root)"),
			"rel":  strProp("dependency relation"),
			"pred": strProp("predicate sense"),
			"args": strList("argument labels, one per predicate column"),
		},
	}
	ans["ColumnFormat"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"parents":     intList("1-based level-order index of each node's parent"),
			"nextSibling": intList(""),
			"values": ObjectProperty{
				Type: "array",
				Items: &arrayItem{
					Type: "object",
					Properties: ObjectProperties{
						"pos":  strProp(""),
						"form": strProp(""),
					},
				},
			},
			"hasLeftChild":  intList(""),
			"hasRightChild": intList(""),
			"hasSibling":    intList(""),
		},
	}
	ans["ExportedSentence"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"index":   intProp("0-based sentence index"),
			"table":   ObjectProperty{Type: "array", Items: &arrayItem{Ref: "#/components/schemas/TableRow"}},
			"columns": ObjectProperty{Ref: "#/components/schemas/ColumnFormat"},
			"words":   strList("in-order word forms"),
			"report":  ObjectProperty{Ref: "#/components/schemas/AttachReport"},
			"error":   strProp("set for malformed sentences"),
		},
	}
	ans["ForestResult"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"format":     ObjectProperty{Type: "string", Enum: []string{"table", "columns", "words"}},
			"vocabulary": strProp(""),
			"sentences":  ObjectProperty{Type: "array", Items: &arrayItem{Ref: "#/components/schemas/ExportedSentence"}},
			"numFailed":  intProp("number of malformed sentences"),
		},
	}
	ans["MatchedNode"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"position": intProp("1-based sentence position"),
			"form":     strProp(""),
			"pos":      strProp(""),
			"rel":      strProp(""),
			"subtree":  strProp("words of the node's subtree"),
		},
	}
	ans["MatchResult"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"pattern":    strProp("canonical form of the pattern"),
			"vocabulary": strProp(""),
			"sentences": ObjectProperty{
				Type: "array",
				Items: &arrayItem{
					Type: "object",
					Properties: ObjectProperties{
						"index":   intProp(""),
						"matches": ObjectProperty{Type: "array", Items: &arrayItem{Ref: "#/components/schemas/MatchedNode"}},
						"error":   strProp(""),
					},
				},
			},
			"numMatches": intProp(""),
		},
	}
	ans["PatternInfo"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"pattern":        strProp("canonical form of the pattern"),
			"root":           strProp(""),
			"rootIsWildcard": ObjectProperty{Type: "boolean"},
		},
	}
	ans["Vocabularies"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"vocabularies": strList("names of configured vocabularies"),
			"default":      strProp("vocabulary used when none is specified"),
		},
	}
	ans["WorkersLoad"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"numJobs":       intProp(""),
			"numCached":     intProp("jobs answered from the result cache"),
			"totalTimeSecs": ObjectProperty{Type: "number"},
			"numErrors":     intProp(""),
			"firstUpdate":   ObjectProperty{Type: "string", Description: "RFC 3339 time"},
			"lastUpdate":    ObjectProperty{Type: "string", Description: "RFC 3339 time"},
			"numWorkers":    intProp(""),
			"avgLoad":       ObjectProperty{Type: "number", Description: "average number of busy workers"},
		},
	}
	ans["JobLog"] = ObjectProperty{
		Type: "object",
		Properties: ObjectProperties{
			"workerId": strProp(""),
			"func":     ObjectProperty{Type: "string", Enum: []string{"forest", "match"}},
			"begin":    strProp("RFC 3339 time"),
			"end":      strProp("RFC 3339 time"),
			"error":    strProp(""),
			"cached":   ObjectProperty{Type: "boolean"},
		},
	}
	return ans
}
