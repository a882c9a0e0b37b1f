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

const (
	contentTypeJSON  = "application/json"
	contentTypeCoNLL = "text/plain"
)

func jsonResponse(descr, schema string) MethodResponse {
	return MethodResponse{
		Description: descr,
		Content: map[string]MediaType{
			contentTypeJSON: {Schema: SchemaRef{Ref: "#/components/schemas/" + schema}},
		},
	}
}

func errorResponses(ans map[string]MethodResponse, codes ...string) map[string]MethodResponse {
	for _, code := range codes {
		ans[code] = jsonResponse("error", "Error")
	}
	return ans
}

var conllBody = &RequestBody{
	Description: "CoNLL-2008 data (tab separated, sentences separated by blank lines)",
	Required:    true,
	Content: map[string]MediaType{
		contentTypeCoNLL: {Schema: SchemaRef{Type: "string"}},
	},
}

var inputParam = Parameter{
	Name:        "input",
	In:          "query",
	Description: "Input data format. By default, `conll08` is used. Tables produced by the `table` export format are rebuilt as they are.",
	Required:    false,
	Schema: ParamSchema{
		Type: "string",
		Enum: []string{"conll08", "table"},
	},
}

var vocabParam = Parameter{
	Name:        "vocab",
	In:          "query",
	Description: "A name of a frame vocabulary. Use `*` to accept all the predicates. If omitted, the configured default is used.",
	Required:    false,
	Schema:      ParamSchema{Type: "string"},
}

func NewResponse(ver, url string) *Response {
	paths := make(map[string]Methods)

	paths["/forest"] = Methods{
		Post: &Method{
			Description: "Builds dependency trees of all the sentences, attaches semantic roles and exports the trees.",
			OperationID: "Forest",
			Parameters: []Parameter{
				{
					Name:        "format",
					In:          "query",
					Description: "Export format. By default, `table` is used.",
					Required:    false,
					Schema: ParamSchema{
						Type: "string",
						Enum: []string{"table", "columns", "words"},
					},
				},
				inputParam,
				vocabParam,
			},
			RequestBody: conllBody,
			Responses: errorResponses(
				map[string]MethodResponse{"200": jsonResponse("exported trees", "ForestResult")},
				"400", "404", "422", "500", "504",
			),
		},
	}

	paths["/match"] = Methods{
		Post: &Method{
			Description: "Searches for tree nodes whose local structure satisfies a pattern.",
			OperationID: "Match",
			Parameters: []Parameter{
				{
					Name:        "q",
					In:          "query",
					Description: "A tree pattern, e.g. `( * nsubj * | root | * advmod * )`",
					Required:    true,
					Schema:      ParamSchema{Type: "string"},
				},
				inputParam,
				vocabParam,
			},
			RequestBody: conllBody,
			Responses: errorResponses(
				map[string]MethodResponse{"200": jsonResponse("matching nodes", "MatchResult")},
				"400", "404", "422", "500", "504",
			),
		},
	}

	paths["/pattern"] = Methods{
		Get: &Method{
			Description: "Validates a tree pattern and returns its canonical form.",
			OperationID: "Pattern",
			Parameters: []Parameter{
				{
					Name:        "q",
					In:          "query",
					Description: "A tree pattern",
					Required:    true,
					Schema:      ParamSchema{Type: "string"},
				},
			},
			Responses: errorResponses(
				map[string]MethodResponse{"200": jsonResponse("compiled pattern", "PatternInfo")},
				"400", "422",
			),
		},
	}

	paths["/frames/{senseId}"] = Methods{
		Get: &Method{
			Description: "Tells whether a predicate sense belongs to a vocabulary.",
			OperationID: "Frame",
			Parameters: []Parameter{
				{
					Name:        "senseId",
					In:          "path",
					Description: "A predicate sense, e.g. `play.02`",
					Required:    true,
					Schema:      ParamSchema{Type: "string"},
				},
				vocabParam,
			},
			Responses: errorResponses(
				map[string]MethodResponse{"200": {Description: "sense membership and roleset"}},
				"400", "404", "500",
			),
		},
	}

	paths["/vocabularies"] = Methods{
		Get: &Method{
			Description: "Lists configured frame vocabularies.",
			OperationID: "Vocabularies",
			Responses: map[string]MethodResponse{
				"200": jsonResponse("vocabulary names", "Vocabularies"),
			},
		},
	}

	paths["/monitoring/workers-load"] = Methods{
		Get: &Method{
			Description: "Shows a summary of jobs processed by all the workers.",
			OperationID: "WorkersLoad",
			Parameters: []Parameter{
				{
					Name:        "span",
					In:          "query",
					Description: "Either recently logged jobs or all the jobs since the server start. By default, `recent` is used.",
					Required:    false,
					Schema: ParamSchema{
						Type: "string",
						Enum: []string{"recent", "total"},
					},
				},
			},
			Responses: errorResponses(
				map[string]MethodResponse{"200": jsonResponse("load summary", "WorkersLoad")},
				"400",
			),
		},
	}

	paths["/monitoring/workers-load/{workerId}"] = Methods{
		Get: &Method{
			Description: "Shows a summary of jobs processed by a single worker.",
			OperationID: "WorkerLoad",
			Parameters: []Parameter{
				{
					Name:        "workerId",
					In:          "path",
					Description: "Worker identifier",
					Required:    true,
					Schema:      ParamSchema{Type: "string"},
				},
			},
			Responses: errorResponses(
				map[string]MethodResponse{"200": jsonResponse("load summary", "WorkersLoad")},
				"404",
			),
		},
	}

	paths["/monitoring/recent-records"] = Methods{
		Get: &Method{
			Description: "Lists recently logged jobs, oldest first.",
			OperationID: "RecentRecords",
			Parameters: []Parameter{
				{
					Name:        "limit",
					In:          "query",
					Description: "Return at most this number of the newest records",
					Required:    false,
					Schema:      ParamSchema{Type: "integer"},
				},
			},
			Responses: errorResponses(
				map[string]MethodResponse{"200": {
					Description: "job records",
					Content: map[string]MediaType{
						contentTypeJSON: {Schema: SchemaRef{
							Type:  "array",
							Items: &SchemaRef{Ref: "#/components/schemas/JobLog"},
						}},
					},
				}},
				"400",
			),
		},
	}

	return &Response{
		OpenAPI: "3.1.0",
		Info: Info{
			Title:       "DEPFOREST - dependency forest builder and tree pattern matcher",
			Description: "Builds dependency trees with semantic roles from CoNLL-2008 data and searches them using tree patterns",
			Version:     ver,
		},
		Servers: []Server{
			{URL: url},
		},
		Paths: paths,
		Components: Components{
			Schemas: createSchemas(),
		},
	}
}
