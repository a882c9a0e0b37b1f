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

type Info struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

type Server struct {
	URL string `json:"url"`
}

type ParamSchema struct {
	Type string   `json:"type"`
	Enum []string `json:"enum,omitempty"`
}

type Parameter struct {
	Name        string      `json:"name"`
	In          string      `json:"in"`
	Description string      `json:"description"`
	Required    bool        `json:"required"`
	Schema      ParamSchema `json:"schema"`
}

type SchemaRef struct {
	Ref string `json:"$ref,omitempty"`

	// Type is used for plain (non-object) contents
	Type string `json:"type,omitempty"`

	Items *SchemaRef `json:"items,omitempty"`
}

type MediaType struct {
	Schema SchemaRef `json:"schema"`
}

type RequestBody struct {
	Description string               `json:"description"`
	Required    bool                 `json:"required"`
	Content     map[string]MediaType `json:"content"`
}

type MethodResponse struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

type Method struct {
	Description string                    `json:"description"`
	OperationID string                    `json:"operationId"`
	Parameters  []Parameter               `json:"parameters"`
	RequestBody *RequestBody              `json:"requestBody,omitempty"`
	Responses   map[string]MethodResponse `json:"responses"`
	Deprecated  bool                      `json:"deprecated"`
}

type Methods struct {
	Get  *Method `json:"get,omitempty"`
	Post *Method `json:"post,omitempty"`
}

type arrayItem struct {
	Type       string           `json:"type,omitempty"`
	Ref        string           `json:"$ref,omitempty"`
	Properties ObjectProperties `json:"properties,omitempty"`
}

type ObjectProperty struct {
	Type        string           `json:"type,omitempty"`
	Ref         string           `json:"$ref,omitempty"`
	Enum        []string         `json:"enum,omitempty"`
	Properties  ObjectProperties `json:"properties,omitempty"`
	Items       *arrayItem       `json:"items,omitempty"`
	Description string           `json:"description,omitempty"`
}

type ObjectProperties map[string]ObjectProperty

type Components struct {
	Schemas ObjectProperties `json:"schemas"`
}

type Response struct {
	OpenAPI    string             `json:"openapi"`
	Info       Info               `json:"info"`
	Servers    []Server           `json:"servers"`
	Paths      map[string]Methods `json:"paths"`
	Components Components         `json:"components"`
}
