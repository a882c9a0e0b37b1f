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

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponseReferencesExistingSchemas(t *testing.T) {
	resp := NewResponse("1.0", "http://localhost:8090")
	for path, methods := range resp.Paths {
		for _, m := range []*Method{methods.Get, methods.Post} {
			if m == nil {
				continue
			}
			for code, r := range m.Responses {
				for _, mt := range r.Content {
					ref := mt.Schema.Ref
					if mt.Schema.Items != nil {
						ref = mt.Schema.Items.Ref
					}
					if ref == "" {
						continue
					}
					name := ref[len("#/components/schemas/"):]
					_, ok := resp.Components.Schemas[name]
					assert.True(t, ok, "%s %s refers to unknown schema %s", path, code, name)
				}
			}
		}
	}
	assert.NotNil(t, resp.Paths["/forest"].Post)
	assert.NotNil(t, resp.Paths["/match"].Post.RequestBody)
}

func TestNewResponseCoversServerRoutes(t *testing.T) {
	resp := NewResponse("1.0", "http://localhost:8090")
	for _, path := range []string{
		"/pattern",
		"/frames/{senseId}",
		"/vocabularies",
		"/monitoring/workers-load",
		"/monitoring/workers-load/{workerId}",
		"/monitoring/recent-records",
	} {
		methods, ok := resp.Paths[path]
		require.True(t, ok, "missing path %s", path)
		assert.NotNil(t, methods.Get, "missing GET %s", path)
	}
	recs := resp.Paths["/monitoring/recent-records"].Get.Responses["200"]
	schema := recs.Content["application/json"].Schema
	assert.Equal(t, "array", schema.Type)
	require.NotNil(t, schema.Items)
	assert.Equal(t, "#/components/schemas/JobLog", schema.Items.Ref)
}

func TestHandleRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/openapi", MkHandleRequest("", "2.1"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/openapi", nil)
	req.Header.Set("x-forwarded-proto", "https")
	req.Header.Set("x-forwarded-host", "depforest.example.org")
	engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2.1", resp.Info.Version)
	require.Len(t, resp.Servers, 1)
	assert.Equal(t, "https://depforest.example.org", resp.Servers[0].URL)
}
