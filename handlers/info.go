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

package handlers

import (
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

// VersionInfo provides a detailed information about the actual build
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
}

type serverInfo struct {
	Name      string      `json:"name"`
	Version   VersionInfo `json:"version"`
	PublicURL string      `json:"publicUrl,omitempty"`
}

func MkServerInfo(version VersionInfo, publicURL string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		uniresp.WriteJSONResponse(
			ctx.Writer,
			serverInfo{
				Name:      "DEPFOREST - dependency forest builder and tree pattern matcher",
				Version:   version,
				PublicURL: publicURL,
			},
		)
	}
}
