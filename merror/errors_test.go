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

package merror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"depforest/dtree"
	"depforest/pattern"

	"github.com/stretchr/testify/assert"
)

func TestIsUserError(t *testing.T) {
	_, err := dtree.Build(dtree.Sentence{})
	assert.True(t, IsUserError(fmt.Errorf("sentence 3: %w", err)))
	_, err = pattern.Compile("( a | b )")
	assert.True(t, IsUserError(err))
	assert.True(t, IsUserError(NewInputError("unknown vocabulary %s", "nb")))
	assert.False(t, IsUserError(InternalError{Msg: "redis down"}))
	assert.False(t, IsUserError(errors.New("foo")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(InputError{Msg: "x"}))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(fmt.Errorf("job: %w", TimeoutError{Msg: "x"})))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(RecoveredError{Msg: "x"}))
}

func TestPanicValueToErr(t *testing.T) {
	err := PanicValueToErr(errors.New("boom"))
	assert.Equal(t, "recovered panic: boom", err.Error())
	assert.Equal(t, "recovered panic: bang", PanicValueToErr("bang").Error())
	assert.Equal(t, "recovered panic from an error of type int", PanicValueToErr(42).Error())
}

func TestMarshalEmptyMessage(t *testing.T) {
	data, err := json.Marshal(InputError{})
	assert.NoError(t, err)
	assert.Equal(t, "null", string(data))
	data, err = json.Marshal(TimeoutError{Msg: "too slow"})
	assert.NoError(t, err)
	assert.Equal(t, `"too slow"`, string(data))
}
