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

	"depforest/dtree"
	"depforest/pattern"
)

func marshalMsg(msg string) ([]byte, error) {
	if msg != "" {
		return json.Marshal(msg)
	}
	return json.Marshal(nil)
}

// InputError is caused by invalid user data (malformed
// CoNLL input, unknown vocabulary etc.)
type InputError struct {
	Msg string
}

func (err InputError) Error() string {
	return err.Msg
}

func (err InputError) MarshalJSON() ([]byte, error) {
	return marshalMsg(err.Msg)
}

func NewInputError(format string, args ...any) InputError {
	return InputError{Msg: fmt.Sprintf(format, args...)}
}

// ----------------------------

type InternalError struct {
	Msg string
}

func (err InternalError) Error() string {
	return err.Msg
}

func (err InternalError) MarshalJSON() ([]byte, error) {
	return marshalMsg(err.Msg)
}

// ---------------------------

// RecoveredError wraps a panic recovered while processing a job
type RecoveredError struct {
	Msg string
}

func (err RecoveredError) Error() string {
	return err.Msg
}

func (err RecoveredError) MarshalJSON() ([]byte, error) {
	return marshalMsg(err.Msg)
}

// ---------------------------

type TimeoutError struct {
	Msg string
}

func (err TimeoutError) Error() string {
	return err.Msg
}

func (err TimeoutError) MarshalJSON() ([]byte, error) {
	return marshalMsg(err.Msg)
}

// -----------------

func PanicValueToErr(v any) (err error) {
	switch tr := v.(type) {
	case error:
		err = fmt.Errorf("recovered panic: %w", tr)
	case string:
		err = fmt.Errorf("recovered panic: %s", tr)
	default:
		err = fmt.Errorf("recovered panic from an error of type %T", v)
	}
	return
}

// IsUserError tells whether the error was caused by
// invalid input data (in contrast to a failure of the service).
func IsUserError(err error) bool {
	var inputErr InputError
	var sentErr *dtree.MalformedSentenceError
	var syntaxErr *pattern.SyntaxError
	return errors.As(err, &inputErr) ||
		errors.As(err, &sentErr) ||
		errors.As(err, &syntaxErr)
}

// HTTPStatus maps an error to a proper HTTP status code
func HTTPStatus(err error) int {
	var timeoutErr TimeoutError
	switch {
	case err == nil:
		return http.StatusOK
	case IsUserError(err):
		return http.StatusUnprocessableEntity
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
