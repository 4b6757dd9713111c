// error.go
//
// Growth tracking for small software products: apps, metric history, action plans and AI suggestions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of traction-tracker.
// traction-tracker is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// traction-tracker is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with traction-tracker.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the machine readable class of a failure.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindAuthorization  ErrorKind = "authorization"
	KindNotFound       ErrorKind = "not_found"
	KindAuthentication ErrorKind = "authentication"
	KindUpstream       ErrorKind = "upstream"
	KindRateLimited    ErrorKind = "rate_limited"
	KindInternal       ErrorKind = "internal"
)

// CustomError carries an HTTP status, a message for the caller, a route specific
// type string and the failure kind. Err is the wrapped cause, if any.
type CustomError struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Type    string    `json:"type"`
	Kind    ErrorKind `json:"kind"`
	Err     error     `json:"-"`
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s [type: %s]: %v", e.Code, e.Message, e.Type, e.Err)
	}
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is matches another *CustomError by kind, so sentinel comparisons like
// errors.Is(err, types.ErrNotFound) work on any not found error.
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Sentinels for errors.Is. They carry only a kind.
var (
	ErrValidation     = &CustomError{Kind: KindValidation}
	ErrAuthorization  = &CustomError{Kind: KindAuthorization}
	ErrNotFound       = &CustomError{Kind: KindNotFound}
	ErrAuthentication = &CustomError{Kind: KindAuthentication}
	ErrUpstream       = &CustomError{Kind: KindUpstream}
)

// NewValidationError reports malformed or missing input.
func NewValidationError(format string, args ...any) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf(format, args...),
		Type:    "data.validation.input",
		Kind:    KindValidation,
	}
}

// NewAuthorizationError reports a resolved caller that does not own the target.
func NewAuthorizationError(format string, args ...any) *CustomError {
	return &CustomError{
		Code:    http.StatusForbidden,
		Message: fmt.Sprintf(format, args...),
		Type:    "data.authorization.owner",
		Kind:    KindAuthorization,
	}
}

// NewNotFoundError reports an id that does not resolve.
func NewNotFoundError(format string, args ...any) *CustomError {
	return &CustomError{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf(format, args...),
		Type:    "data.notfound",
		Kind:    KindNotFound,
	}
}

// NewAuthenticationError reports a missing or invalid credential.
func NewAuthenticationError(format string, args ...any) *CustomError {
	return &CustomError{
		Code:    http.StatusUnauthorized,
		Message: fmt.Sprintf(format, args...),
		Type:    "data.authentication",
		Kind:    KindAuthentication,
	}
}

// NewUpstreamError wraps a persistence or AI provider fault.
func NewUpstreamError(err error, format string, args ...any) *CustomError {
	return &CustomError{
		Code:    http.StatusBadGateway,
		Message: fmt.Sprintf(format, args...),
		Type:    "data.upstream",
		Kind:    KindUpstream,
		Err:     err,
	}
}

// KindOf returns the kind of the first CustomError in err's chain, or
// KindInternal.
func KindOf(err error) ErrorKind {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}
