// Package apperr carries an HTTP status and a client-facing body through the service layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status  int
	Message string
	// Payload replaces {message} in the response body when set, e.g. a raw provider error.
	Payload any
	// Extra fields merged into the top level of the response body.
	Extra map[string]any
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// With attaches a top-level response field.
func (e *Error) With(key string, value any) *Error {
	if e.Extra == nil {
		e.Extra = map[string]any{}
	}
	e.Extra[key] = value
	return e
}

// Wrap records the underlying cause without exposing it to the client.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error      { return New(http.StatusBadRequest, message) }
func Unauthorized() *Error                  { return New(http.StatusUnauthorized, "") }
func Forbidden() *Error                     { return New(http.StatusForbidden, "") }
func NotFound(message string) *Error        { return New(http.StatusNotFound, message) }
func Conflict(message string) *Error        { return New(http.StatusConflict, message) }
func PaymentRequired(payload any) *Error    { return &Error{Status: http.StatusPaymentRequired, Payload: payload} }
func Upstream(payload any) *Error           { return &Error{Status: http.StatusBadGateway, Payload: payload} }
func UpstreamMessage(message string) *Error { return New(http.StatusBadGateway, message) }
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Err: err}
}

// As extracts an *Error from err. Unknown errors become 500.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// StatusOf returns the HTTP status err maps to.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return As(err).Status
}

// Body renders the JSON response body for err.
func Body(err error) map[string]any {
	appErr := As(err)
	body := map[string]any{"ok": false}
	switch {
	case appErr.Payload != nil:
		body["error"] = appErr.Payload
	case appErr.Message != "":
		body["error"] = map[string]any{"message": appErr.Message}
	}
	for k, v := range appErr.Extra {
		body[k] = v
	}
	return body
}
