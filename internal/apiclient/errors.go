package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired is returned, wrapping the 401, after the client cleared an
// invalid token and sent the shopper to the login page.
var ErrSessionExpired = errors.New("session expired")

// HTTPError is a non-2xx response from the gateway.
type HTTPError struct {
	Method  string
	URL     string
	Status  int
	Body    []byte
	Code    string
	Message string
	Details map[string]any
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.URL, e.Status, e.Code, msg)
	}
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.URL, e.Status, msg)
}

// DetailInt reads a numeric entry of the error details.
func (e *HTTPError) DetailInt(key string) (int, bool) {
	switch v := e.Details[key].(type) {
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

type errorEnvelope struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func newHTTPError(method, url string, status int, body []byte) *HTTPError {
	e := &HTTPError{Method: method, URL: url, Status: status, Body: body}
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil {
		e.Code = env.Error
		if env.Code != "" {
			e.Code = env.Code
		}
		e.Message = env.Message
		e.Details = env.Details
	}
	return e
}

// AsHTTPError unwraps err into an *HTTPError.
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or 0 for transport errors.
func StatusCode(err error) int {
	if httpErr, ok := AsHTTPError(err); ok {
		return httpErr.Status
	}
	return 0
}
