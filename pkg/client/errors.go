package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
	// Payload is the raw response body, kept so callers can show
	// field-level errors exactly as the server reported them.
	Payload json.RawMessage
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Fields decodes a field-error payload such as {"password": ["too short"]}.
// Keys whose values are not strings or string lists are skipped.
func (e *HTTPError) Fields() map[string][]string {
	var raw map[string]json.RawMessage
	if json.Unmarshal(e.Payload, &raw) != nil {
		return nil
	}
	out := make(map[string][]string, len(raw))
	for k, v := range raw {
		if msgs := stringList(v); len(msgs) > 0 {
			out[k] = msgs
		}
	}
	return out
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

func newHTTPError(status int, body []byte) *HTTPError {
	e := &HTTPError{StatusCode: status, Message: errorMessage(body)}
	if json.Valid(body) {
		e.Payload = json.RawMessage(body)
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// errorMessage extracts a human-readable message. It checks the error,
// detail and message keys in that order, then falls back to field errors,
// then to the raw body.
func errorMessage(body []byte) string {
	var raw map[string]json.RawMessage
	if json.Unmarshal(body, &raw) != nil {
		return strings.TrimSpace(string(body))
	}
	for _, key := range []string{"error", "detail", "message"} {
		if v, ok := raw[key]; ok {
			var s string
			if json.Unmarshal(v, &s) == nil && s != "" {
				return s
			}
		}
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		msgs := stringList(raw[k])
		if len(msgs) == 0 {
			continue
		}
		if k == "non_field_errors" {
			parts = append(parts, strings.Join(msgs, ", "))
			continue
		}
		parts = append(parts, k+": "+strings.Join(msgs, ", "))
	}
	if len(parts) > 0 {
		return strings.Join(parts, "; ")
	}
	return strings.TrimSpace(string(body))
}

func stringList(v json.RawMessage) []string {
	var list []string
	if json.Unmarshal(v, &list) == nil {
		return list
	}
	var s string
	if json.Unmarshal(v, &s) == nil && s != "" {
		return []string{s}
	}
	return nil
}
