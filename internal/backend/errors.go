package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// TransportError is a network failure or a non-2xx response from the backend.
type TransportError struct {
	Op         string // "ingest", "progress", "chat", "video"
	StatusCode int    // 0 when no response was received
	Detail     string // error text extracted from the response body, if any
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		msg := fmt.Sprintf("%s: backend returned %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
		if e.Detail != "" {
			msg += ": " + e.Detail
		}
		return msg
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UserMessage is the short form shown in the UI, e.g. "Error 502: Bad Gateway".
func (e *TransportError) UserMessage() string {
	if e.StatusCode != 0 {
		msg := fmt.Sprintf("Error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
		if e.Detail != "" {
			msg += " (" + e.Detail + ")"
		}
		return msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "request failed"
}

// errorDetail pulls a message out of the common error body shapes:
// {"error": "..."}, {"detail": "..."}, {"message": "..."}.
func errorDetail(body []byte) string {
	var fields map[string]json.RawMessage
	if json.Unmarshal(body, &fields) != nil {
		s := strings.TrimSpace(string(body))
		if len(s) > 200 {
			s = s[:200]
		}
		return s
	}
	for _, key := range []string{"error", "detail", "message"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}
