package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"unicode/utf8"

	clienterrors "github.com/jrsteele09/go-scenario-client/internal/errors"
)

var (
	ErrEmptyPath     = clienterrors.ErrEmptyPath
	ErrUnauthorized  = clienterrors.ErrUnauthorized
	ErrRequestFailed = clienterrors.ErrRequestFailed
)

// ResultKind tags the outcome of a read-style call
type ResultKind int

const (
	ResultOK ResultKind = iota
	ResultUnauthorized
	ResultFailed
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultUnauthorized:
		return "unauthorized"
	case ResultFailed:
		return "failed"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is what read-style calls (Get, Delete, DownloadFile) resolve to.
// These calls never return an error: a 401 or any other failure yields a
// Result with no value, and the cause is kept in Err for callers that care.
type Result struct {
	Kind       ResultKind
	StatusCode int
	Header     http.Header
	Body       []byte
	Err        error
}

func (r Result) OK() bool {
	return r.Kind == ResultOK
}

// Value returns the JSON body of a successful call, nil otherwise
func (r Result) Value() json.RawMessage {
	if !r.OK() || len(r.Body) == 0 {
		return nil
	}
	return json.RawMessage(r.Body)
}

// Decode unmarshals the body of a successful call into v
func (r Result) Decode(v any) error {
	switch {
	case r.Kind == ResultUnauthorized:
		return ErrUnauthorized
	case !r.OK():
		if r.Err != nil {
			return r.Err
		}
		return ErrRequestFailed
	case len(r.Body) == 0:
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// Response is the full envelope returned by UploadFile
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// StatusError is returned for any non-2xx response
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, truncate(string(e.Body), 200))
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrRequestFailed:
		return true
	}
	return false
}

// IsUnauthorized reports whether err is an HTTP 401
func IsUnauthorized(err error) bool {
	return clienterrors.Is(err, ErrUnauthorized)
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
