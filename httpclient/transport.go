package httpclient

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-scenario-client/token"
	"github.com/rs/zerolog"
)

const (
	AuthorizationHeader = "Authorization"
	RequestIDHeader     = "X-Request-ID"
)

// transport is the one place outbound requests get their credentials.
// The token is read from the holder when the request is issued.
type transport struct {
	base    http.RoundTripper
	tokens  token.Holder
	logger  zerolog.Logger
	metrics *metrics
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	if tok := t.tokens.Token(); tok != "" {
		req.Header.Set(AuthorizationHeader, tok)
	}
	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
		req.Header.Set(RequestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	elapsed := time.Since(start)

	status := "error"
	if resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	t.metrics.observe(req.Method, status, elapsed)

	event := t.logger.Debug()
	if err != nil {
		event = t.logger.Warn().Err(err)
	}
	event.
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("status", status).
		Dur("elapsed", elapsed).
		Str("request_id", requestID).
		Msg("api request")

	return resp, err
}
