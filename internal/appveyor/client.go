package appveyor

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mrz1836/appveyor-artifacts/internal/constants"
	"github.com/mrz1836/appveyor-artifacts/internal/errors"
)

// Doer abstracts HTTP execution for testing.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues JSON GET requests against the AppVeyor API.
//
// The client performs exactly one network round trip per call and never
// retries; retry policy belongs to callers. Failures are normalized into
// three kinds so callers can tell "service unreachable" (ErrTransportTimeout)
// from "service rejected the request" (ErrHTTPStatus) from "service reachable
// but returned garbage" (ErrResponseParse).
type Client struct {
	baseURL string
	http    Doer
	logger  zerolog.Logger
}

// NewClient creates a Client against the public AppVeyor API with a bounded
// per-request timeout.
func NewClient(logger zerolog.Logger) *Client {
	return &Client{
		baseURL: constants.APIBaseURL,
		http: &http.Client{
			Timeout: constants.RequestTimeout,
		},
		logger: logger,
	}
}

// NewClientWithDoer creates a Client with a custom base URL and HTTP
// implementation. Used by tests and by callers pointing at an AppVeyor
// Server (on-premise) instance.
func NewClientWithDoer(baseURL string, doer Doer, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    doer,
		logger:  logger,
	}
}

// apiError is the error envelope AppVeyor returns on non-2xx responses.
type apiError struct {
	Message string `json:"message"`
}

// Query issues a GET against endpoint (e.g. "/projects/owner/repo/history")
// and returns the raw JSON body.
func (c *Client) Query(ctx context.Context, endpoint string) (json.RawMessage, error) {
	url := c.baseURL + endpoint
	c.logger.Debug().Str("url", url).Msg("querying appveyor api")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request for %s", endpoint)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, errors.Wrapf(errors.ErrTransportTimeout, "GET %s", endpoint)
		}
		return nil, errors.Wrapf(err, "GET %s", endpoint)
	}
	defer resp.Body.Close() //nolint:errcheck // HTTP response body close

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read response from %s", endpoint)
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Int("body_bytes", len(body)).
		Msg("appveyor api response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpStatusError(resp.StatusCode, body)
	}

	if !json.Valid(body) {
		return nil, errors.Wrapf(errors.ErrResponseParse, "GET %s returned %d bytes", endpoint, len(body))
	}
	return json.RawMessage(body), nil
}

// httpStatusError builds an ErrHTTPStatus carrying the server's message field
// when the error body is structured, or the raw body otherwise.
func httpStatusError(status int, body []byte) error {
	var envelope apiError
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return errors.Wrapf(errors.ErrHTTPStatus, "HTTP %d: %s", status, envelope.Message)
	}
	return errors.Wrapf(errors.ErrHTTPStatus, "HTTP %d: %s", status, string(body))
}

// isTimeout reports whether err represents a request that timed out before
// the server replied.
func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	// http.Client wraps its own deadline error without implementing net.Error
	// on all paths; fall back to the os timeout check.
	var timeoutErr interface{ Timeout() bool }
	if stderrors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return true
	}
	return false
}
