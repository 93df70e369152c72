// Package errors provides centralized error handling for appveyor-artifacts.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrTransportTimeout indicates that an API request timed out before the
	// server produced a reply.
	ErrTransportTimeout = errors.New("timed out waiting for reply from server")

	// ErrHTTPStatus indicates that the AppVeyor API answered with a non-2xx
	// status code. The wrapped message carries the status and any server
	// error message.
	ErrHTTPStatus = errors.New("unexpected http status")

	// ErrResponseParse indicates that a response body could not be decoded
	// as JSON. Distinct from ErrHTTPStatus so callers can tell "reachable
	// but returned garbage" from "rejected the request".
	ErrResponseParse = errors.New("failed to parse json response")

	// ErrMalformedResponse indicates that a decoded API reply was missing an
	// expected container field (e.g. "builds", "build.jobs").
	ErrMalformedResponse = errors.New("malformed api response")

	// ErrBuildNotFound indicates that no build in recent history matched the
	// requested commit, pull request, or tag. Transient: the build may not
	// be queued yet, so the orchestrator retries a bounded number of times.
	ErrBuildNotFound = errors.New("build not found in history")

	// ErrJobNameNotFound indicates that no job in the build matched the
	// --job-name filter.
	ErrJobNameNotFound = errors.New("job name not found")

	// ErrJobFailed indicates that at least one AppVeyor job finished with a
	// failed status.
	ErrJobFailed = errors.New("appveyor job failed")

	// ErrUnknownJobStatus indicates that the API reported a job status
	// outside the known set (queued, running, success, failed).
	ErrUnknownJobStatus = errors.New("unknown job status")

	// ErrPollingTimeout indicates that polling exceeded the configured
	// timeout before all jobs finished, or that the build never appeared in
	// history within the bounded location retries.
	ErrPollingTimeout = errors.New("polling timeout")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigValidation indicates an invalid configuration or flag value.
	// Commands should exit with code 2 when this error is returned.
	ErrConfigValidation = errors.New("invalid configuration")

	// ErrDownloadFailed indicates that an artifact could not be written to disk.
	ErrDownloadFailed = errors.New("artifact download failed")

	// ErrFileCollision indicates that two jobs produced the same artifact
	// file name and no collision mode was configured.
	ErrFileCollision = errors.New("artifact file name collision")

	// ErrInvalidCollisionMode indicates an unrecognized --no-job-dirs value.
	ErrInvalidCollisionMode = errors.New("invalid collision mode")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")
)

// InvalidInputError wraps an error to indicate exit code 2 should be used.
// It marks failures caused by bad user input rather than remote state.
type InvalidInputError struct {
	Err error
}

// NewInvalidInputError wraps an error to indicate invalid user input.
func NewInvalidInputError(err error) *InvalidInputError {
	return &InvalidInputError{Err: err}
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

// IsInvalidInputError checks if an error should result in exit code 2.
func IsInvalidInputError(err error) bool {
	var e *InvalidInputError
	return errors.As(err, &e)
}
