// Package testutil provides testing utilities for appveyor-artifacts.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockTransport indicates a mock network failure (used in tests).
	ErrMockTransport = errors.New("transport error")

	// ErrMockTimeout indicates a mock request timeout (used in tests).
	ErrMockTimeout = errors.New("request timeout")

	// ErrMockAPIError indicates a mock API error occurred (used in tests).
	ErrMockAPIError = errors.New("API error")

	// ErrMockNotFound indicates a mock resource was not found (used in tests).
	ErrMockNotFound = errors.New("not found")
)
