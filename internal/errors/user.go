package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries is the pre-built mapping of sentinel errors to their user-facing messages.
// This single source of truth ensures UserMessage and Actionable stay in sync.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// API transport
	// ===================
	{
		err: ErrTransportTimeout,
		info: ErrorInfo{
			Message: "Timed out waiting for a reply from the AppVeyor API.",
			Action:  "Check your network connection and https://appveyor.statuspage.io, then retry.",
		},
	},
	{
		err: ErrHTTPStatus,
		info: ErrorInfo{
			Message: "The AppVeyor API rejected the request.",
			Action:  "Verify the owner and repository names match the AppVeyor project.",
		},
	},
	{
		err: ErrResponseParse,
		info: ErrorInfo{
			Message: "The AppVeyor API returned a response that is not valid JSON.",
			Action:  "Retry later; if the problem persists the API may be degraded.",
		},
	},
	{
		err: ErrMalformedResponse,
		info: ErrorInfo{
			Message: "The AppVeyor API reply was missing an expected field.",
			Action:  "Verify the project exists and your tool version is current.",
		},
	},

	// ===================
	// Build location & polling
	// ===================
	{
		err: ErrBuildNotFound,
		info: ErrorInfo{
			Message: "No recent AppVeyor build matched the commit, pull request, or tag.",
			Action:  "Confirm the build was triggered and the identity flags match it.",
		},
	},
	{
		err: ErrJobNameNotFound,
		info: ErrorInfo{
			Message: "No job in the build matched the --job-name filter.",
			Action:  "Run without --job-name to see which jobs the build contains.",
		},
	},
	{
		err: ErrJobFailed,
		info: ErrorInfo{
			Message: "An AppVeyor job failed. Artifacts are not downloaded for failed builds.",
			Action:  "Open the job console URL in the log output to inspect the failure.",
		},
	},
	{
		err: ErrUnknownJobStatus,
		info: ErrorInfo{
			Message: "AppVeyor reported a job status this tool does not recognize.",
			Action:  "Upgrade appveyor-artifacts; the AppVeyor API may have changed.",
		},
	},
	{
		err: ErrPollingTimeout,
		info: ErrorInfo{
			Message: "Timed out waiting for the AppVeyor build to finish.",
			Action:  "Increase --timeout or check the build on ci.appveyor.com.",
		},
	},

	// ===================
	// Configuration & download
	// ===================
	{
		err: ErrConfigValidation,
		info: ErrorInfo{
			Message: "One or more configuration values are invalid.",
			Action:  "Check the flag values and environment variables; see --help.",
		},
	},
	{
		err: ErrDownloadFailed,
		info: ErrorInfo{
			Message: "An artifact could not be downloaded.",
			Action:  "Check disk space and write permissions for the target directory.",
		},
	},
	{
		err: ErrFileCollision,
		info: ErrorInfo{
			Message: "Two jobs produced artifacts with the same file name.",
			Action:  "Use --always-job-dirs or pick a --no-job-dirs collision mode.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct (unwrapped) sentinel errors.
//
//nolint:gochecknoglobals // Derived from errorInfoEntries at init
var errorInfoMap = buildErrorInfoMap()

// buildErrorInfoMap creates the lookup map from the entries slice.
func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries O(1) direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// This function maps sentinel errors to helpful, actionable messages
// that are suitable for display to end users.
//
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
//
// For errors that are not recoverable or have no clear action, the action
// string will be empty.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
