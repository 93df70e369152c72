// Package constants provides centralized constant values used throughout
// appveyor-artifacts. This package is the single source of truth for all
// shared constants and MUST NOT import any other internal packages.
package constants

import "time"

// AppVeyor API endpoints.
const (
	// APIBaseURL is the base URL for all AppVeyor API queries.
	APIBaseURL = "https://ci.appveyor.com/api"

	// ProjectBaseURL is the base URL for human-facing project pages, used to
	// build job console links in failure diagnostics.
	ProjectBaseURL = "https://ci.appveyor.com/project"

	// HistoryRecords is the number of recent builds fetched from the history
	// endpoint when locating a build.
	HistoryRecords = 10
)

// Timeout and polling configuration.
const (
	// RequestTimeout bounds a single API round trip, independent of the
	// overall polling timeout.
	RequestTimeout = 10 * time.Second

	// PollInterval is the fixed sleep between job status polls.
	PollInterval = 5 * time.Second

	// LocateAttempts is the number of history queries made while waiting
	// for a freshly triggered build to appear.
	LocateAttempts = 3

	// LocateInterval is the sleep between build location attempts.
	LocateInterval = 5 * time.Second

	// DownloadTimeout bounds a single artifact download.
	DownloadTimeout = 5 * time.Minute
)

// Directory and file names for local state.
const (
	// AppHome is the hidden directory name where appveyor-artifacts stores
	// its data. Created in the user's home directory unless overridden by
	// the APPVEYOR_ARTIFACTS_HOME environment variable.
	AppHome = ".appveyor-artifacts"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// CLILogFileName is the rotating log file name.
	CLILogFileName = "appveyor-artifacts.log"
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the maximum size in megabytes before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the maximum number of rotated files to retain.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age in days of a rotated file.
	LogMaxAgeDays = 30

	// LogCompress controls gzip compression of rotated files.
	LogCompress = true
)

// EnvPrefix is the environment variable prefix for configuration overrides
// (e.g. APPVEYOR_ARTIFACTS_TIMEOUT).
const EnvPrefix = "APPVEYOR_ARTIFACTS"
