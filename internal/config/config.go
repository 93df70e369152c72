// Package config manages appveyor-artifacts configuration.
//
// Configuration is merged from four sources, highest precedence first:
// CLI flags, environment variables (APPVEYOR_ARTIFACTS_* prefix, plus the
// Travis CI variables when running under Travis), a project config file
// (.appveyor-artifacts.yaml in the working directory), and a global config
// file (~/.appveyor-artifacts/config.yaml).
package config

import (
	"time"

	"github.com/mrz1836/appveyor-artifacts/internal/download"
)

// Config holds all settings for an artifact fetch run.
type Config struct {
	// Owner is the AppVeyor account (repository owner) name. Required.
	Owner string `mapstructure:"owner" yaml:"owner"`

	// Repo is the repository name. Required.
	Repo string `mapstructure:"repo" yaml:"repo"`

	// Commit is the git commit SHA of the build to fetch (7 to 40 hex
	// characters). Optional when PullRequest or Tag identifies the build.
	Commit string `mapstructure:"commit" yaml:"commit"`

	// PullRequest is the pull request number of the build to fetch.
	// Matched before Commit when both are set.
	PullRequest string `mapstructure:"pull_request" yaml:"pull_request"`

	// Tag is the git tag that triggered the build. Takes precedence over
	// both PullRequest and Commit when matching history.
	Tag string `mapstructure:"tag" yaml:"tag"`

	// JobName filters polling and artifact resolution to the single job
	// with this exact name. Empty means all jobs.
	JobName string `mapstructure:"job_name" yaml:"job_name"`

	// Timeout bounds how long to wait for jobs to finish. Zero means wait
	// indefinitely.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// Dir is the download root. Must already exist when set; empty means
	// the current working directory.
	Dir string `mapstructure:"dir" yaml:"dir"`

	// AlwaysJobDirs downloads every artifact into a ./<jobID>/ directory.
	// Contradicts NoJobDirs.
	AlwaysJobDirs bool `mapstructure:"always_job_dirs" yaml:"always_job_dirs"`

	// NoJobDirs downloads all jobs into the same directory, resolving file
	// path collisions with the given mode: rename, overwrite, or skip.
	NoJobDirs string `mapstructure:"no_job_dirs" yaml:"no_job_dirs"`

	// Raise re-surfaces raw internal errors instead of the condensed
	// user-facing message. Useful when debugging.
	Raise bool `mapstructure:"raise" yaml:"raise"`
}

// DefaultConfig returns a Config populated with built-in defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// Target returns the build identity portion of the config.
func (c *Config) Target() (commit, pullRequest, tag string) {
	return c.Commit, c.PullRequest, c.Tag
}

// DownloadOptions converts the layout settings into download options.
// Call only after Validate: an invalid NoJobDirs value panics here.
func (c *Config) DownloadOptions() download.Options {
	mode, err := download.ParseCollisionMode(c.NoJobDirs)
	if err != nil {
		panic("config not validated: " + err.Error())
	}
	return download.Options{
		Dir:       c.Dir,
		JobDirs:   c.AlwaysJobDirs,
		Collision: mode,
	}
}
