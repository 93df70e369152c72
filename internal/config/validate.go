package config

import (
	"os"
	"regexp"

	"github.com/mrz1836/appveyor-artifacts/internal/download"
	"github.com/mrz1836/appveyor-artifacts/internal/errors"
)

// Validation patterns for user-supplied identity values. Everything that
// ends up in an API URL path must match one of these.
var (
	regexCommit  = regexp.MustCompile(`^[0-9a-f]{7,40}$`)
	regexGeneral = regexp.MustCompile(`^[0-9a-zA-Z._-]+$`)
	regexDigits  = regexp.MustCompile(`^[0-9]+$`)
)

// Validate checks the configuration for contradictions and malformed
// values. It must pass before any network call is made. Failures are
// invalid-input errors (exit code 2).
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if cfg.AlwaysJobDirs && cfg.NoJobDirs != "" {
		return invalid(errors.Wrap(errors.ErrConfigValidation,
			"contradiction: --always-job-dirs and --no-job-dirs used together"))
	}
	if cfg.Commit != "" && !regexCommit.MatchString(cfg.Commit) {
		return invalid(errors.Wrapf(errors.ErrConfigValidation, "invalid git commit: %q", cfg.Commit))
	}
	if cfg.Dir != "" {
		info, err := os.Stat(cfg.Dir)
		if err != nil || !info.IsDir() {
			return invalid(errors.Wrapf(errors.ErrConfigValidation,
				"not a directory or doesn't exist: %s", cfg.Dir))
		}
	}
	if _, err := download.ParseCollisionMode(cfg.NoJobDirs); err != nil {
		return invalid(errors.Wrap(err, "--no-job-dirs"))
	}
	if cfg.Owner == "" || !regexGeneral.MatchString(cfg.Owner) {
		return invalid(errors.Wrap(errors.ErrConfigValidation, "no or invalid repo owner name"))
	}
	if cfg.PullRequest != "" && !regexDigits.MatchString(cfg.PullRequest) {
		return invalid(errors.Wrapf(errors.ErrConfigValidation, "--pull-request is not a number: %q", cfg.PullRequest))
	}
	if cfg.Repo == "" || !regexGeneral.MatchString(cfg.Repo) {
		return invalid(errors.Wrap(errors.ErrConfigValidation, "no or invalid repo name"))
	}
	if cfg.Tag != "" && !regexGeneral.MatchString(cfg.Tag) {
		return invalid(errors.Wrapf(errors.ErrConfigValidation, "invalid git tag: %q", cfg.Tag))
	}
	if cfg.Timeout < 0 {
		return invalid(errors.Wrap(errors.ErrConfigValidation, "--timeout must not be negative"))
	}
	return nil
}

// invalid marks a validation failure as bad user input for exit-code
// purposes.
func invalid(err error) error {
	return errors.NewInvalidInputError(err)
}
