package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/mrz1836/appveyor-artifacts/internal/constants"
	"github.com/mrz1836/appveyor-artifacts/internal/errors"
)

// newViperInstance creates a Viper instance with the standard environment
// prefix (APPVEYOR_ARTIFACTS_), key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tag names exactly.
func setDefaults(v *viper.Viper) {
	v.SetDefault("owner", "")
	v.SetDefault("repo", "")
	v.SetDefault("commit", "")
	v.SetDefault("pull_request", "")
	v.SetDefault("tag", "")
	v.SetDefault("job_name", "")
	v.SetDefault("timeout", "0s")
	v.SetDefault("dir", "")
	v.SetDefault("always_job_dirs", false)
	v.SetDefault("no_job_dirs", "")
	v.SetDefault("raise", false)
}

// viperDecoderOption configures mapstructure to convert duration strings
// (e.g. "90s") into time.Duration fields.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}

// Load reads configuration from all non-flag sources with proper
// precedence, highest first:
//  1. Environment variables (APPVEYOR_ARTIFACTS_* prefix)
//  2. Travis CI environment variables (when TRAVIS=true)
//  3. Project config (.appveyor-artifacts.yaml in the working directory)
//  4. Global config (~/.appveyor-artifacts/config.yaml)
//  5. Built-in defaults
//
// Missing config files are not an error. The result is NOT validated:
// callers apply flag overrides first and then run Validate.
func Load() (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	applyTravisEnv(&cfg, os.Getenv)
	return &cfg, nil
}

// LoadFromPaths loads configuration from explicit file paths. Either path
// can be empty to skip that level. Used by tests and --config handling.
func LoadFromPaths(projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}
	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// loadGlobalConfig reads ~/.appveyor-artifacts/config.yaml when present.
func loadGlobalConfig(v *viper.Viper) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil //nolint:nilerr // no home dir means no global config, not a failure
	}
	path := filepath.Join(home, constants.AppHome, "config.yaml")
	if !fileExists(path) {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// loadProjectConfig reads .appveyor-artifacts.yaml from the working
// directory when present.
func loadProjectConfig(v *viper.Viper) error {
	path := ".appveyor-artifacts.yaml"
	if !fileExists(path) {
		return nil
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// applyTravisEnv fills identity fields from the Travis CI environment when
// running under Travis (TRAVIS=true). Values already set by config files or
// APPVEYOR_ARTIFACTS_* variables are kept; Travis only fills gaps, and CLI
// flags override everything later.
//
// TRAVIS_PULL_REQUEST is "false" for non-PR builds and is treated as unset.
func applyTravisEnv(cfg *Config, getenv func(string) string) {
	if getenv("TRAVIS") != "true" {
		return
	}

	if cfg.Commit == "" {
		cfg.Commit = getenv("TRAVIS_COMMIT")
	}
	if cfg.Owner == "" || cfg.Repo == "" {
		owner, repo, found := strings.Cut(getenv("TRAVIS_REPO_SLUG"), "/")
		if found {
			if cfg.Owner == "" {
				cfg.Owner = owner
			}
			if cfg.Repo == "" {
				cfg.Repo = repo
			}
		}
	}
	if cfg.PullRequest == "" {
		if pr := getenv("TRAVIS_PULL_REQUEST"); pr != "false" {
			cfg.PullRequest = pr
		}
	}
	if cfg.Tag == "" {
		cfg.Tag = getenv("TRAVIS_TAG")
	}
}
