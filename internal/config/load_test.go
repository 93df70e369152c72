package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// writeConfigFile marshals values to YAML in dir and returns the path.
func writeConfigFile(t *testing.T, dir, name string, values map[string]any) string {
	t.Helper()
	data, err := yaml.Marshal(values)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoadFromPaths(t *testing.T) {
	t.Parallel()

	t.Run("no files yields defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := LoadFromPaths("", "")
		require.NoError(t, err)
		assert.Empty(t, cfg.Owner)
		assert.Empty(t, cfg.Repo)
		assert.Zero(t, cfg.Timeout)
		assert.False(t, cfg.AlwaysJobDirs)
	})

	t.Run("global config is read", func(t *testing.T) {
		t.Parallel()
		global := writeConfigFile(t, t.TempDir(), "config.yaml", map[string]any{
			"owner":    "Robpol86",
			"repo":     "appveyor-artifacts",
			"timeout":  "90s",
			"job_name": "py34",
		})

		cfg, err := LoadFromPaths("", global)
		require.NoError(t, err)
		assert.Equal(t, "Robpol86", cfg.Owner)
		assert.Equal(t, "appveyor-artifacts", cfg.Repo)
		assert.Equal(t, 90*time.Second, cfg.Timeout)
		assert.Equal(t, "py34", cfg.JobName)
	})

	t.Run("project overrides global", func(t *testing.T) {
		t.Parallel()
		global := writeConfigFile(t, t.TempDir(), "config.yaml", map[string]any{
			"owner":   "global-owner",
			"repo":    "shared-repo",
			"timeout": "30s",
		})
		project := writeConfigFile(t, t.TempDir(), ".appveyor-artifacts.yaml", map[string]any{
			"owner": "project-owner",
		})

		cfg, err := LoadFromPaths(project, global)
		require.NoError(t, err)
		assert.Equal(t, "project-owner", cfg.Owner, "project config wins")
		assert.Equal(t, "shared-repo", cfg.Repo, "untouched keys inherit from global")
		assert.Equal(t, 30*time.Second, cfg.Timeout)
	})

	t.Run("layout settings round-trip", func(t *testing.T) {
		t.Parallel()
		project := writeConfigFile(t, t.TempDir(), ".appveyor-artifacts.yaml", map[string]any{
			"owner":       "o",
			"repo":        "r",
			"no_job_dirs": "rename",
			"raise":       true,
		})

		cfg, err := LoadFromPaths(project, "")
		require.NoError(t, err)
		assert.Equal(t, "rename", cfg.NoJobDirs)
		assert.True(t, cfg.Raise)
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("owner: [unclosed"), 0o600))

		_, err := LoadFromPaths("", path)
		require.Error(t, err)
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APPVEYOR_ARTIFACTS_OWNER", "env-owner")
	t.Setenv("APPVEYOR_ARTIFACTS_JOB_NAME", "env-job")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-owner", cfg.Owner)
	assert.Equal(t, "env-job", cfg.JobName)
}

func TestApplyTravisEnv(t *testing.T) {
	t.Parallel()

	fakeEnv := func(env map[string]string) func(string) string {
		return func(key string) string { return env[key] }
	}

	t.Run("fills identity from travis", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{}
		applyTravisEnv(cfg, fakeEnv(map[string]string{
			"TRAVIS":              "true",
			"TRAVIS_COMMIT":       "abc1234def5678",
			"TRAVIS_REPO_SLUG":    "Robpol86/appveyor-artifacts",
			"TRAVIS_PULL_REQUEST": "42",
			"TRAVIS_TAG":          "v1.0.0",
		}))
		assert.Equal(t, "abc1234def5678", cfg.Commit)
		assert.Equal(t, "Robpol86", cfg.Owner)
		assert.Equal(t, "appveyor-artifacts", cfg.Repo)
		assert.Equal(t, "42", cfg.PullRequest)
		assert.Equal(t, "v1.0.0", cfg.Tag)
	})

	t.Run("inactive outside travis", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{}
		applyTravisEnv(cfg, fakeEnv(map[string]string{
			"TRAVIS_COMMIT":    "abc1234def5678",
			"TRAVIS_REPO_SLUG": "o/r",
		}))
		assert.Empty(t, cfg.Commit)
		assert.Empty(t, cfg.Owner)
	})

	t.Run("pull request false means unset", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{}
		applyTravisEnv(cfg, fakeEnv(map[string]string{
			"TRAVIS":              "true",
			"TRAVIS_PULL_REQUEST": "false",
		}))
		assert.Empty(t, cfg.PullRequest)
	})

	t.Run("existing values win over travis", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Owner: "explicit", Commit: "feedbeef123"}
		applyTravisEnv(cfg, fakeEnv(map[string]string{
			"TRAVIS":           "true",
			"TRAVIS_COMMIT":    "abc1234def5678",
			"TRAVIS_REPO_SLUG": "travis-owner/travis-repo",
		}))
		assert.Equal(t, "explicit", cfg.Owner)
		assert.Equal(t, "feedbeef123", cfg.Commit)
		assert.Equal(t, "travis-repo", cfg.Repo, "unset fields still fill")
	})

	t.Run("malformed repo slug is ignored", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{}
		applyTravisEnv(cfg, fakeEnv(map[string]string{
			"TRAVIS":           "true",
			"TRAVIS_REPO_SLUG": "no-slash-here",
		}))
		assert.Empty(t, cfg.Owner)
		assert.Empty(t, cfg.Repo)
	})
}
