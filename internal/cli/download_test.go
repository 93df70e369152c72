package cli

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/appveyor-artifacts/internal/appveyor"
	"github.com/mrz1836/appveyor-artifacts/internal/config"
	"github.com/mrz1836/appveyor-artifacts/internal/download"
	"github.com/mrz1836/appveyor-artifacts/internal/errors"
)

// newDownloadCmdForTest returns a parent command with the download
// subcommand attached, for flag inspection.
func newDownloadCmdForTest() (*cobra.Command, *cobra.Command) {
	parent := &cobra.Command{Use: "appveyor-artifacts"}
	AddDownloadCommand(parent, &GlobalFlags{Output: OutputText})
	for _, sub := range parent.Commands() {
		if sub.Name() == "download" {
			return parent, sub
		}
	}
	return parent, nil
}

func TestAddDownloadCommand_Flags(t *testing.T) {
	t.Parallel()

	_, cmd := newDownloadCmdForTest()
	require.NotNil(t, cmd)

	shorthands := map[string]string{
		"commit":          "c",
		"owner-name":      "o",
		"repo-name":       "n",
		"pull-request":    "p",
		"tag-name":        "t",
		"job-name":        "N",
		"timeout":         "T",
		"dir":             "C",
		"always-job-dirs": "j",
		"no-job-dirs":     "J",
		"raise":           "r",
	}
	for name, short := range shorthands {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, short, flag.Shorthand, name)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	t.Parallel()

	t.Run("set flags win over config", func(t *testing.T) {
		t.Parallel()
		_, cmd := newDownloadCmdForTest()
		require.NoError(t, cmd.Flags().Set("commit", "feedbeef123"))
		require.NoError(t, cmd.Flags().Set("timeout", "90"))
		require.NoError(t, cmd.Flags().Set("always-job-dirs", "true"))

		cfg := &config.Config{
			Owner:   "file-owner",
			Commit:  "abc1234",
			Timeout: 30 * time.Second,
		}
		applyFlagOverrides(cfg, cmd, &downloadFlags{
			commit:        "feedbeef123",
			timeoutSecs:   90,
			alwaysJobDirs: true,
		})

		assert.Equal(t, "feedbeef123", cfg.Commit)
		assert.Equal(t, 90*time.Second, cfg.Timeout)
		assert.True(t, cfg.AlwaysJobDirs)
		assert.Equal(t, "file-owner", cfg.Owner, "unset flags leave config alone")
	})

	t.Run("unset flags preserve config", func(t *testing.T) {
		t.Parallel()
		_, cmd := newDownloadCmdForTest()

		cfg := &config.Config{
			Commit:        "abc1234",
			Timeout:       30 * time.Second,
			AlwaysJobDirs: true,
		}
		applyFlagOverrides(cfg, cmd, &downloadFlags{})

		assert.Equal(t, "abc1234", cfg.Commit)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.True(t, cfg.AlwaysJobDirs, "untouched boolean keeps its config value")
	})

	t.Run("explicit zero timeout overrides config", func(t *testing.T) {
		t.Parallel()
		_, cmd := newDownloadCmdForTest()
		require.NoError(t, cmd.Flags().Set("timeout", "0"))

		cfg := &config.Config{Timeout: 30 * time.Second}
		applyFlagOverrides(cfg, cmd, &downloadFlags{timeoutSecs: 0})
		assert.Zero(t, cfg.Timeout)
	})
}

func TestReportError(t *testing.T) {
	t.Parallel()

	t.Run("raise propagates the raw chain", func(t *testing.T) {
		t.Parallel()
		wrapped := errors.Wrap(errors.ErrJobFailed, "job abc123")
		err := reportError(zerolog.New(io.Discard), true, wrapped)
		assert.ErrorIs(t, err, errors.ErrJobFailed)
	})

	t.Run("default condenses to the user message", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		logger := zerolog.New(buf)

		err := reportError(logger, false, errors.Wrap(errors.ErrJobFailed, "job abc123"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, errors.ErrJobFailed, "internal chain is not surfaced")
		assert.NotEmpty(t, buf.String(), "failure is logged")
	})

	t.Run("invalid input marker survives condensing", func(t *testing.T) {
		t.Parallel()
		input := errors.NewInvalidInputError(errors.Wrap(errors.ErrConfigValidation, "no or invalid repo owner name"))

		err := reportError(zerolog.New(io.Discard), false, input)
		require.Error(t, err)
		assert.True(t, errors.IsInvalidInputError(err))
		assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
	})
}

func TestPrintOutcome(t *testing.T) {
	t.Parallel()

	result := &appveyor.Result{
		Build: &appveyor.Build{Version: "1.0.12"},
		Jobs:  []appveyor.Job{{ID: "jobA", Status: appveyor.StatusSuccess}},
		Artifacts: []appveyor.Artifact{
			{JobID: "jobA", FileName: "app.zip", Size: 1024},
		},
	}
	summary := &download.Summary{Files: 1, Bytes: 1024}

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		cmd := &cobra.Command{}
		cmd.SetOut(buf)

		require.NoError(t, printOutcome(cmd, OutputText, result, summary))
		assert.Contains(t, buf.String(), "1.0.12")
		assert.Contains(t, buf.String(), "1 file(s)")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		cmd := &cobra.Command{}
		cmd.SetOut(buf)

		require.NoError(t, printOutcome(cmd, OutputJSON, result, summary))
		assert.Contains(t, buf.String(), `"build_version": "1.0.12"`)
		assert.Contains(t, buf.String(), `"fileName": "app.zip"`)
		assert.Contains(t, buf.String(), `"bytes": 1024`)
	})

	t.Run("no artifacts", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		cmd := &cobra.Command{}
		cmd.SetOut(buf)

		empty := &appveyor.Result{Build: &appveyor.Build{Version: "1.0.13"}}
		require.NoError(t, printOutcome(cmd, OutputText, empty, nil))
		assert.Contains(t, buf.String(), "nothing to download")
	})
}

func TestRunDownload_ValidationFailure(t *testing.T) {
	// Missing owner/repo must fail before any network access.
	t.Setenv("APPVEYOR_ARTIFACTS_HOME", t.TempDir())
	t.Setenv("TRAVIS", "")

	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{})
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"download", "--commit", "abc1234def"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}
