package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/appveyor-artifacts/internal/appveyor"
	"github.com/mrz1836/appveyor-artifacts/internal/config"
	"github.com/mrz1836/appveyor-artifacts/internal/download"
	"github.com/mrz1836/appveyor-artifacts/internal/errors"
	"github.com/mrz1836/appveyor-artifacts/internal/signal"
)

// downloadFlags holds the download command's flag values before they are
// merged over the file/env configuration.
type downloadFlags struct {
	commit        string
	owner         string
	repo          string
	pullRequest   string
	tag           string
	jobName       string
	timeoutSecs   int
	dir           string
	alwaysJobDirs bool
	noJobDirs     string
	raise         bool
}

// AddDownloadCommand adds the download command to the parent command.
func AddDownloadCommand(parent *cobra.Command, global *GlobalFlags) {
	flags := &downloadFlags{}

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Wait for the matching AppVeyor build and download its artifacts",
		Long: `Find the AppVeyor build for the configured commit, pull request, or tag,
poll its jobs until they all succeed, then download every artifact.

Build identity and repository settings may also come from config files,
APPVEYOR_ARTIFACTS_* environment variables, or (when running under Travis
CI) the TRAVIS_* environment variables. Command line flags override all of
them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDownload(cmd, flags, global)
		},
	}

	cmd.Flags().StringVarP(&flags.commit, "commit", "c", "", "git commit SHA of the build")
	cmd.Flags().StringVarP(&flags.owner, "owner-name", "o", "", "repository owner/account name")
	cmd.Flags().StringVarP(&flags.repo, "repo-name", "n", "", "repository name")
	cmd.Flags().StringVarP(&flags.pullRequest, "pull-request", "p", "", "pull request number of the build")
	cmd.Flags().StringVarP(&flags.tag, "tag-name", "t", "", "tag name that triggered the build")
	cmd.Flags().StringVarP(&flags.jobName, "job-name", "N", "", "filter to the job with this exact name")
	cmd.Flags().IntVarP(&flags.timeoutSecs, "timeout", "T", 0, "seconds to wait for jobs to finish (0 = no limit)")
	cmd.Flags().StringVarP(&flags.dir, "dir", "C", "", "download to DIR instead of the working directory")
	cmd.Flags().BoolVarP(&flags.alwaysJobDirs, "always-job-dirs", "j", false, "always download into ./<jobID>/ directories")
	cmd.Flags().StringVarP(&flags.noJobDirs, "no-job-dirs", "J", "", "flat layout; collision mode: rename, overwrite, or skip")
	cmd.Flags().BoolVarP(&flags.raise, "raise", "r", false, "print raw errors instead of condensed messages")
	cmd.MarkFlagsMutuallyExclusive("always-job-dirs", "no-job-dirs")

	parent.AddCommand(cmd)
}

// runDownload is the download command implementation: merge configuration,
// validate, fetch, and download.
func runDownload(cmd *cobra.Command, flags *downloadFlags, global *GlobalFlags) error {
	logger := GetLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg, cmd, flags)

	if err := config.Validate(cfg); err != nil {
		return reportError(logger, cfg.Raise, err)
	}

	// An interrupt cancels the whole run, including mid-sleep polling
	// waits and in-flight transfers.
	handler := signal.NewHandler(cmd.Context())
	defer handler.Stop()
	ctx := handler.Context()

	client := appveyor.NewClient(logger)
	fetcher := appveyor.NewFetcher(client, logger, appveyor.FetcherOptions{
		Owner: cfg.Owner,
		Repo:  cfg.Repo,
		Target: appveyor.Target{
			Commit:      cfg.Commit,
			PullRequest: cfg.PullRequest,
			Tag:         cfg.Tag,
		},
		JobName: cfg.JobName,
		Timeout: cfg.Timeout,
	})

	result, err := fetcher.Fetch(ctx)
	if err != nil {
		return reportError(logger, cfg.Raise, err)
	}

	var summary *download.Summary
	if len(result.Artifacts) > 0 {
		d := download.NewDownloader(logger, cfg.DownloadOptions())
		summary, err = d.Run(ctx, result.Artifacts)
		if err != nil {
			return reportError(logger, cfg.Raise, err)
		}
	}

	return printOutcome(cmd, global.Output, result, summary)
}

// applyFlagOverrides merges explicitly set command line flags over the
// loaded configuration. Flags always win; Changed() lets a boolean flag
// still override a true value from a config file.
func applyFlagOverrides(cfg *config.Config, cmd *cobra.Command, flags *downloadFlags) {
	if flags.commit != "" {
		cfg.Commit = flags.commit
	}
	if flags.owner != "" {
		cfg.Owner = flags.owner
	}
	if flags.repo != "" {
		cfg.Repo = flags.repo
	}
	if flags.pullRequest != "" {
		cfg.PullRequest = flags.pullRequest
	}
	if flags.tag != "" {
		cfg.Tag = flags.tag
	}
	if flags.jobName != "" {
		cfg.JobName = flags.jobName
	}
	if flags.dir != "" {
		cfg.Dir = flags.dir
	}
	if flags.noJobDirs != "" {
		cfg.NoJobDirs = flags.noJobDirs
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = time.Duration(flags.timeoutSecs) * time.Second
	}
	if cmd.Flags().Changed("always-job-dirs") {
		cfg.AlwaysJobDirs = flags.alwaysJobDirs
	}
	if cmd.Flags().Changed("raise") {
		cfg.Raise = flags.raise
	}
}

// reportError logs a failure and decides what surfaces to the caller.
// Default behavior condenses internal errors into an actionable message;
// --raise propagates the raw error chain for debugging.
func reportError(logger zerolog.Logger, raise bool, err error) error {
	if raise {
		return err
	}

	message, action := errors.Actionable(err)
	event := logger.Error().Err(err)
	if action != "" {
		event = event.Str("action", action)
	}
	event.Msg(message)

	// Preserve the invalid-input marker so the exit code stays 2.
	if errors.IsInvalidInputError(err) {
		return errors.NewInvalidInputError(stderrors.New(message))
	}
	return stderrors.New(message)
}

// downloadOutcome is the JSON shape of a successful run.
type downloadOutcome struct {
	BuildVersion string              `json:"build_version"`
	Jobs         int                 `json:"jobs"`
	Artifacts    []appveyor.Artifact `json:"artifacts"`
	Files        int                 `json:"files"`
	Bytes        int64               `json:"bytes"`
	Skipped      int                 `json:"skipped"`
}

// printOutcome writes the terminal result to stdout in the selected format.
func printOutcome(cmd *cobra.Command, format string, result *appveyor.Result, summary *download.Summary) error {
	outcome := downloadOutcome{
		BuildVersion: result.Build.Version,
		Jobs:         len(result.Jobs),
		Artifacts:    result.Artifacts,
	}
	if summary != nil {
		outcome.Files = summary.Files
		outcome.Bytes = summary.Bytes
		outcome.Skipped = summary.Skipped
	}
	if outcome.Artifacts == nil {
		outcome.Artifacts = []appveyor.Artifact{}
	}

	if format == OutputJSON {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(outcome.Artifacts) == 0 {
		cmd.Printf("Build %s: no artifacts; nothing to download.\n", outcome.BuildVersion)
		return nil
	}
	cmd.Printf("Build %s: downloaded %d file(s), %d byte(s)", outcome.BuildVersion, outcome.Files, outcome.Bytes)
	if outcome.Skipped > 0 {
		cmd.Printf(", skipped %d duplicate(s)", outcome.Skipped)
	}
	cmd.Println()
	return nil
}
