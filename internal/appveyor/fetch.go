package appveyor

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/appveyor-artifacts/internal/clock"
	"github.com/mrz1836/appveyor-artifacts/internal/constants"
	"github.com/mrz1836/appveyor-artifacts/internal/ctxutil"
	"github.com/mrz1836/appveyor-artifacts/internal/errors"
)

// Fetcher sequences the full artifact resolution run: locate the build,
// poll its jobs to terminal success, resolve each job's artifact listing.
//
// Any failure aborts the whole run; there is no partial retry across step
// boundaries (a polling timeout does not re-locate the build). The Fetcher
// performs no file I/O; downloading is a downstream consumer of Result.
type Fetcher struct {
	client *Client
	clock  clock.Clock
	logger zerolog.Logger

	owner   string
	repo    string
	target  Target
	jobName string
	timeout time.Duration
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	// Owner is the AppVeyor account name (required).
	Owner string
	// Repo is the project repository name (required).
	Repo string
	// Target identifies the build to locate (commit / PR / tag).
	Target Target
	// JobName optionally filters polling to one named job.
	JobName string
	// Timeout bounds job polling. Zero means wait indefinitely.
	Timeout time.Duration
	// Clock overrides the time source (default: system clock).
	Clock clock.Clock
}

// NewFetcher creates a Fetcher using client for all API access.
func NewFetcher(client *Client, logger zerolog.Logger, opts FetcherOptions) *Fetcher {
	c := opts.Clock
	if c == nil {
		c = clock.RealClock{}
	}
	return &Fetcher{
		client:  client,
		clock:   c,
		logger:  logger,
		owner:   opts.Owner,
		repo:    opts.Repo,
		target:  opts.Target,
		jobName: opts.JobName,
		timeout: opts.Timeout,
	}
}

// Result is the terminal outcome of a successful run.
type Result struct {
	// Build is the located build.
	Build *Build
	// Jobs are the build's jobs, all in success state.
	Jobs []Job
	// Artifacts are the resolved (job, file name) pairs in job order.
	Artifacts []Artifact
}

// Fetch runs locate, poll, and resolve in order and returns the resolved
// artifact list. Each step must produce a definitive result before the next
// begins.
func (f *Fetcher) Fetch(ctx context.Context) (*Result, error) {
	build, err := f.locateWithRetry(ctx)
	if err != nil {
		return nil, err
	}

	jobs, err := f.client.PollJobs(ctx, f.owner, f.repo, build.Version, PollOptions{
		JobName: f.jobName,
		Timeout: f.timeout,
		Clock:   f.clock,
	})
	if err != nil {
		return nil, err
	}

	jobIDs := make([]string, len(jobs))
	for i, job := range jobs {
		jobIDs[i] = job.ID
	}

	artifacts, err := f.client.ResolveArtifacts(ctx, jobIDs)
	if err != nil {
		return nil, err
	}

	if len(artifacts) == 0 {
		f.logger.Warn().Msg("no artifacts; nothing to download")
	} else {
		f.logger.Info().
			Int("artifacts", len(artifacts)).
			Int("jobs", len(jobs)).
			Msg("resolved artifacts")
	}

	return &Result{Build: build, Jobs: jobs, Artifacts: artifacts}, nil
}

// locateWithRetry runs the build locator with a bounded retry: a freshly
// triggered build may not be visible in history yet, so ErrBuildNotFound is
// retried a fixed number of times with a fixed spacing. Exhausting the
// attempts is a timeout-class failure, not NotFound. Any other locator
// error is fatal immediately.
func (f *Fetcher) locateWithRetry(ctx context.Context) (*Build, error) {
	for attempt := 1; attempt <= constants.LocateAttempts; attempt++ {
		if err := ctxutil.Canceled(ctx); err != nil {
			return nil, err
		}

		build, err := f.client.LocateBuild(ctx, f.owner, f.repo, f.target)
		if err == nil {
			f.logger.Info().
				Str("build_version", build.Version).
				Msg("located build")
			return build, nil
		}
		if !stderrors.Is(err, errors.ErrBuildNotFound) {
			return nil, err
		}

		f.logger.Info().
			Int("attempt", attempt).
			Int("max_attempts", constants.LocateAttempts).
			Msg("waiting for build to be queued...")

		if attempt < constants.LocateAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-f.clock.After(constants.LocateInterval):
			}
		}
	}
	return nil, errors.Wrap(errors.ErrPollingTimeout, "timed out waiting for build to appear in history")
}
