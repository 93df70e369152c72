package appveyor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mrz1836/appveyor-artifacts/internal/clock"
	"github.com/mrz1836/appveyor-artifacts/internal/constants"
	"github.com/mrz1836/appveyor-artifacts/internal/ctxutil"
	"github.com/mrz1836/appveyor-artifacts/internal/errors"
)

// PollOptions configures job polling.
type PollOptions struct {
	// JobName filters polling to the single job with this exact name.
	// Empty means all jobs in the build are considered.
	JobName string
	// Timeout is the overall polling budget. Zero means poll until the
	// build reaches a terminal state (bounded only by ctx).
	Timeout time.Duration
	// Interval overrides the sleep between polls (default 5 seconds).
	Interval time.Duration
	// Clock overrides the time source (default: system clock).
	Clock clock.Clock
}

// buildDetailResponse is the wire shape of the build detail endpoint.
// Pointer fields distinguish missing containers from empty ones.
type buildDetailResponse struct {
	Build *struct {
		Jobs *[]Job `json:"jobs"`
	} `json:"build"`
}

// PollJobs polls the build's job listing until every job succeeds, one job
// fails, an unrecognized status appears, or the timeout elapses. On success
// it returns the final job list.
//
// Decision rules per iteration, in order: any failed job fails the poll
// immediately (ErrJobFailed, carrying one failing job's console URL); all
// success is terminal success; running or queued statuses mean keep waiting;
// anything else is ErrUnknownJobStatus.
//
// The loop is unbounded in iteration count, bounded only by the timeout and
// the context: cancellation is honored at loop entry and during sleeps, so an
// interrupt terminates the wait promptly rather than finishing the poll tick.
func (c *Client) PollJobs(ctx context.Context, owner, repo, version string, opts PollOptions) ([]Job, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if opts.Interval == 0 {
		opts.Interval = constants.PollInterval
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}

	c.logger.Info().
		Str("build_version", version).
		Dur("interval", opts.Interval).
		Dur("timeout", opts.Timeout).
		Msg("waiting for jobs to finish")

	start := opts.Clock.Now()
	for iteration := 0; ; iteration++ {
		if err := ctxutil.Canceled(ctx); err != nil {
			return nil, err
		}
		// The timeout is also re-checked here so that a poll tick never
		// starts after the budget has run out.
		if iteration > 0 {
			if err := c.checkPollTimeout(start, opts); err != nil {
				return nil, err
			}
		}

		jobs, err := c.fetchJobs(ctx, owner, repo, version, opts.JobName)
		if err != nil {
			return nil, err
		}

		done, err := c.evaluateJobs(owner, repo, jobs)
		if err != nil {
			return nil, err
		}
		if done {
			return jobs, nil
		}

		if err := c.checkPollTimeout(start, opts); err != nil {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-opts.Clock.After(opts.Interval):
		}
	}
}

// checkPollTimeout fails with ErrPollingTimeout once the elapsed wall-clock
// time meets or exceeds the budget. A zero timeout means no budget.
func (c *Client) checkPollTimeout(start time.Time, opts PollOptions) error {
	if opts.Timeout <= 0 {
		return nil
	}
	elapsed := opts.Clock.Now().Sub(start)
	if elapsed < opts.Timeout {
		return nil
	}
	c.logger.Warn().
		Dur("elapsed", elapsed).
		Dur("timeout", opts.Timeout).
		Msg("polling timed out waiting for jobs to finish")
	return errors.Wrapf(errors.ErrPollingTimeout, "after %s", elapsed.Round(time.Millisecond))
}

// fetchJobs queries the build detail endpoint and returns the job listing,
// reduced to the named job when filter is non-empty.
func (c *Client) fetchJobs(ctx context.Context, owner, repo, version, filter string) ([]Job, error) {
	endpoint := fmt.Sprintf("/projects/%s/%s/build/%s", owner, repo, version)

	raw, err := c.Query(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var detail buildDetailResponse
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, errors.Wrap(errors.ErrResponseParse, "decoding build detail")
	}
	if detail.Build == nil {
		return nil, errors.Wrap(errors.ErrMalformedResponse, `build reply missing "build" field`)
	}
	if detail.Build.Jobs == nil {
		return nil, errors.Wrap(errors.ErrMalformedResponse, `build reply missing "jobs" field`)
	}

	jobs := *detail.Build.Jobs
	if filter == "" {
		return jobs, nil
	}
	for _, job := range jobs {
		if job.Name == filter {
			return []Job{job}, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrJobNameNotFound, "%q", filter)
}

// evaluateJobs applies the terminal-state decision rules to the current job
// listing. Returns done=true on terminal success, an error on terminal
// failure, and (false, nil) when polling should continue.
func (c *Client) evaluateJobs(owner, repo string, jobs []Job) (bool, error) {
	present := statuses(jobs)

	if _, failed := present[StatusFailed]; failed {
		for _, job := range jobs {
			if job.Status == StatusFailed {
				url := consoleURL(owner, repo, job.ID)
				c.logger.Error().Str("job_id", job.ID).Str("url", url).Msg("appveyor job failed")
				return false, errors.Wrapf(errors.ErrJobFailed, "job %s: %s", job.ID, url)
			}
		}
	}

	if len(present) == 1 {
		if _, ok := present[StatusSuccess]; ok {
			c.logger.Info().Int("jobs", len(jobs)).Msg("build successful")
			return true, nil
		}
	}

	switch {
	case has(present, StatusRunning):
		c.logger.Info().Msg("waiting for jobs to finish...")
	case has(present, StatusQueued):
		c.logger.Info().Msg("waiting for all jobs to start...")
	default:
		unknown := make(map[JobStatus]struct{}, len(present))
		for s := range present {
			if !s.Known() {
				unknown[s] = struct{}{}
			}
		}
		return false, errors.Wrapf(errors.ErrUnknownJobStatus, "%s", statusList(unknown))
	}
	return false, nil
}

// has reports whether the status set contains s.
func has(set map[JobStatus]struct{}, s JobStatus) bool {
	_, ok := set[s]
	return ok
}

// consoleURL builds the human-facing job console link used in failure
// diagnostics.
func consoleURL(owner, repo, jobID string) string {
	return fmt.Sprintf("%s/%s/%s/build/job/%s", constants.ProjectBaseURL, owner, repo, jobID)
}
