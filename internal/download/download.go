package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/appveyor-artifacts/internal/appveyor"
	"github.com/mrz1836/appveyor-artifacts/internal/constants"
	"github.com/mrz1836/appveyor-artifacts/internal/ctxutil"
	"github.com/mrz1836/appveyor-artifacts/internal/errors"
)

// Downloader transfers planned artifacts to disk sequentially.
type Downloader struct {
	baseURL string
	http    appveyor.Doer
	logger  zerolog.Logger
	opts    Options
}

// NewDownloader creates a Downloader against the production API with a
// transfer-sized HTTP timeout.
func NewDownloader(logger zerolog.Logger, opts Options) *Downloader {
	return NewDownloaderWithDoer(constants.APIBaseURL, &http.Client{
		Timeout: constants.DownloadTimeout,
	}, logger, opts)
}

// NewDownloaderWithDoer creates a Downloader with an explicit base URL and
// HTTP implementation. Tests use this to stub transfers.
func NewDownloaderWithDoer(baseURL string, doer appveyor.Doer, logger zerolog.Logger, opts Options) *Downloader {
	return &Downloader{
		baseURL: baseURL,
		http:    doer,
		logger:  logger,
		opts:    opts,
	}
}

// Summary reports a completed run.
type Summary struct {
	// Files is the number of files written.
	Files int
	// Bytes is the total bytes written across all files.
	Bytes int64
	// Skipped is the number of planned items dropped by CollisionSkip.
	Skipped int
}

// Run plans and transfers all artifacts. The first failed transfer aborts
// the run; files already written stay on disk.
func (d *Downloader) Run(ctx context.Context, artifacts []appveyor.Artifact) (*Summary, error) {
	items, err := Plan(artifacts, d.opts)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, item := range items {
		if err := ctxutil.Canceled(ctx); err != nil {
			return nil, err
		}
		if item.Skip {
			d.logger.Info().
				Str("job_id", item.Artifact.JobID).
				Str("file", item.Artifact.FileName).
				Msg("skipping duplicate artifact")
			summary.Skipped++
			continue
		}

		written, err := d.fetchOne(ctx, item)
		if err != nil {
			return nil, err
		}
		summary.Files++
		summary.Bytes += written
	}

	d.logger.Info().
		Int("files", summary.Files).
		Int64("bytes", summary.Bytes).
		Int("skipped", summary.Skipped).
		Msg("download complete")
	return summary, nil
}

// fetchOne streams a single artifact to its planned path, creating parent
// directories as needed. Returns the number of bytes written.
func (d *Downloader) fetchOne(ctx context.Context, item Item) (int64, error) {
	url := fmt.Sprintf("%s/buildjobs/%s/artifacts/%s", d.baseURL, item.Artifact.JobID, item.Artifact.FileName)

	d.logger.Info().
		Str("job_id", item.Artifact.JobID).
		Str("file", item.Artifact.FileName).
		Str("dest", item.Path).
		Msg("downloading artifact")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrDownloadFailed, "building request for %s: %v", item.Artifact.FileName, err)
	}

	start := time.Now()
	resp, err := d.http.Do(req)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrDownloadFailed, "fetching %s: %v", item.Artifact.FileName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, errors.Wrapf(errors.ErrDownloadFailed, "fetching %s: HTTP %d", item.Artifact.FileName, resp.StatusCode)
	}

	if dir := filepath.Dir(item.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return 0, errors.Wrapf(errors.ErrDownloadFailed, "creating %s: %v", dir, err)
		}
	}

	out, err := os.Create(item.Path) //nolint:gosec // destination comes from the planned layout
	if err != nil {
		return 0, errors.Wrapf(errors.ErrDownloadFailed, "creating %s: %v", item.Path, err)
	}

	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return written, errors.Wrapf(errors.ErrDownloadFailed, "writing %s: %v", item.Path, err)
	}

	d.logger.Debug().
		Str("dest", item.Path).
		Int64("bytes", written).
		Dur("elapsed", time.Since(start)).
		Msg("artifact written")
	return written, nil
}
