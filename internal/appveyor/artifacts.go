package appveyor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mrz1836/appveyor-artifacts/internal/errors"
)

// artifactEntry is the wire shape of one entry in a job's artifact listing.
type artifactEntry struct {
	FileName string `json:"fileName"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
}

// ResolveArtifacts queries each job's artifact listing and flattens the
// results into (job, file name) pairs, preserving job iteration order and
// within-job listing order.
//
// An empty jobIDs slice yields an empty result, not an error: the caller
// distinguishes "no jobs" from "jobs but zero artifacts" and treats zero
// artifacts as a warning condition rather than a failure.
func (c *Client) ResolveArtifacts(ctx context.Context, jobIDs []string) ([]Artifact, error) {
	artifacts := make([]Artifact, 0, len(jobIDs))
	for _, jobID := range jobIDs {
		endpoint := fmt.Sprintf("/buildjobs/%s/artifacts", jobID)
		c.logger.Debug().Str("job_id", jobID).Msg("querying artifact listing")

		raw, err := c.Query(ctx, endpoint)
		if err != nil {
			return nil, errors.Wrapf(err, "listing artifacts for job %s", jobID)
		}

		var entries []artifactEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, errors.Wrapf(errors.ErrResponseParse, "decoding artifact listing for job %s", jobID)
		}

		for _, entry := range entries {
			artifacts = append(artifacts, Artifact{
				JobID:    jobID,
				FileName: entry.FileName,
				Size:     entry.Size,
			})
		}
	}
	return artifacts, nil
}
