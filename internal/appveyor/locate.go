package appveyor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mrz1836/appveyor-artifacts/internal/constants"
	"github.com/mrz1836/appveyor-artifacts/internal/errors"
)

// historyResponse is the wire shape of the build history endpoint.
// Builds is a pointer so a missing container can be told apart from an
// empty one; missing means the reply is malformed.
type historyResponse struct {
	Builds *[]Build `json:"builds"`
}

// LocateBuild finds the AppVeyor build matching target in the project's
// recent history and returns it.
//
// The history is scanned in returned order (newest first). Per build the
// match precedence is tag, then pull request number, then commit: tag and PR
// builds are more specific signals than a bare commit, which may appear on
// multiple builds (e.g. a push later tagged). The first match wins.
//
// Returns ErrBuildNotFound when no scanned build matches; the build may not
// be queued yet, so callers decide whether to retry. A history reply missing
// the builds container is ErrMalformedResponse, which is fatal.
func (c *Client) LocateBuild(ctx context.Context, owner, repo string, target Target) (*Build, error) {
	endpoint := fmt.Sprintf("/projects/%s/%s/history?recordsNumber=%d", owner, repo, constants.HistoryRecords)

	c.logger.Debug().
		Str("owner", owner).
		Str("repo", repo).
		Msg("querying build history")

	raw, err := c.Query(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var history historyResponse
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, errors.Wrap(errors.ErrResponseParse, "decoding build history")
	}
	if history.Builds == nil {
		return nil, errors.Wrap(errors.ErrMalformedResponse, `history reply missing "builds" field`)
	}

	for i := range *history.Builds {
		build := &(*history.Builds)[i]
		switch {
		case target.Tag != "" && target.Tag == build.Tag:
			c.logger.Debug().Str("version", build.Version).Msg("matched tag build")
		case target.PullRequest != "" && target.PullRequest == build.PullRequestID:
			c.logger.Debug().Str("version", build.Version).Msg("matched pull request build")
		case target.Commit != "" && target.Commit == build.CommitID:
			c.logger.Debug().Str("version", build.Version).Msg("matched branch build")
		default:
			continue
		}
		return build, nil
	}

	return nil, errors.Wrapf(errors.ErrBuildNotFound, "%s/%s", owner, repo)
}
