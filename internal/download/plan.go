// Package download turns resolved artifact listings into files on disk.
//
// Planning and transfer are separate steps: Plan computes every local
// destination up front (applying job-directory layout and collision
// handling) so that layout errors surface before any bytes move.
package download

import (
	"fmt"
	"path/filepath"

	"github.com/mrz1836/appveyor-artifacts/internal/appveyor"
	"github.com/mrz1836/appveyor-artifacts/internal/errors"
)

// CollisionMode selects what happens when two jobs expose the same file
// name and both would land on the same local path.
type CollisionMode string

// Collision modes for flat (no job directories) layouts.
const (
	// CollisionError is the zero mode: a collision aborts planning.
	CollisionError CollisionMode = ""
	// CollisionRename gives later duplicates a numeric suffix before the
	// file extension (app.zip, app_2.zip, app_3.zip).
	CollisionRename CollisionMode = "rename"
	// CollisionOverwrite lets later duplicates reuse the same path; the
	// last download wins.
	CollisionOverwrite CollisionMode = "overwrite"
	// CollisionSkip drops later duplicates entirely.
	CollisionSkip CollisionMode = "skip"
)

// ParseCollisionMode validates a user-supplied mode string.
func ParseCollisionMode(s string) (CollisionMode, error) {
	switch mode := CollisionMode(s); mode {
	case CollisionError, CollisionRename, CollisionOverwrite, CollisionSkip:
		return mode, nil
	default:
		return CollisionError, errors.Wrapf(errors.ErrInvalidCollisionMode, "%q", s)
	}
}

// Options configures destination layout for a Downloader.
type Options struct {
	// Dir is the root download directory. Empty means the current
	// working directory.
	Dir string
	// JobDirs places every artifact under a per-job subdirectory named
	// after its job ID. Collisions cannot happen in this layout.
	JobDirs bool
	// Collision selects flat-layout collision handling. Ignored when
	// JobDirs is set.
	Collision CollisionMode
}

// Item is one planned transfer.
type Item struct {
	// Artifact is the remote artifact to fetch.
	Artifact appveyor.Artifact
	// Path is the local destination, rooted at Options.Dir.
	Path string
	// Skip marks a duplicate dropped by CollisionSkip. Skipped items are
	// kept in the plan so callers can report them.
	Skip bool
}

// Plan maps artifacts to local paths. Artifacts keep their input order;
// nested remote paths (forward slashes) become nested local directories.
// A flat-layout collision with no collision mode configured fails with
// ErrFileCollision.
func Plan(artifacts []appveyor.Artifact, opts Options) ([]Item, error) {
	items := make([]Item, 0, len(artifacts))
	claimed := make(map[string]struct{}, len(artifacts))

	for _, art := range artifacts {
		rel := filepath.FromSlash(art.FileName)
		if opts.JobDirs {
			rel = filepath.Join(art.JobID, rel)
		}
		path := filepath.Join(opts.Dir, rel)

		if _, taken := claimed[path]; taken && !opts.JobDirs {
			switch opts.Collision {
			case CollisionRename:
				path = renameCollision(path, claimed)
			case CollisionOverwrite:
				// Same path; the later transfer replaces the earlier.
			case CollisionSkip:
				items = append(items, Item{Artifact: art, Path: path, Skip: true})
				continue
			default:
				return nil, errors.Wrapf(errors.ErrFileCollision,
					"job %s file %q collides at %s", art.JobID, art.FileName, path)
			}
		}

		claimed[path] = struct{}{}
		items = append(items, Item{Artifact: art, Path: path})
	}
	return items, nil
}

// renameCollision finds the first free numeric-suffix variant of path,
// starting at _2 and inserting before the extension.
func renameCollision(path string, claimed map[string]struct{}) string {
	ext := filepath.Ext(path)
	stem := path[:len(path)-len(ext)]
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if _, taken := claimed[candidate]; !taken {
			return candidate
		}
	}
}
