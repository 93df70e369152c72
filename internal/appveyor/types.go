// Package appveyor implements the AppVeyor build resolution pipeline:
// locating a build for a commit, pull request, or tag, polling its jobs to a
// terminal state, and resolving the artifacts each job produced.
package appveyor

import "strings"

// JobStatus is the lifecycle state of an AppVeyor job.
// The set is closed; any other value reported by the API is treated as an
// unrecognized-status condition by the poller.
type JobStatus string

// Known job statuses.
const (
	// StatusQueued means the job is waiting to start.
	StatusQueued JobStatus = "queued"
	// StatusRunning means the job is executing.
	StatusRunning JobStatus = "running"
	// StatusSuccess means the job finished successfully.
	StatusSuccess JobStatus = "success"
	// StatusFailed means the job finished with an error.
	StatusFailed JobStatus = "failed"
)

// Known returns true if the status is one of the closed enumeration values.
func (s JobStatus) Known() bool {
	switch s {
	case StatusQueued, StatusRunning, StatusSuccess, StatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status ends polling for the job.
func (s JobStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// String implements fmt.Stringer.
func (s JobStatus) String() string {
	return string(s)
}

// Target identifies the local CI build to look for in AppVeyor history.
// Exactly the fields supplied by the caller are populated; a zero field means
// that identity component is absent. Immutable once constructed.
type Target struct {
	// Commit is the git commit SHA (7-40 lowercase hex characters).
	Commit string
	// PullRequest is the pull request number as reported on the wire
	// (AppVeyor serializes pullRequestId as a string).
	PullRequest string
	// Tag is the git tag name that triggered the build, if any.
	Tag string
}

// Empty returns true when no identity component is populated.
func (t Target) Empty() bool {
	return t.Commit == "" && t.PullRequest == "" && t.Tag == ""
}

// Build is a remote AppVeyor build record. Read-only; produced by the API.
// AppVeyor addresses builds by "version", an opaque string distinct from
// job IDs.
type Build struct {
	// Version is the opaque identifier used to look the build up.
	Version string `json:"version"`
	// Tag is the tag that triggered the build, if any.
	Tag string `json:"tag,omitempty"`
	// PullRequestID is the PR number as a string, if this is a PR build.
	PullRequestID string `json:"pullRequestId,omitempty"`
	// CommitID is the git commit the build ran against.
	CommitID string `json:"commitId"`
}

// Job is one unit of execution within a build (e.g. one matrix entry).
// Status is refreshed by polling, never mutated locally.
type Job struct {
	// ID is the opaque job identifier.
	ID string `json:"jobId"`
	// Name is the job's display name (used by the --job-name filter).
	Name string `json:"name"`
	// Status is the job's current lifecycle state.
	Status JobStatus `json:"status"`
}

// Artifact is a (job, file name) pair describing one downloadable file.
// Artifacts exist only for jobs that reached a successful terminal state.
type Artifact struct {
	// JobID is the job that produced the file.
	JobID string `json:"jobId"`
	// FileName is the artifact path as reported by AppVeyor. It may contain
	// forward slashes for nested paths.
	FileName string `json:"fileName"`
	// Size is the artifact size in bytes, when the API reports it.
	Size int64 `json:"size,omitempty"`
}

// statuses returns the distinct set of statuses present in jobs.
func statuses(jobs []Job) map[JobStatus]struct{} {
	set := make(map[JobStatus]struct{}, len(jobs))
	for _, j := range jobs {
		set[j.Status] = struct{}{}
	}
	return set
}

// statusList renders a status set as a sorted-ish, stable diagnostic string.
func statusList(set map[JobStatus]struct{}) string {
	names := make([]string, 0, len(set))
	for s := range set {
		names = append(names, string(s))
	}
	// Small sets; insertion sort keeps this dependency-free.
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	return strings.Join(names, ", ")
}
