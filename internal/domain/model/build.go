package model

import "time"

// Build result values as reported on the Jenkins wire. An empty Result means
// the build has not finished (the server sends JSON null while building).
const (
	BuildResultSuccess  = "SUCCESS"
	BuildResultFailure  = "FAILURE"
	BuildResultUnstable = "UNSTABLE"
	BuildResultAborted  = "ABORTED"
)

// Build is one execution of a job. Numbers increase monotonically within a job.
// Timestamp and Duration are epoch/interval milliseconds, matching the wire format.
type Build struct {
	Number    int
	URL       string
	Result    string
	Timestamp int64
	Duration  int64
	Building  bool
}

// StartedAt returns the build start time.
func (b Build) StartedAt() time.Time {
	return time.UnixMilli(b.Timestamp)
}
