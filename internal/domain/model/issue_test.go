package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	issues := []Issue{
		{Type: IssueBuildFailure},
		{Type: IssueBuildFailure},
		{Type: IssueStuckBuild},
		{Type: IssueStuckInQueue},
		{Type: IssueOfflineNode},
		{Type: "something else"},
	}

	s := Summarize(issues)

	assert.Equal(t, 2, s.BuildFailures)
	assert.Equal(t, 1, s.StuckBuilds)
	assert.Equal(t, 1, s.QueueIssues)
	assert.Equal(t, 1, s.NodeIssues)
}

func TestBuildStartedAt(t *testing.T) {
	b := Build{Timestamp: 1717243200000}
	assert.Equal(t, time.UnixMilli(1717243200000), b.StartedAt())
}
