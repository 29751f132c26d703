// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"

	"github.com/ericfisherdev/jenkinsinsights/internal/domain/model"
)

// JenkinsClient defines the driven port for talking to one Jenkins server.
// A client instance is bound to a single connection; its response cache and
// retry state are never shared across connections. Operations taking a
// useCache flag consult a 30-second keyed cache when the flag is set and
// always hit the server when it is not.
type JenkinsClient interface {
	// TestConnection reports whether a lightweight server-info request
	// succeeds with HTTP 200. It never returns an error.
	TestConnection(ctx context.Context) bool

	// ServerInfo returns the raw server-info document from /api/json.
	ServerInfo(ctx context.Context) (map[string]any, error)

	GetJobs(ctx context.Context, useCache bool) ([]model.Job, error)
	GetJobDetails(ctx context.Context, jobName string, useCache bool) (*model.Job, error)
	// GetBuilds returns up to count most recent builds. A count of zero or
	// less means the default of 10.
	GetBuilds(ctx context.Context, jobName string, count int, useCache bool) ([]model.Build, error)

	// GetBuildDetails returns the full build document, uncached.
	GetBuildDetails(ctx context.Context, jobName string, buildNumber int) (map[string]any, error)
	// GetBuildConsoleOutput returns raw console text, uncached so it always
	// reflects the latest state.
	GetBuildConsoleOutput(ctx context.Context, jobName string, buildNumber int) (string, error)

	GetNodes(ctx context.Context) ([]model.Node, error)
	GetQueue(ctx context.Context) ([]model.QueueItem, error)
	GetPlugins(ctx context.Context) ([]model.Plugin, error)
	// GetSystemStats returns overall load and executor state documents.
	GetSystemStats(ctx context.Context) (*model.SystemStats, error)

	// TriggerBuild schedules a build, posting to the parameterized endpoint
	// when the job declares parameters and parameters were supplied.
	TriggerBuild(ctx context.Context, jobName string, parameters map[string]string) error

	// AnalyzeIssues produces a diagnostic snapshot across jobs, queue, and
	// nodes. Callers normally pass useCache=false since freshness matters
	// for diagnostics; with useCache set a snapshot from the last 30
	// seconds is reused.
	AnalyzeIssues(ctx context.Context, useCache bool) (*model.AnalysisReport, error)
}
