package jenkins

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/jenkinsinsights/internal/domain/model"
)

const (
	// analysisJobLimit caps how many jobs one analysis run inspects.
	analysisJobLimit = 10
	// analysisBuildCount is how many recent builds are checked per job.
	analysisBuildCount = 5
	// stuckBuildAge is how long a build may run before it counts as stuck.
	stuckBuildAge = time.Hour
	// highFailureCount: more than this many failures in the recent builds
	// raises the build-failure severity to high.
	highFailureCount = 2
)

// AnalyzeIssues produces a point-in-time diagnostic snapshot across jobs,
// the build queue, and node health. It defaults to bypassing the cache since
// freshness matters for diagnostics; with useCache true the result is held
// under the standard 30-second window like any other response.
func (c *Client) AnalyzeIssues(ctx context.Context, useCache bool) (*model.AnalysisReport, error) {
	return cached(c.cache, "issues_analysis", useCache, func() (*model.AnalysisReport, error) {
		return c.analyze(ctx)
	})
}

// analyze fans out per-job analysis tasks, then checks the queue and the
// nodes. The three sources are failure-isolated: a job, queue, or node
// lookup error is logged and contributes nothing, without aborting the rest.
func (c *Client) analyze(ctx context.Context) (*model.AnalysisReport, error) {
	jobs, err := c.GetJobs(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("analyze issues: %w", err)
	}
	if len(jobs) > analysisJobLimit {
		jobs = jobs[:analysisJobLimit]
	}

	// One slot per job keeps the aggregate in job order regardless of
	// which task finishes first.
	perJob := make([][]model.Issue, len(jobs))

	var g errgroup.Group
	g.SetLimit(analysisJobLimit)
	for i, job := range jobs {
		g.Go(func() error {
			issues, err := c.analyzeJob(ctx, job)
			if err != nil {
				slog.Error("job analysis failed", "job", job.Name, "error", err)
				return nil
			}
			perJob[i] = issues
			return nil
		})
	}
	_ = g.Wait()

	var issues []model.Issue
	for _, ji := range perJob {
		issues = append(issues, ji...)
	}

	if items, err := c.GetQueue(ctx); err != nil {
		slog.Error("queue analysis failed", "error", err)
	} else {
		for _, item := range items {
			if !item.Stuck {
				continue
			}
			issues = append(issues, model.Issue{
				Type:     model.IssueStuckInQueue,
				Job:      item.Task.Name,
				Build:    "N/A",
				Time:     time.UnixMilli(item.BuildableStartMilliseconds),
				Severity: model.SeverityMedium,
				URL:      item.Task.URL,
			})
		}
	}

	if nodes, err := c.GetNodes(ctx); err != nil {
		slog.Error("node analysis failed", "error", err)
	} else {
		for _, node := range nodes {
			if !node.Offline || node.TemporarilyOffline {
				continue
			}
			// Offline status carries no timestamp of its own; the
			// observation time is the best available.
			issues = append(issues, model.Issue{
				Type:     model.IssueOfflineNode,
				Job:      "N/A",
				Build:    "N/A",
				Agent:    node.DisplayName,
				Time:     c.now(),
				Severity: model.SeverityHigh,
			})
		}
	}

	return &model.AnalysisReport{
		Issues:    issues,
		Summary:   model.Summarize(issues),
		Timestamp: c.now(),
	}, nil
}

// analyzeJob derives up to two issues for one job: a build failure from its
// recent builds, and a stuck build running for over an hour. Jobs that have
// never built contribute nothing.
func (c *Client) analyzeJob(ctx context.Context, job model.Job) ([]model.Issue, error) {
	details, err := c.GetJobDetails(ctx, job.Name, false)
	if err != nil {
		return nil, err
	}
	if details.LastBuild == nil {
		return nil, nil
	}

	builds, err := c.GetBuilds(ctx, job.Name, analysisBuildCount, false)
	if err != nil {
		return nil, err
	}

	var issues []model.Issue

	var failed []model.Build
	for _, b := range builds {
		if b.Result == model.BuildResultFailure {
			failed = append(failed, b)
		}
	}
	if len(failed) > 0 {
		severity := model.SeverityMedium
		if len(failed) > highFailureCount {
			severity = model.SeverityHigh
		}
		issues = append(issues, model.Issue{
			Type:     model.IssueBuildFailure,
			Job:      job.Name,
			Build:    fmt.Sprintf("#%d", failed[0].Number),
			Time:     failed[0].StartedAt(),
			Severity: severity,
			URL:      failed[0].URL,
		})
	}

	for _, b := range builds {
		if b.Building && c.now().Sub(b.StartedAt()) > stuckBuildAge {
			issues = append(issues, model.Issue{
				Type:     model.IssueStuckBuild,
				Job:      job.Name,
				Build:    fmt.Sprintf("#%d", b.Number),
				Time:     b.StartedAt(),
				Severity: model.SeverityHigh,
				URL:      b.URL,
			})
			break
		}
	}

	return issues, nil
}
