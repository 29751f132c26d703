package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"

	"github.com/ericfisherdev/jenkinsinsights/internal/domain/model"
	"github.com/ericfisherdev/jenkinsinsights/internal/scan"
)

// recentBuildCount is how many builds the troubleshoot view pulls for context.
const recentBuildCount = 5

// jobNamePattern extracts the first job path segment from a Jenkins URL.
var jobNamePattern = regexp.MustCompile(`/job/([^/]+)`)

// ErrJobNameNotFound is returned when a URL carries no /job/ segment.
var ErrJobNameNotFound = errors.New("could not determine job name from URL")

// TroubleshootReport is the assembled diagnostic view for one job URL.
type TroubleshootReport struct {
	JobName       string
	Job           *model.Job
	RecentBuilds  []model.Build
	ConsoleOutput string
	ConsoleIssues []scan.Issue
}

// TroubleshootService turns a pasted Jenkins job or build URL into a
// diagnostic report: job state, recent builds, and the last build's console
// output scanned for known error patterns. It depends on the client provider
// so it always talks to the currently active connection.
type TroubleshootService struct {
	provider *ClientProvider
	logger   *slog.Logger
}

// NewTroubleshootService creates a new TroubleshootService.
func NewTroubleshootService(provider *ClientProvider, logger *slog.Logger) *TroubleshootService {
	return &TroubleshootService{provider: provider, logger: logger}
}

// JobNameFromURL extracts the job name from a Jenkins job or build URL.
// Escaped names like "my%20job" come back decoded.
func JobNameFromURL(rawURL string) (string, error) {
	m := jobNamePattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", ErrJobNameNotFound
	}
	name, err := url.PathUnescape(m[1])
	if err != nil {
		return "", fmt.Errorf("decode job name %q: %w", m[1], err)
	}
	return name, nil
}

// TroubleshootURL builds the report for the job named in rawURL. Missing
// console output is tolerated so a report still comes back when the last
// build's log has rotated away; console text is masked before it is scanned
// or returned.
func (s *TroubleshootService) TroubleshootURL(ctx context.Context, rawURL string) (*TroubleshootReport, error) {
	jobName, err := JobNameFromURL(rawURL)
	if err != nil {
		return nil, err
	}

	client, err := s.provider.Get()
	if err != nil {
		return nil, err
	}

	job, err := client.GetJobDetails(ctx, jobName, false)
	if err != nil {
		return nil, fmt.Errorf("troubleshoot %q: %w", jobName, err)
	}

	builds, err := client.GetBuilds(ctx, jobName, recentBuildCount, false)
	if err != nil {
		return nil, fmt.Errorf("troubleshoot %q: %w", jobName, err)
	}

	report := &TroubleshootReport{
		JobName:      jobName,
		Job:          job,
		RecentBuilds: builds,
	}

	if job.LastBuild == nil {
		return report, nil
	}

	console, err := client.GetBuildConsoleOutput(ctx, jobName, job.LastBuild.Number)
	if err != nil {
		s.logger.Warn("console output unavailable",
			"job", jobName, "build", job.LastBuild.Number, "error", err)
		return report, nil
	}

	report.ConsoleOutput = scan.MaskSensitiveData(console)
	report.ConsoleIssues = scan.Scan(report.ConsoleOutput, scan.Quick())
	return report, nil
}
