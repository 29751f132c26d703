package model

import "time"

// Severity ranks how urgent a diagnostic finding is.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Issue type labels produced by the analyzer.
const (
	IssueBuildFailure = "Build Failure"
	IssueStuckBuild   = "Stuck Build"
	IssueStuckInQueue = "Stuck in Queue"
	IssueOfflineNode  = "Offline Node"
)

// Issue is a derived diagnostic finding. Issues are rebuilt from scratch on
// every analysis run and never persisted. Job, Build, and Agent use "N/A"
// where the source has no corresponding entity.
type Issue struct {
	Type     string
	Job      string
	Build    string // Build label, e.g. "#42".
	Agent    string
	Time     time.Time
	Severity Severity
	URL      string
}

// AnalysisSummary counts issues by type.
type AnalysisSummary struct {
	BuildFailures int
	StuckBuilds   int
	QueueIssues   int
	NodeIssues    int
}

// AnalysisReport is the point-in-time diagnostic snapshot returned by the analyzer.
type AnalysisReport struct {
	Issues    []Issue
	Summary   AnalysisSummary
	Timestamp time.Time
}

// Summarize tallies the given issues by type.
func Summarize(issues []Issue) AnalysisSummary {
	var s AnalysisSummary
	for _, issue := range issues {
		switch issue.Type {
		case IssueBuildFailure:
			s.BuildFailures++
		case IssueStuckBuild:
			s.StuckBuilds++
		case IssueStuckInQueue:
			s.QueueIssues++
		case IssueOfflineNode:
			s.NodeIssues++
		}
	}
	return s
}
