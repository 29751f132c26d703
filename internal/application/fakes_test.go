package application_test

import (
	"context"
	"errors"

	"github.com/ericfisherdev/jenkinsinsights/internal/domain/model"
	"github.com/ericfisherdev/jenkinsinsights/internal/domain/port/driven"
)

// fakeJenkinsClient is a hand-rolled driven.JenkinsClient whose per-method
// fields control the canned responses each test needs.
type fakeJenkinsClient struct {
	jobs       []model.Job
	jobDetails map[string]*model.Job
	builds     map[string][]model.Build
	console    map[string]string
	consoleErr error

	jobDetailsErr error
	buildsErr     error

	consoleCalls []string
}

var _ driven.JenkinsClient = (*fakeJenkinsClient)(nil)

func (f *fakeJenkinsClient) TestConnection(context.Context) bool { return true }

func (f *fakeJenkinsClient) ServerInfo(context.Context) (map[string]any, error) {
	return map[string]any{"mode": "NORMAL"}, nil
}

func (f *fakeJenkinsClient) GetJobs(context.Context, bool) ([]model.Job, error) {
	return f.jobs, nil
}

func (f *fakeJenkinsClient) GetJobDetails(_ context.Context, jobName string, _ bool) (*model.Job, error) {
	if f.jobDetailsErr != nil {
		return nil, f.jobDetailsErr
	}
	job, ok := f.jobDetails[jobName]
	if !ok {
		return nil, errors.New("job not found: " + jobName)
	}
	return job, nil
}

func (f *fakeJenkinsClient) GetBuilds(_ context.Context, jobName string, _ int, _ bool) ([]model.Build, error) {
	if f.buildsErr != nil {
		return nil, f.buildsErr
	}
	return f.builds[jobName], nil
}

func (f *fakeJenkinsClient) GetBuildDetails(context.Context, string, int) (map[string]any, error) {
	return map[string]any{}, nil
}

func (f *fakeJenkinsClient) GetBuildConsoleOutput(_ context.Context, jobName string, _ int) (string, error) {
	f.consoleCalls = append(f.consoleCalls, jobName)
	if f.consoleErr != nil {
		return "", f.consoleErr
	}
	return f.console[jobName], nil
}

func (f *fakeJenkinsClient) GetNodes(context.Context) ([]model.Node, error) { return nil, nil }

func (f *fakeJenkinsClient) GetQueue(context.Context) ([]model.QueueItem, error) { return nil, nil }

func (f *fakeJenkinsClient) GetPlugins(context.Context) ([]model.Plugin, error) { return nil, nil }

func (f *fakeJenkinsClient) GetSystemStats(context.Context) (*model.SystemStats, error) {
	return &model.SystemStats{}, nil
}

func (f *fakeJenkinsClient) TriggerBuild(context.Context, string, map[string]string) error {
	return nil
}

func (f *fakeJenkinsClient) AnalyzeIssues(context.Context, bool) (*model.AnalysisReport, error) {
	return &model.AnalysisReport{}, nil
}
