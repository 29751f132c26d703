package application_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/jenkinsinsights/internal/application"
	"github.com/ericfisherdev/jenkinsinsights/internal/domain/model"
	"github.com/ericfisherdev/jenkinsinsights/internal/domain/port/driven"
)

func TestJobNameFromURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr error
	}{
		{name: "job url", url: "https://jenkins.example.com/job/backend-api/", want: "backend-api"},
		{name: "build url", url: "https://jenkins.example.com/job/backend-api/42/console", want: "backend-api"},
		{name: "nested folder takes first segment", url: "https://jenkins.example.com/job/team/job/backend-api/", want: "team"},
		{name: "escaped name decoded", url: "https://jenkins.example.com/job/my%20job/", want: "my job"},
		{name: "no job segment", url: "https://jenkins.example.com/view/all/", wantErr: application.ErrJobNameNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := application.JobNameFromURL(tt.url)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTroubleshootFixture(t *testing.T, client driven.JenkinsClient) *application.TroubleshootService {
	t.Helper()
	provider := application.NewClientProvider(func(model.Connection) (driven.JenkinsClient, error) {
		return client, nil
	})
	require.NoError(t, provider.Activate(model.Connection{ID: "c1", URL: "https://jenkins.example.com"}))
	return application.NewTroubleshootService(provider, slog.Default())
}

func TestTroubleshootURL(t *testing.T) {
	client := &fakeJenkinsClient{
		jobDetails: map[string]*model.Job{
			"backend-api": {
				Name:      "backend-api",
				Color:     "red",
				LastBuild: &model.Build{Number: 42, Result: model.BuildResultFailure},
			},
		},
		builds: map[string][]model.Build{
			"backend-api": {
				{Number: 42, Result: model.BuildResultFailure},
				{Number: 41, Result: model.BuildResultSuccess},
			},
		},
		console: map[string]string{
			"backend-api": "Started by user admin\nERROR: compilation failed\npassword=\"hunter2\"\nFinished: FAILURE",
		},
	}
	svc := newTroubleshootFixture(t, client)

	report, err := svc.TroubleshootURL(context.Background(), "https://jenkins.example.com/job/backend-api/42/")
	require.NoError(t, err)

	assert.Equal(t, "backend-api", report.JobName)
	assert.Equal(t, "red", report.Job.Color)
	assert.Len(t, report.RecentBuilds, 2)

	// Secrets are masked before the console leaves the service.
	assert.NotContains(t, report.ConsoleOutput, "hunter2")
	assert.Contains(t, report.ConsoleOutput, `password="****"`)

	require.NotEmpty(t, report.ConsoleIssues)
	assert.Equal(t, 2, report.ConsoleIssues[0].Line)
}

func TestTroubleshootURLNoLastBuild(t *testing.T) {
	client := &fakeJenkinsClient{
		jobDetails: map[string]*model.Job{
			"fresh-job": {Name: "fresh-job", Color: "notbuilt"},
		},
	}
	svc := newTroubleshootFixture(t, client)

	report, err := svc.TroubleshootURL(context.Background(), "https://jenkins.example.com/job/fresh-job/")
	require.NoError(t, err)

	assert.Empty(t, report.ConsoleOutput)
	assert.Empty(t, report.ConsoleIssues)
	assert.Empty(t, client.consoleCalls)
}

func TestTroubleshootURLConsoleFailureTolerated(t *testing.T) {
	client := &fakeJenkinsClient{
		jobDetails: map[string]*model.Job{
			"backend-api": {
				Name:      "backend-api",
				LastBuild: &model.Build{Number: 42},
			},
		},
		consoleErr: errors.New("log rotated away"),
	}
	svc := newTroubleshootFixture(t, client)

	report, err := svc.TroubleshootURL(context.Background(), "https://jenkins.example.com/job/backend-api/")
	require.NoError(t, err)

	assert.Equal(t, "backend-api", report.JobName)
	assert.Empty(t, report.ConsoleOutput)
}

func TestTroubleshootURLJobFailure(t *testing.T) {
	client := &fakeJenkinsClient{jobDetailsErr: errors.New("status 404")}
	svc := newTroubleshootFixture(t, client)

	_, err := svc.TroubleshootURL(context.Background(), "https://jenkins.example.com/job/missing/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `troubleshoot "missing"`)
}

func TestTroubleshootURLNoActiveConnection(t *testing.T) {
	provider := application.NewClientProvider(func(model.Connection) (driven.JenkinsClient, error) {
		return &fakeJenkinsClient{}, nil
	})
	svc := application.NewTroubleshootService(provider, slog.Default())

	_, err := svc.TroubleshootURL(context.Background(), "https://jenkins.example.com/job/backend-api/")
	assert.ErrorIs(t, err, application.ErrNoActiveConnection)
}
