package jenkins_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/jenkinsinsights/internal/adapter/driven/jenkins"
	"github.com/ericfisherdev/jenkinsinsights/internal/domain/model"
)

func newTestClient(t *testing.T, conn model.Connection, handler http.Handler) *jenkins.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conn.URL = srv.URL
	client, err := jenkins.NewClient(conn,
		jenkins.WithHTTPClient(srv.Client()),
		jenkins.WithRetryPolicy(0, time.Millisecond),
	)
	require.NoError(t, err)
	return client
}

func TestNewClientRejectsInvalidConnection(t *testing.T) {
	_, err := jenkins.NewClient(model.Connection{
		URL:      "https://jenkins.example.com",
		AuthType: model.AuthBasic,
		Username: "ci",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token")
}

func TestClientAuthHeaders(t *testing.T) {
	tests := []struct {
		name string
		conn model.Connection
		want string
	}{
		{
			name: "username and token use basic auth",
			conn: model.Connection{Username: "ci", Token: "tok"},
			want: "Basic " + base64.StdEncoding.EncodeToString([]byte("ci:tok")),
		},
		{
			name: "token alone uses bearer",
			conn: model.Connection{Token: "tok"},
			want: "Bearer tok",
		},
		{
			name: "sso token uses bearer",
			conn: model.Connection{SSOToken: "sso-tok"},
			want: "Bearer sso-tok",
		},
		{
			name: "username and password use basic auth",
			conn: model.Connection{Username: "ci", Password: "pw"},
			want: "Basic " + base64.StdEncoding.EncodeToString([]byte("ci:pw")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			client := newTestClient(t, tt.conn, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				_, _ = w.Write([]byte(`{}`))
			}))

			assert.True(t, client.TestConnection(context.Background()))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTestConnectionFailure(t *testing.T) {
	client := newTestClient(t, model.Connection{Token: "tok"},
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

	assert.False(t, client.TestConnection(context.Background()))
}

func TestGetJobs(t *testing.T) {
	var gotPath, gotTree string
	client := newTestClient(t, model.Connection{Token: "tok"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotTree = r.URL.Query().Get("tree")
			_, _ = w.Write([]byte(`{"jobs":[
				{"name":"backend-api","url":"http://j/job/backend-api/","color":"blue"},
				{"name":"frontend","url":"http://j/job/frontend/","color":"red_anime"}
			]}`))
		}))

	jobs, err := client.GetJobs(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, "/api/json", gotPath)
	assert.Equal(t, "jobs[name,url,color]", gotTree)
	require.Len(t, jobs, 2)
	assert.Equal(t, "backend-api", jobs[0].Name)
	assert.Equal(t, "red_anime", jobs[1].Color)
}

func TestGetJobDetailsEscapesJobName(t *testing.T) {
	var gotPath string
	client := newTestClient(t, model.Connection{Token: "tok"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.EscapedPath()
			_, _ = w.Write([]byte(`{"name":"my job","color":"blue",
				"lastBuild":{"number":7,"result":"SUCCESS","timestamp":1717243200000,"duration":65000,"building":false}}`))
		}))

	job, err := client.GetJobDetails(context.Background(), "my job", false)
	require.NoError(t, err)

	assert.Equal(t, "/job/my%20job/api/json", gotPath)
	require.NotNil(t, job.LastBuild)
	assert.Equal(t, 7, job.LastBuild.Number)
	assert.Equal(t, model.BuildResultSuccess, job.LastBuild.Result)
}

func TestGetBuildsNullResultWhileBuilding(t *testing.T) {
	var gotTree string
	client := newTestClient(t, model.Connection{Token: "tok"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotTree = r.URL.Query().Get("tree")
			_, _ = w.Write([]byte(`{"builds":[
				{"number":8,"result":null,"timestamp":1717243300000,"duration":0,"building":true},
				{"number":7,"result":"FAILURE","timestamp":1717243200000,"duration":65000,"building":false}
			]}`))
		}))

	builds, err := client.GetBuilds(context.Background(), "backend-api", 5, false)
	require.NoError(t, err)

	assert.Equal(t, "builds[number,url,result,timestamp,duration,building]{0,5}", gotTree)
	require.Len(t, builds, 2)
	assert.Equal(t, "", builds[0].Result)
	assert.True(t, builds[0].Building)
	assert.Equal(t, model.BuildResultFailure, builds[1].Result)
}

func TestGetBuildsDefaultCount(t *testing.T) {
	var gotTree string
	client := newTestClient(t, model.Connection{Token: "tok"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotTree = r.URL.Query().Get("tree")
			_, _ = w.Write([]byte(`{"builds":[]}`))
		}))

	_, err := client.GetBuilds(context.Background(), "backend-api", 0, false)
	require.NoError(t, err)
	assert.Equal(t, "builds[number,url,result,timestamp,duration,building]{0,10}", gotTree)
}

func TestGetBuildConsoleOutput(t *testing.T) {
	var gotPath string
	client := newTestClient(t, model.Connection{Token: "tok"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, _ = w.Write([]byte("Started by timer\nFinished: SUCCESS\n"))
		}))

	console, err := client.GetBuildConsoleOutput(context.Background(), "backend-api", 42)
	require.NoError(t, err)

	assert.Equal(t, "/job/backend-api/42/consoleText", gotPath)
	assert.Equal(t, "Started by timer\nFinished: SUCCESS\n", console)
}

func TestGetNodes(t *testing.T) {
	client := newTestClient(t, model.Connection{Token: "tok"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/computer/api/json", r.URL.Path)
			_, _ = w.Write([]byte(`{"computer":[
				{"displayName":"built-in","offline":false,"temporarilyOffline":false},
				{"displayName":"agent-1","offline":true,"temporarilyOffline":false}
			]}`))
		}))

	nodes, err := client.GetNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.True(t, nodes[1].Offline)
}

func TestGetQueue(t *testing.T) {
	client := newTestClient(t, model.Connection{Token: "tok"},
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"items":[
				{"id":99,"task":{"name":"backend-api","url":"http://j/job/backend-api/"},
				 "stuck":true,"why":"Waiting for next available executor","buildableStartMilliseconds":1717243200000}
			]}`))
		}))

	items, err := client.GetQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Stuck)
	assert.Equal(t, "backend-api", items[0].Task.Name)
}

func TestGetSystemStats(t *testing.T) {
	client := newTestClient(t, model.Connection{Token: "tok"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/overallLoad/api/json":
				_, _ = w.Write([]byte(`{"busyExecutors":{"hour":{"latest":2.0}}}`))
			case "/computer/api/json":
				_, _ = w.Write([]byte(`{"computer":[{"displayName":"built-in","executors":[{"idle":true}]}]}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))

	stats, err := client.GetSystemStats(context.Background())
	require.NoError(t, err)
	assert.Contains(t, stats.Load, "busyExecutors")
	assert.Contains(t, stats.ExecutorInfo, "computer")
}

func TestTriggerBuildWithoutParameters(t *testing.T) {
	var posts []string
	client := newTestClient(t, model.Connection{Token: "tok"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				posts = append(posts, r.URL.Path)
				w.WriteHeader(http.StatusCreated)
				return
			}
			// Property lookup: job declares no parameters.
			_, _ = w.Write([]byte(`{"property":[]}`))
		}))

	err := client.TriggerBuild(context.Background(), "backend-api", map[string]string{"BRANCH": "main"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/job/backend-api/build"}, posts)
}

func TestTriggerBuildWithParameters(t *testing.T) {
	var postPath, branch string
	client := newTestClient(t, model.Connection{Token: "tok"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				postPath = r.URL.Path
				branch = r.URL.Query().Get("BRANCH")
				w.WriteHeader(http.StatusCreated)
				return
			}
			_, _ = w.Write([]byte(`{"property":[
				{"_class":"hudson.model.ParametersDefinitionProperty"}
			]}`))
		}))

	err := client.TriggerBuild(context.Background(), "backend-api", map[string]string{"BRANCH": "main"})
	require.NoError(t, err)
	assert.Equal(t, "/job/backend-api/buildWithParameters", postPath)
	assert.Equal(t, "main", branch)
}

func TestTriggerBuildParameterizedJobWithoutValues(t *testing.T) {
	var postPath string
	client := newTestClient(t, model.Connection{Token: "tok"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				postPath = r.URL.Path
				w.WriteHeader(http.StatusCreated)
				return
			}
			_, _ = w.Write([]byte(`{"property":[
				{"_class":"hudson.model.ParametersDefinitionProperty"}
			]}`))
		}))

	err := client.TriggerBuild(context.Background(), "backend-api", nil)
	require.NoError(t, err)
	assert.Equal(t, "/job/backend-api/build", postPath)
}

func TestGetJobsCached(t *testing.T) {
	requests := 0
	client := newTestClient(t, model.Connection{Token: "tok"},
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests++
			_, _ = w.Write([]byte(`{"jobs":[{"name":"backend-api","color":"blue"}]}`))
		}))

	_, err := client.GetJobs(context.Background(), true)
	require.NoError(t, err)
	_, err = client.GetJobs(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, 1, requests)
}

func TestGetJobsClientErrorNotRetried(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := jenkins.NewClient(
		model.Connection{URL: srv.URL, Token: "tok"},
		jenkins.WithHTTPClient(srv.Client()),
		jenkins.WithRetryPolicy(3, time.Millisecond),
	)
	require.NoError(t, err)

	_, err = client.GetJobs(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get jobs")
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, 1, requests)
}

func TestGetJobsServerErrorRetried(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		if requests < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"jobs":[{"name":"backend-api","color":"blue"}]}`))
	}))
	defer srv.Close()

	client, err := jenkins.NewClient(
		model.Connection{URL: srv.URL, Token: "tok"},
		jenkins.WithHTTPClient(srv.Client()),
		jenkins.WithRetryPolicy(3, time.Millisecond),
	)
	require.NoError(t, err)

	jobs, err := client.GetJobs(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, 3, requests)
}
