// Package jenkins implements the JenkinsClient port against the Jenkins
// JSON "tree" API. Each Client is bound to a single connection and owns its
// transport configuration, response cache, and retry policy.
package jenkins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/ericfisherdev/jenkinsinsights/internal/domain/model"
	"github.com/ericfisherdev/jenkinsinsights/internal/domain/port/driven"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetries    = 3
	defaultBaseDelay  = time.Second
	cacheExpiry       = 30 * time.Second
	defaultBuildCount = 10
)

// Compile-time interface satisfaction check.
var _ driven.JenkinsClient = (*Client)(nil)

// Client implements the driven.JenkinsClient port over net/http.
// The auth scheme is decided once at construction into a header set plus an
// optional basic-auth tuple; request paths never re-branch on the auth type.
type Client struct {
	baseURL    string
	httpClient *http.Client
	header     http.Header
	basicUser  string
	basicPass  string
	useBasic   bool
	cache      *responseCache
	maxRetries uint64
	baseDelay  time.Duration
	now        func() time.Time
}

// Option customizes a Client. Options exist mainly for tests, which inject
// an httptest client, a fast retry policy, and a fixed clock.
type Option func(*Client)

// WithHTTPClient replaces the default 30-second-timeout HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryPolicy overrides the retry count and base backoff delay.
func WithRetryPolicy(maxRetries uint64, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseDelay = baseDelay
	}
}

// WithClock overrides the time source used for cache expiry and
// stuck-build detection.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client for the given connection. The connection's auth
// type is inferred from its credentials when absent and validated before any
// network call; a validation failure is returned immediately.
func NewClient(conn model.Connection, opts ...Option) (*Client, error) {
	conn = conn.Normalize()
	if err := conn.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:    strings.TrimRight(conn.URL, "/"),
		header:     http.Header{},
		maxRetries: defaultRetries,
		baseDelay:  defaultBaseDelay,
		now:        time.Now,
	}
	c.header.Set("Content-Type", "application/json")

	var wantCookies bool
	switch conn.AuthType {
	case model.AuthBasic:
		c.useBasic, c.basicUser, c.basicPass = true, conn.Username, conn.Token
	case model.AuthToken:
		c.header.Set("Authorization", "Bearer "+conn.Token)
	case model.AuthSSO:
		if conn.SSOToken != "" {
			c.header.Set("Authorization", "Bearer "+conn.SSOToken)
		}
		wantCookies = conn.CookieAuth
	case model.AuthBasicAuth:
		c.useBasic, c.basicUser, c.basicPass = true, conn.Username, conn.Password
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if wantCookies && c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}
	c.cache = newResponseCache(cacheExpiry, c.now)

	return c, nil
}

// StatusError reports a non-success HTTP response from the Jenkins server.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return "jenkins returned " + e.Status
}

// IsClientError reports whether err is an HTTP 4xx response. Client errors
// are never retried.
func IsClientError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 400 && se.Code < 500
}

// do issues a request with the client's auth configuration applied.
func (c *Client) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header = c.header.Clone()
	if c.useBasic {
		req.SetBasicAuth(c.basicUser, c.basicPass)
	}
	return c.httpClient.Do(req)
}

// get performs a GET and returns the response body. Responses with status
// 400 or above become a *StatusError.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	return body, nil
}

// getJSON performs a GET and decodes the JSON response body into v.
func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// post performs a body-less POST, as used by the build trigger endpoints.
func (c *Client) post(ctx context.Context, path string) error {
	resp, err := c.do(ctx, http.MethodPost, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	return nil
}

// TestConnection attempts a lightweight server-info request and reports
// whether it answered with HTTP 200. It never returns an error so callers
// can render a plain success/failure indicator.
func (c *Client) TestConnection(ctx context.Context) bool {
	resp, err := c.do(ctx, http.MethodGet, "/api/json")
	if err != nil {
		slog.Debug("connection test failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// ServerInfo returns the raw server-info document.
func (c *Client) ServerInfo(ctx context.Context) (map[string]any, error) {
	var info map[string]any
	if err := c.getJSON(ctx, "/api/json", &info); err != nil {
		return nil, fmt.Errorf("get server info: %w", err)
	}
	return info, nil
}

// GetJobs lists all jobs using a tree projection of name, url, and color.
func (c *Client) GetJobs(ctx context.Context, useCache bool) ([]model.Job, error) {
	return cached(c.cache, "jobs", useCache, func() ([]model.Job, error) {
		return retry(ctx, c, "get jobs", func() ([]model.Job, error) {
			var payload struct {
				Jobs []jobJSON `json:"jobs"`
			}
			if err := c.getJSON(ctx, "/api/json?tree=jobs[name,url,color]", &payload); err != nil {
				return nil, err
			}

			jobs := make([]model.Job, 0, len(payload.Jobs))
			for _, j := range payload.Jobs {
				jobs = append(jobs, j.toModel())
			}
			return jobs, nil
		})
	})
}

// GetJobDetails returns one job including its last build.
func (c *Client) GetJobDetails(ctx context.Context, jobName string, useCache bool) (*model.Job, error) {
	return cached(c.cache, "job_details_"+jobName, useCache, func() (*model.Job, error) {
		return retry(ctx, c, fmt.Sprintf("get job details for %s", jobName), func() (*model.Job, error) {
			path := "/job/" + url.PathEscape(jobName) +
				"/api/json?tree=name,url,color,lastBuild[number,url,result,timestamp,duration,building]"

			var payload jobJSON
			if err := c.getJSON(ctx, path, &payload); err != nil {
				return nil, err
			}

			job := payload.toModel()
			return &job, nil
		})
	})
}

// GetBuilds returns up to count most recent builds for a job.
func (c *Client) GetBuilds(ctx context.Context, jobName string, count int, useCache bool) ([]model.Build, error) {
	if count <= 0 {
		count = defaultBuildCount
	}

	key := fmt.Sprintf("builds_%s_%d", jobName, count)
	return cached(c.cache, key, useCache, func() ([]model.Build, error) {
		return retry(ctx, c, fmt.Sprintf("get builds for %s", jobName), func() ([]model.Build, error) {
			path := fmt.Sprintf("/job/%s/api/json?tree=builds[number,url,result,timestamp,duration,building]{0,%d}",
				url.PathEscape(jobName), count)

			var payload struct {
				Builds []buildJSON `json:"builds"`
			}
			if err := c.getJSON(ctx, path, &payload); err != nil {
				return nil, err
			}

			builds := make([]model.Build, 0, len(payload.Builds))
			for _, b := range payload.Builds {
				builds = append(builds, b.toModel())
			}
			return builds, nil
		})
	})
}

// GetBuildDetails returns the full build document, uncached.
func (c *Client) GetBuildDetails(ctx context.Context, jobName string, buildNumber int) (map[string]any, error) {
	path := fmt.Sprintf("/job/%s/%d/api/json", url.PathEscape(jobName), buildNumber)

	var doc map[string]any
	if err := c.getJSON(ctx, path, &doc); err != nil {
		return nil, fmt.Errorf("get build details for %s #%d: %w", jobName, buildNumber, err)
	}
	return doc, nil
}

// GetBuildConsoleOutput returns the raw console text for a build. Console
// logs can be large and must reflect the latest state, so this is uncached.
func (c *Client) GetBuildConsoleOutput(ctx context.Context, jobName string, buildNumber int) (string, error) {
	path := fmt.Sprintf("/job/%s/%d/consoleText", url.PathEscape(jobName), buildNumber)

	body, err := c.get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("get console output for %s #%d: %w", jobName, buildNumber, err)
	}
	return string(body), nil
}

// GetNodes lists agent machines with their offline state, uncached.
func (c *Client) GetNodes(ctx context.Context) ([]model.Node, error) {
	var payload struct {
		Computer []nodeJSON `json:"computer"`
	}
	path := "/computer/api/json?tree=computer[displayName,description,offline,temporarilyOffline,monitorData]"
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, fmt.Errorf("get nodes: %w", err)
	}

	nodes := make([]model.Node, 0, len(payload.Computer))
	for _, n := range payload.Computer {
		nodes = append(nodes, n.toModel())
	}
	return nodes, nil
}

// GetQueue lists pending build requests, uncached.
func (c *Client) GetQueue(ctx context.Context) ([]model.QueueItem, error) {
	var payload struct {
		Items []queueItemJSON `json:"items"`
	}
	path := "/queue/api/json?tree=items[id,task[name,url],stuck,why,buildableStartMilliseconds]"
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, fmt.Errorf("get queue: %w", err)
	}

	items := make([]model.QueueItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, item.toModel())
	}
	return items, nil
}

// GetPlugins lists installed plugins, uncached.
func (c *Client) GetPlugins(ctx context.Context) ([]model.Plugin, error) {
	var payload struct {
		Plugins []pluginJSON `json:"plugins"`
	}
	path := "/pluginManager/api/json?tree=plugins[shortName,longName,version,active,enabled]"
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, fmt.Errorf("get plugins: %w", err)
	}

	plugins := make([]model.Plugin, 0, len(payload.Plugins))
	for _, p := range payload.Plugins {
		plugins = append(plugins, p.toModel())
	}
	return plugins, nil
}

// GetSystemStats fetches the overall load document and the executor
// projection of the computer listing.
func (c *Client) GetSystemStats(ctx context.Context) (*model.SystemStats, error) {
	var load map[string]any
	if err := c.getJSON(ctx, "/overallLoad/api/json", &load); err != nil {
		return nil, fmt.Errorf("get system stats: %w", err)
	}

	var executors map[string]any
	path := "/computer/api/json?tree=computer[displayName,executors[idle,likelyStuck,progress]]"
	if err := c.getJSON(ctx, path, &executors); err != nil {
		return nil, fmt.Errorf("get system stats: %w", err)
	}

	return &model.SystemStats{Load: load, ExecutorInfo: executors}, nil
}

// TriggerBuild schedules a build. When the job declares a parameters
// definition and parameters were supplied, it posts to buildWithParameters
// with the parameters as query values; otherwise it posts to the plain
// build endpoint.
func (c *Client) TriggerBuild(ctx context.Context, jobName string, parameters map[string]string) error {
	hasParams, err := c.jobHasParameters(ctx, jobName)
	if err != nil {
		return fmt.Errorf("trigger build for %s: %w", jobName, err)
	}

	encoded := url.PathEscape(jobName)
	path := "/job/" + encoded + "/build"
	if hasParams && len(parameters) > 0 {
		vals := url.Values{}
		for k, v := range parameters {
			vals.Set(k, v)
		}
		path = "/job/" + encoded + "/buildWithParameters?" + vals.Encode()
	}

	if err := c.post(ctx, path); err != nil {
		return fmt.Errorf("trigger build for %s: %w", jobName, err)
	}
	return nil
}

// jobHasParameters checks the job's property list for a parameters
// definition via a tree projection of the property classes.
func (c *Client) jobHasParameters(ctx context.Context, jobName string) (bool, error) {
	var payload struct {
		Property []struct {
			Class string `json:"_class"`
		} `json:"property"`
	}
	path := "/job/" + url.PathEscape(jobName) + "/api/json?tree=property[_class]"
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return false, err
	}

	for _, p := range payload.Property {
		if strings.Contains(p.Class, "ParametersDefinitionProperty") {
			return true, nil
		}
	}
	return false, nil
}
