package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/jenkinsinsights/internal/domain/model"
	"github.com/ericfisherdev/jenkinsinsights/internal/scan"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// ConnectionRequest is the body for creating or testing a connection.
// AuthType may be omitted; it is then inferred from the populated fields.
type ConnectionRequest struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	AuthType   string `json:"auth_type"`
	Username   string `json:"username"`
	Token      string `json:"token"`
	Password   string `json:"password"`
	SSOToken   string `json:"sso_token"`
	CookieAuth bool   `json:"cookie_auth"`
	Folder     string `json:"folder"`
	Color      string `json:"color"`
}

func (req ConnectionRequest) toModel() model.Connection {
	return model.Connection{
		Name:       req.Name,
		URL:        req.URL,
		AuthType:   model.AuthType(req.AuthType),
		Username:   req.Username,
		Token:      req.Token,
		Password:   req.Password,
		SSOToken:   req.SSOToken,
		CookieAuth: req.CookieAuth,
		Folder:     req.Folder,
		Color:      req.Color,
	}
}

// ConnectionResponse is the JSON representation of a stored connection.
// Credential values are never echoed back.
type ConnectionResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	AuthType   string `json:"auth_type"`
	Username   string `json:"username"`
	CookieAuth bool   `json:"cookie_auth"`
	Folder     string `json:"folder,omitempty"`
	Color      string `json:"color,omitempty"`
	Active     bool   `json:"active"`
	CreatedAt  string `json:"created_at"`
}

func toConnectionResponse(conn model.Connection, active bool) ConnectionResponse {
	return ConnectionResponse{
		ID:         conn.ID,
		Name:       conn.Name,
		URL:        conn.URL,
		AuthType:   string(conn.AuthType),
		Username:   conn.Username,
		CookieAuth: conn.CookieAuth,
		Folder:     conn.Folder,
		Color:      conn.Color,
		Active:     active,
		CreatedAt:  conn.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// TestConnectionResponse reports whether a connection's credentials work.
// Auth failures are a normal outcome here, not a server error.
type TestConnectionResponse struct {
	Success bool `json:"success"`
}

// BuildResponse is the JSON representation of one build.
type BuildResponse struct {
	Number    int    `json:"number"`
	URL       string `json:"url"`
	Result    string `json:"result"`
	Building  bool   `json:"building"`
	Timestamp int64  `json:"timestamp"`
	Duration  int64  `json:"duration"`
}

func toBuildResponse(b model.Build) BuildResponse {
	return BuildResponse{
		Number:    b.Number,
		URL:       b.URL,
		Result:    b.Result,
		Building:  b.Building,
		Timestamp: b.Timestamp,
		Duration:  b.Duration,
	}
}

// JobResponse is the JSON representation of a job. LastBuild and Builds are
// only populated on the detail endpoint.
type JobResponse struct {
	Name      string          `json:"name"`
	URL       string          `json:"url"`
	Color     string          `json:"color"`
	LastBuild *BuildResponse  `json:"last_build,omitempty"`
	Builds    []BuildResponse `json:"builds,omitempty"`
}

func toJobResponse(job model.Job) JobResponse {
	resp := JobResponse{
		Name:  job.Name,
		URL:   job.URL,
		Color: job.Color,
	}
	if job.LastBuild != nil {
		lb := toBuildResponse(*job.LastBuild)
		resp.LastBuild = &lb
	}
	return resp
}

// TriggerBuildRequest is the body for scheduling a build.
type TriggerBuildRequest struct {
	Parameters map[string]string `json:"parameters"`
}

// ConsoleIssueResponse is one classified console line.
type ConsoleIssueResponse struct {
	Line     int    `json:"line"`
	Text     string `json:"text"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
}

func toConsoleIssueResponses(issues []scan.Issue) []ConsoleIssueResponse {
	resp := make([]ConsoleIssueResponse, 0, len(issues))
	for _, issue := range issues {
		resp = append(resp, ConsoleIssueResponse{
			Line:     issue.Line,
			Text:     issue.Text,
			Type:     issue.Type,
			Severity: string(issue.Severity),
		})
	}
	return resp
}

// ConsoleResponse carries the masked console text plus its scan findings.
type ConsoleResponse struct {
	Output string                 `json:"output"`
	Issues []ConsoleIssueResponse `json:"issues"`
}

// NodeResponse is the JSON representation of a worker node.
type NodeResponse struct {
	DisplayName        string         `json:"display_name"`
	Description        string         `json:"description"`
	Offline            bool           `json:"offline"`
	TemporarilyOffline bool           `json:"temporarily_offline"`
	MonitorData        map[string]any `json:"monitor_data,omitempty"`
}

func toNodeResponse(n model.Node) NodeResponse {
	return NodeResponse{
		DisplayName:        n.DisplayName,
		Description:        n.Description,
		Offline:            n.Offline,
		TemporarilyOffline: n.TemporarilyOffline,
		MonitorData:        n.MonitorData,
	}
}

// QueueItemResponse is the JSON representation of a queued build request.
type QueueItemResponse struct {
	ID        int64  `json:"id"`
	TaskName  string `json:"task_name"`
	TaskURL   string `json:"task_url"`
	Stuck     bool   `json:"stuck"`
	Why       string `json:"why"`
	Buildable int64  `json:"buildable_start_ms"`
}

func toQueueItemResponse(item model.QueueItem) QueueItemResponse {
	return QueueItemResponse{
		ID:        item.ID,
		TaskName:  item.Task.Name,
		TaskURL:   item.Task.URL,
		Stuck:     item.Stuck,
		Why:       item.Why,
		Buildable: item.BuildableStartMilliseconds,
	}
}

// PluginResponse is the JSON representation of an installed plugin.
type PluginResponse struct {
	ShortName string `json:"short_name"`
	LongName  string `json:"long_name"`
	Version   string `json:"version"`
	Active    bool   `json:"active"`
	Enabled   bool   `json:"enabled"`
}

func toPluginResponse(p model.Plugin) PluginResponse {
	return PluginResponse{
		ShortName: p.ShortName,
		LongName:  p.LongName,
		Version:   p.Version,
		Active:    p.Active,
		Enabled:   p.Enabled,
	}
}

// SystemResponse bundles node, queue, and load state. Sections that could not
// be fetched are left empty with the failure recorded in Errors, so one
// flaky endpoint never blanks the whole view.
type SystemResponse struct {
	Nodes  []NodeResponse      `json:"nodes"`
	Queue  []QueueItemResponse `json:"queue"`
	Stats  *SystemStatsBody    `json:"stats,omitempty"`
	Errors map[string]string   `json:"errors,omitempty"`
}

// SystemStatsBody passes the raw load and executor documents through.
type SystemStatsBody struct {
	Load         map[string]any `json:"load"`
	ExecutorInfo map[string]any `json:"executor_info"`
}

// IssueResponse is one diagnostic finding from the analyzer.
type IssueResponse struct {
	Type     string `json:"type"`
	Job      string `json:"job"`
	Build    string `json:"build"`
	Agent    string `json:"agent"`
	Time     string `json:"time"`
	Severity string `json:"severity"`
	URL      string `json:"url,omitempty"`
}

// AnalysisResponse is the full diagnostic snapshot.
type AnalysisResponse struct {
	Issues    []IssueResponse `json:"issues"`
	Summary   SummaryBody     `json:"summary"`
	Timestamp string          `json:"timestamp"`
}

// SummaryBody counts analyzer findings by type.
type SummaryBody struct {
	BuildFailures int `json:"build_failures"`
	StuckBuilds   int `json:"stuck_builds"`
	QueueIssues   int `json:"queue_issues"`
	NodeIssues    int `json:"node_issues"`
}

func toAnalysisResponse(report model.AnalysisReport) AnalysisResponse {
	issues := make([]IssueResponse, 0, len(report.Issues))
	for _, issue := range report.Issues {
		issues = append(issues, IssueResponse{
			Type:     issue.Type,
			Job:      issue.Job,
			Build:    issue.Build,
			Agent:    issue.Agent,
			Time:     issue.Time.UTC().Format(time.RFC3339),
			Severity: string(issue.Severity),
			URL:      issue.URL,
		})
	}
	return AnalysisResponse{
		Issues: issues,
		Summary: SummaryBody{
			BuildFailures: report.Summary.BuildFailures,
			StuckBuilds:   report.Summary.StuckBuilds,
			QueueIssues:   report.Summary.QueueIssues,
			NodeIssues:    report.Summary.NodeIssues,
		},
		Timestamp: report.Timestamp.UTC().Format(time.RFC3339),
	}
}

// TroubleshootRequest is the body for the troubleshoot endpoint.
type TroubleshootRequest struct {
	URL string `json:"url"`
}

// TroubleshootResponse is the diagnostic report for one job URL.
type TroubleshootResponse struct {
	JobName       string                 `json:"job_name"`
	Job           *JobResponse           `json:"job,omitempty"`
	RecentBuilds  []BuildResponse        `json:"recent_builds"`
	ConsoleOutput string                 `json:"console_output"`
	ConsoleIssues []ConsoleIssueResponse `json:"console_issues"`
}

// HealthResponse is the health check response body.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
