// Package httphandler is the HTTP driving adapter serving the REST API.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/jenkinsinsights/internal/application"
	"github.com/ericfisherdev/jenkinsinsights/internal/domain/port/driven"
	"github.com/ericfisherdev/jenkinsinsights/internal/scan"
)

// jobDetailBuildCount is how many builds the job detail endpoint returns.
const jobDetailBuildCount = 10

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	connStore       driven.ConnectionStore
	provider        *application.ClientProvider
	troubleshootSvc *application.TroubleshootService
	factory         application.ClientFactory
	catalog         []scan.Pattern
	logger          *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. catalog is the
// pattern set used to classify console output on the console endpoint.
func NewHandler(
	connStore driven.ConnectionStore,
	provider *application.ClientProvider,
	troubleshootSvc *application.TroubleshootService,
	factory application.ClientFactory,
	catalog []scan.Pattern,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		connStore:       connStore,
		provider:        provider,
		troubleshootSvc: troubleshootSvc,
		factory:         factory,
		catalog:         catalog,
		logger:          logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("GET /api/v1/connections", h.ListConnections)
	mux.HandleFunc("POST /api/v1/connections", h.AddConnection)
	mux.HandleFunc("POST /api/v1/connections/test", h.TestConnection)
	mux.HandleFunc("DELETE /api/v1/connections/{id}", h.RemoveConnection)
	mux.HandleFunc("POST /api/v1/connections/{id}/activate", h.ActivateConnection)

	mux.HandleFunc("GET /api/v1/jobs", h.ListJobs)
	mux.HandleFunc("GET /api/v1/jobs/{name}", h.GetJob)
	mux.HandleFunc("POST /api/v1/jobs/{name}/build", h.TriggerBuild)
	mux.HandleFunc("GET /api/v1/jobs/{name}/builds/{number}", h.GetBuild)
	mux.HandleFunc("GET /api/v1/jobs/{name}/builds/{number}/console", h.GetBuildConsole)

	mux.HandleFunc("GET /api/v1/server", h.GetServerInfo)
	mux.HandleFunc("GET /api/v1/system", h.GetSystem)
	mux.HandleFunc("GET /api/v1/plugins", h.ListPlugins)
	mux.HandleFunc("GET /api/v1/analysis", h.GetAnalysis)
	mux.HandleFunc("POST /api/v1/troubleshoot", h.Troubleshoot)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListConnections returns all stored connections without their credentials.
func (h *Handler) ListConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := h.connStore.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list connections", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	activeID := ""
	if active := h.provider.Active(); active != nil {
		activeID = active.ID
	}

	resp := make([]ConnectionResponse, 0, len(conns))
	for _, conn := range conns {
		resp = append(resp, toConnectionResponse(conn, conn.ID == activeID))
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddConnection stores a new connection. Credentials are validated against
// the declared (or inferred) auth type before anything is persisted.
func (h *Handler) AddConnection(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conn, err := h.connStore.Add(r.Context(), req.toModel())
	if err != nil {
		if strings.Contains(err.Error(), "required") || strings.Contains(err.Error(), "unknown auth type") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			writeError(w, http.StatusConflict, "connection already exists")
			return
		}
		h.logger.Error("failed to add connection", "name", req.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toConnectionResponse(conn, false))
}

// RemoveConnection deletes a connection. Removing the active connection also
// drops the live client.
func (h *Handler) RemoveConnection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	wasActive := false
	if active := h.provider.Active(); active != nil && active.ID == id {
		wasActive = true
	}

	if err := h.connStore.Remove(r.Context(), id); err != nil {
		if errors.Is(err, driven.ErrConnectionNotFound) {
			writeError(w, http.StatusNotFound, "connection not found")
			return
		}
		h.logger.Error("failed to remove connection", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if wasActive {
		h.provider.Clear()
	}

	w.WriteHeader(http.StatusNoContent)
}

// ActivateConnection marks a connection active and swaps in a fresh client
// for it.
func (h *Handler) ActivateConnection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	conn, err := h.connStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, driven.ErrConnectionNotFound) {
			writeError(w, http.StatusNotFound, "connection not found")
			return
		}
		h.logger.Error("failed to load connection", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.provider.Activate(*conn); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.connStore.SetActive(r.Context(), id); err != nil {
		h.logger.Error("failed to persist active connection", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toConnectionResponse(*conn, true))
}

// TestConnection checks whether the submitted credentials reach the server.
// An unreachable server or rejected credentials are a success:false result,
// never a server error.
func (h *Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := h.factory(req.toModel())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, TestConnectionResponse{
		Success: client.TestConnection(r.Context()),
	})
}

// ListJobs returns all jobs on the active server. A refresh query parameter
// bypasses the response cache.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w)
	if !ok {
		return
	}

	jobs, err := client.GetJobs(r.Context(), !r.URL.Query().Has("refresh"))
	if err != nil {
		h.logger.Error("failed to list jobs", "error", err)
		writeError(w, http.StatusBadGateway, "jenkins request failed")
		return
	}

	resp := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		resp = append(resp, toJobResponse(job))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetJob returns job detail plus its recent builds.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w)
	if !ok {
		return
	}
	name := r.PathValue("name")
	useCache := !r.URL.Query().Has("refresh")

	job, err := client.GetJobDetails(r.Context(), name, useCache)
	if err != nil {
		h.jenkinsError(w, err, "failed to get job", "job", name)
		return
	}

	builds, err := client.GetBuilds(r.Context(), name, jobDetailBuildCount, useCache)
	if err != nil {
		h.jenkinsError(w, err, "failed to get builds", "job", name)
		return
	}

	resp := toJobResponse(*job)
	resp.Builds = make([]BuildResponse, 0, len(builds))
	for _, b := range builds {
		resp.Builds = append(resp.Builds, toBuildResponse(b))
	}

	writeJSON(w, http.StatusOK, resp)
}

// TriggerBuild schedules a build for the named job.
func (h *Handler) TriggerBuild(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w)
	if !ok {
		return
	}
	name := r.PathValue("name")

	var req TriggerBuildRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if err := client.TriggerBuild(r.Context(), name, req.Parameters); err != nil {
		h.jenkinsError(w, err, "failed to trigger build", "job", name)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// GetBuild returns the full build document.
func (h *Handler) GetBuild(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w)
	if !ok {
		return
	}
	name := r.PathValue("name")

	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid build number")
		return
	}

	details, err := client.GetBuildDetails(r.Context(), name, number)
	if err != nil {
		h.jenkinsError(w, err, "failed to get build", "job", name, "build", number)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

// GetBuildConsole returns the build's console output, masked and scanned
// against the error-pattern catalog with stack-trace bursts collapsed.
func (h *Handler) GetBuildConsole(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w)
	if !ok {
		return
	}
	name := r.PathValue("name")

	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid build number")
		return
	}

	console, err := client.GetBuildConsoleOutput(r.Context(), name, number)
	if err != nil {
		h.jenkinsError(w, err, "failed to get console output", "job", name, "build", number)
		return
	}

	masked := scan.MaskSensitiveData(console)
	issues := scan.Deduplicate(scan.ScanOptimized(masked, h.catalog))

	writeJSON(w, http.StatusOK, ConsoleResponse{
		Output: masked,
		Issues: toConsoleIssueResponses(issues),
	})
}

// GetServerInfo returns the raw server-info document from the active server.
func (h *Handler) GetServerInfo(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w)
	if !ok {
		return
	}

	info, err := client.ServerInfo(r.Context())
	if err != nil {
		h.jenkinsError(w, err, "failed to get server info")
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// GetSystem returns nodes, queue, and load state. Each section is fetched
// independently so one failing endpoint degrades the view instead of
// blanking it.
func (h *Handler) GetSystem(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w)
	if !ok {
		return
	}

	resp := SystemResponse{
		Nodes:  []NodeResponse{},
		Queue:  []QueueItemResponse{},
		Errors: map[string]string{},
	}

	if nodes, err := client.GetNodes(r.Context()); err != nil {
		h.logger.Error("failed to get nodes", "error", err)
		resp.Errors["nodes"] = err.Error()
	} else {
		for _, n := range nodes {
			resp.Nodes = append(resp.Nodes, toNodeResponse(n))
		}
	}

	if queue, err := client.GetQueue(r.Context()); err != nil {
		h.logger.Error("failed to get queue", "error", err)
		resp.Errors["queue"] = err.Error()
	} else {
		for _, item := range queue {
			resp.Queue = append(resp.Queue, toQueueItemResponse(item))
		}
	}

	if stats, err := client.GetSystemStats(r.Context()); err != nil {
		h.logger.Error("failed to get system stats", "error", err)
		resp.Errors["stats"] = err.Error()
	} else {
		resp.Stats = &SystemStatsBody{
			Load:         stats.Load,
			ExecutorInfo: stats.ExecutorInfo,
		}
	}

	if len(resp.Errors) == 0 {
		resp.Errors = nil
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListPlugins returns the installed plugins on the active server.
func (h *Handler) ListPlugins(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w)
	if !ok {
		return
	}

	plugins, err := client.GetPlugins(r.Context())
	if err != nil {
		h.jenkinsError(w, err, "failed to list plugins")
		return
	}

	resp := make([]PluginResponse, 0, len(plugins))
	for _, p := range plugins {
		resp = append(resp, toPluginResponse(p))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetAnalysis runs the issue analyzer across jobs, queue, and nodes. The
// analysis is rerun on every request so it reflects the current server
// state; a cached query parameter opts into reusing a snapshot from the
// last 30 seconds.
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	client, ok := h.client(w)
	if !ok {
		return
	}

	report, err := client.AnalyzeIssues(r.Context(), r.URL.Query().Has("cached"))
	if err != nil {
		h.jenkinsError(w, err, "failed to analyze issues")
		return
	}

	writeJSON(w, http.StatusOK, toAnalysisResponse(*report))
}

// Troubleshoot builds a diagnostic report for a pasted Jenkins job or build URL.
func (h *Handler) Troubleshoot(w http.ResponseWriter, r *http.Request) {
	var req TroubleshootRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.troubleshootSvc.TroubleshootURL(r.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrJobNameNotFound):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, application.ErrNoActiveConnection):
			writeError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("troubleshoot failed", "url", req.URL, "error", err)
			writeError(w, http.StatusBadGateway, "jenkins request failed")
		}
		return
	}

	resp := TroubleshootResponse{
		JobName:       report.JobName,
		RecentBuilds:  make([]BuildResponse, 0, len(report.RecentBuilds)),
		ConsoleOutput: report.ConsoleOutput,
		ConsoleIssues: toConsoleIssueResponses(report.ConsoleIssues),
	}
	if report.Job != nil {
		job := toJobResponse(*report.Job)
		resp.Job = &job
	}
	for _, b := range report.RecentBuilds {
		resp.RecentBuilds = append(resp.RecentBuilds, toBuildResponse(b))
	}

	writeJSON(w, http.StatusOK, resp)
}

// client resolves the active Jenkins client, writing a 409 when no
// connection has been activated.
func (h *Handler) client(w http.ResponseWriter) (driven.JenkinsClient, bool) {
	client, err := h.provider.Get()
	if err != nil {
		writeError(w, http.StatusConflict, application.ErrNoActiveConnection.Error())
		return nil, false
	}
	return client, true
}

// jenkinsError maps an upstream Jenkins failure to a response: 404s from the
// server pass through as 404, everything else is a 502.
func (h *Handler) jenkinsError(w http.ResponseWriter, err error, msg string, args ...any) {
	h.logger.Error(msg, append(args, "error", err)...)
	if strings.Contains(err.Error(), "jenkins returned 404") {
		writeError(w, http.StatusNotFound, "not found on jenkins server")
		return
	}
	writeError(w, http.StatusBadGateway, "jenkins request failed")
}
