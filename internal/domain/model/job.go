// Package model holds the domain types shared by the Jenkins adapter,
// the application services, and the HTTP API.
package model

// Job represents a Jenkins job as reported by the server's tree-filtered
// job listing. LastBuild is only populated by the job-details projection.
type Job struct {
	Name      string
	URL       string
	Color     string // Jenkins status/animation code, e.g. "blue", "red_anime", "disabled".
	LastBuild *Build
}
