package model

// SystemStats bundles the raw overall-load document and the executor
// projection of the computer listing. Both are passed through to the UI
// unmodified, so they stay untyped.
type SystemStats struct {
	Load         map[string]any
	ExecutorInfo map[string]any
}
