package model

// Node is a Jenkins worker/agent machine. A node with Offline set but
// TemporarilyOffline unset is considered hard-down; temporarily offline
// nodes were taken offline deliberately by an operator.
type Node struct {
	DisplayName        string
	Description        string
	Offline            bool
	TemporarilyOffline bool
	MonitorData        map[string]any
}
