package model

// QueueTask identifies the job a queue item wants to run.
type QueueTask struct {
	Name string
	URL  string
}

// QueueItem is a build request waiting for an executor. Stuck is set by
// Jenkins when the item has waited suspiciously long.
type QueueItem struct {
	ID                         int64
	Task                       QueueTask
	Stuck                      bool
	Why                        string
	BuildableStartMilliseconds int64
}
