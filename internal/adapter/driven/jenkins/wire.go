package jenkins

import "github.com/ericfisherdev/jenkinsinsights/internal/domain/model"

// Wire types mirror the Jenkins JSON tree projections and map into domain
// model types. A null build result on the wire (build in progress) becomes
// an empty string.

type jobJSON struct {
	Name      string     `json:"name"`
	URL       string     `json:"url"`
	Color     string     `json:"color"`
	LastBuild *buildJSON `json:"lastBuild"`
}

func (j jobJSON) toModel() model.Job {
	job := model.Job{
		Name:  j.Name,
		URL:   j.URL,
		Color: j.Color,
	}
	if j.LastBuild != nil {
		last := j.LastBuild.toModel()
		job.LastBuild = &last
	}
	return job
}

type buildJSON struct {
	Number    int     `json:"number"`
	URL       string  `json:"url"`
	Result    *string `json:"result"`
	Timestamp int64   `json:"timestamp"`
	Duration  int64   `json:"duration"`
	Building  bool    `json:"building"`
}

func (b buildJSON) toModel() model.Build {
	var result string
	if b.Result != nil {
		result = *b.Result
	}
	return model.Build{
		Number:    b.Number,
		URL:       b.URL,
		Result:    result,
		Timestamp: b.Timestamp,
		Duration:  b.Duration,
		Building:  b.Building,
	}
}

type nodeJSON struct {
	DisplayName        string         `json:"displayName"`
	Description        string         `json:"description"`
	Offline            bool           `json:"offline"`
	TemporarilyOffline bool           `json:"temporarilyOffline"`
	MonitorData        map[string]any `json:"monitorData"`
}

func (n nodeJSON) toModel() model.Node {
	return model.Node{
		DisplayName:        n.DisplayName,
		Description:        n.Description,
		Offline:            n.Offline,
		TemporarilyOffline: n.TemporarilyOffline,
		MonitorData:        n.MonitorData,
	}
}

type queueItemJSON struct {
	ID   int64 `json:"id"`
	Task struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"task"`
	Stuck                      bool   `json:"stuck"`
	Why                        string `json:"why"`
	BuildableStartMilliseconds int64  `json:"buildableStartMilliseconds"`
}

func (q queueItemJSON) toModel() model.QueueItem {
	return model.QueueItem{
		ID:                         q.ID,
		Task:                       model.QueueTask{Name: q.Task.Name, URL: q.Task.URL},
		Stuck:                      q.Stuck,
		Why:                        q.Why,
		BuildableStartMilliseconds: q.BuildableStartMilliseconds,
	}
}

type pluginJSON struct {
	ShortName string `json:"shortName"`
	LongName  string `json:"longName"`
	Version   string `json:"version"`
	Active    bool   `json:"active"`
	Enabled   bool   `json:"enabled"`
}

func (p pluginJSON) toModel() model.Plugin {
	return model.Plugin{
		ShortName: p.ShortName,
		LongName:  p.LongName,
		Version:   p.Version,
		Active:    p.Active,
		Enabled:   p.Enabled,
	}
}
