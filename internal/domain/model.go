package domain

// Status is the lifecycle state of a pipeline or job. The zero value is not a
// lifecycle state: it marks a project that currently has no pipelines.
type Status string

const (
	StatusCreated  Status = "created"
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusSkipped  Status = "skipped"
	StatusCanceled Status = "canceled"
	StatusManual   Status = "manual"

	StatusNone Status = ""
)

type Project struct {
	ID    int64
	Name  string
	Group string
}

// Path is the "group/name" header shown for the project.
func (p Project) Path() string {
	if p.Group == "" {
		return p.Name
	}
	return p.Group + "/" + p.Name
}

// PipelineSummary is one entry of a project's pipeline list, newest first.
type PipelineSummary struct {
	ID     int64
	Status Status
}

type PipelineDetail struct {
	ID       int64
	Status   Status
	Ref      string
	Duration int64 // seconds
}

type Job struct {
	Name   string
	Status Status
	Link   string
}

// Fragment is the content of a visual node: an optional icon token, text, and
// an optional link the text points to.
type Fragment struct {
	Icon string `json:"icon,omitempty"`
	Text string `json:"text,omitempty"`
	Link string `json:"link,omitempty"`
}
