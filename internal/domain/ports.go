package domain

import "context"

type GitlabClient interface {
	ListProjects(ctx context.Context) ([]Project, error)
	ListPipelines(ctx context.Context, projectID int64) ([]PipelineSummary, error)
	GetPipelineDetail(ctx context.Context, projectID, pipelineID int64) (PipelineDetail, error)
	ListJobs(ctx context.Context, projectID, pipelineID int64) ([]Job, error)
}

// Surface is the presentation layer the reconciliation engine writes into.
// Nodes are addressed by string id; parent "" is the root container.
type Surface interface {
	Exists(id string) bool
	Create(parent, id, class string) error
	SetClass(id, class string) error
	SetContent(id string, f Fragment) error
}

type Notifier interface {
	Notify(ctx context.Context, title, body, url string) error
}

type SnapshotWriter interface {
	Write(ctx context.Context, s Snapshot) error
}
