package domain

import (
	"context"
	"fmt"
	"sync"
)

// MockGitLab serves canned data. It is safe for concurrent use since the
// refresher calls it from many goroutines.
type MockGitLab struct {
	Projects    []Project
	Pipelines   map[int64][]PipelineSummary
	Details     map[int64]PipelineDetail // by pipeline id
	Jobs        map[int64][]Job          // by pipeline id
	ProjectsErr error
	PipelineErr map[int64]error // by project id
	DetailErr   map[int64]error // by pipeline id
	JobsErr     map[int64]error // by pipeline id

	mu           sync.Mutex
	DetailCalls  []int64
	JobsCalls    []int64
	ProjectCalls int
}

func (m *MockGitLab) ListProjects(ctx context.Context) ([]Project, error) {
	m.mu.Lock()
	m.ProjectCalls++
	m.mu.Unlock()
	if m.ProjectsErr != nil {
		return nil, m.ProjectsErr
	}
	return m.Projects, nil
}

func (m *MockGitLab) ListPipelines(ctx context.Context, projectID int64) ([]PipelineSummary, error) {
	if err := m.PipelineErr[projectID]; err != nil {
		return nil, err
	}
	return m.Pipelines[projectID], nil
}

func (m *MockGitLab) GetPipelineDetail(ctx context.Context, projectID, pipelineID int64) (PipelineDetail, error) {
	m.mu.Lock()
	m.DetailCalls = append(m.DetailCalls, pipelineID)
	m.mu.Unlock()
	if err := m.DetailErr[pipelineID]; err != nil {
		return PipelineDetail{}, err
	}
	d, ok := m.Details[pipelineID]
	if !ok {
		return PipelineDetail{}, fmt.Errorf("%w: no pipeline %d", ErrTransport, pipelineID)
	}
	return d, nil
}

func (m *MockGitLab) ListJobs(ctx context.Context, projectID, pipelineID int64) ([]Job, error) {
	m.mu.Lock()
	m.JobsCalls = append(m.JobsCalls, pipelineID)
	m.mu.Unlock()
	if err := m.JobsErr[pipelineID]; err != nil {
		return nil, err
	}
	return m.Jobs[pipelineID], nil
}

type MockNotifier struct {
	mu       sync.Mutex
	Messages []string
	Err      error
}

func (n *MockNotifier) Notify(ctx context.Context, title, body, url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, title+"|"+body+"|"+url)
	return n.Err
}

type MockSnapshots struct {
	mu        sync.Mutex
	Snapshots []Snapshot
	Err       error
}

func (c *MockSnapshots) Write(ctx context.Context, s Snapshot) error {
	if c.Err != nil {
		return c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Snapshots = append(c.Snapshots, s)
	return nil
}

func (c *MockSnapshots) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Snapshots)
}
