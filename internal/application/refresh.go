package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/davarch/ci-dashboard/internal/domain"
)

// DefaultMaxPipelines is how many of a project's newest pipelines are expanded
// into detail and jobs.
const DefaultMaxPipelines = 5

// Refresher drives refresh cycles: projects, then pipelines per project, then
// detail and jobs per pipeline. Results reach the engine in whatever order
// the fetches complete.
type Refresher struct {
	log     *zap.Logger
	gl      domain.GitlabClient
	engine  *Engine
	session *Session
	max     int

	snap domain.SnapshotWriter
	tree TreeSource
}

// TreeSource hands out copies of the visual tree.
type TreeSource interface {
	Snapshot() []domain.NodeView
}

func NewRefresher(l *zap.Logger, gl domain.GitlabClient, e *Engine, s *Session, maxPipelines int) *Refresher {
	if maxPipelines <= 0 {
		maxPipelines = DefaultMaxPipelines
	}
	return &Refresher{log: l, gl: gl, engine: e, session: s, max: maxPipelines}
}

// ExportTo makes every finished cycle write the tree to w.
func (r *Refresher) ExportTo(w domain.SnapshotWriter, tree TreeSource) {
	r.snap = w
	r.tree = tree
}

// Refresh is Cycle for the scheduler: errors are logged, not returned.
func (r *Refresher) Refresh(ctx context.Context) {
	if err := r.Cycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
		r.log.Warn("refresh failed", zap.Error(err))
	}
}

// Cycle runs one refresh cycle and returns once every branch has ended. A
// failing branch is logged and ends alone; only a failed project list fetch
// is returned.
func (r *Refresher) Cycle(ctx context.Context) error {
	r.session.cycleStarted()
	defer r.session.cycleFinished()

	projects, err := r.gl.ListProjects(ctx)
	if err != nil {
		r.session.branchFailed()
		return err
	}

	r.session.SetProjects(projects)
	if err := r.engine.AddProjects(projects); err != nil {
		return err
	}

	var g errgroup.Group
	for _, p := range projects {
		g.Go(func() error {
			r.refreshProject(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	r.export(ctx)
	return nil
}

func (r *Refresher) export(ctx context.Context) {
	if r.snap == nil || r.tree == nil {
		return
	}
	s := domain.Snapshot{Nodes: r.tree.Snapshot(), Retrieved: time.Now().Unix()}
	if err := r.snap.Write(ctx, s); err != nil {
		r.log.Warn("snapshot write failed", zap.Error(err))
	}
}

func (r *Refresher) refreshProject(ctx context.Context, p domain.Project) {
	pipelines, err := r.gl.ListPipelines(ctx, p.ID)
	if err != nil {
		r.fail("list pipelines", err, zap.Int64("project", p.ID))
		return
	}

	if len(pipelines) == 0 {
		if err := r.engine.UpsertProject(p, domain.StatusNone); err != nil {
			r.fail("upsert project", err, zap.Int64("project", p.ID))
		}
		return
	}

	if len(pipelines) > r.max {
		pipelines = pipelines[:r.max]
	}

	if err := r.engine.UpsertProject(p, pipelines[0].Status); err != nil {
		r.fail("upsert project", err, zap.Int64("project", p.ID))
		return
	}

	var g errgroup.Group
	g.SetLimit(r.max)
	for _, pl := range pipelines {
		if err := r.engine.UpsertPipeline(p.ID, pl.ID); err != nil {
			r.fail("upsert pipeline", err, zap.Int64("project", p.ID), zap.Int64("pipeline", pl.ID))
			continue
		}
		g.Go(func() error {
			r.refreshPipeline(ctx, p.ID, pl.ID)
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Refresher) refreshPipeline(ctx context.Context, projectID, pipelineID int64) {
	fields := []zap.Field{zap.Int64("project", projectID), zap.Int64("pipeline", pipelineID)}

	detail, err := r.gl.GetPipelineDetail(ctx, projectID, pipelineID)
	if err != nil {
		r.fail("pipeline detail", err, fields...)
		return
	}
	if err := r.engine.UpsertPipelineDetail(projectID, detail); err != nil {
		r.fail("upsert pipeline detail", err, fields...)
		return
	}

	jobs, err := r.gl.ListJobs(ctx, projectID, pipelineID)
	if err != nil {
		r.fail("list jobs", err, fields...)
		return
	}
	for _, j := range jobs {
		if err := r.engine.UpsertJob(projectID, pipelineID, j); err != nil {
			r.fail("upsert job", err, append(fields, zap.String("job", j.Name))...)
			return
		}
	}
}

func (r *Refresher) fail(step string, err error, fields ...zap.Field) {
	r.session.branchFailed()
	if errors.Is(err, context.Canceled) {
		r.log.Debug(step+" canceled", fields...)
		return
	}
	r.log.Warn(step+" failed", append(fields, zap.Error(err))...)
}
