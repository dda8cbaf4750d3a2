package application

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/davarch/ci-dashboard/internal/domain"
)

const notifyTimeout = 5 * time.Second

// Engine reconciles fetched GitLab state into the visual tree. Every upsert
// first makes sure the node exists and then re-applies the latest state, so
// repeating a call is a plain overwrite. Nodes are never removed.
//
// Calls are serialized; the engine is the only writer of its surface.
type Engine struct {
	log     *zap.Logger
	surface domain.Surface
	note    domain.Notifier

	mu      sync.Mutex
	buckets map[int64]string
	muted   map[string]struct{}
}

type EngineOption func(*Engine)

// WithNotifier reports project status transitions, for instance a project
// going from bg-success to bg-fail.
func WithNotifier(n domain.Notifier) EngineOption {
	return func(e *Engine) { e.note = n }
}

func NewEngine(l *zap.Logger, s domain.Surface, opts ...EngineOption) *Engine {
	e := &Engine{
		log:     l,
		surface: s,
		buckets: make(map[int64]string),
		muted:   make(map[string]struct{}),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// SetMuted replaces the list of projects, by id or "group/name", that never
// produce notifications.
func (e *Engine) SetMuted(names []string) {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}

	e.mu.Lock()
	e.muted = m
	e.mu.Unlock()
}

// AddProjects creates the shells of projects not seen before. Existing
// projects keep their status.
func (e *Engine) AddProjects(ps []domain.Project) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, p := range ps {
		if err := e.ensureProject(p); err != nil {
			return err
		}
	}
	return nil
}

// UpsertProject sets the project's style from the status of its latest
// pipeline. StatusNone means the project has no pipelines.
func (e *Engine) UpsertProject(p domain.Project, latest domain.Status) error {
	e.mu.Lock()

	if err := e.ensureProject(p); err != nil {
		e.mu.Unlock()
		return err
	}

	bucket := bucketFor(latest)
	if err := e.surface.SetClass(projectKey(p.ID), class(domain.KindProject, bucket)); err != nil {
		e.mu.Unlock()
		return err
	}

	prev, seen := e.buckets[p.ID]
	e.buckets[p.ID] = bucket
	notify := e.note != nil && seen && prev != bucket && !e.isMuted(p) && worthNotifying(prev, bucket)
	e.mu.Unlock()

	if notify {
		e.notifyTransition(p, bucket)
	}
	return nil
}

// UpsertPipeline creates the pipeline node with its label and time regions.
// The project node has to exist already.
func (e *Engine) UpsertPipeline(projectID, pipelineID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	parent := projectKey(projectID)
	if !e.surface.Exists(parent) {
		return fmt.Errorf("pipeline %d of project %d: %w", pipelineID, projectID, domain.ErrPrecursorMissing)
	}

	key := pipelineKey(projectID, pipelineID)
	if e.surface.Exists(key) {
		return nil
	}

	if err := e.surface.Create(parent, key, class(domain.KindPipeline, domain.BucketSkipped)); err != nil {
		return err
	}
	if err := e.surface.Create(key, labelKey(projectID, pipelineID), domain.KindLabel); err != nil {
		return err
	}
	return e.surface.Create(key, timeKey(projectID, pipelineID), domain.KindTime)
}

func (e *Engine) UpsertPipelineDetail(projectID int64, d domain.PipelineDetail) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := pipelineKey(projectID, d.ID)
	if !e.surface.Exists(key) {
		return fmt.Errorf("detail of pipeline %d in project %d: %w", d.ID, projectID, domain.ErrPrecursorMissing)
	}

	if err := e.surface.SetClass(key, class(domain.KindPipeline, bucketFor(d.Status))); err != nil {
		return err
	}

	label := domain.Fragment{Text: "#" + strconv.FormatInt(d.ID, 10) + " / " + d.Ref}
	if err := e.surface.SetContent(labelKey(projectID, d.ID), label); err != nil {
		return err
	}

	clock := domain.Fragment{Icon: domain.IconClock, Text: FormatDuration(d.Duration)}
	return e.surface.SetContent(timeKey(projectID, d.ID), clock)
}

func (e *Engine) UpsertJob(projectID, pipelineID int64, j domain.Job) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	parent := pipelineKey(projectID, pipelineID)
	if !e.surface.Exists(parent) {
		return fmt.Errorf("job %q of pipeline %d: %w", j.Name, pipelineID, domain.ErrPrecursorMissing)
	}

	bucket, icon := jobStyle(j.Status)
	key := jobKey(projectID, pipelineID, j.Name)
	if !e.surface.Exists(key) {
		if err := e.surface.Create(parent, key, class(domain.KindJob, bucket)); err != nil {
			return err
		}
	}

	if err := e.surface.SetClass(key, class(domain.KindJob, bucket)); err != nil {
		return err
	}
	return e.surface.SetContent(key, domain.Fragment{Icon: icon, Text: j.Name, Link: j.Link})
}

// ensureProject must be called with e.mu held.
func (e *Engine) ensureProject(p domain.Project) error {
	key := projectKey(p.ID)
	if !e.surface.Exists(key) {
		if err := e.surface.Create("", key, class(domain.KindProject, domain.BucketHidden)); err != nil {
			return err
		}
	}
	return e.surface.SetContent(key, domain.Fragment{Text: p.Path()})
}

// isMuted must be called with e.mu held.
func (e *Engine) isMuted(p domain.Project) bool {
	if _, ok := e.muted[p.Path()]; ok {
		return true
	}
	_, ok := e.muted[strconv.FormatInt(p.ID, 10)]
	return ok
}

func (e *Engine) notifyTransition(p domain.Project, bucket string) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := e.note.Notify(ctx, titleFor(bucket), p.Path(), ""); err != nil {
		e.log.Warn("notify failed", zap.Int64("project", p.ID), zap.Error(err))
	}
}

// worthNotifying ignores the shell state and the catch-all bucket.
func worthNotifying(prev, next string) bool {
	if prev == domain.BucketHidden || next == domain.BucketHidden {
		return false
	}
	return next != domain.BucketSkipped
}

func titleFor(bucket string) string {
	switch bucket {
	case domain.BucketSuccess:
		return "✅ CI: success"
	case domain.BucketFail:
		return "❌ CI: failed"
	case domain.BucketRunning:
		return "▶️ CI: running"
	case domain.BucketManual:
		return "⏸ CI: manual"
	default:
		return "ℹ️ CI: " + bucket
	}
}
