package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/davarch/ci-dashboard/internal/domain"
	"github.com/davarch/ci-dashboard/internal/infrastructure/screen"
)

func newTestRefresher(gl domain.GitlabClient) (*Refresher, *screen.Screen, *Session, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	s := screen.New()
	sess := NewSession()
	r := NewRefresher(log, gl, NewEngine(log, s), sess, DefaultMaxPipelines)
	return r, s, sess, logs
}

func TestCycle_ExpandsOnlyNewestFivePipelines(t *testing.T) {
	gl := &domain.MockGitLab{
		Projects:  []domain.Project{app},
		Pipelines: map[int64][]domain.PipelineSummary{},
		Details:   map[int64]domain.PipelineDetail{},
		Jobs:      map[int64][]domain.Job{},
	}
	for id := int64(112); id > 100; id-- {
		gl.Pipelines[1] = append(gl.Pipelines[1], domain.PipelineSummary{ID: id, Status: domain.StatusSuccess})
		gl.Details[id] = domain.PipelineDetail{ID: id, Status: domain.StatusSuccess, Ref: "main"}
	}
	require.Len(t, gl.Pipelines[1], 12)

	r, s, _, _ := newTestRefresher(gl)
	require.NoError(t, r.Cycle(context.Background()))

	sort.Slice(gl.DetailCalls, func(i, j int) bool { return gl.DetailCalls[i] > gl.DetailCalls[j] })
	assert.Equal(t, []int64{112, 111, 110, 109, 108}, gl.DetailCalls)
	assert.Len(t, gl.JobsCalls, 5)

	for id := int64(107); id > 100; id-- {
		assert.False(t, s.Exists(fmt.Sprintf("pr1_pl%d", id)), "pipeline %d should not be drawn", id)
	}
}

func TestCycle_BuildsTreeFromFetchedState(t *testing.T) {
	gl := &domain.MockGitLab{
		Projects: []domain.Project{app},
		Pipelines: map[int64][]domain.PipelineSummary{
			1: {{ID: 100, Status: domain.StatusRunning}, {ID: 99, Status: domain.StatusFailed}},
		},
		Details: map[int64]domain.PipelineDetail{
			100: {ID: 100, Status: domain.StatusRunning, Ref: "main", Duration: 65},
			99:  {ID: 99, Status: domain.StatusFailed, Ref: "feature", Duration: 3661},
		},
		Jobs: map[int64][]domain.Job{
			100: {{Name: "build", Status: domain.StatusSuccess, Link: "https://gl/j/1"}, {Name: "test", Status: domain.StatusRunning}},
			99:  {{Name: "build", Status: domain.StatusFailed}},
		},
	}

	r, s, sess, _ := newTestRefresher(gl)
	require.NoError(t, r.Cycle(context.Background()))

	assert.Equal(t, "project bg-running", node(t, s, "pr1").Class)
	assert.Equal(t, "#100 / main", node(t, s, "pr1_pl100_label").Content.Text)
	assert.Equal(t, "01:01:01", node(t, s, "pr1_pl99_time").Content.Text)
	assert.Equal(t, "job job-success", node(t, s, "pr1_pl100_job:build").Class)
	assert.Equal(t, "job job-fail", node(t, s, "pr1_pl99_job:build").Class)

	// pipelines keep backend order under the project
	children := node(t, s, "pr1").Children
	require.Len(t, children, 2)
	assert.Equal(t, "pr1_pl100", children[0].ID)
	assert.Equal(t, "pr1_pl99", children[1].ID)

	st := sess.Stats()
	assert.Equal(t, 1, st.Projects)
	assert.Equal(t, int64(1), st.CyclesStarted)
	assert.Equal(t, int64(1), st.CyclesFinished)
	assert.Zero(t, st.Failures)
}

func TestCycle_RepeatedCyclesDoNotDuplicate(t *testing.T) {
	gl := &domain.MockGitLab{
		Projects:  []domain.Project{app},
		Pipelines: map[int64][]domain.PipelineSummary{1: {{ID: 100, Status: domain.StatusRunning}}},
		Details:   map[int64]domain.PipelineDetail{100: {ID: 100, Status: domain.StatusRunning, Ref: "main"}},
		Jobs:      map[int64][]domain.Job{100: {{Name: "build", Status: domain.StatusRunning}}},
	}

	r, s, _, _ := newTestRefresher(gl)
	require.NoError(t, r.Cycle(context.Background()))
	first := s.Len()

	gl.Details[100] = domain.PipelineDetail{ID: 100, Status: domain.StatusSuccess, Ref: "main", Duration: 30}
	gl.Jobs[100] = []domain.Job{{Name: "build", Status: domain.StatusSuccess}}
	gl.Pipelines[1][0].Status = domain.StatusSuccess
	require.NoError(t, r.Cycle(context.Background()))

	assert.Equal(t, first, s.Len())
	assert.Equal(t, "project bg-success", node(t, s, "pr1").Class)
	assert.Equal(t, "pipeline bg-success", node(t, s, "pr1_pl100").Class)
	assert.Equal(t, "job job-success", node(t, s, "pr1_pl100_job:build").Class)
}

func TestCycle_EmptyProjectIsHidden(t *testing.T) {
	gl := &domain.MockGitLab{
		Projects:  []domain.Project{app},
		Pipelines: map[int64][]domain.PipelineSummary{},
	}

	r, s, _, _ := newTestRefresher(gl)
	require.NoError(t, r.Cycle(context.Background()))

	n := node(t, s, "pr1")
	assert.Equal(t, "project hidden", n.Class)
	assert.Empty(t, n.Children)
	assert.Empty(t, gl.DetailCalls)
}

func TestCycle_FailingBranchesStayIsolated(t *testing.T) {
	lib := domain.Project{ID: 2, Name: "lib", Group: "team"}
	web := domain.Project{ID: 3, Name: "web", Group: "team"}
	gl := &domain.MockGitLab{
		Projects: []domain.Project{app, lib, web},
		Pipelines: map[int64][]domain.PipelineSummary{
			1: {{ID: 10, Status: domain.StatusSuccess}, {ID: 11, Status: domain.StatusSuccess}},
			3: {{ID: 30, Status: domain.StatusFailed}},
		},
		PipelineErr: map[int64]error{2: fmt.Errorf("%w: 502 Bad Gateway", domain.ErrTransport)},
		Details: map[int64]domain.PipelineDetail{
			10: {ID: 10, Status: domain.StatusSuccess, Ref: "main"},
			11: {ID: 11, Status: domain.StatusSuccess, Ref: "main"},
			30: {ID: 30, Status: domain.StatusFailed, Ref: "main"},
		},
		DetailErr: map[int64]error{11: fmt.Errorf("%w: unexpected EOF", domain.ErrDecode)},
		Jobs:      map[int64][]domain.Job{10: {{Name: "build", Status: domain.StatusSuccess}}},
		JobsErr:   map[int64]error{30: fmt.Errorf("%w: timeout", domain.ErrTransport)},
	}

	r, s, sess, logs := newTestRefresher(gl)
	require.NoError(t, r.Cycle(context.Background()))

	// project 2 never got past its shell
	assert.Equal(t, "project hidden", node(t, s, "pr2").Class)

	// project 1: pipeline 10 complete, pipeline 11 created but never detailed
	assert.Equal(t, "pipeline bg-success", node(t, s, "pr1_pl10").Class)
	assert.True(t, s.Exists("pr1_pl10_job:build"))
	assert.Equal(t, "pipeline bg-skipped", node(t, s, "pr1_pl11").Class)
	assert.Empty(t, node(t, s, "pr1_pl11_label").Content.Text)

	// project 3: detail applied, jobs failed
	assert.Equal(t, "pipeline bg-fail", node(t, s, "pr3_pl30").Class)

	assert.Equal(t, int64(3), sess.Stats().Failures)
	warns := logs.FilterLevelExact(zapcore.WarnLevel)
	assert.Equal(t, 1, warns.FilterMessage("list pipelines failed").Len())
	assert.Equal(t, 1, warns.FilterMessage("pipeline detail failed").Len())
	assert.Equal(t, 1, warns.FilterMessage("list jobs failed").Len())
}

func TestCycle_ProjectListFailureIsReturned(t *testing.T) {
	gl := &domain.MockGitLab{ProjectsErr: fmt.Errorf("%w: dial tcp: refused", domain.ErrTransport)}

	r, s, sess, _ := newTestRefresher(gl)
	err := r.Cycle(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))
	assert.Zero(t, s.Len())
	assert.Equal(t, int64(1), sess.Stats().CyclesFinished)
}

func TestCycle_ExportsSnapshot(t *testing.T) {
	gl := &domain.MockGitLab{
		Projects:  []domain.Project{app},
		Pipelines: map[int64][]domain.PipelineSummary{1: {{ID: 100, Status: domain.StatusSuccess}}},
		Details:   map[int64]domain.PipelineDetail{100: {ID: 100, Status: domain.StatusSuccess, Ref: "main"}},
	}

	r, s, _, _ := newTestRefresher(gl)
	snaps := &domain.MockSnapshots{}
	r.ExportTo(snaps, s)

	r.Refresh(context.Background())
	r.Refresh(context.Background())

	require.Equal(t, 2, snaps.Len())
	last := snaps.Snapshots[1]
	require.Len(t, last.Nodes, 1)
	assert.Equal(t, "project bg-success", last.Nodes[0].Class)
	assert.NotZero(t, last.Retrieved)
}

func TestRefresh_LogsProjectListFailure(t *testing.T) {
	gl := &domain.MockGitLab{ProjectsErr: fmt.Errorf("%w: 401 Unauthorized", domain.ErrTransport)}

	r, _, _, logs := newTestRefresher(gl)
	r.Refresh(context.Background())

	assert.Equal(t, 1, logs.FilterMessage("refresh failed").Len())
}
