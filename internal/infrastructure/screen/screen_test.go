package screen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davarch/ci-dashboard/internal/domain"
)

func TestScreen_CreateUnderRootAndParent(t *testing.T) {
	s := New()
	require.NoError(t, s.Create("", "pr1", "project hidden"))
	require.NoError(t, s.Create("pr1", "pr1_pl2", "pipeline bg-skipped"))

	assert.True(t, s.Exists("pr1"))
	assert.True(t, s.Exists("pr1_pl2"))
	assert.Equal(t, 2, s.Len())

	v, ok := s.Node("pr1")
	require.True(t, ok)
	require.Len(t, v.Children, 1)
	assert.Equal(t, "pr1_pl2", v.Children[0].ID)
}

func TestScreen_CreateTwiceFails(t *testing.T) {
	s := New()
	require.NoError(t, s.Create("", "pr1", "project hidden"))

	err := s.Create("", "pr1", "project hidden")
	assert.ErrorIs(t, err, ErrExists)
	assert.Equal(t, 1, s.Len())
}

func TestScreen_MissingParentOrNode(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.Create("nope", "x", ""), ErrNoNode)
	assert.ErrorIs(t, s.SetClass("x", "a"), ErrNoNode)
	assert.ErrorIs(t, s.SetContent("x", domain.Fragment{Text: "a"}), ErrNoNode)
	assert.Equal(t, 0, s.Len())
}

func TestScreen_SnapshotKeepsInsertionOrder(t *testing.T) {
	s := New()
	for _, id := range []string{"pr3", "pr1", "pr2"} {
		require.NoError(t, s.Create("", id, "project hidden"))
	}

	var ids []string
	for _, n := range s.Snapshot() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"pr3", "pr1", "pr2"}, ids)
}

func TestScreen_SnapshotIsACopy(t *testing.T) {
	s := New()
	require.NoError(t, s.Create("", "pr1", "project hidden"))
	snap := s.Snapshot()

	require.NoError(t, s.SetClass("pr1", "project bg-fail"))
	assert.Equal(t, "project hidden", snap[0].Class)
}

func TestRender_SkipsHiddenProjects(t *testing.T) {
	s := New()
	require.NoError(t, s.Create("", "pr1", "project hidden"))
	require.NoError(t, s.SetContent("pr1", domain.Fragment{Text: "team/quiet"}))
	require.NoError(t, s.Create("", "pr2", "project bg-success"))
	require.NoError(t, s.SetContent("pr2", domain.Fragment{Text: "team/app"}))

	out := Render(s.Snapshot(), RenderOptions{})
	assert.NotContains(t, out, "team/quiet")
	assert.Contains(t, out, "team/app")
}

func TestRender_PipelineAndJobs(t *testing.T) {
	s := New()
	require.NoError(t, s.Create("", "pr1", "project bg-running"))
	require.NoError(t, s.SetContent("pr1", domain.Fragment{Text: "team/app"}))
	require.NoError(t, s.Create("pr1", "pr1_pl100", "pipeline bg-running"))
	require.NoError(t, s.Create("pr1_pl100", "pr1_pl100_label", "label"))
	require.NoError(t, s.SetContent("pr1_pl100_label", domain.Fragment{Text: "#100 / main"}))
	require.NoError(t, s.Create("pr1_pl100", "pr1_pl100_time", "time"))
	require.NoError(t, s.SetContent("pr1_pl100_time", domain.Fragment{Icon: domain.IconClock, Text: "00:01:05"}))
	require.NoError(t, s.Create("pr1_pl100", "pr1_pl100_job:build", "job job-running"))
	require.NoError(t, s.SetContent("pr1_pl100_job:build", domain.Fragment{Icon: domain.IconSpinner, Text: "build", Link: "https://x/1"}))

	out := Render(s.Snapshot(), RenderOptions{Spinner: "@"})
	assert.Contains(t, out, "#100 / main")
	assert.Contains(t, out, "00:01:05")
	assert.Contains(t, out, "@ build")
	assert.False(t, strings.Contains(out, "https://x/1"), "links are only emitted with hyperlinks enabled")

	linked := Render(s.Snapshot(), RenderOptions{Hyperlinks: true})
	assert.Contains(t, linked, "https://x/1")
}
