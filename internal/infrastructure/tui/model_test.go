package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davarch/ci-dashboard/internal/domain"
	"github.com/davarch/ci-dashboard/internal/infrastructure/screen"
)

func sampleScreen(t *testing.T) *screen.Screen {
	t.Helper()
	s := screen.New()
	require.NoError(t, s.Create("", "pr1", "project bg-success"))
	require.NoError(t, s.SetContent("pr1", domain.Fragment{Text: "team/app"}))
	return s
}

func TestModel_LoadingUntilSized(t *testing.T) {
	m := New(sampleScreen(t), Options{})
	assert.Equal(t, "Loading...", m.View())
}

func TestModel_RendersTreeAndHeader(t *testing.T) {
	m := New(sampleScreen(t), Options{
		Status: func() Status {
			return Status{Projects: 1, Failures: 2, LastRefresh: time.Now()}
		},
	})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})

	v := m.View()
	assert.Contains(t, v, "team/app")
	assert.Contains(t, v, "1 projects")
	assert.Contains(t, v, "2 failed fetches")
}

func TestModel_QuitKey(t *testing.T) {
	m := New(sampleScreen(t), Options{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_RefreshKey(t *testing.T) {
	called := 0
	m := New(sampleScreen(t), Options{RefreshNow: func() { called++ }})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Equal(t, 1, called)
}

func TestModel_PauseToggle(t *testing.T) {
	pause := filepath.Join(t.TempDir(), "sub", "paused")
	m := New(sampleScreen(t), Options{PauseFile: pause})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	_, err := os.Stat(pause)
	require.NoError(t, err)
	assert.Contains(t, m.View(), "paused")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	_, err = os.Stat(pause)
	assert.True(t, os.IsNotExist(err))
}
