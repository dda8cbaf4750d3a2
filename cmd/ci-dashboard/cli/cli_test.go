package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davarch/ci-dashboard/internal/infrastructure/config"
)

func execute(t *testing.T, args ...string) {
	t.Helper()
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
}

func TestInitThenMuteAndUnmute(t *testing.T) {
	t.Setenv("GITLAB_TOKEN", "")
	path := filepath.Join(t.TempDir(), "config.yaml")

	execute(t, "--config", path, "init", "--server", "https://gl.example", "--token", "abc")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://gl.example", cfg.GitLab.BaseURL)
	assert.Equal(t, "abc", cfg.GitLab.Token)

	execute(t, "--config", path, "mute", "team/app")
	execute(t, "--config", path, "mute", "team/app")
	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"team/app"}, cfg.Notify.Muted)

	execute(t, "--config", path, "unmute", "team/app")
	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Notify.Muted)
}

func TestInitRefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	execute(t, "--config", path, "init", "--token", "abc")

	rootCmd.SetArgs([]string{"--config", path, "init", "--token", "abc"})
	assert.Error(t, rootCmd.Execute())
}

func TestStartsWith(t *testing.T) {
	assert.True(t, startsWith("team/app", "team/"))
	assert.False(t, startsWith("team", "team/app"))
}
