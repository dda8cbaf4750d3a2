package cli

import (
	"go.uber.org/zap"

	"github.com/davarch/ci-dashboard/internal/application"
	"github.com/davarch/ci-dashboard/internal/infrastructure/config"
	"github.com/davarch/ci-dashboard/internal/infrastructure/gitlab_http"
	"github.com/davarch/ci-dashboard/internal/infrastructure/notify_libnotify"
	"github.com/davarch/ci-dashboard/internal/infrastructure/screen"
	"github.com/davarch/ci-dashboard/internal/infrastructure/snapshot_fs"
)

type dashboard struct {
	screen    *screen.Screen
	engine    *application.Engine
	session   *application.Session
	refresher *application.Refresher
}

func newDashboard(cfg config.Config, log *zap.Logger) *dashboard {
	gl := gitlab_http.New(cfg.GitLab.BaseURL, cfg.GitLab.Token, cfg.GitLab.Timeout, cfg.GitLab.Retries)
	scr := screen.New()

	var opts []application.EngineOption
	if cfg.Notify.Enabled {
		opts = append(opts, application.WithNotifier(notify_libnotify.NewSoft(notify_libnotify.Options{})))
	}
	engine := application.NewEngine(log, scr, opts...)
	engine.SetMuted(cfg.Notify.Muted)

	session := application.NewSession()
	ref := application.NewRefresher(log, gl, engine, session, cfg.Refresh.MaxPipelines)
	if cfg.Snapshot.Path != "" {
		ref.ExportTo(snapshot_fs.New(cfg.Snapshot.Path), scr)
	}

	return &dashboard{screen: scr, engine: engine, session: session, refresher: ref}
}
