package cli

import (
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davarch/ci-dashboard/internal/application"
	"github.com/davarch/ci-dashboard/internal/infrastructure/config"
	"github.com/davarch/ci-dashboard/internal/infrastructure/logging"
	"github.com/davarch/ci-dashboard/internal/infrastructure/tui"
)

var runHyperlinks bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Show the live dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		log, err := logging.New(cfg.Log.Level, cfg.Log.File)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		d := newDashboard(cfg, log)
		sched := application.NewScheduler(log, cfg.Refresh.Interval, cfg.Refresh.PauseFile, d.refresher.Refresh)

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		stop := watchAndReload(cfgPath, log, sched, d.engine)
		defer stop()

		log.Info("start",
			zap.String("version", version),
			zap.Duration("every", cfg.Refresh.Interval),
			zap.Int("max_pipelines", cfg.Refresh.MaxPipelines),
			zap.String("gitlab", cfg.GitLab.BaseURL),
			zap.String("snapshot", cfg.Snapshot.Path),
			zap.String("pause_file", cfg.Refresh.PauseFile),
		)

		go sched.Run(ctx)

		model := tui.New(d.screen, tui.Options{
			Title: "ci-dashboard " + version,
			Status: func() tui.Status {
				st := d.session.Stats()
				return tui.Status{
					Projects:    st.Projects,
					InFlight:    st.CyclesStarted - st.CyclesFinished,
					Failures:    st.Failures,
					LastRefresh: st.LastRefresh,
					Interval:    sched.Interval(),
				}
			},
			RefreshNow: func() { sched.Trigger(ctx) },
			PauseFile:  cfg.Refresh.PauseFile,
			Hyperlinks: runHyperlinks,
		})

		err = tui.Run(ctx, model)
		cancel()
		sched.Wait()
		log.Info("stop")
		return err
	},
}

func init() {
	runCmd.Flags().BoolVar(&runHyperlinks, "hyperlinks", true, "make job names clickable (OSC 8)")
	rootCmd.AddCommand(runCmd)
}

// watchAndReload applies interval and mute changes from the config file
// while the dashboard runs. Other settings need a restart.
func watchAndReload(cfgPath string, log *zap.Logger, sched *application.Scheduler, engine *application.Engine) func() {
	noop := func() {}
	if cfgPath == "" {
		return noop
	}

	dir := filepath.Dir(cfgPath)
	base := filepath.Base(cfgPath)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("fsnotify init failed", zap.Error(err))
		return noop
	}

	if err := w.Add(dir); err != nil {
		log.Warn("fsnotify add dir failed", zap.String("dir", dir), zap.Error(err))
		_ = w.Close()
		return noop
	}

	fire := func() {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			log.Warn("config reload failed", zap.Error(err))
			return
		}
		sched.UpdateInterval(cfg.Refresh.Interval)
		engine.SetMuted(cfg.Notify.Muted)
		log.Info("config reloaded",
			zap.Duration("every", cfg.Refresh.Interval),
			zap.Strings("muted", cfg.Notify.Muted),
		)
	}

	go func() {
		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}

				if filepath.Base(ev.Name) != base {
					continue
				}

				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					if timer == nil {
						timer = time.AfterFunc(300*time.Millisecond, fire)
					} else {
						timer.Reset(300 * time.Millisecond)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("fsnotify error", zap.Error(err))
			}
		}
	}()

	return func() { _ = w.Close() }
}
