package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/davarch/ci-dashboard/internal/domain"
	"github.com/davarch/ci-dashboard/internal/infrastructure/config"
	"github.com/davarch/ci-dashboard/internal/infrastructure/logging"
	"github.com/davarch/ci-dashboard/internal/infrastructure/screen"
)

var (
	onceJSON  bool
	onceWidth int
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single refresh cycle and print the dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		log := logging.Console(cfg.Log.Level)
		defer func() { _ = log.Sync() }()

		d := newDashboard(cfg, log)
		if err := d.refresher.Cycle(cmd.Context()); err != nil {
			return err
		}

		if onceJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(domain.Snapshot{Nodes: d.screen.Snapshot(), Retrieved: time.Now().Unix()})
		}

		out := screen.Render(d.screen.Snapshot(), screen.RenderOptions{Width: onceWidth})
		if out == "" {
			out = "no projects with pipelines"
		}
		fmt.Println(out)

		if st := d.session.Stats(); st.Failures > 0 {
			_, _ = fmt.Fprintf(os.Stderr, "%d fetches failed; see log\n", st.Failures)
		}
		return nil
	},
}

func init() {
	onceCmd.Flags().BoolVar(&onceJSON, "json", false, "print the tree as JSON")
	onceCmd.Flags().IntVar(&onceWidth, "width", 100, "wrap job lists at this width (0 disables)")
	rootCmd.AddCommand(onceCmd)
}
