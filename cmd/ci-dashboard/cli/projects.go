package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/davarch/ci-dashboard/internal/infrastructure/config"
	"github.com/davarch/ci-dashboard/internal/infrastructure/gitlab_http"
)

var projectsJSON bool

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the projects the token is a member of",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		gl := gitlab_http.New(cfg.GitLab.BaseURL, cfg.GitLab.Token, cfg.GitLab.Timeout, cfg.GitLab.Retries)
		ps, err := gl.ListProjects(cmd.Context())
		if err != nil {
			return err
		}

		muted := make(map[string]bool, len(cfg.Notify.Muted))
		for _, m := range cfg.Notify.Muted {
			muted[m] = true
		}

		type item struct {
			ID    int64  `json:"id"`
			Path  string `json:"path"`
			Muted bool   `json:"muted"`
		}
		items := make([]item, 0, len(ps))
		for _, p := range ps {
			items = append(items, item{
				ID:    p.ID,
				Path:  p.Path(),
				Muted: muted[p.Path()] || muted[strconv.FormatInt(p.ID, 10)],
			})
		}

		if projectsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tPATH\tMUTED")
		for _, it := range items {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%t\n", it.ID, it.Path, it.Muted)
		}
		_ = w.Flush()
		return nil
	},
}

func init() {
	projectsCmd.Flags().BoolVar(&projectsJSON, "json", false, "print JSON")
	rootCmd.AddCommand(projectsCmd)
}
