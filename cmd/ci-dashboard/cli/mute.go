package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/davarch/ci-dashboard/internal/infrastructure/config"
)

var muteCmd = &cobra.Command{
	Use:   "mute <project>",
	Short: "Stop notifications for a project (id or group/name)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		if slices.Contains(cfg.Notify.Muted, name) {
			fmt.Printf("no change (project %q already muted)\n", name)
			return nil
		}
		cfg.Notify.Muted = append(cfg.Notify.Muted, name)

		if err := config.Save(cfgPath, cfg); err != nil {
			return err
		}

		fmt.Printf("muted: %s\n", name)
		return nil
	},
}

var unmuteCmd = &cobra.Command{
	Use:   "unmute <project>",
	Short: "Resume notifications for a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		i := slices.Index(cfg.Notify.Muted, name)
		if i < 0 {
			fmt.Printf("no change (project %q is not muted)\n", name)
			return nil
		}
		cfg.Notify.Muted = slices.Delete(cfg.Notify.Muted, i, i+1)

		if err := config.Save(cfgPath, cfg); err != nil {
			return err
		}

		fmt.Printf("unmuted: %s\n", name)
		return nil
	},
}

func init() {
	unmuteCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		out := make([]string, 0, len(cfg.Notify.Muted))
		for _, m := range cfg.Notify.Muted {
			if toComplete == "" || startsWith(m, toComplete) {
				out = append(out, m)
			}
		}

		return out, cobra.ShellCompDirectiveNoFileComp
	}

	rootCmd.AddCommand(muteCmd, unmuteCmd)
}

func startsWith(s, pref string) bool {
	if len(pref) > len(s) {
		return false
	}

	return s[:len(pref)] == pref
}
