package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/davarch/ci-dashboard/internal/infrastructure/config"
)

var (
	initServer string
	initToken  string
	initForce  bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgPath); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}

		c := config.Default()
		c.GitLab.BaseURL = initServer
		c.GitLab.Token = initToken
		if err := config.Save(cfgPath, c); err != nil {
			return err
		}

		fmt.Printf("wrote %s\n", cfgPath)
		if initToken == "" {
			fmt.Println("set gitlab.token or GITLAB_TOKEN before running")
		}
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initServer, "server", config.DefaultBaseURL, "GitLab base URL")
	initCmd.Flags().StringVar(&initToken, "token", "", "personal access token (read_api)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}
