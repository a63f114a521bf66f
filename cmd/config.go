package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frgrisk/tidemark/internal/gitrepo/govcs"
	"github.com/frgrisk/tidemark/internal/tideconfig"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the repository-local tidemark configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		repo, err := govcs.Discover(cwd)
		if err != nil {
			return err
		}

		path, err := tideconfig.Init(repo.RepoRoot())
		if err != nil {
			return err
		}

		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
