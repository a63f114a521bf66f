package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frgrisk/tidemark/internal/output"
	"github.com/frgrisk/tidemark/internal/release"
)

var releaseLocalOnly bool

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Inspect the release-tag index",
}

var releaseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List eligible release tags in anchor order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, cfg, _, err := openRepo()
		if err != nil {
			return err
		}

		releases, _, err := release.Load(repo, release.LoadOptions{
			TagPrefix:            cfg.Release.TagPrefix,
			RequireAnnotatedTags: cfg.Release.RequireAnnotatedTags,
			LocalOnly:            releaseLocalOnly,
			RemoteStrategy:       cfg.Remote.Strategy,
			RemoteName:           cfg.Remote.Name,
			FallbackToLocal:      cfg.Remote.FallbackToLocal,
		})
		if err != nil {
			return err
		}

		if output.IsTTY(os.Stdout.Fd()) {
			fmt.Print(output.RenderReleaseListPretty(releases))
		} else {
			fmt.Print(output.FormatReleaseList(releases))
		}
		return nil
	},
}

func init() {
	releaseListCmd.Flags().BoolVar(&releaseLocalOnly, "local-only", false, "skip remote tag refresh")
	releaseCmd.AddCommand(releaseListCmd)
	rootCmd.AddCommand(releaseCmd)
}
