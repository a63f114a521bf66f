package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frgrisk/tidemark/internal/output"
	"github.com/frgrisk/tidemark/internal/resolver"
)

var (
	fileLocalOnly bool
	fileTag       string
)

var fileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Resolve a deterministic version coordinate for a path's last-modifying commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, cfg, store, err := openRepo()
		if err != nil {
			return err
		}

		if tag := optionalString(fileTag); tag != nil {
			cfg.Output.MetadataSuffix = tag
		}

		result, err := resolver.ResolveFile(repo, cfg, store, resolver.FileRequest{
			Path:      args[0],
			LocalOnly: fileLocalOnly,
		})
		if err != nil {
			return err
		}

		fmt.Print(output.FormatMark(result.Mark.Coordinate))
		return nil
	},
}

func init() {
	fileCmd.Flags().BoolVar(&fileLocalOnly, "local-only", false, "skip remote tag refresh")
	fileCmd.Flags().StringVar(&fileTag, "tag", "", "metadata suffix appended as x.y.z.<suffix>")
	rootCmd.AddCommand(fileCmd)
}
