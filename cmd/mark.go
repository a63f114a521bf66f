package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frgrisk/tidemark/internal/output"
	"github.com/frgrisk/tidemark/internal/resolver"
)

var (
	markExplain   bool
	markLocalOnly bool
	markTag       string
)

var markCmd = &cobra.Command{
	Use:   "mark",
	Short: "Resolve a deterministic version coordinate for HEAD",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, cfg, store, err := openRepo()
		if err != nil {
			return err
		}

		result, err := resolver.ResolveMark(repo, cfg, store, resolver.MarkRequest{
			LocalOnly:      markLocalOnly,
			MetadataSuffix: optionalString(markTag),
		})
		if err != nil {
			return err
		}

		if markExplain {
			fmt.Print(output.FormatExplain(result.Explain))
		} else {
			fmt.Print(output.FormatMark(result.Coordinate))
		}
		return nil
	},
}

func init() {
	markCmd.Flags().BoolVar(&markExplain, "explain", false, "print the full derivation instead of the bare coordinate")
	markCmd.Flags().BoolVar(&markLocalOnly, "local-only", false, "skip remote tag refresh")
	markCmd.Flags().StringVar(&markTag, "tag", "", "metadata suffix appended as x.y.z.<suffix>")
	rootCmd.AddCommand(markCmd)
}
