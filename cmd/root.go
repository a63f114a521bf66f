// Package cmd wires the tidemark CLI surface — mark, file, release,
// config, and service subcommands — onto the core resolver, following the
// same cobra root-command shape as the changelog tool this project began
// from.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frgrisk/tidemark/internal/tidelog"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "tidemark",
	Short:         "Deterministic git-native version coordinates",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it. It
// only needs to happen once, from main.main(). Resolver-layer errors are
// caught here, mapped to the exit code their Kind carries, and printed as
// a single "error: <message>" diagnostic line.
func Execute() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug-level diagnostics on stderr")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	cobra.OnInitialize(func() {
		tidelog.SetVerbose(verbose)
	})
}
