package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-sync/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "weather-sync",
		Short:         "Location-aware weather synchronization engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			os.Setenv("LOG_LEVEL", "debug")
			logging.Configure("debug", "", nil)
		}
	}

	serve := newServeCmd()
	root.AddCommand(serve, newOnceCmd())

	// Running without a subcommand serves.
	root.RunE = serve.RunE
	bindServeFlags(root.Flags())

	return root
}
