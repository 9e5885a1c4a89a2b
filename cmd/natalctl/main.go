// natalctl computes natal charts and calendar boundaries from the
// command line, without running the HTTP server.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/astromirror/natalengine/internal/constants"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "natalctl",
		Short:        "natalengine command-line client",
		Version:      constants.Version,
		SilenceUsage: true,
	}

	cmd.AddCommand(newComputeCmd())
	cmd.AddCommand(newLiChunCmd())
	cmd.AddCommand(newPillarCmd())
	return cmd
}
