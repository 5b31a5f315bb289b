// dtnsim simulates Delay-Tolerant Networking routing strategies
// (Contact-Graph Routing, Epidemic, Spray-and-Wait) over mobile,
// intermittently connected ground and relay nodes.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "dtnsim",
	Short:   "Discrete-event DTN routing simulator",
	Long:    `dtnsim runs tick-driven, agent-based simulations of DTN routing over mobile, intermittently connected networks.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(cpconvertCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
