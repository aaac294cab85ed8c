package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "beacon",
	Version: Version,
	Short:   "Derive normalized execution status from task context documents",
	Long: `Beacon projects schema-drifted task context documents into a
normalized execution status. It answers:
1. What is this execution doing right now?
2. How far along is it?
3. What did it touch?`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}
