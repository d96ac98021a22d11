package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "songplays",
	Short: "Star-schema ETL for song play analytics",
	Long: banner + `

songplays stages raw event logs and song metadata from object storage into a
Postgres-wire warehouse, then derives a star schema: one song play fact table
and user, song, artist and time dimensions.

A full run drops and recreates every table, bulk loads the two staging tables
and populates the dimensional model. Each phase can also run on its own.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or sources
  11 - Warehouse connection failed
  12 - User denied the reset
  13 - SQL execution failed
  14 - Staging load failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for songplays")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
