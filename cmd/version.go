package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build information, set with -ldflags "-X github.com/Dmetrikx/goCharacterChatter/cmd.Version=..."
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildTime = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of the application",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(),
			"version=%s commit=%s built: %s\n",
			Version,
			CommitSHA,
			BuildTime,
		)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
