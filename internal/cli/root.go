package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "claimctl",
	Short:        "Evaluate insurance claims against policy catalogs",
	Long:         "Decides claims against a policy catalog: approval, payout and a reason code.\nRejections are outcomes, not errors.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
