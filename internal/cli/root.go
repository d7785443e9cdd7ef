// Package cli implements the simpledeal command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time.
var Version = "0.1.0"

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "simpledeal",
	Short: "Escrow ledger for a peer-to-peer task marketplace",
	Long: `simpledeal runs and inspects a hashtag: an escrow ledger where a
seeker posts a task with a budget, providers reply, both parties
deposit matching value, and payment is released on completion or
arbitrated by the maintainer on disagreement.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:8480", "Address of the simpledeal daemon")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
