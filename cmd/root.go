// Package cmd implements the concierge CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"
const logo = "📅"

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "concierge",
	Short: logo + " concierge — Conversational appointment assistant",
	Long:  logo + " concierge — an LLM-backed assistant that books appointments, checks the weather, and looks up locations over chat",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(statusCmd)
}
