// Package main is the entry point of the homework status bot.
//
// Usage:
//
//	bot run -c config.yaml      # Poll and notify until interrupted
//	bot validate -c config.yaml # Check configuration and exit
//	bot history -n 20           # Show recent cycles from the journal
//	bot version                 # Show version info
//
// The config file is optional: every required value can come from the
// environment or a .env file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "bot",
	Short: "Notify a Telegram chat about homework review status changes",
	Long: `bot polls the homework status API at a fixed interval and sends a
Telegram message whenever the review status of the latest homework changes.

Required values (config file, .env or environment):
  PRACTICUM_TOKEN    API token for the homework status API
  TELEGRAM_TOKEN     Telegram bot token
  TELEGRAM_CHAT_ID   chat id or @channel to notify
  ENDPOINT           homework status API URL

Running bot without a subcommand is the same as "bot run".`,
	SilenceUsage: true,
	RunE:         runRun,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file (JSON or YAML)")
	rootCmd.PersistentFlags().StringSlice("env-file", []string{".env"}, "dotenv files to load (missing files are ignored)")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "bot %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

// configFlags returns the shared --config and --env-file values.
func configFlags(cmd *cobra.Command) (string, []string) {
	path, _ := cmd.Flags().GetString("config")
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	if envFiles == nil {
		envFiles = []string{}
	}
	return path, envFiles
}
