package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"homeworkbot/internal/app"
	"homeworkbot/internal/config"
)

// validateCmd checks the configuration without contacting any service.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Load the config file, .env files and environment, then validate the
result without starting the loop.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  bot validate -c config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, envFiles := configFlags(cmd)
	cfg, err := app.LoadConfig(path, envFiles...)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	sched, _ := config.RetrySchedule(cfg)

	journal := "disabled"
	if sc := cfg.Storage; sc != nil && sc.Driver != "" && !strings.EqualFold(sc.Driver, "none") {
		journal = sc.Driver + " (" + sc.Path + ")"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Endpoint:     %s\n", cfg.Practicum.Endpoint)
	fmt.Fprintf(out, "  Chat:         %s\n", cfg.Telegram.ChatID)
	fmt.Fprintf(out, "  Retry period: %s\n", sched.Delay)
	fmt.Fprintf(out, "  Journal:      %s\n", journal)
	return nil
}
