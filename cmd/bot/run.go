package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"homeworkbot/internal/app"
	"homeworkbot/internal/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll the API and notify until interrupted",
	Long: `Start the polling loop.

The loop runs one cycle, sleeps for the retry period and repeats until it
receives SIGINT or SIGTERM. Missing required configuration is the only
condition that stops it from starting.

Example:
  bot run -c config.yaml
  PRACTICUM_TOKEN=... TELEGRAM_TOKEN=... TELEGRAM_CHAT_ID=... ENDPOINT=... bot run`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	path, envFiles := configFlags(cmd)
	cfg, err := app.LoadConfig(path, envFiles...)
	if err != nil {
		if errors.Is(err, config.ErrMissing) {
			return fmt.Errorf("%w (set them in the config file, .env or environment)", err)
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return a.Run(ctx)
}
