package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"homeworkbot/internal/app"
	"homeworkbot/internal/storage"
	logx "homeworkbot/pkg/logx"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent poll cycles from the journal",
	Long: `Print the newest entries of the cycle journal, oldest first.

Requires storage.driver to be "file" or "sqlite" in the config.

Example:
  bot history -c config.yaml -n 50`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "number of entries to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, envFiles := configFlags(cmd)
	limit, _ := cmd.Flags().GetInt("limit")

	cfgm := app.NewConfigManager(path)
	cfgm.SetEnvFiles(envFiles...)
	cfg, err := cfgm.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := app.OpenJournal(cfg, logx.Nop())
	if errors.Is(err, storage.ErrDisabled) {
		return errors.New("journal is disabled: set storage.driver and storage.path")
	}
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	recs, err := st.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, "No cycles recorded yet.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tOUTCOME\tCHECKPOINT\tTOOK\tDETAIL")
	for _, r := range recs {
		detail := r.Message
		if r.Error != "" {
			detail = r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%dms\t%s\n",
			r.At.Local().Format(time.DateTime), r.Outcome, r.Checkpoint, r.TookMS, detail)
	}
	return tw.Flush()
}
