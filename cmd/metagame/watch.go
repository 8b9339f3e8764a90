package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/mtg-metagame/internal/rules"
	"github.com/ramonehamilton/mtg-metagame/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <path>...",
	Short: "Re-classify decklists whenever the format's rules change",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decks, err := loadDecks(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		debounce, err := cfg.GetWatchDebounce()
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		classify := func(bundle *rules.Bundle) {
			runner, err := newRunner(bundle)
			if err != nil {
				logger.Error("Failed to build classifier", "error", err)
				return
			}
			run, err := runner.Run(cmd.Context(), decks)
			if err != nil {
				logger.Warn("Classification interrupted", "error", err)
				return
			}
			if err := enc.Encode(struct {
				RunID  string `json:"run_id"`
				Format string `json:"format"`
				Labels any    `json:"labels"`
			}{run.ID.String(), run.Format, run.SortedLabels()}); err != nil {
				logger.Error("Failed to write summary", "error", err)
			}
		}

		w, err := watch.New(watch.Config{
			Dir:      cfg.Rules.Dir,
			Format:   cfg.Rules.Format,
			Debounce: debounce,
			Logger:   logger,
		}, classify)
		if err != nil {
			return err
		}

		classify(w.Current())
		if err := w.Run(cmd.Context()); err != nil {
			return fmt.Errorf("watcher stopped: %w", err)
		}
		return nil
	},
}
