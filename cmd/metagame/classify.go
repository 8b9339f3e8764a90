package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/mtg-metagame/internal/batch"
	"github.com/ramonehamilton/mtg-metagame/internal/decklist"
	"github.com/ramonehamilton/mtg-metagame/internal/export"
	"github.com/ramonehamilton/mtg-metagame/internal/rules"
	"github.com/ramonehamilton/mtg-metagame/internal/storage"
)

var (
	classifyStore      bool
	classifySummary    bool
	classifyCardColors string
	classifyWorkers    int
	classifyOutput     string
)

var classifyCmd = &cobra.Command{
	Use:   "classify <path>...",
	Short: "Classify decklist files or directories",
	Long: `Classify reads JSON decklists and text exports from the given files or
directories ("-" reads standard input) and prints one result per deck as
JSON lines (default), a JSON document or CSV.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("card-colors") {
			cfg.Classifier.CardColors = classifyCardColors
		}
		if cmd.Flags().Changed("workers") {
			cfg.Batch.Workers = classifyWorkers
		}

		output, err := export.ParseFormat(classifyOutput)
		if err != nil {
			return err
		}

		decks, err := loadDecks(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		bundle, err := rules.Load(cfg.Rules.Dir, cfg.Rules.Format, rules.Options{Logger: logger})
		if err != nil {
			return err
		}
		runner, err := newRunner(bundle)
		if err != nil {
			return err
		}

		run, err := runner.Run(cmd.Context(), decks)
		if err != nil {
			return err
		}

		if err := export.WriteRun(cmd.OutOrStdout(), output, run); err != nil {
			return err
		}

		if classifySummary {
			printSummary(cmd.ErrOrStderr(), run)
		}

		if classifyStore || cfg.Storage.Enabled {
			if err := storeRun(cmd, run); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyStore, "store", false, "persist the run to the results database")
	classifyCmd.Flags().BoolVar(&classifySummary, "summary", false, "print label counts to stderr")
	classifyCmd.Flags().StringVar(&classifyCardColors, "card-colors", "", "card color table or Scryfall bulk file")
	classifyCmd.Flags().IntVar(&classifyWorkers, "workers", 0, "concurrent classifications (0 = GOMAXPROCS)")
	classifyCmd.Flags().StringVarP(&classifyOutput, "output", "o", "jsonl", "output format: jsonl, json or csv")
}

func loadDecks(paths []string, stdin io.Reader) ([]decklist.Entry, error) {
	var decks []decklist.Entry
	for _, path := range paths {
		var (
			loaded []decklist.Entry
			err    error
		)
		if path == "-" {
			loaded, err = decklist.Read(stdin, "")
		} else {
			loaded, err = decklist.LoadPath(path)
		}
		if err != nil {
			return nil, err
		}
		decks = append(decks, loaded...)
	}
	logger.Debug("Loaded decklists", "decks", len(decks))
	return decks, nil
}

func printSummary(w io.Writer, run *batch.Run) {
	for _, lc := range run.SortedLabels() {
		fmt.Fprintf(w, "%5d  %s\n", lc.Count, lc.Label)
	}
	if run.Stats != nil {
		fmt.Fprintf(w, "%d decks, %.1f%% labelled, p50 %.3fms, p95 %.3fms\n",
			run.Stats.Decks, run.Stats.LabelledRate, run.Stats.Latency.P50, run.Stats.Latency.P95)
	}
}

func newRunner(bundle *rules.Bundle) (*batch.Runner, error) {
	cardColors, err := loadCardColors()
	if err != nil {
		return nil, err
	}
	classifier, err := newClassifier(bundle, cardColors)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}
	return batch.NewRunner(batch.Config{
		Classifier: classifier,
		Workers:    cfg.Batch.Workers,
		Logger:     logger,
	})
}

func openStore() (*storage.DB, error) {
	db, err := storage.Open(storage.DefaultConfig(cfg.Storage.DBPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}
	return db, nil
}

func storeRun(cmd *cobra.Command, run *batch.Run) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveRun(cmd.Context(), run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	logger.Info("Saved run", "run_id", run.ID, "db", cfg.Storage.DBPath)
	return nil
}
