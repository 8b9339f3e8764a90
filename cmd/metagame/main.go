// Command metagame classifies tournament decklists into metagame archetypes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/mtg-metagame/internal/archetype"
	"github.com/ramonehamilton/mtg-metagame/internal/cards"
	"github.com/ramonehamilton/mtg-metagame/internal/config"
	"github.com/ramonehamilton/mtg-metagame/internal/rules"
	"github.com/ramonehamilton/mtg-metagame/internal/version"
)

var (
	// Global flags
	configPath string
	debug      bool
	rulesDir   string
	format     string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "metagame",
	Short: "Classify Magic: The Gathering decklists into metagame archetypes",
	Long: `metagame assigns archetype labels such as "Izzet Prowess" or "Boros Burn"
to decklists using ordered per-format rule files, signature-card fallbacks
and detected deck colors.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Flags override the config file.
		if cmd.Flags().Changed("rules-dir") {
			cfg.Rules.Dir = rulesDir
		}
		if cmd.Flags().Changed("format") {
			cfg.Rules.Format = format
		}
		if debug {
			cfg.App.DebugMode = true
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		level := slog.LevelInfo
		if cfg.App.DebugMode {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.metagame/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rulesDir, "rules-dir", "", "directory with one rule subdirectory per format")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "", "format to classify, e.g. Modern")

	rootCmd.AddCommand(classifyCmd, rulesCmd, watchCmd, runsCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newClassifier builds a classifier for a loaded bundle using the configured
// thresholds and card color table.
func newClassifier(bundle *rules.Bundle, cardColors archetype.CardColorTable) (*archetype.Classifier, error) {
	return archetype.NewClassifier(archetype.ClassifierConfig{
		RuleSet:            bundle.RuleSet,
		CardColors:         cardColors,
		Guilds:             bundle.Guilds,
		Overrides:          bundle.Overrides,
		Logger:             logger,
		FallbackMinOverlap: cfg.Classifier.FallbackMinOverlap,
		ColorMinShare:      cfg.Classifier.ColorMinShare,
		ColorOnlyFallback:  cfg.Classifier.ColorOnlyFallback,
	})
}

// loadCardColors reads the configured card color table. Without one, decks
// get no detected colors and labels carry no color prefix.
func loadCardColors() (archetype.CardColorTable, error) {
	if cfg.Classifier.CardColors == "" {
		logger.Warn("No card color table configured; color prefixes are disabled")
		return archetype.CardColorTable{}, nil
	}
	return cards.LoadColorTable(cfg.Classifier.CardColors, logger)
}
