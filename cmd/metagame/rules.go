package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/mtg-metagame/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect rule files",
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the format's rules and report skipped definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := rules.Load(cfg.Rules.Dir, cfg.Rules.Format, rules.Options{Logger: logger})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(bundle.Report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		r := bundle.Report
		if r.ArchetypesSkipped+r.VariantsSkipped+r.FallbacksSkipped+r.OverridesSkipped+r.MalformedCondition > 0 {
			return fmt.Errorf("%s rules have %d warnings", cfg.Rules.Format, len(r.Warnings))
		}
		return nil
	},
}

var rulesFormatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the formats found in the rules directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		formats, err := rules.Formats(cfg.Rules.Dir)
		if err != nil {
			return err
		}
		for _, f := range formats {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesValidateCmd, rulesFormatsCmd)
}
