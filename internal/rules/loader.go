// Package rules loads per-format archetype rule files, fallbacks and color
// naming configuration into immutable archetype rule sets.
package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/ramonehamilton/mtg-metagame/internal/archetype"
)

// Rule files expected inside a format directory.
const (
	ArchetypesFile = "archetypes.json"
	FallbacksFile  = "fallbacks.json"
	ColorsFileYAML = "colors.yaml"
	ColorsFileJSON = "colors.json"
)

// ErrNoRuleSet is returned when a format has no usable archetype rules.
var ErrNoRuleSet = errors.New("no usable rule set")

// Options configures rule loading.
type Options struct {
	Logger *slog.Logger
}

// Bundle is everything needed to build a classifier for one format.
type Bundle struct {
	RuleSet   *archetype.RuleSet
	Guilds    archetype.GuildTable
	Overrides []archetype.ColorOverride
	Report    *Report
}

// Report summarizes what a load accepted and rejected.
type Report struct {
	Format             string   `json:"format"`
	ArchetypesLoaded   int      `json:"archetypes_loaded"`
	ArchetypesSkipped  int      `json:"archetypes_skipped"`
	VariantsLoaded     int      `json:"variants_loaded"`
	VariantsSkipped    int      `json:"variants_skipped"`
	FallbacksLoaded    int      `json:"fallbacks_loaded"`
	FallbacksSkipped   int      `json:"fallbacks_skipped"`
	OverridesLoaded    int      `json:"overrides_loaded"`
	OverridesSkipped   int      `json:"overrides_skipped"`
	MalformedCondition int      `json:"malformed_conditions"`
	Warnings           []string `json:"warnings,omitempty"`
}

func (r *Report) warn(logger *slog.Logger, msg string, args ...any) {
	logger.Warn(msg, append([]any{"format", r.Format}, args...)...)
	r.Warnings = append(r.Warnings, fmt.Sprintf("%s %v", msg, args))
}

// Load reads the rule files of a format from dir/format. The archetype file is
// required; fallbacks and color configuration are optional. Individual bad
// definitions are skipped, but an absent or unparsable rule file is an error.
func Load(dir, format string, opts Options) (*Bundle, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	formatDir := filepath.Join(dir, format)

	archetypesData, err := os.ReadFile(filepath.Join(formatDir, ArchetypesFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s has no %s", ErrNoRuleSet, format, ArchetypesFile)
		}
		return nil, fmt.Errorf("failed to read archetypes for %s: %w", format, err)
	}

	fallbacksData, err := os.ReadFile(filepath.Join(formatDir, FallbacksFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read fallbacks for %s: %w", format, err)
	}

	ruleSet, report, err := ParseRuleSet(format, archetypesData, fallbacksData, opts.Logger)
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{
		RuleSet: ruleSet,
		Guilds:  archetype.DefaultGuildTable(),
		Report:  report,
	}

	colorsPath, ok := findColorsFile(formatDir)
	if ok {
		data, err := os.ReadFile(colorsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read color config for %s: %w", format, err)
		}
		cfg, err := ParseColorConfig(data, report, opts.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", colorsPath, err)
		}
		bundle.Guilds = bundle.Guilds.Merge(cfg.Guilds)
		bundle.Overrides = cfg.Overrides
	}

	opts.Logger.Info("Loaded rule set",
		"format", format,
		"archetypes", report.ArchetypesLoaded,
		"fallbacks", report.FallbacksLoaded,
		"overrides", report.OverridesLoaded,
		"skipped", report.ArchetypesSkipped+report.FallbacksSkipped+report.VariantsSkipped)

	return bundle, nil
}

func findColorsFile(formatDir string) (string, bool) {
	for _, name := range []string{ColorsFileYAML, ColorsFileJSON} {
		path := filepath.Join(formatDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// Formats lists the formats under dir that have an archetype file.
func Formats(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules directory: %w", err)
	}

	var formats []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, entry.Name(), ArchetypesFile)); err == nil {
			formats = append(formats, entry.Name())
		}
	}
	sort.Strings(formats)
	return formats, nil
}

type archetypeWire struct {
	Name               string            `json:"Name"`
	IncludeColorInName bool              `json:"IncludeColorInName"`
	Conditions         []conditionWire   `json:"Conditions"`
	Variants           []json.RawMessage `json:"Variants"`
}

type conditionWire struct {
	Type  string          `json:"Type"`
	Cards json.RawMessage `json:"Cards"`
}

type fallbackWire struct {
	Name           string   `json:"Name"`
	SignatureCards []string `json:"SignatureCards"`
}

// ParseRuleSet builds a rule set from the raw archetype and fallback files.
// fallbacksData may be empty. Definitions failing validation are skipped and
// reported; file order of the remaining definitions is preserved.
func ParseRuleSet(format string, archetypesData, fallbacksData []byte, logger *slog.Logger) (*archetype.RuleSet, *Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	report := &Report{Format: format}

	var rawArchetypes []json.RawMessage
	if err := json.Unmarshal(archetypesData, &rawArchetypes); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to parse %s archetypes: %v", ErrNoRuleSet, format, err)
	}

	archetypes := make([]archetype.ArchetypeDefinition, 0, len(rawArchetypes))
	for i, raw := range rawArchetypes {
		def, err := parseArchetype(raw, report, logger)
		if err != nil {
			report.ArchetypesSkipped++
			report.warn(logger, "Skipping invalid archetype", "index", i, "error", err)
			continue
		}
		report.ArchetypesLoaded++
		archetypes = append(archetypes, def)
	}
	if len(archetypes) == 0 {
		return nil, nil, fmt.Errorf("%w: %s has no valid archetypes", ErrNoRuleSet, format)
	}

	var fallbacks []archetype.FallbackDefinition
	if len(fallbacksData) > 0 {
		var rawFallbacks []json.RawMessage
		if err := json.Unmarshal(fallbacksData, &rawFallbacks); err != nil {
			return nil, nil, fmt.Errorf("%w: failed to parse %s fallbacks: %v", ErrNoRuleSet, format, err)
		}
		for i, raw := range rawFallbacks {
			if err := validateDefinition("fallback", raw); err != nil {
				report.FallbacksSkipped++
				report.warn(logger, "Skipping invalid fallback", "index", i, "error", err)
				continue
			}
			var wire fallbackWire
			if err := json.Unmarshal(raw, &wire); err != nil {
				report.FallbacksSkipped++
				report.warn(logger, "Skipping invalid fallback", "index", i, "error", err)
				continue
			}
			report.FallbacksLoaded++
			fallbacks = append(fallbacks, archetype.FallbackDefinition{
				Name:           wire.Name,
				SignatureCards: wire.SignatureCards,
			})
		}
	}

	return archetype.NewRuleSet(format, archetypes, fallbacks), report, nil
}

// parseArchetype validates and decodes one archetype, recursing into variants.
// Invalid variants are dropped without rejecting the parent.
func parseArchetype(raw json.RawMessage, report *Report, logger *slog.Logger) (archetype.ArchetypeDefinition, error) {
	if err := validateDefinition("archetype", raw); err != nil {
		return archetype.ArchetypeDefinition{}, err
	}

	var wire archetypeWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return archetype.ArchetypeDefinition{}, fmt.Errorf("failed to decode archetype: %w", err)
	}

	def := archetype.ArchetypeDefinition{
		Name:               wire.Name,
		IncludeColorInName: wire.IncludeColorInName,
		Conditions:         make([]archetype.Condition, 0, len(wire.Conditions)),
	}

	for _, cw := range wire.Conditions {
		cond := archetype.Condition{
			Kind: archetype.ParseConditionKind(cw.Type),
			Type: cw.Type,
		}
		if cond.Kind == archetype.ConditionUnknown {
			report.MalformedCondition++
			report.warn(logger, "Unknown condition type", "archetype", wire.Name, "type", cw.Type)
		}

		switch {
		case len(cw.Cards) == 0 || string(cw.Cards) == "null":
			report.MalformedCondition++
			report.warn(logger, "Condition has no Cards", "archetype", wire.Name, "type", cw.Type)
		default:
			var cards []string
			if err := json.Unmarshal(cw.Cards, &cards); err != nil {
				report.MalformedCondition++
				report.warn(logger, "Condition Cards is not a list of names", "archetype", wire.Name, "type", cw.Type)
			} else if len(cards) > 0 && !anyNamed(cards) {
				report.MalformedCondition++
				report.warn(logger, "Condition Cards has no usable card names", "archetype", wire.Name, "type", cw.Type)
			} else {
				if cards == nil {
					cards = []string{}
				}
				cond.Cards = cards
			}
		}

		def.Conditions = append(def.Conditions, cond)
	}

	for i, rawVariant := range wire.Variants {
		variant, err := parseArchetype(rawVariant, report, logger)
		if err != nil {
			report.VariantsSkipped++
			report.warn(logger, "Skipping invalid variant", "archetype", wire.Name, "index", i, "error", err)
			continue
		}
		report.VariantsLoaded++
		def.Variants = append(def.Variants, variant)
	}

	return def, nil
}

// anyNamed reports whether at least one entry is a card name after
// normalization.
func anyNamed(cards []string) bool {
	for _, c := range cards {
		if archetype.NormalizeCardName(c) != "" {
			return true
		}
	}
	return false
}
