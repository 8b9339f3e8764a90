package rules

import (
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/ramonehamilton/mtg-metagame/internal/archetype"
)

// ColorConfig is the parsed guild/override configuration of a format.
type ColorConfig struct {
	Guilds    map[string]string
	Overrides []archetype.ColorOverride
}

// colorConfigWire mirrors colors.yaml. YAML is a superset of JSON, so the same
// decoder reads colors.json.
//
//	Guilds:
//	  UR: Izzet
//	Overrides:
//	  - Archetype: Burn
//	    Kind: ForceColor
//	    Color: Red
//	  - Archetype: Scapeshift
//	    Kind: Conditional
//	    Color: Mono-Green
//	    When: {Exactly: G}
type colorConfigWire struct {
	Guilds    map[string]string `yaml:"Guilds"`
	Overrides []overrideWire    `yaml:"Overrides"`
}

type overrideWire struct {
	Archetype string         `yaml:"Archetype"`
	Kind      string         `yaml:"Kind"`
	Color     string         `yaml:"Color"`
	When      *predicateWire `yaml:"When"`
}

// predicateWire holds color sets as symbol strings such as "UR".
type predicateWire struct {
	AllOf     string  `yaml:"AllOf"`
	AnyOf     string  `yaml:"AnyOf"`
	NoneOf    string  `yaml:"NoneOf"`
	Exactly   *string `yaml:"Exactly"`
	MinColors int     `yaml:"MinColors"`
	MaxColors int     `yaml:"MaxColors"`
}

// ParseColorConfig decodes a guild/override file. Overrides that cannot be
// used are skipped and recorded on report; a file that does not decode at all
// is an error.
func ParseColorConfig(data []byte, report *Report, logger *slog.Logger) (*ColorConfig, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if report == nil {
		report = &Report{}
	}

	var wire colorConfigWire
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode color config: %w", err)
	}

	cfg := &ColorConfig{Guilds: make(map[string]string, len(wire.Guilds))}
	for key, name := range wire.Guilds {
		identity, err := archetype.ParseColorIdentity(key)
		if err != nil || len(identity) == 0 || name == "" {
			report.warn(logger, "Skipping invalid guild entry", "key", key, "name", name)
			continue
		}
		cfg.Guilds[identity.String()] = name
	}

	for i, ow := range wire.Overrides {
		override, err := parseOverride(ow)
		if err != nil {
			report.OverridesSkipped++
			report.warn(logger, "Skipping invalid color override", "index", i, "archetype", ow.Archetype, "error", err)
			continue
		}
		report.OverridesLoaded++
		cfg.Overrides = append(cfg.Overrides, override)
	}

	return cfg, nil
}

func parseOverride(ow overrideWire) (archetype.ColorOverride, error) {
	if ow.Archetype == "" {
		return archetype.ColorOverride{}, fmt.Errorf("missing archetype name")
	}

	kind := archetype.ParseOverrideKind(ow.Kind)
	override := archetype.ColorOverride{
		Archetype: ow.Archetype,
		Kind:      kind,
		Color:     colorPrefix(ow.Color),
	}

	switch kind {
	case archetype.ForceColor:
		if override.Color == "" {
			return archetype.ColorOverride{}, fmt.Errorf("ForceColor requires a Color")
		}
	case archetype.Conditional:
		if override.Color == "" {
			return archetype.ColorOverride{}, fmt.Errorf("Conditional requires a Color")
		}
		if ow.When == nil {
			return archetype.ColorOverride{}, fmt.Errorf("Conditional requires a When predicate")
		}
		pred, err := parsePredicate(*ow.When)
		if err != nil {
			return archetype.ColorOverride{}, err
		}
		override.When = pred
	case archetype.GuildBased:
	default:
		return archetype.ColorOverride{}, fmt.Errorf("unknown override kind %q", ow.Kind)
	}

	return override, nil
}

// colorPrefix expands a single color symbol to its name ("R" -> "Red") and
// leaves any other text untouched.
func colorPrefix(s string) string {
	if len(s) == 1 {
		if c, ok := archetype.ParseColor(s); ok {
			return c.Name()
		}
	}
	return s
}

func parsePredicate(pw predicateWire) (archetype.ColorPredicate, error) {
	var pred archetype.ColorPredicate
	var err error

	if pred.AllOf, err = archetype.ParseColorIdentity(pw.AllOf); err != nil {
		return pred, fmt.Errorf("invalid AllOf: %w", err)
	}
	if pred.AnyOf, err = archetype.ParseColorIdentity(pw.AnyOf); err != nil {
		return pred, fmt.Errorf("invalid AnyOf: %w", err)
	}
	if pred.NoneOf, err = archetype.ParseColorIdentity(pw.NoneOf); err != nil {
		return pred, fmt.Errorf("invalid NoneOf: %w", err)
	}
	if pw.Exactly != nil {
		if pred.Exactly, err = archetype.ParseColorIdentity(*pw.Exactly); err != nil {
			return pred, fmt.Errorf("invalid Exactly: %w", err)
		}
	}
	if pw.MinColors < 0 || pw.MaxColors < 0 {
		return pred, fmt.Errorf("color counts cannot be negative")
	}
	pred.MinColors = pw.MinColors
	pred.MaxColors = pw.MaxColors
	return pred, nil
}
