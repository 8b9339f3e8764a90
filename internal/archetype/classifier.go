// Package archetype classifies tournament decklists into metagame archetypes
// using ordered rule sets, fallback scoring and color-identity naming.
package archetype

import (
	"errors"
	"fmt"
	"log/slog"
)

// UnknownLabel is the label of a deck that matched nothing.
const UnknownLabel = "Unknown"

// ErrNilRuleSet is returned when a classifier is created without rules.
var ErrNilRuleSet = errors.New("rule set is required")

// MatchKind describes how a label was reached.
type MatchKind int

const (
	MatchUnknown   MatchKind = iota // Nothing matched
	MatchPrimary                    // Top-level archetype matched
	MatchVariant                    // A variant of the archetype matched
	MatchFallback                   // Best fallback above the overlap threshold
	MatchColorOnly                  // Labelled from colors alone (opt-in)
)

func (k MatchKind) String() string {
	switch k {
	case MatchPrimary:
		return "Primary"
	case MatchVariant:
		return "Variant"
	case MatchFallback:
		return "Fallback"
	case MatchColorOnly:
		return "ColorOnly"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k MatchKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *MatchKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Primary":
		*k = MatchPrimary
	case "Variant":
		*k = MatchVariant
	case "Fallback":
		*k = MatchFallback
	case "ColorOnly":
		*k = MatchColorOnly
	case "Unknown":
		*k = MatchUnknown
	default:
		return fmt.Errorf("invalid match kind %q", text)
	}
	return nil
}

// ClassificationResult represents the result of classifying a deck.
type ClassificationResult struct {
	FinalLabel      string        `json:"label"`
	MatchKind       MatchKind     `json:"match_kind"`
	Colors          ColorIdentity `json:"colors"`
	Archetype       string        `json:"archetype,omitempty"`        // Matched archetype or fallback name
	Variant         string        `json:"variant,omitempty"`          // Matched variant name
	FallbackOverlap float64       `json:"fallback_overlap,omitempty"` // Signature overlap for fallbacks
}

// ClassifierConfig configures a Classifier.
type ClassifierConfig struct {
	RuleSet    *RuleSet
	CardColors CardColorTable
	Guilds     GuildTable // Defaults to DefaultGuildTable
	Overrides  []ColorOverride
	Logger     *slog.Logger

	// FallbackMinOverlap is the minimum signature overlap for a fallback (default: 0.10).
	FallbackMinOverlap float64

	// ColorMinShare is the minimum share of colored cards for a color (default: 0.10).
	ColorMinShare float64

	// ColorOnlyFallback labels otherwise unknown decks with their guild name.
	ColorOnlyFallback bool
}

// Classifier assigns archetype labels to decklists.
// All state is read-only after construction; Classify is safe for concurrent use.
type Classifier struct {
	rules      *RuleSet
	cardColors CardColorTable
	matcher    *Matcher
	integrator *Integrator
	logger     *slog.Logger

	fallbackMinOverlap float64
	colorMinShare      float64
	colorOnlyFallback  bool
}

// NewClassifier creates a classifier. It fails when no rule set is given so
// a broken rule load surfaces before any deck is classified.
func NewClassifier(config ClassifierConfig) (*Classifier, error) {
	if config.RuleSet == nil {
		return nil, ErrNilRuleSet
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.FallbackMinOverlap == 0 {
		config.FallbackMinOverlap = DefaultFallbackMinOverlap
	}
	if config.ColorMinShare == 0 {
		config.ColorMinShare = DefaultColorMinShare
	}
	if config.FallbackMinOverlap < 0 || config.FallbackMinOverlap > 1 {
		return nil, fmt.Errorf("fallback min overlap must be within (0, 1], got %v", config.FallbackMinOverlap)
	}
	if config.ColorMinShare < 0 || config.ColorMinShare > 1 {
		return nil, fmt.Errorf("color min share must be within (0, 1], got %v", config.ColorMinShare)
	}
	if config.CardColors == nil {
		config.CardColors = CardColorTable{}
	}

	return &Classifier{
		rules:              config.RuleSet,
		cardColors:         config.CardColors,
		matcher:            NewMatcher(NewEvaluator(config.Logger)),
		integrator:         NewIntegrator(config.Guilds, config.Overrides),
		logger:             config.Logger,
		fallbackMinOverlap: config.FallbackMinOverlap,
		colorMinShare:      config.ColorMinShare,
		colorOnlyFallback:  config.ColorOnlyFallback,
	}, nil
}

// Format returns the format of the classifier's rule set.
func (c *Classifier) Format() string {
	return c.rules.Format
}

// Classify classifies a deck. It never fails: decks that match nothing are
// labelled UnknownLabel and are never given a color prefix. An archetype or
// variant label gets a color prefix only when its definition sets
// IncludeColorInName or an override names it; fallback labels always do.
func (c *Classifier) Classify(list Decklist) ClassificationResult {
	deck := NewDeck(list)
	if deck.IsEmpty() {
		return ClassificationResult{
			FinalLabel: UnknownLabel,
			MatchKind:  MatchUnknown,
			Colors:     ColorIdentity{},
		}
	}

	match, matched := c.matcher.Match(deck, c.rules.Archetypes)

	var fallback FallbackScore
	fellBack := false
	if !matched {
		fallback, fellBack = ScoreFallback(deck, c.rules.Fallbacks, c.fallbackMinOverlap)
	}

	colors := DetectColors(deck, c.cardColors, c.colorMinShare)

	switch {
	case matched:
		def := match.Definition()
		label := def.Name
		if def.IncludeColorInName || c.integrator.HasOverride(label) {
			label = c.integrator.Integrate(label, colors)
		}
		result := ClassificationResult{
			FinalLabel: label,
			MatchKind:  match.Kind(),
			Colors:     colors,
			Archetype:  match.Archetype.Name,
		}
		if match.Variant != nil {
			result.Variant = match.Variant.Name
		}
		c.logger.Debug("Deck matched archetype",
			"archetype", result.Archetype,
			"variant", result.Variant,
			"label", label)
		return result

	case fellBack:
		label := c.integrator.Integrate(fallback.Fallback.Name, colors)
		c.logger.Debug("Deck matched fallback",
			"fallback", fallback.Fallback.Name,
			"overlap", fallback.Overlap,
			"label", label)
		return ClassificationResult{
			FinalLabel:      label,
			MatchKind:       MatchFallback,
			Colors:          colors,
			Archetype:       fallback.Fallback.Name,
			FallbackOverlap: fallback.Overlap,
		}
	}

	if c.colorOnlyFallback {
		if name, ok := c.integrator.Guilds().Lookup(colors); ok && name != FiveColorName {
			return ClassificationResult{
				FinalLabel: name,
				MatchKind:  MatchColorOnly,
				Colors:     colors,
			}
		}
	}

	c.logger.Debug("Deck matched no archetype or fallback",
		"cards", deck.TotalCards(),
		"colors", colors.String())
	return ClassificationResult{
		FinalLabel: UnknownLabel,
		MatchKind:  MatchUnknown,
		Colors:     colors,
	}
}
