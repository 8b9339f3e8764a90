package archetype

import "log/slog"

// ArchetypeDefinition is a named archetype with conditions combined by AND.
// Variants are only considered once the definition's own conditions hold.
type ArchetypeDefinition struct {
	Name               string
	IncludeColorInName bool
	Conditions         []Condition
	Variants           []ArchetypeDefinition
}

// FallbackDefinition is a generic archetype scored by signature-card overlap.
type FallbackDefinition struct {
	Name           string
	SignatureCards []string
}

// RuleSet is the ordered rule configuration for one format.
// Order is priority: the first satisfied archetype wins.
// A RuleSet must not be modified once classification has started.
type RuleSet struct {
	Format     string
	Archetypes []ArchetypeDefinition
	Fallbacks  []FallbackDefinition
}

// NewRuleSet copies the definitions into a RuleSet, normalizing every card
// name. Definitions without a name are dropped since they could never produce
// a label.
func NewRuleSet(format string, archetypes []ArchetypeDefinition, fallbacks []FallbackDefinition) *RuleSet {
	return &RuleSet{
		Format:     format,
		Archetypes: compileArchetypes(format, archetypes),
		Fallbacks:  compileFallbacks(format, fallbacks),
	}
}

func compileArchetypes(format string, defs []ArchetypeDefinition) []ArchetypeDefinition {
	out := make([]ArchetypeDefinition, 0, len(defs))
	for _, def := range defs {
		if def.Name == "" {
			slog.Warn("Skipping archetype without a name", "format", format)
			continue
		}
		compiled := ArchetypeDefinition{
			Name:               def.Name,
			IncludeColorInName: def.IncludeColorInName,
			Conditions:         make([]Condition, 0, len(def.Conditions)),
		}
		for _, cond := range def.Conditions {
			if cond.Type == "" {
				cond.Type = cond.Kind.String()
			}
			compiled.Conditions = append(compiled.Conditions, Condition{
				Kind:  cond.Kind,
				Type:  cond.Type,
				Cards: normalizeNames(cond.Cards),
			})
		}
		if len(def.Variants) > 0 {
			compiled.Variants = compileArchetypes(format, def.Variants)
		}
		out = append(out, compiled)
	}
	return out
}

func compileFallbacks(format string, defs []FallbackDefinition) []FallbackDefinition {
	out := make([]FallbackDefinition, 0, len(defs))
	for _, def := range defs {
		if def.Name == "" {
			slog.Warn("Skipping fallback without a name", "format", format)
			continue
		}
		out = append(out, FallbackDefinition{
			Name:           def.Name,
			SignatureCards: normalizeNames(def.SignatureCards),
		})
	}
	return out
}
