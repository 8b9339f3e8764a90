package archetype

// Match is the outcome of a successful archetype match.
type Match struct {
	Archetype *ArchetypeDefinition
	Variant   *ArchetypeDefinition // Deepest matching variant, nil if none matched
}

// Definition returns the most specific matched definition.
func (m Match) Definition() *ArchetypeDefinition {
	if m.Variant != nil {
		return m.Variant
	}
	return m.Archetype
}

// Kind returns MatchVariant when a variant matched, MatchPrimary otherwise.
func (m Match) Kind() MatchKind {
	if m.Variant != nil {
		return MatchVariant
	}
	return MatchPrimary
}

// Matcher walks archetype definitions in priority order.
type Matcher struct {
	evaluator *Evaluator
}

// NewMatcher creates a matcher backed by the given evaluator.
func NewMatcher(evaluator *Evaluator) *Matcher {
	if evaluator == nil {
		evaluator = NewEvaluator(nil)
	}
	return &Matcher{evaluator: evaluator}
}

// Match returns the first archetype whose conditions all hold, together with
// its first matching variant. Scanning stops at the first matching archetype;
// later definitions are never considered, even if they would also match.
func (m *Matcher) Match(deck *Deck, archetypes []ArchetypeDefinition) (Match, bool) {
	for i := range archetypes {
		def := &archetypes[i]
		if !m.evaluator.EvaluateAll(def.Conditions, deck) {
			continue
		}
		return Match{Archetype: def, Variant: m.matchVariant(deck, def.Variants)}, true
	}
	return Match{}, false
}

// matchVariant returns the first variant that holds, descending into its own
// variants so the most specific name is reported.
func (m *Matcher) matchVariant(deck *Deck, variants []ArchetypeDefinition) *ArchetypeDefinition {
	for i := range variants {
		variant := &variants[i]
		if !m.evaluator.EvaluateAll(variant.Conditions, deck) {
			continue
		}
		if deeper := m.matchVariant(deck, variant.Variants); deeper != nil {
			return deeper
		}
		return variant
	}
	return nil
}
