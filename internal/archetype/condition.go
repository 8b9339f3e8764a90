package archetype

import (
	"log/slog"
	"strings"
	"sync"
)

// ConditionKind is the closed set of rule-file condition types.
type ConditionKind int

const (
	ConditionUnknown ConditionKind = iota // Never matches

	InMainboard
	InSideboard
	InMainOrSideboard

	OneOrMoreInMainboard
	OneOrMoreInSideboard
	OneOrMoreInMainOrSideboard

	TwoOrMoreInMainboard
	TwoOrMoreInSideboard
	TwoOrMoreInMainOrSideboard

	DoesNotContainMainboard
	DoesNotContainSideboard
	DoesNotContainMainOrSideboard
)

var conditionKindNames = map[ConditionKind]string{
	InMainboard:                   "InMainboard",
	InSideboard:                   "InSideboard",
	InMainOrSideboard:             "InMainOrSideboard",
	OneOrMoreInMainboard:          "OneOrMoreInMainboard",
	OneOrMoreInSideboard:          "OneOrMoreInSideboard",
	OneOrMoreInMainOrSideboard:    "OneOrMoreInMainOrSideboard",
	TwoOrMoreInMainboard:          "TwoOrMoreInMainboard",
	TwoOrMoreInSideboard:          "TwoOrMoreInSideboard",
	TwoOrMoreInMainOrSideboard:    "TwoOrMoreInMainOrSideboard",
	DoesNotContainMainboard:       "DoesNotContainMainboard",
	DoesNotContainSideboard:       "DoesNotContainSideboard",
	DoesNotContainMainOrSideboard: "DoesNotContainMainOrSideboard",
}

// conditionKindsByName is keyed by lowercased rule-file spelling.
var conditionKindsByName = func() map[string]ConditionKind {
	byName := make(map[string]ConditionKind, len(conditionKindNames)+1)
	for kind, name := range conditionKindNames {
		byName[strings.ToLower(name)] = kind
	}
	// Older rule files spell the main-or-sideboard exclusion without a zone.
	byName["doesnotcontain"] = DoesNotContainMainOrSideboard
	return byName
}()

// ParseConditionKind maps a rule-file type string to a ConditionKind.
// Matching is case-insensitive; unrecognized input yields ConditionUnknown.
func ParseConditionKind(s string) ConditionKind {
	if kind, ok := conditionKindsByName[strings.ToLower(strings.TrimSpace(s))]; ok {
		return kind
	}
	return ConditionUnknown
}

func (k ConditionKind) String() string {
	if name, ok := conditionKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// quantifier is how many of a condition's cards must be present.
type quantifier int

const (
	quantAll quantifier = iota
	quantOneOrMore
	quantTwoOrMore
	quantNone
)

// split returns the zone and quantifier of a kind; ok is false for unknown kinds.
func (k ConditionKind) split() (Zone, quantifier, bool) {
	switch k {
	case InMainboard:
		return ZoneMainboard, quantAll, true
	case InSideboard:
		return ZoneSideboard, quantAll, true
	case InMainOrSideboard:
		return ZoneMainOrSideboard, quantAll, true
	case OneOrMoreInMainboard:
		return ZoneMainboard, quantOneOrMore, true
	case OneOrMoreInSideboard:
		return ZoneSideboard, quantOneOrMore, true
	case OneOrMoreInMainOrSideboard:
		return ZoneMainOrSideboard, quantOneOrMore, true
	case TwoOrMoreInMainboard:
		return ZoneMainboard, quantTwoOrMore, true
	case TwoOrMoreInSideboard:
		return ZoneSideboard, quantTwoOrMore, true
	case TwoOrMoreInMainOrSideboard:
		return ZoneMainOrSideboard, quantTwoOrMore, true
	case DoesNotContainMainboard:
		return ZoneMainboard, quantNone, true
	case DoesNotContainSideboard:
		return ZoneSideboard, quantNone, true
	case DoesNotContainMainOrSideboard:
		return ZoneMainOrSideboard, quantNone, true
	default:
		return ZoneMainboard, quantAll, false
	}
}

// Condition is one clause of an archetype definition.
type Condition struct {
	Kind ConditionKind
	// Type is the spelling from the rule file, kept for diagnostics.
	Type string
	// Cards holds normalized card names. Nil means the rule omitted the list.
	Cards []string
}

// NewCondition builds a condition with normalized, de-duplicated card names.
func NewCondition(kind ConditionKind, cards ...string) Condition {
	if cards == nil {
		cards = []string{}
	}
	return Condition{
		Kind:  kind,
		Type:  kind.String(),
		Cards: normalizeNames(cards),
	}
}

// Evaluator evaluates conditions against normalized decks.
// It is safe for concurrent use.
type Evaluator struct {
	logger *slog.Logger
	warned sync.Map // diagnostic key -> struct{}
}

// NewEvaluator creates a condition evaluator.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{logger: logger}
}

// Evaluate reports whether the deck satisfies the condition.
// Malformed conditions (unknown kind, missing card list) never match.
func (e *Evaluator) Evaluate(cond Condition, deck *Deck) bool {
	zone, quant, ok := cond.Kind.split()
	if !ok {
		e.warnOnce("unknown:"+cond.Type, "Unknown condition type, condition will not match",
			"type", cond.Type)
		return false
	}
	if cond.Cards == nil {
		e.warnOnce("nocards:"+cond.Type, "Condition has no card list, condition will not match",
			"type", cond.Type)
		return false
	}

	// Cards are de-duplicated on construction, but rules built by hand may
	// repeat a name; count distinct names only.
	present := 0
	seen := make(map[string]bool, len(cond.Cards))
	for _, name := range cond.Cards {
		if seen[name] {
			continue
		}
		seen[name] = true
		if deck.Has(name, zone) {
			present++
		}
	}

	switch quant {
	case quantAll:
		return present == len(seen)
	case quantOneOrMore:
		return present >= 1
	case quantTwoOrMore:
		return present >= 2
	case quantNone:
		return present == 0
	default:
		return false
	}
}

// EvaluateAll reports whether every condition holds. An empty list never holds.
func (e *Evaluator) EvaluateAll(conds []Condition, deck *Deck) bool {
	if len(conds) == 0 {
		return false
	}
	for _, cond := range conds {
		if !e.Evaluate(cond, deck) {
			return false
		}
	}
	return true
}

// warnOnce logs a diagnostic the first time a given key is seen, so a bad
// rule does not flood the log once per deck.
func (e *Evaluator) warnOnce(key, msg string, args ...any) {
	if _, loaded := e.warned.LoadOrStore(key, struct{}{}); loaded {
		return
	}
	e.logger.Warn(msg, args...)
}
