package archetype

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCardColors = NewCardColorTable(map[string][]Color{
	"Lightning Bolt":       {Red},
	"Lava Spike":           {Red},
	"Monastery Swiftspear": {Red},
	"Boros Charm":          {White, Red},
	"Lightning Helix":      {White, Red},
	"Expressive Iteration": {Blue, Red},
	"Consider":             {Blue},
	"Thoughtseize":         {Black},
	"Tarmogoyf":            {Green},
	"Counterspell":         {Blue},
})

func modernRules() *RuleSet {
	return NewRuleSet("Modern",
		[]ArchetypeDefinition{
			{
				Name:       "Burn",
				Conditions: []Condition{NewCondition(InMainboard, "Lava Spike", "Lightning Bolt")},
				Variants: []ArchetypeDefinition{
					{
						Name:       "Boros Burn",
						Conditions: []Condition{NewCondition(OneOrMoreInMainboard, "Boros Charm", "Lightning Helix")},
					},
				},
			},
			{
				Name:               "Prowess",
				IncludeColorInName: true,
				Conditions: []Condition{
					NewCondition(InMainboard, "Monastery Swiftspear"),
					NewCondition(DoesNotContainMainboard, "Lava Spike"),
				},
			},
			{
				Name:       "Plain Name",
				Conditions: []Condition{NewCondition(InMainboard, "Tarmogoyf")},
			},
		},
		[]FallbackDefinition{
			{Name: "Control", SignatureCards: []string{"Counterspell", "Consider", "Memory Deluge", "Supreme Verdict"}},
		},
	)
}

func newTestClassifier(t *testing.T, config ClassifierConfig) *Classifier {
	t.Helper()
	if config.RuleSet == nil {
		config.RuleSet = modernRules()
	}
	if config.CardColors == nil {
		config.CardColors = testCardColors
	}
	if config.Logger == nil {
		config.Logger = quietLogger()
	}
	c, err := NewClassifier(config)
	require.NoError(t, err)
	return c
}

func TestNewClassifier_RequiresRuleSet(t *testing.T) {
	_, err := NewClassifier(ClassifierConfig{})
	assert.True(t, errors.Is(err, ErrNilRuleSet))
}

func TestNewClassifier_RejectsBadThresholds(t *testing.T) {
	_, err := NewClassifier(ClassifierConfig{RuleSet: modernRules(), FallbackMinOverlap: 1.5})
	assert.Error(t, err)

	_, err = NewClassifier(ClassifierConfig{RuleSet: modernRules(), ColorMinShare: -0.1})
	assert.Error(t, err)
}

func TestClassifier_Classify(t *testing.T) {
	c := newTestClassifier(t, ClassifierConfig{
		Overrides: []ColorOverride{
			{Archetype: "Burn", Kind: ForceColor, Color: "Red"},
			{Archetype: "Prowess", Kind: GuildBased},
		},
	})

	tests := []struct {
		name       string
		deck       Decklist
		wantLabel  string
		wantKind   MatchKind
		wantColors string
	}{
		{
			name: "force color ignores two-color identity",
			deck: Decklist{Mainboard: []CardEntry{
				{Name: "Lava Spike", Count: 4}, {Name: "Lightning Bolt", Count: 4}, {Name: "Lightning Helix", Count: 0},
				{Name: "Plains", Count: 2},
			}, Sideboard: []CardEntry{{Name: "Boros Charm", Count: 4}}},
			wantLabel:  "Red Burn",
			wantKind:   MatchPrimary,
			wantColors: "WR",
		},
		{
			name: "variant name supersedes parent",
			deck: Decklist{Mainboard: []CardEntry{
				{Name: "Lava Spike", Count: 4}, {Name: "Lightning Bolt", Count: 4}, {Name: "Boros Charm", Count: 4},
			}},
			wantLabel:  "Boros Burn",
			wantKind:   MatchVariant,
			wantColors: "WR",
		},
		{
			name: "guild based override",
			deck: Decklist{Mainboard: []CardEntry{
				{Name: "Monastery Swiftspear", Count: 4}, {Name: "Expressive Iteration", Count: 4},
				{Name: "Consider", Count: 4}, {Name: "Lightning Bolt", Count: 4},
			}},
			wantLabel:  "Izzet Prowess",
			wantKind:   MatchPrimary,
			wantColors: "UR",
		},
		{
			name:       "archetype without color naming keeps its name",
			deck:       Decklist{Mainboard: playset("Tarmogoyf", "Thoughtseize")},
			wantLabel:  "Plain Name",
			wantKind:   MatchPrimary,
			wantColors: "BG",
		},
		{
			name:       "fallback gets guild prefix",
			deck:       Decklist{Mainboard: playset("Counterspell", "Consider", "Island")},
			wantLabel:  "Mono-Blue Control",
			wantKind:   MatchFallback,
			wantColors: "U",
		},
		{
			name:       "unknown deck keeps colors but no prefix",
			deck:       Decklist{Mainboard: playset("Lightning Helix", "Mountain")},
			wantLabel:  UnknownLabel,
			wantKind:   MatchUnknown,
			wantColors: "WR",
		},
		{
			name:       "empty deck",
			deck:       Decklist{},
			wantLabel:  UnknownLabel,
			wantKind:   MatchUnknown,
			wantColors: "",
		},
		{
			name:       "zero counts are an empty deck",
			deck:       Decklist{Mainboard: []CardEntry{{Name: "Lightning Bolt", Count: 0}}},
			wantLabel:  UnknownLabel,
			wantKind:   MatchUnknown,
			wantColors: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.deck)
			assert.Equal(t, tt.wantLabel, got.FinalLabel)
			assert.Equal(t, tt.wantKind, got.MatchKind)
			assert.Equal(t, tt.wantColors, got.Colors.String())
			assert.NotNil(t, got.Colors)
		})
	}
}

func TestClassifier_ResultDetails(t *testing.T) {
	c := newTestClassifier(t, ClassifierConfig{})

	variant := c.Classify(Decklist{Mainboard: playset("Lava Spike", "Lightning Bolt", "Boros Charm")})
	assert.Equal(t, "Burn", variant.Archetype)
	assert.Equal(t, "Boros Burn", variant.Variant)

	fallback := c.Classify(Decklist{Mainboard: playset("Counterspell", "Consider")})
	assert.Equal(t, "Control", fallback.Archetype)
	assert.InDelta(t, 0.5, fallback.FallbackOverlap, 1e-9)
}

func TestClassifier_ColorOnlyFallback(t *testing.T) {
	c := newTestClassifier(t, ClassifierConfig{ColorOnlyFallback: true})

	got := c.Classify(Decklist{Mainboard: playset("Lightning Helix", "Mountain")})
	assert.Equal(t, "Boros", got.FinalLabel)
	assert.Equal(t, MatchColorOnly, got.MatchKind)

	// Colorless decks still end up unknown.
	got = c.Classify(Decklist{Mainboard: playset("Mountain")})
	assert.Equal(t, UnknownLabel, got.FinalLabel)
	assert.Equal(t, MatchUnknown, got.MatchKind)
}

func TestClassifier_PriorityFollowsRuleOrder(t *testing.T) {
	first := ArchetypeDefinition{Name: "Alpha", Conditions: []Condition{NewCondition(InMainboard, "Tarmogoyf")}}
	second := ArchetypeDefinition{Name: "Beta", Conditions: []Condition{NewCondition(OneOrMoreInMainboard, "Tarmogoyf")}}
	deck := Decklist{Mainboard: playset("Tarmogoyf")}

	c := newTestClassifier(t, ClassifierConfig{RuleSet: NewRuleSet("Modern", []ArchetypeDefinition{first, second}, nil)})
	assert.Equal(t, "Alpha", c.Classify(deck).FinalLabel)

	c = newTestClassifier(t, ClassifierConfig{RuleSet: NewRuleSet("Modern", []ArchetypeDefinition{second, first}, nil)})
	assert.Equal(t, "Beta", c.Classify(deck).FinalLabel)
}

func TestClassifier_CustomThresholds(t *testing.T) {
	c := newTestClassifier(t, ClassifierConfig{FallbackMinOverlap: 0.6, ColorMinShare: 0.4})

	got := c.Classify(Decklist{Mainboard: playset("Counterspell", "Consider")})
	assert.Equal(t, UnknownLabel, got.FinalLabel, "half the signature is below a 0.6 threshold")

	got = c.Classify(Decklist{Mainboard: []CardEntry{
		{Name: "Tarmogoyf", Count: 4}, {Name: "Thoughtseize", Count: 2},
	}})
	assert.Equal(t, "G", got.Colors.String(), "black at a third of colored cards is below 0.4")
}

func TestClassifier_Deterministic(t *testing.T) {
	c := newTestClassifier(t, ClassifierConfig{Overrides: []ColorOverride{{Archetype: "Prowess", Kind: GuildBased}}})
	deck := Decklist{Mainboard: playset("Monastery Swiftspear", "Expressive Iteration", "Consider")}

	first := c.Classify(deck)
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, c.Classify(deck)); diff != "" {
			t.Fatalf("Classify() not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestClassifier_DoesNotModifyDecklist(t *testing.T) {
	c := newTestClassifier(t, ClassifierConfig{})
	deck := Decklist{Mainboard: []CardEntry{{Name: "Lightning Bolt", Count: 4}, {Name: "Lava Spike", Count: 4}}}
	before := fmt.Sprint(deck)

	c.Classify(deck)

	assert.Equal(t, before, fmt.Sprint(deck))
}

func TestMatchKind_TextRoundTrip(t *testing.T) {
	for _, kind := range []MatchKind{MatchUnknown, MatchPrimary, MatchVariant, MatchFallback, MatchColorOnly} {
		text, err := kind.MarshalText()
		require.NoError(t, err)

		var got MatchKind
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, kind, got)
	}

	var k MatchKind
	assert.Error(t, k.UnmarshalText([]byte("Sometimes")))
}

// cardPool is the universe of card names used by the property tests.
var cardPool = []string{
	"Lightning Bolt", "Lava Spike", "Monastery Swiftspear", "Boros Charm", "Lightning Helix",
	"Expressive Iteration", "Consider", "Thoughtseize", "Tarmogoyf", "Counterspell",
	"Island", "Mountain", "Memory Deluge", "Supreme Verdict", "Unlisted Card",
}

func deckFromIndexes(main, side []int) Decklist {
	var deck Decklist
	for i, idx := range main {
		deck.Mainboard = append(deck.Mainboard, CardEntry{Name: cardPool[idx], Count: i%4 + 1})
	}
	for i, idx := range side {
		deck.Sideboard = append(deck.Sideboard, CardEntry{Name: cardPool[idx], Count: i%3 + 1})
	}
	return deck
}

func TestClassifier_Properties(t *testing.T) {
	c := newTestClassifier(t, ClassifierConfig{
		Overrides: []ColorOverride{
			{Archetype: "Burn", Kind: ForceColor, Color: "Red"},
			{Archetype: "Prowess", Kind: GuildBased},
		},
	})

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	indexes := gen.SliceOf(gen.IntRange(0, len(cardPool)-1))

	properties.Property("every deck gets a non-empty label", prop.ForAll(
		func(main, side []int) bool {
			return c.Classify(deckFromIndexes(main, side)).FinalLabel != ""
		},
		indexes, indexes,
	))

	properties.Property("classification is deterministic", prop.ForAll(
		func(main, side []int) bool {
			deck := deckFromIndexes(main, side)
			return cmp.Equal(c.Classify(deck), c.Classify(deck))
		},
		indexes, indexes,
	))

	properties.Property("colors are a WUBRG-ordered subset", prop.ForAll(
		func(main, side []int) bool {
			colors := c.Classify(deckFromIndexes(main, side)).Colors
			return colors.String() == NewColorIdentity(colors...).String()
		},
		indexes, indexes,
	))

	properties.Property("unknown decks are never color prefixed", prop.ForAll(
		func(main, side []int) bool {
			result := c.Classify(deckFromIndexes(main, side))
			if result.MatchKind != MatchUnknown {
				return true
			}
			return result.FinalLabel == UnknownLabel
		},
		indexes, indexes,
	))

	properties.Property("the first satisfied archetype wins", prop.ForAll(
		func(main []int) bool {
			if len(main) == 0 {
				return true
			}
			deck := deckFromIndexes(main, nil)
			card := deck.Mainboard[0].Name
			a := ArchetypeDefinition{Name: "A", Conditions: []Condition{NewCondition(InMainboard, card)}}
			b := ArchetypeDefinition{Name: "B", Conditions: []Condition{NewCondition(OneOrMoreInMainOrSideboard, card)}}

			ab, err := NewClassifier(ClassifierConfig{RuleSet: NewRuleSet("Modern", []ArchetypeDefinition{a, b}, nil), Logger: quietLogger()})
			if err != nil {
				return false
			}
			ba, err := NewClassifier(ClassifierConfig{RuleSet: NewRuleSet("Modern", []ArchetypeDefinition{b, a}, nil), Logger: quietLogger()})
			if err != nil {
				return false
			}
			return ab.Classify(deck).FinalLabel == "A" && ba.Classify(deck).FinalLabel == "B"
		},
		indexes,
	))

	properties.TestingRun(t)
}
