package rules

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mtg-metagame/internal/archetype"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const modernArchetypes = `[
	{
		"Name": "Burn",
		"IncludeColorInName": false,
		"Conditions": [
			{"Type": "InMainboard", "Cards": ["Lava Spike", "Lightning Bolt"]}
		],
		"Variants": [
			{
				"Name": "Boros Burn",
				"Conditions": [{"Type": "OneOrMoreInMainboard", "Cards": ["Boros Charm", "Lightning Helix"]}]
			},
			{
				"Conditions": [{"Type": "InMainboard", "Cards": ["Skewer the Critics"]}]
			}
		]
	},
	{
		"IncludeColorInName": true,
		"Conditions": [{"Type": "InMainboard", "Cards": ["Opt"]}]
	},
	{
		"Name": "Prowess",
		"IncludeColorInName": true,
		"Conditions": [
			{"Type": "InMainboard", "Cards": ["Monastery Swiftspear"]},
			{"Type": "ThreeOrMoreInMainboard", "Cards": ["Opt"]},
			{"Type": "DoesNotContainMainboard"}
		]
	},
	"not an object",
	{
		"Name": "Tron",
		"Conditions": [{"Type": "InMainboard", "Cards": ["Urza's Tower", "Urza's Mine", "Urza's Power Plant"]}]
	}
]`

const modernFallbacks = `[
	{"Name": "Control", "SignatureCards": ["Counterspell", "Supreme Verdict"]},
	{"Name": "Empty", "SignatureCards": []},
	{"Name": "Aggro"}
]`

func TestParseRuleSet(t *testing.T) {
	rs, report, err := ParseRuleSet("Modern", []byte(modernArchetypes), []byte(modernFallbacks), quietLogger())
	require.NoError(t, err)

	require.Len(t, rs.Archetypes, 3)
	assert.Equal(t, "Burn", rs.Archetypes[0].Name)
	assert.Equal(t, "Prowess", rs.Archetypes[1].Name)
	assert.Equal(t, "Tron", rs.Archetypes[2].Name, "file order is preserved after skips")

	// Names are normalized on load.
	assert.Equal(t, []string{"urzas tower", "urzas mine", "urzas power plant"}, rs.Archetypes[2].Conditions[0].Cards)

	// The nameless variant is dropped, the valid one kept.
	require.Len(t, rs.Archetypes[0].Variants, 1)
	assert.Equal(t, "Boros Burn", rs.Archetypes[0].Variants[0].Name)

	// Malformed conditions are kept and fail safe at evaluation.
	prowess := rs.Archetypes[1]
	require.Len(t, prowess.Conditions, 3)
	assert.Equal(t, archetype.ConditionUnknown, prowess.Conditions[1].Kind)
	assert.Equal(t, "ThreeOrMoreInMainboard", prowess.Conditions[1].Type)
	assert.Nil(t, prowess.Conditions[2].Cards)

	require.Len(t, rs.Fallbacks, 1)
	assert.Equal(t, "Control", rs.Fallbacks[0].Name)

	assert.Equal(t, 3, report.ArchetypesLoaded)
	assert.Equal(t, 2, report.ArchetypesSkipped)
	assert.Equal(t, 1, report.VariantsLoaded)
	assert.Equal(t, 1, report.VariantsSkipped)
	assert.Equal(t, 1, report.FallbacksLoaded)
	assert.Equal(t, 2, report.FallbacksSkipped)
	assert.Equal(t, 2, report.MalformedCondition)
	assert.NotEmpty(t, report.Warnings)
}

func TestParseRuleSet_FatalErrors(t *testing.T) {
	tests := []struct {
		name       string
		archetypes string
		fallbacks  string
	}{
		{name: "unparsable archetypes", archetypes: `[{"Name": `},
		{name: "archetypes not an array", archetypes: `{"Name": "Burn"}`},
		{name: "no valid archetypes", archetypes: `[{"Name": ""}]`},
		{name: "empty archetype list", archetypes: `[]`},
		{name: "unparsable fallbacks", archetypes: `[{"Name": "Burn", "Conditions": []}]`, fallbacks: `[`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseRuleSet("Modern", []byte(tt.archetypes), []byte(tt.fallbacks), quietLogger())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoRuleSet), "error %v should wrap ErrNoRuleSet", err)
		})
	}
}

func TestParseRuleSet_ClassifiesEndToEnd(t *testing.T) {
	rs, _, err := ParseRuleSet("Modern", []byte(modernArchetypes), []byte(modernFallbacks), quietLogger())
	require.NoError(t, err)

	c, err := archetype.NewClassifier(archetype.ClassifierConfig{RuleSet: rs, Logger: quietLogger()})
	require.NoError(t, err)

	// Prowess carries a malformed condition, so it can never match.
	got := c.Classify(archetype.Decklist{Mainboard: []archetype.CardEntry{
		{Name: "Monastery Swiftspear", Count: 4}, {Name: "Opt", Count: 4},
	}})
	assert.Equal(t, archetype.UnknownLabel, got.FinalLabel)

	got = c.Classify(archetype.Decklist{Mainboard: []archetype.CardEntry{
		{Name: "Urza’s Tower", Count: 4}, {Name: "Urza's Mine", Count: 4}, {Name: "URZA'S POWER PLANT", Count: 4},
	}})
	assert.Equal(t, "Tron", got.FinalLabel)
}

func TestParseRuleSet_BlankCardNames(t *testing.T) {
	archetypes := `[
		{"Name": "Blank", "Conditions": [{"Type": "InMainboard", "Cards": ["  ", "'"]}]},
		{"Name": "Burn", "Conditions": [{"Type": "InMainboard", "Cards": ["Lightning Bolt"]}]}
	]`

	rs, report, err := ParseRuleSet("Modern", []byte(archetypes), nil, quietLogger())
	require.NoError(t, err)

	require.Len(t, rs.Archetypes, 2)
	assert.Nil(t, rs.Archetypes[0].Conditions[0].Cards)
	assert.Equal(t, 1, report.MalformedCondition)

	c, err := archetype.NewClassifier(archetype.ClassifierConfig{RuleSet: rs, Logger: quietLogger()})
	require.NoError(t, err)

	got := c.Classify(archetype.Decklist{Mainboard: []archetype.CardEntry{{Name: "Lightning Bolt", Count: 4}}})
	assert.Equal(t, "Burn", got.FinalLabel)
	assert.Equal(t, archetype.MatchPrimary, got.MatchKind)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Modern", ArchetypesFile), modernArchetypes)
	writeFile(t, filepath.Join(dir, "Modern", FallbacksFile), modernFallbacks)
	writeFile(t, filepath.Join(dir, "Modern", ColorsFileYAML), `
Guilds:
  RU: Blue-Red
Overrides:
  - Archetype: Burn
    Kind: ForceColor
    Color: R
  - Archetype: Prowess
    Kind: GuildBased
`)

	bundle, err := Load(dir, "Modern", Options{Logger: quietLogger()})
	require.NoError(t, err)

	assert.Equal(t, "Modern", bundle.RuleSet.Format)
	assert.Len(t, bundle.RuleSet.Archetypes, 3)
	assert.Len(t, bundle.RuleSet.Fallbacks, 1)

	name, ok := bundle.Guilds.Lookup(archetype.ColorIdentity{archetype.Blue, archetype.Red})
	require.True(t, ok)
	assert.Equal(t, "Blue-Red", name)

	require.Len(t, bundle.Overrides, 2)
	assert.Equal(t, archetype.ForceColor, bundle.Overrides[0].Kind)
	assert.Equal(t, "Red", bundle.Overrides[0].Color)
	assert.Equal(t, 2, bundle.Report.OverridesLoaded)
}

func TestLoad_OptionalFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Standard", ArchetypesFile), `[{"Name": "Domain", "Conditions": [{"Type": "InMainboard", "Cards": ["Leyline Binding"]}]}]`)

	bundle, err := Load(dir, "Standard", Options{Logger: quietLogger()})
	require.NoError(t, err)
	assert.Empty(t, bundle.RuleSet.Fallbacks)
	assert.Empty(t, bundle.Overrides)
	assert.Equal(t, archetype.DefaultGuildTable(), bundle.Guilds)
}

func TestLoad_MissingFormat(t *testing.T) {
	_, err := Load(t.TempDir(), "Pioneer", Options{Logger: quietLogger()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoRuleSet))
}

func TestLoad_BadColorConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Modern", ArchetypesFile), modernArchetypes)
	writeFile(t, filepath.Join(dir, "Modern", ColorsFileJSON), `{"Overrides": [`)

	_, err := Load(dir, "Modern", Options{Logger: quietLogger()})
	assert.Error(t, err)
}

func TestFormats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Pioneer", ArchetypesFile), `[]`)
	writeFile(t, filepath.Join(dir, "Modern", ArchetypesFile), `[]`)
	writeFile(t, filepath.Join(dir, "Notes", "readme.txt"), "not a format")
	writeFile(t, filepath.Join(dir, "stray.json"), `[]`)

	formats, err := Formats(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Modern", "Pioneer"}, formats)

	_, err = Formats(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
