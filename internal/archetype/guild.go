package archetype

import (
	"strings"
)

// FiveColorName is the default guild table entry for all five colors.
// Five-color labels are never prefixed, whatever the entry is renamed to.
const FiveColorName = "5-Color"

// GuildTable maps a color identity key (WUBRG symbols, e.g. "UR") to the
// name used as a label prefix.
type GuildTable map[string]string

// DefaultGuildTable returns mono-color, guild, shard, wedge and N-color names.
func DefaultGuildTable() GuildTable {
	return GuildTable{
		// Mono
		"W": "Mono-White",
		"U": "Mono-Blue",
		"B": "Mono-Black",
		"R": "Mono-Red",
		"G": "Mono-Green",

		// Guilds
		"WU": "Azorius",
		"UB": "Dimir",
		"BR": "Rakdos",
		"RG": "Gruul",
		"WG": "Selesnya",
		"WB": "Orzhov",
		"UR": "Izzet",
		"BG": "Golgari",
		"WR": "Boros",
		"UG": "Simic",

		// Shards
		"WUG": "Bant",
		"WUB": "Esper",
		"UBR": "Grixis",
		"BRG": "Jund",
		"WRG": "Naya",

		// Wedges
		"WBG": "Abzan",
		"WUR": "Jeskai",
		"UBG": "Sultai",
		"WBR": "Mardu",
		"URG": "Temur",

		// Four and five colors
		"WUBR":  "4-Color",
		"WUBG":  "4-Color",
		"WURG":  "4-Color",
		"WBRG":  "4-Color",
		"UBRG":  "4-Color",
		"WUBRG": FiveColorName,
	}
}

// Merge returns a copy of the table with the given entries applied on top.
// Keys are parsed as color identities so "RU" and "UR" address the same entry.
func (g GuildTable) Merge(entries map[string]string) GuildTable {
	merged := make(GuildTable, len(g)+len(entries))
	for key, name := range g {
		merged[key] = name
	}
	for key, name := range entries {
		identity, err := ParseColorIdentity(key)
		if err != nil || len(identity) == 0 {
			continue
		}
		merged[identity.String()] = name
	}
	return merged
}

// Lookup returns the name for a color identity.
func (g GuildTable) Lookup(colors ColorIdentity) (string, bool) {
	if len(colors) == 0 {
		return "", false
	}
	name, ok := g[NewColorIdentity(colors...).String()]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// OverrideKind selects how an archetype's color prefix is chosen.
type OverrideKind int

const (
	OverrideUnknown OverrideKind = iota
	ForceColor                   // Always prefix the fixed color
	Conditional                  // Prefix the fixed color when the predicate holds
	GuildBased                   // Use the guild table
)

// ParseOverrideKind maps a config string to an OverrideKind (case-insensitive).
func ParseOverrideKind(s string) OverrideKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forcecolor", "force_color", "force":
		return ForceColor
	case "conditional":
		return Conditional
	case "guildbased", "guild_based", "guild":
		return GuildBased
	default:
		return OverrideUnknown
	}
}

func (k OverrideKind) String() string {
	switch k {
	case ForceColor:
		return "ForceColor"
	case Conditional:
		return "Conditional"
	case GuildBased:
		return "GuildBased"
	default:
		return "Unknown"
	}
}

// ColorPredicate is a test over a detected color identity. Unset fields
// impose no constraint.
type ColorPredicate struct {
	AllOf     ColorIdentity // Every listed color present
	AnyOf     ColorIdentity // At least one listed color present
	NoneOf    ColorIdentity // No listed color present
	Exactly   ColorIdentity // Identity equals this set (nil = unset)
	MinColors int
	MaxColors int // 0 = unbounded
}

// Holds reports whether the predicate is satisfied by colors.
func (p ColorPredicate) Holds(colors ColorIdentity) bool {
	for _, c := range p.AllOf {
		if !colors.Contains(c) {
			return false
		}
	}
	if len(p.AnyOf) > 0 {
		anyFound := false
		for _, c := range p.AnyOf {
			if colors.Contains(c) {
				anyFound = true
				break
			}
		}
		if !anyFound {
			return false
		}
	}
	for _, c := range p.NoneOf {
		if colors.Contains(c) {
			return false
		}
	}
	if p.Exactly != nil && !colors.Equal(p.Exactly) {
		return false
	}
	if len(colors) < p.MinColors {
		return false
	}
	if p.MaxColors > 0 && len(colors) > p.MaxColors {
		return false
	}
	return true
}

// ColorOverride changes how the color prefix is chosen for one archetype label.
type ColorOverride struct {
	Archetype string
	Kind      OverrideKind
	Color     string // Prefix for ForceColor and Conditional, e.g. "Red"
	When      ColorPredicate
}

// Integrator merges detected colors into archetype labels.
// It is read-only after construction and safe for concurrent use.
type Integrator struct {
	guilds    GuildTable
	overrides map[string]ColorOverride
}

// NewIntegrator creates an integrator. A nil guild table uses DefaultGuildTable.
// Later overrides for the same archetype replace earlier ones.
func NewIntegrator(guilds GuildTable, overrides []ColorOverride) *Integrator {
	if guilds == nil {
		guilds = DefaultGuildTable()
	}
	byName := make(map[string]ColorOverride, len(overrides))
	for _, o := range overrides {
		if o.Archetype == "" || o.Kind == OverrideUnknown {
			continue
		}
		byName[o.Archetype] = o
	}
	return &Integrator{guilds: guilds, overrides: byName}
}

// HasOverride reports whether an override is configured for the label.
func (in *Integrator) HasOverride(label string) bool {
	_, ok := in.overrides[label]
	return ok
}

// Guilds returns the guild table in use.
func (in *Integrator) Guilds() GuildTable {
	return in.guilds
}

// Integrate returns the label with the appropriate color prefix.
// Example: ("Prowess", UR) -> "Izzet Prowess"
func (in *Integrator) Integrate(label string, colors ColorIdentity) string {
	if o, ok := in.overrides[label]; ok {
		switch o.Kind {
		case ForceColor:
			return prefixLabel(o.Color, label)
		case Conditional:
			if o.When.Holds(colors) {
				return prefixLabel(o.Color, label)
			}
		case GuildBased:
			// Guild table below.
		}
	}

	// Five-color decks keep the bare label whatever the table calls them.
	if len(NewColorIdentity(colors...)) == len(AllColors) {
		return label
	}
	name, ok := in.guilds.Lookup(colors)
	if !ok {
		return label
	}
	return prefixLabel(name, label)
}

func prefixLabel(prefix, label string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return label
	}
	return prefix + " " + label
}
