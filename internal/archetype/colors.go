package archetype

import (
	"fmt"
	"strings"
)

// Color is one of the five mana colors.
type Color string

// Color constants for WUBRG
const (
	White Color = "W"
	Blue  Color = "U"
	Black Color = "B"
	Red   Color = "R"
	Green Color = "G"
)

// AllColors lists all five colors in WUBRG order.
var AllColors = []Color{White, Blue, Black, Red, Green}

// DefaultColorMinShare is the minimum share of colored cards a color needs to
// count toward a deck's identity.
const DefaultColorMinShare = 0.10

var colorNames = map[Color]string{
	White: "White",
	Blue:  "Blue",
	Black: "Black",
	Red:   "Red",
	Green: "Green",
}

// ParseColor accepts a color symbol ("R") or name ("Red"), case-insensitively.
func ParseColor(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	for _, c := range AllColors {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, colorNames[c]) {
			return c, true
		}
	}
	return "", false
}

// Name returns the full name of the color, e.g. "Red".
func (c Color) Name() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return string(c)
}

func (c Color) index() int {
	for i, color := range AllColors {
		if color == c {
			return i
		}
	}
	return -1
}

// ColorIdentity is a set of colors kept in WUBRG order.
type ColorIdentity []Color

// NewColorIdentity builds an identity from any colors, dropping duplicates and
// invalid values and sorting into WUBRG order.
func NewColorIdentity(colors ...Color) ColorIdentity {
	var present [5]bool
	for _, c := range colors {
		if i := c.index(); i >= 0 {
			present[i] = true
		}
	}
	identity := ColorIdentity{}
	for i, c := range AllColors {
		if present[i] {
			identity = append(identity, c)
		}
	}
	return identity
}

// ParseColorIdentity parses a string of color symbols such as "UR" or "wubrg".
// Braces, slashes and whitespace are ignored so mana symbols like "{U}{R}" work.
func ParseColorIdentity(s string) (ColorIdentity, error) {
	var colors []Color
	for _, r := range strings.ToUpper(s) {
		switch r {
		case '{', '}', '/', ' ', '\t':
			continue
		case 'C':
			// Colorless mana contributes no color.
			continue
		}
		c := Color(string(r))
		if c.index() < 0 {
			return nil, fmt.Errorf("invalid color symbol %q in %q", r, s)
		}
		colors = append(colors, c)
	}
	return NewColorIdentity(colors...), nil
}

// String returns the WUBRG symbols of the identity, e.g. "UR". Empty for colorless.
func (ci ColorIdentity) String() string {
	var b strings.Builder
	for _, c := range ci {
		b.WriteString(string(c))
	}
	return b.String()
}

// Contains reports whether the identity includes the color.
func (ci ColorIdentity) Contains(c Color) bool {
	for _, color := range ci {
		if color == c {
			return true
		}
	}
	return false
}

// Equal reports whether both identities hold the same colors.
func (ci ColorIdentity) Equal(other ColorIdentity) bool {
	return NewColorIdentity(ci...).String() == NewColorIdentity(other...).String()
}

// CardColorTable maps normalized card names to the colors they contribute.
type CardColorTable map[string]ColorIdentity

// NewCardColorTable normalizes the card names of a raw table. Entries whose
// names collide after normalization are merged.
func NewCardColorTable(entries map[string][]Color) CardColorTable {
	table := make(CardColorTable, len(entries))
	for name, colors := range entries {
		key := NormalizeCardName(name)
		if key == "" {
			continue
		}
		table[key] = NewColorIdentity(append(table[key], colors...)...)
	}
	return table
}

// DetectColors infers a deck's color identity. Every card in both zones adds
// its count to each color it contributes; a color is kept when its weight is at
// least minShare of the weighted number of colored cards. Cards missing from
// the table contribute nothing.
func DetectColors(deck *Deck, table CardColorTable, minShare float64) ColorIdentity {
	var weights [5]int
	total := 0

	tally := func(zone map[string]int) {
		for name, qty := range zone {
			colors := table[name]
			if len(colors) == 0 {
				continue
			}
			total += qty
			for _, c := range NewColorIdentity(colors...) {
				weights[c.index()] += qty
			}
		}
	}
	tally(deck.main)
	tally(deck.side)

	identity := ColorIdentity{}
	if total == 0 {
		return identity
	}

	threshold := minShare * float64(total)
	for i, c := range AllColors {
		if weights[i] > 0 && float64(weights[i]) >= threshold {
			identity = append(identity, c)
		}
	}
	return identity
}
