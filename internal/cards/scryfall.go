package cards

import "strings"

// ScryfallCard is the subset of a Scryfall bulk-data card object needed to
// derive color contributions.
type ScryfallCard struct {
	Name         string         `json:"name"`
	Layout       string         `json:"layout"`
	TypeLine     string         `json:"type_line"`
	Colors       []string       `json:"colors,omitempty"`
	ProducedMana []string       `json:"produced_mana,omitempty"`
	CardFaces    []ScryfallFace `json:"card_faces,omitempty"`
}

// ScryfallFace represents one face of a multi-faced card.
type ScryfallFace struct {
	Name     string   `json:"name"`
	TypeLine string   `json:"type_line"`
	Colors   []string `json:"colors,omitempty"`
}

// IsLand returns true if the card's front face is a land.
func (c *ScryfallCard) IsLand() bool {
	typeLine := c.TypeLine
	if len(c.CardFaces) > 0 && c.CardFaces[0].TypeLine != "" {
		typeLine = c.CardFaces[0].TypeLine
	}
	front, _, _ := strings.Cut(typeLine, "//")
	return strings.Contains(front, "Land")
}

// ColorSymbols returns the color symbols the card contributes to a deck.
// Spells contribute their colors, merged across faces when the card object
// has none of its own. Lands contribute the mana they produce.
func (c *ScryfallCard) ColorSymbols() []string {
	if c.IsLand() {
		return c.ProducedMana
	}
	if len(c.Colors) > 0 {
		return c.Colors
	}
	var symbols []string
	for _, face := range c.CardFaces {
		symbols = append(symbols, face.Colors...)
	}
	return symbols
}

// FrontFaceName returns the name of the first face for multi-faced cards,
// or the empty string for single-faced ones.
func (c *ScryfallCard) FrontFaceName() string {
	if len(c.CardFaces) < 2 {
		return ""
	}
	return c.CardFaces[0].Name
}
