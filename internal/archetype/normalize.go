package archetype

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nameReplacer drops punctuation that varies between sources without changing
// which card is meant.
var nameReplacer = strings.NewReplacer(
	"'", "",
	"’", "", // right single quote
	"‘", "", // left single quote
	",", "",
	".", "",
	"\"", "",
	"“", "",
	"”", "",
	"!", "",
	"?", "",
	":", "",
	"æ", "ae", // æther
)

// NormalizeCardName canonicalizes a card name for comparison.
// Example: "Jace, Vryn’s Prodigy" -> "jace vryns prodigy"
// Example: "Fire//Ice" -> "fire // ice"
func NormalizeCardName(name string) string {
	if name == "" {
		return ""
	}

	// Strip diacritics. The transformer chain is stateful, so build one per call.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	stripped = nameReplacer.Replace(strings.ToLower(stripped))

	// Split and double-faced cards are written with "//" in every spacing imaginable.
	if strings.Contains(stripped, "//") {
		halves := strings.Split(stripped, "//")
		for i, half := range halves {
			halves[i] = strings.Join(strings.Fields(half), " ")
		}
		return strings.Join(halves, " // ")
	}

	return strings.Join(strings.Fields(stripped), " ")
}

// normalizeNames normalizes and de-duplicates a list of card names, preserving
// first-seen order. A nil input stays nil so "missing" remains distinguishable
// from "empty". A non-empty list in which no name survives normalization is
// unusable and also comes back nil.
func normalizeNames(names []string) []string {
	if names == nil {
		return nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		n := NormalizeCardName(name)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	if len(names) > 0 && len(out) == 0 {
		return nil
	}
	return out
}
