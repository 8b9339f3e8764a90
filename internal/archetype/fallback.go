package archetype

// DefaultFallbackMinOverlap is the minimum share of a fallback's signature
// cards a deck must contain for the fallback to be considered.
const DefaultFallbackMinOverlap = 0.10

// FallbackScore is the best fallback found for a deck.
type FallbackScore struct {
	Fallback *FallbackDefinition
	Overlap  float64 // |signature ∩ deck| / |signature|
	Shared   int     // Number of signature cards present
}

// ScoreFallback picks the fallback with the highest signature overlap against
// the deck's mainboard. Candidates below minOverlap, or sharing no cards at
// all, are discarded. Ties go to the fallback listed first.
func ScoreFallback(deck *Deck, fallbacks []FallbackDefinition, minOverlap float64) (FallbackScore, bool) {
	var best FallbackScore
	found := false

	for i := range fallbacks {
		fb := &fallbacks[i]
		signature := distinct(fb.SignatureCards)
		if len(signature) == 0 {
			continue
		}

		shared := 0
		for _, name := range signature {
			if deck.Has(name, ZoneMainboard) {
				shared++
			}
		}
		if shared == 0 {
			continue
		}

		overlap := float64(shared) / float64(len(signature))
		if overlap < minOverlap {
			continue
		}

		// Strictly greater keeps the earlier fallback on ties.
		if !found || overlap > best.Overlap {
			best = FallbackScore{Fallback: fb, Overlap: overlap, Shared: shared}
			found = true
		}
	}

	return best, found
}

func distinct(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
