package archetype

// CardEntry is a single line of a decklist.
type CardEntry struct {
	Name  string `json:"CardName"`
	Count int    `json:"Count"`
}

// Decklist is a submitted deck as produced by the collectors.
type Decklist struct {
	Mainboard []CardEntry `json:"Mainboard"`
	Sideboard []CardEntry `json:"Sideboard"`
}

// Zone identifies the part of a decklist a condition searches.
type Zone int

const (
	ZoneMainboard Zone = iota
	ZoneSideboard
	ZoneMainOrSideboard
)

func (z Zone) String() string {
	switch z {
	case ZoneMainboard:
		return "Mainboard"
	case ZoneSideboard:
		return "Sideboard"
	case ZoneMainOrSideboard:
		return "MainOrSideboard"
	default:
		return "Unknown"
	}
}

// Deck is the normalized view of a Decklist used during classification.
// Card names are normalized and counts for repeated lines are summed.
// Entries with a count below one are treated as absent.
type Deck struct {
	main map[string]int
	side map[string]int
}

// NewDeck normalizes a decklist. The input is not modified.
func NewDeck(list Decklist) *Deck {
	return &Deck{
		main: collectZone(list.Mainboard),
		side: collectZone(list.Sideboard),
	}
}

func collectZone(entries []CardEntry) map[string]int {
	zone := make(map[string]int, len(entries))
	for _, entry := range entries {
		if entry.Count < 1 {
			continue
		}
		name := NormalizeCardName(entry.Name)
		if name == "" {
			continue
		}
		zone[name] += entry.Count
	}
	return zone
}

// Has reports whether the normalized card name is present in the zone.
func (d *Deck) Has(name string, zone Zone) bool {
	switch zone {
	case ZoneMainboard:
		return d.main[name] > 0
	case ZoneSideboard:
		return d.side[name] > 0
	case ZoneMainOrSideboard:
		return d.main[name] > 0 || d.side[name] > 0
	default:
		return false
	}
}

// IsEmpty reports whether the deck has no cards in either zone.
func (d *Deck) IsEmpty() bool {
	return len(d.main) == 0 && len(d.side) == 0
}

// TotalCards returns the number of cards across both zones.
func (d *Deck) TotalCards() int {
	total := 0
	for _, qty := range d.main {
		total += qty
	}
	for _, qty := range d.side {
		total += qty
	}
	return total
}
