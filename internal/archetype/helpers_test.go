package archetype

import (
	"io"
	"log/slog"
)

// quietLogger discards diagnostics so expected warnings stay out of test output.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// playset returns four copies of each named card.
func playset(names ...string) []CardEntry {
	out := make([]CardEntry, 0, len(names))
	for _, name := range names {
		out = append(out, CardEntry{Name: name, Count: 4})
	}
	return out
}

func mainOnly(names ...string) *Deck {
	return NewDeck(Decklist{Mainboard: playset(names...)})
}
