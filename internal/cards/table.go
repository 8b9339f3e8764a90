// Package cards builds the card color table used for deck color detection,
// either from a plain name-to-colors map or from Scryfall bulk card data.
package cards

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ramonehamilton/mtg-metagame/internal/archetype"
)

// LoadColorTable reads a card color table from a file.
func LoadColorTable(path string, logger *slog.Logger) (archetype.CardColorTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open card colors: %w", err)
	}
	defer f.Close()

	table, err := ReadColorTable(f, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return table, nil
}

// ReadColorTable decodes either a JSON object mapping card names to color
// symbols ({"Lightning Bolt": ["R"]}) or a Scryfall bulk-data array of cards.
// The format is chosen from the first JSON token.
func ReadColorTable(r io.Reader, logger *slog.Logger) (archetype.CardColorTable, error) {
	if logger == nil {
		logger = slog.Default()
	}

	br := bufio.NewReader(r)
	first, err := firstNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read card colors: %w", err)
	}

	switch first {
	case '{':
		return readColorMap(br, logger)
	case '[':
		return readScryfallBulk(br, logger)
	default:
		return nil, fmt.Errorf("card colors must be a JSON object or array, got %q", first)
	}
}

func firstNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

func readColorMap(r io.Reader, logger *slog.Logger) (archetype.CardColorTable, error) {
	var raw map[string][]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode card color map: %w", err)
	}

	entries := make(map[string][]archetype.Color, len(raw))
	skipped := 0
	for name, symbols := range raw {
		colors, ok := parseSymbols(symbols)
		if !ok {
			skipped++
			logger.Warn("Skipping card with invalid colors", "card", name, "colors", symbols)
			continue
		}
		entries[name] = colors
	}

	table := archetype.NewCardColorTable(entries)
	logger.Debug("Loaded card color map", "cards", len(table), "skipped", skipped)
	return table, nil
}

// readScryfallBulk streams a bulk-data array one card at a time so that the
// full Scryfall dump never has to be held in memory.
func readScryfallBulk(r io.Reader, logger *slog.Logger) (archetype.CardColorTable, error) {
	dec := json.NewDecoder(r)
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read card array: %w", err)
	}

	entries := make(map[string][]archetype.Color)
	add := func(name string, colors []archetype.Color) {
		if name == "" {
			return
		}
		entries[name] = append(entries[name], colors...)
	}

	count := 0
	for dec.More() {
		var card ScryfallCard
		if err := dec.Decode(&card); err != nil {
			return nil, fmt.Errorf("failed to decode card %d: %w", count, err)
		}
		count++

		colors, ok := parseSymbols(card.ColorSymbols())
		if !ok {
			logger.Warn("Skipping card with invalid colors", "card", card.Name)
			continue
		}
		add(card.Name, colors)
		// Decklists usually name multi-faced cards by their front face.
		add(card.FrontFaceName(), colors)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read card array: %w", err)
	}

	table := archetype.NewCardColorTable(entries)
	logger.Debug("Loaded Scryfall card colors", "cards", count, "names", len(table))
	return table, nil
}

// parseSymbols converts color symbols to colors. Colorless ("C") is dropped.
func parseSymbols(symbols []string) ([]archetype.Color, bool) {
	colors := make([]archetype.Color, 0, len(symbols))
	for _, s := range symbols {
		if s == "C" || s == "c" {
			continue
		}
		c, ok := archetype.ParseColor(s)
		if !ok {
			return nil, false
		}
		colors = append(colors, c)
	}
	return colors, true
}
