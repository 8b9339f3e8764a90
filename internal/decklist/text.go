package decklist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ramonehamilton/mtg-metagame/internal/archetype"
)

// ParseResult holds a decklist parsed from text along with any lines that
// could not be understood.
type ParseResult struct {
	Decklist archetype.Decklist
	Warnings []string
}

var (
	// "4 Lightning Bolt (M21) 123" or "4 Lightning Bolt".
	// Group 1: quantity, Group 2: card name, Group 3: set code, Group 4: collector number.
	arenaLine = regexp.MustCompile(`^(\d+)\s+([^(]+?)(?:\s+\(([A-Z0-9]+)\)(?:\s+(\S+))?)?$`)

	// "4 Card Name" or "4x Card Name"
	plainCountFirst = regexp.MustCompile(`^(\d+)x?\s+(.+)$`)
	// "Card Name x4"
	plainCountLast = regexp.MustCompile(`^(.+?)\s+x(\d+)$`)
)

// Section headers of the Arena export format. Commander and companion cards
// sit outside the 60 and are recorded with the sideboard.
var arenaHeaders = map[string]string{
	"deck":      "main",
	"sideboard": "sideboard",
	"commander": "sideboard",
	"companion": "sideboard",
	"about":     "skip",
}

// ParseText parses a decklist export. It tries the Arena format first, then
// falls back to plain text.
func ParseText(input string) (*ParseResult, error) {
	input = strings.TrimSpace(strings.ReplaceAll(input, "\r\n", "\n"))
	if input == "" {
		return nil, fmt.Errorf("empty decklist")
	}

	if result, ok := ParseArenaFormat(input); ok {
		return result, nil
	}
	if result, ok := ParsePlainText(input); ok {
		return result, nil
	}
	return nil, fmt.Errorf("unable to parse decklist format")
}

// ParseArenaFormat parses the MTG Arena export format.
//
//	Deck
//	4 Lightning Bolt (M21) 162
//	20 Mountain (M21) 275
//
//	Sideboard
//	2 Duress (M21) 96
//
// An explicit Sideboard header or the first blank line after mainboard cards
// switches to the sideboard. The boolean result is false when no card line
// parsed or more lines failed than succeeded.
func ParseArenaFormat(input string) (*ParseResult, bool) {
	result := &ParseResult{}
	board := "main"
	sawMain := false
	parsed, failed := 0, 0

	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)

		if section, ok := arenaHeaders[strings.ToLower(line)]; ok {
			board = section
			continue
		}

		if line == "" {
			if board == "main" && sawMain {
				board = "sideboard"
			}
			continue
		}
		if board == "skip" {
			continue
		}

		matches := arenaLine.FindStringSubmatch(line)
		if matches == nil {
			failed++
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: could not parse %q", i+1, line))
			continue
		}

		quantity, err := strconv.Atoi(matches[1])
		if err != nil {
			failed++
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: invalid quantity %q", i+1, matches[1]))
			continue
		}

		parsed++
		result.add(board, quantity, strings.TrimSpace(matches[2]))
		if board == "main" {
			sawMain = true
		}
	}

	return result, parsed > 0 && failed <= parsed
}

// ParsePlainText parses simple card lists:
//   - "4 Lightning Bolt"
//   - "4x Lightning Bolt"
//   - "Lightning Bolt x4"
//
// A line starting with "sideboard" switches to the sideboard.
func ParsePlainText(input string) (*ParseResult, bool) {
	result := &ParseResult{}
	board := "main"
	parsed := 0

	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(strings.ToLower(line), "sideboard") {
			board = "sideboard"
			continue
		}

		quantity, name, ok := parsePlainLine(line)
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: could not parse %q", i+1, line))
			continue
		}

		parsed++
		result.add(board, quantity, name)
	}

	return result, parsed > 0
}

func parsePlainLine(line string) (int, string, bool) {
	if matches := plainCountFirst.FindStringSubmatch(line); matches != nil {
		if q, err := strconv.Atoi(matches[1]); err == nil {
			return q, strings.TrimSpace(matches[2]), true
		}
	}
	if matches := plainCountLast.FindStringSubmatch(line); matches != nil {
		if q, err := strconv.Atoi(matches[2]); err == nil {
			return q, strings.TrimSpace(matches[1]), true
		}
	}
	return 0, "", false
}

func (r *ParseResult) add(board string, quantity int, name string) {
	entry := archetype.CardEntry{Name: name, Count: quantity}
	if board == "main" {
		r.Decklist.Mainboard = append(r.Decklist.Mainboard, entry)
	} else {
		r.Decklist.Sideboard = append(r.Decklist.Sideboard, entry)
	}
}
