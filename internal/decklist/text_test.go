package decklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mtg-metagame/internal/archetype"
)

func TestParseArenaFormat(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantMainboard int
		wantSideboard int
		wantOK        bool
	}{
		{
			name: "blank line separates sideboard",
			input: `Deck
4 Lightning Bolt (M21) 162
3 Shock (M21) 159
2 Mountain (M21) 275

2 Duress (M21) 96
1 Negate (M21) 59`,
			wantMainboard: 3,
			wantSideboard: 2,
			wantOK:        true,
		},
		{
			name: "explicit sideboard header",
			input: `Companion
1 Lurrus of the Dream-Den (IKO) 226

Deck
4 Monastery Swiftspear (KTK) 118

Sideboard
2 Abrade (HOU) 83`,
			wantMainboard: 1,
			wantSideboard: 2,
			wantOK:        true,
		},
		{
			name: "no set codes",
			input: `Deck
4 Lightning Bolt
3 Shock
2 Mountain`,
			wantMainboard: 3,
			wantOK:        true,
		},
		{
			name: "alphanumeric collector number",
			input: `4 Fable of the Mirror-Breaker (NEO) 141a`,
			wantMainboard: 1,
			wantOK:        true,
		},
		{
			name:   "plain text is not arena",
			input:  "4x Lightning Bolt\nShock x3",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ParseArenaFormat(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Len(t, result.Decklist.Mainboard, tt.wantMainboard)
			assert.Len(t, result.Decklist.Sideboard, tt.wantSideboard)
		})
	}
}

func TestParseArenaFormat_Entries(t *testing.T) {
	result, ok := ParseArenaFormat("Deck\n4 Lightning Bolt (M21) 162\n\n2 Duress (M21) 96")
	require.True(t, ok)

	assert.Equal(t, []archetype.CardEntry{{Name: "Lightning Bolt", Count: 4}}, result.Decklist.Mainboard)
	assert.Equal(t, []archetype.CardEntry{{Name: "Duress", Count: 2}}, result.Decklist.Sideboard)
}

func TestParsePlainText(t *testing.T) {
	input := `// Burn
4 Lightning Bolt
4x Lava Spike
Rift Bolt x4
not a card line

Sideboard:
2 Path to Exile`

	result, ok := ParsePlainText(input)
	require.True(t, ok)

	assert.Equal(t, []archetype.CardEntry{
		{Name: "Lightning Bolt", Count: 4},
		{Name: "Lava Spike", Count: 4},
		{Name: "Rift Bolt", Count: 4},
	}, result.Decklist.Mainboard)
	assert.Equal(t, []archetype.CardEntry{{Name: "Path to Exile", Count: 2}}, result.Decklist.Sideboard)
	assert.Len(t, result.Warnings, 1)
}

func TestParseText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		wantMD  int
	}{
		{name: "arena", input: "Deck\n4 Opt (ELD) 59", wantMD: 1},
		{name: "plain", input: "4x Opt\nConsider x4", wantMD: 2},
		{name: "windows line endings", input: "4 Opt\r\n4 Consider\r\n", wantMD: 2},
		{name: "empty", input: "   \n", wantErr: true},
		{name: "garbage", input: "hello\nworld", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseText(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, result.Decklist.Mainboard, tt.wantMD)
		})
	}
}
