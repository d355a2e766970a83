package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardCodec(t *testing.T) {
	t.Run("round trips every code", func(t *testing.T) {
		for code := 0; code <= 51; code++ {
			c, err := FromCode(code)
			require.NoError(t, err)
			assert.Equal(t, code, c.Code())
		}
	})

	t.Run("rejects out-of-range codes", func(t *testing.T) {
		_, err := FromCode(-1)
		assert.Error(t, err)
		_, err = FromCode(52)
		assert.Error(t, err)
	})

	t.Run("card = rank*4 + suit", func(t *testing.T) {
		c, err := NewCard(Ace, Spades)
		require.NoError(t, err)
		assert.Equal(t, int(Ace)*4+int(Spades), c.Code())
	})
}

func TestFullDeck(t *testing.T) {
	d := FullDeck()
	require.Len(t, d, 52)
	seen := make(map[Card]bool, 52)
	for _, c := range d {
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
}

func TestParseCards(t *testing.T) {
	cards, err := ParseCards("As Kh Qd Jc Ts")
	require.NoError(t, err)
	require.Len(t, cards, 5)
	assert.Equal(t, Ace, cards[0].Rank())
	assert.Equal(t, Spades, cards[0].Suit())

	_, err = ParseCards("Xx")
	assert.Error(t, err)
}
