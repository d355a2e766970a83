package equity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/plo-sentinel/internal/deck"
)

func TestComputeHeadsUpSymmetry(t *testing.T) {
	hero := deck.MustParseCards("AsAhKsKh2c")
	villainSeed := deck.MustParseCards("2d2h3d3h4d")
	board := deck.MustParseCards("5c6d7h")

	ctx := context.Background()
	res, err := Compute(ctx, Request{Hero: hero, Board: board, Sims: 2000, Opponents: 1, Variant: deck.PLO5})
	require.NoError(t, err)

	// A dominant hand (two overpairs vs. bottom pairs on a dry board)
	// should win clearly more than half the time.
	assert.Greater(t, res.Equity, 0.55)
	assert.Equal(t, 2000, res.SimsCompleted)
	_ = villainSeed
}

func TestComputeRejectsWrongHeroSize(t *testing.T) {
	hero := deck.MustParseCards("AsAhKsKh")
	_, err := Compute(context.Background(), Request{Hero: hero, Opponents: 1, Variant: deck.PLO5})
	assert.Error(t, err)
}

func TestComputeRejectsOverlappingCards(t *testing.T) {
	hero := deck.MustParseCards("AsAhKsKh2c")
	board := deck.MustParseCards("As6d7h") // As overlaps hero
	_, err := Compute(context.Background(), Request{Hero: hero, Board: board, Opponents: 1, Variant: deck.PLO5})
	assert.Error(t, err)
}

func TestComputeInsufficientDeck(t *testing.T) {
	hero := deck.MustParseCards("AsAhKsKh2c")
	// Block nearly the whole deck as "dead" so there aren't enough cards
	// left to deal to a large number of opponents.
	full := deck.FullDeck()
	var dead []deck.Card
	blocked := make(map[deck.Card]bool)
	for _, c := range hero {
		blocked[c] = true
	}
	for _, c := range full {
		if len(dead) >= 40 {
			break
		}
		if !blocked[c] {
			dead = append(dead, c)
			blocked[c] = true
		}
	}

	res, err := Compute(context.Background(), Request{Hero: hero, Dead: dead, Opponents: 3, Variant: deck.PLO5})
	require.NoError(t, err)
	assert.True(t, res.InsufficientDeck)
}

func TestComputeVillainSizeMatchesVariant(t *testing.T) {
	hero6 := deck.MustParseCards("AsAhKsKh2c2d")
	res, err := Compute(context.Background(), Request{Hero: hero6, Sims: 500, Opponents: 1, Variant: deck.PLO6})
	require.NoError(t, err)
	assert.Equal(t, 500, res.SimsCompleted)
}
