package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cards(ids ...int) []Detection {
	out := make([]Detection, len(ids))
	for i, id := range ids {
		out[i] = Detection{ClassID: id, Confidence: 0.9}
	}
	return out
}

func TestGateRequiresConsecutiveConsensus(t *testing.T) {
	g := NewGate(Config{StabilityRequired: 3, MinCardsForAction: 2})
	frame := append(cards(0, 4, 8, 12, 16), Detection{ClassID: FoldButton})

	assert.False(t, g.Feed(frame), "first frame must not fire")
	assert.False(t, g.Feed(frame), "second consecutive frame must not fire yet")
	assert.True(t, g.Feed(frame), "third consecutive identical frame fires stable")
}

func TestGateResetsOnSignatureChange(t *testing.T) {
	g := NewGate(Config{StabilityRequired: 3, MinCardsForAction: 2})
	a := append(cards(0, 4, 8), Detection{ClassID: FoldButton})
	b := append(cards(1, 5, 9), Detection{ClassID: FoldButton})

	assert.False(t, g.Feed(a))
	assert.False(t, g.Feed(a))
	assert.False(t, g.Feed(b), "a differing signature must restart the consensus count")
	assert.False(t, g.Feed(b))
	assert.True(t, g.Feed(b))
}

func TestGateRequiresMinCards(t *testing.T) {
	g := NewGate(Config{StabilityRequired: 2, MinCardsForAction: 5})
	frame := append(cards(0, 4), Detection{ClassID: FoldButton})

	assert.False(t, g.Feed(frame))
	assert.False(t, g.Feed(frame), "below MinCardsForAction must never fire even once stable")
}

func TestGateRequiresAnActionButton(t *testing.T) {
	g := NewGate(Config{StabilityRequired: 2, MinCardsForAction: 2})
	frame := cards(0, 4, 8) // no button detection at all

	assert.False(t, g.Feed(frame))
	assert.False(t, g.Feed(frame), "stable cards without a visible action button must not fire")
}

func TestGateOrderIndependentSignature(t *testing.T) {
	g := NewGate(Config{StabilityRequired: 2, MinCardsForAction: 2})
	a := append(cards(0, 4, 8), Detection{ClassID: FoldButton})
	b := append(cards(8, 0, 4), Detection{ClassID: FoldButton}) // same cards, different order

	assert.False(t, g.Feed(a))
	assert.True(t, g.Feed(b), "card order must not matter to the signature")
}

func TestGateReset(t *testing.T) {
	g := NewGate(DefaultConfig())
	frame := append(cards(0, 4), Detection{ClassID: FoldButton})
	g.Feed(frame)
	g.Feed(frame)
	g.Reset()
	assert.False(t, g.Feed(frame), "after Reset, consensus must rebuild from scratch")
}
