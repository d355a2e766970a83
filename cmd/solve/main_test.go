package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/plo-sentinel/internal/deck"
	"github.com/lox/plo-sentinel/internal/gto"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want deck.Position
	}{
		{"btn", deck.BTN},
		{"BTN", deck.BTN},
		{"sb", deck.SB},
		{"bb", deck.BB},
		{"utg", deck.UTG},
		{"mp", deck.MP},
		{"co", deck.CO},
		{"nonsense", deck.BTN},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parsePosition(tt.in))
	}
}

func TestFormatCards(t *testing.T) {
	cards := deck.MustParseCards("AhKdQcJsTc")
	assert.Equal(t, "Ah Kd Qc Js Tc", formatCards(cards))
}

func TestFormatFrequencies(t *testing.T) {
	f := gto.Frequencies{Fold: 0.1, Call: 0.2, Raise: 0.3, Allin: 0.4}
	got := formatFrequencies(f)
	assert.Contains(t, got, "fold 10%")
	assert.Contains(t, got, "allin 40%")
}
