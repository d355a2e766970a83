package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/plo-sentinel/internal/deck"
)

func TestParsePosition(t *testing.T) {
	assert.Equal(t, deck.SB, parsePosition("sb"))
	assert.Equal(t, deck.BB, parsePosition("BB"))
	assert.Equal(t, deck.BTN, parsePosition("whatever"))
}

func TestHTTPTableContextRead(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"pot": 300,
			"hero_stack": 1500,
			"bet_facing": 100,
			"position": "co",
			"opponents": 2,
			"in_position": true,
			"dead": ["Ah"],
			"opponent_ids": ["villain-1", "villain-2"]
		}`))
	}))
	defer ts.Close()

	tc := &httpTableContext{addr: ts.URL}
	ctx, err := tc.Read()
	require.NoError(t, err)
	assert.Equal(t, 300, ctx.Pot)
	assert.Equal(t, 1500, ctx.HeroStack)
	assert.Equal(t, 100, ctx.BetFacing)
	assert.Equal(t, deck.CO, ctx.Position)
	assert.Equal(t, 2, ctx.Opponents)
	assert.True(t, ctx.InPosition)
	require.Len(t, ctx.Dead, 1)
	assert.Equal(t, []string{"villain-1", "villain-2"}, ctx.OpponentIDs)
}

func TestHTTPTableContextReadErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	tc := &httpTableContext{addr: ts.URL}
	_, err := tc.Read()
	assert.Error(t, err)
}
