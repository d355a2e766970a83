package main

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/plo-sentinel/internal/deck"
	"github.com/lox/plo-sentinel/internal/equity"
	"github.com/lox/plo-sentinel/internal/gto"
)

// CLI is the offline batch calculator, grounded on the teacher's
// poker-odds command but extended with a decision column driven by the
// same gto package the live engine uses.
type CLI struct {
	Hero      string `arg:"" help:"Hero hole cards, e.g. 'AhKdQcJsTc' (5 or 6 cards)" required:"true"`
	Board     string `short:"b" help:"Community board cards (0, 3, 4 or 5 cards)"`
	Dead      string `short:"d" help:"Dead/folded cards to remove from the deck"`
	Opponents int    `short:"o" help:"Number of opponents" default:"1"`
	Pot       int    `help:"Pot size in BB*100 units" default:"100"`
	Stack     int    `help:"Hero stack in BB*100 units" default:"2000"`
	BetFacing int    `help:"Bet facing hero, 0 for no bet" default:"0"`
	Position  string `help:"Hero position: btn, sb, bb, utg, mp, co" default:"btn"`
	InPos     bool   `help:"Hero is in position"`
	Sims      int    `short:"i" help:"Monte Carlo iterations, 0 for variant default"`
	Seed      *int64 `help:"Random seed for reproducible results"`
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	handStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	winStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	actionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
)

func main() {
	var cli CLI
	kong.Parse(&cli)

	hero, err := deck.ParseCards(cli.Hero)
	if err != nil {
		log.Fatal("parsing hero cards", "error", err)
	}
	variant, err := deck.VariantForHand(len(hero))
	if err != nil {
		log.Fatal("invalid hero hand", "error", err)
	}

	var board, dead []deck.Card
	if cli.Board != "" {
		if board, err = deck.ParseCards(cli.Board); err != nil {
			log.Fatal("parsing board", "error", err)
		}
	}
	if cli.Dead != "" {
		if dead, err = deck.ParseCards(cli.Dead); err != nil {
			log.Fatal("parsing dead cards", "error", err)
		}
	}
	street, err := deck.StreetForBoard(len(board))
	if err != nil {
		log.Fatal("invalid board", "error", err)
	}
	if err := deck.ValidateDisjoint(hero, board, dead); err != nil {
		log.Fatal("card overlap", "error", err)
	}

	var seed int64
	if cli.Seed != nil {
		seed = *cli.Seed
	} else {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	start := time.Now()
	res, err := equity.Compute(context.Background(), equity.Request{
		Hero:      hero,
		Board:     board,
		Dead:      dead,
		Sims:      cli.Sims,
		Opponents: cli.Opponents,
		Variant:   variant,
	})
	if err != nil {
		log.Fatal("computing equity", "error", err)
	}
	elapsed := time.Since(start)

	if res.InsufficientDeck {
		log.Fatal("not enough cards remain in the deck for this many opponents/board")
	}

	gs := gto.GameState{
		HeroCards:  hero,
		Board:      board,
		Dead:       dead,
		Variant:    variant,
		Street:     street,
		Pot:        cli.Pot,
		HeroStack:  cli.Stack,
		BetFacing:  cli.BetFacing,
		Position:   parsePosition(cli.Position),
		Opponents:  cli.Opponents,
		InPosition: cli.InPos,
	}
	decision := gto.Decide(gs, nil, res.Equity, rng)

	printResults(gs, res, decision, elapsed)
}

func parsePosition(s string) deck.Position {
	switch strings.ToLower(s) {
	case "sb":
		return deck.SB
	case "bb":
		return deck.BB
	case "utg":
		return deck.UTG
	case "mp":
		return deck.MP
	case "co":
		return deck.CO
	default:
		return deck.BTN
	}
}

func printResults(gs gto.GameState, res equity.Result, d gto.Decision, elapsed time.Duration) {
	fmt.Printf("%s %s\n", headerStyle.Render("hero"), handStyle.Render(formatCards(gs.HeroCards)))
	if len(gs.Board) > 0 {
		fmt.Printf("%s %s\n", headerStyle.Render("board"), handStyle.Render(formatCards(gs.Board)))
	}
	fmt.Println()

	fmt.Printf("%s %s\n", headerStyle.Render("equity"), winStyle.Render(fmt.Sprintf("%.1f%%", res.Equity*100)))
	fmt.Printf("%s %s\n", headerStyle.Render("win/tie"), fmt.Sprintf("%.1f%% / %.1f%%", res.WinRate*100, res.TieRate*100))
	fmt.Println()

	fmt.Printf("%s %s\n", headerStyle.Render("action"), actionStyle.Render(strings.ToUpper(d.Action.String())))
	if d.RaiseAmount > 0 {
		fmt.Printf("%s %d\n", headerStyle.Render("amount"), d.RaiseAmount)
	}
	fmt.Printf("%s %.2f\n", headerStyle.Render("confidence"), d.Confidence)
	fmt.Printf("%s %s\n", headerStyle.Render("frequencies"), formatFrequencies(d.Frequencies))
	fmt.Printf("%s %s\n", headerStyle.Render("reasoning"), d.Reasoning)
	fmt.Println()

	fmt.Printf("%d simulations in %v\n", res.SimsCompleted, elapsed.Truncate(time.Millisecond))
}

func formatFrequencies(f gto.Frequencies) string {
	return fmt.Sprintf("fold %.0f%% call %.0f%% raise %.0f%% allin %.0f%%",
		f.Fold*100, f.Call*100, f.Raise*100, f.Allin*100)
}

func formatCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
