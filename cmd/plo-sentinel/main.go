// Command plo-sentinel is the live engine binary: it wires the vision
// feed, opponent intake, config, and orchestrator loop together and runs
// until interrupted.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/plo-sentinel/internal/config"
	"github.com/lox/plo-sentinel/internal/deck"
	"github.com/lox/plo-sentinel/internal/execution"
	"github.com/lox/plo-sentinel/internal/gto"
	"github.com/lox/plo-sentinel/internal/opponent"
	"github.com/lox/plo-sentinel/internal/orchestrator"
	"github.com/lox/plo-sentinel/internal/telemetry"
	"github.com/lox/plo-sentinel/internal/wsvision"
)

type CLI struct {
	Config        string `kong:"default='engine.hcl',help='Path to the engine HCL config file'"`
	VisionAddr    string `kong:"default='ws://localhost:9001/frames',help='Vision peripheral WebSocket URL'"`
	IntakeAddr    string `kong:"default='ws://localhost:9001/hands',help='Opponent intake WebSocket URL'"`
	TableAddr     string `kong:"default='http://localhost:9002/table',help='Table-context HTTP polling endpoint'"`
	TelemetryAddr string `kong:"default=':9003',help='Address to serve dashboard telemetry on'"`
	Debug         bool   `kong:"help='Enable debug logging'"`
	Seed          *int64 `kong:"help='Deterministic RNG seed (optional)'"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("plo-sentinel"),
		kong.Description("Real-time PLO5/PLO6 decision engine"),
		kong.UsageOnError(),
	)

	level := zerolog.InfoLevel
	if cli.Debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	cfg, err := config.Load(cli.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load engine config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid engine config")
	}
	gto.ApplyThresholdOverrides(
		cfg.Thresholds.PreflopFold,
		cfg.Thresholds.FlopFold,
		cfg.Thresholds.TurnFold,
		cfg.Thresholds.RiverFold,
	)

	seed := time.Now().UnixNano()
	if cli.Seed != nil {
		seed = *cli.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	store := opponent.NewStore().WithMinTrustHands(cfg.Opponent.MinTrustHands)

	intake := wsvision.NewIntakeClient(cli.IntakeAddr, store, log.With().Str("component", "intake").Logger())
	go runIntakeWithRetry(intake, log)

	vis := wsvision.NewClient(cli.VisionAddr, log.With().Str("component", "vision").Logger())
	if err := vis.Connect(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to vision peripheral")
	}
	defer vis.Disconnect()

	executor := execution.NewExecutor(quartz.NewReal(), rng).
		WithCooldownFloor(cfg.CooldownFloor()).
		WithMeanDelays(cfg.EasyMean(), cfg.MediumMean(), cfg.HardMean())
	table := &httpTableContext{addr: cli.TableAddr}

	loopCfg := orchestrator.DefaultConfig()
	loopCfg.PerceptionTimeout = cfg.PerceptionTimeout()
	loopCfg.CooldownCeiling = cfg.CooldownCeiling()
	loopCfg.Gate.StabilityRequired = uint32(cfg.Vision.StabilityRequired)
	loopCfg.Gate.MinCardsForAction = cfg.Vision.MinCardsForAction
	loopCfg.SimsPLO5 = cfg.Equity.SimsPLO5
	loopCfg.SimsPLO6 = cfg.Equity.SimsPLO6
	loopCfg.EquityWorkers = cfg.Equity.Workers

	loop := orchestrator.NewLoop(vis, table, store, executor, quartz.NewReal(), loopCfg, rng, log.With().Str("component", "orchestrator").Logger())

	telemetrySrv := &http.Server{Addr: cli.TelemetryAddr, Handler: telemetry.Handler(loop)}
	go func() {
		if err := telemetrySrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn().Err(err).Msg("telemetry server exited")
		}
	}()
	defer telemetrySrv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	runErr := make(chan error, 1)
	go func() { runErr <- loop.Run(ctx) }()

	select {
	case err := <-runErr:
		if err != nil {
			log.Error().Err(err).Msg("orchestrator loop exited with error")
			kctx.Exit(1)
		}
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		loop.Stop()
		cancel()
		<-runErr
	}

	stats := loop.Stats()
	log.Info().
		Int64("cycles", stats.Cycles).
		Int64("executed", stats.Executed).
		Int64("frames_dropped", stats.FramesDropped).
		Int64("perception_timeout", stats.PerceptionTimeout).
		Int64("no_target_button", stats.NoTargetButton).
		Int64("executor_locked", stats.ExecutorLocked).
		Msg("final stats")
}

// runIntakeWithRetry keeps the opponent-intake connection alive: spec.md
// §4.8's PeripheralCrash handling says a collaborator dying is expected,
// not fatal, so the supervisor restarts it with a short backoff.
func runIntakeWithRetry(intake *wsvision.IntakeClient, log zerolog.Logger) {
	backoff := time.Second
	for {
		if err := intake.Run(); err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("opponent intake connection lost")
		}
		time.Sleep(backoff)
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// tableContextWire is the JSON shape read from the OCR/seat-tracking
// companion service — an external collaborator per spec.md §1, polled
// rather than pushed since it changes far less often than vision frames.
type tableContextWire struct {
	Pot         int      `json:"pot"`
	HeroStack   int      `json:"hero_stack"`
	BetFacing   int      `json:"bet_facing"`
	Position    string   `json:"position"`
	Opponents   int      `json:"opponents"`
	InPosition  bool     `json:"in_position"`
	Dead        []string `json:"dead"`
	OpponentIDs []string `json:"opponent_ids"`
}

type httpTableContext struct {
	addr string
}

func (h *httpTableContext) Read() (orchestrator.TableContext, error) {
	resp, err := http.Get(h.addr)
	if err != nil {
		return orchestrator.TableContext{}, fmt.Errorf("plo-sentinel: table context fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return orchestrator.TableContext{}, fmt.Errorf("plo-sentinel: table context status %s", resp.Status)
	}

	var wire tableContextWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return orchestrator.TableContext{}, fmt.Errorf("plo-sentinel: table context decode: %w", err)
	}

	var dead []deck.Card
	if len(wire.Dead) > 0 {
		dead = make([]deck.Card, 0, len(wire.Dead))
		for _, s := range wire.Dead {
			cards, err := deck.ParseCards(s)
			if err != nil {
				return orchestrator.TableContext{}, fmt.Errorf("plo-sentinel: table context dead card: %w", err)
			}
			dead = append(dead, cards...)
		}
	}

	return orchestrator.TableContext{
		Pot:         wire.Pot,
		HeroStack:   wire.HeroStack,
		BetFacing:   wire.BetFacing,
		Position:    parsePosition(wire.Position),
		Opponents:   wire.Opponents,
		InPosition:  wire.InPosition,
		Dead:        dead,
		OpponentIDs: wire.OpponentIDs,
	}, nil
}

func parsePosition(s string) deck.Position {
	switch s {
	case "sb", "SB":
		return deck.SB
	case "bb", "BB":
		return deck.BB
	case "utg", "UTG":
		return deck.UTG
	case "mp", "MP":
		return deck.MP
	case "co", "CO":
		return deck.CO
	default:
		return deck.BTN
	}
}
