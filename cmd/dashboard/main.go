// Command dashboard runs the read-only diagnostic TUI, polling a running
// plo-sentinel engine's telemetry endpoint.
package main

import (
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/plo-sentinel/internal/telemetry"
	"github.com/lox/plo-sentinel/internal/tui"
)

// errLog is a stderr logger, separate from the TUI's alt-screen
// output, so a program-run error is still visible once the terminal
// is restored. Color profile is forced the way the teacher's
// holdem-server command does for its own dual-output logger.
var errLog = func() *log.Logger {
	l := log.New(os.Stderr)
	l.SetColorProfile(termenv.TrueColor)
	return l
}()

type CLI struct {
	Addr         string        `kong:"default='http://localhost:9003/snapshot',help='Engine telemetry endpoint'"`
	PollInterval time.Duration `kong:"default='500ms',help='How often to poll the engine'"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("plo-sentinel-dashboard"),
		kong.Description("Diagnostic dashboard for a running plo-sentinel engine"),
	)

	updates := make(chan telemetry.Snapshot, 1)
	errs := make(chan error, 1)
	stop := make(chan struct{})
	go pollLoop(telemetry.Client{Addr: cli.Addr}, cli.PollInterval, updates, errs, stop)

	model := tui.NewModel(updates, errs)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		close(stop)
		errLog.Error("dashboard exited with error", "error", err)
		ctx.Exit(1)
	}
	close(stop)
}

func pollLoop(client telemetry.Client, interval time.Duration, updates chan<- telemetry.Snapshot, errs chan<- error, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			snap, err := client.Fetch()
			if err != nil {
				select {
				case errs <- err:
				default:
				}
				continue
			}
			select {
			case updates <- snap:
			default:
			}
		}
	}
}
