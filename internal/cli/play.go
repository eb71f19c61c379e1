package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quipu-sh/quipu/internal/config"
	"github.com/quipu-sh/quipu/internal/playback"
	"github.com/quipu-sh/quipu/internal/pty"
	"github.com/quipu-sh/quipu/internal/script"
)

// The PTY manager is the engine's keystroke sink.
var _ playback.Keystroker = (*pty.Manager)(nil)

var playCmd = &cobra.Command{
	Use:   "play [script]",
	Short: "Parse a script and replay it into a fresh shell",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg.Debug)

	text, err := readScript(args)
	if err != nil {
		return err
	}

	s, err := script.Parse(text)
	if err != nil {
		return err
	}
	log.Debug().Int("commands", len(s.Commands)).Msg("script parsed")

	shell, cols, rows := sessionSettings(cfg, s)

	manager, err := pty.New(shell, cols, rows, log)
	if err != nil {
		return err
	}
	defer func() { _ = manager.Close() }()

	engine := playback.NewEngine(manager, playback.Config{
		Speed:  cfg.Speed,
		Jitter: cfg.Jitter,
	}, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		log.Debug().Msg("interrupt received, stopping playback")
		engine.Cancel()
		// A second interrupt hangs up the shell as well.
		<-sigCh
		_ = manager.Close()
	}()

	if err := engine.Execute(s); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	if engine.Cancelled() {
		return nil
	}

	// Let the shell run to completion so its remaining output reaches the
	// screen. Scripts normally end by exiting the shell.
	if err := manager.Wait(); err != nil {
		log.Debug().Err(err).Msg("shell exit")
	}
	return nil
}

// readScript loads the script text from the file argument, or stdin when the
// argument is missing or "-".
func readScript(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read script from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return string(data), nil
}

// sessionSettings resolves the shell and PTY size for this run. Directives
// appearing before the first typed line override the configured defaults;
// later ones are playback no-ops. With no explicit size the controlling
// terminal's dimensions are used, or 80x24 without one.
func sessionSettings(cfg *config.Config, s *script.Script) (shell string, cols, rows uint16) {
	shell = cfg.Shell
	cols, rows = cfg.Cols, cfg.Rows

scan:
	for _, cmd := range s.Commands {
		switch c := cmd.(type) {
		case script.SetShell:
			shell = c.Path
		case script.SetSize:
			cols, rows = c.Cols, c.Rows
		case script.Type:
			break scan
		}
	}

	if cols == 0 || rows == 0 {
		cols, rows = 80, 24
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
				cols, rows = uint16(w), uint16(h)
			}
		}
	}
	return shell, cols, rows
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
