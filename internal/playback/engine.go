// Package playback executes a parsed script against a PTY, pacing keystrokes
// with a configurable base delay and jitter so the typing looks human.
package playback

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/quipu-sh/quipu/internal/script"
)

// Keystroker is the write side of the PTY as the engine sees it. Both calls
// write exactly one unit: SendKeystroke a whole (possibly multi-byte) escape
// sequence, SendChar a single character.
type Keystroker interface {
	SendKeystroke(data string) error
	SendChar(c rune) error
}

// Config is the mutable pacing state. Speed is the base delay between
// keystrokes in seconds; Jitter is the randomized fraction of that delay.
// Only SetSpeed/SetJitter commands mutate it during a run.
type Config struct {
	Speed  float64
	Jitter float64
}

// DefaultConfig is the pacing used before any directive runs: 100ms per
// keystroke, no jitter.
func DefaultConfig() Config {
	return Config{Speed: 0.1, Jitter: 0.0}
}

// Engine drives one script execution. It owns the cancellation flag; signal
// wiring only ever sees the Cancel method.
type Engine struct {
	out Keystroker
	cfg Config
	log zerolog.Logger

	running    atomic.Bool
	cancelOnce sync.Once
	cancelCh   chan struct{}
}

// NewEngine returns an engine writing to out with the given initial pacing.
func NewEngine(out Keystroker, cfg Config, log zerolog.Logger) *Engine {
	e := &Engine{
		out:      out,
		cfg:      cfg,
		log:      log,
		cancelCh: make(chan struct{}),
	}
	e.running.Store(true)
	return e
}

// Cancel stops playback at the next unit boundary. Safe to call from a signal
// handler context and safe to call more than once; an in-flight escape
// sequence is never split.
func (e *Engine) Cancel() {
	e.cancelOnce.Do(func() {
		e.running.Store(false)
		close(e.cancelCh)
	})
}

// Cancelled reports whether Cancel has been called.
func (e *Engine) Cancelled() bool {
	return !e.running.Load()
}

// Execute runs the script's commands strictly in order. Cancellation is a
// clean early stop, not an error; a write failure aborts immediately.
func (e *Engine) Execute(s *script.Script) error {
	for _, cmd := range s.Commands {
		if !e.running.Load() {
			e.log.Debug().Msg("playback cancelled")
			return nil
		}
		if err := e.runCommand(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) runCommand(cmd script.Command) error {
	switch c := cmd.(type) {
	case script.SetSpeed:
		e.cfg.Speed = c.Seconds
		e.log.Debug().Float64("speed", c.Seconds).Msg("speed changed")
	case script.SetJitter:
		e.cfg.Jitter = c.Fraction
		e.log.Debug().Float64("jitter", c.Fraction).Msg("jitter changed")
	case script.Wait:
		e.sleep(c.Duration)
	case script.SetShell:
		// Shell selection happens before playback; ignored here.
		e.log.Debug().Str("shell", c.Path).Msg("shell directive ignored during playback")
	case script.SetSize:
		// Size is fixed at PTY creation; ignored here.
		e.log.Debug().Uint16("cols", c.Cols).Uint16("rows", c.Rows).Msg("size directive ignored during playback")
	case script.Type:
		return e.typeText(c.Text)
	}
	return nil
}

// typeText transmits resolved text one unit at a time: a whole escape
// sequence or a whole character per write, with a delay after every unit
// including the last. The cancellation flag is checked at unit boundaries
// only, so a sequence already being sent always completes.
func (e *Engine) typeText(text string) error {
	for i := 0; i < len(text); {
		if !e.running.Load() {
			return nil
		}

		if text[i] == 0x1b {
			n := escapeSequenceLength(text[i:])
			if err := e.out.SendKeystroke(text[i : i+n]); err != nil {
				return err
			}
			i += n
		} else {
			r, size := utf8.DecodeRuneInString(text[i:])
			if err := e.out.SendChar(r); err != nil {
				return err
			}
			i += size
		}

		e.sleep(e.delay())
	}
	return nil
}

// delay computes the pause after one unit. With jitter the result is uniform
// over [base-jitter, base+jitter] clamped at zero; jitter larger than the
// base can therefore yield a zero delay, which is kept as-is.
func (e *Engine) delay() time.Duration {
	baseMS := int64(e.cfg.Speed * 1000)
	jitterMS := int64(float64(baseMS) * e.cfg.Jitter)

	if jitterMS <= 0 {
		return time.Duration(baseMS) * time.Millisecond
	}

	variation := rand.Int63n(2*jitterMS + 1)
	ms := baseMS + variation - jitterMS
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond
}

// sleep pauses without blocking cancellation: a Cancel during a long wait
// wakes it immediately.
func (e *Engine) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-e.cancelCh:
	}
}
