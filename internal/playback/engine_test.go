package playback

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quipu-sh/quipu/internal/script"
)

// fakeKeystroker records every transmitted unit. It can inject a write
// failure or cancel the engine mid-type to exercise boundary behavior.
type fakeKeystroker struct {
	units []string

	failAt  int // 1-based unit index that fails; 0 disables
	failErr error

	cancelAt int // 1-based unit index that triggers engine.Cancel; 0 disables
	engine   *Engine
}

func (f *fakeKeystroker) send(unit string) error {
	f.units = append(f.units, unit)
	n := len(f.units)
	if f.failAt != 0 && n == f.failAt {
		return f.failErr
	}
	if f.cancelAt != 0 && n == f.cancelAt {
		f.engine.Cancel()
	}
	return nil
}

func (f *fakeKeystroker) SendKeystroke(data string) error { return f.send(data) }
func (f *fakeKeystroker) SendChar(c rune) error           { return f.send(string(c)) }

// instant pacing so tests don't wait.
func instantConfig() Config {
	return Config{Speed: 0, Jitter: 0}
}

func newTestEngine(out Keystroker, cfg Config) *Engine {
	return NewEngine(out, cfg, zerolog.Nop())
}

func TestExecute_TypesCharactersAsUnits(t *testing.T) {
	t.Parallel()

	out := &fakeKeystroker{}
	e := newTestEngine(out, instantConfig())

	err := e.Execute(&script.Script{Commands: []script.Command{
		script.Type{Text: "echo hi"},
	}})
	require.NoError(t, err)
	require.Equal(t, []string{"e", "c", "h", "o", " ", "h", "i"}, out.units)
}

func TestExecute_EscapeSequencesAreAtomic(t *testing.T) {
	t.Parallel()

	out := &fakeKeystroker{}
	e := newTestEngine(out, instantConfig())

	// "ls" then F5 then up-arrow then "x": sequences must come out whole.
	err := e.Execute(&script.Script{Commands: []script.Command{
		script.Type{Text: "ls\x1b[15~\x1b[Ax"},
	}})
	require.NoError(t, err)
	require.Equal(t, []string{"l", "s", "\x1b[15~", "\x1b[A", "x"}, out.units)
}

func TestExecute_MultiByteCharactersAreSingleUnits(t *testing.T) {
	t.Parallel()

	out := &fakeKeystroker{}
	e := newTestEngine(out, instantConfig())

	err := e.Execute(&script.Script{Commands: []script.Command{
		script.Type{Text: "héllo 世界"},
	}})
	require.NoError(t, err)
	require.Equal(t, []string{"h", "é", "l", "l", "o", " ", "世", "界"}, out.units)
}

func TestExecute_SpeedAndJitterTakeEffectImmediately(t *testing.T) {
	t.Parallel()

	out := &fakeKeystroker{}
	e := newTestEngine(out, instantConfig())

	err := e.Execute(&script.Script{Commands: []script.Command{
		script.SetSpeed{Seconds: 0.5},
		script.SetJitter{Fraction: 0.25},
	}})
	require.NoError(t, err)
	require.Equal(t, 0.5, e.cfg.Speed)
	require.Equal(t, 0.25, e.cfg.Jitter)
}

func TestExecute_ShellAndSizeAreNoOpsDuringPlayback(t *testing.T) {
	t.Parallel()

	out := &fakeKeystroker{}
	e := newTestEngine(out, instantConfig())

	err := e.Execute(&script.Script{Commands: []script.Command{
		script.SetShell{Path: "/bin/zsh"},
		script.SetSize{Cols: 120, Rows: 40},
	}})
	require.NoError(t, err)
	require.Empty(t, out.units)
}

func TestExecute_WaitPauses(t *testing.T) {
	t.Parallel()

	e := newTestEngine(&fakeKeystroker{}, instantConfig())

	start := time.Now()
	err := e.Execute(&script.Script{Commands: []script.Command{
		script.Wait{Duration: 30 * time.Millisecond},
	}})
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestExecute_CancelledBeforeStartSendsNothing(t *testing.T) {
	t.Parallel()

	out := &fakeKeystroker{}
	e := newTestEngine(out, instantConfig())
	e.Cancel()

	err := e.Execute(&script.Script{Commands: []script.Command{
		script.Type{Text: "echo hi"},
		script.Wait{Duration: time.Hour},
	}})
	require.NoError(t, err)
	require.Empty(t, out.units)
	require.True(t, e.Cancelled())
}

func TestExecute_CancelStopsAtUnitBoundary(t *testing.T) {
	t.Parallel()

	out := &fakeKeystroker{}
	e := newTestEngine(out, instantConfig())
	out.engine = e
	out.cancelAt = 3

	err := e.Execute(&script.Script{Commands: []script.Command{
		script.Type{Text: "abcdef"},
	}})
	require.NoError(t, err)
	// The unit that observed the cancel completes; nothing follows it.
	require.Equal(t, []string{"a", "b", "c"}, out.units)
}

func TestExecute_CancelInterruptsWait(t *testing.T) {
	t.Parallel()

	e := newTestEngine(&fakeKeystroker{}, instantConfig())

	done := make(chan error, 1)
	go func() {
		done <- e.Execute(&script.Script{Commands: []script.Command{
			script.Wait{Duration: time.Hour},
		}})
	}()

	time.Sleep(20 * time.Millisecond)
	e.Cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("cancel did not interrupt the wait")
	}
}

func TestExecute_CancelIsIdempotent(t *testing.T) {
	t.Parallel()

	e := newTestEngine(&fakeKeystroker{}, instantConfig())
	e.Cancel()
	e.Cancel()
	require.True(t, e.Cancelled())
}

func TestExecute_WriteFailureAborts(t *testing.T) {
	t.Parallel()

	boom := errors.New("pty gone")
	out := &fakeKeystroker{failAt: 2, failErr: boom}
	e := newTestEngine(out, instantConfig())

	err := e.Execute(&script.Script{Commands: []script.Command{
		script.Type{Text: "abc"},
		script.Type{Text: "never sent"},
	}})
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"a", "b"}, out.units)
}

func TestDelay_NoJitterIsExact(t *testing.T) {
	t.Parallel()

	e := newTestEngine(&fakeKeystroker{}, Config{Speed: 0.1, Jitter: 0})
	for i := 0; i < 10; i++ {
		require.Equal(t, 100*time.Millisecond, e.delay())
	}
}

func TestDelay_JitterStaysInBounds(t *testing.T) {
	t.Parallel()

	// base 100ms, jitter 50ms: delays must land in [50ms, 150ms].
	e := newTestEngine(&fakeKeystroker{}, Config{Speed: 0.1, Jitter: 0.5})
	for i := 0; i < 500; i++ {
		d := e.delay()
		require.GreaterOrEqual(t, d, 50*time.Millisecond)
		require.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestDelay_JitterLargerThanBaseClampsAtZero(t *testing.T) {
	t.Parallel()

	// base 10ms, jitter 100ms: the lower bound saturates at zero rather
	// than going negative, and a zero delay is allowed.
	e := newTestEngine(&fakeKeystroker{}, Config{Speed: 0.01, Jitter: 10})
	for i := 0; i < 500; i++ {
		d := e.delay()
		require.GreaterOrEqual(t, d, time.Duration(0))
		require.LessOrEqual(t, d, 110*time.Millisecond)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.Equal(t, 0.1, cfg.Speed)
	require.Zero(t, cfg.Jitter)
}
