// Package pty spawns a shell inside a pseudo-terminal and exposes the write
// side the playback engine types into. Output from the shell is continuously
// mirrored to stdout by a background goroutine; the controlling terminal is
// held in raw mode for the lifetime of the session so escape sequences pass
// through unmangled.
package pty

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/quipu-sh/quipu/internal/termutil"
)

// ErrClosed is returned by SendKeystroke/SendChar once the PTY has been
// closed.
var ErrClosed = errors.New("pty closed")

// exitDrainPause gives the parent terminal time to answer any queries the
// child emitted right before exit, so DrainPending can swallow the responses.
const exitDrainPause = 100 * time.Millisecond

// Manager owns one shell running inside a PTY: the child process, the master
// file, the output drain goroutine and the saved terminal state.
type Manager struct {
	mu     sync.Mutex
	ptmx   *os.File
	cmd    *exec.Cmd
	closed bool

	// drained closes when the output-mirroring goroutine exits, which
	// happens when the child exits or the master is closed.
	drained chan struct{}

	ttyState *term.State
	ttyFD    int

	log zerolog.Logger
}

// New spawns shell inside a fresh PTY of the given dimensions. The
// controlling terminal is switched to raw mode first (when stdout is a TTY)
// so the child's escape output reaches the screen byte for byte; ISIG is
// re-enabled afterwards so Ctrl+C still cancels playback.
func New(shell string, cols, rows uint16, log zerolog.Logger) (*Manager, error) {
	m := &Manager{
		drained: make(chan struct{}),
		ttyFD:   -1,
		log:     log,
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		fd := int(os.Stdout.Fd())
		if state, err := term.MakeRaw(fd); err == nil {
			m.ttyState = state
			m.ttyFD = fd
			termutil.EnableISIG(fd)
		}
	}

	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		m.restoreTTY()
		return nil, fmt.Errorf("failed to spawn %s in pty: %w", shell, err)
	}
	m.ptmx = ptmx
	m.cmd = cmd

	m.log.Debug().Str("shell", shell).Uint16("cols", cols).Uint16("rows", rows).
		Int("pid", cmd.Process.Pid).Msg("shell started")

	go func() {
		defer close(m.drained)
		// Ends with EIO once the child exits, or with EBADF on Close.
		_, _ = io.Copy(os.Stdout, ptmx)
	}()

	return m, nil
}

// SendKeystroke writes data to the shell's input as one atomic unit. Escape
// sequences must arrive in a single call so no delay lands mid-sequence.
func (m *Manager) SendKeystroke(data string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.ptmx == nil {
		return ErrClosed
	}
	if _, err := io.WriteString(m.ptmx, data); err != nil {
		return fmt.Errorf("failed to write to pty: %w", err)
	}
	return nil
}

// SendChar encodes one character and forwards it to SendKeystroke.
func (m *Manager) SendChar(c rune) error {
	return m.SendKeystroke(string(c))
}

// Wait blocks until the shell exits and its remaining output has been
// mirrored. Scripts normally end by exiting the shell (`$ exit<ret>`);
// callers that cancel playback instead should skip Wait and go straight to
// Close.
func (m *Manager) Wait() error {
	<-m.drained

	m.mu.Lock()
	cmd := m.cmd
	m.cmd = nil
	m.mu.Unlock()

	if cmd == nil {
		return nil
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("shell exited: %w", err)
	}
	return nil
}

// Close tears the session down: further sends fail, the master is closed
// (hanging up the shell if it is still running), pending terminal query
// responses are drained off stdin, and the terminal leaves raw mode. Safe to
// call multiple times and after Wait.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	ptmx := m.ptmx
	cmd := m.cmd
	m.cmd = nil
	m.mu.Unlock()

	if ptmx != nil {
		_ = ptmx.Close()
	}
	<-m.drained
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Wait()
	}

	time.Sleep(exitDrainPause)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		termutil.DrainPending(int(os.Stdin.Fd()))
	}

	m.restoreTTY()
	return nil
}

func (m *Manager) restoreTTY() {
	if m.ttyState == nil {
		return
	}
	if m.ttyFD >= 0 {
		_ = term.Restore(m.ttyFD, m.ttyState)
	}
	m.ttyState = nil
	m.ttyFD = -1
}
