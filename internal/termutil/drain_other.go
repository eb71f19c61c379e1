//go:build !darwin && !linux

// Package termutil holds small best-effort terminal state helpers used around
// raw mode.
package termutil

// DrainPending is a no-op on unsupported platforms.
func DrainPending(fd int) {
	_ = fd
}
