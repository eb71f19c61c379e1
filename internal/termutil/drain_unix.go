//go:build darwin || linux

// Package termutil holds small best-effort terminal state helpers used around
// raw mode.
package termutil

import "golang.org/x/sys/unix"

// DrainPending reads and discards any bytes already queued on fd without
// blocking. Shells and TUIs running under the PTY often query the parent
// terminal (cursor position, device attributes); the responses arrive on our
// stdin and would be fed to the user's shell as garbage input after exit if
// left queued.
func DrainPending(fd int) {
	if fd < 0 {
		return
	}
	buf := make([]byte, 256)
	for {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, 0)
		if err != nil || n == 0 || fds[0].Revents&unix.POLLIN == 0 {
			return
		}
		if _, err := unix.Read(fd, buf); err != nil {
			return
		}
	}
}
