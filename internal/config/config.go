// Package config resolves playback and terminal defaults from flags,
// environment and an optional config file. Script directives override these
// at parse/spawn time.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config carries the defaults a run starts with.
type Config struct {
	// Speed is the base delay between keystrokes in seconds.
	Speed float64
	// Jitter is the randomized fraction (0.0-1.0) of the base delay.
	Jitter float64
	// Shell is the shell to spawn inside the PTY.
	Shell string
	// Cols/Rows are the PTY dimensions. Zero means "use the controlling
	// terminal's size, or 80x24 without one".
	Cols uint16
	Rows uint16
	// Debug enables verbose logging.
	Debug bool
}

// SetViperDefaults registers all default values with viper. Call once before
// binding flags.
func SetViperDefaults() {
	viper.SetDefault("playback.speed", 0.1)
	viper.SetDefault("playback.jitter", 0.0)
	viper.SetDefault("terminal.shell", "")
	viper.SetDefault("terminal.cols", 0)
	viper.SetDefault("terminal.rows", 0)
	viper.SetDefault("debug", false)
}

// Load builds a Config from the current viper state. The shell falls back to
// $SHELL and then /bin/sh when not configured.
func Load() (*Config, error) {
	cols := viper.GetUint16("terminal.cols")
	rows := viper.GetUint16("terminal.rows")
	if (cols == 0) != (rows == 0) {
		return nil, fmt.Errorf("terminal.cols and terminal.rows must be set together")
	}

	shell := viper.GetString("terminal.shell")
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}

	speed := viper.GetFloat64("playback.speed")
	if speed < 0 {
		return nil, fmt.Errorf("playback.speed must not be negative, got %v", speed)
	}

	return &Config{
		Speed:  speed,
		Jitter: viper.GetFloat64("playback.jitter"),
		Shell:  shell,
		Cols:   cols,
		Rows:   rows,
		Debug:  viper.GetBool("debug"),
	}, nil
}
