// Package cli wires the quipu command tree.
package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quipu-sh/quipu/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "quipu [script]",
	Short: "Replay scripted keystrokes into a shell with human-like pacing",
	Long: `quipu replays a scripted sequence of keystrokes into an interactive shell
running inside a pseudo-terminal, simulating realistic human typing for demos
and screencasts.

Scripts are line oriented:
  @ speed:0.15        base per-keystroke delay in seconds
  @ jitter:0.5        randomize each delay by a fraction of the base
  @ wait:2.0          pause without typing
  @ shell:/bin/zsh    shell to spawn (before any typing)
  @ size:120:40       PTY dimensions (before any typing)
  # comment
  $ echo hello<ret>   text to type; <...> expands special keys

The script is read from the file argument, or from stdin when omitted.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runPlay,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().Float64("speed", 0.1, "Base delay between keystrokes in seconds")
	rootCmd.PersistentFlags().Float64("jitter", 0.0, "Random fraction of the base delay (0.0-1.0)")
	rootCmd.PersistentFlags().String("shell", "", "Shell to spawn (default: $SHELL, then /bin/sh)")
	rootCmd.PersistentFlags().Uint16("cols", 0, "PTY columns (default: current terminal)")
	rootCmd.PersistentFlags().Uint16("rows", 0, "PTY rows (default: current terminal)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable verbose logging")

	mustBind("playback.speed", "speed")
	mustBind("playback.jitter", "jitter")
	mustBind("terminal.shell", "shell")
	mustBind("terminal.cols", "cols")
	mustBind("terminal.rows", "rows")
	mustBind("debug", "debug")
}

func mustBind(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	config.SetViperDefaults()

	viper.SetConfigName("quipu")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/quipu")

	viper.SetEnvPrefix("QUIPU")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A config file is optional; anything else wrong with it should surface.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			cobra.CheckErr(err)
		}
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
