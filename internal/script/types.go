// Package script defines the quipu script data model and turns script text
// into an ordered command list. A script is line oriented: `@` directives
// adjust playback state, `#` lines are comments, and `$` lines are typed into
// the shell with any `<key>` specs expanded to the raw bytes a terminal would
// send for that keypress.
package script

import "time"

// Command is a single parsed script instruction. The set of implementations
// is closed; the parser is the only producer and the playback engine the only
// consumer.
type Command interface {
	isCommand()
}

// SetSpeed sets the base delay between keystrokes, in seconds.
type SetSpeed struct {
	Seconds float64
}

// SetJitter sets the randomized fraction (0.0-1.0) of the base delay applied
// to each keystroke.
type SetJitter struct {
	Fraction float64
}

// Wait pauses playback for the given duration without sending anything.
type Wait struct {
	Duration time.Duration
}

// SetShell selects the shell to spawn. Must appear before the first Type
// command; it has no effect once playback has started.
type SetShell struct {
	Path string
}

// SetSize selects the PTY dimensions. Must appear before PTY creation; it is
// ignored during playback.
type SetSize struct {
	Cols uint16
	Rows uint16
}

// Type is a fully resolved chunk of text to transmit. Special keys have
// already been expanded, so the string may contain raw control bytes and
// ESC-led sequences.
type Type struct {
	Text string
}

func (SetSpeed) isCommand()  {}
func (SetJitter) isCommand() {}
func (Wait) isCommand()      {}
func (SetShell) isCommand()  {}
func (SetSize) isCommand()   {}
func (Type) isCommand()      {}

// Script is an ordered command list. Execution order is source line order;
// blank and comment lines contribute no command.
type Script struct {
	Commands []Command
}
