package script

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// namedKeys maps bare key names to the bytes an xterm-family terminal sends
// for that key. F1-F4 use SS3 encodings (ESC O letter) while F5-F12 use CSI
// numeric encodings (ESC [ n ~); both forms are what real terminals emit and
// must be reproduced exactly.
var namedKeys = map[string]string{
	"esc":       "\x1b",
	"space":     " ",
	"ret":       "\r",
	"return":    "\r",
	"enter":     "\r",
	"tab":       "\t",
	"backspace": "\x7f",
	"bs":        "\x7f",
	"F1":        "\x1bOP",
	"F2":        "\x1bOQ",
	"F3":        "\x1bOR",
	"F4":        "\x1bOS",
	"F5":        "\x1b[15~",
	"F6":        "\x1b[17~",
	"F7":        "\x1b[18~",
	"F8":        "\x1b[19~",
	"F9":        "\x1b[20~",
	"F10":       "\x1b[21~",
	"F11":       "\x1b[23~",
	"F12":       "\x1b[24~",
	"up":        "\x1b[A",
	"down":      "\x1b[B",
	"right":     "\x1b[C",
	"left":      "\x1b[D",
	"home":      "\x1b[H",
	"end":       "\x1b[F",
	"pageup":    "\x1b[5~",
	"pgup":      "\x1b[5~",
	"pagedown":  "\x1b[6~",
	"pgdn":      "\x1b[6~",
	"insert":    "\x1b[2~",
	"ins":       "\x1b[2~",
	"delete":    "\x1b[3~",
	"del":       "\x1b[3~",
}

// KeyNames returns the recognized bare key names in sorted order.
func KeyNames() []string {
	names := make([]string, 0, len(namedKeys))
	for name := range namedKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveKey expands a bracketed key spec (the text between < and >) to the
// byte sequence a real keyboard would emit. Key names are case sensitive;
// modifier aliases are not. Unrecognized specs come back verbatim with their
// brackets restored, so a typo degrades to literal output instead of an error
// and scripts stay forward compatible with key names this build doesn't know.
func ResolveKey(spec string) string {
	if seq, ok := namedKeys[spec]; ok {
		return seq
	}
	if strings.Contains(spec, "-") {
		return resolveModifierCombo(spec)
	}
	return unresolved(spec)
}

func unresolved(spec string) string {
	return "<" + spec + ">"
}

// modifiers is the parsed modifier set of a combo spec.
type modifiers struct {
	ctrl  bool
	alt   bool
	shift bool
}

// comboRule applies one modifier combination. Rules are tried in order and
// the first one that reports ok wins, so slice order in comboRules encodes
// the resolution precedence. key is the raw base-key text from the spec; base
// is its resolved byte sequence.
type comboRule func(m modifiers, key, base string) (string, bool)

var comboRules = []comboRule{
	ctrlLetter,
	ctrlSpace,
	ctrlPunctuation,
	altPrefix,
	shiftUpper,
	ctrlShiftLetter,
	ctrlAlt,
}

// ctrlLetter: Ctrl with a single ASCII letter maps into the control-code
// range (Ctrl-a = 0x01 .. Ctrl-z = 0x1a).
func ctrlLetter(m modifiers, key, _ string) (string, bool) {
	if !m.ctrl || m.alt || m.shift {
		return "", false
	}
	if ch, ok := singleASCII(key); ok {
		lower := asciiLower(ch)
		if lower >= 'a' && lower <= 'z' {
			return string([]byte{lower - 'a' + 1}), true
		}
	}
	return "", false
}

// ctrlSpace: Ctrl-space sends NUL.
func ctrlSpace(m modifiers, key, _ string) (string, bool) {
	if !m.ctrl || m.alt || m.shift {
		return "", false
	}
	if key == "space" || key == " " {
		return "\x00", true
	}
	return "", false
}

// ctrlPunctuation: the classic Ctrl punctuation codes ([ ] and backslash).
func ctrlPunctuation(m modifiers, key, _ string) (string, bool) {
	if !m.ctrl || m.alt || m.shift {
		return "", false
	}
	switch key {
	case "[":
		return "\x1b", true
	case "]":
		return "\x1d", true
	case `\`:
		return "\x1c", true
	}
	return "", false
}

// altPrefix: Alt (without Ctrl) prepends ESC to whatever the base key sends,
// whether that is one byte or a whole escape sequence. Shift is swallowed
// here, matching how terminals report e.g. Alt-Shift-x.
func altPrefix(m modifiers, _, base string) (string, bool) {
	if !m.alt || m.ctrl {
		return "", false
	}
	return "\x1b" + base, true
}

// shiftUpper: Shift alone uppercases a single-character key.
func shiftUpper(m modifiers, key, _ string) (string, bool) {
	if !m.shift || m.ctrl || m.alt {
		return "", false
	}
	if utf8.RuneCountInString(key) == 1 {
		return strings.ToUpper(key), true
	}
	return "", false
}

// ctrlShiftLetter: Ctrl+Shift with a letter uses the same control-code
// formula as plain Ctrl, computed from the uppercased letter.
func ctrlShiftLetter(m modifiers, key, _ string) (string, bool) {
	if !m.ctrl || !m.shift || m.alt {
		return "", false
	}
	if ch, ok := singleASCII(key); ok {
		upper := asciiUpper(ch)
		if upper >= 'A' && upper <= 'Z' {
			return string([]byte{upper - 'A' + 1}), true
		}
	}
	return "", false
}

// ctrlAlt: Ctrl+Alt sends ESC followed by the Ctrl code for a letter, or ESC
// followed by the base key's raw sequence for multi-character keys.
func ctrlAlt(m modifiers, key, base string) (string, bool) {
	if !m.ctrl || !m.alt {
		return "", false
	}
	if ch, ok := singleASCII(key); ok {
		lower := asciiLower(ch)
		if lower >= 'a' && lower <= 'z' {
			return "\x1b" + string([]byte{lower - 'a' + 1}), true
		}
		return "", false
	}
	return "\x1b" + base, true
}

// resolveModifierCombo handles hyphenated specs like C-c, A-S-F5 or
// Ctrl-Alt-x. The last segment is the base key, everything before it is a
// modifier. Unknown modifier tokens are ignored rather than rejected.
func resolveModifierCombo(spec string) string {
	parts := strings.Split(spec, "-")
	if len(parts) < 2 {
		return unresolved(spec)
	}

	key := parts[len(parts)-1]
	var mods modifiers
	for _, m := range parts[:len(parts)-1] {
		switch strings.ToLower(m) {
		case "c", "ctrl":
			mods.ctrl = true
		case "a", "alt", "m", "meta":
			mods.alt = true
		case "s", "shift":
			mods.shift = true
		}
	}

	// Resolve the base key before applying modifiers: named keys become
	// their sequences, single characters stand for themselves, anything
	// else is unresolvable.
	base, ok := namedKeys[key]
	if !ok {
		if utf8.RuneCountInString(key) != 1 {
			return unresolved(spec)
		}
		base = key
	}

	for _, rule := range comboRules {
		if seq, ok := rule(mods, key, base); ok {
			return seq
		}
	}
	return unresolved(spec)
}

func singleASCII(key string) (byte, bool) {
	if len(key) == 1 && key[0] < utf8.RuneSelf {
		return key[0], true
	}
	return 0, false
}

func asciiLower(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}

func asciiUpper(ch byte) byte {
	if ch >= 'a' && ch <= 'z' {
		return ch - ('a' - 'A')
	}
	return ch
}
