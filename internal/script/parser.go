package script

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ParseError describes a malformed script line. Line is 1-based and counts
// every source line, including blanks and comments.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Parse turns script text into an ordered command list. Every non-blank line
// is classified on its own after trimming: `@` directives, `#` comments and
// `$` typed text. The first malformed line aborts the whole parse; no partial
// script is returned.
func Parse(text string) (*Script, error) {
	var commands []Command

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch line[0] {
		case '@':
			cmd, err := parseDirective(line[1:])
			if err != nil {
				return nil, &ParseError{Line: i + 1, Reason: err.Error()}
			}
			commands = append(commands, cmd)
		case '#':
			// Comment, contributes nothing.
		case '$':
			commands = append(commands, Type{Text: resolveTypedText(typedBody(line[1:]))})
		default:
			return nil, &ParseError{Line: i + 1, Reason: fmt.Sprintf("unrecognized line %q", line)}
		}
	}

	return &Script{Commands: commands}, nil
}

// parseDirective parses the text after the leading '@'. The keyword carries
// its own value syntax; shell takes the rest of the line, everything else is
// numeric and rejects trailing text.
func parseDirective(rest string) (Command, error) {
	rest = strings.TrimLeft(rest, " \t")

	switch {
	case strings.HasPrefix(rest, "speed:"):
		v, err := parseFloatValue(strings.TrimPrefix(rest, "speed:"))
		if err != nil {
			return nil, fmt.Errorf("speed: %w", err)
		}
		return SetSpeed{Seconds: v}, nil

	case strings.HasPrefix(rest, "jitter:"):
		v, err := parseFloatValue(strings.TrimPrefix(rest, "jitter:"))
		if err != nil {
			return nil, fmt.Errorf("jitter: %w", err)
		}
		return SetJitter{Fraction: v}, nil

	case strings.HasPrefix(rest, "wait:"):
		v, err := parseFloatValue(strings.TrimPrefix(rest, "wait:"))
		if err != nil {
			return nil, fmt.Errorf("wait: %w", err)
		}
		return Wait{Duration: secondsToDuration(v)}, nil

	case strings.HasPrefix(rest, "shell:"):
		return SetShell{Path: strings.TrimSpace(strings.TrimPrefix(rest, "shell:"))}, nil

	case strings.HasPrefix(rest, "size:"):
		cols, rows, err := parseSizeValue(strings.TrimPrefix(rest, "size:"))
		if err != nil {
			return nil, fmt.Errorf("size: %w", err)
		}
		return SetSize{Cols: cols, Rows: rows}, nil
	}

	return nil, fmt.Errorf("unknown directive %q", rest)
}

// parseFloatValue parses a single float and rejects anything after it.
func parseFloatValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	fields := strings.Fields(s)
	if len(fields) > 1 {
		return 0, fmt.Errorf("unexpected text after command: %q", strings.Join(fields[1:], " "))
	}
	if s == "" {
		return 0, fmt.Errorf("missing value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// parseSizeValue parses "<cols>:<rows>", both uint16.
func parseSizeValue(s string) (uint16, uint16, error) {
	s = strings.TrimSpace(s)
	fields := strings.Fields(s)
	if len(fields) > 1 {
		return 0, 0, fmt.Errorf("unexpected text after command: %q", strings.Join(fields[1:], " "))
	}
	cols, rows, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("expected <cols>:<rows>, got %q", s)
	}
	c, err := strconv.ParseUint(cols, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cols %q", cols)
	}
	r, err := strconv.ParseUint(rows, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid rows %q", rows)
	}
	return uint16(c), uint16(r), nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// typedBody strips the optional whitespace between the '$' prefix and the
// typed content.
func typedBody(rest string) string {
	return strings.TrimLeft(rest, " \t")
}

// resolveTypedText scans typed content left to right. `\<` and `\>` unescape
// to literal brackets, `<spec>` expands through ResolveKey, and a '<' with no
// closing '>' on the line is emitted literally. Everything else is copied
// through one whole character at a time.
func resolveTypedText(text string) string {
	var out strings.Builder

	for i := 0; i < len(text); {
		if text[i] == '\\' && i+1 < len(text) && (text[i+1] == '<' || text[i+1] == '>') {
			out.WriteByte(text[i+1])
			i += 2
			continue
		}
		if text[i] == '<' {
			if end := strings.IndexByte(text[i+1:], '>'); end >= 0 {
				out.WriteString(ResolveKey(text[i+1 : i+1+end]))
				i += end + 2
				continue
			}
			out.WriteByte('<')
			i++
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		out.WriteString(text[i : i+size])
		i += size
	}

	return out.String()
}
