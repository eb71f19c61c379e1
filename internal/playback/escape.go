package playback

// escapeSequenceLength reports how many bytes at the start of s belong to one
// terminal escape sequence, so the whole sequence can be written in a single
// atomic send. By the time text reaches the engine it is a flat byte stream;
// any key-token structure the parser saw is gone, so boundaries have to be
// rediscovered here.
//
// ESC [ starts a CSI sequence: numeric parameters and ';' separators followed
// by one terminator byte. ESC O starts a three-byte SS3 sequence. Any other
// byte after ESC makes a generic two-byte escape. Truncated sequences extend
// to the end of the buffer.
func escapeSequenceLength(s string) int {
	if len(s) == 0 || s[0] != 0x1b {
		return 1
	}
	if len(s) == 1 {
		return 1
	}

	switch s[1] {
	case '[':
		i := 2
		for i < len(s) && (isParamByte(s[i])) {
			i++
		}
		if i < len(s) {
			return i + 1
		}
		return len(s)
	case 'O':
		if len(s) > 2 {
			return 3
		}
		return len(s)
	default:
		return 2
	}
}

func isParamByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == ';'
}
