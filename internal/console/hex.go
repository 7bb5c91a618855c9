package console

// hexAccumulator pairs hex digits typed in HexInput mode into bytes.
type hexAccumulator struct {
	high    byte
	pending bool
}

// feed adds one digit. It returns the completed byte on every second digit.
func (h *hexAccumulator) feed(digit byte) (byte, bool) {
	if !h.pending {
		h.high = digit
		h.pending = true
		return 0, false
	}
	h.pending = false
	return h.high<<4 | digit, true
}

// reset discards a half-typed byte and reports whether there was one.
func (h *hexAccumulator) reset() bool {
	dropped := h.pending
	h.pending = false
	h.high = 0
	return dropped
}

func hexValue(r rune) (byte, bool) {
	switch {
	case r >= '0' && r <= '9':
		return byte(r - '0'), true
	case r >= 'a' && r <= 'f':
		return byte(r-'a') + 10, true
	case r >= 'A' && r <= 'F':
		return byte(r-'A') + 10, true
	}
	return 0, false
}
