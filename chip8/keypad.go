package chip8

// Keypad holds the down state of the sixteen hexadecimal keys.
type Keypad [16]bool

// Set records key (0-F) as down or up. Values above 0xf are ignored.
func (k *Keypad) Set(key byte, down bool) {
	if key < 16 {
		k[key] = down
	}
}

// Pressed reports whether key is down. Only the low nibble of key is used.
func (k *Keypad) Pressed(key byte) bool {
	return k[key&0xf]
}

// First returns the lowest-numbered key that is down, and reports
// whether any key is down at all.
func (k *Keypad) First() (byte, bool) {
	for i, down := range k {
		if down {
			return byte(i), true
		}
	}
	return 0, false
}
