package cosmac

import (
	"errors"
	"strings"
	"unicode"

	"github.com/nf/vip/translate"
)

var f = translate.From

// Keymap maps host keyboard runes to CHIP-8 keypad keys.
type Keymap map[rune]byte

// DefaultKeymap lays the COSMAC VIP keypad
//
//	1 2 3 C
//	4 5 6 D
//	7 8 9 E
//	A 0 B F
//
// over the left-hand block of a QWERTY keyboard.
var DefaultKeymap = mustParseKeymap("x123qweasdzc4rfv")

// ParseKeymap returns a Keymap from a string of sixteen distinct
// characters, the host keys for keypad keys 0 through F in order.
func ParseKeymap(s string) (Keymap, error) {
	rs := []rune(strings.ToLower(s))
	if len(rs) != 16 {
		return nil, errors.New(f("keymap %q has %d keys, want 16", s, len(rs)))
	}
	k := make(Keymap, 16)
	for i, r := range rs {
		if _, dup := k[r]; dup {
			return nil, errors.New(f("keymap %q maps %q twice", s, r))
		}
		k[r] = byte(i)
	}
	return k, nil
}

func mustParseKeymap(s string) Keymap {
	k, err := ParseKeymap(s)
	if err != nil {
		panic(err)
	}
	return k
}

// Lookup returns the keypad key for the host key r, ignoring case.
func (k Keymap) Lookup(r rune) (byte, bool) {
	key, ok := k[unicode.ToLower(r)]
	return key, ok
}

// String returns the keymap in the form accepted by ParseKeymap.
// Keypad keys with no host key are shown as '?'.
func (k Keymap) String() string {
	var rs [16]rune
	for i := range rs {
		rs[i] = '?'
	}
	for r, key := range k {
		if key < 16 {
			rs[key] = r
		}
	}
	return string(rs[:])
}
