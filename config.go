package main

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/nf/vip/cosmac"
)

// options are the settings of a vip run, from flags and the config file.
type options struct {
	clock   int
	wrap    bool
	keys    cosmac.Keymap
	scale   int
	keyHold time.Duration

	cycles int
	trace  bool
	dev    bool
	cli    bool
	gui    bool
	dump   bool
}

func defaultOptions() options {
	return options{
		clock:   cosmac.DefaultClock,
		keys:    cosmac.DefaultKeymap,
		scale:   cosmac.DefaultScale,
		keyHold: cosmac.DefaultKeyHold,
	}
}

// loadConfig executes the Starlark program src (or the file name, if src
// is nil) and copies the globals it sets into o. The program may use the
// predeclared names KEY_0 through KEY_F for keypad keys.
//
//	clock = 1000
//	wrap = True
//	keys = {"p": KEY_F}
//	scale = 8
//	key_hold_ms = 200
func loadConfig(o *options, name string, src any) error {
	pred := starlark.StringDict{}
	for k := 0; k < 16; k++ {
		pred[fmt.Sprintf("KEY_%X", k)] = starlark.MakeInt(k)
	}
	thread := &starlark.Thread{Name: "config"}
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, name, src, pred)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	for g, v := range globals {
		var err error
		switch g {
		case "clock":
			o.clock, err = positiveInt(v)
		case "scale":
			o.scale, err = positiveInt(v)
		case "key_hold_ms":
			var ms int
			ms, err = positiveInt(v)
			o.keyHold = time.Duration(ms) * time.Millisecond
		case "wrap":
			b, ok := v.(starlark.Bool)
			if !ok {
				err = fmt.Errorf("got %s, want bool", v.Type())
			}
			o.wrap = bool(b)
		case "keys":
			o.keys, err = keymapValue(v)
		default:
			if strings.HasPrefix(g, "_") {
				continue
			}
			err = errors.New("unknown setting")
		}
		if err != nil {
			return fmt.Errorf("config: %s: %v", g, err)
		}
	}
	return nil
}

func positiveInt(v starlark.Value) (int, error) {
	i, ok := v.(starlark.Int)
	if !ok {
		return 0, fmt.Errorf("got %s, want int", v.Type())
	}
	n, ok := i.Int64()
	if !ok || n <= 0 || n > 1<<30 {
		return 0, fmt.Errorf("%v out of range", i)
	}
	return int(n), nil
}

// keymapValue converts a config keys value: either a string accepted by
// cosmac.ParseKeymap, or a dict of single-character host keys to keypad
// keys that overrides entries of cosmac.DefaultKeymap.
func keymapValue(v starlark.Value) (cosmac.Keymap, error) {
	switch v := v.(type) {
	case starlark.String:
		return cosmac.ParseKeymap(string(v))
	case *starlark.Dict:
		k := make(cosmac.Keymap, len(cosmac.DefaultKeymap)+v.Len())
		for r, key := range cosmac.DefaultKeymap {
			k[r] = key
		}
		for _, item := range v.Items() {
			s, ok := item[0].(starlark.String)
			rs := []rune(string(s))
			if !ok || len(rs) != 1 {
				return nil, fmt.Errorf("key %v is not a single character", item[0])
			}
			var key int64 = -1
			if i, ok := item[1].(starlark.Int); ok {
				if n, ok := i.Int64(); ok {
					key = n
				}
			}
			if key < 0 || key > 0xf {
				return nil, fmt.Errorf("%s maps to %v, want KEY_0 to KEY_F", s, item[1])
			}
			k[unicode.ToLower(rs[0])] = byte(key)
		}
		return k, nil
	}
	return nil, fmt.Errorf("got %s, want string or dict", v.Type())
}
