package cosmac

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nf/vip/chip8"
)

type frontendFunc func(h Host) error

func (fn frontendFunc) Run(h Host) error { return fn(h) }

func rom(words ...uint16) []byte {
	b := make([]byte, 0, len(words)*2)
	for _, w := range words {
		b = append(b, byte(w>>8), byte(w))
	}
	return b
}

// settle executes rom on a bare machine until it stops and returns its
// display.
func settle(t *testing.T, rom []byte, keys ...byte) chip8.Display {
	t.Helper()
	m := chip8.NewMachine(rom)
	for _, k := range keys {
		m.Keys.Set(k, true)
	}
	for i := 0; i < 1000; i++ {
		if err := m.Exec(); err != nil {
			return m.Display
		}
	}
	t.Fatal("program did not halt")
	return chip8.Display{}
}

func TestRunnerHalt(t *testing.T) {
	assert := assert.New(t)

	// LD V0, $05; FONT V0; DRW V0, V1, $5; HALT
	prog := rom(0x6005, 0xf029, 0xd015, 0x0000)
	hl := &Headless{}
	r := NewRunner(chip8.NewMachine(prog), Config{Clock: 600})
	assert.NoError(r.Run(hl))

	d, n := hl.Last()
	assert.Positive(n)
	assert.Equal(settle(t, prog).Pixels, d.Pixels)
	assert.NotEqual(chip8.Display{}.Pixels, d.Pixels)
}

func TestRunnerFault(t *testing.T) {
	assert := assert.New(t)

	r := NewRunner(chip8.NewMachine(rom(0x6001, 0x8008)), Config{})
	err := r.Run(&Headless{})
	var h chip8.HaltError
	if assert.ErrorAs(err, &h) {
		assert.Equal(chip8.BadOpcode, h.HaltCode)
		assert.Equal(uint16(0x202), h.Addr)
	}
}

func TestRunnerCycles(t *testing.T) {
	r := NewRunner(chip8.NewMachine(rom(0x1200)), Config{Clock: 6000, Cycles: 250})
	start := time.Now()
	assert.NoError(t, r.Run(&Headless{}))
	// 100 cycles per frame, so the limit is reached in the third frame.
	assert.Less(t, time.Since(start), time.Second)
}

func TestRunnerKey(t *testing.T) {
	// WAITK V2; FONT V2; DRW V0, V0, $5; HALT
	prog := rom(0xf20a, 0xf229, 0xd005, 0x0000)
	hl := &Headless{}
	fe := frontendFunc(func(h Host) error {
		h.Key(0xa, true)
		return hl.Run(h)
	})
	r := NewRunner(chip8.NewMachine(prog), Config{})
	require.NoError(t, r.Run(fe))

	d, _ := hl.Last()
	assert.Equal(t, settle(t, prog, 0xa).Pixels, d.Pixels)
}

func TestRunnerFrontendError(t *testing.T) {
	want := errors.New("window closed")
	r := NewRunner(chip8.NewMachine(rom(0x1200)), Config{})
	err := r.Run(frontendFunc(func(h Host) error { return want }))
	assert.Equal(t, want, err)

	select {
	case <-r.Done():
	default:
		t.Error("runner still running after Run returned")
	}
	// Calls after the runner has stopped must not block.
	r.Key(1, true)
	r.Reset(rom(0x0000))
	r.Stop()
}

func TestRunnerStop(t *testing.T) {
	r := NewRunner(chip8.NewMachine(rom(0x1200)), Config{})
	time.AfterFunc(50*time.Millisecond, r.Stop)
	assert.NoError(t, r.Run(&Headless{}))
}

func TestRunnerReset(t *testing.T) {
	// FONT V0; DRW V0, V0, $5; JP 204
	next := rom(0xf029, 0xd005, 0x1204)
	var r *Runner
	fe := frontendFunc(func(h Host) error {
		timeout := time.After(5 * time.Second)
		// The first program halts immediately; the runner should
		// stay alive waiting for a new one.
		time.Sleep(50 * time.Millisecond)
		select {
		case <-h.Done():
			return errors.New("runner stopped after halt")
		default:
		}
		r.Reset(next)
		for {
			select {
			case d := <-h.Frames():
				if d.At(0, 0) {
					h.Stop()
					return nil
				}
			case <-timeout:
				return errors.New("no frame from new program")
			}
		}
	})
	r = NewRunner(chip8.NewMachine(rom(0x0000)), Config{Dev: true})
	assert.NoError(t, r.Run(fe))
}

func TestRunnerSound(t *testing.T) {
	// LD V0, $08; LD ST, V0; JP 204
	prog := rom(0x6008, 0xf018, 0x1204)
	var got []bool
	fe := frontendFunc(func(h Host) error {
		timeout := time.After(5 * time.Second)
		for len(got) < 2 {
			select {
			case on := <-h.Sound():
				got = append(got, on)
			case <-timeout:
				return errors.New("timed out waiting for sound")
			}
		}
		return nil
	})
	r := NewRunner(chip8.NewMachine(prog), Config{})
	require.NoError(t, r.Run(fe))
	assert.Equal(t, []bool{true, false}, got)
}

func TestHeadlessBeeps(t *testing.T) {
	// LD V0, $02; LD ST, V0; LD V1, $10; LD DT, V1; LD V2, DT; SE V2, $00; JP 208; HALT
	prog := rom(0x6002, 0xf018, 0x6110, 0xf115, 0xf207, 0x3200, 0x1208, 0x0000)
	hl := &Headless{}
	r := NewRunner(chip8.NewMachine(prog), Config{})
	require.NoError(t, r.Run(hl))
	assert.Equal(t, 1, hl.Beeps())
}
