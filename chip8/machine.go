// Package chip8 provides an implementation of a CHIP-8 virtual machine,
// called Machine, that can be used to execute CHIP-8 programs.
package chip8

import (
	"math/rand"
	"time"
)

const (
	MemSize      = 0x1000 // bytes of addressable memory
	ProgramStart = 0x200  // load address and entry point of a program
	FontStart    = 0x000  // address of the built-in hexadecimal font
	GlyphSize    = 5      // bytes per font glyph

	FlagReg = 0xf // index of VF, the carry/borrow/collision register

	// TimerInterval is the real-time period of the delay and sound timers.
	TimerInterval = time.Second / 60
)

// Machine is an implementation of a CHIP-8 CPU together with its memory,
// timers, keypad and display.
type Machine struct {
	Mem     [MemSize]byte
	V       [16]byte
	I       uint16
	PC      uint16
	Stack   Stack
	Delay   byte
	Sound   byte
	Keys    Keypad
	Display Display

	// Wrap selects the sprite edge policy. When false, sprite pixels that
	// fall outside the display are clipped; when true they wrap around.
	Wrap bool

	// Now reports the current time. It is read once per Exec to drive
	// the timers. NewMachine sets it to time.Now.
	Now func() time.Time

	// Rand returns a uniformly random byte for the RND instruction.
	// NewMachine sets it to a math/rand/v2 source.
	Rand func() byte

	lastTick time.Time
}

// NewMachine returns a CHIP-8 machine with the built-in font loaded at
// FontStart and the given rom loaded at ProgramStart.
// Bytes of rom that do not fit in memory are ignored.
func NewMachine(rom []byte) *Machine {
	m := &Machine{
		Now:  time.Now,
		Rand: func() byte { return byte(rand.Intn(0x100)) },
	}
	m.Load(rom)
	return m
}

// Load resets the machine state and loads the given rom at ProgramStart.
// Wrap, Now and Rand are preserved.
func (m *Machine) Load(rom []byte) {
	m.Mem = [MemSize]byte{}
	copy(m.Mem[FontStart:], Font[:])
	copy(m.Mem[ProgramStart:], rom)
	m.V = [16]byte{}
	m.I = ProgramStart
	m.PC = ProgramStart
	m.Stack = Stack{}
	m.Delay, m.Sound = 0, 0
	m.Keys = Keypad{}
	m.Display.Clear()
	m.lastTick = m.now()
}

func (m *Machine) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// Word returns the big-endian instruction word at addr.
func (m *Machine) Word(addr uint16) uint16 {
	return short(m.Mem[addr%MemSize], m.Mem[(addr+1)%MemSize])
}

// Font holds the sixteen 4x5 hexadecimal digit glyphs, 0 through F.
var Font = [16 * GlyphSize]byte{
	0xf0, 0x90, 0x90, 0x90, 0xf0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xf0, 0x10, 0xf0, 0x80, 0xf0, // 2
	0xf0, 0x10, 0xf0, 0x10, 0xf0, // 3
	0x90, 0x90, 0xf0, 0x10, 0x10, // 4
	0xf0, 0x80, 0xf0, 0x10, 0xf0, // 5
	0xf0, 0x80, 0xf0, 0x90, 0xf0, // 6
	0xf0, 0x10, 0x20, 0x40, 0x40, // 7
	0xf0, 0x90, 0xf0, 0x90, 0xf0, // 8
	0xf0, 0x90, 0xf0, 0x10, 0xf0, // 9
	0xf0, 0x90, 0xf0, 0x90, 0x90, // A
	0xe0, 0x90, 0xe0, 0x90, 0xe0, // B
	0xf0, 0x80, 0x80, 0x80, 0xf0, // C
	0xe0, 0x90, 0x90, 0x90, 0xe0, // D
	0xf0, 0x80, 0xf0, 0x80, 0xf0, // E
	0xf0, 0x80, 0xf0, 0x80, 0x80, // F
}

func short(hi, lo byte) uint16 {
	return uint16(hi)<<8 + uint16(lo)
}
