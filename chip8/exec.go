package chip8

import (
	"fmt"
	"time"

	"github.com/nf/vip/translate"
)

var f = translate.From

// Exec executes the instruction at m.PC and then advances the timers.
// It returns a HaltError if the instruction is the halt word 0000, does
// not decode, or overflows or underflows the stack. In those cases the
// machine is left unchanged, so calling Exec again returns the same error.
func (m *Machine) Exec() (err error) {
	var (
		pc   = m.PC
		in   = Decode(m.Word(pc))
		keys = m.Keys // input is sampled once per cycle
	)
	defer func() {
		if e := recover(); e != nil {
			if code, ok := e.(HaltCode); ok {
				err = HaltError{
					Addr:     pc,
					Word:     in.Word,
					HaltCode: code,
				}
			} else {
				panic(e)
			}
		}
	}()

	switch in.Op {
	case HALT:
		panic(Halt)
	case ILL:
		panic(BadOpcode)
	}
	m.exec(in, &keys)
	m.tick()
	return nil
}

func (m *Machine) exec(in Instr, keys *Keypad) {
	var (
		x, y = in.X, in.Y
		vx   = m.V[x]
		vy   = m.V[y]
		next = m.PC + 2
	)
	switch in.Op {
	case CLS:
		m.Display.Clear()
	case RET:
		next = m.Stack.Pop() + 2
	case JP:
		next = in.NNN
	case CALL:
		m.Stack.Push(m.PC)
		next = in.NNN
	case SE:
		if vx == in.KK {
			next += 2
		}
	case SNE:
		if vx != in.KK {
			next += 2
		}
	case SER:
		if vx == vy {
			next += 2
		}
	case SNER:
		if vx != vy {
			next += 2
		}
	case LD:
		m.V[x] = in.KK
	case ADD:
		m.V[x] = vx + in.KK
	case MOV:
		m.V[x] = vy
	case OR:
		m.V[x] = vx | vy
	case AND:
		m.V[x] = vx & vy
	case XOR:
		m.V[x] = vx ^ vy
	case ADDR:
		sum := uint16(vx) + uint16(vy)
		m.V[FlagReg] = flag(sum > 0xff)
		m.V[x] = byte(sum)
	case SUB:
		m.V[FlagReg] = flag(vx > vy)
		m.V[x] = vx - vy
	case SUBN:
		m.V[FlagReg] = flag(vy > vx)
		m.V[x] = vy - vx
	case SHR:
		m.V[FlagReg] = vy & 0x01
		m.V[x] = vy >> 1
	case SHL:
		m.V[FlagReg] = vy >> 7
		m.V[x] = vy << 1
	case LDI:
		m.I = in.NNN
	case JPV:
		next = uint16(m.V[0]) + in.NNN
	case RND:
		m.V[x] = m.rand() & in.KK
	case DRW:
		var buf [15]byte
		collision := m.Display.Draw(vx, vy, m.read(m.I, buf[:in.N]), m.Wrap)
		m.V[FlagReg] = flag(collision)
	case SKP:
		if keys.Pressed(vx) {
			next += 2
		}
	case SKNP:
		if !keys.Pressed(vx) {
			next += 2
		}
	case LDDT:
		m.V[x] = m.Delay
	case WAITK:
		if k, ok := keys.First(); ok {
			m.V[x] = k
		} else {
			next = m.PC
		}
	case SETDT:
		m.Delay = vx
	case SETST:
		m.Sound = vx
	case ADDI:
		m.I += uint16(vx)
	case FONT:
		m.I = FontStart + uint16(vx&0xf)*GlyphSize
	case BCD:
		m.write(m.I, []byte{vx / 100, vx / 10 % 10, vx % 10})
	case STORE:
		m.write(m.I, m.V[:x+1])
		m.I += uint16(x) + 1
	case LOAD:
		m.read(m.I, m.V[:x+1])
		m.I += uint16(x) + 1
	default:
		panic(fmt.Errorf("internal error: %v not implemented", in.Op))
	}
	m.PC = next
}

// read fills b with memory starting at addr, wrapping at the end of
// memory, and returns b.
func (m *Machine) read(addr uint16, b []byte) []byte {
	for i := range b {
		b[i] = m.Mem[(int(addr)+i)%MemSize]
	}
	return b
}

// write copies b to memory starting at addr, wrapping at the end of memory.
func (m *Machine) write(addr uint16, b []byte) {
	for i, v := range b {
		m.Mem[(int(addr)+i)%MemSize] = v
	}
}

func (m *Machine) rand() byte {
	if m.Rand == nil {
		return 0
	}
	return m.Rand()
}

// tick decrements the delay and sound timers once for every TimerInterval
// elapsed since they last counted down.
func (m *Machine) tick() {
	now := m.now()
	if m.lastTick.IsZero() {
		m.lastTick = now
		return
	}
	n := now.Sub(m.lastTick) / TimerInterval
	if n <= 0 {
		return
	}
	m.lastTick = m.lastTick.Add(n * TimerInterval)
	m.Delay = countDown(m.Delay, n)
	m.Sound = countDown(m.Sound, n)
}

func countDown(v byte, n time.Duration) byte {
	if n >= time.Duration(v) {
		return 0
	}
	return v - byte(n)
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// HaltError is returned by Exec when the machine cannot continue.
type HaltError struct {
	Addr uint16 // address of the instruction
	Word uint16 // the instruction word
	HaltCode
}

func (e HaltError) Error() string {
	return f("%v executing %.4x at %.3x", e.HaltCode, e.Word, e.Addr)
}

// HaltCode signifies the type of condition that halted execution.
type HaltCode byte

const (
	Halt           HaltCode = 0x00 // the halt word 0000 was executed
	BadOpcode      HaltCode = 0x01
	StackOverflow  HaltCode = 0x02
	StackUnderflow HaltCode = 0x03
)

func (c HaltCode) String() string {
	if s, ok := map[HaltCode]string{
		Halt:           f("halt"),
		BadOpcode:      f("unknown instruction"),
		StackOverflow:  f("stack overflow"),
		StackUnderflow: f("stack underflow"),
	}[c]; ok {
		return s
	}
	return f("unknown (%.2x)", byte(c))
}
