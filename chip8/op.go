package chip8

import (
	"fmt"
	"strings"
)

// Op represents a decoded CHIP-8 operation.
type Op byte

const (
	ILL   Op = iota // unrecognised instruction word
	HALT            // 0000
	CLS             // 00E0
	RET             // 00EE
	JP              // 1nnn
	CALL            // 2nnn
	SE              // 3xkk
	SNE             // 4xkk
	SER             // 5xy0
	LD              // 6xkk
	ADD             // 7xkk
	MOV             // 8xy0
	OR              // 8xy1
	AND             // 8xy2
	XOR             // 8xy3
	ADDR            // 8xy4
	SUB             // 8xy5
	SHR             // 8xy6
	SUBN            // 8xy7
	SHL             // 8xyE
	SNER            // 9xy0
	LDI             // Annn
	JPV             // Bnnn
	RND             // Cxkk
	DRW             // Dxyn
	SKP             // Ex9E
	SKNP            // ExA1
	LDDT            // Fx07
	WAITK           // Fx0A
	SETDT           // Fx15
	SETST           // Fx18
	ADDI            // Fx1E
	FONT            // Fx29
	BCD             // Fx33
	STORE           // Fx55
	LOAD            // Fx65
)

func (o Op) String() string {
	if int(o) < len(opStrings) {
		return opStrings[o]
	}
	return fmt.Sprintf("Op(%d)", byte(o))
}

var opStrings = strings.Fields(`
	ILL
	HALT
	CLS
	RET
	JP
	CALL
	SE
	SNE
	SER
	LD
	ADD
	MOV
	OR
	AND
	XOR
	ADDR
	SUB
	SHR
	SUBN
	SHL
	SNER
	LDI
	JPV
	RND
	DRW
	SKP
	SKNP
	LDDT
	WAITK
	SETDT
	SETST
	ADDI
	FONT
	BCD
	STORE
	LOAD
`)

// Instr is a decoded instruction word with its operand fields extracted.
// Fields that the operation does not use are still populated from Word.
type Instr struct {
	Op   Op
	Word uint16
	X, Y byte   // register nibbles, bits 11-8 and 7-4
	N    byte   // low nibble
	KK   byte   // low byte
	NNN  uint16 // low 12 bits
}

// Decode splits an instruction word into its operation and operand fields.
// It has no side effects. Words that do not encode a known instruction
// decode to ILL.
func Decode(w uint16) Instr {
	in := Instr{
		Word: w,
		X:    byte(w>>8) & 0xf,
		Y:    byte(w>>4) & 0xf,
		N:    byte(w) & 0xf,
		KK:   byte(w),
		NNN:  w & 0xfff,
	}
	if sub := secondary[w>>12]; sub != nil {
		in.Op = sub(w)
	} else {
		in.Op = primary[w>>12]
	}
	return in
}

// primary maps the high nibble of a word to its operation, for the groups
// with a single operation.
var primary = [16]Op{
	0x1: JP,
	0x2: CALL,
	0x3: SE,
	0x4: SNE,
	0x6: LD,
	0x7: ADD,
	0xa: LDI,
	0xb: JPV,
	0xc: RND,
	0xd: DRW,
}

// secondary resolves the groups whose operation depends on more than the
// high nibble.
var secondary = [16]func(w uint16) Op{
	0x0: func(w uint16) Op {
		switch w {
		case 0x0000:
			return HALT
		case 0x00e0:
			return CLS
		case 0x00ee:
			return RET
		}
		return ILL
	},
	0x5: func(w uint16) Op { return lowNibbleZero(w, SER) },
	0x8: func(w uint16) Op { return group8[w&0xf] },
	0x9: func(w uint16) Op { return lowNibbleZero(w, SNER) },
	0xe: func(w uint16) Op { return groupE[byte(w)] },
	0xf: func(w uint16) Op { return groupF[byte(w)] },
}

func lowNibbleZero(w uint16, op Op) Op {
	if w&0xf != 0 {
		return ILL
	}
	return op
}

var group8 = [16]Op{
	0x0: MOV,
	0x1: OR,
	0x2: AND,
	0x3: XOR,
	0x4: ADDR,
	0x5: SUB,
	0x6: SHR,
	0x7: SUBN,
	0xe: SHL,
}

var groupE = [256]Op{
	0x9e: SKP,
	0xa1: SKNP,
}

var groupF = [256]Op{
	0x07: LDDT,
	0x0a: WAITK,
	0x15: SETDT,
	0x18: SETST,
	0x1e: ADDI,
	0x29: FONT,
	0x33: BCD,
	0x55: STORE,
	0x65: LOAD,
}

// String returns the instruction in assembly syntax, for example
// "LD V3, $92" or "DRW V0, V1, $5".
func (in Instr) String() string {
	switch in.Op {
	case ILL:
		return fmt.Sprintf("ILL $%04X", in.Word)
	case HALT, CLS, RET:
		return in.Op.String()
	case JP, CALL, LDI:
		return fmt.Sprintf("%v $%03X", in.Op, in.NNN)
	case JPV:
		return fmt.Sprintf("JPV V0, $%03X", in.NNN)
	case SE, SNE, LD, ADD, RND:
		return fmt.Sprintf("%v V%X, $%02X", in.Op, in.X, in.KK)
	case DRW:
		return fmt.Sprintf("DRW V%X, V%X, $%X", in.X, in.Y, in.N)
	case SER, SNER, MOV, OR, AND, XOR, ADDR, SUB, SHR, SUBN, SHL:
		return fmt.Sprintf("%v V%X, V%X", in.Op, in.X, in.Y)
	default:
		return fmt.Sprintf("%v V%X", in.Op, in.X)
	}
}
