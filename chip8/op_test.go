package chip8

import (
	"fmt"
	"testing"
)

func TestDecode(t *testing.T) {
	for _, c := range []struct {
		word uint16
		op   Op
	}{
		{0x0000, HALT},
		{0x00e0, CLS},
		{0x00ee, RET},
		{0x0001, ILL},
		{0x00e1, ILL},
		{0x0abc, ILL},
		{0x1abc, JP},
		{0x2abc, CALL},
		{0x3abc, SE},
		{0x4abc, SNE},
		{0x5ab0, SER},
		{0x5ab1, ILL},
		{0x6abc, LD},
		{0x7abc, ADD},
		{0x8ab0, MOV},
		{0x8ab1, OR},
		{0x8ab2, AND},
		{0x8ab3, XOR},
		{0x8ab4, ADDR},
		{0x8ab5, SUB},
		{0x8ab6, SHR},
		{0x8ab7, SUBN},
		{0x8ab8, ILL},
		{0x8abd, ILL},
		{0x8abe, SHL},
		{0x8abf, ILL},
		{0x9ab0, SNER},
		{0x9abf, ILL},
		{0xaabc, LDI},
		{0xbabc, JPV},
		{0xcabc, RND},
		{0xdabc, DRW},
		{0xea9e, SKP},
		{0xeaa1, SKNP},
		{0xea9f, ILL},
		{0xfa07, LDDT},
		{0xfa0a, WAITK},
		{0xfa15, SETDT},
		{0xfa18, SETST},
		{0xfa1e, ADDI},
		{0xfa29, FONT},
		{0xfa33, BCD},
		{0xfa55, STORE},
		{0xfa65, LOAD},
		{0xfa00, ILL},
		{0xfa75, ILL},
	} {
		if g := Decode(c.word).Op; g != c.op {
			t.Errorf("Decode(%.4x).Op = %v, want %v", c.word, g, c.op)
		}
	}
}

func TestDecodeFields(t *testing.T) {
	in := Decode(0xd12f)
	want := Instr{Op: DRW, Word: 0xd12f, X: 1, Y: 2, N: 0xf, KK: 0x2f, NNN: 0x12f}
	if in != want {
		t.Errorf("Decode(d12f) = %+v, want %+v", in, want)
	}
}

func TestDecodeAll(t *testing.T) {
	seen := map[Op]int{}
	for w := 0; w <= 0xffff; w++ {
		in := Decode(uint16(w))
		if in.Word != uint16(w) {
			t.Fatalf("Decode(%.4x).Word = %.4x", w, in.Word)
		}
		if in.X != byte(w>>8)&0xf || in.Y != byte(w>>4)&0xf || in.NNN != uint16(w)&0xfff {
			t.Fatalf("Decode(%.4x) fields wrong: %+v", w, in)
		}
		seen[in.Op]++
	}
	for op := ILL; op <= LOAD; op++ {
		if seen[op] == 0 {
			t.Errorf("%v is never decoded", op)
		}
	}
	if n := seen[HALT] + seen[CLS] + seen[RET]; n != 3 {
		t.Errorf("group 0 decodes %d words, want 3", n)
	}
}

func TestOpString(t *testing.T) {
	if len(opStrings) != int(LOAD)+1 {
		t.Fatalf("opStrings has %d entries, want %d", len(opStrings), LOAD+1)
	}
	for op, want := range map[Op]string{
		ILL:    "ILL",
		HALT:   "HALT",
		SHL:    "SHL",
		LOAD:   "LOAD",
		Op(99): "Op(99)",
	} {
		if g := op.String(); g != want {
			t.Errorf("Op(%d).String() = %q, want %q", byte(op), g, want)
		}
	}
}

func TestInstrString(t *testing.T) {
	for _, c := range []struct {
		word uint16
		want string
	}{
		{0x0000, "HALT"},
		{0x00e0, "CLS"},
		{0x00ee, "RET"},
		{0x0123, "ILL $0123"},
		{0x1abc, "JP $ABC"},
		{0x2204, "CALL $204"},
		{0xa21e, "LDI $21E"},
		{0xb300, "JPV V0, $300"},
		{0x6392, "LD V3, $92"},
		{0x7f01, "ADD VF, $01"},
		{0xc30f, "RND V3, $0F"},
		{0xd015, "DRW V0, V1, $5"},
		{0x5360, "SER V3, V6"},
		{0x8ab4, "ADDR VA, VB"},
		{0x8abe, "SHL VA, VB"},
		{0xe39e, "SKP V3"},
		{0xf10a, "WAITK V1"},
		{0xf265, "LOAD V2"},
	} {
		t.Run(fmt.Sprintf("%.4x", c.word), func(t *testing.T) {
			if g := Decode(c.word).String(); g != c.want {
				t.Errorf("got %q, want %q", g, c.want)
			}
		})
	}
}

func FuzzDecode(f *testing.F) {
	f.Add(uint16(0x0000))
	f.Add(uint16(0x8abe))
	f.Add(uint16(0xffff))
	f.Fuzz(func(t *testing.T, w uint16) {
		in := Decode(w)
		if in.Op > LOAD {
			t.Fatalf("Decode(%.4x).Op = %d out of range", w, in.Op)
		}
		if in.String() == "" {
			t.Fatalf("Decode(%.4x).String() is empty", w)
		}
	})
}
