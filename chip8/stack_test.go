package chip8

import "testing"

func TestStack(t *testing.T) {
	var s Stack
	for i := 0; i < StackDepth; i++ {
		s.Push(0x200 + uint16(i)*2)
	}
	if g, w := s.String()[:14], "( 200 202 204 "; g != w {
		t.Errorf("String() = %q, want prefix %q", g, w)
	}
	func() {
		defer func() {
			if e := recover(); e != StackOverflow {
				t.Errorf("Push on full stack recovered %v, want %v", e, StackOverflow)
			}
		}()
		s.Push(0x300)
	}()
	if s.Ptr != StackDepth {
		t.Errorf("Ptr = %d after overflow, want %d", s.Ptr, StackDepth)
	}
	for i := StackDepth - 1; i >= 0; i-- {
		if g, w := s.Pop(), 0x200+uint16(i)*2; g != w {
			t.Errorf("Pop() = %.3x, want %.3x", g, w)
		}
	}
	if g := s.String(); g != "( )" {
		t.Errorf("empty String() = %q", g)
	}
	func() {
		defer func() {
			if e := recover(); e != StackUnderflow {
				t.Errorf("Pop on empty stack recovered %v, want %v", e, StackUnderflow)
			}
		}()
		s.Pop()
	}()
}

func TestKeypad(t *testing.T) {
	var k Keypad
	if _, ok := k.First(); ok {
		t.Error("First reports a key on an empty keypad")
	}
	k.Set(0x10, true)
	if k != (Keypad{}) {
		t.Error("Set accepted key 10")
	}
	k.Set(0xe, true)
	k.Set(0x3, true)
	if g, ok := k.First(); !ok || g != 0x3 {
		t.Errorf("First() = %x, %v, want 3, true", g, ok)
	}
	if !k.Pressed(0x13) {
		t.Error("Pressed ignores high nibble")
	}
	k.Set(0x3, false)
	if g, _ := k.First(); g != 0xe {
		t.Errorf("First() = %x, want e", g)
	}
}
