package chip8

import "strings"

const (
	Width  = 64 // display columns
	Height = 32 // display rows
)

// Display is the monochrome frame buffer of a CHIP-8 machine.
type Display struct {
	Pixels [Height][Width]bool

	ops int // total count of clear and draw operations
}

// Changed returns a counter that advances every time the display is
// cleared or drawn to. Hosts compare it between frames to skip redraws.
func (d *Display) Changed() int { return d.ops }

// At reports whether the pixel at column x, row y is lit.
// Coordinates outside the display report false.
func (d *Display) At(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return d.Pixels[y][x]
}

// Clear turns every pixel off.
func (d *Display) Clear() {
	d.Pixels = [Height][Width]bool{}
	d.ops++
}

// Draw XORs sprite onto the display with its top-left corner at (x, y).
// Each byte of sprite is one row of eight pixels, most significant bit
// leftmost. It reports whether any lit pixel was turned off.
//
// If wrap is false, an origin outside the display draws nothing and
// pixels past the right or bottom edge are clipped. If wrap is true,
// the origin and all pixels wrap around both edges.
func (d *Display) Draw(x, y byte, sprite []byte, wrap bool) (collision bool) {
	d.ops++
	ox, oy := int(x), int(y)
	if wrap {
		ox, oy = ox%Width, oy%Height
	} else if ox >= Width || oy >= Height {
		return false
	}
	for row, bits := range sprite {
		py := oy + row
		if py >= Height {
			if !wrap {
				break
			}
			py %= Height
		}
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := ox + col
			if px >= Width {
				if !wrap {
					break
				}
				px %= Width
			}
			p := &d.Pixels[py][px]
			if *p {
				collision = true
			}
			*p = !*p
		}
	}
	return collision
}

// String renders the display as Height lines of Width characters,
// 'x' for a lit pixel and ' ' for an unlit one.
func (d Display) String() string {
	var b strings.Builder
	b.Grow(Height * (Width + 1))
	for _, row := range d.Pixels {
		for _, px := range row {
			if px {
				b.WriteByte('x')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
