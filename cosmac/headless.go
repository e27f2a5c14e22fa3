package cosmac

import (
	"sync"

	"github.com/nf/vip/chip8"
)

// Headless is a Frontend with no presentation. It records the most
// recent frame so that the caller can inspect it after Run returns.
type Headless struct {
	mu     sync.Mutex
	last   chip8.Display
	frames int
	beeps  int
}

func (hl *Headless) Run(h Host) error {
	for {
		select {
		case d := <-h.Frames():
			hl.record(d)
		case on := <-h.Sound():
			if on {
				hl.mu.Lock()
				hl.beeps++
				hl.mu.Unlock()
			}
		case <-h.Done():
			// The final frame is published before Done is closed.
			select {
			case d := <-h.Frames():
				hl.record(d)
			default:
			}
			return nil
		}
	}
}

func (hl *Headless) record(d chip8.Display) {
	hl.mu.Lock()
	defer hl.mu.Unlock()
	hl.last = d
	hl.frames++
}

// Last returns the most recent frame and the number of frames received.
func (hl *Headless) Last() (chip8.Display, int) {
	hl.mu.Lock()
	defer hl.mu.Unlock()
	return hl.last, hl.frames
}

// Beeps returns the number of times the sound timer was started.
func (hl *Headless) Beeps() int {
	hl.mu.Lock()
	defer hl.mu.Unlock()
	return hl.beeps
}
