// Package cosmac hosts a chip8.Machine. It paces execution in real time
// and connects the machine's display, keypad and sound timer to a
// frontend: a terminal, a desktop window, or nothing at all.
package cosmac

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/nf/vip/chip8"
)

const (
	DefaultClock   = 700 // instructions per second
	DefaultKeyHold = 150 * time.Millisecond
	DefaultScale   = 10

	frameRate     = 60
	frameInterval = time.Second / frameRate
)

// Config controls how a Runner drives its machine.
type Config struct {
	Clock  int  // instructions per second; DefaultClock if zero
	Cycles int  // stop after this many instructions; unlimited if zero
	Trace  bool // log every instruction before it executes

	// Dev keeps the runner alive after the machine halts,
	// waiting for a new program to be supplied by Reset.
	Dev bool
}

// Host is the runner as seen by a frontend.
// All of its methods are safe for concurrent use.
type Host interface {
	// Frames delivers a copy of the display each time it changes.
	// Only the most recent undelivered frame is kept.
	Frames() <-chan chip8.Display
	// Sound delivers true when the sound timer starts
	// and false when it stops.
	Sound() <-chan bool
	// Key reports a keypad key (0-F) going down or up.
	Key(k byte, down bool)
	// Done is closed when the runner has stopped.
	Done() <-chan struct{}
	// Stop asks the runner to stop.
	Stop()
}

// Frontend presents a running machine to the user.
// Run blocks until the user quits or h.Done is closed.
type Frontend interface {
	Run(h Host) error
}

// Runner executes a chip8.Machine on its own goroutine.
type Runner struct {
	cfg Config
	m   *chip8.Machine

	frames    chan chip8.Display
	sound     chan bool
	keys      chan keyEvent
	reset     chan []byte
	resetDone chan bool
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}

	err     error // set before done is closed
	recent  backlog
	changed int // m.Display.Changed at the last published frame
	beeping bool
	budget  int // clock cycles carried over between frames
	cycles  int
}

type keyEvent struct {
	key  byte
	down bool
}

// NewRunner returns a runner for m. The runner takes ownership of m:
// the caller must not touch it again until Run has returned.
func NewRunner(m *chip8.Machine, cfg Config) *Runner {
	if cfg.Clock <= 0 {
		cfg.Clock = DefaultClock
	}
	return &Runner{
		cfg:       cfg,
		m:         m,
		frames:    make(chan chip8.Display, 1),
		sound:     make(chan bool, 1),
		keys:      make(chan keyEvent, 64),
		reset:     make(chan []byte),
		resetDone: make(chan bool),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		changed:   -1,
	}
}

// Run starts the machine and runs fe on the calling goroutine until
// either of them stops. It returns the frontend's error, if any, and
// otherwise the error that stopped the machine. Executing the halt word
// is not an error.
func (r *Runner) Run(fe Frontend) error {
	go r.loop()
	err := fe.Run(r)
	r.Stop()
	<-r.done
	if err != nil {
		return err
	}
	return r.err
}

// Reset replaces the running program with rom, as if the machine had
// been powered on with it. It waits until the new program is loaded.
func (r *Runner) Reset(rom []byte) {
	select {
	case r.reset <- rom:
		<-r.resetDone
	case <-r.done:
	}
}

func (r *Runner) Frames() <-chan chip8.Display { return r.frames }
func (r *Runner) Sound() <-chan bool           { return r.sound }
func (r *Runner) Done() <-chan struct{}        { return r.done }

func (r *Runner) Key(k byte, down bool) {
	select {
	case r.keys <- keyEvent{k, down}:
	case <-r.done:
	}
}

func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Runner) loop() {
	defer close(r.done)

	t := time.NewTicker(frameInterval)
	defer t.Stop()

	running := true
	for {
		select {
		case <-r.stop:
			return
		case rom := <-r.reset:
			r.m.Load(rom)
			r.changed, r.budget, r.cycles = -1, 0, 0
			r.recent.Reset()
			running = true
			r.resetDone <- true
		case ev := <-r.keys:
			r.m.Keys.Set(ev.key, ev.down)
		case <-t.C:
			if !running {
				break
			}
			err := r.frame()
			r.publish()
			if err == nil {
				break
			}
			if errors.Is(err, errCycles) {
				return
			}
			if h, ok := err.(chip8.HaltError); ok && h.HaltCode == chip8.Halt {
				log.Printf("halted at %.3x", h.Addr)
				err = nil
			} else {
				if !r.cfg.Trace {
					log.Print("recent instructions:")
					r.recent.Emit()
				}
				log.Print(err)
			}
			if r.cfg.Dev {
				running = false
				break
			}
			r.err = err
			return
		}
	}
}

var errCycles = errors.New("cycle limit reached")

// frame executes one frame's worth of instructions.
func (r *Runner) frame() error {
	r.budget += r.cfg.Clock
	n := r.budget / frameRate
	r.budget %= frameRate
	for i := 0; i < n; i++ {
		r.drainKeys()
		w := r.m.Word(r.m.PC)
		if r.cfg.Trace {
			log.Printf("%.3x  %.4x  %v", r.m.PC, w, chip8.Decode(w))
		} else {
			r.recent.LazyPrintf("%.3x  %.4x  %v", r.m.PC, w, chip8.Decode(w))
		}
		if err := r.m.Exec(); err != nil {
			return err
		}
		r.cycles++
		if r.cfg.Cycles > 0 && r.cycles >= r.cfg.Cycles {
			return errCycles
		}
	}
	return nil
}

func (r *Runner) drainKeys() {
	for {
		select {
		case ev := <-r.keys:
			r.m.Keys.Set(ev.key, ev.down)
		default:
			return
		}
	}
}

// publish hands the display and sound state to the frontend if they
// changed since the last call. Stale values still in the channels are
// replaced.
func (r *Runner) publish() {
	if c := r.m.Display.Changed(); c != r.changed {
		r.changed = c
		select {
		case <-r.frames:
		default:
		}
		r.frames <- r.m.Display
	}
	if on := r.m.Sound > 0; on != r.beeping {
		r.beeping = on
		select {
		case <-r.sound:
		default:
		}
		r.sound <- on
	}
}
