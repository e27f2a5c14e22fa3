package cosmac

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/vip/chip8"
)

// Terminal is a Frontend that draws the display in a terminal using
// half-block characters, two machine rows per text row. While it runs,
// output of the standard logger is shown in a pane below the display.
//
// Terminals report key presses but not releases, so each key press
// holds the keypad key down for KeyHold.
type Terminal struct {
	Title   string
	Keys    Keymap        // DefaultKeymap if nil
	KeyHold time.Duration // DefaultKeyHold if zero

	// Screen is used instead of the terminal if set.
	Screen tcell.Screen

	app    *tview.Application
	screen *screenView
	status *tview.TextView
	log    *tview.TextView

	held  map[byte]*time.Timer
	sound bool
}

func (t *Terminal) Run(h Host) error {
	if t.Keys == nil {
		t.Keys = DefaultKeymap
	}
	if t.KeyHold <= 0 {
		t.KeyHold = DefaultKeyHold
	}
	t.held = make(map[byte]*time.Timer)

	scr := t.Screen
	if scr == nil {
		var err error
		if scr, err = tcell.NewScreen(); err != nil {
			return err
		}
	}
	t.app = tview.NewApplication().
		SetScreen(scr)
	t.screen = newScreenView()
	t.screen.SetBorder(true).SetTitle(" " + t.Title + " ")
	t.status = tview.NewTextView().
		SetWrap(false)
	t.status.SetBackgroundColor(tcell.ColorDarkGrey)
	t.status.SetTextColor(tcell.ColorBlack)
	t.log = tview.NewTextView().
		SetMaxLines(1000)
	t.log.SetChangedFunc(func() { t.app.Draw() })

	rows := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.screen, chip8.Height/2+2, 0, false).
		AddItem(t.status, 1, 0, false).
		AddItem(t.log, 0, 1, false)
	cols := tview.NewFlex().
		AddItem(rows, chip8.Width+2, 0, false).
		AddItem(nil, 0, 1, false)
	t.app.SetRoot(cols, true)
	t.app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		return t.handleKey(ev, h)
	})
	t.setStatus()

	prefix, out := log.Prefix(), log.Writer()
	log.SetPrefix("")
	log.SetOutput(t.log)
	defer func() {
		log.SetOutput(out)
		log.SetPrefix(prefix)
	}()

	go func() {
		for {
			select {
			case d := <-h.Frames():
				t.app.QueueUpdateDraw(func() { t.screen.d = d })
			case on := <-h.Sound():
				t.app.QueueUpdateDraw(func() {
					t.sound = on
					t.setStatus()
				})
				if on {
					scr.Beep()
				}
			case <-h.Done():
				t.app.Stop()
				return
			}
		}
	}()

	err := t.app.Run()
	h.Stop()
	for _, tm := range t.held {
		tm.Stop()
	}
	return err
}

// handleKey is the input capture function of the application.
// Escape quits; keys in the keymap are sent to h; all other
// events are passed on to tview.
func (t *Terminal) handleKey(ev *tcell.EventKey, h Host) *tcell.EventKey {
	switch ev.Key() {
	case tcell.KeyEscape:
		t.app.Stop()
		return nil
	case tcell.KeyRune:
		k, ok := t.Keys.Lookup(ev.Rune())
		if !ok {
			return ev
		}
		h.Key(k, true)
		if tm, ok := t.held[k]; ok {
			tm.Reset(t.KeyHold)
		} else {
			t.held[k] = time.AfterFunc(t.KeyHold, func() { h.Key(k, false) })
		}
		return nil
	}
	return ev
}

func (t *Terminal) setStatus() {
	var b strings.Builder
	fmt.Fprintf(&b, " %s  keys %s  esc quits", t.Title, t.Keys)
	if t.sound {
		b.WriteString("  [beep]")
	}
	t.status.SetText(b.String())
}

// screenView is a tview primitive showing a chip8.Display.
type screenView struct {
	*tview.Box
	d chip8.Display
}

func newScreenView() *screenView {
	return &screenView{Box: tview.NewBox()}
}

func (v *screenView) Draw(s tcell.Screen) {
	v.Box.DrawForSubclass(s, v)
	x0, y0, w, h := v.GetInnerRect()
	style := tcell.StyleDefault.
		Foreground(tcell.ColorWhite).
		Background(tcell.ColorBlack)
	for y := 0; y < chip8.Height/2 && y < h; y++ {
		for x := 0; x < chip8.Width && x < w; x++ {
			r := halfBlock(v.d.Pixels[2*y][x], v.d.Pixels[2*y+1][x])
			s.SetContent(x0+x, y0+y, r, nil, style)
		}
	}
}

func halfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}
