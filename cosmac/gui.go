package cosmac

import (
	"image"
	"image/color"
	"log"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/colornames"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/nf/vip/chip8"
)

// Window is a Frontend that shows the display in a desktop window.
// It must be run on the main goroutine.
type Window struct {
	Title string
	Keys  Keymap // DefaultKeymap if nil
	Scale int    // initial window pixels per machine pixel; DefaultScale if zero
}

// palette holds the unlit and lit pixel colors. The lit color changes
// while the sound timer is running.
type palette struct {
	off, on color.RGBA
}

var (
	quiet   = palette{off: colornames.Black, on: colornames.Whitesmoke}
	beeping = palette{off: colornames.Black, on: colornames.Orange}
)

func (wf *Window) Run(h Host) error {
	if wf.Keys == nil {
		wf.Keys = DefaultKeymap
	}
	if wf.Scale <= 0 {
		wf.Scale = DefaultScale
	}
	var runErr error
	driver.Main(func(s screen.Screen) {
		w, err := s.NewWindow(&screen.NewWindowOptions{
			Title:  wf.Title,
			Width:  chip8.Width * wf.Scale,
			Height: chip8.Height * wf.Scale,
		})
		if err != nil {
			runErr = err
			return
		}
		defer w.Release()

		type frame struct{ d chip8.Display }
		type sound struct{ on bool }
		type quit struct{}
		go func() {
			for {
				select {
				case d := <-h.Frames():
					w.Send(frame{d})
				case on := <-h.Sound():
					w.Send(sound{on})
				case <-h.Done():
					w.Send(quit{})
					return
				}
			}
		}()

		var (
			sz  size.Event
			buf screen.Buffer
			d   chip8.Display
			pal = quiet
		)
		defer func() {
			if buf != nil {
				buf.Release()
			}
		}()
		redraw := func() {
			if buf == nil {
				return
			}
			render(buf.RGBA(), &d, pal)
			w.Upload(image.Point{}, buf, buf.Bounds())
			w.Publish()
		}
		for {
			switch e := w.NextEvent().(type) {
			case quit:
				return

			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					h.Stop()
					return
				}

			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					h.Stop()
					return
				}
				if buf != nil {
					buf.Release()
					buf = nil
				}
				if buf, err = s.NewBuffer(sz.Size()); err != nil {
					runErr = err
					return
				}

			case paint.Event:
				redraw()

			case frame:
				d = e.d
				redraw()

			case sound:
				pal = quiet
				if e.on {
					pal = beeping
				}
				redraw()

			case key.Event:
				if e.Code == key.CodeEscape {
					h.Stop()
					return
				}
				k, ok := wf.Keys.Lookup(keyRune(e))
				if !ok || e.Direction == key.DirNone {
					break
				}
				h.Key(k, e.Direction == key.DirPress)

			case error:
				log.Print(e)
			}
		}
	})
	return runErr
}

// keyRune returns the rune for a key event. Some drivers omit the rune
// on release, so letters and digits fall back to the key code.
func keyRune(e key.Event) rune {
	if e.Rune > 0 {
		return e.Rune
	}
	switch c := e.Code; {
	case c >= key.CodeA && c <= key.CodeZ:
		return 'a' + rune(c-key.CodeA)
	case c >= key.Code1 && c <= key.Code9:
		return '1' + rune(c-key.Code1)
	case c == key.Code0:
		return '0'
	}
	return -1
}

// render scales d onto dst using nearest-neighbor sampling.
func render(dst *image.RGBA, d *chip8.Display, pal palette) {
	src := image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height))
	for y, row := range d.Pixels {
		for x, on := range row {
			c := pal.off
			if on {
				c = pal.on
			}
			src.SetRGBA(x, y, c)
		}
	}
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
}
