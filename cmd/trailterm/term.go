package main

import (
	"image/color"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/trailbg"
)

// upperHalf draws the top pixel as foreground and the bottom pixel as
// background.
const upperHalf = '▀'

// term binds a renderer to a tcell screen. Each cell shows two vertically
// stacked pixels.
type term struct {
	screen  tcell.Screen
	r       *trailbg.Renderer
	profile trailbg.Profile
}

func newTerm(screen tcell.Screen, r *trailbg.Renderer, profile trailbg.Profile) *term {
	return &term{screen: screen, r: r, profile: profile}
}

// resize matches the viewport to the screen: one pixel column per cell,
// two pixel rows per cell.
func (t *term) resize() {
	w, h := t.screen.Size()
	if w > 0 && h > 0 {
		_ = t.r.Resize(w, h*2)
	}
}

// handle applies one event. It returns false when the program should quit.
func (t *term) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.resize()
		t.screen.Sync()
	case *tcell.EventMouse:
		x, y := ev.Position()
		t.r.PointerMove(float64(x)+0.5, float64(y*2)+1)
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEsc, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'p':
				t.profile = t.profile.Next()
				t.r.ApplyProfile(t.profile)
			case 'c':
				t.r.Clear()
			}
		}
	}
	return true
}

// pollEvents feeds screen events to handle until quit, then calls done.
func (t *term) pollEvents(done func()) {
	defer done()
	for {
		ev := t.screen.PollEvent()
		if ev == nil || !t.handle(ev) {
			return
		}
	}
}

// present draws a frame into the screen.
func (t *term) present(p *trailbg.Pixmap) error {
	w, h := t.screen.Size()
	for cy := range h {
		for cx := range w {
			style := tcell.StyleDefault.
				Foreground(cellColor(p.Pixel(cx, 2*cy))).
				Background(cellColor(p.Pixel(cx, 2*cy+1)))
			t.screen.SetContent(cx, cy, upperHalf, nil, style)
		}
	}
	t.screen.Show()
	return nil
}

// cellColor maps a pixel to a true-color cell color. Pixels off the plane
// keep the terminal background.
func cellColor(c color.NRGBA) tcell.Color {
	if c.A == 0 {
		return tcell.ColorReset
	}
	a := int32(c.A)
	return tcell.NewRGBColor(int32(c.R)*a/255, int32(c.G)*a/255, int32(c.B)*a/255)
}
