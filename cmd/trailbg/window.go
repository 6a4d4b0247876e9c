package main

import (
	"errors"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/trailbg"
)

// runWindow opens a resizable window and blocks until it closes.
func runWindow(r *trailbg.Renderer, cfg config) error {
	profile, err := trailbg.ParseProfile(cfg.profile)
	if err != nil {
		return err
	}
	tps := ebiten.DefaultTPS
	if cfg.hz > 0 {
		tps = int(cfg.hz)
	}

	g := &windowGame{r: r, profile: profile, hud: cfg.hud, dt: 1 / float64(tps)}
	ebiten.SetWindowTitle("trailbg")
	ebiten.SetWindowSize(cfg.width, cfg.height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(tps)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

type windowGame struct {
	r       *trailbg.Renderer
	profile trailbg.Profile
	hud     bool
	dt      float64

	width, height int
	img           *ebiten.Image
	scratch       []byte
}

func (g *windowGame) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.profile = g.profile.Next()
		g.r.ApplyProfile(g.profile)
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		g.hud = !g.hud
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.r.Clear()
	}

	x, y := ebiten.CursorPosition()
	if x >= 0 && y >= 0 && x < g.width && y < g.height {
		g.r.PointerMove(float64(x), float64(y))
	} else {
		g.r.PointerLeave()
	}
	return g.r.Tick(g.dt)
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	frame := g.r.Frame()
	w, h := frame.Width(), frame.Height()
	if w == 0 || h == 0 {
		return
	}
	if g.img == nil || g.img.Bounds().Dx() != w || g.img.Bounds().Dy() != h {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(w, h)
		g.scratch = make([]byte, len(frame.Data()))
	}

	premultiply(g.scratch, frame.Data())
	g.img.WritePixels(g.scratch)
	screen.DrawImage(g.img, nil)

	if g.hud {
		lines := hudLines(g.r, 0)
		lines = append(lines, printer.Sprintf("%.1f fps  [p] %s  [h] hud  [c] clear", ebiten.ActualFPS(), g.profile))
		ebitenutil.DebugPrint(screen, strings.Join(lines, "\n"))
	}
}

func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		if err := g.r.Resize(outsideWidth, outsideHeight); err == nil {
			g.width, g.height = outsideWidth, outsideHeight
		}
	}
	return outsideWidth, outsideHeight
}

// premultiply converts straight-alpha RGBA to the premultiplied form
// ebiten.Image.WritePixels expects.
func premultiply(dst, src []byte) {
	for i := 0; i+3 < len(src); i += 4 {
		a := uint16(src[i+3])
		dst[i+0] = uint8(uint16(src[i+0]) * a / 255)
		dst[i+1] = uint8(uint16(src[i+1]) * a / 255)
		dst[i+2] = uint8(uint16(src[i+2]) * a / 255)
		dst[i+3] = src[i+3]
	}
}
