package main

import (
	"image"
	"image/color"
	"image/draw"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/trailbg"
)

// printer formats HUD and log numbers with digit grouping.
var printer = message.NewPrinter(language.English)

// hudColor is the HUD text color.
var hudColor = color.NRGBA{R: 255, G: 255, B: 255, A: 230}

// hudLines describes the renderer state. elapsed is the wall time the
// frames took; zero omits the rate.
func hudLines(r *trailbg.Renderer, elapsed time.Duration) []string {
	w, h := r.Size()
	lines := []string{
		printer.Sprintf("%dx%d  %s", w, h, r.Accumulator()),
		printer.Sprintf("frame %d  t=%.2f  trails %d", r.Frames(), r.Time(), len(r.Trails())),
	}
	if elapsed > 0 {
		fps := float64(r.Frames()) / elapsed.Seconds()
		lines = append(lines, printer.Sprintf("%.1f fps", fps))
	}
	return lines
}

// drawHUD draws lines in the top-left corner of dst with the 7x13 bitmap
// font.
func drawHUD(dst draw.Image, lines []string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(hudColor),
		Face: face,
	}
	m := face.Metrics()
	y := fixed.I(6) + m.Ascent
	for _, line := range lines {
		d.Dot = fixed.Point26_6{X: fixed.I(6), Y: y}
		d.DrawString(line)
		y += m.Height
	}
}
