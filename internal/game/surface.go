package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Surface draws onto an ebiten image with the vector package.
type Surface struct {
	Image *ebiten.Image
}

func (s Surface) Fill(c color.Color) { s.Image.Fill(c) }

func (s Surface) FillRect(x, y, w, h float64, c color.Color) {
	vector.DrawFilledRect(s.Image, float32(x), float32(y), float32(w), float32(h), c, false)
}

func (s Surface) FillCircle(cx, cy, r float64, c color.Color) {
	vector.DrawFilledCircle(s.Image, float32(cx), float32(cy), float32(r), c, true)
}

func (s Surface) StrokeCircle(cx, cy, r, width float64, c color.Color) {
	vector.StrokeCircle(s.Image, float32(cx), float32(cy), float32(r), float32(width), c, true)
}

func (s Surface) StrokeLine(x0, y0, x1, y1, width float64, c color.Color) {
	vector.StrokeLine(s.Image, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), c, true)
}
