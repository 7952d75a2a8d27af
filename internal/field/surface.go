package field

import "image/color"

// Surface is the 2D raster a Field draws onto. Coordinates are viewport pixels.
type Surface interface {
	Fill(c color.Color)
	FillRect(x, y, w, h float64, c color.Color)
	FillCircle(cx, cy, r float64, c color.Color)
	StrokeCircle(cx, cy, r, width float64, c color.Color)
	StrokeLine(x0, y0, x1, y1, width float64, c color.Color)
}
