package chart

// LineStyle carries stroke parameters. A nil Dash is a solid line.
type LineStyle struct {
	Color string
	Width float64
	Dash  []float64
}

// Canvas is the drawing surface the render pipeline targets. Backends
// (an HTML canvas bridge, an image rasterizer, a test recorder) only
// need these primitives.
type Canvas interface {
	FillRect(x, y, w, h float64, color string)
	StrokeLine(x1, y1, x2, y2 float64, style LineStyle)
	StrokeRect(x, y, w, h float64, style LineStyle)
	FillText(text string, x, y float64, color string)
}
