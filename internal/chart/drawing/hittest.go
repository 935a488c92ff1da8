package drawing

import (
	"math"

	"github.com/aynu/chartcore/internal/chart"
	"github.com/aynu/chartcore/internal/domain"
)

// HitTest returns the id of the topmost drawing under (x, y), or "".
// Line types match within HitTolerance of the segment; rectangles
// match on bounding-box containment. Rays hit-test on their stored
// segment, not the rendered extension.
func HitTest(x, y float64, drawings []domain.DrawingObject, p chart.Projection, candles []domain.Candle) string {
	found := ""
	for _, d := range drawings {
		x1 := p.XForTime(d.P1.Time, candles)
		y1 := p.YForPrice(d.P1.Price)
		x2 := p.XForTime(d.P2.Time, candles)
		y2 := p.YForPrice(d.P2.Price)
		if d.Type == domain.DrawHorizontal {
			// The rendered line spans the whole plot, so the hit segment
			// does too, regardless of where P1 sits in the series.
			x1, x2, y2 = 0, p.PlotW, y1
		}

		if d.Type == domain.DrawRect {
			left, right := math.Min(x1, x2), math.Max(x1, x2)
			top, bottom := math.Min(y1, y2), math.Max(y1, y2)
			if x >= left && x <= right && y >= top && y <= bottom {
				found = d.ID
			}
			continue
		}
		if distanceToSegment(x, y, x1, y1, x2, y2) < HitTolerance {
			found = d.ID
		}
	}
	return found
}

// distanceToSegment is the distance from (px, py) to the closest point
// on the segment (x1, y1)-(x2, y2).
func distanceToSegment(px, py, x1, y1, x2, y2 float64) float64 {
	a := px - x1
	b := py - y1
	cx := x2 - x1
	cy := y2 - y1

	dot := a*cx + b*cy
	lenSq := cx*cx + cy*cy
	param := -1.0
	if lenSq != 0 {
		param = dot / lenSq
	}

	var xx, yy float64
	switch {
	case param < 0:
		xx, yy = x1, y1
	case param > 1:
		xx, yy = x2, y2
	default:
		xx, yy = x1+param*cx, y1+param*cy
	}
	dx := px - xx
	dy := py - yy
	return math.Sqrt(dx*dx + dy*dy)
}
