package chart

import (
	"math"

	"github.com/aynu/chartcore/internal/domain"
)

// Projection is the single bidirectional mapping between domain
// coordinates (candle index / time, price) and pixel space for one
// frame. Every path that crosses the domain/pixel boundary (rendering,
// pointer commit, hit-testing) goes through the same instance.
type Projection struct {
	// Visible index range [StartIdx, EndIdx). StartIdx may be negative
	// when the viewport is scrolled past the start of history.
	StartIdx int
	EndIdx   int

	CandleWidth float64
	Gap         float64

	MinPrice float64
	MaxPrice float64

	PlotW float64
	PlotH float64
}

// NewProjection computes the visible index range from the viewport and
// the price domain from the visible slice, with Bollinger expansion
// and a degenerate-range guard.
func NewProjection(candles []domain.Candle, vp domain.ViewportState, plotW, plotH float64, bollingerOn bool) Projection {
	cw := vp.CandleWidth
	if cw <= 0 {
		cw = DefaultCandleWidth
	}
	gap := cw * 0.2

	maxVisible := int(math.Ceil(plotW / (cw + gap)))
	endIdx := len(candles) - int(math.Floor(vp.Offset))
	if endIdx > len(candles) {
		endIdx = len(candles)
	}
	if endIdx < 0 {
		endIdx = 0
	}
	startIdx := endIdx - maxVisible

	lo, hi := math.Inf(1), math.Inf(-1)
	sliceStart := startIdx
	if sliceStart < 0 {
		sliceStart = 0
	}
	for _, c := range candles[sliceStart:endIdx] {
		if c.Low < lo {
			lo = c.Low
		}
		if c.High > hi {
			hi = c.High
		}
	}
	if math.IsInf(lo, 1) {
		// Nothing visible: anchor around the latest candle if any.
		if len(candles) > 0 {
			last := candles[len(candles)-1]
			lo, hi = last.Low*0.9, last.High*1.1
		} else {
			lo, hi = 0, 100
		}
	}
	if bollingerOn {
		lo *= 0.99
		hi *= 1.01
	}
	if lo == hi {
		lo *= 0.95
		hi *= 1.05
	}
	if lo == hi {
		// Both zero: any flat range needs a nonzero span to scale.
		hi = lo + 1
	}

	return Projection{
		StartIdx:    startIdx,
		EndIdx:      endIdx,
		CandleWidth: cw,
		Gap:         gap,
		MinPrice:    lo,
		MaxPrice:    hi,
		PlotW:       plotW,
		PlotH:       plotH,
	}
}

func (p Projection) priceScale() float64 { return p.PlotH / (p.MaxPrice - p.MinPrice) }

// Slot is the horizontal span one candle occupies.
func (p Projection) Slot() float64 { return p.CandleWidth + p.Gap }

// XForIndex returns the left edge of candle i.
func (p Projection) XForIndex(i int) float64 {
	return float64(i-p.StartIdx) * p.Slot()
}

// CenterX returns the wick x of candle i.
func (p Projection) CenterX(i int) float64 {
	return p.XForIndex(i) + p.CandleWidth/2
}

func (p Projection) YForPrice(price float64) float64 {
	return p.PlotH - (price-p.MinPrice)*p.priceScale()
}

// PriceForY is the inverse linear scale of YForPrice.
func (p Projection) PriceForY(y float64) float64 {
	return p.MinPrice + (p.PlotH-y)/p.priceScale()
}

// IndexForX maps a pixel x to the nearest candle index, unclamped.
func (p Projection) IndexForX(x float64) int {
	rel := (x - p.CandleWidth/2) / p.Slot()
	return p.StartIdx + int(math.Round(rel))
}

// TimeForX maps a pixel x to the bucket time of the nearest candle,
// clamped into the series.
func (p Projection) TimeForX(x float64, candles []domain.Candle) int64 {
	if len(candles) == 0 {
		return 0
	}
	idx := p.IndexForX(x)
	if idx < 0 {
		idx = 0
	}
	if idx > len(candles)-1 {
		idx = len(candles) - 1
	}
	return candles[idx].Time
}

// XForTime maps a bucket time back to its wick x. Times beyond the
// series project just past the live edge.
func (p Projection) XForTime(t int64, candles []domain.Candle) float64 {
	idx := -1
	for i, c := range candles {
		if c.Time >= t {
			idx = i
			break
		}
	}
	if idx == -1 {
		if len(candles) > 0 && t > candles[len(candles)-1].Time {
			idx = len(candles) + 1
		} else {
			idx = 0
		}
	}
	return p.CenterX(idx)
}
