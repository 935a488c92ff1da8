package chart

import (
	"fmt"
	"math"
	"time"

	"github.com/aynu/chartcore/internal/domain"
	"github.com/aynu/chartcore/internal/indicator"
)

const (
	priceGutter = 60
	timeGutter  = 25
	gridRows    = 6
	// Vertical grid lines are spaced about this many pixels apart,
	// snapped to candle boundaries.
	gridPixelInterval = 100
	volumeLaneRatio   = 0.15
	panelRatio        = 0.15
	minMainRatio      = 0.3
)

// Panel identifies an indicator sub-panel stacked below the main
// price panel.
type Panel string

const (
	PanelRSI       Panel = "rsi"
	PanelMACD      Panel = "macd"
	PanelStoch     Panel = "stoch"
	PanelComposite Panel = "composite"
)

type Theme struct {
	Background string
	Up         string
	Down       string
	UpFaint    string
	DownFaint  string
	Grid       string
	Text       string
	Crosshair  string
	Overlay    string
	Highlight  string
}

var DefaultTheme = Theme{
	Background: "#020309",
	Up:         "#2ebd85",
	Down:       "#f6465d",
	UpFaint:    "rgba(46, 189, 133, 0.15)",
	DownFaint:  "rgba(246, 70, 93, 0.15)",
	Grid:       "#1e222d",
	Text:       "#848e9c",
	Crosshair:  "#ffffff",
	Overlay:    "#37c5ff",
	Highlight:  "#ffffff",
}

// Pixel is a position in canvas space.
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PendingDrawing is the live, not-yet-committed gesture preview; its
// endpoints are pixels because the gesture has not been inverse
// projected yet.
type PendingDrawing struct {
	Type  domain.DrawingType
	P1    Pixel
	P2    Pixel
	Color string
}

// Frame is everything one render pass needs.
type Frame struct {
	Candles       []domain.Candle
	Panels        []Panel
	BollingerOn   bool
	Drawings      []domain.DrawingObject
	Pending       *PendingDrawing
	HoveredID     string
	Crosshair     *Pixel
	Viewport      domain.ViewportState
	Width         float64
	Height        float64
	PriceDecimals int
}

type Renderer struct {
	theme Theme
}

func NewRenderer(theme Theme) *Renderer {
	return &Renderer{theme: theme}
}

// Layout splits the frame height into the main price panel and the
// stacked indicator panels.
func (f Frame) Layout() (mainH, panelH float64) {
	panelH = f.Height * panelRatio
	total := float64(len(f.Panels)) * panelH
	mainH = f.Height - timeGutter - total
	if min := f.Height * minMainRatio; mainH < min {
		mainH = min
	}
	return mainH, panelH
}

// Render draws one frame and returns the projection it used, so
// pointer handling can share the exact same mapping.
func (r *Renderer) Render(c Canvas, f Frame) Projection {
	mainH, panelH := f.Layout()
	plotW := f.Width - priceGutter
	p := NewProjection(f.Candles, f.Viewport, plotW, mainH, f.BollingerOn)

	c.FillRect(0, 0, f.Width, f.Height, r.theme.Background)
	if len(f.Candles) == 0 {
		return p
	}

	r.drawGrid(c, f, p, mainH)
	r.drawVolume(c, f, p, mainH)
	r.drawCandles(c, f, p)
	r.drawPanels(c, f, p, mainH, panelH)
	for _, d := range f.Drawings {
		r.drawObject(c, f, p, d, d.ID == f.HoveredID)
	}
	if f.Pending != nil {
		r.drawPending(c, p, *f.Pending)
	}
	r.drawCrosshair(c, f, p, mainH)
	return p
}

func (r *Renderer) drawGrid(c Canvas, f Frame, p Projection, mainH float64) {
	grid := LineStyle{Color: r.theme.Grid, Width: 1}
	priceRange := p.MaxPrice - p.MinPrice

	for i := 0; i <= gridRows; i++ {
		y := mainH / gridRows * float64(i)
		c.StrokeLine(0, y, p.PlotW, y, grid)
		price := p.MaxPrice - float64(i)*(priceRange/gridRows)
		c.FillText(formatPrice(price, f.PriceDecimals), p.PlotW+5, y+3, r.theme.Text)
	}

	candlesPerGrid := int(math.Ceil(gridPixelInterval / p.Slot()))
	if candlesPerGrid < 1 {
		candlesPerGrid = 1
	}
	first := p.StartIdx - mod(p.StartIdx, candlesPerGrid)
	longSpan := visibleSpan(f.Candles, p) > domain.BucketDuration("1D")
	for i := first; i < p.EndIdx; i += candlesPerGrid {
		if i < 0 || i >= len(f.Candles) {
			continue
		}
		x := p.CenterX(i)
		if x < 0 || x > p.PlotW {
			continue
		}
		c.StrokeLine(x, 0, x, f.Height, grid)
		c.FillText(formatTime(f.Candles[i].Time, longSpan), x, f.Height-5, r.theme.Text)
	}
}

func (r *Renderer) drawVolume(c Canvas, f Frame, p Projection, mainH float64) {
	var maxVol float64
	start := maxInt(0, p.StartIdx)
	for _, cd := range f.Candles[start:p.EndIdx] {
		if cd.Volume > maxVol {
			maxVol = cd.Volume
		}
	}
	if maxVol == 0 {
		return
	}
	laneH := mainH * volumeLaneRatio
	for i := start; i < p.EndIdx; i++ {
		cd := f.Candles[i]
		h := cd.Volume / maxVol * laneH
		color := r.theme.UpFaint
		if cd.Close < cd.Open {
			color = r.theme.DownFaint
		}
		c.FillRect(p.XForIndex(i), mainH-h, p.CandleWidth, h, color)
	}
}

func (r *Renderer) drawCandles(c Canvas, f Frame, p Projection) {
	start := maxInt(0, p.StartIdx)
	for i := start; i < p.EndIdx; i++ {
		cd := f.Candles[i]
		x := p.XForIndex(i)
		color := r.theme.Up
		if cd.Close < cd.Open {
			color = r.theme.Down
		}
		openY, closeY := p.YForPrice(cd.Open), p.YForPrice(cd.Close)
		c.StrokeLine(x+p.CandleWidth/2, p.YForPrice(cd.High), x+p.CandleWidth/2, p.YForPrice(cd.Low),
			LineStyle{Color: color, Width: 1})
		body := math.Abs(closeY - openY)
		if body < 1 {
			body = 1
		}
		c.FillRect(x, math.Min(openY, closeY), p.CandleWidth, body, color)
	}
}

func (r *Renderer) drawPanels(c Canvas, f Frame, p Projection, mainH, panelH float64) {
	top := mainH
	for _, panel := range f.Panels {
		c.StrokeLine(0, top, f.Width, top, LineStyle{Color: r.theme.Grid, Width: 1})
		c.FillText(string(panel), 5, top+15, r.theme.Overlay)
		r.drawPanelSeries(c, f, p, panel, top, panelH)
		top += panelH
	}
}

func (r *Renderer) drawPanelSeries(c Canvas, f Frame, p Projection, panel Panel, top, panelH float64) {
	start := maxInt(0, p.StartIdx)
	if p.EndIdx-start < 2 {
		return
	}
	values := panelValues(f.Candles, panel, start, p.EndIdx)
	lo, hi := panelRange(panel, values)
	if hi == lo {
		return
	}
	style := LineStyle{Color: r.theme.Overlay, Width: 1}
	var prevX, prevY float64
	for i, v := range values {
		x := p.CenterX(start + i)
		y := top + panelH - (clamp(v, lo, hi)-lo)/(hi-lo)*panelH
		if i > 0 {
			c.StrokeLine(prevX, prevY, x, y, style)
		}
		prevX, prevY = x, y
	}
}

func panelValues(candles []domain.Candle, panel Panel, start, end int) []float64 {
	closes := make([]float64, len(candles))
	for i, cd := range candles {
		closes[i] = cd.Close
	}
	values := make([]float64, 0, end-start)
	switch panel {
	case PanelMACD:
		ema12 := indicator.EMASeries(closes, 12)
		ema26 := indicator.EMASeries(closes, 26)
		diffs := make([]float64, len(closes))
		for i := range closes {
			diffs[i] = ema12[i] - ema26[i]
		}
		signal := indicator.EMASeries(diffs, 9)
		for i := start; i < end; i++ {
			values = append(values, diffs[i]-signal[i])
		}
	case PanelStoch:
		for i := start; i < end; i++ {
			values = append(values, indicator.Stoch(candles[:i+1], 14, 3).K)
		}
	case PanelComposite:
		for i := start; i < end; i++ {
			values = append(values, indicator.Composite(candles[i]))
		}
	default: // PanelRSI
		for i := start; i < end; i++ {
			values = append(values, indicator.RSI(closes[:i+1], 14))
		}
	}
	return values
}

func panelRange(panel Panel, values []float64) (lo, hi float64) {
	if panel == PanelMACD {
		var m float64
		for _, v := range values {
			if a := math.Abs(v); a > m {
				m = a
			}
		}
		return -m, m
	}
	return 0, 100
}

func (r *Renderer) drawObject(c Canvas, f Frame, p Projection, d domain.DrawingObject, hovered bool) {
	x1 := p.XForTime(d.P1.Time, f.Candles)
	y1 := p.YForPrice(d.P1.Price)
	x2 := p.XForTime(d.P2.Time, f.Candles)
	y2 := p.YForPrice(d.P2.Price)
	if d.Type == domain.DrawHorizontal {
		x2, y2 = p.PlotW, y1
	}

	style := LineStyle{Color: d.Color, Width: 2}
	if hovered {
		style = LineStyle{Color: r.theme.Highlight, Width: 3}
	}

	switch d.Type {
	case domain.DrawTrendline, domain.DrawHorizontal:
		c.StrokeLine(x1, y1, x2, y2, style)
	case domain.DrawRay:
		// Stored endpoints are never mutated; the extension to the
		// plot edge exists only here.
		ex, ey := rayEnd(x1, y1, x2, y2, p.PlotW)
		c.StrokeLine(x1, y1, ex, ey, style)
	case domain.DrawChannel:
		c.StrokeLine(x1, y1, x2, y2, style)
		dy := y2 - y1
		c.StrokeLine(x1, y1+dy, x2, y2+dy, style)
	case domain.DrawRect:
		c.FillRect(math.Min(x1, x2), math.Min(y1, y2), math.Abs(x2-x1), math.Abs(y2-y1), d.Color+"20")
		c.StrokeRect(math.Min(x1, x2), math.Min(y1, y2), math.Abs(x2-x1), math.Abs(y2-y1), style)
	case domain.DrawFib:
		dashed := style
		dashed.Dash = []float64{2, 2}
		c.StrokeLine(x1, y1, x2, y2, dashed)
		left, right := math.Min(x1, x2), math.Max(x1, x2)
		for _, level := range fibLevels {
			y := y1 + (y2-y1)*level
			c.StrokeLine(left, y, right, y, style)
			c.FillText(fmt.Sprintf("%g", level), right+2, y+3, d.Color)
		}
	}
}

var fibLevels = []float64{0, 0.236, 0.382, 0.5, 0.618, 0.786, 1}

func rayEnd(x1, y1, x2, y2, plotW float64) (float64, float64) {
	dx := x2 - x1
	if dx == 0 {
		return x2, y2
	}
	m := (y2 - y1) / dx
	endX := plotW
	if dx < 0 {
		endX = 0
	}
	return endX, y1 + m*(endX-x1)
}

func (r *Renderer) drawPending(c Canvas, p Projection, pd PendingDrawing) {
	style := LineStyle{Color: pd.Color, Width: 2, Dash: []float64{4, 4}}
	switch pd.Type {
	case domain.DrawRect:
		c.StrokeRect(math.Min(pd.P1.X, pd.P2.X), math.Min(pd.P1.Y, pd.P2.Y),
			math.Abs(pd.P2.X-pd.P1.X), math.Abs(pd.P2.Y-pd.P1.Y), style)
	case domain.DrawHorizontal:
		c.StrokeLine(0, pd.P1.Y, p.PlotW, pd.P1.Y, style)
	default:
		c.StrokeLine(pd.P1.X, pd.P1.Y, pd.P2.X, pd.P2.Y, style)
	}
}

func (r *Renderer) drawCrosshair(c Canvas, f Frame, p Projection, mainH float64) {
	ch := f.Crosshair
	if ch == nil || ch.X >= p.PlotW || ch.Y >= mainH {
		return
	}
	style := LineStyle{Color: r.theme.Crosshair, Width: 1, Dash: []float64{4, 4}}
	c.StrokeLine(ch.X, 0, ch.X, mainH, style)
	c.StrokeLine(0, ch.Y, p.PlotW, ch.Y, style)

	price := p.PriceForY(ch.Y)
	c.FillRect(p.PlotW, ch.Y-10, priceGutter, 20, r.theme.Grid)
	c.FillText(formatPrice(price, f.PriceDecimals), p.PlotW+5, ch.Y+4, r.theme.Crosshair)
}

func visibleSpan(candles []domain.Candle, p Projection) int64 {
	start := maxInt(0, p.StartIdx)
	if p.EndIdx-start < 2 {
		return 0
	}
	return candles[p.EndIdx-1].Time - candles[start].Time
}

func formatPrice(v float64, decimals int) string {
	if decimals <= 0 {
		decimals = 2
	}
	return fmt.Sprintf("%.*f", decimals, v)
}

func formatTime(ms int64, longSpan bool) string {
	t := time.UnixMilli(ms)
	if longSpan {
		return fmt.Sprintf("%d/%d", t.Day(), int(t.Month()))
	}
	return t.Format("15:04")
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
