package chart

import (
	"testing"

	"github.com/aynu/chartcore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingCanvas captures draw calls for assertions.
type recordingCanvas struct {
	fills   []rect
	lines   []line
	rects   []rect
	texts   []string
	calls   int
	dashcnt int
}

type rect struct {
	x, y, w, h float64
	color      string
}

type line struct {
	x1, y1, x2, y2 float64
	style          LineStyle
}

func (r *recordingCanvas) FillRect(x, y, w, h float64, color string) {
	r.calls++
	r.fills = append(r.fills, rect{x, y, w, h, color})
}

func (r *recordingCanvas) StrokeLine(x1, y1, x2, y2 float64, style LineStyle) {
	r.calls++
	if style.Dash != nil {
		r.dashcnt++
	}
	r.lines = append(r.lines, line{x1, y1, x2, y2, style})
}

func (r *recordingCanvas) StrokeRect(x, y, w, h float64, style LineStyle) {
	r.calls++
	r.rects = append(r.rects, rect{x, y, w, h, style.Color})
}

func (r *recordingCanvas) FillText(text string, x, y float64, color string) {
	r.calls++
	r.texts = append(r.texts, text)
}

func baseFrame(candles []domain.Candle) Frame {
	return Frame{
		Candles:       candles,
		Viewport:      domain.ViewportState{CandleWidth: 8},
		Width:         540,
		Height:        400,
		PriceDecimals: 2,
	}
}

func TestRenderBackgroundFirst(t *testing.T) {
	rc := &recordingCanvas{}
	NewRenderer(DefaultTheme).Render(rc, baseFrame(testCandles(60)))

	require.NotEmpty(t, rc.fills)
	bg := rc.fills[0]
	assert.Equal(t, DefaultTheme.Background, bg.color)
	assert.Equal(t, 540.0, bg.w)
	assert.Equal(t, 400.0, bg.h)
}

func TestRenderEmptySeriesOnlyBackground(t *testing.T) {
	rc := &recordingCanvas{}
	NewRenderer(DefaultTheme).Render(rc, baseFrame(nil))
	assert.Equal(t, 1, rc.calls, "no candles, nothing but the background")
}

func TestRenderCandleBodiesMatchVisibleSlice(t *testing.T) {
	rc := &recordingCanvas{}
	f := baseFrame(testCandles(30))
	p := NewRenderer(DefaultTheme).Render(rc, f)

	visible := p.EndIdx - maxInt(0, p.StartIdx)

	var bodies int
	for _, fr := range rc.fills {
		if fr.color == DefaultTheme.Up || fr.color == DefaultTheme.Down {
			bodies++
		}
	}
	assert.Equal(t, visible, bodies, "one body per visible candle")
}

func TestRenderGridLabels(t *testing.T) {
	rc := &recordingCanvas{}
	NewRenderer(DefaultTheme).Render(rc, baseFrame(testCandles(60)))
	assert.GreaterOrEqual(t, len(rc.texts), gridRows+1, "price labels on every grid row")
}

func TestRenderPendingDrawingDashed(t *testing.T) {
	rc := &recordingCanvas{}
	f := baseFrame(testCandles(60))
	f.Pending = &PendingDrawing{
		Type:  domain.DrawTrendline,
		P1:    Pixel{X: 10, Y: 10},
		P2:    Pixel{X: 50, Y: 40},
		Color: "#eab308",
	}
	NewRenderer(DefaultTheme).Render(rc, f)
	assert.Greater(t, rc.dashcnt, 0, "pending preview must be dashed")
}

func TestRenderIndicatorPanelsShrinkMain(t *testing.T) {
	f := baseFrame(testCandles(60))
	mainOnly, _ := f.Layout()

	f.Panels = []Panel{PanelRSI, PanelMACD}
	withPanels, panelH := f.Layout()

	assert.Less(t, withPanels, mainOnly)
	assert.Equal(t, f.Height*panelRatio, panelH, "panels split the band equally")

	rc := &recordingCanvas{}
	NewRenderer(DefaultTheme).Render(rc, f)
	assert.Contains(t, rc.texts, "rsi")
	assert.Contains(t, rc.texts, "macd")
}

func TestRenderCrosshairPriceLabel(t *testing.T) {
	rc := &recordingCanvas{}
	f := baseFrame(testCandles(60))
	f.Crosshair = &Pixel{X: 100, Y: 50}
	p := NewRenderer(DefaultTheme).Render(rc, f)

	want := formatPrice(p.PriceForY(50), f.PriceDecimals)
	assert.Contains(t, rc.texts, want)
}

func TestRenderCommittedDrawingUsesDomainCoords(t *testing.T) {
	candles := testCandles(60)
	f := baseFrame(candles)
	f.Drawings = []domain.DrawingObject{{
		ID:   "d1",
		Type: domain.DrawHorizontal,
		P1:   domain.Point{Time: candles[40].Time, Price: 100},
		P2:   domain.Point{Time: candles[50].Time, Price: 100},
		Color: "#ff0000",
	}}

	rc := &recordingCanvas{}
	p := NewRenderer(DefaultTheme).Render(rc, f)

	wantY := p.YForPrice(100)
	found := false
	for _, ln := range rc.lines {
		if ln.style.Color == "#ff0000" && ln.y1 == wantY && ln.x2 == p.PlotW {
			found = true
		}
	}
	assert.True(t, found, "horizontal drawing rendered at its price row, span to plot edge")
}

func TestRayExtensionDoesNotMutateEndpoints(t *testing.T) {
	candles := testCandles(60)
	f := baseFrame(candles)
	d := domain.DrawingObject{
		ID:   "ray1",
		Type: domain.DrawRay,
		P1:   domain.Point{Time: candles[30].Time, Price: 95},
		P2:   domain.Point{Time: candles[40].Time, Price: 105},
	}
	f.Drawings = []domain.DrawingObject{d}

	rc := &recordingCanvas{}
	p := NewRenderer(DefaultTheme).Render(rc, f)

	assert.Equal(t, candles[40].Time, f.Drawings[0].P2.Time, "stored endpoint untouched")

	// The rendered segment reaches the plot edge.
	reached := false
	for _, ln := range rc.lines {
		if ln.x2 == p.PlotW && ln.style.Width == 2 {
			reached = true
		}
	}
	assert.True(t, reached)
}
