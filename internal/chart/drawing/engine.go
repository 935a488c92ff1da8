// Package drawing implements the chart annotation tool: a small state
// machine over pointer events, committing gestures into domain-space
// drawing objects, plus hit-testing for hover and delete.
package drawing

import (
	"github.com/google/uuid"

	"github.com/aynu/chartcore/internal/chart"
	"github.com/aynu/chartcore/internal/domain"
)

// HitTolerance is the perpendicular pixel distance within which a
// line-type drawing counts as hovered.
const HitTolerance = 10

type State int

const (
	// Idle: no tool selected, pointer acts as a cursor.
	Idle State = iota
	// Armed: a tool is selected, waiting for the first pointer-down.
	Armed
	// Dragging: pointer is down, tracking the live second endpoint.
	Dragging
)

// Button distinguishes the primary gesture button from the secondary
// (delete) action.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Engine is the annotation state machine for one chart. It is driven
// synchronously from pointer events, the same way the render pass is.
type Engine struct {
	state   State
	tool    domain.DrawingType
	color   string
	pair    string
	gesture *chart.PendingDrawing
	hovered string
}

func NewEngine(pair string) *Engine {
	return &Engine{pair: pair, color: "#eab308"}
}

// SelectTool arms the engine with a drawing tool. An empty tool
// returns to cursor mode and discards any half-finished gesture.
func (e *Engine) SelectTool(tool domain.DrawingType) {
	e.gesture = nil
	e.tool = tool
	if tool == "" {
		e.state = Idle
		return
	}
	e.state = Armed
}

func (e *Engine) SetColor(color string) { e.color = color }

func (e *Engine) SetPair(pair string) {
	e.pair = pair
	e.gesture = nil
	if e.state == Dragging {
		e.state = Armed
	}
	e.hovered = ""
}

func (e *Engine) State() State { return e.state }

// Pending returns the live gesture preview for rendering, nil unless
// dragging.
func (e *Engine) Pending() *chart.PendingDrawing { return e.gesture }

// Hovered returns the id of the drawing currently under the cursor.
func (e *Engine) Hovered() string { return e.hovered }

// PointerDown starts a gesture when armed. A secondary-button press
// instead reports the hovered drawing for deletion, regardless of the
// current tool state.
func (e *Engine) PointerDown(x, y float64, button Button) (deleteID string) {
	if button == ButtonSecondary {
		return e.hovered
	}
	if e.state != Armed {
		return ""
	}
	e.state = Dragging
	e.gesture = &chart.PendingDrawing{
		Type:  e.tool,
		P1:    chart.Pixel{X: x, Y: y},
		P2:    chart.Pixel{X: x, Y: y},
		Color: e.color,
	}
	return ""
}

// PointerMove updates the live endpoint while dragging. In cursor mode
// it refreshes the hovered drawing via hit-testing against the given
// projection.
func (e *Engine) PointerMove(x, y float64, p chart.Projection, candles []domain.Candle, drawings []domain.DrawingObject) {
	if e.state == Dragging && e.gesture != nil {
		e.gesture.P2 = chart.Pixel{X: x, Y: y}
		return
	}
	if e.state == Idle {
		e.hovered = HitTest(x, y, drawings, p, candles)
	}
}

// PointerUp commits the gesture: both endpoints are inverse-projected
// into domain coordinates and a DrawingObject is emitted. The engine
// returns to Armed so the next gesture can start immediately.
func (e *Engine) PointerUp(x, y float64, p chart.Projection, candles []domain.Candle) *domain.DrawingObject {
	if e.state != Dragging || e.gesture == nil {
		return nil
	}
	g := e.gesture
	e.gesture = nil
	e.state = Armed

	d := &domain.DrawingObject{
		ID:    uuid.NewString(),
		Pair:  e.pair,
		Type:  g.Type,
		Color: g.Color,
		P1: domain.Point{
			Time:  p.TimeForX(g.P1.X, candles),
			Price: p.PriceForY(g.P1.Y),
		},
		P2: domain.Point{
			Time:  p.TimeForX(x, candles),
			Price: p.PriceForY(y),
		},
	}
	return d
}
