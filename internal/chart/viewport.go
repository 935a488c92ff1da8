package chart

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/aynu/chartcore/internal/domain"
)

const (
	MinCandleWidth     = 2
	MaxCandleWidth     = 100
	DefaultCandleWidth = 8
)

// ViewportController tracks scroll offset and zoom per pair and
// persists them through a ViewportRepository.
type ViewportController struct {
	repo domain.ViewportRepository
	log  *zap.Logger

	mu    sync.Mutex
	pair  string
	state domain.ViewportState
}

func NewViewportController(repo domain.ViewportRepository, log *zap.Logger) *ViewportController {
	return &ViewportController{
		repo:  repo,
		log:   log,
		state: domain.ViewportState{CandleWidth: DefaultCandleWidth},
	}
}

// Load flushes the previous pair's state and restores the saved
// viewport for the new pair, falling back to defaults.
func (c *ViewportController) Load(ctx context.Context, pair string) {
	c.mu.Lock()
	prevPair, prevState := c.pair, c.state
	c.mu.Unlock()

	if prevPair != "" && prevPair != pair {
		if err := c.repo.SaveViewport(ctx, prevPair, prevState); err != nil {
			c.log.Warn("viewport save failed", zap.String("pair", prevPair), zap.Error(err))
		}
	}

	state := domain.ViewportState{CandleWidth: DefaultCandleWidth}
	if saved, err := c.repo.GetViewport(ctx, pair); err != nil {
		c.log.Warn("viewport load failed", zap.String("pair", pair), zap.Error(err))
	} else if saved != nil {
		state = clampViewport(*saved)
	}

	c.mu.Lock()
	c.pair = pair
	c.state = state
	c.mu.Unlock()
}

// Zoom adjusts candle width by delta, clamped to [2,100].
func (c *ViewportController) Zoom(delta float64) domain.ViewportState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.CandleWidth = clamp(c.state.CandleWidth+delta, MinCandleWidth, MaxCandleWidth)
	return c.state
}

// Scroll adjusts the offset by delta candles. Offset never goes below
// zero; there is no upper bound, scrolling past history just yields an
// empty visible slice.
func (c *ViewportController) Scroll(delta float64) domain.ViewportState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Offset = c.state.Offset + delta
	if c.state.Offset < 0 {
		c.state.Offset = 0
	}
	return c.state
}

// Set replaces the state wholesale (clamped), used by the HTTP API.
func (c *ViewportController) Set(v domain.ViewportState) domain.ViewportState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = clampViewport(v)
	return c.state
}

func (c *ViewportController) State() domain.ViewportState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Flush persists the current pair's viewport.
func (c *ViewportController) Flush(ctx context.Context) error {
	c.mu.Lock()
	pair, state := c.pair, c.state
	c.mu.Unlock()
	if pair == "" {
		return nil
	}
	return c.repo.SaveViewport(ctx, pair, state)
}

func clampViewport(v domain.ViewportState) domain.ViewportState {
	v.CandleWidth = clamp(v.CandleWidth, MinCandleWidth, MaxCandleWidth)
	if v.CandleWidth == 0 {
		v.CandleWidth = DefaultCandleWidth
	}
	if v.Offset < 0 {
		v.Offset = 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
