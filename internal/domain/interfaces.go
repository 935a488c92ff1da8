package domain

import "context"

// FeedHandler receives inbound market-data messages. Implementations
// must tolerate messages for a pair that has already been switched
// away from.
type FeedHandler interface {
	OnDepthDiff(bidUpdates, askUpdates [][2]float64)
	OnTrade(t Trade)
	OnTicker(tk Ticker)
}

// Feed is the market-data collaborator: a push channel plus REST
// endpoints used for history and for polling when no push channel is
// open.
type Feed interface {
	// Connect opens a push channel for symbol and delivers messages to
	// h until stop is called or the connection drops.
	Connect(ctx context.Context, symbol string, h FeedHandler) (stop func(), err error)

	FetchHistory(ctx context.Context, symbol, interval string, limit int) ([]Candle, error)
	FetchDepth(ctx context.Context, symbol string, limit int) (bids, asks [][2]float64, err error)
	FetchTicker(ctx context.Context, symbol string) (*Ticker, error)
	FetchTrades(ctx context.Context, symbol string, limit int) ([]Trade, error)
}

// DrawingRepository stores chart annotations keyed by pair.
type DrawingRepository interface {
	SaveDrawing(ctx context.Context, d *DrawingObject) error
	ListDrawings(ctx context.Context, pair string) ([]DrawingObject, error)
	DeleteDrawing(ctx context.Context, id string) error
}

// ViewportRepository persists scroll/zoom state keyed by pair.
type ViewportRepository interface {
	SaveViewport(ctx context.Context, pair string, v ViewportState) error
	GetViewport(ctx context.Context, pair string) (*ViewportState, error)
}
