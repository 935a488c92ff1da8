package market

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aynu/chartcore/internal/domain"
)

// HistoryLimit is how many candles a history fetch requests.
const HistoryLimit = 500

// Engine coordinates the feed and the store: it opens the push channel
// for the active pair, falls back to polling while no channel is open,
// and tears everything down on pair or timeframe switches.
type Engine struct {
	store *Store
	feed  domain.Feed
	log   *zap.Logger

	pollEvery time.Duration

	mu       sync.Mutex
	gen      int
	stopPush func()
	pushOpen bool
}

func NewEngine(store *Store, feed domain.Feed, pollEvery time.Duration, log *zap.Logger) *Engine {
	if pollEvery <= 0 {
		pollEvery = time.Second
	}
	return &Engine{store: store, feed: feed, pollEvery: pollEvery, log: log}
}

func (e *Engine) Store() *Store { return e.store }

// Start opens the initial push channel and runs the polling loop until
// ctx is cancelled. Polling only fetches while the push channel is
// down, so there is never more than one writer per pair.
func (e *Engine) Start(ctx context.Context) {
	if err := e.SetPair(ctx, e.store.Pair()); err != nil {
		e.log.Warn("initial pair setup failed", zap.Error(err))
	}

	ticker := time.NewTicker(e.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.mu.Lock()
			if e.stopPush != nil {
				e.stopPush()
				e.stopPush = nil
			}
			e.mu.Unlock()
			return
		case <-ticker.C:
			e.mu.Lock()
			open := e.pushOpen
			e.mu.Unlock()
			if open {
				continue
			}
			e.pollOnce(ctx)
			e.reconnect(ctx)
		}
	}
}

// SetPair tears down the current push channel, resets all per-pair
// state, then fetches history and reopens the channel for the new
// pair. In-flight messages for the old pair are discarded by the
// generation check in the handler.
func (e *Engine) SetPair(ctx context.Context, pair string) error {
	if _, ok := domain.LookupPair(pair); !ok {
		return fmt.Errorf("unknown pair %q", pair)
	}

	e.mu.Lock()
	e.gen++
	gen := e.gen
	if e.stopPush != nil {
		e.stopPush()
		e.stopPush = nil
	}
	e.pushOpen = false
	e.mu.Unlock()

	e.store.Reset(pair)
	e.loadHistory(ctx, pair)
	// One REST pass primes ticker, depth and tape; the push channel
	// keeps them fresh from here.
	e.pollOnce(ctx)
	e.connect(ctx, pair, gen)
	return nil
}

// SetTimeframe swaps the candle bucket duration and refetches history;
// the order book and trade tape are unaffected.
func (e *Engine) SetTimeframe(ctx context.Context, timeframe string) error {
	found := false
	for _, tf := range domain.Timeframes {
		if tf == timeframe {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("unknown timeframe %q", timeframe)
	}
	e.store.SetTimeframe(timeframe)
	e.loadHistory(ctx, e.store.Pair())
	return nil
}

func (e *Engine) loadHistory(ctx context.Context, pair string) {
	candles, err := e.feed.FetchHistory(ctx, pair, e.store.Timeframe(), HistoryLimit)
	if err != nil {
		e.log.Warn("history fetch failed", zap.String("pair", pair), zap.Error(err))
		return
	}
	e.store.SeedHistory(candles)
}

func (e *Engine) connect(ctx context.Context, pair string, gen int) {
	stop, err := e.feed.Connect(ctx, pair, &genHandler{engine: e, gen: gen})
	if err != nil {
		e.log.Warn("push channel connect failed, polling until retry",
			zap.String("pair", pair), zap.Error(err))
		return
	}
	e.mu.Lock()
	if gen != e.gen {
		// Pair switched while dialing; this channel is stale.
		e.mu.Unlock()
		stop()
		return
	}
	e.stopPush = stop
	e.pushOpen = true
	e.mu.Unlock()
}

func (e *Engine) reconnect(ctx context.Context) {
	e.mu.Lock()
	gen := e.gen
	e.mu.Unlock()
	e.connect(ctx, e.store.Pair(), gen)
}

func (e *Engine) pollOnce(ctx context.Context) {
	pair := e.store.Pair()
	ctx, cancel := context.WithTimeout(ctx, e.pollEvery)
	defer cancel()

	if bids, asks, err := e.feed.FetchDepth(ctx, pair, BookDepth); err == nil {
		e.store.ReplaceDepth(bids, asks)
	} else {
		e.log.Debug("depth poll failed", zap.Error(err))
	}
	if tk, err := e.feed.FetchTicker(ctx, pair); err == nil && tk != nil {
		e.store.SetTicker(*tk)
	}
	if trades, err := e.feed.FetchTrades(ctx, pair, 50); err == nil {
		e.store.ReplaceTrades(trades)
	}
}

// markDisconnected is called by the handler when the push channel
// drops; the poll loop takes over on its next tick.
func (e *Engine) markDisconnected(gen int) {
	e.mu.Lock()
	if gen == e.gen {
		e.pushOpen = false
		e.stopPush = nil
	}
	e.mu.Unlock()
}

// genHandler forwards feed messages to the store, dropping anything
// from a channel that predates the latest pair switch.
type genHandler struct {
	engine *Engine
	gen    int
}

func (h *genHandler) stale() bool {
	h.engine.mu.Lock()
	defer h.engine.mu.Unlock()
	return h.gen != h.engine.gen
}

func (h *genHandler) OnDepthDiff(bidUpdates, askUpdates [][2]float64) {
	if h.stale() {
		return
	}
	h.engine.store.ApplyDepthDiff(bidUpdates, askUpdates)
}

func (h *genHandler) OnTrade(t domain.Trade) {
	if h.stale() {
		return
	}
	h.engine.store.ApplyTrade(t)
}

func (h *genHandler) OnTicker(tk domain.Ticker) {
	if h.stale() {
		return
	}
	h.engine.store.SetTicker(tk)
}

// OnDisconnect implements the optional disconnect notification used by
// the websocket client.
func (h *genHandler) OnDisconnect() {
	h.engine.markDisconnected(h.gen)
}
