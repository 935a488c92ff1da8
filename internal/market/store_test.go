package market

import (
	"fmt"
	"testing"

	"github.com/aynu/chartcore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore("AMR/NVR", "1m", NewBus(0))
}

func TestDepthDiffInsertAndDelete(t *testing.T) {
	s := newTestStore()

	s.ApplyDepthDiff([][2]float64{{100, 2}}, [][2]float64{{101, 3}})
	book := s.Snapshot().OrderBook
	require.Len(t, book.Bids, 1)
	require.Len(t, book.Asks, 1)
	assert.Equal(t, 100.0, book.Bids[0].Price)
	assert.Equal(t, 2.0, book.Bids[0].Amount)
	assert.Equal(t, 101.0, book.Asks[0].Price)
	assert.Equal(t, 3.0, book.Asks[0].Amount)
	assert.Equal(t, 1.0, book.Spread)

	// qty 0 removes the level; the other side is untouched.
	s.ApplyDepthDiff([][2]float64{{100, 0}}, nil)
	book = s.Snapshot().OrderBook
	assert.Empty(t, book.Bids)
	require.Len(t, book.Asks, 1)
	assert.Equal(t, 3.0, book.Asks[0].Amount)

	// Re-inserting at the same price takes the new quantity.
	s.ApplyDepthDiff([][2]float64{{100, 5}}, nil)
	book = s.Snapshot().OrderBook
	require.Len(t, book.Bids, 1)
	assert.Equal(t, 5.0, book.Bids[0].Amount)
}

func TestOrderBookSortingAndCumulativeNotional(t *testing.T) {
	s := newTestStore()

	var bids, asks [][2]float64
	for i := 0; i < 30; i++ {
		bids = append(bids, [2]float64{100 - float64(i), 1})
		asks = append(asks, [2]float64{101 + float64(i), 1})
	}
	s.ApplyDepthDiff(bids, asks)
	book := s.Snapshot().OrderBook

	assert.Len(t, book.Bids, BookDepth, "bids truncated to top levels")
	assert.Len(t, book.Asks, BookDepth)

	for i := 1; i < len(book.Bids); i++ {
		assert.Greater(t, book.Bids[i-1].Price, book.Bids[i].Price, "bids strictly descending")
		assert.GreaterOrEqual(t, book.Bids[i].CumulativeNotional, book.Bids[i-1].CumulativeNotional)
	}
	for i := 1; i < len(book.Asks); i++ {
		assert.Less(t, book.Asks[i-1].Price, book.Asks[i].Price, "asks strictly ascending")
		assert.GreaterOrEqual(t, book.Asks[i].CumulativeNotional, book.Asks[i-1].CumulativeNotional)
	}

	assert.Equal(t, book.Bids[0].Price*book.Bids[0].Amount, book.Bids[0].Notional)
	assert.Equal(t, book.Asks[len(book.Asks)-1].CumulativeNotional, book.MaxDepth)
}

func TestApplyTradeTapeAndTicker(t *testing.T) {
	s := newTestStore()
	s.SeedHistory([]domain.Candle{{Time: 0, Open: 99, High: 99, Low: 99, Close: 99}})

	for i := 0; i < MaxTrades+20; i++ {
		s.ApplyTrade(domain.Trade{
			ID:        fmt.Sprintf("t%d", i),
			Price:     100 + float64(i),
			Amount:    1,
			Side:      domain.SideBuy,
			Timestamp: int64(i),
		})
	}
	snap := s.Snapshot()
	assert.Len(t, snap.Trades, MaxTrades, "tape bounded")
	assert.Equal(t, fmt.Sprintf("t%d", MaxTrades+19), snap.Trades[0].ID, "newest first")
	assert.Equal(t, 100.0+float64(MaxTrades+19), snap.Ticker.LastPrice)
	assert.Equal(t, snap.Ticker.LastPrice, snap.OrderBook.LastPrice)
}

func TestApplyTradeDropsMalformed(t *testing.T) {
	s := newTestStore()
	s.ApplyTrade(domain.Trade{Price: 0, Amount: 1})
	s.ApplyTrade(domain.Trade{Price: -5, Amount: 1})
	s.ApplyTrade(domain.Trade{Price: 10, Amount: -1})
	assert.Empty(t, s.Snapshot().Trades)
}

func TestSetTickerReplacesWholesale(t *testing.T) {
	s := newTestStore()
	s.SetTicker(domain.Ticker{
		LastPrice:          4250,
		PriceChangePercent: 1.5,
		High24h:            4300,
		Low24h:             4100,
		Volume24h:          9999,
	})
	tk := s.Snapshot().Ticker
	assert.Equal(t, "AMR/NVR", tk.Symbol)
	assert.Equal(t, 4250.0, tk.LastPrice)
	assert.Equal(t, 4300.0, tk.High24h)
}

func TestResetClearsEverything(t *testing.T) {
	s := newTestStore()
	s.ApplyDepthDiff([][2]float64{{100, 2}}, [][2]float64{{101, 3}})
	s.SeedHistory([]domain.Candle{{Time: 0, Open: 1, High: 1, Low: 1, Close: 1}})
	s.ApplyTrade(domain.Trade{ID: "x", Price: 100, Amount: 1})
	s.SetTicker(domain.Ticker{LastPrice: 100})

	s.Reset("IONX/NVR")
	snap := s.Snapshot()
	assert.Equal(t, "IONX/NVR", snap.Pair)
	assert.Empty(t, snap.OrderBook.Bids)
	assert.Empty(t, snap.OrderBook.Asks)
	assert.Empty(t, snap.Candles)
	assert.Empty(t, snap.Trades)
	assert.Zero(t, snap.Ticker.LastPrice)
	assert.Zero(t, snap.Indicators.RSI)
}

func TestIndicatorsRecomputeOnlyWithHistory(t *testing.T) {
	s := newTestStore()

	short := make([]domain.Candle, 10)
	for i := range short {
		short[i] = domain.Candle{Time: int64(i) * 60_000, Open: 100, High: 101, Low: 99, Close: 100, Volume: 1}
	}
	s.SeedHistory(short)
	assert.Zero(t, s.Snapshot().Indicators.SMA20, "below warmup indicators stay at defaults")

	full := make([]domain.Candle, 40)
	for i := range full {
		full[i] = domain.Candle{Time: int64(i) * 60_000, Open: 100, High: 101, Low: 99, Close: 100, Volume: 1}
	}
	s.SeedHistory(full)
	assert.InDelta(t, 100.0, s.Snapshot().Indicators.SMA20, 1e-9)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := newTestStore()
	s.ApplyDepthDiff([][2]float64{{100, 2}}, [][2]float64{{101, 3}})
	snap := s.Snapshot()
	snap.OrderBook.Bids[0].Amount = 999

	assert.Equal(t, 2.0, s.Snapshot().OrderBook.Bids[0].Amount)
}
