package market

import (
	"sort"
	"sync"

	"github.com/aynu/chartcore/internal/domain"
	"github.com/aynu/chartcore/internal/indicator"
)

const (
	// BookDepth is how many levels per side survive a rebuild.
	BookDepth = 20
	// MaxTrades caps the trade tape, newest first.
	MaxTrades = 100
)

// Snapshot is a deep copy of all derived market state, safe to hold
// across further mutations.
type Snapshot struct {
	Pair       string               `json:"pair"`
	Timeframe  string               `json:"timeframe"`
	Ticker     domain.Ticker        `json:"ticker"`
	OrderBook  domain.OrderBookState `json:"order_book"`
	Candles    []domain.Candle      `json:"candles"`
	Trades     []domain.Trade       `json:"trades"`
	Indicators domain.IndicatorSet  `json:"indicators"`
}

// Store owns the per-pair mutable market state: order-book side maps,
// trade tape, ticker, candle series and indicators. The feed pump is
// the single logical writer; the mutex exists so snapshot readers on
// other goroutines see consistent state.
type Store struct {
	mu sync.Mutex

	pair      string
	timeframe string

	bidMap map[float64]float64
	askMap map[float64]float64
	book   domain.OrderBookState

	trades     []domain.Trade
	ticker     domain.Ticker
	agg        *Aggregator
	indicators domain.IndicatorSet

	bus *Bus
}

func NewStore(pair, timeframe string, bus *Bus) *Store {
	return &Store{
		pair:      pair,
		timeframe: timeframe,
		bidMap:    make(map[float64]float64),
		askMap:    make(map[float64]float64),
		book:      domain.OrderBookState{MaxDepth: 1},
		agg:       NewAggregator(timeframe),
		bus:       bus,
	}
}

// Subscribe registers a change callback on the notification bus.
func (s *Store) Subscribe(fn func()) func() { return s.bus.Subscribe(fn) }

// ApplyDepthDiff applies incremental (price, qty) updates: qty 0
// deletes the level, anything else inserts or overwrites. Non-finite
// or negative entries are dropped.
func (s *Store) ApplyDepthDiff(bidUpdates, askUpdates [][2]float64) {
	s.mu.Lock()
	applySide(s.bidMap, bidUpdates)
	applySide(s.askMap, askUpdates)
	s.rebuildOrderBookLocked()
	s.mu.Unlock()
	s.bus.Notify()
}

// ReplaceDepth swaps both side maps for a full snapshot, used by the
// polling path where the feed returns the whole visible book.
func (s *Store) ReplaceDepth(bids, asks [][2]float64) {
	s.mu.Lock()
	clear(s.bidMap)
	clear(s.askMap)
	applySide(s.bidMap, bids)
	applySide(s.askMap, asks)
	s.rebuildOrderBookLocked()
	s.mu.Unlock()
	s.bus.Notify()
}

func applySide(m map[float64]float64, updates [][2]float64) {
	for _, u := range updates {
		price, qty := u[0], u[1]
		if price <= 0 || qty < 0 {
			continue
		}
		if qty == 0 {
			delete(m, price)
		} else {
			m[price] = qty
		}
	}
}

func (s *Store) rebuildOrderBookLocked() {
	bids := sortedLevels(s.bidMap, true)
	asks := sortedLevels(s.askMap, false)

	var bidAcc, askAcc float64
	for i := range bids {
		bids[i].Notional = bids[i].Price * bids[i].Amount
		bidAcc += bids[i].Notional
		bids[i].CumulativeNotional = bidAcc
	}
	for i := range asks {
		asks[i].Notional = asks[i].Price * asks[i].Amount
		askAcc += asks[i].Notional
		asks[i].CumulativeNotional = askAcc
	}

	var spread float64
	if len(bids) > 0 && len(asks) > 0 {
		spread = asks[0].Price - bids[0].Price
	}
	maxDepth := bidAcc
	if askAcc > maxDepth {
		maxDepth = askAcc
	}
	if maxDepth == 0 {
		maxDepth = 1
	}

	s.book = domain.OrderBookState{
		Bids:      bids,
		Asks:      asks,
		LastPrice: s.ticker.LastPrice,
		Spread:    spread,
		MaxDepth:  maxDepth,
	}
}

func sortedLevels(m map[float64]float64, desc bool) []domain.OrderBookLevel {
	levels := make([]domain.OrderBookLevel, 0, len(m))
	for price, amount := range m {
		levels = append(levels, domain.OrderBookLevel{Price: price, Amount: amount})
	}
	sort.Slice(levels, func(i, j int) bool {
		if desc {
			return levels[i].Price > levels[j].Price
		}
		return levels[i].Price < levels[j].Price
	})
	if len(levels) > BookDepth {
		levels = levels[:BookDepth]
	}
	return levels
}

// ApplyTrade appends to the tape, updates the last price, folds the
// trade into the candle series and recomputes indicators.
func (s *Store) ApplyTrade(t domain.Trade) {
	if t.Price <= 0 || t.Amount < 0 {
		return
	}
	s.mu.Lock()
	s.trades = append([]domain.Trade{t}, s.trades...)
	if len(s.trades) > MaxTrades {
		s.trades = s.trades[:MaxTrades]
	}
	s.ticker.LastPrice = t.Price
	s.book.LastPrice = t.Price
	s.agg.AppendTrade(t.Price, t.Amount, t.Timestamp)
	s.indicators = indicator.Compute(s.agg.Candles(), s.indicators)
	s.mu.Unlock()
	s.bus.Notify()
}

// ReplaceTrades swaps the tape wholesale (polling path).
func (s *Store) ReplaceTrades(trades []domain.Trade) {
	s.mu.Lock()
	s.trades = append(s.trades[:0], trades...)
	if len(s.trades) > MaxTrades {
		s.trades = s.trades[:MaxTrades]
	}
	s.mu.Unlock()
	s.bus.Notify()
}

// SetTicker replaces the ticker fields wholesale.
func (s *Store) SetTicker(tk domain.Ticker) {
	s.mu.Lock()
	tk.Symbol = s.pair
	s.ticker = tk
	s.book.LastPrice = tk.LastPrice
	s.mu.Unlock()
	s.bus.Notify()
}

// SeedHistory replaces the candle series with a fetched history and
// recomputes indicators.
func (s *Store) SeedHistory(candles []domain.Candle) {
	s.mu.Lock()
	s.agg.Seed(candles)
	s.indicators = indicator.Compute(s.agg.Candles(), s.indicators)
	s.mu.Unlock()
	s.bus.Notify()
}

// SetTimeframe clears the series for the new bucket duration; callers
// seed fresh history afterwards.
func (s *Store) SetTimeframe(timeframe string) {
	s.mu.Lock()
	s.timeframe = timeframe
	s.agg.SetTimeframe(timeframe)
	s.mu.Unlock()
	s.bus.Notify()
}

// Reset clears all per-pair mutable state before a data-source switch.
func (s *Store) Reset(pair string) {
	s.mu.Lock()
	s.pair = pair
	clear(s.bidMap)
	clear(s.askMap)
	s.book = domain.OrderBookState{MaxDepth: 1}
	s.trades = s.trades[:0]
	s.ticker = domain.Ticker{Symbol: pair}
	s.agg.Seed(nil)
	s.indicators = domain.IndicatorSet{}
	s.mu.Unlock()
	s.bus.Notify()
}

// Snapshot deep-copies the full derived state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Pair:       s.pair,
		Timeframe:  s.timeframe,
		Ticker:     s.ticker,
		Indicators: s.indicators,
		Candles:    append([]domain.Candle(nil), s.agg.Candles()...),
		Trades:     append([]domain.Trade(nil), s.trades...),
	}
	snap.OrderBook = domain.OrderBookState{
		Bids:      append([]domain.OrderBookLevel(nil), s.book.Bids...),
		Asks:      append([]domain.OrderBookLevel(nil), s.book.Asks...),
		LastPrice: s.book.LastPrice,
		Spread:    s.book.Spread,
		MaxDepth:  s.book.MaxDepth,
	}
	return snap
}

// Pair returns the active pair symbol.
func (s *Store) Pair() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair
}

// Timeframe returns the active timeframe.
func (s *Store) Timeframe() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeframe
}
