package market

import "github.com/aynu/chartcore/internal/domain"

// MaxCandles caps the candle series; the oldest bucket is dropped when
// an append would exceed it.
const MaxCandles = 500

// Aggregator folds trade ticks into a time-bucketed OHLCV series for
// one timeframe. It is not safe for concurrent use; the owning store
// serializes access.
type Aggregator struct {
	timeframe string
	candles   []domain.Candle
}

func NewAggregator(timeframe string) *Aggregator {
	return &Aggregator{timeframe: timeframe}
}

// Seed replaces the series wholesale with fetched history.
func (a *Aggregator) Seed(candles []domain.Candle) {
	a.candles = append(a.candles[:0], candles...)
	if len(a.candles) > MaxCandles {
		a.candles = a.candles[len(a.candles)-MaxCandles:]
	}
}

// SetTimeframe switches bucket duration and clears the series; the
// caller is expected to seed fresh history for the new timeframe.
func (a *Aggregator) SetTimeframe(timeframe string) {
	a.timeframe = timeframe
	a.candles = a.candles[:0]
}

func (a *Aggregator) Timeframe() string { return a.timeframe }

// Candles returns the live backing slice. Callers that hold the result
// across mutations must copy it first.
func (a *Aggregator) Candles() []domain.Candle { return a.candles }

// AppendTrade folds one trade into the series. A trade inside the open
// bucket mutates the last candle; anything else opens the next bucket,
// stepped forward by exactly one bucket duration. No-op until the
// series has been seeded.
func (a *Aggregator) AppendTrade(price, volume float64, timestamp int64) {
	if len(a.candles) == 0 {
		return
	}
	bucket := domain.BucketDuration(a.timeframe)
	last := &a.candles[len(a.candles)-1]

	if timestamp >= last.Time && timestamp < last.Time+bucket {
		last.Close = price
		if price > last.High {
			last.High = price
		}
		if price < last.Low {
			last.Low = price
		}
		last.Volume += volume
		return
	}

	a.candles = append(a.candles, domain.Candle{
		Time:   last.Time + bucket,
		Open:   price,
		High:   price,
		Low:    price,
		Close:  price,
		Volume: volume,
	})
	if len(a.candles) > MaxCandles {
		a.candles = a.candles[1:]
	}
}
