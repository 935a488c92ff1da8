package indicator

import (
	"testing"

	"github.com/aynu/chartcore/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSMA(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 4.0, SMA(data, 3), 1e-9)
	assert.Equal(t, 0.0, SMA(data, 10), "short series yields zero")
}

func TestEMASeedsWithFirstValue(t *testing.T) {
	assert.Equal(t, 7.5, EMA([]float64{7.5}, 20))

	// k = 2/(3+1) = 0.5: 10 -> 10*0.5 + 10*0.5 ... hand-computed chain.
	data := []float64{10, 20, 30}
	// ema = 10; ema = 20*0.5+10*0.5 = 15; ema = 30*0.5+15*0.5 = 22.5
	assert.InDelta(t, 22.5, EMA(data, 3), 1e-9)

	series := EMASeries(data, 3)
	assert.Equal(t, []float64{10, 15, 22.5}, series)
}

func TestRSIBounds(t *testing.T) {
	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = float64(100 + i)
	}
	assert.Equal(t, 100.0, RSI(rising, 14), "zero average loss must pin RSI at 100")

	falling := make([]float64, 20)
	for i := range falling {
		falling[i] = float64(200 - i)
	}
	assert.InDelta(t, 0.0, RSI(falling, 14), 1e-9)

	mixed := []float64{100, 102, 101, 103, 102, 104, 103, 105, 104, 106, 105, 107, 106, 108, 107}
	rsi := RSI(mixed, 14)
	assert.GreaterOrEqual(t, rsi, 0.0)
	assert.LessOrEqual(t, rsi, 100.0)

	assert.Equal(t, 50.0, RSI([]float64{1, 2, 3}, 14), "insufficient history stays neutral")
}

func TestMACDHistogramIdentity(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	m := MACDLines(closes)
	assert.InDelta(t, m.Value-m.Signal, m.Histogram, 1e-9)
}

func TestBollingerSymmetry(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 50 + float64(i%5)
	}
	b := BollingerBands(closes)
	assert.InDelta(t, b.Middle-b.Lower, b.Upper-b.Middle, 1e-9)
	assert.InDelta(t, SMA(closes, 20), b.Middle, 1e-9)
}

func TestStdDevConstantSeries(t *testing.T) {
	flat := []float64{4, 4, 4, 4, 4}
	assert.Equal(t, 0.0, StdDev(flat, 5))
}

func TestCompositeClamped(t *testing.T) {
	// Huge volatility should floor at 0.
	c := domain.Candle{High: 200, Low: 100, Close: 100, Volume: 10}
	assert.Equal(t, 0.0, Composite(c))

	// Flat candle with volume lands above the 50 baseline.
	c = domain.Candle{High: 100, Low: 100, Close: 100, Volume: 1000}
	v := Composite(c)
	assert.Greater(t, v, 50.0)
	assert.LessOrEqual(t, v, 100.0)

	// Zero close must not divide by zero.
	assert.NotPanics(t, func() { Composite(domain.Candle{}) })
}

func TestATR(t *testing.T) {
	candles := []domain.Candle{
		{High: 10, Low: 8, Close: 9},
		{High: 11, Low: 9, Close: 10},
		{High: 12, Low: 10, Close: 11},
		{High: 11, Low: 9, Close: 10},
	}
	// TRs for the last 3 candles are all 2.
	assert.InDelta(t, 2.0, ATR(candles, 3), 1e-9)
}

func TestStochFlatWindow(t *testing.T) {
	flat := make([]domain.Candle, 20)
	for i := range flat {
		flat[i] = domain.Candle{High: 5, Low: 5, Close: 5}
	}
	s := Stoch(flat, 14, 3)
	assert.Equal(t, 50.0, s.K)
	assert.Equal(t, 50.0, s.D)
}

func TestComputeRespectsWarmup(t *testing.T) {
	prev := domain.IndicatorSet{RSI: 42, Composite: 77}
	short := make([]domain.Candle, MinHistory-1)
	for i := range short {
		short[i] = domain.Candle{Close: 100, High: 101, Low: 99, Volume: 1}
	}
	got := Compute(short, prev)
	assert.Equal(t, prev, got, "below warmup the previous set must persist")

	full := append(short, domain.Candle{Close: 100, High: 101, Low: 99, Volume: 1})
	got = Compute(full, prev)
	assert.NotEqual(t, prev.RSI, got.RSI)
	assert.InDelta(t, 100.0, got.SMA20, 1e-9)
}
