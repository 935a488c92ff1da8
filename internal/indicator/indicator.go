// Package indicator provides stateless technical-analysis transforms
// over candle series.
package indicator

import (
	"math"

	"github.com/aynu/chartcore/internal/domain"
)

// MinHistory is the number of candles required before indicators are
// recomputed. Below this, Compute returns the previous set untouched.
const MinHistory = 30

// SMA returns the arithmetic mean of the last period values, or 0 when
// the series is shorter than the period.
func SMA(data []float64, period int) float64 {
	if len(data) < period || period <= 0 {
		return 0
	}
	var sum float64
	for _, v := range data[len(data)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// EMA seeds with the first value and iterates forward with smoothing
// constant k = 2/(period+1).
func EMA(data []float64, period int) float64 {
	if len(data) == 0 {
		return 0
	}
	k := 2.0 / float64(period+1)
	ema := data[0]
	for _, v := range data[1:] {
		ema = v*k + ema*(1-k)
	}
	return ema
}

// EMASeries is the running form of EMA, one output per input.
func EMASeries(data []float64, period int) []float64 {
	if len(data) == 0 {
		return nil
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, len(data))
	out[0] = data[0]
	for i := 1; i < len(data); i++ {
		out[i] = data[i]*k + out[i-1]*(1-k)
	}
	return out
}

// StdDev is the population standard deviation of the last period
// values.
func StdDev(data []float64, period int) float64 {
	if len(data) < period || period <= 0 {
		return 0
	}
	window := data[len(data)-period:]
	var mean float64
	for _, v := range window {
		mean += v
	}
	mean /= float64(period)
	var sq float64
	for _, v := range window {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(period))
}

// RSI computes the relative strength index over the trailing window of
// differences. Returns 50 on insufficient history and exactly 100 when
// the average loss is zero.
func RSI(data []float64, period int) float64 {
	if len(data) < period+1 {
		return 50
	}
	var gain, loss float64
	for i := len(data) - period; i < len(data); i++ {
		d := data[i] - data[i-1]
		if d >= 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	return 100 - 100/(1+avgGain/avgLoss)
}

// MACDLines computes MACD(12,26,9) from closes.
func MACDLines(closes []float64) domain.MACD {
	if len(closes) == 0 {
		return domain.MACD{}
	}
	ema12 := EMASeries(closes, 12)
	ema26 := EMASeries(closes, 26)
	diffs := make([]float64, len(closes))
	for i := range closes {
		diffs[i] = ema12[i] - ema26[i]
	}
	last := len(closes) - 1
	signal := EMASeries(diffs, 9)[last]
	return domain.MACD{
		Value:     diffs[last],
		Signal:    signal,
		Histogram: diffs[last] - signal,
	}
}

// BollingerBands computes Bollinger(20,2) around SMA20.
func BollingerBands(closes []float64) domain.Bollinger {
	mid := SMA(closes, 20)
	sd := StdDev(closes, 20)
	return domain.Bollinger{Upper: mid + 2*sd, Middle: mid, Lower: mid - 2*sd}
}

// ATR is the mean true range over the last period candles.
func ATR(candles []domain.Candle, period int) float64 {
	if len(candles) < period+1 || period <= 0 {
		return 0
	}
	var sum float64
	for i := len(candles) - period; i < len(candles); i++ {
		c, prev := candles[i], candles[i-1]
		tr := c.High - c.Low
		if hc := math.Abs(c.High - prev.Close); hc > tr {
			tr = hc
		}
		if lc := math.Abs(c.Low - prev.Close); lc > tr {
			tr = lc
		}
		sum += tr
	}
	return sum / float64(period)
}

// Stoch computes the stochastic oscillator %K over kPeriod and %D as
// the dPeriod-SMA of trailing %K values.
func Stoch(candles []domain.Candle, kPeriod, dPeriod int) domain.Stochastic {
	if len(candles) < kPeriod+dPeriod-1 {
		return domain.Stochastic{K: 50, D: 50}
	}
	ks := make([]float64, 0, dPeriod)
	for off := dPeriod - 1; off >= 0; off-- {
		end := len(candles) - off
		ks = append(ks, stochK(candles[:end], kPeriod))
	}
	k := ks[len(ks)-1]
	var d float64
	for _, v := range ks {
		d += v
	}
	return domain.Stochastic{K: k, D: d / float64(len(ks))}
}

func stochK(candles []domain.Candle, period int) float64 {
	window := candles[len(candles)-period:]
	lo, hi := window[0].Low, window[0].High
	for _, c := range window[1:] {
		if c.Low < lo {
			lo = c.Low
		}
		if c.High > hi {
			hi = c.High
		}
	}
	if hi == lo {
		return 50
	}
	return 100 * (window[len(window)-1].Close - lo) / (hi - lo)
}

// Momentum is the close-to-close change over period candles.
func Momentum(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 0
	}
	return closes[len(closes)-1] - closes[len(closes)-1-period]
}

// Composite is the volatility-penalized, volume-rewarded score for a
// single candle, clamped to [0,100].
func Composite(c domain.Candle) float64 {
	var volatility float64
	if c.Close > 0 {
		volatility = (c.High - c.Low) / c.Close
	}
	v := 50 + 5*math.Log10(c.Volume+1) - 1000*volatility
	return math.Max(0, math.Min(100, v))
}

// Compute derives a full indicator set from the candle series. When
// fewer than MinHistory candles exist the previous set is returned
// unchanged.
func Compute(candles []domain.Candle, prev domain.IndicatorSet) domain.IndicatorSet {
	if len(candles) < MinHistory {
		return prev
	}
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return domain.IndicatorSet{
		RSI:        RSI(closes, 14),
		SMA20:      SMA(closes, 20),
		EMA20:      EMA(closes, 20),
		MACD:       MACDLines(closes),
		Bollinger:  BollingerBands(closes),
		Stochastic: Stoch(candles, 14, 3),
		ATR:        ATR(candles, 14),
		Momentum:   Momentum(closes, 10),
		Composite:  Composite(candles[len(candles)-1]),
	}
}
