package domain

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

type OrderBookLevel struct {
	Price              float64 `json:"price"`
	Amount             float64 `json:"amount"`
	Notional           float64 `json:"notional"`
	CumulativeNotional float64 `json:"cumulative_notional"`
}

type OrderBookState struct {
	Bids      []OrderBookLevel `json:"bids"`
	Asks      []OrderBookLevel `json:"asks"`
	LastPrice float64          `json:"last_price"`
	Spread    float64          `json:"spread"`
	MaxDepth  float64          `json:"max_depth"`
}

type Ticker struct {
	Symbol             string  `json:"symbol"`
	LastPrice          float64 `json:"last_price"`
	PriceChangePercent float64 `json:"price_change_percent"`
	High24h            float64 `json:"high_24h"`
	Low24h             float64 `json:"low_24h"`
	Volume24h          float64 `json:"volume_24h"`
}

type Trade struct {
	ID        string  `json:"id"`
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
	Side      Side    `json:"side"`
	Timestamp int64   `json:"timestamp"`
}

type MACD struct {
	Value     float64 `json:"value"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

type Bollinger struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

type Stochastic struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
}

// IndicatorSet holds the last computed value of every technical
// indicator. Values stay at their previous state until enough candle
// history exists to recompute them.
type IndicatorSet struct {
	RSI        float64    `json:"rsi"`
	SMA20      float64    `json:"sma20"`
	EMA20      float64    `json:"ema20"`
	MACD       MACD       `json:"macd"`
	Bollinger  Bollinger  `json:"bollinger"`
	Stochastic Stochastic `json:"stoch"`
	ATR        float64    `json:"atr"`
	Momentum   float64    `json:"momentum"`
	Composite  float64    `json:"composite"`
}

type DrawingType string

const (
	DrawTrendline  DrawingType = "trendline"
	DrawRay        DrawingType = "ray"
	DrawHorizontal DrawingType = "horizontal"
	DrawRect       DrawingType = "rect"
	DrawFib        DrawingType = "fib"
	DrawChannel    DrawingType = "channel"
)

// Point is a position in domain coordinates. Drawings store these, not
// pixels, so they survive zooming and scrolling.
type Point struct {
	Time  int64   `json:"time"`
	Price float64 `json:"price"`
}

type DrawingObject struct {
	ID     string      `json:"id"`
	Pair   string      `json:"pair"`
	Type   DrawingType `json:"type"`
	P1     Point       `json:"p1"`
	P2     Point       `json:"p2"`
	Color  string      `json:"color"`
	Locked bool        `json:"locked"`
}

// ViewportState is the visible window of the candle series.
// Offset counts candles scrolled back from the live edge.
type ViewportState struct {
	Offset      float64 `json:"offset"`
	CandleWidth float64 `json:"candle_width"`
}
