package feed

import (
	"encoding/json"
	"strconv"

	"github.com/google/uuid"

	"github.com/aynu/chartcore/internal/domain"
)

// handleMessage routes one inbound push message to the handler.
// Anything that does not parse is dropped silently; the store never
// sees malformed input.
func handleMessage(message []byte, h domain.FeedHandler) {
	var event map[string]interface{}
	if err := json.Unmarshal(message, &event); err != nil {
		return
	}
	kind, _ := event["e"].(string)

	switch kind {
	case "depthUpdate":
		bids := parseRawLevels(event["b"])
		asks := parseRawLevels(event["a"])
		if len(bids) == 0 && len(asks) == 0 {
			return
		}
		h.OnDepthDiff(bids, asks)

	case "trade", "aggTrade":
		price, ok1 := toFloat(event["p"])
		qty, ok2 := toFloat(event["q"])
		if !ok1 || !ok2 {
			return
		}
		ts, _ := toFloat(event["T"])
		isSellerAggressor, _ := event["m"].(bool)
		h.OnTrade(domain.Trade{
			ID:        tradeID(event["t"]),
			Price:     price,
			Amount:    qty,
			Side:      sideFromMaker(isSellerAggressor),
			Timestamp: int64(ts),
		})

	case "24hrTicker":
		last, ok := toFloat(event["c"])
		if !ok {
			return
		}
		change, _ := toFloat(event["P"])
		high, _ := toFloat(event["h"])
		low, _ := toFloat(event["l"])
		volume, _ := toFloat(event["v"])
		h.OnTicker(domain.Ticker{
			LastPrice:          last,
			PriceChangePercent: change,
			High24h:            high,
			Low24h:             low,
			Volume24h:          volume,
		})
	}
}

func parseRawLevels(v interface{}) [][2]float64 {
	entries, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([][2]float64, 0, len(entries))
	for _, e := range entries {
		pair, ok := e.([]interface{})
		if !ok || len(pair) < 2 {
			continue
		}
		price, ok1 := toFloat(pair[0])
		qty, ok2 := toFloat(pair[1])
		if !ok1 || !ok2 {
			continue
		}
		out = append(out, [2]float64{price, qty})
	}
	return out
}

func parseLevels(rows [][]interface{}) [][2]float64 {
	out := make([][2]float64, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		price, ok1 := toFloat(row[0])
		qty, ok2 := toFloat(row[1])
		if !ok1 || !ok2 {
			continue
		}
		out = append(out, [2]float64{price, qty})
	}
	return out
}

// toFloat accepts the number-or-string encoding feeds use
// interchangeably.
func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func tradeID(v interface{}) string {
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		return strconv.FormatInt(int64(t), 10)
	}
	return uuid.NewString()
}

func sideFromMaker(isBuyerMaker bool) domain.Side {
	// Buyer-is-maker means the aggressor sold.
	if isBuyerMaker {
		return domain.SideSell
	}
	return domain.SideBuy
}
