package domain

// PairConfig describes a traded pair: minimum order size and display
// precision, used by the order-entry surface for prefill.
type PairConfig struct {
	Symbol         string  `json:"symbol"`
	Base           string  `json:"base"`
	Quote          string  `json:"quote"`
	MinAmount      float64 `json:"min_amount"`
	PriceDecimals  int     `json:"price_decimals"`
	AmountDecimals int     `json:"amount_decimals"`
}

var pairs = map[string]PairConfig{
	"AMR/NVR":  {Symbol: "AMR/NVR", Base: "AMR", Quote: "NVR", MinAmount: 0.1, PriceDecimals: 2, AmountDecimals: 4},
	"IONX/NVR": {Symbol: "IONX/NVR", Base: "IONX", Quote: "NVR", MinAmount: 1, PriceDecimals: 4, AmountDecimals: 2},
	"AMR/IONX": {Symbol: "AMR/IONX", Base: "AMR", Quote: "IONX", MinAmount: 0.01, PriceDecimals: 4, AmountDecimals: 4},
}

func LookupPair(symbol string) (PairConfig, bool) {
	p, ok := pairs[symbol]
	return p, ok
}

func Pairs() []PairConfig {
	out := make([]PairConfig, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p)
	}
	return out
}
