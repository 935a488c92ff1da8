// Package feed implements the market-data collaborator: a websocket
// push channel plus the REST endpoints used for history and for
// polling while no push channel is open.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aynu/chartcore/internal/domain"
)

// disconnectNotifier is implemented by handlers that want to know when
// the push channel drops, so polling can take over.
type disconnectNotifier interface {
	OnDisconnect()
}

type Client struct {
	restBase string
	wsBase   string
	client   *http.Client
	dialer   *websocket.Dialer
	log      *zap.Logger
}

func NewClient(restBase, wsBase string, log *zap.Logger) *Client {
	return &Client{
		restBase: restBase,
		wsBase:   wsBase,
		client:   &http.Client{Timeout: 10 * time.Second},
		dialer:   websocket.DefaultDialer,
		log:      log,
	}
}

// Connect opens the push channel for symbol and pumps messages into h
// until stop is called or the connection drops.
func (c *Client) Connect(ctx context.Context, symbol string, h domain.FeedHandler) (func(), error) {
	u := fmt.Sprintf("%s?symbol=%s", c.wsBase, url.QueryEscape(symbol))
	conn, _, err := c.dialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}

	var once sync.Once
	stop := func() {
		once.Do(func() { conn.Close() })
	}

	go c.readLoop(conn, h, stop)
	return stop, nil
}

func (c *Client) readLoop(conn *websocket.Conn, h domain.FeedHandler, stop func()) {
	defer stop()
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			c.log.Debug("push channel closed", zap.Error(err))
			if dn, ok := h.(disconnectNotifier); ok {
				dn.OnDisconnect()
			}
			return
		}
		handleMessage(message, h)
	}
}

// --- REST ---

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.restBase+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed %s: status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// FetchHistory returns candles oldest-first for the requested
// timeframe; malformed rows are skipped.
func (c *Client) FetchHistory(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error) {
	path := fmt.Sprintf("/klines?symbol=%s&interval=%s&limit=%d", url.QueryEscape(symbol), interval, limit)
	var rows [][]interface{}
	if err := c.get(ctx, path, &rows); err != nil {
		return nil, err
	}

	candles := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		ts, ok := toFloat(row[0])
		if !ok {
			continue
		}
		open, ok1 := toFloat(row[1])
		high, ok2 := toFloat(row[2])
		low, ok3 := toFloat(row[3])
		close_, ok4 := toFloat(row[4])
		volume, ok5 := toFloat(row[5])
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			continue
		}
		candles = append(candles, domain.Candle{
			Time:   int64(ts),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close_,
			Volume: volume,
		})
	}
	return candles, nil
}

func (c *Client) FetchDepth(ctx context.Context, symbol string, limit int) ([][2]float64, [][2]float64, error) {
	path := fmt.Sprintf("/depth?symbol=%s&limit=%d", url.QueryEscape(symbol), limit)
	var result struct {
		Bids [][]interface{} `json:"bids"`
		Asks [][]interface{} `json:"asks"`
	}
	if err := c.get(ctx, path, &result); err != nil {
		return nil, nil, err
	}
	return parseLevels(result.Bids), parseLevels(result.Asks), nil
}

func (c *Client) FetchTicker(ctx context.Context, symbol string) (*domain.Ticker, error) {
	path := fmt.Sprintf("/ticker?symbol=%s", url.QueryEscape(symbol))
	var result struct {
		LastPrice          interface{} `json:"lastPrice"`
		PriceChangePercent interface{} `json:"priceChangePercent"`
		HighPrice          interface{} `json:"highPrice"`
		LowPrice           interface{} `json:"lowPrice"`
		Volume             interface{} `json:"volume"`
	}
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	last, ok := toFloat(result.LastPrice)
	if !ok {
		return nil, fmt.Errorf("ticker for %s: bad lastPrice", symbol)
	}
	change, _ := toFloat(result.PriceChangePercent)
	high, _ := toFloat(result.HighPrice)
	low, _ := toFloat(result.LowPrice)
	volume, _ := toFloat(result.Volume)
	return &domain.Ticker{
		Symbol:             symbol,
		LastPrice:          last,
		PriceChangePercent: change,
		High24h:            high,
		Low24h:             low,
		Volume24h:          volume,
	}, nil
}

func (c *Client) FetchTrades(ctx context.Context, symbol string, limit int) ([]domain.Trade, error) {
	path := fmt.Sprintf("/trades?symbol=%s&limit=%d", url.QueryEscape(symbol), limit)
	var rows []struct {
		ID           interface{} `json:"id"`
		Price        interface{} `json:"price"`
		Qty          interface{} `json:"qty"`
		IsBuyerMaker bool        `json:"isBuyerMaker"`
		Time         interface{} `json:"time"`
	}
	if err := c.get(ctx, path, &rows); err != nil {
		return nil, err
	}

	trades := make([]domain.Trade, 0, len(rows))
	for _, row := range rows {
		price, ok1 := toFloat(row.Price)
		qty, ok2 := toFloat(row.Qty)
		if !ok1 || !ok2 {
			continue
		}
		ts, _ := toFloat(row.Time)
		trades = append(trades, domain.Trade{
			ID:        tradeID(row.ID),
			Price:     price,
			Amount:    qty,
			Side:      sideFromMaker(row.IsBuyerMaker),
			Timestamp: int64(ts),
		})
		if len(trades) == limit {
			break
		}
	}
	return trades, nil
}
