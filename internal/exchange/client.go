package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"papertrade-go/internal/model"
)

const (
	defaultSpotBaseURL   = "https://api.coinbase.com/v2"
	defaultCandleBaseURL = "https://api.exchange.coinbase.com"
)

// Client fetches spot prices and historical candles from the Coinbase HTTP
// APIs. All prices are against the reference currency.
type Client struct {
	http          *http.Client
	spotBaseURL   string
	candleBaseURL string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithSpotBaseURL overrides the spot price endpoint (used by tests).
func WithSpotBaseURL(url string) ClientOption {
	return func(c *Client) { c.spotBaseURL = url }
}

// WithCandleBaseURL overrides the candle endpoint (used by tests).
func WithCandleBaseURL(url string) ClientOption {
	return func(c *Client) { c.candleBaseURL = url }
}

// NewClient builds a client against the public Coinbase endpoints.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:          &http.Client{Timeout: 10 * time.Second},
		spotBaseURL:   defaultSpotBaseURL,
		candleBaseURL: defaultCandleBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type spotResponse struct {
	Data struct {
		Amount string `json:"amount"`
	} `json:"data"`
}

// Spot fetches the current reference-currency price for an asset.
func (c *Client) Spot(ctx context.Context, asset string) (model.PriceTick, error) {
	url := fmt.Sprintf("%s/prices/%s-%s/spot", c.spotBaseURL, asset, model.ReferenceAsset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.PriceTick{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return model.PriceTick{}, fmt.Errorf("spot request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.PriceTick{}, fmt.Errorf("spot request: unexpected status %d", resp.StatusCode)
	}

	var payload spotResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.PriceTick{}, fmt.Errorf("decode spot response: %w", err)
	}
	price, err := strconv.ParseFloat(payload.Data.Amount, 64)
	if err != nil {
		return model.PriceTick{}, fmt.Errorf("parse spot price: %w", err)
	}
	return model.PriceTick{Timestamp: time.Now().UTC(), Asset: asset, Price: price}, nil
}

// Candles fetches historical OHLC candles between start and end at the given
// granularity in seconds, oldest first.
func (c *Client) Candles(ctx context.Context, asset string, start, end time.Time, granularitySecs int) ([]model.Candle, error) {
	url := fmt.Sprintf("%s/products/%s-%s/candles?granularity=%d&start=%s&end=%s",
		c.candleBaseURL, asset, model.ReferenceAsset, granularitySecs,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("candles request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("candles request: unexpected status %d", resp.StatusCode)
	}

	// Rows arrive newest first as [time, low, high, open, close, volume].
	var rows [][]float64
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode candles response: %w", err)
	}
	candles := make([]model.Candle, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		if len(row) < 5 {
			continue
		}
		candles = append(candles, model.Candle{
			Timestamp: time.Unix(int64(row[0]), 0).UTC(),
			Asset:     asset,
			Low:       row[1],
			High:      row[2],
			Open:      row[3],
			Close:     row[4],
		})
	}
	return candles, nil
}
