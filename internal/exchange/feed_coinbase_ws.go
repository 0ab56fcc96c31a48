package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"papertrade-go/internal/model"
)

type coinbaseSubscribe struct {
	Type       string   `json:"type"`
	ProductIDs []string `json:"product_ids"`
	Channels   []string `json:"channels"`
}

type coinbaseTicker struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id"`
	Price     string `json:"price"`
	Time      string `json:"time"`
}

func (f *Feed) runCoinbaseWS(ctx context.Context, out chan<- model.PriceTick) error {
	assets := f.snapshotAssets()
	if len(assets) == 0 {
		return errors.New("coinbase websocket feed requires at least one asset")
	}

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := f.consumeCoinbaseStream(ctx, assets, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Warn().Err(err).Msg("coinbase feed disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (f *Feed) consumeCoinbaseStream(ctx context.Context, assets []string, out chan<- model.PriceTick) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, f.wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	products := make([]string, len(assets))
	for i, asset := range assets {
		products[i] = asset + "-" + model.ReferenceAsset
	}
	sub := coinbaseSubscribe{Type: "subscribe", ProductIDs: products, Channels: []string{"ticker"}}
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}

	f.log.Info().Str("provider", ProviderCoinbaseWS).Strs("assets", assets).Msg("connected market data feed")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					f.log.Warn().Err(err).Msg("coinbase ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg coinbaseTicker
		if err := json.Unmarshal(message, &msg); err != nil {
			f.log.Warn().Err(err).Msg("failed to decode coinbase message")
			continue
		}
		if msg.Type != "ticker" || msg.Price == "" {
			continue
		}

		asset := parseProductAsset(msg.ProductID)
		px, err := strconv.ParseFloat(msg.Price, 64)
		if err != nil {
			f.log.Warn().Err(err).Msg("invalid price from coinbase")
			continue
		}
		ts := time.Now().UTC()
		if parsed, err := time.Parse(time.RFC3339Nano, msg.Time); err == nil {
			ts = parsed
		}

		tick := model.PriceTick{Timestamp: ts, Asset: asset, Price: px}
		select {
		case out <- tick:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func parseProductAsset(productID string) string {
	parts := strings.Split(productID, "-")
	if len(parts) == 0 || parts[0] == "" {
		return strings.ToUpper(productID)
	}
	return strings.ToUpper(parts[0])
}
