// Package exchange hosts the price-feed collaborators: spot/candle fetching,
// historical backfill, and the ingestion loop feeding engine state.
package exchange

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"papertrade-go/internal/model"
)

const (
	// ProviderStub emits deterministic synthetic ticks (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderCoinbase polls the Coinbase HTTP API on a fixed cadence.
	ProviderCoinbase = "coinbase"
	// ProviderCoinbaseWS streams live ticker updates from the Coinbase websocket feed.
	ProviderCoinbaseWS = "coinbase-ws"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultWSURL        = "wss://ws-feed.exchange.coinbase.com"
)

// Feed is a pluggable market data stream covering a fixed set of assets, all
// priced against the reference currency.
type Feed struct {
	provider     string
	assets       []string
	log          zerolog.Logger
	pollInterval time.Duration
	client       *Client
	wsURL        string
	backfill     bool
	mu           sync.RWMutex
}

// Option configures Feed construction parameters.
type Option func(*Feed)

// WithPollInterval overrides the default polling cadence.
func WithPollInterval(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.pollInterval = d
		}
	}
}

// WithClient injects the HTTP client used for spot and candle fetches.
func WithClient(c *Client) Option {
	return func(f *Feed) {
		if c != nil {
			f.client = c
		}
	}
}

// WithWSURL overrides the websocket endpoint.
func WithWSURL(url string) Option {
	return func(f *Feed) {
		if url != "" {
			f.wsURL = url
		}
	}
}

// WithBackfill toggles the one-hour historical backfill performed before
// polling begins.
func WithBackfill(enabled bool) Option {
	return func(f *Feed) { f.backfill = enabled }
}

// NewFeed constructs a feed backed by the requested provider.
func NewFeed(provider string, assets []string, log zerolog.Logger, opts ...Option) *Feed {
	if provider == "" {
		provider = ProviderStub
	}
	f := &Feed{
		provider:     strings.ToLower(provider),
		log:          log,
		pollInterval: defaultPollInterval,
		client:       NewClient(),
		wsURL:        defaultWSURL,
		backfill:     true,
	}
	f.setAssets(assets)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Feed) setAssets(assets []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	unique := make(map[string]struct{}, len(assets))
	for _, asset := range assets {
		asset = strings.ToUpper(strings.TrimSpace(asset))
		if asset == "" || asset == model.ReferenceAsset {
			continue
		}
		unique[asset] = struct{}{}
	}
	f.assets = f.assets[:0]
	for asset := range unique {
		f.assets = append(f.assets, asset)
	}
	sort.Strings(f.assets)
}

func (f *Feed) snapshotAssets() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.assets))
	copy(out, f.assets)
	return out
}

// Run pushes ticks onto the provided channel until the context is canceled.
func (f *Feed) Run(ctx context.Context, out chan<- model.PriceTick) error {
	switch f.provider {
	case ProviderCoinbase:
		return f.runCoinbase(ctx, out)
	case ProviderCoinbaseWS:
		return f.runCoinbaseWS(ctx, out)
	default:
		return f.runStub(ctx, out)
	}
}

// runStub emits a slowly drifting synthetic price for every tracked asset.
func (f *Feed) runStub(ctx context.Context, out chan<- model.PriceTick) error {
	interval := f.pollInterval
	if interval > 500*time.Millisecond {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	px := 100.0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ts := <-ticker.C:
			px += 0.1
			for _, asset := range f.snapshotAssets() {
				tick := model.PriceTick{Timestamp: ts, Asset: asset, Price: px}
				select {
				case out <- tick:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}
