package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"papertrade-go/internal/model"
)

var (
	testStart = time.Unix(1700000000, 0).UTC()
	testEnd   = time.Unix(1700003600, 0).UTC()
)

func TestFeedNormalizesAssets(t *testing.T) {
	f := NewFeed(ProviderStub, []string{" btc ", "ETH", "btc", "USD", ""}, zerolog.Nop())
	got := f.snapshotAssets()
	want := []string{"BTC", "ETH"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestFeedDefaultsToStubProvider(t *testing.T) {
	f := NewFeed("", []string{"BTC"}, zerolog.Nop())
	if f.provider != ProviderStub {
		t.Fatalf("expected stub provider, got %s", f.provider)
	}
}

func TestStubFeedEmitsAllAssets(t *testing.T) {
	f := NewFeed(ProviderStub, []string{"BTC", "ETH"}, zerolog.Nop(),
		WithPollInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan model.PriceTick, 64)
	errCh := make(chan error, 1)
	go func() { errCh <- f.Run(ctx, out) }()

	seen := map[string]int{}
	deadline := time.After(2 * time.Second)
	for seen["BTC"] < 2 || seen["ETH"] < 2 {
		select {
		case tick := <-out:
			if tick.Price <= 0 {
				t.Fatalf("non-positive stub price %v", tick.Price)
			}
			seen[tick.Asset]++
		case <-deadline:
			t.Fatalf("timed out, seen %v", seen)
		}
	}

	cancel()
	if err := <-errCh; err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCoinbaseFeedRequiresAssets(t *testing.T) {
	f := NewFeed(ProviderCoinbase, nil, zerolog.Nop())
	out := make(chan model.PriceTick, 1)
	if err := f.Run(context.Background(), out); err == nil {
		t.Fatal("expected error for empty asset set")
	}
}

func TestInterpolateCandlesFillsGaps(t *testing.T) {
	candles := []model.Candle{
		{Timestamp: testStart, Asset: "BTC", Close: 100},
		{Timestamp: testStart.Add(time.Minute), Asset: "BTC", Close: 112},
	}
	points := interpolateCandles("BTC", candles, 5)

	// 12 interpolated steps plus the final close
	if len(points) != 13 {
		t.Fatalf("expected 13 points, got %d", len(points))
	}
	if points[0].Price != 100 {
		t.Fatalf("expected first point at 100, got %v", points[0].Price)
	}
	if points[len(points)-1].Price != 112 {
		t.Fatalf("expected last point at 112, got %v", points[len(points)-1].Price)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Price < points[i-1].Price {
			t.Fatalf("expected monotone rise, got %v before %v", points[i-1].Price, points[i].Price)
		}
		if !points[i-1].Timestamp.Before(points[i].Timestamp) {
			t.Fatal("timestamps must be strictly increasing")
		}
	}
}

func TestInterpolateCandlesSingleCandle(t *testing.T) {
	candles := []model.Candle{{Timestamp: testStart, Asset: "BTC", Close: 42}}
	points := interpolateCandles("BTC", candles, 5)
	if len(points) != 1 || points[0].Price != 42 {
		t.Fatalf("expected the lone close, got %v", points)
	}
}

func TestSyntheticSeriesShape(t *testing.T) {
	now := testEnd
	series := syntheticSeries("BTC", 50000, now)
	if len(series) != syntheticPoints {
		t.Fatalf("expected %d points, got %d", syntheticPoints, len(series))
	}
	for i, tick := range series {
		if tick.Asset != "BTC" {
			t.Fatalf("unexpected asset %s", tick.Asset)
		}
		// stays within a few percent of the base price
		if tick.Price < 50000*0.97 || tick.Price > 50000*1.03 {
			t.Fatalf("point %d out of band: %v", i, tick.Price)
		}
		if i > 0 && !series[i-1].Timestamp.Before(tick.Timestamp) {
			t.Fatal("timestamps must be strictly increasing")
		}
	}
	if !series[len(series)-1].Timestamp.Equal(now) {
		t.Fatal("series must end at the reference time")
	}

	again := syntheticSeries("BTC", 50000, now)
	for i := range series {
		if series[i].Price != again[i].Price {
			t.Fatal("synthetic series must be deterministic")
		}
	}
}
