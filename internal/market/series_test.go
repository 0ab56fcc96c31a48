package market

import (
	"testing"
	"time"

	"papertrade-go/internal/model"
)

func tick(asset string, price float64, offset int) model.PriceTick {
	return model.PriceTick{
		Timestamp: time.Unix(int64(1700000000+offset*5), 0),
		Asset:     asset,
		Price:     price,
	}
}

func TestTickSeriesWindowOrder(t *testing.T) {
	series := NewTickSeries(10)
	series.Append(tick("BTC", 100, 0))
	series.Append(tick("ETH", 10, 1))
	series.Append(tick("BTC", 101, 2))
	series.Append(tick("BTC", 102, 3))

	window := series.Window("BTC", 2)
	if len(window) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(window))
	}
	if window[0].Price != 101 || window[1].Price != 102 {
		t.Fatalf("expected chronological order [101 102], got [%v %v]", window[0].Price, window[1].Price)
	}

	window = series.Window("BTC", 50)
	if len(window) != 3 {
		t.Fatalf("expected all 3 BTC entries, got %d", len(window))
	}
}

func TestTickSeriesLatest(t *testing.T) {
	series := NewTickSeries(10)
	if _, ok := series.Latest("BTC"); ok {
		t.Fatal("expected no data for empty series")
	}

	series.Append(tick("BTC", 100, 0))
	series.Append(tick("ETH", 10, 1))
	series.Append(tick("BTC", 105, 2))

	latest, ok := series.Latest("BTC")
	if !ok || latest.Price != 105 {
		t.Fatalf("expected latest 105, got %v ok=%v", latest.Price, ok)
	}
}

func TestTickSeriesEvictionIsPerAsset(t *testing.T) {
	series := NewTickSeries(3)
	series.Append(tick("ETH", 10, 0))
	for i := 0; i < 10; i++ {
		series.Append(tick("BTC", float64(100+i), i+1))
	}

	if got := series.Count("BTC"); got != 3 {
		t.Fatalf("BTC count %d exceeds capacity 3", got)
	}
	// the quiet asset keeps its single entry despite the noisy neighbor
	if got := series.Count("ETH"); got != 1 {
		t.Fatalf("expected ETH to keep its entry, count=%d", got)
	}

	window := series.Window("BTC", 10)
	if len(window) != 3 {
		t.Fatalf("expected 3 surviving BTC entries, got %d", len(window))
	}
	if window[0].Price != 107 || window[2].Price != 109 {
		t.Fatalf("expected oldest entries evicted first, got window %v", window)
	}
}

func TestTickSeriesNeverExceedsCapacity(t *testing.T) {
	series := NewTickSeries(5)
	for i := 0; i < 500; i++ {
		series.Append(tick("BTC", float64(i), i))
		series.Append(tick("ETH", float64(i), i))
		if series.Count("BTC") > 5 || series.Count("ETH") > 5 {
			t.Fatalf("capacity exceeded at step %d", i)
		}
	}
}

func TestCandleSeriesBounded(t *testing.T) {
	series := NewCandleSeries(2)
	for i := 0; i < 5; i++ {
		series.Append(model.Candle{
			Timestamp: time.Unix(int64(1700000000+i*60), 0),
			Asset:     "BTC",
			Open:      float64(100 + i),
			Close:     float64(101 + i),
		})
	}
	if got := series.Count("BTC"); got != 2 {
		t.Fatalf("expected 2 candles, got %d", got)
	}
	window := series.Window("BTC", 10)
	if window[0].Open != 103 || window[1].Open != 104 {
		t.Fatalf("expected two newest candles, got %v", window)
	}
}
