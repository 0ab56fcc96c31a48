// Package market holds the bounded multi-resolution price history backing
// every "current price" and window query in the engine. Series types are not
// safe for concurrent use on their own; the process-wide state lock guards
// them.
package market

import "papertrade-go/internal/model"

// TickSeries is a single chronological sequence of price ticks covering all
// assets, capped at a fixed number of entries per asset. Appending past the
// cap evicts the oldest entry for that asset only, so a quiet asset is never
// starved by a noisy one.
type TickSeries struct {
	capPerAsset int
	entries     []model.PriceTick
	counts      map[string]int
}

// NewTickSeries builds an empty series with the given per-asset capacity.
func NewTickSeries(capPerAsset int) *TickSeries {
	if capPerAsset < 1 {
		capPerAsset = 1
	}
	return &TickSeries{
		capPerAsset: capPerAsset,
		counts:      make(map[string]int),
	}
}

// Append inserts a tick, evicting that asset's oldest entry once the asset is
// at capacity.
func (s *TickSeries) Append(tick model.PriceTick) {
	if s.counts[tick.Asset] >= s.capPerAsset {
		s.evictOldest(tick.Asset)
	}
	s.entries = append(s.entries, tick)
	s.counts[tick.Asset]++
}

func (s *TickSeries) evictOldest(asset string) {
	for i, entry := range s.entries {
		if entry.Asset == asset {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.counts[asset]--
			return
		}
	}
}

// Latest returns the most recent tick for the asset, reporting false when no
// data has been ingested yet. Absence is deliberate: a zero price would
// corrupt trade economics downstream.
func (s *TickSeries) Latest(asset string) (model.PriceTick, bool) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Asset == asset {
			return s.entries[i], true
		}
	}
	return model.PriceTick{}, false
}

// Window returns up to limit entries for the asset in chronological order,
// oldest first. Fewer entries are returned when history is short.
func (s *TickSeries) Window(asset string, limit int) []model.PriceTick {
	if limit <= 0 {
		return nil
	}
	out := make([]model.PriceTick, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if s.entries[i].Asset == asset {
			out = append(out, s.entries[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Count reports how many entries the series currently holds for an asset.
func (s *TickSeries) Count(asset string) int { return s.counts[asset] }

// CandleSeries applies the same per-asset bounded discipline to closed OHLC
// candles.
type CandleSeries struct {
	capPerAsset int
	entries     []model.Candle
	counts      map[string]int
}

// NewCandleSeries builds an empty candle series with the given per-asset
// capacity.
func NewCandleSeries(capPerAsset int) *CandleSeries {
	if capPerAsset < 1 {
		capPerAsset = 1
	}
	return &CandleSeries{
		capPerAsset: capPerAsset,
		counts:      make(map[string]int),
	}
}

// Append inserts a closed candle, evicting that asset's oldest once at
// capacity.
func (s *CandleSeries) Append(candle model.Candle) {
	if s.counts[candle.Asset] >= s.capPerAsset {
		for i, entry := range s.entries {
			if entry.Asset == candle.Asset {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				s.counts[candle.Asset]--
				break
			}
		}
	}
	s.entries = append(s.entries, candle)
	s.counts[candle.Asset]++
}

// Window returns up to limit candles for the asset, oldest first.
func (s *CandleSeries) Window(asset string, limit int) []model.Candle {
	if limit <= 0 {
		return nil
	}
	out := make([]model.Candle, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if s.entries[i].Asset == asset {
			out = append(out, s.entries[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Count reports how many candles the series holds for an asset.
func (s *CandleSeries) Count(asset string) int { return s.counts[asset] }
