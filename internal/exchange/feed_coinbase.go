package exchange

import (
	"context"
	"errors"
	"math"
	"time"

	"papertrade-go/internal/model"
)

const (
	backfillWindow    = time.Hour
	backfillStepSecs  = 5
	syntheticPoints   = 720 // one hour at 5s spacing
	candleGranularity = 60  // minute candles from the feed
)

// runCoinbase runs one independent backfill-then-poll task per asset; a
// failed fetch is logged and skipped, never fatal to the loop.
func (f *Feed) runCoinbase(ctx context.Context, out chan<- model.PriceTick) error {
	assets := f.snapshotAssets()
	if len(assets) == 0 {
		return errors.New("coinbase feed requires at least one asset")
	}

	done := make(chan error, len(assets))
	for _, asset := range assets {
		go func(asset string) {
			done <- f.pollAsset(ctx, asset, out)
		}(asset)
	}

	var err error
	for range assets {
		err = <-done
	}
	return err
}

func (f *Feed) pollAsset(ctx context.Context, asset string, out chan<- model.PriceTick) error {
	if f.backfill {
		f.backfillAsset(ctx, asset, out)
	}

	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	f.log.Info().Str("asset", asset).Dur("interval", f.pollInterval).Msg("price polling started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tick, err := f.client.Spot(ctx, asset)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				f.log.Warn().Err(err).Str("asset", asset).Msg("spot fetch failed")
				continue
			}
			select {
			case out <- tick:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// backfillAsset seeds the store with the last hour of history so strategies
// and indicators have lookback from the first real tick. Real candles are
// interpolated to the 5s cadence; if the feed is down, a deterministic
// pseudo-trend seeded by the spot price stands in, so the store is never
// left empty.
func (f *Feed) backfillAsset(ctx context.Context, asset string, out chan<- model.PriceTick) {
	now := time.Now().UTC()
	candles, err := f.client.Candles(ctx, asset, now.Add(-backfillWindow), now, candleGranularity)
	if err == nil && len(candles) > 0 {
		points := interpolateCandles(asset, candles, backfillStepSecs)
		f.log.Info().Str("asset", asset).Int("candles", len(candles)).
			Int("points", len(points)).Msg("backfilled historical prices")
		emitAll(ctx, points, out)
		return
	}
	if ctx.Err() != nil {
		return
	}
	f.log.Warn().Err(err).Str("asset", asset).Msg("historical backfill failed, using synthetic data")

	spot, err := f.client.Spot(ctx, asset)
	if err != nil {
		f.log.Error().Err(err).Str("asset", asset).Msg("spot fetch for synthetic backfill failed")
		return
	}
	emitAll(ctx, syntheticSeries(asset, spot.Price, now), out)
	f.log.Info().Str("asset", asset).Msg("backfilled with synthetic data")
}

func emitAll(ctx context.Context, ticks []model.PriceTick, out chan<- model.PriceTick) {
	for _, tick := range ticks {
		select {
		case out <- tick:
		case <-ctx.Done():
			return
		}
	}
}

// interpolateCandles expands candle closes into a linear price path sampled
// every stepSecs seconds, oldest first.
func interpolateCandles(asset string, candles []model.Candle, stepSecs int) []model.PriceTick {
	if len(candles) == 0 {
		return nil
	}
	step := time.Duration(stepSecs) * time.Second
	var out []model.PriceTick
	for i := 0; i < len(candles)-1; i++ {
		from, to := candles[i], candles[i+1]
		span := to.Timestamp.Sub(from.Timestamp)
		if span <= 0 {
			continue
		}
		steps := int(span / step)
		for j := 0; j < steps; j++ {
			frac := float64(j) / float64(steps)
			out = append(out, model.PriceTick{
				Timestamp: from.Timestamp.Add(time.Duration(j) * step),
				Asset:     asset,
				Price:     from.Close + (to.Close-from.Close)*frac,
			})
		}
	}
	last := candles[len(candles)-1]
	out = append(out, model.PriceTick{Timestamp: last.Timestamp, Asset: asset, Price: last.Close})
	return out
}

// syntheticSeries derives an hour of plausible history from one spot price:
// a slow trend, a shorter oscillation, and small noise, all deterministic
// functions of the index.
func syntheticSeries(asset string, basePrice float64, now time.Time) []model.PriceTick {
	out := make([]model.PriceTick, 0, syntheticPoints)
	for i := syntheticPoints - 1; i >= 0; i-- {
		trend := math.Sin(float64(i)/100.0) * basePrice * 0.01
		shortTerm := math.Sin(float64(i)/20.0) * basePrice * 0.005
		noise := math.Sin(float64(i*7)) * basePrice * 0.0002
		out = append(out, model.PriceTick{
			Timestamp: now.Add(-time.Duration(i*backfillStepSecs) * time.Second),
			Asset:     asset,
			Price:     basePrice + trend + shortTerm + noise,
		})
	}
	return out
}
