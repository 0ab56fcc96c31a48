package exchange

import (
	"context"

	"github.com/rs/zerolog"

	"papertrade-go/internal/market"
	"papertrade-go/internal/metrics"
	"papertrade-go/internal/model"
	"papertrade-go/internal/state"
)

// assetAccumulators builds candles for one asset at both OHLC resolutions.
type assetAccumulators struct {
	oneMin  *market.Accumulator
	fiveMin *market.Accumulator
}

// RunIngest consumes a tick stream and writes it into engine state: every
// tick into the raw tier, closed candles into their OHLC tiers, and each
// 5-minute close as a downsampled price point. Candle accumulation happens
// here, outside the state lock, which is taken per write only.
func RunIngest(ctx context.Context, st *state.State, ticks <-chan model.PriceTick, log zerolog.Logger) {
	accumulators := make(map[string]*assetAccumulators)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("ingestion stopped")
			return
		case tick := <-ticks:
			st.IngestTick(tick)
			metrics.TicksTotal.WithLabelValues(tick.Asset).Inc()

			acc := accumulators[tick.Asset]
			if acc == nil {
				acc = &assetAccumulators{
					oneMin:  market.NewAccumulator(tick.Asset, market.TicksPerMinuteCandle),
					fiveMin: market.NewAccumulator(tick.Asset, market.TicksPerFiveMinuteCandle),
				}
				accumulators[tick.Asset] = acc
			}

			if candle, ok := acc.oneMin.Push(tick); ok {
				st.IngestCandle(candle, market.TicksPerMinuteCandle)
				metrics.CandlesTotal.WithLabelValues(tick.Asset, "1m").Inc()
			}
			if candle, ok := acc.fiveMin.Push(tick); ok {
				st.IngestCandle(candle, market.TicksPerFiveMinuteCandle)
				st.IngestFiveMinuteTick(model.PriceTick{
					Timestamp: tick.Timestamp,
					Asset:     tick.Asset,
					Price:     candle.Close,
				})
				metrics.CandlesTotal.WithLabelValues(tick.Asset, "5m").Inc()
			}
		}
	}
}
