package market

import "papertrade-go/internal/model"

// Ticks per closed candle at the 5s ingestion cadence.
const (
	TicksPerMinuteCandle     = 12
	TicksPerFiveMinuteCandle = 60
)

// Accumulator folds a live tick stream for one asset into OHLC candles. Open
// is the first price of the period, high/low are running extrema, close is
// the last price; on the period boundary the candle is closed and the
// accumulator resets. It lives with the ingestion task, outside the shared
// state lock.
type Accumulator struct {
	asset       string
	periodTicks int

	open, high, low, closePx float64
	start                    model.PriceTick
	count                    int
}

// NewAccumulator builds an accumulator closing a candle every periodTicks
// ticks.
func NewAccumulator(asset string, periodTicks int) *Accumulator {
	if periodTicks < 1 {
		periodTicks = 1
	}
	return &Accumulator{asset: asset, periodTicks: periodTicks}
}

// Push folds one tick in. When the tick completes a period the closed candle
// is returned and the accumulator resets; otherwise ok is false.
func (a *Accumulator) Push(tick model.PriceTick) (model.Candle, bool) {
	if a.count == 0 {
		a.start = tick
		a.open = tick.Price
		a.high = tick.Price
		a.low = tick.Price
	}
	if tick.Price > a.high {
		a.high = tick.Price
	}
	if tick.Price < a.low {
		a.low = tick.Price
	}
	a.closePx = tick.Price
	a.count++

	if a.count < a.periodTicks {
		return model.Candle{}, false
	}
	candle := model.Candle{
		Timestamp: a.start.Timestamp,
		Asset:     a.asset,
		Open:      a.open,
		High:      a.high,
		Low:       a.low,
		Close:     a.closePx,
	}
	a.count = 0
	return candle, true
}
