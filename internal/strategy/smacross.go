package strategy

import (
	"math"

	"papertrade-go/internal/indicator"
)

const (
	defaultShortPeriod = 5
	defaultLongPeriod  = 20
)

// SMACross trades moving-average crossovers over the supervision-tick price
// stream: a buy when the short SMA crosses above the long SMA, a sell on the
// opposite cross. Trade size follows the same 1%-of-stoploss convention as
// the momentum strategy.
type SMACross struct {
	stepQuote   float64
	shortPeriod int
	longPeriod  int

	history *priceHistory
	// lastAbove remembers the relation at the previous tick so only a
	// genuine cross trades, not every tick spent on one side.
	lastAbove    bool
	hasLastAbove bool
}

// NewSMACross builds an SMA crossover strategy with the given periods.
func NewSMACross(stoplossAmount float64, short, long int) *SMACross {
	if short < 1 || long <= short {
		short, long = defaultShortPeriod, defaultLongPeriod
	}
	return &SMACross{
		stepQuote:   stoplossAmount * 0.01,
		shortPeriod: short,
		longPeriod:  long,
		history:     newPriceHistory(long * 2),
	}
}

// Name returns the registry identifier.
func (s *SMACross) Name() string { return "sma_cross" }

// Tick records the current price and emits a decision on crossovers.
func (s *SMACross) Tick(ctx Context) Decision {
	s.history.push(ctx.CurrentPrice)
	if !s.history.hasAtLeast(s.longPeriod) {
		return Decision{Action: DoNothing}
	}

	prices := s.history.lastN(s.longPeriod * 2)
	short := latestValid(indicator.SMA(prices, s.shortPeriod))
	long := latestValid(indicator.SMA(prices, s.longPeriod))
	if math.IsNaN(short) || math.IsNaN(long) || short == long {
		return Decision{Action: DoNothing}
	}

	above := short > long
	defer func() {
		s.lastAbove = above
		s.hasLastAbove = true
	}()

	if !s.hasLastAbove || above == s.lastAbove {
		return Decision{Action: DoNothing}
	}
	if above {
		return Decision{Action: Buy, QuoteAmount: s.stepQuote}
	}
	return Decision{Action: Sell, QuoteAmount: s.stepQuote}
}

func latestValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) {
			return series[i]
		}
	}
	return math.NaN()
}
