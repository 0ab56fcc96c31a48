package strategy

// Momentum buys after three consecutive price rises and sells after three
// consecutive falls, then sits out a fixed cooldown. Each trade is worth 1%
// of the configured stoploss amount in quote units.
type Momentum struct {
	stepQuote float64

	history  *priceHistory
	cooldown int

	totalBuys  int
	totalSells int
	lastAction string
}

const (
	momentumHistorySize = 10
	momentumLookback    = 3
	momentumCooldown    = 3
)

// NewMomentum builds the reference momentum strategy for the given stoploss
// amount.
func NewMomentum(stoplossAmount float64) *Momentum {
	return &Momentum{
		stepQuote:  stoplossAmount * 0.01,
		history:    newPriceHistory(momentumHistorySize),
		lastAction: "initialized",
	}
}

// Name returns the registry identifier.
func (m *Momentum) Name() string { return "momentum" }

// Tick records the current price and emits a decision. Flat or mixed price
// sequences never trigger a trade.
func (m *Momentum) Tick(ctx Context) Decision {
	m.history.push(ctx.CurrentPrice)

	if m.cooldown > 0 {
		m.cooldown--
		m.lastAction = "cooldown"
		return Decision{Action: DoNothing}
	}
	if !m.history.hasAtLeast(momentumLookback) {
		m.lastAction = "warming up"
		return Decision{Action: DoNothing}
	}

	recent := m.history.lastN(momentumLookback)
	switch {
	case recent[1] > recent[0] && recent[2] > recent[1]:
		m.cooldown = momentumCooldown
		m.totalBuys++
		m.lastAction = "buy"
		return Decision{Action: Buy, QuoteAmount: m.stepQuote}
	case recent[1] < recent[0] && recent[2] < recent[1]:
		m.cooldown = momentumCooldown
		m.totalSells++
		m.lastAction = "sell"
		return Decision{Action: Sell, QuoteAmount: m.stepQuote}
	default:
		m.lastAction = "no trend"
		return Decision{Action: DoNothing}
	}
}

// priceHistory is a bounded FIFO of observed prices shared by strategies
// that track recent movement.
type priceHistory struct {
	prices  []float64
	maxSize int
}

func newPriceHistory(maxSize int) *priceHistory {
	return &priceHistory{maxSize: maxSize}
}

func (h *priceHistory) push(price float64) {
	h.prices = append(h.prices, price)
	if len(h.prices) > h.maxSize {
		h.prices = h.prices[1:]
	}
}

func (h *priceHistory) hasAtLeast(n int) bool { return len(h.prices) >= n }

func (h *priceHistory) lastN(n int) []float64 {
	if n > len(h.prices) {
		n = len(h.prices)
	}
	return h.prices[len(h.prices)-n:]
}
