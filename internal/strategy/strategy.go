// Package strategy defines the decision interface bots implement and a
// closed registry of bundled implementations.
package strategy

import (
	"fmt"
	"strings"

	"papertrade-go/internal/model"
)

// Context is the immutable market/portfolio view handed to a strategy each
// supervision tick.
type Context struct {
	// Window holds the most recent raw ticks for the base asset, oldest
	// first, sized to cover the longest strategy lookback.
	Window []model.PriceTick

	BaseBalance  float64
	QuoteBalance float64
	CurrentPrice float64

	BaseAsset  string
	QuoteAsset string

	// TickCount counts supervision ticks since the bot started, 0-indexed.
	TickCount uint64
}

// Action enumerates what a strategy wants done this tick.
type Action int

const (
	DoNothing Action = iota
	Buy
	Sell
)

// Decision is a strategy's verdict for one tick. QuoteAmount is the desired
// trade size expressed in the quote asset; the supervisor converts it to a
// base quantity at the current price.
type Decision struct {
	Action      Action
	QuoteAmount float64
}

func (d Decision) String() string {
	switch d.Action {
	case Buy:
		return fmt.Sprintf("buy %.2f", d.QuoteAmount)
	case Sell:
		return fmt.Sprintf("sell %.2f", d.QuoteAmount)
	default:
		return "do nothing"
	}
}

// Strategy is a pure decision function over tick context. Implementations
// own their internal lookback state; they never touch shared engine state.
type Strategy interface {
	Tick(ctx Context) Decision
	Name() string
}

// Build constructs a strategy by registry name. The stoploss amount sizes
// per-trade steps. Unknown names are rejected so a bot never starts with a
// silently substituted strategy.
func Build(name string, stoplossAmount float64) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "momentum", "naive_momentum":
		return NewMomentum(stoplossAmount), nil
	case "sma_cross", "sma-cross":
		return NewSMACross(stoplossAmount, defaultShortPeriod, defaultLongPeriod), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}
