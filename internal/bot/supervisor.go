// Package bot supervises autonomous trading tasks: one scheduled task per
// user, each reading market state, invoking its strategy, trading through
// the ledger, and enforcing a hard stoploss.
package bot

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"papertrade-go/internal/ledger"
	"papertrade-go/internal/metrics"
	"papertrade-go/internal/model"
	"papertrade-go/internal/state"
	"papertrade-go/internal/strategy"
)

const (
	// DefaultTickInterval is the supervision cadence, independent of price
	// ingestion.
	DefaultTickInterval = 60 * time.Second
	// ContextWindowSize covers the longest strategy lookback (1h of raw 5s
	// ticks).
	ContextWindowSize = 720
)

// ErrInvalidStoploss rejects non-positive stoploss amounts at start time.
var ErrInvalidStoploss = errors.New("stoploss amount must be positive")

// Supervisor starts and stops bot tasks against shared engine state.
type Supervisor struct {
	st           *state.State
	ledger       *ledger.Ledger
	log          zerolog.Logger
	tickInterval time.Duration
}

// NewSupervisor builds a supervisor ticking at the default cadence.
func NewSupervisor(st *state.State, lg *ledger.Ledger, log zerolog.Logger) *Supervisor {
	return &Supervisor{st: st, ledger: lg, log: log, tickInterval: DefaultTickInterval}
}

// WithTickInterval overrides the supervision cadence. Used by tests.
func (s *Supervisor) WithTickInterval(d time.Duration) *Supervisor {
	if d > 0 {
		s.tickInterval = d
	}
	return s
}

// Start launches a bot task for the user. It rejects a second bot for the
// same user, an unknown strategy, an unknown user, and a non-positive
// stoploss. The initial portfolio value captured here is the stoploss
// baseline for the bot's whole life.
func (s *Supervisor) Start(userID, strategyName, baseAsset, quoteAsset string, stoplossAmount float64) error {
	if stoplossAmount <= 0 {
		return ErrInvalidStoploss
	}
	strat, err := strategy.Build(strategyName, stoplossAmount)
	if err != nil {
		return err
	}
	initialValue, err := s.st.PortfolioValueUSD(userID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	record := &state.BotRecord{
		StrategyName:          strat.Name(),
		BaseAsset:             baseAsset,
		QuoteAsset:            quoteAsset,
		StoplossAmount:        stoplossAmount,
		InitialPortfolioValue: initialValue,
	}
	if err := s.st.RegisterBot(userID, record, cancel); err != nil {
		cancel()
		return err
	}

	s.log.Info().Str("user", userID).Str("strategy", strat.Name()).
		Str("pair", baseAsset+"/"+quoteAsset).Float64("stoploss", stoplossAmount).
		Float64("initial_value", initialValue).Msg("bot started")

	go s.run(ctx, userID, strat, record)
	return nil
}

// Stop removes the user's supervision record and hard-aborts its task. It
// reports whether a bot was running.
func (s *Supervisor) Stop(userID string) bool {
	stopped := s.st.RemoveBot(userID)
	if stopped {
		metrics.BotStopsTotal.WithLabelValues("user_request").Inc()
		s.log.Info().Str("user", userID).Msg("bot stopped by user")
	}
	return stopped
}

// run is the per-bot supervision loop. Stopping is cooperative at the top of
// each tick; the context cancel fires when the record is removed, so no
// ledger write can land after a stop request even mid-tick.
func (s *Supervisor) run(ctx context.Context, userID string, strat strategy.Strategy, record *state.BotRecord) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	var tickCount uint64
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Str("user", userID).Msg("bot task aborted")
			return
		case <-ticker.C:
		}

		if !s.st.BotActive(userID) {
			s.log.Info().Str("user", userID).Msg("supervision record gone, bot task exiting")
			return
		}

		metrics.BotTicksTotal.WithLabelValues(strat.Name()).Inc()
		if !s.step(ctx, userID, strat, record, tickCount) {
			return
		}
		tickCount++
	}
}

// step executes one supervision tick: context assembly, strategy decision,
// validated execution, stoploss check. It reports whether the bot should
// keep running.
func (s *Supervisor) step(ctx context.Context, userID string, strat strategy.Strategy, record *state.BotRecord, tickCount uint64) bool {
	sctx, err := s.assembleContext(userID, record, tickCount)
	if err != nil {
		s.deregister(userID, strat.Name(), "context assembly failed: "+err.Error())
		return false
	}

	decision := strat.Tick(sctx)
	s.log.Info().Str("user", userID).Str("strategy", strat.Name()).
		Uint64("tick", tickCount).Float64("px", sctx.CurrentPrice).
		Str("decision", decision.String()).Msg("bot tick")

	if ctx.Err() != nil {
		return false
	}
	if !s.execute(userID, strat.Name(), record, sctx, decision) {
		return false
	}

	value, err := s.st.PortfolioValueUSD(userID)
	if err != nil {
		s.deregister(userID, strat.Name(), "portfolio valuation failed: "+err.Error())
		return false
	}
	if loss := record.InitialPortfolioValue - value; loss >= record.StoplossAmount {
		s.log.Warn().Str("user", userID).Float64("loss", loss).
			Float64("limit", record.StoplossAmount).Msg("stoploss breached")
		s.deregisterReason(userID, strat.Name(), "stoploss")
		return false
	}
	return true
}

func (s *Supervisor) assembleContext(userID string, record *state.BotRecord, tickCount uint64) (strategy.Context, error) {
	window := s.st.TickWindow(record.BaseAsset, ContextWindowSize)
	if len(window) == 0 {
		return strategy.Context{}, errors.New("no price data for " + record.BaseAsset)
	}
	price, ok := s.st.PairPrice(record.BaseAsset, record.QuoteAsset)
	if !ok {
		return strategy.Context{}, errors.New("pair price unavailable for " + record.BaseAsset + "/" + record.QuoteAsset)
	}
	account, ok := s.st.GetUser(userID)
	if !ok {
		return strategy.Context{}, state.ErrUserNotFound
	}
	return strategy.Context{
		Window:       window,
		BaseBalance:  account.Balance(record.BaseAsset),
		QuoteBalance: account.Balance(record.QuoteAsset),
		CurrentPrice: price,
		BaseAsset:    record.BaseAsset,
		QuoteAsset:   record.QuoteAsset,
		TickCount:    tickCount,
	}, nil
}

// execute validates and applies a decision. A buy the account cannot afford
// is a configuration fault and stops the bot; a sell without holdings is an
// expected skip (a fresh bot owns no base asset yet). It reports whether the
// bot should keep running.
func (s *Supervisor) execute(userID, strategyName string, record *state.BotRecord, sctx strategy.Context, decision strategy.Decision) bool {
	switch decision.Action {
	case strategy.DoNothing:
		return true

	case strategy.Buy:
		quantity := decision.QuoteAmount / sctx.CurrentPrice
		_, err := s.ledger.ExecuteBotTrade(userID, record.BaseAsset, record.QuoteAsset, model.Buy, quantity, strategyName)
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			s.log.Warn().Str("user", userID).Float64("want", decision.QuoteAmount).
				Msg("bot buy exceeds quote balance")
			s.deregisterReason(userID, strategyName, "insufficient_funds")
			return false
		}
		if err != nil {
			s.deregister(userID, strategyName, "execution error: "+err.Error())
			return false
		}
		return true

	case strategy.Sell:
		quantity := decision.QuoteAmount / sctx.CurrentPrice
		_, err := s.ledger.ExecuteBotTrade(userID, record.BaseAsset, record.QuoteAsset, model.Sell, quantity, strategyName)
		if errors.Is(err, ledger.ErrInsufficientAssets) {
			s.log.Debug().Str("user", userID).Float64("qty", quantity).
				Msg("bot holds too little base asset, skipping tick")
			return true
		}
		if err != nil {
			s.deregister(userID, strategyName, "execution error: "+err.Error())
			return false
		}
		return true

	default:
		s.deregister(userID, strategyName, "unknown decision")
		return false
	}
}

func (s *Supervisor) deregister(userID, strategyName, reason string) {
	s.log.Error().Str("user", userID).Str("strategy", strategyName).
		Str("reason", reason).Msg("bot stopped")
	metrics.BotStopsTotal.WithLabelValues("error").Inc()
	s.st.RemoveBot(userID)
}

func (s *Supervisor) deregisterReason(userID, strategyName, reason string) {
	metrics.BotStopsTotal.WithLabelValues(reason).Inc()
	s.log.Warn().Str("user", userID).Str("strategy", strategyName).
		Str("reason", reason).Msg("bot stopped")
	s.st.RemoveBot(userID)
}
