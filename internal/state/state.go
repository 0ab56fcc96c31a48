// Package state owns the single process-wide mutable object shared by price
// ingestion, trade execution, and bot supervision. One reader/writer mutex
// guards every tier of market history, every account, and the active-bot
// registry: readers run concurrently, any mutation serializes through the
// exclusive lock so balance checks and the mutations they authorize can never
// interleave with a competing writer.
package state

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"papertrade-go/internal/market"
	"papertrade-go/internal/model"
)

// Per-asset capacities for each resolution tier.
const (
	RawTickCapacity        = 17280 // 24h at 5s cadence
	FiveMinuteTickCapacity = 288   // 24h of 5m price points
	OneMinuteCandleCap     = 60    // 1h of 1m OHLC
	FiveMinuteCandleCap    = 288   // 24h of 5m OHLC
)

// ErrUserNotFound reports a lookup against an account that does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrUserExists reports an attempt to create a duplicate account.
var ErrUserExists = errors.New("user already exists")

// Persister mirrors an account to durable storage. Implementations are
// invoked outside the state lock, best-effort; a failed save never rolls back
// in-memory state.
type Persister interface {
	SaveAsync(userID string, account *model.Account)
}

// State is the shared engine state. Construct with New.
type State struct {
	mu sync.RWMutex

	rawTicks        *market.TickSeries
	fiveMinuteTicks *market.TickSeries
	oneMinCandles   *market.CandleSeries
	fiveMinCandles  *market.CandleSeries

	accounts map[string]*model.Account
	bots     map[string]*BotRecord

	persist Persister
	log     zerolog.Logger
}

// New builds engine state from accounts loaded out of durable storage. The
// demo account is always recreated fresh in memory, replacing any loaded row.
func New(loaded map[string]*model.Account, persist Persister, log zerolog.Logger) *State {
	accounts := make(map[string]*model.Account, len(loaded)+1)
	for id, account := range loaded {
		accounts[id] = account
	}
	accounts[model.DemoUserID] = model.NewAccount("Demo User")

	return &State{
		rawTicks:        market.NewTickSeries(RawTickCapacity),
		fiveMinuteTicks: market.NewTickSeries(FiveMinuteTickCapacity),
		oneMinCandles:   market.NewCandleSeries(OneMinuteCandleCap),
		fiveMinCandles:  market.NewCandleSeries(FiveMinuteCandleCap),
		accounts:        accounts,
		bots:            make(map[string]*BotRecord),
		persist:         persist,
		log:             log,
	}
}

// IngestTick appends a raw price tick.
func (s *State) IngestTick(tick model.PriceTick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawTicks.Append(tick)
}

// IngestFiveMinuteTick appends a downsampled 5-minute price point.
func (s *State) IngestFiveMinuteTick(tick model.PriceTick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fiveMinuteTicks.Append(tick)
}

// IngestCandle appends a closed OHLC candle to the matching resolution tier.
func (s *State) IngestCandle(candle model.Candle, periodTicks int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch periodTicks {
	case market.TicksPerFiveMinuteCandle:
		s.fiveMinCandles.Append(candle)
	default:
		s.oneMinCandles.Append(candle)
	}
}

// LatestPrice returns the most recent raw price for an asset. The reference
// asset is always worth exactly 1. Absence means the asset cannot be priced
// yet; callers must not substitute zero.
func (s *State) LatestPrice(asset string) (float64, bool) {
	if asset == model.ReferenceAsset {
		return 1.0, true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestPriceLocked(asset)
}

func (s *State) latestPriceLocked(asset string) (float64, bool) {
	if asset == model.ReferenceAsset {
		return 1.0, true
	}
	tick, ok := s.rawTicks.Latest(asset)
	if !ok {
		return 0, false
	}
	return tick.Price, true
}

// PairPrice prices base in quote units. Cross pairs triangulate through the
// reference asset. Either leg missing yields absence; this never divides by
// zero or extrapolates.
func (s *State) PairPrice(base, quote string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pairPriceLocked(base, quote)
}

func (s *State) pairPriceLocked(base, quote string) (float64, bool) {
	switch {
	case quote == model.ReferenceAsset:
		return s.latestPriceLocked(base)
	case base == model.ReferenceAsset:
		quotePx, ok := s.latestPriceLocked(quote)
		if !ok || quotePx == 0 {
			return 0, false
		}
		return 1 / quotePx, true
	default:
		basePx, okBase := s.latestPriceLocked(base)
		quotePx, okQuote := s.latestPriceLocked(quote)
		if !okBase || !okQuote || quotePx == 0 {
			return 0, false
		}
		return basePx / quotePx, true
	}
}

// TickWindow returns the last limit raw ticks for an asset, oldest first.
func (s *State) TickWindow(asset string, limit int) []model.PriceTick {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rawTicks.Window(asset, limit)
}

// FiveMinuteTickWindow returns the last limit 5-minute price points.
func (s *State) FiveMinuteTickWindow(asset string, limit int) []model.PriceTick {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fiveMinuteTicks.Window(asset, limit)
}

// CandleWindow returns the last limit closed candles at the requested
// resolution, oldest first.
func (s *State) CandleWindow(asset string, limit, periodTicks int) []model.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if periodTicks == market.TicksPerFiveMinuteCandle {
		return s.fiveMinCandles.Window(asset, limit)
	}
	return s.oneMinCandles.Window(asset, limit)
}

// CreateUser registers a new account seeded with the starting balance and
// mirrors it to durable storage.
func (s *State) CreateUser(userID, username string) error {
	s.mu.Lock()
	if _, exists := s.accounts[userID]; exists {
		s.mu.Unlock()
		return ErrUserExists
	}
	account := model.NewAccount(username)
	s.accounts[userID] = account
	snapshot := account.Clone()
	s.mu.Unlock()

	s.dispatchPersist(userID, snapshot)
	return nil
}

// GetUser returns a deep copy of the account, or false when it is unknown.
func (s *State) GetUser(userID string) (*model.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[userID]
	if !ok {
		return nil, false
	}
	return account.Clone(), true
}

// UpdateUser runs fn against the live account while holding the exclusive
// lock, so validation and the mutation it authorizes observe the same
// snapshot. If fn returns an error nothing is considered mutated and nothing
// is persisted; fn must not touch the account before its checks pass. On
// success the updated account is mirrored to storage asynchronously.
func (s *State) UpdateUser(userID string, fn func(*model.Account) error) error {
	s.mu.Lock()
	account, ok := s.accounts[userID]
	if !ok {
		s.mu.Unlock()
		return ErrUserNotFound
	}
	if err := fn(account); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := account.Clone()
	s.mu.Unlock()

	s.dispatchPersist(userID, snapshot)
	return nil
}

// dispatchPersist hands a snapshot to the durable store outside the lock.
// The demo account is memory-only and never mirrored.
func (s *State) dispatchPersist(userID string, snapshot *model.Account) {
	if s.persist == nil || userID == model.DemoUserID {
		return
	}
	s.persist.SaveAsync(userID, snapshot)
}

// PortfolioValueUSD totals every positive balance in reference-currency
// terms under one read lock, so balances and the prices marking them belong
// to the same instant. Assets with no price yet contribute zero and are
// logged.
func (s *State) PortfolioValueUSD(userID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	total := 0.0
	for asset, balance := range account.Balances {
		if balance <= 0 {
			continue
		}
		if asset == model.ReferenceAsset {
			total += balance
			continue
		}
		price, ok := s.latestPriceLocked(asset)
		if !ok {
			s.log.Warn().Str("asset", asset).Str("user", userID).
				Msg("no price for asset while valuing portfolio")
			continue
		}
		total += balance * price
	}
	return total, nil
}
