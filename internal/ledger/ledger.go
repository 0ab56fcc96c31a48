// Package ledger is the single entry point for every balance mutation:
// trades, deposits, and withdrawals. Each action validates and mutates the
// account inside one exclusive-lock critical section provided by the state
// layer, so a sufficient-balance check can never authorize a stale write.
package ledger

import (
	"time"

	"github.com/rs/zerolog"

	"papertrade-go/internal/metrics"
	"papertrade-go/internal/model"
	"papertrade-go/internal/state"
)

// Deposit bounds in reference-currency units.
const (
	DepositMin = 10.0
	DepositMax = 100000.0
)

const epsilon = 1e-9

// Ledger executes economic actions against shared engine state.
type Ledger struct {
	st  *state.State
	rec TransactionRecorder
	log zerolog.Logger
}

// New builds a ledger over the shared state. A nil recorder disables the
// audit trail.
func New(st *state.State, rec TransactionRecorder, log zerolog.Logger) *Ledger {
	return &Ledger{st: st, rec: rec, log: log}
}

// ExecuteTrade performs a manual trade of quantity units of base priced in
// quote at the current pair price.
func (l *Ledger) ExecuteTrade(userID, base, quote string, side model.Side, quantity float64) (model.Transaction, error) {
	return l.executeTrade(userID, base, quote, side, quantity, "")
}

// ExecuteBotTrade performs a trade on behalf of a bot, tagging the
// transaction with the strategy name for audit. Validation is identical to
// manual trades.
func (l *Ledger) ExecuteBotTrade(userID, base, quote string, side model.Side, quantity float64, strategyName string) (model.Transaction, error) {
	return l.executeTrade(userID, base, quote, side, quantity, strategyName)
}

func (l *Ledger) executeTrade(userID, base, quote string, side model.Side, quantity float64, executedBy string) (model.Transaction, error) {
	if quantity <= 0 {
		return model.Transaction{}, ErrInvalidQuantity
	}
	price, ok := l.st.PairPrice(base, quote)
	if !ok {
		return model.Transaction{}, ErrPriceUnavailable
	}

	tx := model.Transaction{
		UserID:        userID,
		Type:          model.TypeTrade,
		BaseAsset:     base,
		QuoteAsset:    quote,
		Side:          side,
		Quantity:      quantity,
		Price:         price,
		Timestamp:     time.Now().UTC(),
		BaseUSDPrice:  l.usdSnapshot(base),
		QuoteUSDPrice: l.usdSnapshot(quote),
		ExecutedBy:    executedBy,
	}

	cost := price * quantity
	err := l.st.UpdateUser(userID, func(account *model.Account) error {
		switch side {
		case model.Buy:
			if account.Balance(quote)+epsilon < cost {
				return ErrInsufficientFunds
			}
			account.Balances[quote] -= cost
			account.Balances[base] += quantity
		case model.Sell:
			if account.Balance(base)+epsilon < quantity {
				return ErrInsufficientAssets
			}
			account.Balances[base] -= quantity
			account.Balances[quote] += cost
		default:
			return ErrInvalidQuantity
		}
		account.History = append(account.History, tx)
		return nil
	})
	if err != nil {
		metrics.TradeRejectionsTotal.WithLabelValues(err.Error()).Inc()
		return model.Transaction{}, err
	}

	origin := "manual"
	if executedBy != "" {
		origin = "bot"
	}
	metrics.TradesTotal.WithLabelValues(string(side), origin).Inc()
	l.record(tx)
	l.log.Info().Str("user", userID).Str("pair", base+"/"+quote).
		Str("side", string(side)).Float64("qty", quantity).Float64("px", price).
		Str("by", executedBy).Msg("trade executed")
	return tx, nil
}

// Deposit credits the reference-currency balance. Amounts outside the
// [DepositMin, DepositMax] range are rejected without touching the account.
// Deposits are recorded as a Buy of the reference asset at price 1.
func (l *Ledger) Deposit(userID string, amount float64) (model.Transaction, error) {
	if amount < DepositMin {
		return model.Transaction{}, ErrDepositTooSmall
	}
	if amount > DepositMax {
		return model.Transaction{}, ErrDepositTooLarge
	}

	one := 1.0
	tx := model.Transaction{
		UserID:        userID,
		Type:          model.TypeDeposit,
		BaseAsset:     model.ReferenceAsset,
		QuoteAsset:    model.ReferenceAsset,
		Side:          model.Buy,
		Quantity:      amount,
		Price:         1.0,
		Timestamp:     time.Now().UTC(),
		BaseUSDPrice:  &one,
		QuoteUSDPrice: &one,
	}

	err := l.st.UpdateUser(userID, func(account *model.Account) error {
		account.Balances[model.ReferenceAsset] += amount
		account.History = append(account.History, tx)
		return nil
	})
	if err != nil {
		return model.Transaction{}, err
	}
	l.record(tx)
	l.log.Info().Str("user", userID).Float64("amount", amount).Msg("deposit")
	return tx, nil
}

// Withdraw debits the reference-currency balance, rejecting non-positive
// amounts and anything beyond the current balance. Withdrawals are recorded
// as a Sell of the reference asset at price 1.
func (l *Ledger) Withdraw(userID string, amount float64) (model.Transaction, error) {
	if amount <= 0 {
		return model.Transaction{}, ErrInvalidQuantity
	}

	one := 1.0
	tx := model.Transaction{
		UserID:        userID,
		Type:          model.TypeWithdrawal,
		BaseAsset:     model.ReferenceAsset,
		QuoteAsset:    model.ReferenceAsset,
		Side:          model.Sell,
		Quantity:      amount,
		Price:         1.0,
		Timestamp:     time.Now().UTC(),
		BaseUSDPrice:  &one,
		QuoteUSDPrice: &one,
	}

	err := l.st.UpdateUser(userID, func(account *model.Account) error {
		if amount > account.Balance(model.ReferenceAsset) {
			return ErrWithdrawalExceedsBalance
		}
		account.Balances[model.ReferenceAsset] -= amount
		account.History = append(account.History, tx)
		return nil
	})
	if err != nil {
		return model.Transaction{}, err
	}
	l.record(tx)
	l.log.Info().Str("user", userID).Float64("amount", amount).Msg("withdrawal")
	return tx, nil
}

// usdSnapshot captures the independent USD price of one trade leg for
// analytics. The reference asset is 1 by definition; an unpriceable leg is
// recorded as absent rather than zero.
func (l *Ledger) usdSnapshot(asset string) *float64 {
	price, ok := l.st.LatestPrice(asset)
	if !ok {
		return nil
	}
	return &price
}

func (l *Ledger) record(tx model.Transaction) {
	if l.rec != nil {
		l.rec.Record(tx)
	}
}
