// Package model standardizes payloads shared between the market data,
// ledger, and bot layers.
package model

import "time"

// ReferenceAsset is the quote currency every other asset is priced against.
const ReferenceAsset = "USD"

// DemoUserID identifies the throwaway account recreated in memory on every
// process start. It is never written to durable storage.
const DemoUserID = "demo_user"

// SeedBalance is the reference-currency balance granted to new accounts.
const SeedBalance = 10000.0

// PriceTick is a single timestamped price observation for one asset,
// immutable once created.
type PriceTick struct {
	Timestamp time.Time `json:"timestamp"`
	Asset     string    `json:"asset"`
	Price     float64   `json:"price"`
}

// Candle summarizes all ticks inside a fixed period. Timestamp marks the
// period start. A candle never changes once closed.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Asset     string    `json:"asset"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
}

// Side enumerates trade directions.
type Side string

const (
	// Buy acquires the base asset with the quote asset.
	Buy Side = "buy"
	// Sell disposes of the base asset for the quote asset.
	Sell Side = "sell"
)

// TransactionType tags the economic action a transaction records.
type TransactionType string

const (
	TypeTrade      TransactionType = "trade"
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
)

// Transaction is one append-only history entry. The USD snapshot fields are
// analytics-only: settlement math never reads them. A nil snapshot means the
// leg could not be priced in USD at execution time.
type Transaction struct {
	UserID        string          `json:"user_id"`
	Type          TransactionType `json:"type"`
	BaseAsset     string          `json:"base_asset"`
	QuoteAsset    string          `json:"quote_asset"`
	Side          Side            `json:"side"`
	Quantity      float64         `json:"quantity"`
	Price         float64         `json:"price"`
	Timestamp     time.Time       `json:"timestamp"`
	BaseUSDPrice  *float64        `json:"base_usd_price,omitempty"`
	QuoteUSDPrice *float64        `json:"quote_usd_price,omitempty"`
	ExecutedBy    string          `json:"executed_by,omitempty"`
}

// Account holds one user's balances and transaction history. All balance
// entries stay non-negative; history is append-only and insertion-ordered.
type Account struct {
	Username string             `json:"username"`
	Balances map[string]float64 `json:"balances"`
	History  []Transaction      `json:"history"`
}

// NewAccount builds a fresh account seeded with the starting USD balance.
func NewAccount(username string) *Account {
	return &Account{
		Username: username,
		Balances: map[string]float64{ReferenceAsset: SeedBalance},
		History:  nil,
	}
}

// Balance returns the entry for asset, zero when absent.
func (a *Account) Balance(asset string) float64 {
	return a.Balances[asset]
}

// Clone deep-copies the account so callers can release the state lock before
// handing it to slow collaborators.
func (a *Account) Clone() *Account {
	balances := make(map[string]float64, len(a.Balances))
	for asset, amount := range a.Balances {
		balances[asset] = amount
	}
	history := make([]Transaction, len(a.History))
	copy(history, a.History)
	return &Account{Username: a.Username, Balances: balances, History: history}
}
