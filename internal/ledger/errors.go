package ledger

import (
	"errors"

	"papertrade-go/internal/state"
)

// Validation failures returned to trade, deposit, and withdrawal callers.
// None of them leaves any balance or history partially applied.
var (
	ErrInvalidQuantity          = errors.New("quantity must be positive")
	ErrInsufficientFunds        = errors.New("insufficient quote balance")
	ErrInsufficientAssets       = errors.New("insufficient base balance")
	ErrPriceUnavailable         = errors.New("pair price unavailable")
	ErrDepositTooSmall          = errors.New("deposit below minimum")
	ErrDepositTooLarge          = errors.New("deposit above maximum")
	ErrWithdrawalExceedsBalance = errors.New("withdrawal exceeds balance")

	// ErrUserNotFound surfaces the state-level lookup failure unchanged so
	// callers only need one sentinel.
	ErrUserNotFound = state.ErrUserNotFound
)
