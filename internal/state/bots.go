package state

import (
	"context"
	"errors"
)

// ErrBotActive reports a start request for a user who already has a bot.
var ErrBotActive = errors.New("user already has an active bot")

// BotRecord supervises one running bot task. At most one exists per user;
// deleting the record is the cooperative stop signal the task polls each
// tick, and the cancel function is the hard abort issued at removal time.
type BotRecord struct {
	StrategyName          string
	BaseAsset             string
	QuoteAsset            string
	StoplossAmount        float64
	InitialPortfolioValue float64

	cancel context.CancelFunc
}

// RegisterBot stores a supervision record for the user, rejecting a second
// concurrent bot.
func (s *State) RegisterBot(userID string, record *BotRecord, cancel context.CancelFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bots[userID]; exists {
		return ErrBotActive
	}
	record.cancel = cancel
	s.bots[userID] = record
	return nil
}

// RemoveBot deletes the supervision record and hard-aborts the task. It
// reports whether a record existed.
func (s *State) RemoveBot(userID string) bool {
	s.mu.Lock()
	record, ok := s.bots[userID]
	if ok {
		delete(s.bots, userID)
	}
	s.mu.Unlock()

	if ok && record.cancel != nil {
		record.cancel()
	}
	return ok
}

// BotActive reports whether a supervision record exists for the user. Bot
// tasks poll this at the top of every tick.
func (s *State) BotActive(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.bots[userID]
	return ok
}

// BotStatus returns a copy of the user's supervision record, if any.
func (s *State) BotStatus(userID string) (BotRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.bots[userID]
	if !ok {
		return BotRecord{}, false
	}
	copied := *record
	copied.cancel = nil
	return copied, true
}
