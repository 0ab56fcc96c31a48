// Package storage mirrors accounts to a sqlite database. The mirror is
// best-effort: in-memory state stays authoritative, failed saves are logged
// and counted, never retried, never rolled back.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"papertrade-go/internal/metrics"
	"papertrade-go/internal/model"
)

// userRow is the persisted shape of one account: balances and history are
// stored as JSON documents alongside the row key.
type userRow struct {
	UserID    string `gorm:"primaryKey;column:user_id"`
	Username  string `gorm:"column:username"`
	Balances  string `gorm:"column:balances"`
	History   string `gorm:"column:history"`
	UpdatedAt time.Time
}

func (userRow) TableName() string { return "users" }

// Store wraps the sqlite-backed user table.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open opens (creating if needed) the sqlite database at path and migrates
// the schema.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&userRow{}); err != nil {
		return nil, fmt.Errorf("migrate users table: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// LoadAll reads every persisted account into memory.
func (s *Store) LoadAll() (map[string]*model.Account, error) {
	var rows []userRow
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	accounts := make(map[string]*model.Account, len(rows))
	for _, row := range rows {
		account := &model.Account{Username: row.Username}
		if err := json.Unmarshal([]byte(row.Balances), &account.Balances); err != nil {
			s.log.Warn().Err(err).Str("user", row.UserID).Msg("corrupt balances document, resetting")
			account.Balances = make(map[string]float64)
		}
		if err := json.Unmarshal([]byte(row.History), &account.History); err != nil {
			s.log.Warn().Err(err).Str("user", row.UserID).Msg("corrupt history document, resetting")
			account.History = nil
		}
		accounts[row.UserID] = account
	}
	return accounts, nil
}

// Save upserts one account row.
func (s *Store) Save(userID string, account *model.Account) error {
	balances, err := json.Marshal(account.Balances)
	if err != nil {
		return fmt.Errorf("encode balances: %w", err)
	}
	history, err := json.Marshal(account.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	row := userRow{
		UserID:   userID,
		Username: account.Username,
		Balances: string(balances),
		History:  string(history),
	}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("save user %s: %w", userID, err)
	}
	return nil
}

// Delete removes a user row. Missing rows are not an error.
func (s *Store) Delete(userID string) error {
	return s.db.Delete(&userRow{}, "user_id = ?", userID).Error
}

// SaveAsync mirrors an account in a detached goroutine. Failures are logged
// and counted; the caller never observes them.
func (s *Store) SaveAsync(userID string, account *model.Account) {
	go func() {
		if err := s.Save(userID, account); err != nil {
			metrics.PersistFailuresTotal.Inc()
			s.log.Error().Err(err).Str("user", userID).Msg("account persist failed")
		}
	}()
}
