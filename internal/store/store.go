package store

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"trade-journal-go/internal/models"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a trade ID does not exist in the journal.
var ErrNotFound = errors.New("trade not found")

// Store is the single handle to the canonical trade table. Every view and
// every engine call reads through it; nothing else owns journal state.
type Store struct {
	db            *gorm.DB
	logger        *zap.Logger
	defaultEquity float64
}

// NewStore creates a trade store. defaultEquity is used for accounts that
// have no row in the accounts table.
func NewStore(db *gorm.DB, defaultEquity float64, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger, defaultEquity: defaultEquity}
}

// Create inserts a single trade. Manual entries usually arrive without an
// ID; those get a ULID so the identifier stays stable across later imports.
func (s *Store) Create(t *models.Trade) error {
	if t.TradeID == "" {
		entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
		t.TradeID = ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
	}
	if err := s.db.Create(t).Error; err != nil {
		return fmt.Errorf("failed to create trade %q: %w", t.TradeID, err)
	}
	s.logger.Debug("Trade created", zap.String("trade_id", t.TradeID), zap.String("symbol", t.Symbol))
	return nil
}

// InsertBatch persists an imported batch. Rows whose trade ID already
// exists are updated in place rather than duplicated.
func (s *Store) InsertBatch(trades []models.Trade) (int, error) {
	inserted := 0
	for i := range trades {
		t := trades[i]
		var existing models.Trade
		err := s.db.Where("trade_id = ?", t.TradeID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := s.Create(&t); err != nil {
				return inserted, err
			}
			inserted++
		case err != nil:
			return inserted, fmt.Errorf("failed to look up trade %q: %w", t.TradeID, err)
		default:
			t.ID = existing.ID
			if err := s.db.Save(&t).Error; err != nil {
				return inserted, fmt.Errorf("failed to update trade %q: %w", t.TradeID, err)
			}
		}
	}
	return inserted, nil
}

// Update saves changes to an existing trade.
func (s *Store) Update(t *models.Trade) error {
	var existing models.Trade
	if err := s.db.Where("trade_id = ?", t.TradeID).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %q", ErrNotFound, t.TradeID)
		}
		return err
	}
	t.ID = existing.ID
	return s.db.Save(t).Error
}

// Delete removes a trade by its journal ID.
func (s *Store) Delete(tradeID string) error {
	res := s.db.Where("trade_id = ?", tradeID).Delete(&models.Trade{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, tradeID)
	}
	return nil
}

// Get returns a single trade by its journal ID.
func (s *Store) Get(tradeID string) (models.Trade, error) {
	var t models.Trade
	if err := s.db.Where("trade_id = ?", tradeID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Trade{}, fmt.Errorf("%w: %q", ErrNotFound, tradeID)
		}
		return models.Trade{}, err
	}
	return t, nil
}

// ListForAnalysis returns all trades in analysis order: entry time
// ascending, insertion order breaking ties.
func (s *Store) ListForAnalysis() ([]models.Trade, error) {
	var trades []models.Trade
	if err := s.db.Order("entry_time asc, id asc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

// ListDisplay returns all trades newest-first for table views.
func (s *Store) ListDisplay() ([]models.Trade, error) {
	var trades []models.Trade
	if err := s.db.Order("entry_time desc, id desc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

// Accounts returns all configured accounts.
func (s *Store) Accounts() ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.Order("label asc").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// StartEquityFor sums starting equity over the selected account labels.
// Unknown labels fall back to the default; an empty selection means "all
// accounts are in view", which resolves to the default alone when no
// accounts are configured.
func (s *Store) StartEquityFor(labels []string) (float64, error) {
	if len(labels) == 0 {
		accounts, err := s.Accounts()
		if err != nil {
			return 0, err
		}
		if len(accounts) == 0 {
			return s.defaultEquity, nil
		}
		total := 0.0
		for _, acc := range accounts {
			total += acc.StartEquity
		}
		return total, nil
	}

	total := 0.0
	for _, label := range labels {
		var acc models.Account
		err := s.db.Where("label = ?", label).First(&acc).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			total += s.defaultEquity
		case err != nil:
			return 0, err
		default:
			total += acc.StartEquity
		}
	}
	return total, nil
}
