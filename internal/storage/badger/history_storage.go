package badger

import (
	"context"
	"fmt"

	"github.com/Jitesh17/docai/internal/interfaces"
	"github.com/Jitesh17/docai/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// HistoryStorage implements the HistoryStorage interface for Badger. The
// history is device-scoped: it survives sign-out and endpoint toggles.
type HistoryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewHistoryStorage creates a new HistoryStorage instance
func NewHistoryStorage(db *BadgerDB, logger arbor.ILogger) interfaces.HistoryStorage {
	return &HistoryStorage{
		db:     db,
		logger: logger,
	}
}

func (s *HistoryStorage) Append(ctx context.Context, exchange *models.Exchange) error {
	if exchange.ID == "" {
		return fmt.Errorf("exchange ID is required")
	}

	if err := s.db.Store().Insert(exchange.ID, exchange); err != nil {
		return fmt.Errorf("failed to store exchange: %w", err)
	}

	s.logger.Debug().Str("exchange_id", exchange.ID).Msg("Exchange recorded")
	return nil
}

// List returns exchanges newest-first, at most limit entries (limit <= 0
// means all).
func (s *HistoryStorage) List(ctx context.Context, limit int) ([]*models.Exchange, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var exchanges []models.Exchange
	if err := s.db.Store().Find(&exchanges, query); err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}

	result := make([]*models.Exchange, len(exchanges))
	for i := range exchanges {
		result[i] = &exchanges[i]
	}
	return result, nil
}

func (s *HistoryStorage) Clear(ctx context.Context) error {
	if err := s.db.Store().DeleteMatching(&models.Exchange{}, nil); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *HistoryStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Exchange{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count exchanges: %w", err)
	}
	return int(count), nil
}
