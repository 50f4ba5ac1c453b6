package interfaces

import (
	"context"

	"github.com/Jitesh17/docai/internal/models"
)

// AuthStorage persists identity provider state between invocations
type AuthStorage interface {
	StoreCredentials(ctx context.Context, credentials *models.AuthCredentials) error
	GetCredentials(ctx context.Context) (*models.AuthCredentials, error)
	DeleteCredentials(ctx context.Context) error
}

// HistoryStorage persists completed AI exchanges locally
type HistoryStorage interface {
	Append(ctx context.Context, exchange *models.Exchange) error

	// List returns exchanges newest-first, at most limit entries
	// (limit <= 0 means all).
	List(ctx context.Context, limit int) ([]*models.Exchange, error)

	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}
