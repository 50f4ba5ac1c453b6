package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/Jitesh17/docai/internal/interfaces"
	"github.com/Jitesh17/docai/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// credentialsKey is the single record slot for provider credentials. The
// client holds at most one signed-in identity at a time.
const credentialsKey = "current"

// AuthStorage implements the AuthStorage interface for Badger
type AuthStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAuthStorage creates a new AuthStorage instance
func NewAuthStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AuthStorage {
	return &AuthStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AuthStorage) StoreCredentials(ctx context.Context, credentials *models.AuthCredentials) error {
	if credentials.UID == "" {
		return fmt.Errorf("credentials UID is required")
	}
	if credentials.RefreshToken == "" {
		return fmt.Errorf("credentials refresh token is required")
	}

	credentials.UpdatedAt = time.Now().Unix()

	if err := s.db.Store().Upsert(credentialsKey, credentials); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	return nil
}

func (s *AuthStorage) GetCredentials(ctx context.Context) (*models.AuthCredentials, error) {
	var creds models.AuthCredentials
	if err := s.db.Store().Get(credentialsKey, &creds); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("no stored credentials")
		}
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}
	return &creds, nil
}

func (s *AuthStorage) DeleteCredentials(ctx context.Context) error {
	if err := s.db.Store().Delete(credentialsKey, &models.AuthCredentials{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}
