package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/Jitesh17/docai/internal/common"
	"github.com/Jitesh17/docai/internal/interfaces"
	"github.com/Jitesh17/docai/internal/services/ai"
	"github.com/Jitesh17/docai/internal/services/documents"
	"github.com/Jitesh17/docai/internal/services/endpoints"
	"github.com/Jitesh17/docai/internal/services/identity"
	"github.com/Jitesh17/docai/internal/services/session"
	"github.com/Jitesh17/docai/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	db *badger.BadgerDB

	// Storage
	AuthStorage    interfaces.AuthStorage
	HistoryStorage interfaces.HistoryStorage // nil when history is disabled

	// Services
	Session    interfaces.SessionManager
	Endpoints  interfaces.EndpointSelector
	Selection  interfaces.SelectionTracker
	Registry   interfaces.DocumentRegistry
	Uploads    *documents.Pipeline
	Dispatcher interfaces.Dispatcher
}

// New creates the application container and wires all services. Sign-out
// teardown hooks are registered here: fetched documents and the selection
// are scoped to the identity that produced them and are discarded together.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	db, err := badger.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	authStorage := badger.NewAuthStorage(db, logger)

	var historyStorage interfaces.HistoryStorage
	if config.History.Enabled {
		historyStorage = badger.NewHistoryStorage(db, logger)
	}

	provider := identity.NewProvider(&config.Auth, authStorage, logger)
	sessionService := session.NewService(provider, logger)
	selector := endpoints.NewSelector(&config.Endpoints, logger)
	selection := documents.NewSelection()
	registry := documents.NewRegistry(sessionService, selector, selection, logger)
	pipeline := documents.NewPipeline(sessionService, selector, &config.Upload, logger)
	dispatcher := ai.NewDispatcher(sessionService, selector, historyStorage, &config.AI, logger)

	sessionService.OnSignOut(registry.Clear)
	sessionService.OnSignOut(selection.Clear)

	logger.Debug().
		Str("endpoint", selector.Name()).
		Bool("history_enabled", config.History.Enabled).
		Msg("Application components initialized")

	return &App{
		Config:         config,
		Logger:         logger,
		db:             db,
		AuthStorage:    authStorage,
		HistoryStorage: historyStorage,
		Session:        sessionService,
		Endpoints:      selector,
		Selection:      selection,
		Registry:       registry,
		Uploads:        pipeline,
		Dispatcher:     dispatcher,
	}, nil
}

// Close releases application resources
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
