package db

import (
	"context"
	"fmt"

	"github.com/Dosada05/hackathon-teams/config"
)

// Open создает хранилище по конфигурации и проверяет, что оно отвечает.
func Open(ctx context.Context, cfg config.StoreConfig) (DocumentStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var (
		store DocumentStore
		err   error
	)
	switch cfg.Driver {
	case config.StoreDriverFirestore:
		store, err = NewFirestoreStore(ctx, cfg.FirestoreProjectID, cfg.FirestoreDatabaseID)
	case config.StoreDriverPostgres:
		store, err = NewPostgresStore(ctx, cfg.DatabaseURL, cfg.Timeout)
	case config.StoreDriverMemory:
		store = NewMemoryStore()
	}
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
