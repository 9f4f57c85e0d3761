package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/league-watch/internal/config"
	"github.com/preston-bernstein/league-watch/internal/store"
)

// Backend constructors stay vars so tests can avoid real Firestore projects.
var (
	openFirestore = store.NewFirestore
	openSQLite    = store.NewSQLite
)

func buildStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*store.Gateway, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemory(logger), nil
	case config.BackendSQLite:
		return openSQLite(cfg.SQLitePath, logger)
	case config.BackendFirestore, "":
		creds, err := cfg.CredentialsJSON()
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		return openFirestore(ctx, store.FirestoreConfig{
			ProjectID:       cfg.FirestoreProjectID,
			CredentialsJSON: creds,
			CredentialsFile: cfg.CredentialsFile,
		}, logger)
	default:
		return nil, fmt.Errorf("server: unknown storage backend %q", cfg.Backend)
	}
}
