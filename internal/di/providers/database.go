package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/untdf/catalog/internal/config"
	"github.com/untdf/catalog/internal/logger"
	"github.com/untdf/catalog/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdowner.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the SQLite catalog and applies the configured delete policy.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sqlite.Open(cfg.DatabasePath(), log.Logger)
	if err != nil {
		return nil, err
	}
	db.SetDeletePolicy(cfg.Catalog.DeletePolicy)

	log.Debug("database opened", "path", cfg.DatabasePath())

	return &StoreHandle{Store: db}, nil
}
