// Package providers contains dependency injection providers for the catalog tool.
package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/untdf/catalog/internal/config"
	"github.com/untdf/catalog/internal/logger"
	"github.com/untdf/catalog/internal/validation"
)

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	// Logs go to stderr; stdout carries command output.
	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Debug("configuration loaded",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Storage.DataPath,
		"delete_policy", cfg.Catalog.DeletePolicy,
	)

	return log, nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
