// Package di provides dependency injection configuration for the catalog tool.
package di

import (
	"github.com/samber/do/v2"

	"github.com/untdf/catalog/internal/config"
	"github.com/untdf/catalog/internal/di/providers"
)

// NewContainer creates and configures the DI container with all providers.
// cfg is registered as a value; everything else is built lazily on first use.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideUploads)
	do.Provide(injector, providers.ProvideFetcher)

	// Catalog services and pipelines
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideWiper)
	do.Provide(injector, providers.ProvideSeeder)

	return injector
}
