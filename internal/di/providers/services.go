package providers

import (
	"github.com/samber/do/v2"

	"github.com/untdf/catalog/internal/logger"
	"github.com/untdf/catalog/internal/media/assets"
	"github.com/untdf/catalog/internal/media/images"
	"github.com/untdf/catalog/internal/service"
	"github.com/untdf/catalog/internal/validation"
)

// ProvideCatalogService provides the tenant CRUD service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	uploads := do.MustInvoke[*images.Storage](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, uploads, v, log.Logger), nil
}

// ProvideWiper provides the wipe pipeline.
func ProvideWiper(i do.Injector) (*service.Wiper, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	uploads := do.MustInvoke[*images.Storage](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewWiper(storeHandle.Store, uploads, v, log.Logger), nil
}

// ProvideSeeder provides the seed pipeline.
func ProvideSeeder(i do.Injector) (*service.Seeder, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	fetcher := do.MustInvoke[*assets.Fetcher](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSeeder(storeHandle.Store, fetcher, v, log.Logger), nil
}
