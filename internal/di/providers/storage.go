package providers

import (
	"github.com/samber/do/v2"

	"github.com/untdf/catalog/internal/config"
	"github.com/untdf/catalog/internal/logger"
	"github.com/untdf/catalog/internal/media/assets"
	"github.com/untdf/catalog/internal/media/images"
)

// ProvideUploads provides the uploads directory storage.
func ProvideUploads(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return images.NewStorage(cfg.UploadsPath(), cfg.Storage.UploadsPrefix)
}

// ProvideFetcher provides the asset fetcher used by seeding.
// The fetcher implements Shutdown, so the container stops its limiter.
func ProvideFetcher(i do.Injector) (*assets.Fetcher, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	uploads := do.MustInvoke[*images.Storage](i)

	return assets.NewFetcher(uploads, assets.Config{
		Timeout: cfg.Fetch.Timeout,
		Rate:    cfg.Fetch.Rate,
		Burst:   cfg.Fetch.Burst,
	}, log.Logger), nil
}
