package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/untdf/catalog/internal/domain"
	domainerrors "github.com/untdf/catalog/internal/errors"
	"github.com/untdf/catalog/internal/logger"
	"github.com/untdf/catalog/internal/media/images"
	"github.com/untdf/catalog/internal/store"
	"github.com/untdf/catalog/internal/validation"
)

// Wiper bulk-deletes catalog data, either for one tenant or for everyone.
// Both operations are best effort: failures are collected in the returned
// stats and never stop the remaining work.
type Wiper struct {
	store     store.Catalog
	storage   *images.Storage
	validator *validation.Validator
	logger    *slog.Logger
}

// NewWiper creates a new wiper.
func NewWiper(store store.Catalog, storage *images.Storage, validator *validation.Validator, logger *slog.Logger) *Wiper {
	return &Wiper{
		store:     store,
		storage:   storage,
		validator: validator,
		logger:    logger,
	}
}

// wipeKind is one entity kind of a tenant wipe.
type wipeKind struct {
	name    string
	list    func(ctx context.Context, token string) ([]string, error)
	del     func(ctx context.Context, token, id string) error
	counter *int
}

// WipeTenant deletes every product, then every category, then every tag owned
// by token, one row at a time. Uploaded files are left alone.
func (w *Wiper) WipeTenant(ctx context.Context, token string) (domain.WipeStats, error) {
	stats := domain.WipeStats{Errors: []string{}}
	if err := w.validator.Token(token); err != nil {
		return stats, err
	}

	kinds := []wipeKind{
		{
			name: "product",
			list: w.store.ListProductIDs,
			del: func(ctx context.Context, token, id string) error {
				_, err := w.store.DeleteProduct(ctx, token, id)
				return err
			},
			counter: &stats.ProductsDeleted,
		},
		{
			name: "category",
			list: w.store.ListCategoryIDs,
			del: func(ctx context.Context, token, id string) error {
				_, err := w.store.DeleteCategory(ctx, token, id)
				return err
			},
			counter: &stats.CategoriesDeleted,
		},
		{
			name: "tag",
			list: w.store.ListTagIDs,
			del: func(ctx context.Context, token, id string) error {
				_, err := w.store.DeleteTag(ctx, token, id)
				return err
			},
			counter: &stats.TagsDeleted,
		},
	}

	for _, kind := range kinds {
		ids, err := kind.list(ctx, token)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("list %ss: %v", kind.name, err))
			continue
		}
		for _, id := range ids {
			err := kind.del(ctx, token, id)
			switch {
			case err == nil:
				*kind.counter++
			case domainerrors.Is(err, domainerrors.ErrNotFound):
				// Already gone.
			default:
				stats.Errors = append(stats.Errors, fmt.Sprintf("delete %s %s: %v", kind.name, id, err))
			}
		}
	}

	w.logStats("tenant wiped", stats, logger.Token(token))
	return stats, nil
}

// WipeGlobal deletes all rows of every tenant and empties the uploads
// directory. The database and file phases run independently; a failure in one
// is recorded and the other still runs.
func (w *Wiper) WipeGlobal(ctx context.Context, grant AdminGrant) (domain.WipeStats, error) {
	stats := domain.WipeStats{Errors: []string{}}
	if !grant.Valid() {
		return stats, domainerrors.Forbidden("global wipe requires an admin grant")
	}

	counts, err := w.store.PurgeAll(ctx)
	if err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("purge database: %v", err))
	} else {
		stats.ProductsDeleted = counts.Products
		stats.CategoriesDeleted = counts.Categories
		stats.TagsDeleted = counts.Tags
	}

	files, err := w.storage.Reset()
	stats.FilesDeleted = files
	if err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("reset uploads: %v", err))
	}

	w.logStats("catalog wiped", stats, slog.String("scope", "global"))
	return stats, nil
}

func (w *Wiper) logStats(msg string, stats domain.WipeStats, scope slog.Attr) {
	for _, e := range stats.Errors {
		w.logger.Warn("wipe error", scope, "error", e)
	}
	w.logger.Info(msg,
		scope,
		"products", stats.ProductsDeleted,
		"categories", stats.CategoriesDeleted,
		"tags", stats.TagsDeleted,
		"files", stats.FilesDeleted,
		"errors", len(stats.Errors),
	)
}
