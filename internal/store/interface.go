// Package store defines the tenant-scoped persistence interface for the catalog.
//
// Every method takes the tenant token explicitly. Implementations must predicate
// each query, mutation and delete on it, and must report an id that exists under
// another token exactly like an id that does not exist at all.
package store

import (
	"context"

	"github.com/untdf/catalog/internal/domain"
)

// Catalog defines all persistence operations for categories, tags and products.
type Catalog interface {
	// Lifecycle
	Close() error

	// Categories
	ListCategories(ctx context.Context, token string, page Page) ([]*domain.Category, error)
	GetCategory(ctx context.Context, token, id string) (*domain.Category, error)
	CreateCategory(ctx context.Context, token string, req domain.CreateCategoryRequest) (*domain.Category, error)
	UpdateCategory(ctx context.Context, token, id string, upd domain.CategoryUpdate) (*domain.Category, error)
	DeleteCategory(ctx context.Context, token, id string) (*domain.Category, error)
	SetCategoryPicture(ctx context.Context, token, id, path string) (*domain.Category, error)

	// Tags
	ListTags(ctx context.Context, token string, page Page) ([]*domain.Tag, error)
	GetTag(ctx context.Context, token, id string) (*domain.Tag, error)
	CreateTag(ctx context.Context, token string, req domain.CreateTagRequest) (*domain.Tag, error)
	UpdateTag(ctx context.Context, token, id string, upd domain.TagUpdate) (*domain.Tag, error)
	DeleteTag(ctx context.Context, token, id string) (*domain.Tag, error)

	// Products
	ListProducts(ctx context.Context, token string, page Page) ([]*domain.Product, error)
	GetProduct(ctx context.Context, token, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, token string, req domain.CreateProductRequest) (*domain.Product, error)
	UpdateProduct(ctx context.Context, token, id string, upd domain.ProductUpdate) (*domain.Product, error)
	DeleteProduct(ctx context.Context, token, id string) (*domain.Product, error)
	AppendProductPictures(ctx context.Context, token, id string, paths []string) (*domain.Product, error)

	// Bulk helpers for the wipe pipeline
	ListProductIDs(ctx context.Context, token string) ([]string, error)
	ListCategoryIDs(ctx context.Context, token string) ([]string, error)
	ListTagIDs(ctx context.Context, token string) ([]string, error)
	Counts(ctx context.Context, token string) (domain.Counts, error)
	PurgeAll(ctx context.Context) (domain.Counts, error)
}
