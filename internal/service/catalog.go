package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/untdf/catalog/internal/domain"
	domainerrors "github.com/untdf/catalog/internal/errors"
	"github.com/untdf/catalog/internal/logger"
	"github.com/untdf/catalog/internal/media/assets"
	"github.com/untdf/catalog/internal/media/images"
	"github.com/untdf/catalog/internal/store"
	"github.com/untdf/catalog/internal/validation"
)

// CatalogService is the tenant-scoped CRUD surface over the entity store.
// It checks the token and request fields before anything reaches the store.
type CatalogService struct {
	store     store.Catalog
	storage   *images.Storage
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store store.Catalog, storage *images.Storage, validator *validation.Validator, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:     store,
		storage:   storage,
		validator: validator,
		logger:    logger,
	}
}

// UploadFile is one picture handed to an upload operation.
type UploadFile struct {
	Filename string
	Data     []byte
}

// Counts reports how many categories, products and tags the tenant owns.
func (s *CatalogService) Counts(ctx context.Context, token string) (domain.Counts, error) {
	if err := s.validator.Token(token); err != nil {
		return domain.Counts{}, err
	}
	return s.store.Counts(ctx, token)
}

// Categories

func (s *CatalogService) ListCategories(ctx context.Context, token string, page store.Page) ([]*domain.Category, error) {
	if err := s.validator.Token(token); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx, token, page)
}

func (s *CatalogService) GetCategory(ctx context.Context, token, id string) (*domain.Category, error) {
	if err := s.validator.Token(token); err != nil {
		return nil, err
	}
	return s.store.GetCategory(ctx, token, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, token string, req domain.CreateCategoryRequest) (*domain.Category, error) {
	if err := s.check(token, req); err != nil {
		return nil, err
	}
	c, err := s.store.CreateCategory(ctx, token, req)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("category created", logger.Token(token), "category_id", c.ID)
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, token, id string, upd domain.CategoryUpdate) (*domain.Category, error) {
	if err := s.check(token, upd); err != nil {
		return nil, err
	}
	return s.store.UpdateCategory(ctx, token, id, upd)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, token, id string) (*domain.Category, error) {
	if err := s.validator.Token(token); err != nil {
		return nil, err
	}
	c, err := s.store.DeleteCategory(ctx, token, id)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("category deleted", logger.Token(token), "category_id", id)
	return c, nil
}

// UploadCategoryPicture stores data as the category's picture, replacing any previous one.
// The category is checked before the file is written.
func (s *CatalogService) UploadCategoryPicture(ctx context.Context, token, id string, file UploadFile) (*domain.Category, error) {
	if err := s.validator.Token(token); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCategory(ctx, token, id); err != nil {
		return nil, err
	}

	path, err := s.saveUpload("category_"+id, file)
	if err != nil {
		return nil, err
	}
	c, err := s.store.SetCategoryPicture(ctx, token, id, path)
	if err != nil {
		s.discard([]string{path})
		return nil, err
	}
	return c, nil
}

// Tags

func (s *CatalogService) ListTags(ctx context.Context, token string, page store.Page) ([]*domain.Tag, error) {
	if err := s.validator.Token(token); err != nil {
		return nil, err
	}
	return s.store.ListTags(ctx, token, page)
}

func (s *CatalogService) GetTag(ctx context.Context, token, id string) (*domain.Tag, error) {
	if err := s.validator.Token(token); err != nil {
		return nil, err
	}
	return s.store.GetTag(ctx, token, id)
}

func (s *CatalogService) CreateTag(ctx context.Context, token string, req domain.CreateTagRequest) (*domain.Tag, error) {
	if err := s.check(token, req); err != nil {
		return nil, err
	}
	return s.store.CreateTag(ctx, token, req)
}

func (s *CatalogService) UpdateTag(ctx context.Context, token, id string, upd domain.TagUpdate) (*domain.Tag, error) {
	if err := s.check(token, upd); err != nil {
		return nil, err
	}
	return s.store.UpdateTag(ctx, token, id, upd)
}

func (s *CatalogService) DeleteTag(ctx context.Context, token, id string) (*domain.Tag, error) {
	if err := s.validator.Token(token); err != nil {
		return nil, err
	}
	return s.store.DeleteTag(ctx, token, id)
}

// Products

func (s *CatalogService) ListProducts(ctx context.Context, token string, page store.Page) ([]*domain.Product, error) {
	if err := s.validator.Token(token); err != nil {
		return nil, err
	}
	return s.store.ListProducts(ctx, token, page)
}

func (s *CatalogService) GetProduct(ctx context.Context, token, id string) (*domain.Product, error) {
	if err := s.validator.Token(token); err != nil {
		return nil, err
	}
	return s.store.GetProduct(ctx, token, id)
}

// CreateProduct creates a product in a category owned by token. Tag ids the
// token does not own are dropped.
func (s *CatalogService) CreateProduct(ctx context.Context, token string, req domain.CreateProductRequest) (*domain.Product, error) {
	if err := s.check(token, req); err != nil {
		return nil, err
	}
	p, err := s.store.CreateProduct(ctx, token, req)
	if err != nil {
		return nil, err
	}
	if dropped := len(req.TagIDs) - len(p.Tags); dropped > 0 {
		s.logger.Debug("unknown tag ids dropped",
			logger.Token(token),
			"product_id", p.ID,
			"dropped", dropped,
		)
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, token, id string, upd domain.ProductUpdate) (*domain.Product, error) {
	if err := s.check(token, upd); err != nil {
		return nil, err
	}
	return s.store.UpdateProduct(ctx, token, id, upd)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, token, id string) (*domain.Product, error) {
	if err := s.validator.Token(token); err != nil {
		return nil, err
	}
	return s.store.DeleteProduct(ctx, token, id)
}

// UploadProductPictures stores each file and appends their paths, in order,
// to the product's pictures. The product is checked before any file is written.
func (s *CatalogService) UploadProductPictures(ctx context.Context, token, id string, files []UploadFile) (*domain.Product, error) {
	if err := s.validator.Token(token); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domainerrors.Validation("no files to upload")
	}
	if _, err := s.store.GetProduct(ctx, token, id); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path, err := s.saveUpload("product_"+id, f)
		if err != nil {
			s.discard(paths)
			return nil, err
		}
		paths = append(paths, path)
	}

	p, err := s.store.AppendProductPictures(ctx, token, id, paths)
	if err != nil {
		s.discard(paths)
		return nil, err
	}
	return p, nil
}

// check validates the token and the request struct.
func (s *CatalogService) check(token string, req any) error {
	if err := s.validator.Token(token); err != nil {
		return err
	}
	return s.validator.Validate(req)
}

// saveUpload writes an uploaded file as <prefix>_<uuid>.<ext> and returns its public path.
func (s *CatalogService) saveUpload(prefix string, file UploadFile) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(file.Filename), ".")
	if !assets.Allowed(ext) {
		return "", domainerrors.Validationf("unsupported picture type %q", file.Filename)
	}
	if len(file.Data) == 0 {
		return "", domainerrors.Validationf("picture %q is empty", file.Filename)
	}

	name := fmt.Sprintf("%s_%s.%s", prefix, uuid.NewString(), strings.ToLower(ext))
	path, err := s.storage.Save(name, file.Data)
	if err != nil {
		return "", domainerrors.AssetFailure("save upload "+file.Filename, err)
	}
	return path, nil
}

// discard removes files written by a failed upload.
func (s *CatalogService) discard(publicPaths []string) {
	for _, p := range publicPaths {
		if err := s.storage.Delete(filepath.Base(p)); err != nil {
			s.logger.Warn("failed to remove orphaned upload", "path", p, "error", err)
		}
	}
}
