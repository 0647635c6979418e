package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/untdf/catalog/internal/domain"
	domainerrors "github.com/untdf/catalog/internal/errors"
	"github.com/untdf/catalog/internal/logger"
	"github.com/untdf/catalog/internal/seed"
	"github.com/untdf/catalog/internal/store"
	"github.com/untdf/catalog/internal/validation"
)

// Fetcher downloads a remote picture and returns the stored path.
type Fetcher interface {
	Fetch(ctx context.Context, url, baseName string) (string, error)
}

// Seeder materializes seed documents into a tenant's catalog.
//
// Seeding is not idempotent: running it twice creates everything twice.
// Callers wanting replace semantics run Wiper.WipeTenant first.
type Seeder struct {
	store     store.Catalog
	fetcher   Fetcher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewSeeder creates a new seeder.
func NewSeeder(store store.Catalog, fetcher Fetcher, validator *validation.Validator, logger *slog.Logger) *Seeder {
	return &Seeder{
		store:     store,
		fetcher:   fetcher,
		validator: validator,
		logger:    logger,
	}
}

// seedRun carries the state of one Seed call.
type seedRun struct {
	token string
	stats domain.SeedStats
	tags  map[string]string // tag title -> id, memoized for the run
}

func (r *seedRun) fail(format string, args ...any) {
	r.stats.Errors = append(r.stats.Errors, fmt.Sprintf(format, args...))
}

// SeedFile parses the document at path and seeds it. An unreadable or
// malformed file fails before anything is written.
func (s *Seeder) SeedFile(ctx context.Context, token, path string) (domain.SeedStats, error) {
	if err := s.validator.Token(token); err != nil {
		return domain.SeedStats{Errors: []string{}}, err
	}
	doc, err := seed.ParseFile(path)
	if err != nil {
		return domain.SeedStats{Errors: []string{}}, err
	}
	return s.Seed(ctx, token, doc)
}

// SeedBytes parses data and seeds it.
func (s *Seeder) SeedBytes(ctx context.Context, token string, data []byte) (domain.SeedStats, error) {
	if err := s.validator.Token(token); err != nil {
		return domain.SeedStats{Errors: []string{}}, err
	}
	doc, err := seed.Parse(data)
	if err != nil {
		return domain.SeedStats{Errors: []string{}}, err
	}
	return s.Seed(ctx, token, doc)
}

// Seed creates the categories, tags and products of doc in document order.
// Failures of a single category, item or picture are recorded in the
// returned stats and processing moves on to the next sibling.
func (s *Seeder) Seed(ctx context.Context, token string, doc *seed.Document) (domain.SeedStats, error) {
	run := &seedRun{
		token: token,
		stats: domain.SeedStats{Errors: []string{}},
		tags:  make(map[string]string),
	}
	if err := s.validator.Token(token); err != nil {
		return run.stats, err
	}
	if doc == nil {
		return run.stats, domainerrors.Validation("seed document is required")
	}

	for _, entry := range doc.Categories {
		s.seedCategory(ctx, run, entry)
	}

	for _, e := range run.stats.Errors {
		s.logger.Warn("seed error", logger.Token(token), "error", e)
	}
	s.logger.Info("seed complete",
		logger.Token(token),
		"categories", run.stats.CategoriesCreated,
		"products", run.stats.ProductsCreated,
		"tags", run.stats.TagsCreated,
		"images", run.stats.ImagesDownloaded,
		"errors", len(run.stats.Errors),
	)
	return run.stats, nil
}

func (s *Seeder) seedCategory(ctx context.Context, run *seedRun, entry seed.CategoryEntry) {
	if entry.Err != nil {
		run.fail("category %q: %v", entry.Key, entry.Err)
		return
	}

	req := domain.CreateCategoryRequest{
		Title:       entry.Category.Title,
		Description: entry.Category.Description,
	}
	if err := s.validator.Validate(req); err != nil {
		run.fail("category %q: %v", entry.Key, describe(err))
		return
	}

	category, err := s.store.CreateCategory(ctx, run.token, req)
	if err != nil {
		run.fail("category %q: %v", entry.Key, err)
		return
	}
	run.stats.CategoriesCreated++

	if url := strings.TrimSpace(entry.Category.Picture); url != "" {
		path, err := s.fetcher.Fetch(ctx, url, "category_"+category.ID)
		if err != nil {
			run.fail("category %q picture: %v", category.Title, err)
		} else if _, err := s.store.SetCategoryPicture(ctx, run.token, category.ID, path); err != nil {
			run.fail("category %q picture: %v", category.Title, err)
		} else {
			run.stats.ImagesDownloaded++
		}
	}

	for _, item := range entry.Items {
		s.seedItem(ctx, run, category, item)
	}
}

func (s *Seeder) seedItem(ctx context.Context, run *seedRun, category *domain.Category, entry seed.ItemEntry) {
	if entry.Err != nil {
		run.fail("product %s in category %q: %v", entry.Label(), category.Title, entry.Err)
		return
	}
	if err := s.validator.Validate(entry.Item); err != nil {
		run.fail("product %s in category %q: %v", entry.Label(), category.Title, describe(err))
		return
	}

	tagIDs, err := s.resolveTags(ctx, run, entry.Item.Tags)
	if err != nil {
		run.fail("product %s in category %q: %v", entry.Label(), category.Title, err)
		return
	}

	product, err := s.store.CreateProduct(ctx, run.token, domain.CreateProductRequest{
		Title:       entry.Item.Title,
		Description: entry.Item.Description,
		Price:       float64(*entry.Item.Price),
		CategoryID:  category.ID,
		TagIDs:      tagIDs,
	})
	if err != nil {
		run.fail("product %s in category %q: %v", entry.Label(), category.Title, err)
		return
	}
	run.stats.ProductsCreated++

	pictures := make([]string, 0, len(entry.Item.Pictures))
	for i, url := range entry.Item.Pictures {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		path, err := s.fetcher.Fetch(ctx, url, fmt.Sprintf("product_%s_%d", product.ID, i))
		if err != nil {
			run.fail("product %q picture %d: %v", product.Title, i+1, err)
			continue
		}
		pictures = append(pictures, path)
	}
	if len(pictures) == 0 {
		return
	}

	if _, err := s.store.AppendProductPictures(ctx, run.token, product.ID, pictures); err != nil {
		run.fail("product %q pictures: %v", product.Title, err)
		return
	}
	run.stats.ImagesDownloaded += len(pictures)
}

// resolveTags returns the ids for titles, creating tags not yet seen in this run.
func (s *Seeder) resolveTags(ctx context.Context, run *seedRun, titles []string) ([]string, error) {
	ids := make([]string, 0, len(titles))
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		if id, ok := run.tags[title]; ok {
			ids = append(ids, id)
			continue
		}

		req := domain.CreateTagRequest{Title: title}
		if err := s.validator.Validate(req); err != nil {
			return nil, fmt.Errorf("tag %q: %v", title, describe(err))
		}
		tag, err := s.store.CreateTag(ctx, run.token, req)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", title, err)
		}
		run.tags[title] = tag.ID
		run.stats.TagsCreated++
		ids = append(ids, tag.ID)
	}
	return ids, nil
}
