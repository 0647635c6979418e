package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/untdf/catalog/internal/domain"
	"github.com/untdf/catalog/internal/errors"
	"github.com/untdf/catalog/internal/store"
)

func TestSeed_SingleCategory(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	doc := `{"fruit": {"title": "Fruit", "description": "d", "items": [{"title": "Apple", "description": "a", "price": 1.5, "tags": ["fresh"]}]}}`

	stats, err := env.seeder.SeedBytes(ctx, "T", []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, domain.SeedStats{
		CategoriesCreated: 1,
		ProductsCreated:   1,
		TagsCreated:       1,
		ImagesDownloaded:  0,
		Errors:            []string{},
	}, stats)

	categories, err := env.store.ListCategories(ctx, "T", store.DefaultPage())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Fruit", categories[0].Title)

	tags, err := env.store.ListTags(ctx, "T", store.DefaultPage())
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "fresh", tags[0].Title)

	products, err := env.store.ListProducts(ctx, "T", store.DefaultPage())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Apple", products[0].Title)
	assert.InDelta(t, 1.5, products[0].Price, 1e-9)
	assert.Equal(t, []string{tags[0].ID}, products[0].TagIDs())
	assert.Equal(t, categories[0].ID, products[0].CategoryID)
	assert.Empty(t, env.fetcher.calls)
}

func TestSeed_OneMalformedItemAmongFive(t *testing.T) {
	env := setupTestEnv(t)

	doc := `
fruit:
  title: Fruit
  description: d
  items:
    - {title: Apple, description: a, price: 1}
    - {title: Pear, description: a, price: 2}
    - {title: Plum, description: a, price: abc}
    - {title: Kiwi, description: a, price: 3}
    - {title: Lime, description: a, price: 4}
`
	stats, err := env.seeder.SeedBytes(context.Background(), "T", []byte(doc))
	require.NoError(t, err)

	assert.Equal(t, 4, stats.ProductsCreated)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0], "Plum")
	assert.Equal(t, 4, env.counts(t, "T").Products)
}

func TestSeed_TagsMemoizedAcrossCategories(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	doc := `
fruit:
  title: Fruit
  items:
    - {title: Apple, price: 1, tags: [fresh, red]}
    - {title: Cherry, price: 2, tags: [red]}
vegetables:
  title: Vegetables
  items:
    - {title: Tomato, price: 1, tags: [red, fresh, fresh]}
`
	stats, err := env.seeder.SeedBytes(ctx, "T", []byte(doc))
	require.NoError(t, err)
	assert.Empty(t, stats.Errors)
	assert.Equal(t, 2, stats.CategoriesCreated)
	assert.Equal(t, 3, stats.ProductsCreated)
	assert.Equal(t, 2, stats.TagsCreated)

	products, err := env.store.ListProducts(ctx, "T", store.DefaultPage())
	require.NoError(t, err)
	require.Len(t, products, 3)
	tomato := products[2]
	require.Len(t, tomato.Tags, 2)
	assert.Equal(t, "red", tomato.Tags[0].Title)
	assert.Equal(t, "fresh", tomato.Tags[1].Title)
	assert.Equal(t, products[0].Tags[1].ID, tomato.Tags[0].ID, "red reuses one tag id")
}

func TestSeed_Pictures(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	doc := `
fruit:
  title: Fruit
  picture: https://img.example.com/fruit.jpg
  items:
    - title: Apple
      price: 1
      pictures:
        - https://img.example.com/apple-1.jpg
        - https://img.example.com/broken.jpg
        - https://img.example.com/apple-3.jpg
veg:
  title: Vegetables
  picture: https://img.example.com/broken-veg.jpg
`
	stats, err := env.seeder.SeedBytes(ctx, "T", []byte(doc))
	require.NoError(t, err)

	assert.Equal(t, 2, stats.CategoriesCreated)
	assert.Equal(t, 1, stats.ProductsCreated)
	assert.Equal(t, 3, stats.ImagesDownloaded)
	assert.Len(t, stats.Errors, 2, "one broken product picture, one broken category picture")

	categories, err := env.store.ListCategories(ctx, "T", store.DefaultPage())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	require.NotNil(t, categories[0].Picture)
	assert.Nil(t, categories[1].Picture, "category survives a failed picture")

	products, err := env.store.ListProducts(ctx, "T", store.DefaultPage())
	require.NoError(t, err)
	require.Len(t, products[0].Pictures, 2)

	n, err := env.storage.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSeed_BadCategoryDoesNotAbortDocument(t *testing.T) {
	env := setupTestEnv(t)

	doc := `
broken: just a string
untitled:
  description: no title here
  items:
    - {title: Lost, price: 1}
fruit:
  title: Fruit
  items:
    - {title: Apple, price: 1}
    - {title: Free, price: -2}
    - {description: missing title, price: 1}
`
	stats, err := env.seeder.SeedBytes(context.Background(), "T", []byte(doc))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.CategoriesCreated)
	assert.Equal(t, 1, stats.ProductsCreated)
	assert.Len(t, stats.Errors, 4)
	assert.Equal(t, domain.Counts{Categories: 1, Products: 1}, env.counts(t, "T"))
}

func TestSeed_StructuralFailureWritesNothing(t *testing.T) {
	env := setupTestEnv(t)

	for _, doc := range []string{"", "fruit: [", "- a list"} {
		_, err := env.seeder.SeedBytes(context.Background(), "T", []byte(doc))
		assert.ErrorIs(t, err, errors.ErrValidation, "doc %q", doc)
	}
	assert.Equal(t, domain.Counts{}, env.counts(t, "T"))
}

func TestSeed_NilDocument(t *testing.T) {
	env := setupTestEnv(t)

	stats, err := env.seeder.Seed(context.Background(), "T", nil)
	assert.ErrorIs(t, err, errors.ErrValidation)
	assert.Empty(t, stats.Errors)
	assert.Equal(t, domain.Counts{}, env.counts(t, "T"))
}

func TestSeed_PriceMustBeFinite(t *testing.T) {
	env := setupTestEnv(t)

	doc := `
fruit:
  title: Fruit
  items:
    - {title: Apple, price: "1.5"}
    - {title: Banana, price: .inf}
    - {title: Cherry, price: .nan}
`
	stats, err := env.seeder.SeedBytes(context.Background(), "T", []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ProductsCreated)
	require.Len(t, stats.Errors, 2)
	assert.Contains(t, stats.Errors[0], "must be a finite number")

	products, err := env.store.ListProducts(context.Background(), "T", store.DefaultPage())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Apple", products[0].Title)
	assert.InDelta(t, 1.5, products[0].Price, 1e-9)
}

func TestSeed_NotIdempotent(t *testing.T) {
	env := setupTestEnv(t)
	doc := []byte(`fruit: {title: Fruit, items: [{title: Apple, price: 1, tags: [fresh]}]}`)

	_, err := env.seeder.SeedBytes(context.Background(), "T", doc)
	require.NoError(t, err)
	_, err = env.seeder.SeedBytes(context.Background(), "T", doc)
	require.NoError(t, err)

	assert.Equal(t, domain.Counts{Categories: 2, Products: 2, Tags: 2}, env.counts(t, "T"))
}

func TestSeed_ReplaceComposesWipeAndSeed(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	doc := []byte(`fruit: {title: Fruit, items: [{title: Apple, price: 1}]}`)

	_, err := env.seeder.SeedBytes(ctx, "T", doc)
	require.NoError(t, err)

	_, err = env.wiper.WipeTenant(ctx, "T")
	require.NoError(t, err)
	_, err = env.seeder.SeedBytes(ctx, "T", doc)
	require.NoError(t, err)

	assert.Equal(t, domain.Counts{Categories: 1, Products: 1}, env.counts(t, "T"))
}

func TestSeedFile(t *testing.T) {
	env := setupTestEnv(t)
	path := filepath.Join(t.TempDir(), "seed.yml")
	require.NoError(t, os.WriteFile(path, []byte("fruit:\n  title: Fruit\n"), 0o600))

	stats, err := env.seeder.SeedFile(context.Background(), "T", path)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CategoriesCreated)

	_, err = env.seeder.SeedFile(context.Background(), "T", filepath.Join(t.TempDir(), "nope.yml"))
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = env.seeder.SeedFile(context.Background(), "", path)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestDescribe(t *testing.T) {
	err := errors.ValidationWithDetails("validation failed", map[string]string{
		"title": "is required",
		"price": "must be greater than or equal to 0",
	})
	assert.Equal(t, "validation failed: price must be greater than or equal to 0, title is required", describe(err))
	assert.Equal(t, "plain", describe(assertError("plain")))
}

type assertError string

func (e assertError) Error() string { return string(e) }
