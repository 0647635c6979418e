package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/untdf/catalog/internal/domain"
	domainerrors "github.com/untdf/catalog/internal/errors"
	"github.com/untdf/catalog/internal/logger"
	"github.com/untdf/catalog/internal/media/images"
	"github.com/untdf/catalog/internal/store/sqlite"
	"github.com/untdf/catalog/internal/validation"
)

// fakeFetcher "downloads" any URL that does not contain "broken" by writing
// a placeholder file into storage.
type fakeFetcher struct {
	storage *images.Storage

	mu    sync.Mutex
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url, baseName string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	n := len(f.calls)
	f.mu.Unlock()

	if strings.Contains(url, "broken") {
		return "", domainerrors.AssetFailure("fetch "+url, fmt.Errorf("status 404"))
	}
	return f.storage.Save(fmt.Sprintf("%s_%04d.jpg", baseName, n), []byte(url))
}

type testEnv struct {
	store   *sqlite.Store
	storage *images.Storage
	fetcher *fakeFetcher
	catalog *CatalogService
	wiper   *Wiper
	seeder  *Seeder
}

// setupTestEnv wires the services against a real SQLite store in a temp dir.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	log := logger.Discard()

	s, err := sqlite.Open(filepath.Join(dir, "catalog.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	storage, err := images.NewStorage(filepath.Join(dir, "uploads"), "/uploads")
	require.NoError(t, err)

	v := validation.New()
	fetcher := &fakeFetcher{storage: storage}

	return &testEnv{
		store:   s,
		storage: storage,
		fetcher: fetcher,
		catalog: NewCatalogService(s, storage, v, log),
		wiper:   NewWiper(s, storage, v, log),
		seeder:  NewSeeder(s, fetcher, v, log),
	}
}

func (e *testEnv) counts(t *testing.T, token string) domain.Counts {
	t.Helper()
	c, err := e.store.Counts(context.Background(), token)
	require.NoError(t, err)
	return c
}
