package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/untdf/catalog/internal/domain"
)

const (
	tokenA = "tenant-a-token"
	tokenB = "tenant-b-token"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCategory(t *testing.T, s *Store, token, title string) *domain.Category {
	t.Helper()
	c, err := s.CreateCategory(context.Background(), token, domain.CreateCategoryRequest{Title: title})
	if err != nil {
		t.Fatalf("CreateCategory(%q): %v", title, err)
	}
	return c
}

func mustTag(t *testing.T, s *Store, token, title string) *domain.Tag {
	t.Helper()
	tag, err := s.CreateTag(context.Background(), token, domain.CreateTagRequest{Title: title})
	if err != nil {
		t.Fatalf("CreateTag(%q): %v", title, err)
	}
	return tag
}

func mustProduct(t *testing.T, s *Store, token, title, categoryID string, tagIDs ...string) *domain.Product {
	t.Helper()
	p, err := s.CreateProduct(context.Background(), token, domain.CreateProductRequest{
		Title:      title,
		Price:      1.5,
		CategoryID: categoryID,
		TagIDs:     tagIDs,
	})
	if err != nil {
		t.Fatalf("CreateProduct(%q): %v", title, err)
	}
	return p
}

func countAssociations(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM product_tags").Scan(&n); err != nil {
		t.Fatalf("count product_tags: %v", err)
	}
	return n
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	err = s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	for _, table := range []string{"categories", "tags", "products", "product_tags"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	if got := s.DeletePolicy(); got != domain.PolicyOrphan {
		t.Errorf("default policy: got %q, want %q", got, domain.PolicyOrphan)
	}
}

func TestOpenClose(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	mustCategory(t, s, tokenA, "Fruit")

	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Re-open should work (schema is idempotent) and keep the data.
	s2, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("re-open store: %v", err)
	}
	defer s2.Close()

	ids, err := s2.ListCategoryIDs(context.Background(), tokenA)
	if err != nil {
		t.Fatalf("ListCategoryIDs: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("expected 1 category after reopen, got %d", len(ids))
	}
}

func TestPlaceholders(t *testing.T) {
	tests := map[int]string{0: "", 1: "?", 3: "?, ?, ?"}
	for n, want := range tests {
		if got := placeholders(n); got != want {
			t.Errorf("placeholders(%d) = %q, want %q", n, got, want)
		}
	}
}
