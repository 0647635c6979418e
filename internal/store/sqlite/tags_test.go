package sqlite

import (
	"context"
	"testing"

	"github.com/untdf/catalog/internal/domain"
	"github.com/untdf/catalog/internal/errors"
	"github.com/untdf/catalog/internal/store"
)

func TestCreateAndGetTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tag := mustTag(t, s, tokenA, "organic")

	got, err := s.GetTag(ctx, tokenA, tag.ID)
	if err != nil {
		t.Fatalf("GetTag: %v", err)
	}
	if got.Title != "organic" {
		t.Errorf("Title: got %q, want organic", got.Title)
	}

	// Timestamps should round-trip through RFC3339Nano.
	if got.CreatedAt.Unix() != tag.CreatedAt.Unix() {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, tag.CreatedAt)
	}
}

func TestCreateTag_DuplicateTitles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := mustTag(t, s, tokenA, "sale")
	second := mustTag(t, s, tokenA, "sale")
	if first.ID == second.ID {
		t.Fatalf("duplicate titles should yield distinct ids")
	}

	tags, err := s.ListTags(ctx, tokenA, store.DefaultPage())
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("expected 2 tags, got %d", len(tags))
	}
}

func TestGetTag_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tag := mustTag(t, s, tokenA, "organic")

	if _, err := s.GetTag(ctx, tokenB, tag.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign id, got %v", err)
	}
	if _, err := s.GetTag(ctx, tokenA, "tag-nope"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestUpdateTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tag := mustTag(t, s, tokenA, "organic")

	unchanged, err := s.UpdateTag(ctx, tokenA, tag.ID, domain.TagUpdate{})
	if err != nil {
		t.Fatalf("UpdateTag empty: %v", err)
	}
	if unchanged.Title != "organic" {
		t.Errorf("empty update changed title to %q", unchanged.Title)
	}

	renamed, err := s.UpdateTag(ctx, tokenA, tag.ID, domain.TagUpdate{Title: strPtr("bio")})
	if err != nil {
		t.Fatalf("UpdateTag: %v", err)
	}
	if renamed.Title != "bio" {
		t.Errorf("Title: got %q, want bio", renamed.Title)
	}

	if _, err := s.UpdateTag(ctx, tokenB, tag.ID, domain.TagUpdate{Title: strPtr("x")}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign update, got %v", err)
	}
}

func TestDeleteTag_DetachesFromProducts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := mustCategory(t, s, tokenA, "Fruit")
	organic := mustTag(t, s, tokenA, "organic")
	sale := mustTag(t, s, tokenA, "sale")
	p := mustProduct(t, s, tokenA, "Apple", c.ID, organic.ID, sale.ID)

	if _, err := s.DeleteTag(ctx, tokenA, organic.ID); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}

	got, err := s.GetProduct(ctx, tokenA, p.ID)
	if err != nil {
		t.Fatalf("product should survive tag delete: %v", err)
	}
	ids := got.TagIDs()
	if len(ids) != 1 || ids[0] != sale.ID {
		t.Errorf("tags after delete: got %v, want [%s]", ids, sale.ID)
	}
	if n := countAssociations(t, s); n != 1 {
		t.Errorf("expected 1 association, got %d", n)
	}
}

func TestDeleteTag_Restrict(t *testing.T) {
	s := newTestStore(t)
	s.SetDeletePolicy(domain.PolicyRestrict)
	ctx := context.Background()

	c := mustCategory(t, s, tokenA, "Fruit")
	tag := mustTag(t, s, tokenA, "organic")
	mustProduct(t, s, tokenA, "Apple", c.ID, tag.ID)

	if _, err := s.DeleteTag(ctx, tokenA, tag.ID); !errors.Is(err, errors.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if n := countAssociations(t, s); n != 1 {
		t.Errorf("association must survive a refused delete, got %d", n)
	}
}

func TestDeleteTag_OtherTenant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tag := mustTag(t, s, tokenA, "organic")
	if _, err := s.DeleteTag(ctx, tokenB, tag.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetTag(ctx, tokenA, tag.ID); err != nil {
		t.Errorf("owner's tag must be untouched: %v", err)
	}
}
