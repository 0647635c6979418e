package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/untdf/catalog/internal/domain"
	domainerrors "github.com/untdf/catalog/internal/errors"
	"github.com/untdf/catalog/internal/id"
	"github.com/untdf/catalog/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, title, created_at, updated_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var (
		t         domain.Tag
		createdAt string
		updatedAt string
	)

	if err := scanner.Scan(&t.ID, &t.Title, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func getTag(ctx context.Context, q querier, token, tagID string) (*domain.Tag, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ? AND token = ?`, tagID, token)

	t, err := scanTag(row)
	if domainerrors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("tag %s not found", tagID)
	}
	if err != nil {
		return nil, domainerrors.StoreFailure("get tag", err)
	}
	return t, nil
}

// ListTags returns a page of the tenant's tags in insertion order.
func (s *Store) ListTags(ctx context.Context, token string, page store.Page) ([]*domain.Tag, error) {
	page = page.Normalize()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE token = ? ORDER BY rowid LIMIT ? OFFSET ?`,
		token, page.Limit, page.Offset)
	if err != nil {
		return nil, domainerrors.StoreFailure("list tags", err)
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, domainerrors.StoreFailure("scan tag", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.StoreFailure("iterate tags", err)
	}
	return tags, nil
}

// GetTag retrieves a tag owned by token.
// Returns errors.ErrNotFound if the id does not resolve for token.
func (s *Store) GetTag(ctx context.Context, token, tagID string) (*domain.Tag, error) {
	return getTag(ctx, s.db, token, tagID)
}

// CreateTag inserts a new tag. Duplicate titles are allowed.
func (s *Store) CreateTag(ctx context.Context, token string, req domain.CreateTagRequest) (*domain.Tag, error) {
	tagID, err := id.Generate(id.PrefixTag)
	if err != nil {
		return nil, domainerrors.StoreFailure("generate tag id", err)
	}

	now := time.Now().UTC()
	t := &domain.Tag{
		ID:        tagID,
		Title:     req.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tags (id, token, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID, token, t.Title, formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return nil, domainerrors.StoreFailure("insert tag", err)
	}
	return t, nil
}

// UpdateTag applies the fields present in upd.
func (s *Store) UpdateTag(ctx context.Context, token, tagID string, upd domain.TagUpdate) (*domain.Tag, error) {
	var t *domain.Tag
	err := s.withTx(ctx, "update tag", func(tx *sql.Tx) error {
		var err error
		t, err = getTag(ctx, tx, token, tagID)
		if err != nil {
			return err
		}
		if upd.Title == nil {
			return nil
		}

		t.Title = *upd.Title
		t.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx,
			`UPDATE tags SET title = ?, updated_at = ? WHERE id = ? AND token = ?`,
			t.Title, formatTime(t.UpdatedAt), tagID, token)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTag removes a tag and its association rows. Products that carried it stay.
// Under the restrict policy a tag still attached to products is not deleted.
func (s *Store) DeleteTag(ctx context.Context, token, tagID string) (*domain.Tag, error) {
	policy := s.DeletePolicy()

	var t *domain.Tag
	err := s.withTx(ctx, "delete tag", func(tx *sql.Tx) error {
		var err error
		t, err = getTag(ctx, tx, token, tagID)
		if err != nil {
			return err
		}

		if policy == domain.PolicyRestrict {
			var n int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM product_tags WHERE tag_id = ?`, tagID).Scan(&n); err != nil {
				return err
			}
			if n > 0 {
				return domainerrors.Conflictf("tag %s is still attached to %d products", tagID, n)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM product_tags WHERE tag_id = ?`, tagID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ? AND token = ?`, tagID, token)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTagIDs returns every tag id owned by token in insertion order.
func (s *Store) ListTagIDs(ctx context.Context, token string) ([]string, error) {
	return s.listIDs(ctx, "tags", token)
}
