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

// categoryColumns is the ordered list of columns selected in category queries.
// Must match the scan order in scanCategory.
const categoryColumns = `id, title, description, picture, created_at, updated_at`

func scanCategory(scanner interface{ Scan(dest ...any) error }) (*domain.Category, error) {
	var (
		c         domain.Category
		picture   sql.NullString
		createdAt string
		updatedAt string
	)

	if err := scanner.Scan(&c.ID, &c.Title, &c.Description, &picture, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if picture.Valid {
		c.Picture = &picture.String
	}

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func getCategory(ctx context.Context, q querier, token, categoryID string) (*domain.Category, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND token = ?`, categoryID, token)

	c, err := scanCategory(row)
	if domainerrors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("category %s not found", categoryID)
	}
	if err != nil {
		return nil, domainerrors.StoreFailure("get category", err)
	}
	return c, nil
}

// ListCategories returns a page of the tenant's categories in insertion order.
func (s *Store) ListCategories(ctx context.Context, token string, page store.Page) ([]*domain.Category, error) {
	page = page.Normalize()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE token = ? ORDER BY rowid LIMIT ? OFFSET ?`,
		token, page.Limit, page.Offset)
	if err != nil {
		return nil, domainerrors.StoreFailure("list categories", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, domainerrors.StoreFailure("scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.StoreFailure("iterate categories", err)
	}
	return categories, nil
}

// GetCategory retrieves a category owned by token.
// Returns errors.ErrNotFound if the id does not resolve for token.
func (s *Store) GetCategory(ctx context.Context, token, categoryID string) (*domain.Category, error) {
	return getCategory(ctx, s.db, token, categoryID)
}

// CreateCategory inserts a new category with no picture.
func (s *Store) CreateCategory(ctx context.Context, token string, req domain.CreateCategoryRequest) (*domain.Category, error) {
	categoryID, err := id.Generate(id.PrefixCategory)
	if err != nil {
		return nil, domainerrors.StoreFailure("generate category id", err)
	}

	now := time.Now().UTC()
	c := &domain.Category{
		ID:          categoryID,
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO categories (id, token, title, description, picture, created_at, updated_at)
		VALUES (?, ?, ?, ?, NULL, ?, ?)`,
		c.ID, token, c.Title, c.Description, formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return nil, domainerrors.StoreFailure("insert category", err)
	}
	return c, nil
}

// UpdateCategory applies the fields present in upd.
func (s *Store) UpdateCategory(ctx context.Context, token, categoryID string, upd domain.CategoryUpdate) (*domain.Category, error) {
	var c *domain.Category
	err := s.withTx(ctx, "update category", func(tx *sql.Tx) error {
		var err error
		c, err = getCategory(ctx, tx, token, categoryID)
		if err != nil {
			return err
		}
		if upd.Empty() {
			return nil
		}

		if upd.Title != nil {
			c.Title = *upd.Title
		}
		if upd.Description != nil {
			c.Description = *upd.Description
		}
		c.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx, `
			UPDATE categories SET title = ?, description = ?, updated_at = ?
			WHERE id = ? AND token = ?`,
			c.Title, c.Description, formatTime(c.UpdatedAt), categoryID, token)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SetCategoryPicture replaces the category picture path.
func (s *Store) SetCategoryPicture(ctx context.Context, token, categoryID, path string) (*domain.Category, error) {
	var c *domain.Category
	err := s.withTx(ctx, "set category picture", func(tx *sql.Tx) error {
		var err error
		c, err = getCategory(ctx, tx, token, categoryID)
		if err != nil {
			return err
		}

		c.Picture = &path
		c.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx, `
			UPDATE categories SET picture = ?, updated_at = ?
			WHERE id = ? AND token = ?`,
			nullableString(c.Picture), formatTime(c.UpdatedAt), categoryID, token)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes a category and returns it as it was.
// Products referencing it are handled by the store's delete policy.
func (s *Store) DeleteCategory(ctx context.Context, token, categoryID string) (*domain.Category, error) {
	policy := s.DeletePolicy()

	var c *domain.Category
	err := s.withTx(ctx, "delete category", func(tx *sql.Tx) error {
		var err error
		c, err = getCategory(ctx, tx, token, categoryID)
		if err != nil {
			return err
		}

		switch policy {
		case domain.PolicyRestrict:
			var n int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM products WHERE token = ? AND category_id = ?`,
				token, categoryID).Scan(&n); err != nil {
				return err
			}
			if n > 0 {
				return domainerrors.Conflictf("category %s still has %d products", categoryID, n)
			}

		case domain.PolicyCascade:
			if _, err := tx.ExecContext(ctx, `
				DELETE FROM product_tags WHERE product_id IN (
					SELECT id FROM products WHERE token = ? AND category_id = ?)`,
				token, categoryID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM products WHERE token = ? AND category_id = ?`,
				token, categoryID); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND token = ?`, categoryID, token)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCategoryIDs returns every category id owned by token in insertion order.
func (s *Store) ListCategoryIDs(ctx context.Context, token string) ([]string, error) {
	return s.listIDs(ctx, "categories", token)
}
