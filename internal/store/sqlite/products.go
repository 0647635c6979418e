package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/untdf/catalog/internal/domain"
	domainerrors "github.com/untdf/catalog/internal/errors"
	"github.com/untdf/catalog/internal/id"
	"github.com/untdf/catalog/internal/store"
)

// productColumns is the ordered list of columns selected in product queries.
// Must match the scan order in scanProduct.
const productColumns = `id, title, description, price, pictures, category_id, created_at, updated_at`

// scanProduct scans a product row. Tags are loaded separately by loadTags.
func scanProduct(scanner interface{ Scan(dest ...any) error }) (*domain.Product, error) {
	var (
		p         domain.Product
		pictures  string
		createdAt string
		updatedAt string
	)

	if err := scanner.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &pictures,
		&p.CategoryID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(pictures), &p.Pictures); err != nil {
		return nil, fmt.Errorf("decode pictures: %w", err)
	}
	if p.Pictures == nil {
		p.Pictures = []string{}
	}
	p.Tags = []domain.Tag{}

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func encodePictures(pictures []string) (string, error) {
	if pictures == nil {
		pictures = []string{}
	}
	b, err := json.Marshal(pictures)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// loadTags fills in the tags of each product in association order with one query.
func loadTags(ctx context.Context, q querier, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Product, len(products))
	args := make([]any, len(products))
	for i, p := range products {
		byID[p.ID] = p
		args[i] = p.ID
	}

	rows, err := q.QueryContext(ctx, `
		SELECT pt.product_id, t.id, t.title, t.created_at, t.updated_at
		FROM product_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.product_id IN (`+placeholders(len(args))+`)
		ORDER BY pt.product_id, pt.position`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID string
			t         domain.Tag
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&productID, &t.ID, &t.Title, &createdAt, &updatedAt); err != nil {
			return err
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return err
		}
		if p, ok := byID[productID]; ok {
			p.Tags = append(p.Tags, t)
		}
	}
	return rows.Err()
}

// attachTags links tagIDs to a product in the order given.
// Ids that do not resolve to a tag owned by token are skipped, as are repeats.
func attachTags(ctx context.Context, q querier, token, productID string, tagIDs []string) error {
	position := 0
	for _, tagID := range tagIDs {
		res, err := q.ExecContext(ctx, `
			INSERT OR IGNORE INTO product_tags (product_id, tag_id, position)
			SELECT ?, id, ? FROM tags WHERE id = ? AND token = ?`,
			productID, position, tagID, token)
		if err != nil {
			return fmt.Errorf("attach tag %s: %w", tagID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			position++
		}
	}
	return nil
}

func requireCategory(ctx context.Context, q querier, token, categoryID string) error {
	var n int
	if err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE id = ? AND token = ?`, categoryID, token).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return domainerrors.NotFoundf("category %s not found", categoryID)
	}
	return nil
}

func getProduct(ctx context.Context, q querier, token, productID string) (*domain.Product, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ? AND token = ?`, productID, token)

	p, err := scanProduct(row)
	if domainerrors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("product %s not found", productID)
	}
	if err != nil {
		return nil, domainerrors.StoreFailure("get product", err)
	}
	if err := loadTags(ctx, q, []*domain.Product{p}); err != nil {
		return nil, domainerrors.StoreFailure("load product tags", err)
	}
	return p, nil
}

// ListProducts returns a page of the tenant's products, tags included, in insertion order.
func (s *Store) ListProducts(ctx context.Context, token string, page store.Page) ([]*domain.Product, error) {
	page = page.Normalize()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE token = ? ORDER BY rowid LIMIT ? OFFSET ?`,
		token, page.Limit, page.Offset)
	if err != nil {
		return nil, domainerrors.StoreFailure("list products", err)
	}

	products := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			rows.Close()
			return nil, domainerrors.StoreFailure("scan product", err)
		}
		products = append(products, p)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, domainerrors.StoreFailure("iterate products", err)
	}

	if err := loadTags(ctx, s.db, products); err != nil {
		return nil, domainerrors.StoreFailure("load product tags", err)
	}
	return products, nil
}

// GetProduct retrieves a product owned by token with its tags.
func (s *Store) GetProduct(ctx context.Context, token, productID string) (*domain.Product, error) {
	return getProduct(ctx, s.db, token, productID)
}

// CreateProduct inserts a product. The category must belong to token;
// tag ids that don't are dropped. Nothing is written if any step fails.
func (s *Store) CreateProduct(ctx context.Context, token string, req domain.CreateProductRequest) (*domain.Product, error) {
	productID, err := id.Generate(id.PrefixProduct)
	if err != nil {
		return nil, domainerrors.StoreFailure("generate product id", err)
	}

	now := time.Now().UTC()
	var p *domain.Product
	err = s.withTx(ctx, "create product", func(tx *sql.Tx) error {
		if err := requireCategory(ctx, tx, token, req.CategoryID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, token, title, description, price, pictures, category_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, '[]', ?, ?, ?)`,
			productID, token, req.Title, req.Description, req.Price, req.CategoryID,
			formatTime(now), formatTime(now)); err != nil {
			return err
		}

		if err := attachTags(ctx, tx, token, productID, req.TagIDs); err != nil {
			return err
		}

		var err error
		p, err = getProduct(ctx, tx, token, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct applies the fields present in upd. A non-nil TagIDs replaces
// the whole tag set. A new CategoryID must belong to token.
func (s *Store) UpdateProduct(ctx context.Context, token, productID string, upd domain.ProductUpdate) (*domain.Product, error) {
	var p *domain.Product
	err := s.withTx(ctx, "update product", func(tx *sql.Tx) error {
		current, err := getProduct(ctx, tx, token, productID)
		if err != nil {
			return err
		}
		if upd.Empty() {
			p = current
			return nil
		}

		if upd.Title != nil {
			current.Title = *upd.Title
		}
		if upd.Description != nil {
			current.Description = *upd.Description
		}
		if upd.Price != nil {
			current.Price = *upd.Price
		}
		if upd.CategoryID != nil {
			if err := requireCategory(ctx, tx, token, *upd.CategoryID); err != nil {
				return err
			}
			current.CategoryID = *upd.CategoryID
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE products SET title = ?, description = ?, price = ?, category_id = ?, updated_at = ?
			WHERE id = ? AND token = ?`,
			current.Title, current.Description, current.Price, current.CategoryID,
			formatTime(time.Now().UTC()), productID, token); err != nil {
			return err
		}

		if upd.TagIDs != nil {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM product_tags WHERE product_id = ?`, productID); err != nil {
				return err
			}
			if err := attachTags(ctx, tx, token, productID, *upd.TagIDs); err != nil {
				return err
			}
		}

		p, err = getProduct(ctx, tx, token, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// AppendProductPictures adds asset paths to the end of the product's pictures.
func (s *Store) AppendProductPictures(ctx context.Context, token, productID string, paths []string) (*domain.Product, error) {
	var p *domain.Product
	err := s.withTx(ctx, "append product pictures", func(tx *sql.Tx) error {
		var err error
		p, err = getProduct(ctx, tx, token, productID)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return nil
		}

		p.Pictures = append(p.Pictures, paths...)
		p.UpdatedAt = time.Now().UTC()

		encoded, err := encodePictures(p.Pictures)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE products SET pictures = ?, updated_at = ? WHERE id = ? AND token = ?`,
			encoded, formatTime(p.UpdatedAt), productID, token)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProduct removes a product and its association rows, returning the product as it was.
func (s *Store) DeleteProduct(ctx context.Context, token, productID string) (*domain.Product, error) {
	var p *domain.Product
	err := s.withTx(ctx, "delete product", func(tx *sql.Tx) error {
		var err error
		p, err = getProduct(ctx, tx, token, productID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM product_tags WHERE product_id = ?`, productID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM products WHERE id = ? AND token = ?`, productID, token)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProductIDs returns every product id owned by token in insertion order.
func (s *Store) ListProductIDs(ctx context.Context, token string) ([]string, error) {
	return s.listIDs(ctx, "products", token)
}
