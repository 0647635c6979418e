package sqlite

import (
	"context"
	"database/sql"

	"github.com/untdf/catalog/internal/domain"
	domainerrors "github.com/untdf/catalog/internal/errors"
)

func countRows(ctx context.Context, q querier, table, where string, args ...any) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM ` + table
	if where != "" {
		query += ` WHERE ` + where
	}
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Counts returns how many categories, products and tags token owns.
func (s *Store) Counts(ctx context.Context, token string) (domain.Counts, error) {
	var c domain.Counts
	var err error
	if c.Categories, err = countRows(ctx, s.db, "categories", "token = ?", token); err != nil {
		return domain.Counts{}, domainerrors.StoreFailure("count categories", err)
	}
	if c.Products, err = countRows(ctx, s.db, "products", "token = ?", token); err != nil {
		return domain.Counts{}, domainerrors.StoreFailure("count products", err)
	}
	if c.Tags, err = countRows(ctx, s.db, "tags", "token = ?", token); err != nil {
		return domain.Counts{}, domainerrors.StoreFailure("count tags", err)
	}
	return c, nil
}

// PurgeAll deletes every row of every tenant in one transaction and returns
// how many of each kind existed beforehand.
func (s *Store) PurgeAll(ctx context.Context) (domain.Counts, error) {
	var c domain.Counts
	err := s.withTx(ctx, "purge all", func(tx *sql.Tx) error {
		var err error
		if c.Products, err = countRows(ctx, tx, "products", ""); err != nil {
			return err
		}
		if c.Categories, err = countRows(ctx, tx, "categories", ""); err != nil {
			return err
		}
		if c.Tags, err = countRows(ctx, tx, "tags", ""); err != nil {
			return err
		}

		for _, table := range []string{"product_tags", "products", "categories", "tags"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Counts{}, err
	}

	s.logger.Info("catalog purged",
		"products", c.Products,
		"categories", c.Categories,
		"tags", c.Tags,
	)
	return c, nil
}
