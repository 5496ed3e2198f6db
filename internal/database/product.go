package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/maltedev/price-tracker/internal/domain"
)

// ProductRepository persists tracked products and their price history.
type ProductRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetActiveIDs returns the ids of all products with monitoring enabled.
func (r *ProductRepository) GetActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.pool.Query(ctx,
		`SELECT id FROM products WHERE is_active ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active product ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan product id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// GetByID returns the product with its full price history, newest entry
// first, or nil when no such product exists.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, url, vendor, current_price, currency,
			   is_available, is_active, last_checked, created_at
		FROM products
		WHERE id = $1`

	p := &domain.Product{}
	err := r.db.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.URL, &p.Vendor, &p.CurrentPrice, &p.Currency,
		&p.IsAvailable, &p.IsActive, &p.LastChecked, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	history, err := r.getHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	p.History = history

	return p, nil
}

// List returns all tracked products without their histories.
func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, name, url, vendor, current_price, currency,
			   is_available, is_active, last_checked, created_at
		FROM products
		ORDER BY created_at DESC`

	rows, err := r.db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p := &domain.Product{}
		err := rows.Scan(
			&p.ID, &p.Name, &p.URL, &p.Vendor, &p.CurrentPrice, &p.Currency,
			&p.IsAvailable, &p.IsActive, &p.LastChecked, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

// Insert stores a newly tracked product along with the snapshot its
// registration recorded.
func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO products (
				id, name, url, vendor, current_price, currency,
				is_available, is_active, last_checked, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

		_, err := tx.Exec(ctx, query,
			p.ID, p.Name, p.URL, p.Vendor, p.CurrentPrice, p.Currency,
			p.IsAvailable, p.IsActive, p.LastChecked, p.CreatedAt,
		)
		if err != nil {
			return err
		}

		for _, snap := range p.History {
			_, err := tx.Exec(ctx,
				`INSERT INTO price_history (id, product_id, price, recorded_at)
				 VALUES ($1, $2, $3, $4)`,
				snap.ID, snap.ProductID, snap.Price, snap.Timestamp,
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if isUniqueViolation(err) {
		return domain.ErrDuplicateURL
	}
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

// Update persists the current state of a product together with any history
// entries appended since it was loaded. Both writes happen in one
// transaction so a price change is never recorded without its snapshot.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE products SET
				name = $2,
				current_price = $3,
				currency = $4,
				is_available = $5,
				is_active = $6,
				last_checked = $7
			WHERE id = $1`

		result, err := tx.Exec(ctx, query,
			p.ID, p.Name, p.CurrentPrice, p.Currency,
			p.IsAvailable, p.IsActive, p.LastChecked,
		)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		if result.RowsAffected() == 0 {
			return domain.ErrNotFound
		}

		// Snapshot ids are generated in the domain, so replaying ones that
		// were already persisted is a no-op.
		for _, snap := range p.History {
			_, err := tx.Exec(ctx,
				`INSERT INTO price_history (id, product_id, price, recorded_at)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT (id) DO NOTHING`,
				snap.ID, snap.ProductID, snap.Price, snap.Timestamp,
			)
			if err != nil {
				return fmt.Errorf("failed to insert price snapshot: %w", err)
			}
		}

		return nil
	})
}

// ExistsWithURL reports whether a product is already tracked under the URL.
func (r *ProductRepository) ExistsWithURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := r.db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE url = $1)`, url,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check product url: %w", err)
	}
	return exists, nil
}

func (r *ProductRepository) getHistory(ctx context.Context, productID uuid.UUID) ([]domain.PriceSnapshot, error) {
	rows, err := r.db.pool.Query(ctx,
		`SELECT id, product_id, price, recorded_at
		 FROM price_history
		 WHERE product_id = $1
		 ORDER BY recorded_at DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	var history []domain.PriceSnapshot
	for rows.Next() {
		var snap domain.PriceSnapshot
		if err := rows.Scan(&snap.ID, &snap.ProductID, &snap.Price, &snap.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan price snapshot: %w", err)
		}
		history = append(history, snap)
	}

	return history, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
