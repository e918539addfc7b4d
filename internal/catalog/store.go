package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
)

// ErrNotFound indicates the product or variant does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a sellable catalog entry.
type Product struct {
	ID        uuid.UUID       `json:"id"`
	SKU       string          `json:"sku"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Variants  []Variant       `json:"variants,omitempty"`
}

// Variant overrides the parent product price when set.
type Variant struct {
	ID        uuid.UUID        `json:"id"`
	ProductID uuid.UUID        `json:"product_id"`
	SKU       string           `json:"sku"`
	Name      string           `json:"name"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// PGStore loads catalog rows from Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

// List returns a page of active products matching an optional search term.
func (s *PGStore) List(ctx context.Context, search string, limit, offset int32) ([]Product, int64, error) {
	pattern := "%" + search + "%"
	var total int64
	err := s.Pool.QueryRow(ctx,
		`SELECT count(*) FROM products WHERE active AND ($1 = '%%' OR title ILIKE $1 OR sku ILIKE $1)`,
		pattern).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.Pool.Query(ctx, `
SELECT id, sku, title, price, active, created_at, updated_at
FROM products
WHERE active AND ($1 = '%%' OR title ILIKE $1 OR sku ILIKE $1)
ORDER BY title
LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	products := make([]Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// Get loads one product with its variants.
func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	row := s.Pool.QueryRow(ctx, `
SELECT id, sku, title, price, active, created_at, updated_at
FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, err
	}
	rows, err := s.Pool.Query(ctx, `
SELECT id, product_id, sku, name, price
FROM product_variants
WHERE product_id = $1
ORDER BY name`, id)
	if err != nil {
		return Product{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			v     Variant
			price pgtype.Numeric
		)
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &price); err != nil {
			return Product{}, err
		}
		if price.Valid {
			d, err := common.NumericToDecimal(price)
			if err != nil {
				return Product{}, err
			}
			v.Price = &d
		}
		p.Variants = append(p.Variants, v)
	}
	return p, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p     Product
		price pgtype.Numeric
	)
	err := row.Scan(&p.ID, &p.SKU, &p.Title, &price, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if p.Price, err = common.NumericToDecimal(price); err != nil {
		return Product{}, err
	}
	return p, nil
}
