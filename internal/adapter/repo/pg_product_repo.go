package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
	"github.com/comeca-ai/leao-pet-vitality/internal/usecase"
)

type PgProductRepo struct{ db *sql.DB }

func NewPgProductRepo(db *sql.DB) *PgProductRepo { return &PgProductRepo{db: db} }

var _ usecase.ProductRepo = (*PgProductRepo)(nil)

const productColumns = `id, name, description, image_url, price, promotional_price, stock, active, created_at, updated_at`

func (r *PgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// FirstActive exists only so a fresh install without store.product_id
// configured still resolves the single SKU being sold.
func (r *PgProductRepo) FirstActive(ctx context.Context) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE active ORDER BY created_at LIMIT 1`)
	return scanProduct(row)
}

func scanProduct(row *sql.Row) (*entity.Product, error) {
	var (
		p     entity.Product
		desc  sql.NullString
		image sql.NullString
		promo decimal.NullDecimal
	)
	err := row.Scan(&p.ID, &p.Name, &desc, &image, &p.Price, &promo,
		&p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Description = desc.String
	p.ImageURL = image.String
	if promo.Valid {
		p.PromotionalPrice = &promo.Decimal
	}
	return &p, nil
}
