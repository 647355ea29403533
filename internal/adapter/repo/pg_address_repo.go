package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
	"github.com/comeca-ai/leao-pet-vitality/internal/usecase"
)

type PgAddressRepo struct{ db *sql.DB }

func NewPgAddressRepo(db *sql.DB) *PgAddressRepo { return &PgAddressRepo{db: db} }

var _ usecase.AddressRepo = (*PgAddressRepo)(nil)

const addressColumns = `id, user_id, street, number, complement, neighborhood, city, state, postal_code, phone, created_at, updated_at`

func (r *PgAddressRepo) FindMatch(ctx context.Context, userID uuid.UUID, key entity.AddressKey) (*entity.Address, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+addressColumns+`
FROM addresses
WHERE user_id = $1 AND postal_code = $2 AND street = $3 AND number = $4 AND city = $5`,
		userID, key.PostalCode, key.Street, key.Number, key.City,
	)
	var a entity.Address
	err := row.Scan(&a.ID, &a.UserID, &a.Street, &a.Number, &a.Complement, &a.Neighborhood,
		&a.City, &a.State, &a.PostalCode, &a.Phone, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PgAddressRepo) Insert(ctx context.Context, a *entity.Address) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO addresses (`+addressColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.UserID, a.Street, a.Number, a.Complement, a.Neighborhood,
		a.City, a.State, a.PostalCode, a.Phone, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *PgAddressRepo) Update(ctx context.Context, a *entity.Address) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE addresses
SET complement = $1, neighborhood = $2, state = $3, phone = $4, updated_at = $5
WHERE id = $6`,
		a.Complement, a.Neighborhood, a.State, a.Phone, a.UpdatedAt, a.ID,
	)
	return err
}
