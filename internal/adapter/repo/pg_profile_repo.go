package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
	"github.com/comeca-ai/leao-pet-vitality/internal/usecase"
)

type PgProfileRepo struct{ db *sql.DB }

func NewPgProfileRepo(db *sql.DB) *PgProfileRepo { return &PgProfileRepo{db: db} }

var _ usecase.ProfileRepo = (*PgProfileRepo)(nil)

func (r *PgProfileRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, email, phone, created_at, updated_at
FROM profiles WHERE id = $1`, id)

	var (
		p     entity.Profile
		phone sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &p.Email, &phone, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Phone = phone.String
	return &p, nil
}

// Upsert keeps the profile's contact fields in step with what the customer
// last entered at checkout. Empty inputs never blank out stored values.
func (r *PgProfileRepo) Upsert(ctx context.Context, p *entity.Profile) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO profiles (id, name, email, phone, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (id) DO UPDATE SET
  name = COALESCE(NULLIF(EXCLUDED.name, ''), profiles.name),
  email = COALESCE(NULLIF(EXCLUDED.email, ''), profiles.email),
  phone = COALESCE(NULLIF(EXCLUDED.phone, ''), profiles.phone),
  updated_at = now()`,
		p.ID, p.Name, p.Email, p.Phone,
	)
	return err
}
