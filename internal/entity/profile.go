package entity

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the customer-facing identity for an authenticated user.
// Authentication itself lives in the external identity provider; we only
// keep the contact fields checkout and notifications need.
type Profile struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
