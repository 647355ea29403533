package entity

import (
	"time"

	"github.com/google/uuid"
)

// Address is a shipping address belonging to a user. Orders share it by
// reference; it is never deleted.
type Address struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	PostalCode   string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Key returns the identity fields used for "same address" matching.
type AddressKey struct {
	PostalCode string
	Street     string
	Number     string
	City       string
}

func (a *Address) Key() AddressKey {
	return AddressKey{
		PostalCode: a.PostalCode,
		Street:     a.Street,
		Number:     a.Number,
		City:       a.City,
	}
}

// SecondaryDiffers reports whether any non-key field differs from other.
// A resubmitted matching address with differing secondary fields updates
// the stored row in place.
func (a *Address) SecondaryDiffers(other *Address) bool {
	return a.Neighborhood != other.Neighborhood ||
		a.State != other.State ||
		a.Complement != other.Complement ||
		a.Phone != other.Phone
}

// ApplySecondary copies the non-key fields from other onto a.
func (a *Address) ApplySecondary(other *Address) {
	a.Neighborhood = other.Neighborhood
	a.State = other.State
	a.Complement = other.Complement
	a.Phone = other.Phone
}
