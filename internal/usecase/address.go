package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
	"github.com/comeca-ai/leao-pet-vitality/internal/logging"
)

// AddressResolver finds or creates a shipping address for a user. Matching
// is on the full (postal code, street, number, city) tuple; a match with
// differing secondary fields updates the stored row in place. Concurrent
// duplicate submissions may still race into duplicate rows without a
// uniqueness constraint; a rare duplicate address is non-corrupting.
type AddressResolver struct {
	addresses AddressRepo
	log       *slog.Logger
}

func NewAddressResolver(addresses AddressRepo) *AddressResolver {
	return &AddressResolver{addresses: addresses, log: logging.New("address")}
}

func (r *AddressResolver) Resolve(ctx context.Context, userID uuid.UUID, in entity.Address) (uuid.UUID, error) {
	if err := validateAddress(&in); err != nil {
		return uuid.Nil, err
	}

	existing, err := r.addresses.FindMatch(ctx, userID, in.Key())
	if err != nil {
		return uuid.Nil, Ef(KindInternal, "look up address", err)
	}

	if existing != nil {
		if existing.SecondaryDiffers(&in) {
			existing.ApplySecondary(&in)
			existing.UpdatedAt = time.Now().UTC()
			if err := r.addresses.Update(ctx, existing); err != nil {
				return uuid.Nil, Ef(KindInternal, "update address", err)
			}
			r.log.InfoContext(ctx, "address updated", "address_id", existing.ID)
		}
		return existing.ID, nil
	}

	in.ID = uuid.New()
	in.UserID = userID
	now := time.Now().UTC()
	in.CreatedAt = now
	in.UpdatedAt = now
	if err := r.addresses.Insert(ctx, &in); err != nil {
		return uuid.Nil, Ef(KindInternal, "insert address", err)
	}
	r.log.InfoContext(ctx, "address created", "address_id", in.ID)
	return in.ID, nil
}

func validateAddress(a *entity.Address) error {
	switch {
	case a.PostalCode == "":
		return FieldError("postal_code", "postal code is required")
	case a.Street == "":
		return FieldError("street", "street is required")
	case a.Number == "":
		return FieldError("number", "number is required")
	case a.City == "":
		return FieldError("city", "city is required")
	case a.State == "":
		return FieldError("state", "state is required")
	}
	return nil
}
