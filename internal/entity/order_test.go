package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusInitiated, StatusAwaitingPayment, true},
		{StatusInitiated, StatusPaid, true},
		{StatusInitiated, StatusCancelled, true},
		{StatusAwaitingPayment, StatusPaid, true},
		{StatusAwaitingPayment, StatusCancelled, true},

		{StatusAwaitingPayment, StatusAwaitingPayment, false},
		{StatusPaid, StatusCancelled, false},
		{StatusPaid, StatusAwaitingPayment, false},
		{StatusCancelled, StatusPaid, false},
		{StatusWhatsApp, StatusPaid, false},
		{StatusPaid, StatusInitiated, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestAllowedFromMatchesCanTransition(t *testing.T) {
	all := []Status{StatusInitiated, StatusAwaitingPayment, StatusPaid, StatusCancelled, StatusWhatsApp}
	for _, to := range all {
		allowed := AllowedFrom(to)
		for _, from := range all {
			assert.Equal(t, CanTransition(from, to), contains(allowed, from), "%s -> %s", from, to)
		}
	}
}

func contains(ss []Status, s Status) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusPaid.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusWhatsApp.IsTerminal())
	assert.False(t, StatusInitiated.IsTerminal())
	assert.False(t, StatusAwaitingPayment.IsTerminal())
}

func validOrder() *Order {
	price := decimal.RequireFromString("49.90")
	id := uuid.New()
	return &Order{
		ID:     id,
		Total:  price.Mul(decimal.NewFromInt(3)),
		Status: StatusInitiated,
		Items: []OrderItem{{
			ID:        uuid.New(),
			OrderID:   id,
			ProductID: uuid.New(),
			Quantity:  3,
			UnitPrice: price,
			Subtotal:  price.Mul(decimal.NewFromInt(3)),
		}},
	}
}

func TestOrderValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validOrder().Validate())
	})

	t.Run("no items", func(t *testing.T) {
		o := validOrder()
		o.Items = nil
		assert.ErrorIs(t, o.Validate(), ErrNoItems)
	})

	t.Run("zero total", func(t *testing.T) {
		o := validOrder()
		o.Total = decimal.Zero
		assert.ErrorIs(t, o.Validate(), ErrInvalidTotal)
	})

	t.Run("total mismatch", func(t *testing.T) {
		o := validOrder()
		o.Total = o.Total.Add(decimal.NewFromInt(1))
		assert.ErrorIs(t, o.Validate(), ErrTotalMismatch)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		o := validOrder()
		o.Items[0].Quantity = 0
		assert.Error(t, o.Validate())
	})
}

func TestReference(t *testing.T) {
	o := &Order{ID: uuid.MustParse("303f5be2-5d9c-44a3-9e3f-aabbccdd1234")}
	ref := o.Reference()
	assert.Equal(t, "CCDD1234", ref)
	assert.Len(t, ref, 8)
}

func TestAbandoned(t *testing.T) {
	now := time.Now()
	window := time.Hour

	fresh := &Order{Status: StatusInitiated, CreatedAt: now.Add(-30 * time.Minute)}
	assert.False(t, fresh.Abandoned(window, now))

	stale := &Order{Status: StatusInitiated, CreatedAt: now.Add(-2 * time.Hour)}
	assert.True(t, stale.Abandoned(window, now))

	// only the initial state can be abandoned
	paid := &Order{Status: StatusPaid, CreatedAt: now.Add(-48 * time.Hour)}
	assert.False(t, paid.Abandoned(window, now))
}
