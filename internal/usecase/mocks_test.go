package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, o *entity.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*entity.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) GetByProcessorRef(ctx context.Context, ref string) (*entity.Order, error) {
	args := m.Called(ctx, ref)
	if o := args.Get(0); o != nil {
		return o.(*entity.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []entity.Status, to entity.Status, upd StatusUpdate) (bool, error) {
	args := m.Called(ctx, id, from, to, upd)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID, abandonedAfter time.Duration) ([]entity.Order, error) {
	args := m.Called(ctx, userID, abandonedAfter)
	if o := args.Get(0); o != nil {
		return o.([]entity.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAddressRepo struct {
	mock.Mock
}

func (m *mockAddressRepo) FindMatch(ctx context.Context, userID uuid.UUID, key entity.AddressKey) (*entity.Address, error) {
	args := m.Called(ctx, userID, key)
	if a := args.Get(0); a != nil {
		return a.(*entity.Address), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAddressRepo) Insert(ctx context.Context, a *entity.Address) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAddressRepo) Update(ctx context.Context, a *entity.Address) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*entity.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) FirstActive(ctx context.Context) (*entity.Product, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.(*entity.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*entity.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileRepo) Upsert(ctx context.Context, p *entity.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (*CheckoutSession, error) {
	args := m.Called(ctx, p)
	if s := args.Get(0); s != nil {
		return s.(*CheckoutSession), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Configured() bool {
	return m.Called().Bool(0)
}

func (m *mockVerifier) Verify(payload []byte, sigHeader string) error {
	return m.Called(payload, sigHeader).Error(0)
}

type mockDedup struct {
	mock.Mock
}

func (m *mockDedup) FirstDelivery(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, to, subject, html string) error {
	return m.Called(ctx, to, subject, html).Error(0)
}
