package usecase

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comeca-ai/leao-pet-vitality/internal/entity"
)

func newWhatsAppFixture(productID uuid.UUID) (*WhatsAppCheckout, *mockOrderRepo, *mockProductRepo, *mockSender) {
	orders := new(mockOrderRepo)
	products := new(mockProductRepo)
	sender := new(mockSender)
	uc := NewWhatsAppCheckout(
		testConfig(productID),
		"5511999998888",
		products,
		NewAddressResolver(new(mockAddressRepo)),
		NewCreateOrder(orders),
		NewNotifier(sender),
	)
	return uc, orders, products, sender
}

func TestWhatsAppCheckoutPersistsTerminalOrder(t *testing.T) {
	productID := uuid.New()
	uc, orders, products, sender := newWhatsAppFixture(productID)

	products.On("GetByID", mock.Anything, productID).Return(testProduct(productID), nil)
	orders.On("Create", mock.Anything, mock.MatchedBy(func(o *entity.Order) bool {
		return o.Status == entity.StatusWhatsApp && o.PaymentMethod == entity.MethodWhatsApp
	})).Return(nil)
	sender.On("Send", mock.Anything, "ana@example.com", mock.Anything, mock.Anything).Return(nil)

	res, err := uc.Execute(context.Background(), CheckoutInput{Quantity: 2, Customer: testCustomer()})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusWhatsApp, res.Order.Status)
	assert.True(t, res.Order.Status.IsTerminal())
	assert.Equal(t, "99.80", res.Order.Total.StringFixed(2))
	assert.True(t, strings.HasPrefix(res.Reference, "WA"))
	orders.AssertExpectations(t)
}

func TestWhatsAppDeepLink(t *testing.T) {
	productID := uuid.New()
	uc, orders, products, sender := newWhatsAppFixture(productID)

	products.On("GetByID", mock.Anything, productID).Return(testProduct(productID), nil)
	orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := uc.Execute(context.Background(), CheckoutInput{Quantity: 1, Customer: testCustomer()})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.DeepLink, "https://wa.me/5511999998888?text="), res.DeepLink)

	u, err := url.Parse(res.DeepLink)
	require.NoError(t, err)
	decoded := u.Query().Get("text")
	assert.Equal(t, res.Message, decoded)

	// the message carries the order data and the customer details
	assert.Contains(t, res.Message, res.Reference)
	assert.Contains(t, res.Message, "Juba de Leão 500mg")
	assert.Contains(t, res.Message, "R$ 49,90")
	assert.Contains(t, res.Message, "Ana Souza")
	assert.Contains(t, res.Message, "Rua das Flores, 123")
}

func TestWhatsAppStockFailureBlocks(t *testing.T) {
	productID := uuid.New()
	uc, orders, products, _ := newWhatsAppFixture(productID)

	product := testProduct(productID)
	product.Stock = 0
	products.On("GetByID", mock.Anything, productID).Return(product, nil)

	_, err := uc.Execute(context.Background(), CheckoutInput{Quantity: 1, Customer: testCustomer()})
	require.Error(t, err)
	assert.Equal(t, KindStock, KindOf(err))
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWhatsAppEmailFailureDoesNotFailCheckout(t *testing.T) {
	productID := uuid.New()
	uc, orders, products, sender := newWhatsAppFixture(productID)

	products.On("GetByID", mock.Anything, productID).Return(testProduct(productID), nil)
	orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)

	res, err := uc.Execute(context.Background(), CheckoutInput{Quantity: 1, Customer: testCustomer()})
	require.NoError(t, err)
	assert.NotNil(t, res.Order)
}
