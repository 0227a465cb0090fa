package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/entity"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase/mocks"
)

func newCreateOrderFixture() (*usecase.CreateOrder, *mocks.MockCartClient, *mocks.MockProductClient, *mocks.MockOrderRepo, *mocks.MockPublisher) {
	cart := &mocks.MockCartClient{}
	products := &mocks.MockProductClient{}
	repo := &mocks.MockOrderRepo{}
	pub := &mocks.MockPublisher{}
	uc := usecase.NewCreateOrder(cart, products, repo, pub)
	return uc, cart, products, repo, pub
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	tests := []struct {
		name string
		cart *usecase.Cart
	}{
		{name: "no cart at all", cart: nil},
		{name: "cart with zero items", cart: &usecase.Cart{UserID: "u1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, cart, _, repo, pub := newCreateOrderFixture()
			cart.On("Get", mock.Anything, "u1").Return(tt.cart, nil)

			_, err := uc.Execute(context.Background(), usecase.CreateOrderInput{UserID: "u1"})

			assert.ErrorIs(t, err, usecase.ErrCartEmpty)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			pub.AssertNotCalled(t, "PublishOrderCreated", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateOrder_NonPositiveQuantityRejected(t *testing.T) {
	tests := []struct {
		name string
		qty  int
	}{
		{name: "zero quantity", qty: 0},
		{name: "negative quantity", qty: -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, cart, products, repo, pub := newCreateOrderFixture()
			cart.On("Get", mock.Anything, "u1").Return(&usecase.Cart{
				UserID: "u1",
				Items:  []usecase.CartItem{{ProductID: "P1", Quantity: tt.qty}},
			}, nil)

			_, err := uc.Execute(context.Background(), usecase.CreateOrderInput{UserID: "u1"})

			var qtyErr *usecase.InvalidQuantityError
			require.ErrorAs(t, err, &qtyErr)
			assert.Equal(t, "P1", qtyErr.ProductID)
			assert.Equal(t, tt.qty, qtyErr.Quantity)
			products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			pub.AssertNotCalled(t, "PublishOrderCreated", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateOrder_ProductInvalid(t *testing.T) {
	uc, cart, products, repo, _ := newCreateOrderFixture()
	cart.On("Get", mock.Anything, "u1").Return(&usecase.Cart{
		UserID: "u1",
		Items:  []usecase.CartItem{{ProductID: "ghost", Quantity: 1}},
	}, nil)
	products.On("GetByID", mock.Anything, "ghost").Return(nil, nil)

	_, err := uc.Execute(context.Background(), usecase.CreateOrderInput{UserID: "u1"})

	var prodErr *usecase.ProductInvalidError
	require.ErrorAs(t, err, &prodErr)
	assert.Equal(t, "ghost", prodErr.ProductID)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	uc, cart, products, repo, pub := newCreateOrderFixture()
	cart.On("Get", mock.Anything, "u1").Return(&usecase.Cart{
		UserID: "u1",
		Items:  []usecase.CartItem{{ProductID: "P1", Quantity: 10}},
	}, nil)
	products.On("GetByID", mock.Anything, "P1").Return(&usecase.Product{
		ID: "P1", Name: "P1", Price: decimal.NewFromInt(100), StockQuantity: 5,
	}, nil)

	_, err := uc.Execute(context.Background(), usecase.CreateOrderInput{UserID: "u1"})

	var stockErr *usecase.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "P1", stockErr.ProductName)
	assert.Equal(t, 10, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Available)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishOrderCreated", mock.Anything, mock.Anything)
}

func TestCreateOrder_Success(t *testing.T) {
	uc, cart, products, repo, pub := newCreateOrderFixture()
	cart.On("Get", mock.Anything, "u1").Return(&usecase.Cart{
		UserID: "u1",
		Items:  []usecase.CartItem{{ProductID: "P1", Quantity: 2}},
	}, nil)
	products.On("GetByID", mock.Anything, "P1").Return(&usecase.Product{
		ID: "P1", Name: "Widget", Price: decimal.NewFromInt(100), StockQuantity: 5,
	}, nil)

	var saved *domain.Order
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Return(nil).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Order) })
	repo.On("GetByID", mock.Anything, mock.AnythingOfType("string")).Return(nil, nil)
	cart.On("Delete", mock.Anything, "u1").Return(nil)
	pub.On("PublishOrderCreated", mock.Anything, mock.AnythingOfType("usecase.OrderCreatedMsg")).Return(nil)

	order, err := uc.Execute(context.Background(), usecase.CreateOrderInput{UserID: "u1"})

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(200)), "total %s", order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "P1", order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, order.Items[0].Price.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "Widget", order.Items[0].ProductName)
	assert.Equal(t, domain.DefaultShippingAddress, order.ShippingAddress)

	cart.AssertCalled(t, "Delete", mock.Anything, "u1")
	pub.AssertNumberOfCalls(t, "PublishOrderCreated", 1)
}

func TestCreateOrder_PersistenceFailure(t *testing.T) {
	uc, cart, products, repo, pub := newCreateOrderFixture()
	cart.On("Get", mock.Anything, "u1").Return(&usecase.Cart{
		UserID: "u1",
		Items:  []usecase.CartItem{{ProductID: "P1", Quantity: 1}},
	}, nil)
	products.On("GetByID", mock.Anything, "P1").Return(&usecase.Product{
		ID: "P1", Name: "Widget", Price: decimal.NewFromInt(100), StockQuantity: 5,
	}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := uc.Execute(context.Background(), usecase.CreateOrderInput{UserID: "u1"})

	assert.ErrorIs(t, err, usecase.ErrPersistence)
	cart.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishOrderCreated", mock.Anything, mock.Anything)
}

func TestCreateOrder_BestEffortStepsDoNotFailTheOrder(t *testing.T) {
	tests := []struct {
		name       string
		deleteErr  error
		publishErr error
	}{
		{name: "cart delete fails", deleteErr: errors.New("cart service down")},
		{name: "publish fails", publishErr: errors.New("broker down")},
		{name: "both fail", deleteErr: errors.New("x"), publishErr: errors.New("y")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, cart, products, repo, pub := newCreateOrderFixture()
			cart.On("Get", mock.Anything, "u1").Return(&usecase.Cart{
				UserID: "u1",
				Items:  []usecase.CartItem{{ProductID: "P1", Quantity: 1}},
			}, nil)
			products.On("GetByID", mock.Anything, "P1").Return(&usecase.Product{
				ID: "P1", Name: "Widget", Price: decimal.NewFromInt(100), StockQuantity: 5,
			}, nil)
			repo.On("Create", mock.Anything, mock.Anything).Return(nil)
			repo.On("GetByID", mock.Anything, mock.Anything).Return(nil, nil)
			cart.On("Delete", mock.Anything, "u1").Return(tt.deleteErr)
			pub.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(tt.publishErr)

			order, err := uc.Execute(context.Background(), usecase.CreateOrderInput{UserID: "u1"})

			require.NoError(t, err)
			assert.Equal(t, domain.StatusPending, order.Status)
		})
	}
}

func TestCreateOrder_ShippingAddressKept(t *testing.T) {
	uc, cart, products, repo, pub := newCreateOrderFixture()
	cart.On("Get", mock.Anything, "u1").Return(&usecase.Cart{
		UserID: "u1",
		Items:  []usecase.CartItem{{ProductID: "P1", Quantity: 1}},
	}, nil)
	products.On("GetByID", mock.Anything, "P1").Return(&usecase.Product{
		ID: "P1", Name: "Widget", Price: decimal.NewFromInt(50), StockQuantity: 1,
	}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetByID", mock.Anything, mock.Anything).Return(nil, nil)
	cart.On("Delete", mock.Anything, "u1").Return(nil)
	pub.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(nil)

	order, err := uc.Execute(context.Background(), usecase.CreateOrderInput{
		UserID:          "u1",
		ShippingAddress: "12 Hang Bai, Hanoi",
	})

	require.NoError(t, err)
	assert.Equal(t, "12 Hang Bai, Hanoi", order.ShippingAddress)
}
