package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	domain "github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/entity"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase"
)

type MockCartClient struct {
	mock.Mock
}

func (m *MockCartClient) Get(ctx context.Context, userID string) (*usecase.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.Cart), args.Error(1)
}

func (m *MockCartClient) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockProductClient struct {
	mock.Mock
}

func (m *MockProductClient) GetByID(ctx context.Context, id string) (*usecase.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.Product), args.Error(1)
}

type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepo) UpdateStatusIf(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderCreated(ctx context.Context, msg usecase.OrderCreatedMsg) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockPublisher) PublishPaymentProcessed(ctx context.Context, msg usecase.PaymentProcessedMsg) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockStatusCache struct {
	mock.Mock
}

func (m *MockStatusCache) SetStatus(ctx context.Context, orderID string, status string) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *MockStatusCache) GetStatus(ctx context.Context, orderID string) (string, error) {
	args := m.Called(ctx, orderID)
	return args.String(0), args.Error(1)
}

type MockCatalogCache struct {
	mock.Mock
}

func (m *MockCatalogCache) InvalidateProduct(ctx context.Context, productID string, categoryIDs []string) error {
	args := m.Called(ctx, productID, categoryIDs)
	return args.Error(0)
}

type MockStockRepo struct {
	mock.Mock
}

func (m *MockStockRepo) Current(ctx context.Context, productID string) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

func (m *MockStockRepo) AdjustWithLock(ctx context.Context, productID string, delta int) (int, error) {
	args := m.Called(ctx, productID, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockStockRepo) CategoryIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
