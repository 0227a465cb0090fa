package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/entity"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase/mocks"
)

func pendingOrder(id string, total int64) *domain.Order {
	return &domain.Order{
		ID:          id,
		UserID:      "u1",
		Status:      domain.StatusPending,
		TotalAmount: decimal.NewFromInt(total),
	}
}

func successNotice(orderID string, amount int64) usecase.PaymentNotice {
	return usecase.PaymentNotice{
		OrderID:           orderID,
		Amount:            decimal.NewFromInt(amount),
		ResponseCode:      "00",
		TransactionStatus: "00",
		TransactionNo:     "14422574",
		BankCode:          "NCB",
		PayDate:           "20260830101530",
	}
}

func TestProcessPayment_SuccessTransition(t *testing.T) {
	repo := &mocks.MockOrderRepo{}
	pub := &mocks.MockPublisher{}
	status := &mocks.MockStatusCache{}
	uc := usecase.NewProcessPayment(repo, pub, status)

	repo.On("GetByID", mock.Anything, "o1").Return(pendingOrder("o1", 200), nil)
	repo.On("UpdateStatusIf", mock.Anything, "o1", domain.StatusPending, domain.StatusProcessing).
		Return(true, nil)
	status.On("SetStatus", mock.Anything, "o1", "PROCESSING").Return(nil)
	pub.On("PublishPaymentProcessed", mock.Anything, mock.MatchedBy(func(m usecase.PaymentProcessedMsg) bool {
		return m.OrderID == "o1" && m.Status == "PROCESSING" && m.TransactionNo == "14422574"
	})).Return(nil)

	got, err := uc.Apply(context.Background(), successNotice("o1", 200))

	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, got)
	pub.AssertNumberOfCalls(t, "PublishPaymentProcessed", 1)
}

func TestProcessPayment_FailureOutcome(t *testing.T) {
	repo := &mocks.MockOrderRepo{}
	pub := &mocks.MockPublisher{}
	uc := usecase.NewProcessPayment(repo, pub, nil)

	n := successNotice("o1", 200)
	n.ResponseCode = "24" // customer cancelled at the bank page

	repo.On("GetByID", mock.Anything, "o1").Return(pendingOrder("o1", 200), nil)
	repo.On("UpdateStatusIf", mock.Anything, "o1", domain.StatusPending, domain.StatusFailed).
		Return(true, nil)
	pub.On("PublishPaymentProcessed", mock.Anything, mock.MatchedBy(func(m usecase.PaymentProcessedMsg) bool {
		return m.Status == "FAILED" && m.ErrorCode == "24"
	})).Return(nil)

	got, err := uc.Apply(context.Background(), n)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got)
}

func TestProcessPayment_Idempotent(t *testing.T) {
	// second delivery of the same verified callback: order already left
	// PENDING, so no second transition and no second event
	repo := &mocks.MockOrderRepo{}
	pub := &mocks.MockPublisher{}
	uc := usecase.NewProcessPayment(repo, pub, nil)

	processed := pendingOrder("o1", 200)
	processed.Status = domain.StatusProcessing
	repo.On("GetByID", mock.Anything, "o1").Return(processed, nil)

	got, err := uc.Apply(context.Background(), successNotice("o1", 200))

	assert.ErrorIs(t, err, usecase.ErrAlreadyConfirmed)
	assert.Equal(t, domain.StatusProcessing, got)
	repo.AssertNotCalled(t, "UpdateStatusIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishPaymentProcessed", mock.Anything, mock.Anything)
}

func TestProcessPayment_ConcurrentDeliveryLosesRace(t *testing.T) {
	// the guarded UPDATE moved zero rows: another delivery won in between
	repo := &mocks.MockOrderRepo{}
	pub := &mocks.MockPublisher{}
	uc := usecase.NewProcessPayment(repo, pub, nil)

	repo.On("GetByID", mock.Anything, "o1").Return(pendingOrder("o1", 200), nil)
	repo.On("UpdateStatusIf", mock.Anything, "o1", domain.StatusPending, domain.StatusProcessing).
		Return(false, nil)

	_, err := uc.Apply(context.Background(), successNotice("o1", 200))

	assert.ErrorIs(t, err, usecase.ErrAlreadyConfirmed)
	pub.AssertNotCalled(t, "PublishPaymentProcessed", mock.Anything, mock.Anything)
}

func TestProcessPayment_OrderNotFound(t *testing.T) {
	repo := &mocks.MockOrderRepo{}
	uc := usecase.NewProcessPayment(repo, &mocks.MockPublisher{}, nil)

	repo.On("GetByID", mock.Anything, "missing").Return(nil, nil)

	_, err := uc.Apply(context.Background(), successNotice("missing", 200))

	assert.ErrorIs(t, err, usecase.ErrOrderNotFound)
}

func TestProcessPayment_AmountMismatch(t *testing.T) {
	repo := &mocks.MockOrderRepo{}
	pub := &mocks.MockPublisher{}
	uc := usecase.NewProcessPayment(repo, pub, nil)

	repo.On("GetByID", mock.Anything, "o1").Return(pendingOrder("o1", 200), nil)

	_, err := uc.Apply(context.Background(), successNotice("o1", 150))

	assert.ErrorIs(t, err, usecase.ErrAmountMismatch)
	repo.AssertNotCalled(t, "UpdateStatusIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishPaymentProcessed", mock.Anything, mock.Anything)
}

func TestProcessPayment_PublishFailureDoesNotFail(t *testing.T) {
	repo := &mocks.MockOrderRepo{}
	pub := &mocks.MockPublisher{}
	uc := usecase.NewProcessPayment(repo, pub, nil)

	repo.On("GetByID", mock.Anything, "o1").Return(pendingOrder("o1", 200), nil)
	repo.On("UpdateStatusIf", mock.Anything, "o1", domain.StatusPending, domain.StatusProcessing).
		Return(true, nil)
	pub.On("PublishPaymentProcessed", mock.Anything, mock.Anything).
		Return(assert.AnError)

	got, err := uc.Apply(context.Background(), successNotice("o1", 200))

	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, got)
}
