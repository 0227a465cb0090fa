package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	domain "github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/entity"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/logging"
)

const (
	gwSuccessResponse = "00"
	gwSuccessTxn      = "00"
)

// PaymentNotice carries the signature-verified fields of a gateway callback.
// It must only ever be built from parameters that passed hash verification.
type PaymentNotice struct {
	OrderID           string
	Amount            decimal.Decimal
	ResponseCode      string
	TransactionStatus string
	TransactionNo     string
	BankCode          string
	PayDate           string
}

// ProcessPayment applies a verified gateway callback to the order exactly
// once. Redelivered notifications resolve to ErrAlreadyConfirmed without a
// second transition or event.
type ProcessPayment struct {
	repo   OrderRepo
	pub    EventPublisher
	status StatusCache
}

func NewProcessPayment(repo OrderRepo, pub EventPublisher, status StatusCache) *ProcessPayment {
	return &ProcessPayment{repo: repo, pub: pub, status: status}
}

func (uc *ProcessPayment) Apply(ctx context.Context, n PaymentNotice) (domain.Status, error) {
	l := logging.FromCtx(ctx)

	order, err := uc.repo.GetByID(ctx, n.OrderID)
	if err != nil {
		return "", fmt.Errorf("load order %s: %w", n.OrderID, err)
	}
	if order == nil {
		return "", ErrOrderNotFound
	}
	if !n.Amount.Equal(order.TotalAmount) {
		return "", ErrAmountMismatch
	}
	if order.Status != domain.StatusPending {
		// gateway redelivery; already applied
		return order.Status, ErrAlreadyConfirmed
	}

	target := domain.StatusFailed
	if n.ResponseCode == gwSuccessResponse && n.TransactionStatus == gwSuccessTxn {
		target = domain.StatusProcessing
	}

	moved, err := uc.repo.UpdateStatusIf(ctx, order.ID, domain.StatusPending, target)
	if err != nil {
		return "", fmt.Errorf("update order %s status: %w", order.ID, err)
	}
	if !moved {
		// lost the race against a concurrent delivery of the same callback
		return target, ErrAlreadyConfirmed
	}

	if uc.status != nil {
		if err := uc.status.SetStatus(ctx, order.ID, string(target)); err != nil {
			l.Error("status cache update failed", "order_id", order.ID, "err", err)
		}
	}

	msg := PaymentProcessedMsg{
		OrderID:       order.ID,
		Status:        string(target),
		TransactionNo: n.TransactionNo,
		PaymentMethod: n.BankCode,
		PayDate:       n.PayDate,
	}
	if target == domain.StatusFailed {
		msg.ErrorCode = n.ResponseCode
		msg.ErrorMessage = "payment rejected by gateway"
	}
	if err := uc.pub.PublishPaymentProcessed(ctx, msg); err != nil {
		l.Error("payment.processed publish failed", "order_id", order.ID, "err", err)
	}

	return target, nil
}
