package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/adapter/http/middleware"
	domain "github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/entity"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/gateway"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/logging"
	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase"
)

type PaymentHandler struct {
	gw        *gateway.Client
	process   *usecase.ProcessPayment
	query     usecase.OrderRepo
	resultURL string
}

func NewPaymentHandler(gw *gateway.Client, process *usecase.ProcessPayment, query usecase.OrderRepo, resultURL string) *PaymentHandler {
	return &PaymentHandler{gw: gw, process: process, query: query, resultURL: resultURL}
}

type payURLReq struct {
	OrderID  string `json:"orderId" binding:"required"`
	BankCode string `json:"bankCode"`
	Locale   string `json:"locale"`
}

// BuildPayURL mints the signed gateway redirect for a pending order. The
// amount always comes from the persisted order, never from the client.
func (h *PaymentHandler) BuildPayURL(c *gin.Context) {
	var req payURLReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	order, err := h.query.GetByID(ctx, req.OrderID)
	if err != nil || order == nil || order.UserID != middleware.UserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if order.Status != domain.StatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "order_not_payable", "status": string(order.Status)})
		return
	}

	payURL := h.gw.BuildPayURL(gateway.PayRequest{
		OrderID:   order.ID,
		Amount:    order.TotalAmount,
		OrderInfo: fmt.Sprintf("Payment for order %s", order.ID),
		ClientIP:  c.ClientIP(),
		BankCode:  req.BankCode,
		Locale:    req.Locale,
	})
	c.JSON(http.StatusOK, gin.H{"paymentUrl": payURL})
}

// IPN is the gateway's server-to-server notification. Whatever happens
// internally, the gateway gets HTTP 200 with a vocabulary code; anything
// else triggers its retry storm.
func (h *PaymentHandler) IPN(c *gin.Context) {
	resp := gateway.RespUnknownError
	defer func() {
		if r := recover(); r != nil {
			logging.From(c).Error("panic in IPN handler", "panic", r)
			resp = gateway.RespUnknownError
		}
		middleware.CountPaymentCallback("ipn", resp.Code)
		c.JSON(http.StatusOK, resp)
	}()

	resp = h.applyCallback(c)
}

// Return is the browser redirect leg. It always forwards to the storefront
// result page, even on internal failure.
func (h *PaymentHandler) Return(c *gin.Context) {
	resp := gateway.RespUnknownError
	orderID := c.Query("txnRef")
	defer func() {
		if r := recover(); r != nil {
			logging.From(c).Error("panic in return handler", "panic", r)
			resp = gateway.RespUnknownError
		}
		middleware.CountPaymentCallback("return", resp.Code)
		c.Redirect(http.StatusFound, h.resultRedirect(orderID, resp))
	}()

	resp = h.applyCallback(c)
}

// applyCallback verifies the signature, then applies the payment outcome
// idempotently, and maps everything onto the fixed response vocabulary.
func (h *PaymentHandler) applyCallback(c *gin.Context) gateway.Response {
	params := map[string]string{}
	for k, vs := range c.Request.URL.Query() {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}

	// nothing in the payload is trusted before this passes
	cb, err := h.gw.VerifyCallback(params)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			logging.From(c).Warn("callback signature rejected")
			return gateway.RespInvalidSignature
		}
		return gateway.RespUnknownError
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := h.process.Apply(ctx, usecase.PaymentNotice{
		OrderID:           cb.TxnRef,
		Amount:            cb.Amount,
		ResponseCode:      cb.ResponseCode,
		TransactionStatus: cb.TransactionStatus,
		TransactionNo:     cb.TransactionNo,
		BankCode:          cb.BankCode,
		PayDate:           cb.PayDate,
	})
	switch {
	case errors.Is(err, usecase.ErrOrderNotFound):
		return gateway.RespOrderNotFound
	case errors.Is(err, usecase.ErrAmountMismatch):
		return gateway.RespInvalidAmount
	case errors.Is(err, usecase.ErrAlreadyConfirmed):
		return gateway.RespAlreadyConfirmed
	case err != nil:
		logging.From(c).Error("payment apply failed", "order_id", cb.TxnRef, "err", err)
		return gateway.RespUnknownError
	}

	logging.From(c).Info("payment callback applied", "order_id", cb.TxnRef, "status", string(status))
	return gateway.RespConfirmSuccess
}

func (h *PaymentHandler) resultRedirect(orderID string, resp gateway.Response) string {
	q := url.Values{}
	q.Set("orderId", orderID)
	q.Set("code", resp.Code)
	q.Set("message", resp.Message)
	return h.resultURL + "?" + q.Encode()
}
