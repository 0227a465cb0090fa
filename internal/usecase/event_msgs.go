package usecase

import "time"

// Published on order.created after the order row is committed.
type OrderCreatedMsg struct {
	OrderID         string          `json:"orderId"`
	UserID          string          `json:"userId"`
	TotalAmount     string          `json:"totalAmount"`
	Items           []OrderItemSnap `json:"items"`
	ShippingAddress string          `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type OrderItemSnap struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
}

// Published on payment.processed after a verified callback moved the order
// out of PENDING.
type PaymentProcessedMsg struct {
	OrderID       string `json:"orderId"`
	Status        string `json:"status"`
	TransactionNo string `json:"transactionNo"`
	PaymentMethod string `json:"paymentMethod"`
	PayDate       string `json:"payDate"`
	ErrorCode     string `json:"errorCode,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}

// Sent by the fulfillment service on Kafka.
type FulfillmentMsg struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"` // "DELIVERED" | "CANCELLED"
}
