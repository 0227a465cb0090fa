package queue

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase"
)

func TestJSONHandler_DecodesAndDispatches(t *testing.T) {
	var got usecase.FulfillmentMsg
	h := JSONHandler[usecase.FulfillmentMsg]{
		HandleFunc: func(_ context.Context, msg usecase.FulfillmentMsg) error {
			got = msg
			return nil
		},
	}

	err := h.Handle(context.Background(), amqp.Delivery{
		Body: []byte(`{"orderId":"o1","status":"DELIVERED"}`),
	})

	require.NoError(t, err)
	assert.Equal(t, "o1", got.OrderID)
	assert.Equal(t, "DELIVERED", got.Status)
}

func TestJSONHandler_DecodeErrorNamesRoutingKey(t *testing.T) {
	h := JSONHandler[usecase.FulfillmentMsg]{
		HandleFunc: func(context.Context, usecase.FulfillmentMsg) error {
			t.Fatal("handler must not run on a decode failure")
			return nil
		},
	}

	err := h.Handle(context.Background(), amqp.Delivery{
		RoutingKey: RoutingKeyOrderCreated,
		Body:       []byte(`not json`),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), RoutingKeyOrderCreated)
}
