package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/grocery-pos-backend/internal/middleware"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestPublishOrderPlaced(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	ctx := middleware.WithCorrelationID(context.Background(), "cid-1")

	err := p.PublishOrderPlaced(ctx, OrderPlaced{
		OrderID:  42,
		Subtotal: "6.00",
		Tax:      "0.48",
		Total:    "6.48",
		Lines:    []OrderPlacedLine{{ProductID: 1, Quantity: 2, UnitPrice: "3.00"}},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	require.Equal(t, "42", string(w.msgs[0].Key))

	var env Envelope[OrderPlaced]
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &env))
	require.Equal(t, OrderPlacedName, env.EventName)
	require.Equal(t, "42", env.PartitionKey)
	require.Equal(t, "cid-1", env.CorrelationID)
	require.NotEmpty(t, env.EventID)
	require.Equal(t, "6.48", env.Payload.Total)
}

func TestPublishOrderPlaced_WriterError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}}
	err := p.PublishOrderPlaced(context.Background(), OrderPlaced{OrderID: 1})
	require.ErrorContains(t, err, "broker down")
}

func TestParseBrokers(t *testing.T) {
	require.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092 "))
	require.Empty(t, ParseBrokers(""))
}
