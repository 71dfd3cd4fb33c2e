package services

import (
	"context"
	"encoding/json"

	"pos-service/models"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// paymentResultHandler receives gateway outcome events. Satisfied by
// CheckoutService.
type paymentResultHandler interface {
	HandlePaymentSucceeded(ctx context.Context, transactionID uuid.UUID, externalRef string) error
	HandlePaymentFailed(ctx context.Context, transactionID uuid.UUID, errorDetail string) error
}

// PaymentResultConsumer reads gateway result events from kafka and
// dispatches them to the checkout state machine. The transaction id in each
// event is the dedup key; replays are safe.
type PaymentResultConsumer struct {
	reader  *kafkago.Reader
	handler paymentResultHandler
	logger  *zap.Logger
}

func NewPaymentResultConsumer(brokers []string, topic, groupID string, handler paymentResultHandler, logger *zap.Logger) *PaymentResultConsumer {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	logger.Info("Payment result consumer initialized",
		zap.String("topic", topic), zap.String("group", groupID))
	return &PaymentResultConsumer{reader: r, handler: handler, logger: logger}
}

// Start blocks, consuming events until the reader is closed.
func (c *PaymentResultConsumer) Start() {
	for {
		m, err := c.reader.ReadMessage(context.Background())
		if err != nil {
			c.logger.Error("Payment result read error", zap.Error(err))
			return
		}

		var evt models.PaymentResultEvent
		if err := json.Unmarshal(m.Value, &evt); err != nil {
			c.logger.Error("Invalid payment result payload",
				zap.Error(err), zap.ByteString("payload", m.Value))
			continue
		}

		c.Dispatch(context.Background(), evt)
	}
}

// Dispatch routes one event to the appropriate handler.
func (c *PaymentResultConsumer) Dispatch(ctx context.Context, evt models.PaymentResultEvent) {
	txID, err := uuid.Parse(evt.TransactionID)
	if err != nil {
		c.logger.Error("Payment result with invalid transaction id",
			zap.String("transaction_id", evt.TransactionID), zap.String("type", evt.Type))
		return
	}

	switch evt.Type {
	case models.PaymentEventSucceeded:
		if err := c.handler.HandlePaymentSucceeded(ctx, txID, evt.ExternalPaymentRef); err != nil {
			c.logger.Error("Failed to apply success event",
				zap.String("transaction_id", evt.TransactionID), zap.Error(err))
		}
	case models.PaymentEventFailed:
		if err := c.handler.HandlePaymentFailed(ctx, txID, evt.ErrorDetail); err != nil {
			c.logger.Error("Failed to apply failure event",
				zap.String("transaction_id", evt.TransactionID), zap.Error(err))
		}
	default:
		c.logger.Warn("Unknown payment result type", zap.String("type", evt.Type))
	}
}

func (c *PaymentResultConsumer) Close() error {
	return c.reader.Close()
}
