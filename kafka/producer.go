package kafka

import (
	"context"
	"encoding/json"
	"log"

	"pos-service/models"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Printf("[POSService][KafkaProducer] initialized topic=%s brokers=%v", topic, brokers)
	return &Producer{writer: w, topic: topic}
}

// SendReceiptEvent publishes a receipt-print request for a settled
// transaction, keyed by transaction id.
func (p *Producer) SendReceiptEvent(evt models.ReceiptEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(evt.TransactionID),
		Value: data,
	}
	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		log.Printf("[POSService][KafkaProducer] failed to publish receipt tx=%s topic=%s err=%v", evt.TransactionID, p.topic, err)
		return err
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
