package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type Writer = kafka.Writer

type Reader = kafka.Reader

type Message = kafka.Message

// MessageWriter é o que WriteJSON precisa; *kafka.Writer satisfaz
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           10 * time.Second,
	}
}

// NewReader cria um reader de consumer group. Com GroupTopics o mesmo grupo
// consome vários tópicos.
func NewReader(brokers []string, groupID string, topics ...string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
}

// helper pra enviar mensagem simples
func WriteJSON(ctx context.Context, w MessageWriter, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode kafka message: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	}

	return w.WriteMessages(ctx, msg)
}

// MessageReader é o lado consumidor; *kafka.Reader satisfaz
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

func ReadNext(ctx context.Context, r MessageReader) (kafka.Message, error) {
	m, err := r.ReadMessage(ctx)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("read kafka message: %w", err)
	}
	return m, nil
}
