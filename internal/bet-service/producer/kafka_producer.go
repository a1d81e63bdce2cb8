package producer

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	skafka "github.com/radieske/pub-bets/internal/shared/kafka"
	"github.com/radieske/pub-bets/pkg/contracts/events"
)

// KafkaPublisher publica os eventos do bet-service, um writer por tópico
type KafkaPublisher struct {
	BetPlaced      *kafka.Writer
	CatalogUpdated *kafka.Writer
	BetsCleared    *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topicBetPlaced, topicCatalogUpdated, topicBetsCleared string) *KafkaPublisher {
	return &KafkaPublisher{
		BetPlaced:      skafka.NewWriter(brokers, topicBetPlaced),
		CatalogUpdated: skafka.NewWriter(brokers, topicCatalogUpdated),
		BetsCleared:    skafka.NewWriter(brokers, topicBetsCleared),
	}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return skafka.WriteJSON(ctx, p.BetPlaced, e.BetID, e)
}

func (p *KafkaPublisher) PublishCatalogUpdated(ctx context.Context, e events.CatalogUpdated) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return skafka.WriteJSON(ctx, p.CatalogUpdated, "catalog", e)
}

func (p *KafkaPublisher) PublishBetsCleared(ctx context.Context, e events.BetsCleared) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return skafka.WriteJSON(ctx, p.BetsCleared, "bets", e)
}

// Ping escreve num tópico de healthcheck, como no health do odds-service
func (p *KafkaPublisher) Ping(ctx context.Context) error {
	return p.CatalogUpdated.WriteMessages(ctx, kafka.Message{Key: []byte("healthcheck"), Value: []byte(`{"op":"ping"}`)})
}

func (p *KafkaPublisher) Close() error {
	var first error
	for _, w := range []*kafka.Writer{p.BetPlaced, p.CatalogUpdated, p.BetsCleared} {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Nop descarta tudo. Usado com STORE=memory, quando não há broker.
type Nop struct{}

func (Nop) PublishBetPlaced(context.Context, events.BetPlaced) error           { return nil }
func (Nop) PublishCatalogUpdated(context.Context, events.CatalogUpdated) error { return nil }
func (Nop) PublishBetsCleared(context.Context, events.BetsCleared) error       { return nil }
