package ingest

import (
	"context"

	"github.com/language-coach/sentence-search/pkg/kafka"
)

// Publisher enqueues validated sentence events. Keying by language keeps
// each language's additions on one partition, so indexes see them in order.
type Publisher struct {
	producer *kafka.Producer
}

func NewPublisher(producer *kafka.Producer) *Publisher {
	return &Publisher{producer: producer}
}

// Publish validates the event and writes it to the ingest topic.
func (p *Publisher) Publish(ctx context.Context, event SentenceEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	return p.producer.Publish(ctx, kafka.Event{
		Key:   event.Language,
		Value: event,
	})
}
