package conversation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/foodgpt/pizzeria-ai-platform/pkg/logging"
)

var publisherTracer = otel.Tracer("pizzeria.internal.conversation.publisher")

// Publisher hands inbound messages to the worker queue.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher creates a Publisher over the given queue.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("conversation: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, logger: logger}
}

// EnqueueMessage publishes one inbound message job. jobID may be empty, in
// which case one is generated.
func (p *Publisher) EnqueueMessage(ctx context.Context, jobID string, msg Inbound) error {
	ctx, span := publisherTracer.Start(ctx, "conversation.enqueue_message")
	defer span.End()

	payload, body, err := encodePayload(queuePayload{ID: jobID, Message: msg})
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(
		attribute.String("pizzeria.job_id", payload.ID),
		attribute.String("pizzeria.customer", msg.Address),
	)

	if err := p.queue.Send(ctx, body); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to enqueue message: %w", err)
	}

	p.logger.Debug("conversation job enqueued", "job_id", payload.ID, "customer", msg.Address)
	return nil
}
