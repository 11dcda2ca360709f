package conversation

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/foodgpt/pizzeria-ai-platform/pkg/logging"
)

var serviceTracer = otel.Tracer("pizzeria.internal.conversation.service")

// Service advances one customer's conversation by one inbound message: load
// or open the record, append the user turn, ask the model, append the reply,
// detect the order code, and write the record back.
type Service struct {
	store     *RecordStore
	llm       CompletionClient
	storeName string
	prompt    string
	logger    *logging.Logger
}

// NewService wires the lifecycle controller.
func NewService(store *RecordStore, llm CompletionClient, storeName string, logger *logging.Logger) *Service {
	if store == nil {
		panic("conversation: record store cannot be nil")
	}
	if llm == nil {
		panic("conversation: completion client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:     store,
		llm:       llm,
		storeName: storeName,
		prompt:    AgentPrompt,
		logger:    logger,
	}
}

// HandleMessage processes one inbound customer message and returns the reply
// to send. A completion transport error aborts processing before anything is
// written, so the stored record is untouched and the next message retries
// from the same state.
func (s *Service) HandleMessage(ctx context.Context, msg Inbound) (*Outcome, error) {
	ctx, span := serviceTracer.Start(ctx, "conversation.handle_message")
	defer span.End()
	span.SetAttributes(attribute.String("pizzeria.customer", msg.Address))

	rec, err := s.store.Load(ctx, msg.Address)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !rec.IsOpen() {
		orderCode := NewOrderCode()
		rec = NewRecord(Customer{Name: msg.Name, Address: msg.Address}, orderCode, RenderPrompt(s.prompt, s.storeName, orderCode))
		s.logger.Info("conversation opened", "customer", msg.Address, "order_code", orderCode)
	}

	rec.Append(ChatRoleUser, msg.Body)

	reply, err := s.llm.Complete(ctx, rec.Messages)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if reply == "" {
		reply = FallbackReply
	}
	rec.Append(ChatRoleAssistant, reply)

	closed := strings.Contains(reply, rec.OrderCode)
	if closed {
		rec.Append(ChatRoleUser, SummaryRequestMessage)
		summary, err := s.llm.Complete(ctx, rec.Messages)
		if err != nil {
			// The customer already has their confirmation; losing the
			// summary only costs the operator a readable ticket.
			s.logger.Error("order summary completion failed", "error", err, "customer", msg.Address, "order_code", rec.OrderCode)
			summary = ""
		}
		rec.Append(ChatRoleAssistant, summary)
		rec.Close(summary)
		s.logger.Info("conversation closed", "customer", msg.Address, "order_code", rec.OrderCode)
	}

	if err := s.store.Save(ctx, msg.Address, rec); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &Outcome{
		Reply:     reply,
		Record:    rec,
		Closed:    closed,
		Timestamp: time.Now().UTC(),
	}, nil
}
