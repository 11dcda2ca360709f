package messaging

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/foodgpt/pizzeria-ai-platform/internal/conversation"
	"github.com/foodgpt/pizzeria-ai-platform/internal/observability/metrics"
	"github.com/foodgpt/pizzeria-ai-platform/pkg/logging"
)

var webhookTracer = otel.Tracer("pizzeria.internal.messaging.webhook")

type conversationPublisher interface {
	EnqueueMessage(ctx context.Context, jobID string, msg conversation.Inbound) error
}

// InboundEvent is the payload the WhatsApp gateway posts for each received
// message.
type InboundEvent struct {
	ID         string `json:"id"`
	From       string `json:"from"`
	Body       string `json:"body"`
	SenderName string `json:"senderName"`
	IsGroup    bool   `json:"isGroupMsg"`
}

// Handler accepts inbound message events from the gateway webhook.
type Handler struct {
	webhookSecret string
	publisher     conversationPublisher
	metrics       *metrics.BotMetrics
	logger        *logging.Logger
}

// NewHandler creates a new messaging webhook handler.
func NewHandler(webhookSecret string, publisher conversationPublisher, m *metrics.BotMetrics, logger *logging.Logger) *Handler {
	if publisher == nil {
		panic("messaging: publisher cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		webhookSecret: webhookSecret,
		publisher:     publisher,
		metrics:       m,
		logger:        logger,
	}
}

// WhatsAppWebhook handles POST /webhooks/whatsapp requests.
//
// Empty bodies and group messages are dropped before any state is touched:
// no store read, no enqueue, no reply.
func (h *Handler) WhatsAppWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := webhookTracer.Start(r.Context(), "messaging.whatsapp.webhook")
	defer span.End()

	if h.webhookSecret != "" {
		secret := r.Header.Get("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(secret), []byte(h.webhookSecret)) != 1 {
			h.logger.Warn("invalid webhook secret")
			span.RecordError(errors.New("invalid webhook secret"))
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	var event InboundEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.logger.Error("failed to parse webhook payload", "error", err)
		span.RecordError(err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if event.IsGroup {
		h.metrics.ObserveInbound("ignored_group")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if strings.TrimSpace(event.Body) == "" {
		h.metrics.ObserveInbound("ignored_empty")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	address := NormalizeChatAddress(event.From)
	if address == "" {
		err := errors.New("missing sender address")
		h.logger.Error("invalid webhook payload", "error", err)
		span.RecordError(err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	span.SetAttributes(
		attribute.String("pizzeria.customer", address),
		attribute.String("pizzeria.event_id", event.ID),
	)

	msg := conversation.Inbound{
		Address: address,
		Name:    strings.TrimSpace(event.SenderName),
		Body:    event.Body,
	}

	publishCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := h.publisher.EnqueueMessage(publishCtx, event.ID, msg); err != nil {
		h.logger.Error("failed to enqueue conversation job", "error", err, "customer", address)
		span.RecordError(err)
		http.Error(w, "Failed to schedule reply", http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveInbound("accepted")
	h.logger.Info("webhook accepted", "customer", address, "event_id", event.ID)
	w.WriteHeader(http.StatusAccepted)
}

// HealthCheck handles GET /health requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
