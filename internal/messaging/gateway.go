package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/foodgpt/pizzeria-ai-platform/internal/conversation"
	"github.com/foodgpt/pizzeria-ai-platform/internal/observability/metrics"
	"github.com/foodgpt/pizzeria-ai-platform/pkg/logging"
)

var gatewayTracer = otel.Tracer("pizzeria.internal.messaging.gateway")

// GatewaySender posts outbound texts to the external WhatsApp gateway's
// send API. The gateway owns the channel session; we only hand it text.
type GatewaySender struct {
	baseURL    string
	token      string
	httpClient *http.Client
	metrics    *metrics.BotMetrics
	logger     *logging.Logger
}

// NewGatewaySender builds a sender for the gateway's HTTP API.
func NewGatewaySender(baseURL, token string, m *metrics.BotMetrics, logger *logging.Logger) *GatewaySender {
	if logger == nil {
		logger = logging.Default()
	}
	return &GatewaySender{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		metrics: m,
		logger:  logger,
	}
}

var _ conversation.ReplyMessenger = (*GatewaySender)(nil)

// SendReply dispatches a single text through the gateway.
func (s *GatewaySender) SendReply(ctx context.Context, reply conversation.OutboundReply) error {
	if s.baseURL == "" {
		return errors.New("messaging: gateway base url missing")
	}
	if reply.To == "" {
		return errors.New("messaging: to required")
	}
	if strings.TrimSpace(reply.Body) == "" {
		return errors.New("messaging: body required")
	}

	ctx, span := gatewayTracer.Start(ctx, "messaging.gateway.send")
	defer span.End()
	span.SetAttributes(attribute.String("pizzeria.to", reply.To))

	payload := map[string]string{
		"to":   reply.To,
		"text": reply.Body,
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("messaging: failed to marshal gateway payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/send-text", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("messaging: failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveOutbound("transport_error")
		return fmt.Errorf("messaging: gateway send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		err := fmt.Errorf("messaging: gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		span.RecordError(err)
		s.metrics.ObserveOutbound("error")
		s.logger.Error("gateway send rejected", "status", resp.StatusCode, "to", reply.To)
		return err
	}

	s.metrics.ObserveOutbound("ok")
	s.logger.Info("reply sent", "to", reply.To)
	return nil
}
