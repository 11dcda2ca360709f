package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/foodgpt/pizzeria-ai-platform/internal/conversation"
	"github.com/foodgpt/pizzeria-ai-platform/pkg/logging"
)

// OrderTicketNotifier emails the operator a kitchen ticket whenever a
// conversation closes with a finished order.
type OrderTicketNotifier struct {
	sender    EmailSender
	recipient string
	logger    *logging.Logger
}

// NewOrderTicketNotifier wires the notifier. Returns nil when either the
// sender or the recipient is missing, so callers can skip wiring it.
func NewOrderTicketNotifier(sender EmailSender, recipient string, logger *logging.Logger) *OrderTicketNotifier {
	if sender == nil || recipient == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &OrderTicketNotifier{
		sender:    sender,
		recipient: recipient,
		logger:    logger,
	}
}

var _ conversation.OrderNotifier = (*OrderTicketNotifier)(nil)

// NotifyOrderClosed sends the order ticket email.
func (n *OrderTicketNotifier) NotifyOrderClosed(ctx context.Context, rec *conversation.Record) error {
	if n == nil {
		return nil
	}
	if rec == nil {
		return fmt.Errorf("notify: record required")
	}

	msg := EmailMessage{
		To:      n.recipient,
		Subject: fmt.Sprintf("Novo pedido %s", rec.OrderCode),
		Body:    formatTicket(rec),
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return err
	}
	n.logger.Info("order ticket sent", "order_code", rec.OrderCode)
	return nil
}

func formatTicket(rec *conversation.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pedido: %s\n", rec.OrderCode)
	fmt.Fprintf(&b, "Cliente: %s\n", rec.Customer.Address)
	if rec.Customer.Name != "" {
		fmt.Fprintf(&b, "Nome: %s\n", rec.Customer.Name)
	}
	fmt.Fprintf(&b, "Iniciado em: %s\n", rec.StartedAt.Format("02/01/2006 15:04"))
	b.WriteString("\n")
	if rec.OrderSummary != "" {
		b.WriteString(rec.OrderSummary)
	} else {
		b.WriteString("(resumo indisponível — consulte o histórico da conversa)")
	}
	return b.String()
}
