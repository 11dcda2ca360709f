package conversation

import "context"

// OutboundReply is one text message addressed back to the customer.
type OutboundReply struct {
	To   string
	Body string
}

// ReplyMessenger delivers outbound replies over the messaging channel.
type ReplyMessenger interface {
	SendReply(ctx context.Context, reply OutboundReply) error
}
