package conversation

import "time"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one role-tagged turn of the prompt history sent to the model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Status tracks where a conversation is in its lifecycle.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Customer identifies who the conversation belongs to on the messaging channel.
type Customer struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// Record is the persisted state of one customer's order conversation.
//
// Invariants: Messages starts with exactly one system turn that is never
// mutated, OrderCode is assigned at creation and never changes, and Status
// only ever moves open -> closed. A closed record is superseded by a fresh
// one on the customer's next message, never reopened.
type Record struct {
	Status       Status        `json:"status"`
	OrderCode    string        `json:"order_code"`
	StartedAt    time.Time     `json:"started_at"`
	Customer     Customer      `json:"customer"`
	Messages     []ChatMessage `json:"messages"`
	OrderSummary string        `json:"order_summary,omitempty"`
}

// NewRecord opens a conversation seeded with the rendered system prompt.
func NewRecord(customer Customer, orderCode, systemPrompt string) *Record {
	return &Record{
		Status:    StatusOpen,
		OrderCode: orderCode,
		StartedAt: time.Now().UTC(),
		Customer:  customer,
		Messages: []ChatMessage{
			{Role: ChatRoleSystem, Content: systemPrompt},
		},
	}
}

// IsOpen reports whether the record can still accept turns.
func (r *Record) IsOpen() bool {
	return r != nil && r.Status == StatusOpen
}

// Append adds one turn to the history.
func (r *Record) Append(role, content string) {
	r.Messages = append(r.Messages, ChatMessage{Role: role, Content: content})
}

// Close flips the record to closed and stores the order summary.
// Closing an already-closed record is a no-op.
func (r *Record) Close(summary string) {
	if r.Status == StatusClosed {
		return
	}
	r.Status = StatusClosed
	r.OrderSummary = summary
}

// Inbound is one customer message handed to the lifecycle controller.
type Inbound struct {
	// Address is the canonical phone-style customer key.
	Address string `json:"address"`
	// Name is the sender display name, when the channel provides one.
	Name string `json:"name,omitempty"`
	Body string `json:"body"`
}

// Outcome reports what one inbound message produced.
type Outcome struct {
	Reply     string
	Record    *Record
	Closed    bool
	Timestamp time.Time
}
