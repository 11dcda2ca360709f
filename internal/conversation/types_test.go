package conversation

import "testing"

func TestNewRecordSeedsSystemTurn(t *testing.T) {
	rec := NewRecord(Customer{Name: "Maria", Address: "+5512981234567"}, "#sk-00042", "system prompt")

	if rec.Status != StatusOpen {
		t.Fatalf("new record should be open, got %s", rec.Status)
	}
	if len(rec.Messages) != 1 {
		t.Fatalf("new record should have exactly one message, got %d", len(rec.Messages))
	}
	if rec.Messages[0].Role != ChatRoleSystem {
		t.Fatalf("first message should be system, got %s", rec.Messages[0].Role)
	}
	if rec.Messages[0].Content != "system prompt" {
		t.Fatalf("system message content mismatch: %q", rec.Messages[0].Content)
	}
	if rec.OrderCode != "#sk-00042" {
		t.Fatalf("order code mismatch: %q", rec.OrderCode)
	}
	if rec.StartedAt.IsZero() {
		t.Fatal("started at should be set")
	}
}

func TestRecordCloseIsOneWay(t *testing.T) {
	rec := NewRecord(Customer{Address: "+5511999999999"}, "#sk-12345", "prompt")

	rec.Close("summary one")
	if rec.Status != StatusClosed || rec.OrderSummary != "summary one" {
		t.Fatalf("close failed: status=%s summary=%q", rec.Status, rec.OrderSummary)
	}

	rec.Close("summary two")
	if rec.OrderSummary != "summary one" {
		t.Fatal("closing twice must not overwrite the summary")
	}
	if rec.IsOpen() {
		t.Fatal("closed record must not report open")
	}
}

func TestNilRecordIsNotOpen(t *testing.T) {
	var rec *Record
	if rec.IsOpen() {
		t.Fatal("nil record must not report open")
	}
}
