package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type recordingMessenger struct {
	mu      sync.Mutex
	replies []OutboundReply
}

func (m *recordingMessenger) SendReply(ctx context.Context, reply OutboundReply) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, reply)
	return nil
}

func (m *recordingMessenger) sent() []OutboundReply {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]OutboundReply, len(m.replies))
	copy(out, m.replies)
	return out
}

type recordingArchiver struct {
	mu   sync.Mutex
	recs []*Record
}

func (a *recordingArchiver) ArchiveOrder(ctx context.Context, rec *Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recs = append(a.recs, rec)
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	recs []*Record
}

func (n *recordingNotifier) NotifyOrderClosed(ctx context.Context, rec *Record) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recs = append(n.recs, rec)
	return nil
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWorkerProcessesInboundEndToEnd(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRecordStore(client)
	llm := &scriptedLLM{replies: []string{"Olá! Qual pizza?"}}
	service := NewService(store, llm, "Pizzaria X", nil)

	queue := NewMemoryQueue(8)
	publisher := NewPublisher(queue, nil)
	messenger := &recordingMessenger{}

	worker := NewWorker(service, queue, messenger, nil, WithWorkerCount(1))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	err := publisher.EnqueueMessage(ctx, "evt-1", Inbound{
		Address: "+5512981234567",
		Body:    "Quero uma pizza de calabresa",
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return len(messenger.sent()) == 1 })

	sent := messenger.sent()[0]
	if sent.To != "+5512981234567" {
		t.Fatalf("reply addressed wrong: %q", sent.To)
	}
	if sent.Body != "Olá! Qual pizza?" {
		t.Fatalf("reply body wrong: %q", sent.Body)
	}

	rec, err := store.Load(context.Background(), "+5512981234567")
	if err != nil || rec == nil || !rec.IsOpen() {
		t.Fatalf("record not persisted open: rec=%v err=%v", rec, err)
	}

	cancel()
	worker.Wait()
}

func TestWorkerArchivesAndNotifiesOnClose(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRecordStore(client)
	llm := &scriptedLLM{replies: []string{
		"Pedido confirmado! Código @code.",
		"1x pizza grande calabresa",
	}}
	service := NewService(store, llm, "Pizzaria X", nil)

	queue := NewMemoryQueue(8)
	publisher := NewPublisher(queue, nil)
	messenger := &recordingMessenger{}
	archiver := &recordingArchiver{}
	notifier := &recordingNotifier{}

	worker := NewWorker(service, queue, messenger, nil,
		WithWorkerCount(1),
		WithOrderArchiver(archiver),
		WithOrderNotifier(notifier),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	if err := publisher.EnqueueMessage(ctx, "evt-1", Inbound{Address: "+5511999999999", Body: "Confirmo"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		archiver.mu.Lock()
		defer archiver.mu.Unlock()
		return len(archiver.recs) == 1
	})
	waitFor(t, 2*time.Second, func() bool {
		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		return len(notifier.recs) == 1
	})

	archiver.mu.Lock()
	archived := archiver.recs[0]
	archiver.mu.Unlock()
	if archived.Status != StatusClosed {
		t.Fatalf("archived record should be closed, got %s", archived.Status)
	}
	if archived.OrderSummary != "1x pizza grande calabresa" {
		t.Fatalf("archived summary mismatch: %q", archived.OrderSummary)
	}

	cancel()
	worker.Wait()
}

func TestWorkerSurvivesBadPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRecordStore(client)
	llm := &scriptedLLM{replies: []string{"Olá!"}}
	service := NewService(store, llm, "Pizzaria X", nil)

	queue := NewMemoryQueue(8)
	messenger := &recordingMessenger{}
	worker := NewWorker(service, queue, messenger, nil, WithWorkerCount(1))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	if err := queue.Send(ctx, "{not json"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	publisher := NewPublisher(queue, nil)
	if err := publisher.EnqueueMessage(ctx, "evt-2", Inbound{Address: "+5512981234567", Body: "Oi"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	// The malformed job is dropped and the real one still gets a reply.
	waitFor(t, 2*time.Second, func() bool { return len(messenger.sent()) == 1 })

	cancel()
	worker.Wait()
}

func TestMemoryQueueRoundTrip(t *testing.T) {
	queue := NewMemoryQueue(2)
	ctx := context.Background()

	if err := queue.Send(ctx, "one"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if err := queue.Send(ctx, "two"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	messages, err := queue.Receive(ctx, 10, 1)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Body != "one" || messages[1].Body != "two" {
		t.Fatalf("messages out of order: %+v", messages)
	}

	// Empty queue with a wait deadline returns nothing.
	messages, err = queue.Receive(ctx, 1, 1)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty receive, got %d", len(messages))
	}
}
