package conversation

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/foodgpt/pizzeria-ai-platform/internal/observability/metrics"
	"github.com/foodgpt/pizzeria-ai-platform/pkg/logging"
)

// OrderArchiver records a closed order durably for the operator.
type OrderArchiver interface {
	ArchiveOrder(ctx context.Context, rec *Record) error
}

// OrderNotifier tells the operator a new order closed.
type OrderNotifier interface {
	NotifyOrderClosed(ctx context.Context, rec *Record) error
}

// Worker consumes conversation jobs from the queue, advances the
// conversation, and sends the reply back to the customer.
type Worker struct {
	service   *Service
	queue     queueClient
	messenger ReplyMessenger
	logger    *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup
}

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
	archiver         OrderArchiver
	notifier         OrderNotifier
	metrics          *metrics.BotMetrics
}

const (
	defaultWorkerCount   = 2
	defaultWaitSeconds   = 2
	defaultBatchSize     = 5
	deleteTimeoutSeconds = 5
)

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets how many concurrent consumers run.
func WithWorkerCount(n int) WorkerOption {
	return func(c *workerConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithOrderArchiver persists closed orders through the given archiver.
func WithOrderArchiver(a OrderArchiver) WorkerOption {
	return func(c *workerConfig) { c.archiver = a }
}

// WithOrderNotifier notifies the operator when orders close.
func WithOrderNotifier(n OrderNotifier) WorkerOption {
	return func(c *workerConfig) { c.notifier = n }
}

// WithMetrics records worker outcomes on the given metrics set.
func WithMetrics(m *metrics.BotMetrics) WorkerOption {
	return func(c *workerConfig) { c.metrics = m }
}

// NewWorker wires a queue consumer around the lifecycle service.
func NewWorker(service *Service, queue queueClient, messenger ReplyMessenger, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if service == nil {
		panic("conversation: service cannot be nil")
	}
	if queue == nil {
		panic("conversation: queue cannot be nil")
	}
	if messenger == nil {
		panic("conversation: messenger cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Worker{
		service:   service,
		queue:     queue,
		messenger: messenger,
		logger:    logger,
		cfg:       cfg,
	}
}

// Start launches the consumer goroutines. They run until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.runLoop(ctx, id)
		}(i)
	}
}

// Wait blocks until every consumer goroutine has exited.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) runLoop(ctx context.Context, id int) {
	w.logger.Info("conversation worker started", "worker", id)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("conversation worker stopping", "worker", id)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("queue receive failed", "error", err, "worker", id)
			continue
		}

		for _, msg := range messages {
			w.processMessage(ctx, msg)
		}
	}
}

func (w *Worker) processMessage(ctx context.Context, msg queueMessage) {
	var payload queuePayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		w.logger.Error("failed to decode job payload", "error", err, "queue_message_id", msg.ID)
		w.deleteMessage(msg)
		return
	}

	start := time.Now()
	outcome, err := w.service.HandleMessage(ctx, payload.Message)
	if err != nil {
		// No reply and no store write happened; the customer's next
		// message retries from the stored state.
		w.logger.Error("conversation processing failed", "error", err, "job_id", payload.ID, "customer", payload.Message.Address)
		w.cfg.metrics.ObserveCompletion("error", time.Since(start).Seconds())
		w.deleteMessage(msg)
		return
	}
	w.cfg.metrics.ObserveCompletion("ok", time.Since(start).Seconds())

	if outcome.Reply != "" {
		reply := OutboundReply{To: payload.Message.Address, Body: outcome.Reply}
		if err := w.messenger.SendReply(ctx, reply); err != nil {
			w.logger.Error("failed to send reply", "error", err, "job_id", payload.ID, "customer", payload.Message.Address)
		}
	}

	if outcome.Closed {
		w.handleClosedOrder(ctx, payload, outcome.Record)
	}

	w.deleteMessage(msg)
}

func (w *Worker) handleClosedOrder(ctx context.Context, payload queuePayload, rec *Record) {
	w.cfg.metrics.ObserveOrderClosed()

	if w.cfg.archiver != nil {
		if err := w.cfg.archiver.ArchiveOrder(ctx, rec); err != nil {
			w.logger.Error("failed to archive order", "error", err, "order_code", rec.OrderCode)
		}
	}
	if w.cfg.notifier != nil {
		if err := w.cfg.notifier.NotifyOrderClosed(ctx, rec); err != nil {
			w.logger.Error("failed to notify operator", "error", err, "order_code", rec.OrderCode)
		}
	}
}

func (w *Worker) deleteMessage(msg queueMessage) {
	deleteCtx, cancel := context.WithTimeout(context.Background(), deleteTimeoutSeconds*time.Second)
	defer cancel()
	if err := w.queue.Delete(deleteCtx, msg.ReceiptHandle); err != nil {
		w.logger.Warn("failed to delete queue message", "error", err, "queue_message_id", msg.ID)
	}
}
