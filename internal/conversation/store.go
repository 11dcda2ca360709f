package conversation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// RecordStore persists conversation records in Redis, one record per
// customer address. Writes are last-write-wins; concurrent messages from the
// same customer are not serialized (accepted gap, the channel delivers one
// message at a time in practice).
type RecordStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewRecordStore creates a store over the given Redis client.
func NewRecordStore(client *redis.Client) *RecordStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	return &RecordStore{
		redis:  client,
		tracer: otel.Tracer("pizzeria.internal.conversation.store"),
	}
}

// Load fetches the record for a customer address. A missing key and an
// undecodable payload both return (nil, nil): either way there is no open
// conversation to resume, so the caller starts a fresh one.
func (s *RecordStore) Load(ctx context.Context, address string) (*Record, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_record")
	defer span.End()

	data, err := s.redis.Get(ctx, recordKey(address)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		span.RecordError(err)
		return nil, nil
	}
	return &rec, nil
}

// Save writes the record back. Records are superseded rather than expired,
// so no TTL is set.
func (s *RecordStore) Save(ctx context.Context, address string, rec *Record) error {
	ctx, span := s.tracer.Start(ctx, "conversation.save_record")
	defer span.End()

	data, err := json.Marshal(rec)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal record: %w", err)
	}
	if err := s.redis.Set(ctx, recordKey(address), data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist record: %w", err)
	}
	return nil
}

func recordKey(address string) string {
	return fmt.Sprintf("customer:%s:chat", address)
}
