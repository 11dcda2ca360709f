// Package orders keeps a durable archive of closed orders in Postgres so the
// operator still has them after the conversation record is superseded in Redis.
//
// Expected schema:
//
//	CREATE TABLE orders (
//	    id             BIGSERIAL PRIMARY KEY,
//	    order_code     TEXT NOT NULL,
//	    customer_phone TEXT NOT NULL,
//	    customer_name  TEXT NOT NULL DEFAULT '',
//	    summary        TEXT NOT NULL DEFAULT '',
//	    started_at     TIMESTAMPTZ NOT NULL,
//	    closed_at      TIMESTAMPTZ NOT NULL
//	);
package orders

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/foodgpt/pizzeria-ai-platform/internal/conversation"
)

// Archive writes closed orders to Postgres. A nil Archive (no database
// configured) is a safe no-op so the bot can run on Redis alone.
type Archive struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewArchive creates an order archive over the given database handle.
// Returns nil when db is nil.
func NewArchive(db *sql.DB) *Archive {
	if db == nil {
		return nil
	}
	return &Archive{
		db:     db,
		tracer: otel.Tracer("pizzeria.internal.orders.archive"),
	}
}

var _ conversation.OrderArchiver = (*Archive)(nil)

// ArchiveOrder inserts one closed order row.
func (a *Archive) ArchiveOrder(ctx context.Context, rec *conversation.Record) error {
	if a == nil || a.db == nil {
		return nil
	}
	if rec == nil || rec.Status != conversation.StatusClosed {
		return fmt.Errorf("orders: only closed records are archived")
	}

	ctx, span := a.tracer.Start(ctx, "orders.archive")
	defer span.End()

	const q = `INSERT INTO orders (order_code, customer_phone, customer_name, summary, started_at, closed_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := a.db.ExecContext(ctx, q,
		rec.OrderCode,
		rec.Customer.Address,
		rec.Customer.Name,
		rec.OrderSummary,
		rec.StartedAt,
		time.Now().UTC(),
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("orders: failed to archive order %s: %w", rec.OrderCode, err)
	}
	return nil
}
