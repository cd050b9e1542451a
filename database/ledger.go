package database

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/reversa-app/reversa/internal/apierror"
	"github.com/reversa-app/reversa/model"
)

// RecordLedgerEvent appends one event to the ledger. Inserting a duplicate
// idempotency key is a silent no-op: the ON CONFLICT clause is the single
// mechanism that makes replays, retries and overlapping imports safe. The
// returned bool reports whether a row was actually written.
func (d Datasource) RecordLedgerEvent(ctx context.Context, event *model.LedgerEvent) (bool, error) {
	ctx, span := otel.Tracer("ledger").Start(ctx, "Appending ledger event")
	defer span.End()

	if event.EventID == "" {
		event.EventID = model.GenerateUUIDWithSuffix("evt")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	metaDataJSON, err := json.Marshal(event.MetaData)
	if err != nil {
		return false, apierror.Internal("Failed to marshal event metadata", err)
	}

	// An empty key stores NULL so the unique index only applies to events
	// that actually carry a fingerprint.
	var idempotencyKey interface{}
	if event.IdempotencyKey != "" {
		idempotencyKey = event.IdempotencyKey
	}

	result, err := d.Conn.ExecContext(ctx, `
		INSERT INTO ledger_events (event_id, return_id, category, title,
			message, meta_data, idempotency_key, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (idempotency_key) DO NOTHING
	`, event.EventID, event.ReturnID, event.Category, event.Title,
		event.Message, metaDataJSON, idempotencyKey, event.Actor, event.CreatedAt)
	if err != nil {
		return false, apierror.Internal("Failed to append ledger event", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apierror.Internal("Failed to read ledger insert result", err)
	}
	return affected > 0, nil
}

// LedgerEventKeyExists reports whether an idempotency key was already
// written. Dry runs use it to classify replays without inserting anything.
func (d Datasource) LedgerEventKeyExists(ctx context.Context, key string) (bool, error) {
	ctx, span := otel.Tracer("ledger").Start(ctx, "Checking ledger idempotency key")
	defer span.End()

	var exists bool
	err := d.Conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM ledger_events WHERE idempotency_key = $1)`, key).Scan(&exists)
	if err != nil {
		return false, apierror.Internal("Failed to check ledger idempotency key", err)
	}
	return exists, nil
}

// GetLedgerEventsByReturnID returns the full event history of one return,
// oldest first.
func (d Datasource) GetLedgerEventsByReturnID(ctx context.Context, returnID string) ([]*model.LedgerEvent, error) {
	ctx, span := otel.Tracer("ledger").Start(ctx, "Fetching ledger events")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, event_id, return_id, category, title, COALESCE(message, ''),
			meta_data, COALESCE(idempotency_key, ''), COALESCE(actor, ''), created_at
		FROM ledger_events
		WHERE return_id = $1
		ORDER BY id ASC
	`, returnID)
	if err != nil {
		return nil, apierror.Internal("Failed to fetch ledger events", err)
	}
	defer rows.Close()

	var events []*model.LedgerEvent
	for rows.Next() {
		event := &model.LedgerEvent{}
		var metaDataJSON []byte
		err = rows.Scan(
			&event.ID, &event.EventID, &event.ReturnID, &event.Category,
			&event.Title, &event.Message, &metaDataJSON,
			&event.IdempotencyKey, &event.Actor, &event.CreatedAt,
		)
		if err != nil {
			return nil, apierror.Internal("Failed to scan ledger event", err)
		}
		if len(metaDataJSON) > 0 {
			if err := json.Unmarshal(metaDataJSON, &event.MetaData); err != nil {
				return nil, apierror.Internal("Failed to unmarshal event metadata", err)
			}
		}
		events = append(events, event)
	}

	return events, nil
}
