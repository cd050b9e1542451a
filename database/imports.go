package database

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/reversa-app/reversa/internal/apierror"
	"github.com/reversa-app/reversa/model"
)

// RegisterImportBatch records one upload attempt. When the batch carries a
// caller-supplied key, the unique constraint on batch_key makes the insert a
// no-op for a replayed key; the returned bool reports whether this attempt
// owns the batch.
func (d Datasource) RegisterImportBatch(ctx context.Context, batch *model.ImportBatch) (bool, error) {
	ctx, span := otel.Tracer("imports").Start(ctx, "Registering import batch")
	defer span.End()

	if batch.BatchID == "" {
		batch.BatchID = model.GenerateUUIDWithSuffix("imp")
	}
	batch.CreatedAt = time.Now()

	var batchKey interface{}
	if batch.BatchKey != "" {
		batchKey = batch.BatchKey
	}

	result, err := d.Conn.ExecContext(ctx, `
		INSERT INTO import_batches (batch_id, batch_key, file_name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (batch_key) DO NOTHING
	`, batch.BatchID, batchKey, batch.FileName, batch.CreatedAt)
	if err != nil {
		return false, apierror.Internal("Failed to register import batch", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apierror.Internal("Failed to read batch insert result", err)
	}
	return affected > 0, nil
}

// ImportBatchKeyExists is the read-only replay check used by dry runs, which
// must not register anything.
func (d Datasource) ImportBatchKeyExists(ctx context.Context, batchKey string) (bool, error) {
	ctx, span := otel.Tracer("imports").Start(ctx, "Checking import batch key")
	defer span.End()

	var exists bool
	err := d.Conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM import_batches WHERE batch_key = $1)`, batchKey).Scan(&exists)
	if err != nil {
		return false, apierror.Internal("Failed to check import batch key", err)
	}
	return exists, nil
}

// FinishImportBatch stores the final counters of a processed batch.
func (d Datasource) FinishImportBatch(ctx context.Context, batchID string, total, created, updated, errs int) error {
	ctx, span := otel.Tracer("imports").Start(ctx, "Finishing import batch")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx, `
		UPDATE import_batches
		SET total = $2, created = $3, updated = $4, errors = $5, completed_at = NOW()
		WHERE batch_id = $1
	`, batchID, total, created, updated, errs)
	if err != nil {
		return apierror.Internal("Failed to finish import batch", err)
	}
	return nil
}

// RecordRawLine stores the forensic copy of one parsed row. The
// (batch_id, content_hash) uniqueness silently drops a physical line that
// appears twice inside one batch.
func (d Datasource) RecordRawLine(ctx context.Context, line *model.RawImportLine) (bool, error) {
	ctx, span := otel.Tracer("imports").Start(ctx, "Recording raw import line")
	defer span.End()

	var returnID interface{}
	if line.ReturnID != "" {
		returnID = line.ReturnID
	}

	result, err := d.Conn.ExecContext(ctx, `
		INSERT INTO raw_import_lines (batch_id, return_id, line_number, content, content_hash)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (batch_id, content_hash) DO NOTHING
	`, line.BatchID, returnID, line.LineNumber, line.Content, line.ContentHash)
	if err != nil {
		return false, apierror.Internal("Failed to record raw import line", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apierror.Internal("Failed to read raw line insert result", err)
	}
	return affected > 0, nil
}
