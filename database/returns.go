package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	"github.com/reversa-app/reversa/internal/apierror"
	"github.com/reversa-app/reversa/model"
)

const returnColumns = `
	id, return_id, order_id, COALESCE(store, ''), COALESCE(sku, ''),
	COALESCE(customer_name, ''), product_value, freight_value, status,
	logistics_status, COALESCE(reason_label, ''), COALESCE(reason_category, ''),
	created_at, updated_at`

// CreateReturn inserts a new return record. The unique constraint on
// order_id guarantees at most one live record per external order; a
// violation surfaces as a Conflict so callers can fall back to the existing
// row.
func (d Datasource) CreateReturn(ctx context.Context, rec *model.ReturnRecord) (*model.ReturnRecord, error) {
	ctx, span := otel.Tracer("returns").Start(ctx, "Saving return record to db")
	defer span.End()

	if rec.ReturnID == "" {
		rec.ReturnID = model.GenerateUUIDWithSuffix("ret")
	}
	if rec.Status == "" {
		rec.Status = model.StatusPendente
	}
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO returns (return_id, order_id, store, sku, customer_name,
			product_value, freight_value, status, logistics_status,
			reason_label, reason_category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, rec.ReturnID, rec.OrderID, rec.Store, rec.SKU, rec.CustomerName,
		rec.ProductValue, rec.FreightValue, rec.Status, rec.LogisticsState,
		rec.ReasonLabel, rec.ReasonCategory, rec.CreatedAt, rec.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return nil, apierror.Conflict("Return with this order id already exists", err)
			case "check_violation":
				return nil, apierror.BadRequest("Return values must not be negative", err)
			}
		}
		return nil, apierror.Internal("Failed to create return record", err)
	}

	return rec, nil
}

// GetReturnByOrderID fetches the live return record for an external order id.
func (d Datasource) GetReturnByOrderID(ctx context.Context, orderID string) (*model.ReturnRecord, error) {
	ctx, span := otel.Tracer("returns").Start(ctx, "Fetching return record from db")
	defer span.End()

	rec := &model.ReturnRecord{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT `+returnColumns+`
		FROM returns
		WHERE order_id = $1
	`, orderID).Scan(
		&rec.ID, &rec.ReturnID, &rec.OrderID, &rec.Store, &rec.SKU,
		&rec.CustomerName, &rec.ProductValue, &rec.FreightValue, &rec.Status,
		&rec.LogisticsState, &rec.ReasonLabel, &rec.ReasonCategory,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NotFound("Return not found for order id", err)
		}
		return nil, apierror.Internal("Failed to fetch return record", err)
	}

	return rec, nil
}

// ReturnExistsByOrderID is the existence check immediately preceding an
// auto-create insert.
func (d Datasource) ReturnExistsByOrderID(ctx context.Context, orderID string) (bool, error) {
	ctx, span := otel.Tracer("returns").Start(ctx, "Checking return existence")
	defer span.End()

	var exists bool
	err := d.Conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM returns WHERE order_id = $1)`, orderID).Scan(&exists)
	if err != nil {
		return false, apierror.Internal("Failed to check return existence", err)
	}
	return exists, nil
}

// GetAllReturns lists return records, newest first.
func (d Datasource) GetAllReturns(ctx context.Context, limit, offset int) ([]model.ReturnRecord, error) {
	ctx, span := otel.Tracer("returns").Start(ctx, "Listing return records")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+returnColumns+`
		FROM returns
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, apierror.Internal("Failed to list return records", err)
	}
	defer rows.Close()

	var records []model.ReturnRecord
	for rows.Next() {
		rec := model.ReturnRecord{}
		err = rows.Scan(
			&rec.ID, &rec.ReturnID, &rec.OrderID, &rec.Store, &rec.SKU,
			&rec.CustomerName, &rec.ProductValue, &rec.FreightValue, &rec.Status,
			&rec.LogisticsState, &rec.ReasonLabel, &rec.ReasonCategory,
			&rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, apierror.Internal("Failed to scan return record", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// UpdateReturnValues persists the monetary state computed by the delta
// rules. The check constraints re-assert the zero floor at the store level.
func (d Datasource) UpdateReturnValues(ctx context.Context, returnID string, product, freight decimal.Decimal) error {
	ctx, span := otel.Tracer("returns").Start(ctx, "Updating return monetary values")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE returns
		SET product_value = $2, freight_value = $3, updated_at = NOW()
		WHERE return_id = $1
	`, returnID, product, freight)
	if err != nil {
		return apierror.Internal("Failed to update return values", err)
	}
	return requireRow(result, returnID)
}

// UpdateReturnStatus applies an operational status change.
func (d Datasource) UpdateReturnStatus(ctx context.Context, returnID, status string) error {
	ctx, span := otel.Tracer("returns").Start(ctx, "Updating return status")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE returns
		SET status = $2, updated_at = NOW()
		WHERE return_id = $1
	`, returnID, status)
	if err != nil {
		return apierror.Internal("Failed to update return status", err)
	}
	return requireRow(result, returnID)
}

// UpdateLogisticsStatus advances the logistics sub-status. Transition
// legality is decided by the service layer; the store only records it.
func (d Datasource) UpdateLogisticsStatus(ctx context.Context, returnID, status string) error {
	ctx, span := otel.Tracer("returns").Start(ctx, "Updating logistics status")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE returns
		SET logistics_status = $2, updated_at = NOW()
		WHERE return_id = $1
	`, returnID, status)
	if err != nil {
		return apierror.Internal("Failed to update logistics status", err)
	}
	return requireRow(result, returnID)
}

func requireRow(result sql.Result, returnID string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.Internal("Failed to read update result", err)
	}
	if affected == 0 {
		return apierror.NotFound("Return not found: "+returnID, nil)
	}
	return nil
}
