package reversa

import (
	"context"
	"fmt"

	"github.com/reversa-app/reversa/internal/apierror"
	"github.com/reversa-app/reversa/model"
)

// CreateReturn registers a return case explicitly (as opposed to the
// importer's auto-created stubs). The creation event carries the same
// order-id-derived idempotency key the importer uses, so an explicit create
// followed by an import of the same order yields exactly one creation event.
func (r *Reversa) CreateReturn(ctx context.Context, rec model.ReturnRecord, actor string) (*model.ReturnRecord, error) {
	created, err := r.datasource.CreateReturn(ctx, &rec)
	if err != nil {
		return nil, err
	}

	event := &model.LedgerEvent{
		ReturnID:       created.ReturnID,
		Category:       model.EventCreation,
		Title:          "Devolucao registrada",
		Message:        fmt.Sprintf("Registro criado para o pedido %s", created.OrderID),
		MetaData:       map[string]interface{}{"order_id": created.OrderID},
		IdempotencyKey: model.CreationKey(created.OrderID),
		Actor:          actorOrImporter(actor),
	}
	if _, err := r.datasource.RecordLedgerEvent(ctx, event); err != nil {
		return nil, err
	}

	return created, nil
}

// GetReturn fetches a return case by its external order id.
func (r *Reversa) GetReturn(ctx context.Context, orderID string) (*model.ReturnRecord, error) {
	return r.datasource.GetReturnByOrderID(ctx, orderID)
}

// ListReturns pages through return cases, newest first.
func (r *Reversa) ListReturns(ctx context.Context, limit, offset int) ([]model.ReturnRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return r.datasource.GetAllReturns(ctx, limit, offset)
}

// GetReturnEvents returns the ledger history of one return case.
func (r *Reversa) GetReturnEvents(ctx context.Context, orderID string) ([]*model.LedgerEvent, error) {
	rec, err := r.datasource.GetReturnByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return r.datasource.GetLedgerEventsByReturnID(ctx, rec.ReturnID)
}

// UpdateReturnStatus applies an operational status change (approve, reject,
// cancel) and ledgers it.
func (r *Reversa) UpdateReturnStatus(ctx context.Context, orderID, status, actor string) (*model.ReturnRecord, error) {
	if !model.ValidStatus(status) {
		return nil, apierror.InvalidInput("Unknown return status: "+status, nil)
	}

	rec, err := r.datasource.GetReturnByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if rec.Status == status {
		return rec, nil
	}

	if err := r.datasource.UpdateReturnStatus(ctx, rec.ReturnID, status); err != nil {
		return nil, err
	}

	event := &model.LedgerEvent{
		ReturnID:       rec.ReturnID,
		Category:       model.EventStatus,
		Title:          "Status atualizado",
		Message:        fmt.Sprintf("Status alterado de %s para %s", rec.Status, status),
		MetaData:       map[string]interface{}{"from": rec.Status, "to": status},
		IdempotencyKey: model.IdempotencyKey(model.EventStatus, rec.ReturnID, rec.Status, status),
		Actor:          actorOrImporter(actor),
	}
	if _, err := r.datasource.RecordLedgerEvent(ctx, event); err != nil {
		return nil, err
	}

	rec.Status = status
	return rec, nil
}

// AdvanceLogistics moves a return through the logistics state machine. The
// progression is monotone: illegal jumps and regressions are rejected.
func (r *Reversa) AdvanceLogistics(ctx context.Context, orderID, next, actor string) (*model.ReturnRecord, error) {
	rec, err := r.datasource.GetReturnByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !model.CanAdvanceLogistics(rec.LogisticsState, next) {
		return nil, apierror.InvalidInput(
			fmt.Sprintf("Illegal logistics transition from %q to %q", rec.LogisticsState, next), nil)
	}

	if err := r.datasource.UpdateLogisticsStatus(ctx, rec.ReturnID, next); err != nil {
		return nil, err
	}

	event := &model.LedgerEvent{
		ReturnID:       rec.ReturnID,
		Category:       model.EventStatus,
		Title:          "Logistica avancada",
		Message:        fmt.Sprintf("Sub-status logistico alterado de %q para %q", rec.LogisticsState, next),
		MetaData:       map[string]interface{}{"from": rec.LogisticsState, "to": next},
		IdempotencyKey: model.IdempotencyKey(model.EventStatus, rec.ReturnID, "logistics", next),
		Actor:          actorOrImporter(actor),
	}
	if _, err := r.datasource.RecordLedgerEvent(ctx, event); err != nil {
		return nil, err
	}

	rec.LogisticsState = next
	return rec, nil
}
