package reversa

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/reversa-app/reversa/internal/apierror"
	"github.com/reversa-app/reversa/model"
)

// rowOutcome is the per-row result the orchestrator folds into the batch
// summary. Row failures are values, never panics; a failed row does not
// abort the rest of the batch.
type rowOutcome struct {
	created   bool
	updated   bool
	unmatched bool
}

// batchState is the per-batch view of return records and emitted event
// fingerprints. It exists so a dry run sees the effects of its own earlier
// rows and reports exactly the counts an apply run would produce; in apply
// mode it doubles as the cache of records already committed by this batch.
type batchState struct {
	records  map[string]*model.ReturnRecord
	seenKeys map[string]struct{}
}

func newBatchState() *batchState {
	return &batchState{
		records:  make(map[string]*model.ReturnRecord),
		seenKeys: make(map[string]struct{}),
	}
}

// ImportReturns ingests one marketplace transaction export and reconciles
// it against the stored return records. It drives the full pipeline one row
// at a time: parse, normalize headers, coerce types, classify the event,
// compute deltas, resolve the record, and commit through the ledger. Dry-run
// executes the identical pipeline with every write suppressed.
func (r *Reversa) ImportReturns(ctx context.Context, raw string, opts model.ImportOptions) (*model.ImportSummary, error) {
	file, err := ParseDelimited(raw, opts.Delimiter)
	if err != nil {
		if errors.Is(err, ErrEmptyPayload) {
			return nil, apierror.InvalidInput("Upload body is empty", err)
		}
		return nil, apierror.BadRequest("Failed to parse upload", err)
	}

	summary := &model.ImportSummary{
		OK:           true,
		DryRun:       opts.DryRun,
		BatchKey:     opts.BatchKey,
		ErrorsDetail: []model.RowError{},
	}

	// Whole-batch idempotency: a replayed batch key short-circuits before
	// any row is touched. Dry runs only peek; apply runs claim the key by
	// inserting the batch row.
	var batch *model.ImportBatch
	if opts.DryRun {
		if opts.BatchKey != "" {
			seen, err := r.datasource.ImportBatchKeyExists(ctx, opts.BatchKey)
			if err != nil {
				return nil, err
			}
			if seen {
				summary.Skipped = true
				summary.Reason = "batch key already processed"
				return summary, nil
			}
		}
	} else {
		batch = &model.ImportBatch{BatchKey: opts.BatchKey, FileName: opts.FileName}
		owned, err := r.datasource.RegisterImportBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		if !owned {
			summary.Skipped = true
			summary.Reason = "batch key already processed"
			return summary, nil
		}
		summary.BatchID = batch.BatchID
	}

	fields := make([]model.Field, len(file.Headers))
	for i, h := range file.Headers {
		fields[i] = CanonicalField(h)
	}

	state := newBatchState()
	for _, rawRow := range file.Rows {
		summary.Total++
		outcome, err := r.processRow(ctx, batch, file.Headers, fields, rawRow, opts, state)
		if err != nil {
			summary.Errors++
			summary.ErrorsDetail = append(summary.ErrorsDetail, model.RowError{
				Line:  rawRow.Line,
				Error: err.Error(),
			})
			continue
		}
		switch {
		case outcome.created:
			summary.Created++
		case outcome.updated:
			summary.Updated++
		case outcome.unmatched:
			summary.Unmatched++
		}
	}

	if batch != nil {
		err := r.datasource.FinishImportBatch(ctx, batch.BatchID,
			summary.Total, summary.Created, summary.Updated, summary.Errors)
		if err != nil {
			logrus.WithError(err).WithField("batch_id", batch.BatchID).
				Error("failed to finalize import batch")
		}
	}

	return summary, nil
}

// processRow runs one row through the pipeline. Any error it returns is
// recorded against the row's line number and processing continues with the
// next row.
func (r *Reversa) processRow(ctx context.Context, batch *model.ImportBatch, headers []string, fields []model.Field, raw RawRow, opts model.ImportOptions, state *batchState) (rowOutcome, error) {
	fieldValues := make(map[model.Field]string, len(fields))
	for i, h := range headers {
		fieldValues[fields[i]] = raw.Values[h]
	}
	row := CoerceRow(fieldValues)

	if row.OrderID == "" {
		return rowOutcome{}, errors.New("missing order id")
	}

	rec, created, err := r.resolveReturn(ctx, row, opts, state)
	if err != nil {
		return rowOutcome{}, err
	}

	if batch != nil {
		line := &model.RawImportLine{
			BatchID:     batch.BatchID,
			LineNumber:  raw.Line,
			Content:     raw.Content,
			ContentHash: hashContent(raw.Content),
		}
		if rec != nil {
			line.ReturnID = rec.ReturnID
		}
		if _, err := r.datasource.RecordRawLine(ctx, line); err != nil {
			return rowOutcome{}, err
		}
	}

	if rec == nil {
		// No matching record and auto-create disabled: the row is skipped
		// and counted, not treated as an error.
		return rowOutcome{unmatched: true}, nil
	}

	eventType := ClassifyEvent(row)

	newFreight, freightChanged := FreightDelta(rec.FreightValue, row.ShippingOut, row.ShippingReturn)

	// The refund/chargeback subtraction and its ledger event are one logical
	// fact, paired through the idempotency key: the value only moves when the
	// key is new. A replayed key, whether from an earlier row of this batch or
	// an earlier batch, means the subtraction already happened.
	newProduct := rec.ProductValue
	productChanged := false
	if eventType == EventTypeRefund || eventType == EventTypeChargeback {
		next, refundAmt, changed := RefundDelta(rec.ProductValue, row)
		if refundAmt.IsPositive() {
			category := model.EventRefund
			title := "Reembolso aplicado"
			if eventType == EventTypeChargeback {
				category = model.EventChargeback
				title = "Chargeback aplicado"
			}
			event := &model.LedgerEvent{
				ReturnID: rec.ReturnID,
				Category: category,
				Title:    title,
				Message:  fmt.Sprintf("Valor do produto ajustado de %s para %s (delta %s)", rec.ProductValue, next, refundAmt),
				MetaData: map[string]interface{}{
					"order_id": row.OrderID,
					"amount":   refundAmt.String(),
					"reason":   row.Reason,
				},
				IdempotencyKey: model.IdempotencyKey(category, rec.ReturnID, refundAmt.String()),
				Actor:          actorOrImporter(opts.Actor),
			}
			applied, err := r.emitEvent(ctx, event, opts.DryRun, state)
			if err != nil {
				return rowOutcome{}, err
			}
			if applied {
				newProduct = next
				productChanged = changed
			}
		}
	}

	if (freightChanged || productChanged) && !opts.DryRun {
		if err := r.datasource.UpdateReturnValues(ctx, rec.ReturnID, newProduct, newFreight); err != nil {
			return rowOutcome{}, err
		}
	}

	if freightChanged {
		event := &model.LedgerEvent{
			ReturnID: rec.ReturnID,
			Category: model.EventCusto,
			Title:    "Custo de frete atualizado",
			Message:  fmt.Sprintf("Frete ajustado de %s para %s", rec.FreightValue, newFreight),
			MetaData: map[string]interface{}{
				"order_id":        row.OrderID,
				"shipping_out":    row.ShippingOut.String(),
				"shipping_return": row.ShippingReturn.String(),
			},
			IdempotencyKey: model.IdempotencyKey(model.EventCusto, rec.ReturnID, "freight", newFreight.String()),
			Actor:          actorOrImporter(opts.Actor),
		}
		if _, err := r.emitEvent(ctx, event, opts.DryRun, state); err != nil {
			return rowOutcome{}, err
		}
	}

	rec.FreightValue = newFreight
	rec.ProductValue = newProduct

	if created {
		return rowOutcome{created: true}, nil
	}
	return rowOutcome{updated: freightChanged || productChanged}, nil
}

// resolveReturn maps the row's external order id to a return record, pulling
// from the per-batch view first. With auto-create enabled a missing record
// becomes a minimal stub, guarded by an existence check immediately before
// the insert so near-simultaneous imports collapse onto one row.
func (r *Reversa) resolveReturn(ctx context.Context, row model.NormalizedRow, opts model.ImportOptions, state *batchState) (*model.ReturnRecord, bool, error) {
	if rec, ok := state.records[row.OrderID]; ok {
		return rec, false, nil
	}

	rec, err := r.datasource.GetReturnByOrderID(ctx, row.OrderID)
	if err == nil {
		state.records[row.OrderID] = rec
		return rec, false, nil
	}
	if !apierror.Is(err, apierror.ErrNotFound) {
		return nil, false, err
	}

	if !opts.AutoCreate {
		return nil, false, nil
	}

	reason := ClassifyReason(row.Reason, row.ReasonDetail)
	stub := &model.ReturnRecord{
		ReturnID:       model.GenerateUUIDWithSuffix("ret"),
		OrderID:        row.OrderID,
		Store:          row.Store,
		SKU:            row.SKU,
		CustomerName:   row.CustomerName,
		ProductValue:   decimal.Zero,
		FreightValue:   decimal.Zero,
		Status:         model.StatusPendente,
		ReasonLabel:    reason.Label,
		ReasonCategory: reason.Category,
	}
	if model.ValidStatus(row.Status) {
		stub.Status = row.Status
	}

	if !opts.DryRun {
		exists, err := r.datasource.ReturnExistsByOrderID(ctx, row.OrderID)
		if err != nil {
			return nil, false, err
		}
		if exists {
			rec, err := r.datasource.GetReturnByOrderID(ctx, row.OrderID)
			if err != nil {
				return nil, false, err
			}
			state.records[row.OrderID] = rec
			return rec, false, nil
		}

		createdRec, err := r.datasource.CreateReturn(ctx, stub)
		if err != nil {
			if apierror.Is(err, apierror.ErrConflict) {
				// A concurrent import won the race; use its row.
				rec, err := r.datasource.GetReturnByOrderID(ctx, row.OrderID)
				if err != nil {
					return nil, false, err
				}
				state.records[row.OrderID] = rec
				return rec, false, nil
			}
			return nil, false, err
		}
		stub = createdRec
	}

	event := &model.LedgerEvent{
		ReturnID: stub.ReturnID,
		Category: model.EventCreation,
		Title:    "Devolucao criada via importacao",
		Message:  fmt.Sprintf("Registro criado automaticamente para o pedido %s", row.OrderID),
		MetaData: map[string]interface{}{"order_id": row.OrderID},
		// Keyed off the order id alone: re-importing the same file can
		// never produce a second stub event.
		IdempotencyKey: model.CreationKey(row.OrderID),
		Actor:          actorOrImporter(opts.Actor),
	}
	if _, err := r.emitEvent(ctx, event, opts.DryRun, state); err != nil {
		return nil, false, err
	}

	state.records[row.OrderID] = stub
	return stub, true, nil
}

// emitEvent appends a ledger event unless its idempotency key was already
// seen, by this batch or by an earlier one. The returned bool reports whether
// the key is new, which is what gates the paired mutation. In dry-run mode
// the ledger is only read: in-batch replays come from seenKeys, cross-batch
// replays from a key-existence check, so the counts match an apply run.
func (r *Reversa) emitEvent(ctx context.Context, event *model.LedgerEvent, dryRun bool, state *batchState) (bool, error) {
	if event.IdempotencyKey != "" {
		if _, seen := state.seenKeys[event.IdempotencyKey]; seen {
			return false, nil
		}
		state.seenKeys[event.IdempotencyKey] = struct{}{}
	}
	if dryRun {
		if event.IdempotencyKey != "" {
			seen, err := r.datasource.LedgerEventKeyExists(ctx, event.IdempotencyKey)
			if err != nil {
				return false, err
			}
			return !seen, nil
		}
		return true, nil
	}
	return r.datasource.RecordLedgerEvent(ctx, event)
}

func actorOrImporter(actor string) string {
	if actor == "" {
		return "importer"
	}
	return actor
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
