package reversa

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/reversa-app/reversa/database/mocks"
	"github.com/reversa-app/reversa/internal/apierror"
	"github.com/reversa-app/reversa/model"
)

func newTestEngine(t *testing.T) (*Reversa, *mocks.MockDataSource) {
	ds := new(mocks.MockDataSource)
	engine, err := NewReversa(ds)
	assert.NoError(t, err)
	return engine, ds
}

func decEq(want string) interface{} {
	return mock.MatchedBy(func(v decimal.Decimal) bool {
		return v.Equal(decimal.RequireFromString(want))
	})
}

func TestImportRefundReducesValue(t *testing.T) {
	engine, ds := newTestEngine(t)
	ctx := context.Background()

	rec := &model.ReturnRecord{
		ReturnID:     "ret_1",
		OrderID:      "PED-1",
		ProductValue: decimal.RequireFromString("250.00"),
		FreightValue: decimal.Zero,
	}

	var events []*model.LedgerEvent
	ds.On("RegisterImportBatch", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("GetReturnByOrderID", mock.Anything, "PED-1").Return(rec, nil)
	ds.On("RecordRawLine", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("UpdateReturnValues", mock.Anything, "ret_1", decEq("150.00"), decEq("30.00")).Return(nil)
	ds.On("RecordLedgerEvent", mock.Anything, mock.Anything).Return(true, nil).Run(func(args mock.Arguments) {
		events = append(events, args.Get(1).(*model.LedgerEvent))
	})
	ds.On("FinishImportBatch", mock.Anything, mock.Anything, 1, 0, 1, 0).Return(nil)

	raw := "ID do Pedido (order_id);Valor da Operação;Frete de Devolução;Detalhe do Status\n" +
		"PED-1;-100,00;30,00;Refunded\n"

	summary, err := engine.ImportReturns(ctx, raw, model.ImportOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, summary.Errors)

	assert.Len(t, events, 2)
	assert.Equal(t, model.EventRefund, events[0].Category)
	assert.Equal(t, model.EventCusto, events[1].Category)
	ds.AssertExpectations(t)
}

func TestImportRefundFloorsAtZeroStillLedgers(t *testing.T) {
	engine, ds := newTestEngine(t)
	ctx := context.Background()

	rec := &model.ReturnRecord{
		ReturnID:     "ret_1",
		OrderID:      "PED-1",
		ProductValue: decimal.Zero,
		FreightValue: decimal.Zero,
	}

	var events []*model.LedgerEvent
	ds.On("RegisterImportBatch", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("GetReturnByOrderID", mock.Anything, "PED-1").Return(rec, nil)
	ds.On("RecordRawLine", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("RecordLedgerEvent", mock.Anything, mock.Anything).Return(true, nil).Run(func(args mock.Arguments) {
		events = append(events, args.Get(1).(*model.LedgerEvent))
	})
	ds.On("FinishImportBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	raw := "order_id;valor da operacao;detalhe do status\nPED-1;-100,00;refunded\n"

	summary, err := engine.ImportReturns(ctx, raw, model.ImportOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	// The stored value is already at the floor: no update, but the refund
	// fact still lands in the ledger.
	assert.Equal(t, 0, summary.Updated)
	ds.AssertNotCalled(t, "UpdateReturnValues", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	assert.Len(t, events, 1)
	assert.Equal(t, model.EventRefund, events[0].Category)
	assert.Equal(t, "100", events[0].MetaData["amount"])
}

func TestImportChargebackCategory(t *testing.T) {
	engine, ds := newTestEngine(t)

	rec := &model.ReturnRecord{
		ReturnID:     "ret_9",
		OrderID:      "PED-9",
		ProductValue: decimal.RequireFromString("80.00"),
	}

	var events []*model.LedgerEvent
	ds.On("RegisterImportBatch", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("GetReturnByOrderID", mock.Anything, "PED-9").Return(rec, nil)
	ds.On("RecordRawLine", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("UpdateReturnValues", mock.Anything, "ret_9", decEq("0"), decEq("0")).Return(nil)
	ds.On("RecordLedgerEvent", mock.Anything, mock.Anything).Return(true, nil).Run(func(args mock.Arguments) {
		events = append(events, args.Get(1).(*model.LedgerEvent))
	})
	ds.On("FinishImportBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	raw := "order_id;valor;status\nPED-9;120,00;charged_back\n"

	summary, err := engine.ImportReturns(context.Background(), raw, model.ImportOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Len(t, events, 1)
	assert.Equal(t, model.EventChargeback, events[0].Category)
}

func TestImportFreightNeverLowered(t *testing.T) {
	engine, ds := newTestEngine(t)

	rec := &model.ReturnRecord{
		ReturnID:     "ret_1",
		OrderID:      "PED-1",
		FreightValue: decimal.RequireFromString("40.00"),
	}

	ds.On("RegisterImportBatch", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("GetReturnByOrderID", mock.Anything, "PED-1").Return(rec, nil)
	ds.On("RecordRawLine", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("FinishImportBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	raw := "order_id;frete de envio\nPED-1;15,00\n"

	summary, err := engine.ImportReturns(context.Background(), raw, model.ImportOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 0, summary.Updated)
	ds.AssertNotCalled(t, "UpdateReturnValues", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ds.AssertNotCalled(t, "RecordLedgerEvent", mock.Anything, mock.Anything)
}

func TestImportUnmatchedRowWithoutAutoCreate(t *testing.T) {
	engine, ds := newTestEngine(t)

	var line *model.RawImportLine
	ds.On("RegisterImportBatch", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("GetReturnByOrderID", mock.Anything, "PED-404").
		Return(nil, apierror.NotFound("Return not found", nil))
	ds.On("RecordRawLine", mock.Anything, mock.Anything).Return(true, nil).Run(func(args mock.Arguments) {
		line = args.Get(1).(*model.RawImportLine)
	})
	ds.On("FinishImportBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	raw := "order_id;valor\nPED-404;10,00\n"

	summary, err := engine.ImportReturns(context.Background(), raw, model.ImportOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Unmatched)
	assert.Equal(t, 0, summary.Errors)
	// The forensic copy is still stored, without a return id.
	assert.NotNil(t, line)
	assert.Equal(t, "", line.ReturnID)
	ds.AssertNotCalled(t, "RecordLedgerEvent", mock.Anything, mock.Anything)
}

func TestImportAutoCreateStub(t *testing.T) {
	engine, ds := newTestEngine(t)

	created := &model.ReturnRecord{
		ReturnID:     "ret_new",
		OrderID:      "PED-7",
		Status:       model.StatusPendente,
		ProductValue: decimal.Zero,
		FreightValue: decimal.Zero,
	}

	var events []*model.LedgerEvent
	ds.On("RegisterImportBatch", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("GetReturnByOrderID", mock.Anything, "PED-7").
		Return(nil, apierror.NotFound("Return not found", nil)).Once()
	ds.On("ReturnExistsByOrderID", mock.Anything, "PED-7").Return(false, nil)
	ds.On("CreateReturn", mock.Anything, mock.Anything).Return(created, nil)
	ds.On("RecordRawLine", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("RecordLedgerEvent", mock.Anything, mock.Anything).Return(true, nil).Run(func(args mock.Arguments) {
		events = append(events, args.Get(1).(*model.LedgerEvent))
	})
	ds.On("UpdateReturnValues", mock.Anything, "ret_new", decEq("0"), decEq("22.50")).Return(nil)
	ds.On("FinishImportBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	// Two rows for the same unknown order: one stub, one creation event.
	raw := "order_id;motivo;frete de devolucao\n" +
		"PED-7;arrependimento;22,50\n" +
		"PED-7;arrependimento;22,50\n"

	summary, err := engine.ImportReturns(context.Background(), raw, model.ImportOptions{AutoCreate: true})
	assert.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Created)

	ds.AssertNumberOfCalls(t, "CreateReturn", 1)
	assert.Equal(t, model.EventCreation, events[0].Category)
	assert.Equal(t, model.CreationKey("PED-7"), events[0].IdempotencyKey)
}

func TestImportAutoCreateLosesRace(t *testing.T) {
	engine, ds := newTestEngine(t)

	existing := &model.ReturnRecord{ReturnID: "ret_race", OrderID: "PED-7"}

	ds.On("RegisterImportBatch", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("GetReturnByOrderID", mock.Anything, "PED-7").
		Return(nil, apierror.NotFound("Return not found", nil)).Once()
	ds.On("ReturnExistsByOrderID", mock.Anything, "PED-7").Return(false, nil)
	ds.On("CreateReturn", mock.Anything, mock.Anything).
		Return(nil, apierror.Conflict("Return with this order id already exists", nil))
	ds.On("GetReturnByOrderID", mock.Anything, "PED-7").Return(existing, nil).Once()
	ds.On("RecordRawLine", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("FinishImportBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	raw := "order_id;valor\nPED-7;0\n"

	summary, err := engine.ImportReturns(context.Background(), raw, model.ImportOptions{AutoCreate: true})
	assert.NoError(t, err)
	// The concurrent winner's record is reused: nothing was created here.
	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 0, summary.Errors)
}

func TestImportDryRunParity(t *testing.T) {
	raw := "order_id;valor da operacao;detalhe do status\n" +
		"PED-1;-100,00;refunded\n" +
		"PED-1;-50,00;refunded\n"

	freshRec := func() *model.ReturnRecord {
		return &model.ReturnRecord{
			ReturnID:     "ret_1",
			OrderID:      "PED-1",
			ProductValue: decimal.RequireFromString("250.00"),
		}
	}

	dryEngine, dryDS := newTestEngine(t)
	dryDS.On("GetReturnByOrderID", mock.Anything, "PED-1").Return(freshRec(), nil)
	dryDS.On("LedgerEventKeyExists", mock.Anything, mock.Anything).Return(false, nil)

	dry, err := dryEngine.ImportReturns(context.Background(), raw, model.ImportOptions{DryRun: true})
	assert.NoError(t, err)

	applyEngine, applyDS := newTestEngine(t)
	applyDS.On("RegisterImportBatch", mock.Anything, mock.Anything).Return(true, nil)
	applyDS.On("GetReturnByOrderID", mock.Anything, "PED-1").Return(freshRec(), nil)
	applyDS.On("RecordRawLine", mock.Anything, mock.Anything).Return(true, nil)
	applyDS.On("UpdateReturnValues", mock.Anything, "ret_1", mock.Anything, mock.Anything).Return(nil)
	applyDS.On("RecordLedgerEvent", mock.Anything, mock.Anything).Return(true, nil)
	applyDS.On("FinishImportBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	applied, err := applyEngine.ImportReturns(context.Background(), raw, model.ImportOptions{})
	assert.NoError(t, err)

	// Identical counts in both modes: the dry run sees its own earlier rows.
	assert.Equal(t, applied.Total, dry.Total)
	assert.Equal(t, applied.Created, dry.Created)
	assert.Equal(t, applied.Updated, dry.Updated)
	assert.Equal(t, applied.Unmatched, dry.Unmatched)
	assert.Equal(t, applied.Errors, dry.Errors)
	assert.Equal(t, 2, applied.Updated)
	assert.True(t, dry.DryRun)
	assert.False(t, applied.DryRun)

	// Dry run commits nothing.
	dryDS.AssertNotCalled(t, "RegisterImportBatch", mock.Anything, mock.Anything)
	dryDS.AssertNotCalled(t, "RecordRawLine", mock.Anything, mock.Anything)
	dryDS.AssertNotCalled(t, "UpdateReturnValues", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	dryDS.AssertNotCalled(t, "RecordLedgerEvent", mock.Anything, mock.Anything)
}

func TestImportBatchKeyReplaySkips(t *testing.T) {
	engine, ds := newTestEngine(t)

	ds.On("RegisterImportBatch", mock.Anything, mock.Anything).Return(false, nil)

	raw := "order_id;valor\nPED-1;10\n"
	opts := model.ImportOptions{BatchKey: "upload-2026-01"}

	summary, err := engine.ImportReturns(context.Background(), raw, opts)
	assert.NoError(t, err)
	assert.True(t, summary.Skipped)
	assert.Equal(t, "batch key already processed", summary.Reason)
	assert.Equal(t, 0, summary.Total)
	ds.AssertNotCalled(t, "GetReturnByOrderID", mock.Anything, mock.Anything)
}

func TestImportBatchKeyReplayDryRunPeeks(t *testing.T) {
	engine, ds := newTestEngine(t)

	ds.On("ImportBatchKeyExists", mock.Anything, "upload-2026-01").Return(true, nil)

	raw := "order_id;valor\nPED-1;10\n"
	opts := model.ImportOptions{DryRun: true, BatchKey: "upload-2026-01"}

	summary, err := engine.ImportReturns(context.Background(), raw, opts)
	assert.NoError(t, err)
	assert.True(t, summary.Skipped)
	ds.AssertNotCalled(t, "RegisterImportBatch", mock.Anything, mock.Anything)
}

func TestImportRowErrorDoesNotAbortBatch(t *testing.T) {
	engine, ds := newTestEngine(t)

	rec := &model.ReturnRecord{ReturnID: "ret_1", OrderID: "PED-1"}

	ds.On("RegisterImportBatch", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("GetReturnByOrderID", mock.Anything, "PED-1").Return(rec, nil)
	ds.On("RecordRawLine", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("FinishImportBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	raw := "order_id;valor\n;10,00\nPED-1;0\n"

	summary, err := engine.ImportReturns(context.Background(), raw, model.ImportOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Errors)
	assert.Len(t, summary.ErrorsDetail, 1)
	assert.Equal(t, 2, summary.ErrorsDetail[0].Line)
	assert.Equal(t, "missing order id", summary.ErrorsDetail[0].Error)
}

func TestImportEmptyPayload(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.ImportReturns(context.Background(), "", model.ImportOptions{})
	assert.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.ErrInvalidInput))
}

func TestImportDuplicateLineAppliesDeltaOnce(t *testing.T) {
	engine, ds := newTestEngine(t)

	rec := &model.ReturnRecord{
		ReturnID:     "ret_1",
		OrderID:      "PED-1",
		ProductValue: decimal.RequireFromString("300.00"),
	}

	var events []*model.LedgerEvent
	ds.On("RegisterImportBatch", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("GetReturnByOrderID", mock.Anything, "PED-1").Return(rec, nil)
	ds.On("RecordRawLine", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("UpdateReturnValues", mock.Anything, "ret_1", decEq("200.00"), decEq("0")).Return(nil)
	ds.On("RecordLedgerEvent", mock.Anything, mock.Anything).Return(true, nil).Run(func(args mock.Arguments) {
		events = append(events, args.Get(1).(*model.LedgerEvent))
	})
	ds.On("FinishImportBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	// The same physical line twice: one refund event, one subtraction. The
	// second row's replayed key suppresses both halves of the fact.
	raw := "order_id;valor da operacao;detalhe do status\n" +
		"PED-1;-100,00;refunded\n" +
		"PED-1;-100,00;refunded\n"

	summary, err := engine.ImportReturns(context.Background(), raw, model.ImportOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Updated)
	assert.Len(t, events, 1)
	assert.Equal(t, model.EventRefund, events[0].Category)
	ds.AssertNumberOfCalls(t, "UpdateReturnValues", 1)
	assert.True(t, rec.ProductValue.Equal(decimal.RequireFromString("200.00")))
}

func TestImportReplayedFileIsWriteFree(t *testing.T) {
	engine, ds := newTestEngine(t)

	// State after the first apply of this file: 250 - 100, freight raised
	// to 30. The refund key is already in the ledger, so RecordLedgerEvent
	// reports a conflict and the value must not be re-subtracted.
	rec := &model.ReturnRecord{
		ReturnID:     "ret_1",
		OrderID:      "PED-1",
		ProductValue: decimal.RequireFromString("150.00"),
		FreightValue: decimal.RequireFromString("30.00"),
	}

	ds.On("RegisterImportBatch", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("GetReturnByOrderID", mock.Anything, "PED-1").Return(rec, nil)
	ds.On("RecordRawLine", mock.Anything, mock.Anything).Return(true, nil)
	ds.On("RecordLedgerEvent", mock.Anything, mock.Anything).Return(false, nil)
	ds.On("FinishImportBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	raw := "order_id;valor da operacao;frete de devolucao;detalhe do status\n" +
		"PED-1;-100,00;30,00;refunded\n"

	summary, err := engine.ImportReturns(context.Background(), raw, model.ImportOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Errors)
	ds.AssertNotCalled(t, "UpdateReturnValues", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, rec.ProductValue.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, rec.FreightValue.Equal(decimal.RequireFromString("30.00")))
}

func TestImportDryRunSeesEarlierBatches(t *testing.T) {
	engine, ds := newTestEngine(t)

	rec := &model.ReturnRecord{
		ReturnID:     "ret_1",
		OrderID:      "PED-1",
		ProductValue: decimal.RequireFromString("150.00"),
		FreightValue: decimal.RequireFromString("30.00"),
	}

	ds.On("GetReturnByOrderID", mock.Anything, "PED-1").Return(rec, nil)
	ds.On("LedgerEventKeyExists", mock.Anything, mock.Anything).Return(true, nil)

	raw := "order_id;valor da operacao;frete de devolucao;detalhe do status\n" +
		"PED-1;-100,00;30,00;refunded\n"

	// A dry run of an already-applied file reports the same zero updates an
	// apply replay would, via the read-only key check.
	summary, err := engine.ImportReturns(context.Background(), raw, model.ImportOptions{DryRun: true})
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 0, summary.Updated)
	assert.True(t, rec.ProductValue.Equal(decimal.RequireFromString("150.00")))
}
