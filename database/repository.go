/*
Copyright 2024 Reversa Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/reversa-app/reversa/model"
)

// IDataSource groups the persistence operations of the engine. Idempotency
// is delegated entirely to the store's unique constraints; none of these
// methods take in-process locks.
type IDataSource interface {
	returnRecord
	ledger
	importBatch
}

// returnRecord defines persistence for return/refund cases.
type returnRecord interface {
	CreateReturn(ctx context.Context, rec *model.ReturnRecord) (*model.ReturnRecord, error)              // Inserts a new return record
	GetReturnByOrderID(ctx context.Context, orderID string) (*model.ReturnRecord, error)                 // Fetches a return by external order id
	ReturnExistsByOrderID(ctx context.Context, orderID string) (bool, error)                             // Existence check guarding auto-create
	GetAllReturns(ctx context.Context, limit, offset int) ([]model.ReturnRecord, error)                  // Paginated listing
	UpdateReturnValues(ctx context.Context, returnID string, product, freight decimal.Decimal) error     // Persists computed monetary deltas
	UpdateReturnStatus(ctx context.Context, returnID, status string) error                               // Operational status change
	UpdateLogisticsStatus(ctx context.Context, returnID, status string) error                            // Logistics sub-status advance
}

// ledger defines the append-only audit log.
type ledger interface {
	RecordLedgerEvent(ctx context.Context, event *model.LedgerEvent) (bool, error)             // Inserts an event; false means the idempotency key already existed
	LedgerEventKeyExists(ctx context.Context, key string) (bool, error)                        // Read-only replay check used by dry runs
	GetLedgerEventsByReturnID(ctx context.Context, returnID string) ([]*model.LedgerEvent, error) // Event history of one return
}

// importBatch defines upload bookkeeping.
type importBatch interface {
	RegisterImportBatch(ctx context.Context, batch *model.ImportBatch) (bool, error)           // Registers a batch; false means the batch key was already seen
	ImportBatchKeyExists(ctx context.Context, batchKey string) (bool, error)                   // Read-only replay check for dry runs
	FinishImportBatch(ctx context.Context, batchID string, total, created, updated, errs int) error // Stores final counters
	RecordRawLine(ctx context.Context, line *model.RawImportLine) (bool, error)                // Audit copy of one parsed row; false on duplicate content
}
