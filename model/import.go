package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ImportBatch is the bookkeeping row for one apply-mode upload attempt; dry
// runs register nothing. A caller may attach a batch key; replaying a key
// that was already recorded performs zero mutations and reports skipped.
type ImportBatch struct {
	ID          int64      `json:"-"`
	BatchID     string     `json:"batch_id"`
	BatchKey    string     `json:"idemp_batch,omitempty"`
	FileName    string     `json:"file_name,omitempty"`
	Total       int        `json:"total"`
	Created     int        `json:"created"`
	Updated     int        `json:"updated"`
	Errors      int        `json:"errors"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RawImportLine is a forensic copy of one parsed row. The (batch_id,
// content_hash) uniqueness keeps the same physical line from being stored
// twice inside one batch.
type RawImportLine struct {
	ID          int64  `json:"-"`
	BatchID     string `json:"batch_id"`
	ReturnID    string `json:"return_id,omitempty"`
	LineNumber  int    `json:"line_number"`
	Content     string `json:"content"`
	ContentHash string `json:"content_hash"`
}

// ImportOptions carries the caller-facing knobs of one upload.
type ImportOptions struct {
	DryRun     bool
	AutoCreate bool
	BatchKey   string
	FileName   string
	Actor      string
	// Delimiter forces a column separator; zero means auto-detect.
	Delimiter rune
}

// RowError is one per-row failure inside a batch report.
type RowError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// ImportSummary is the batch report returned by every import, dry-run or not.
type ImportSummary struct {
	OK           bool       `json:"ok"`
	Total        int        `json:"total"`
	Created      int        `json:"created"`
	Updated      int        `json:"updated"`
	Unmatched    int        `json:"unmatched,omitempty"`
	Errors       int        `json:"errors"`
	ErrorsDetail []RowError `json:"errors_detail"`
	BatchID      string     `json:"batch_id,omitempty"`
	BatchKey     string     `json:"idemp_batch,omitempty"`
	DryRun       bool       `json:"dry_run"`
	Skipped      bool       `json:"skipped,omitempty"`
	Reason       string     `json:"reason,omitempty"`
}

// NormalizedRow is one export row after header normalization and type
// coercion. Coercion happens exactly once, at the boundary; nothing
// downstream re-parses strings.
type NormalizedRow struct {
	OrderID         string
	Store           string
	SKU             string
	CustomerName    string
	ProductPrice    decimal.Decimal
	ShippingOut     decimal.Decimal
	ShippingReturn  decimal.Decimal
	OperationValue  decimal.Decimal
	OperationAmount decimal.Decimal
	Amount          decimal.Decimal
	EventType       string
	Status          string
	StatusDetail    string
	Reason          string
	ReasonDetail    string
	// Extra holds forward-compatible columns the dictionary does not know
	// yet, keyed by their snake-cased header.
	Extra map[string]string
}

// AmountFor returns the monetary value the row carries for a canonical
// field. Only fields that can appear in the refund fallback chain are
// addressable here.
func (r NormalizedRow) AmountFor(f Field) decimal.Decimal {
	switch f {
	case FieldOperationValue:
		return r.OperationValue
	case FieldOperationAmount:
		return r.OperationAmount
	case FieldAmount:
		return r.Amount
	case FieldProductPrice:
		return r.ProductPrice
	}
	return decimal.Zero
}
