package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Ledger event categories.
const (
	EventStatus     = "status"
	EventCusto      = "custo"
	EventAjuste     = "ajuste"
	EventChargeback = "chargeback"
	EventRefund     = "refund"
	EventCreation   = "creation"
	EventOther      = "other"
)

// LedgerEvent is an immutable fact about a mutation applied to a return
// record. The ledger is append-only: inserting a second event with the same
// idempotency key is a silent no-op at the database layer.
type LedgerEvent struct {
	ID             int64                  `json:"-"`
	EventID        string                 `json:"event_id"`
	ReturnID       string                 `json:"return_id"`
	Category       string                 `json:"category"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message,omitempty"`
	MetaData       map[string]interface{} `json:"meta_data,omitempty"`
	IdempotencyKey string                 `json:"idempotency_key,omitempty"`
	Actor          string                 `json:"actor,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// IdempotencyKey fingerprints a logical change: the event category, the
// owning return, and the normalized inputs that produced the delta. Replaying
// the same logical fact always yields the same key, which the unique index on
// ledger_events turns into a no-op insert.
func IdempotencyKey(category, returnID string, parts ...string) string {
	data := category + ":" + returnID + ":" + strings.Join(parts, ":")
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// CreationKey is the idempotency key for auto-created stubs. It is derived
// from the external order id alone, so re-importing the same file can never
// produce a second creation event for the same order.
func CreationKey(orderID string) string {
	return IdempotencyKey(EventCreation, "", orderID)
}
