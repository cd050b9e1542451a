package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Return statuses. The marketplace reports statuses in English; the coercer
// maps them into these domestic values before anything downstream sees them.
const (
	StatusPendente  = "pendente"
	StatusAprovado  = "aprovado"
	StatusRejeitado = "rejeitado"
	StatusCancelado = "cancelado"
)

// Logistics sub-statuses. A return physically moves through these in order;
// the progression never regresses.
const (
	LogisticsNone        = ""
	LogisticsEmPreparo   = "em_preparacao"
	LogisticsEmTransito  = "em_transporte"
	LogisticsRecebidoCD  = "recebido_cd"
	LogisticsEmInspecao  = "em_inspecao"
	LogisticsAprovadoCD  = "aprovado_cd"
	LogisticsReprovadoCD = "reprovado_cd"
)

// LogisticsNext maps each logistics sub-status to the set of sub-statuses it
// may advance to. Terminal states map to nil.
var LogisticsNext = map[string][]string{
	LogisticsNone:        {LogisticsEmPreparo},
	LogisticsEmPreparo:   {LogisticsEmTransito},
	LogisticsEmTransito:  {LogisticsRecebidoCD},
	LogisticsRecebidoCD:  {LogisticsEmInspecao},
	LogisticsEmInspecao:  {LogisticsAprovadoCD, LogisticsReprovadoCD},
	LogisticsAprovadoCD:  nil,
	LogisticsReprovadoCD: nil,
}

// CanAdvanceLogistics reports whether a return may move from the current
// logistics sub-status directly to next.
func CanAdvanceLogistics(current, next string) bool {
	for _, allowed := range LogisticsNext[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ReturnRecord is one customer return/refund case. There is at most one live
// record per external order id; the reconciliation engine never deletes one.
type ReturnRecord struct {
	ID             int64           `json:"-"`
	ReturnID       string          `json:"return_id"`
	OrderID        string          `json:"order_id"`
	Store          string          `json:"store,omitempty"`
	SKU            string          `json:"sku,omitempty"`
	CustomerName   string          `json:"customer_name,omitempty"`
	ProductValue   decimal.Decimal `json:"product_value"`
	FreightValue   decimal.Decimal `json:"freight_value"`
	Status         string          `json:"status"`
	LogisticsState string          `json:"logistics_status,omitempty"`
	ReasonLabel    string          `json:"reason_label,omitempty"`
	ReasonCategory string          `json:"reason_category,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ValidStatus reports whether s is one of the domestic return statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPendente, StatusAprovado, StatusRejeitado, StatusCancelado:
		return true
	}
	return false
}
