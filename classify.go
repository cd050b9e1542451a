package reversa

import (
	"strings"

	"github.com/reversa-app/reversa/model"
)

// Event types produced by the classifier. Anything that is not a refund or a
// chargeback passes through as the raw event-type hint, or "other" when the
// export carries none.
const (
	EventTypeRefund     = "refund"
	EventTypeChargeback = "chargeback"
	EventTypeOther      = "other"
)

// chargebackStatuses are operation statuses that indicate a forced reversal
// by the marketplace.
var chargebackStatuses = []string{"charged_back", "chargeback", "contestado", "contestacao"}

// refundDetailKeywords mark a status-detail as an effective refund.
var refundDetailKeywords = []string{"refund", "reembols", "estorn", "reconcil", "compensa", "devolvido"}

// repentantKeywords are the "repentant buyer" reason family; the marketplace
// settles those as refunds even when the event-type hint says otherwise.
var repentantKeywords = []string{"arrepend", "repent", "remorse", "desist"}

// ClassifyEvent decides the semantic event type of one row. The checks apply
// in precedence order and each one short-circuits the rest.
func ClassifyEvent(row model.NormalizedRow) string {
	if containsAny(row.Status, chargebackStatuses) {
		return EventTypeChargeback
	}
	if strings.Contains(row.EventType, "chargeback") {
		return EventTypeChargeback
	}
	if containsAny(row.StatusDetail, refundDetailKeywords) {
		return EventTypeRefund
	}
	if containsAny(strings.ToLower(row.ReasonDetail), repentantKeywords) ||
		containsAny(strings.ToLower(row.Reason), repentantKeywords) {
		return EventTypeRefund
	}
	if row.EventType != "" {
		return row.EventType
	}
	return EventTypeOther
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// Reason categories.
const (
	ReasonCategoryCliente   = "cliente"
	ReasonCategoryLoja      = "loja"
	ReasonCategoryQualidade = "qualidade"
)

// Reason is a classified return reason: a human label plus the party the
// cost is attributed to. Category is empty when the reason is unknown.
type Reason struct {
	Label    string
	Category string
}

// reasonMap keys are normalized reason codes/descriptions.
var reasonMap = map[string]Reason{
	"arrependimento":       {"Arrependimento do cliente", ReasonCategoryCliente},
	"buyer_remorse":        {"Arrependimento do cliente", ReasonCategoryCliente},
	"tamanho incorreto":    {"Tamanho incorreto", ReasonCategoryCliente},
	"wrong_size":           {"Tamanho incorreto", ReasonCategoryCliente},
	"defeito":              {"Produto com defeito", ReasonCategoryQualidade},
	"defective":            {"Produto com defeito", ReasonCategoryQualidade},
	"danificado":           {"Produto danificado no transporte", ReasonCategoryQualidade},
	"damaged":              {"Produto danificado no transporte", ReasonCategoryQualidade},
	"diferente do anuncio": {"Diferente do anuncio", ReasonCategoryQualidade},
	"not_as_described":     {"Diferente do anuncio", ReasonCategoryQualidade},
	"produto errado":       {"Produto errado enviado", ReasonCategoryLoja},
	"wrong_item":           {"Produto errado enviado", ReasonCategoryLoja},
	"nao entregue":         {"Produto nao entregue", ReasonCategoryLoja},
	"not_delivered":        {"Produto nao entregue", ReasonCategoryLoja},
	"atraso na entrega":    {"Atraso na entrega", ReasonCategoryLoja},
	"late_delivery":        {"Atraso na entrega", ReasonCategoryLoja},
	"item faltando":        {"Item faltando no pacote", ReasonCategoryLoja},
	"missing_parts":        {"Item faltando no pacote", ReasonCategoryLoja},
}

// ClassifyReason resolves a reason code/description pair to a label and
// category. Lookup tries the code first, then the description; unknown
// reasons produce a humanized pass-through label with no category.
func ClassifyReason(code, detail string) Reason {
	if r, ok := reasonMap[NormalizeHeader(code)]; ok {
		return r
	}
	if r, ok := reasonMap[NormalizeHeader(detail)]; ok {
		return r
	}

	raw := code
	if raw == "" {
		raw = detail
	}
	if raw == "" {
		return Reason{}
	}
	return Reason{Label: humanize(raw)}
}

// humanize turns a raw code like "store_error" into "Store error".
func humanize(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
