package reversa

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/reversa-app/reversa/model"
)

// headerFields maps every historically observed header spelling, already
// normalized by NormalizeHeader, to its canonical field. The parenthetical
// variants ("ID do pedido (order_id)") are resolved by the suffix-stripping
// fallback in CanonicalField, so only the bare spellings live here.
var headerFields = map[string]model.Field{
	"order_id":     model.FieldOrderID,
	"pedido":       model.FieldOrderID,
	"id do pedido": model.FieldOrderID,
	"n do pedido":  model.FieldOrderID,
	"numero do pedido": model.FieldOrderID,

	"store":        model.FieldStore,
	"loja":         model.FieldStore,
	"nome da loja": model.FieldStore,

	"sku":               model.FieldSKU,
	"codigo do produto": model.FieldSKU,
	"codigo":            model.FieldSKU,

	"customer_name":   model.FieldCustomerName,
	"cliente":         model.FieldCustomerName,
	"nome do cliente": model.FieldCustomerName,
	"comprador":       model.FieldCustomerName,

	"product_price":    model.FieldProductPrice,
	"valor do produto": model.FieldProductPrice,
	"preco do produto": model.FieldProductPrice,
	"preco unitario":   model.FieldProductPrice,

	"shipping_out":   model.FieldShippingOut,
	"frete de envio": model.FieldShippingOut,
	"custo de envio": model.FieldShippingOut,
	"tarifa de envio": model.FieldShippingOut,

	"shipping_return":     model.FieldShippingReturn,
	"frete de devolucao":  model.FieldShippingReturn,
	"custo de devolucao":  model.FieldShippingReturn,
	"tarifa de devolucao": model.FieldShippingReturn,

	"operation_value":   model.FieldOperationValue,
	"valor da operacao": model.FieldOperationValue,

	"operation_amount":     model.FieldOperationAmount,
	"montante da operacao": model.FieldOperationAmount,

	"amount":   model.FieldAmount,
	"valor":    model.FieldAmount,
	"montante": model.FieldAmount,

	"event_type":     model.FieldEventType,
	"tipo de evento": model.FieldEventType,
	"tipo":           model.FieldEventType,

	"status":             model.FieldStatus,
	"status da operacao": model.FieldStatus,
	"situacao":           model.FieldStatus,

	"status_detail":     model.FieldStatusDetail,
	"detalhe do status": model.FieldStatusDetail,

	"reason":               model.FieldReason,
	"motivo":               model.FieldReason,
	"motivo da devolucao":  model.FieldReason,
	"codigo do motivo":     model.FieldReason,

	"reason_detail":       model.FieldReasonDetail,
	"descricao do motivo": model.FieldReasonDetail,
	"detalhe do motivo":   model.FieldReasonDetail,

	"date": model.FieldDate,
	"data": model.FieldDate,
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeHeader lowers, trims and accent-strips a raw header label so
// lookups are insensitive to the cosmetic drift between export dialects.
func NormalizeHeader(header string) string {
	stripped, _, err := transform.String(accentStripper, header)
	if err != nil {
		stripped = header
	}
	return strings.ToLower(strings.TrimSpace(stripped))
}

// CanonicalField resolves a raw header label to its canonical field. Unknown
// labels fall back first to a lookup with any trailing parenthetical suffix
// removed ("ID do pedido (order_id)"), and finally to a snake-cased version
// of the label itself, so forward-compatible columns survive instead of
// being dropped.
func CanonicalField(header string) model.Field {
	n := NormalizeHeader(header)
	if f, ok := headerFields[n]; ok {
		return f
	}

	if open := strings.LastIndex(n, "("); open > 0 && strings.HasSuffix(n, ")") {
		inner := strings.TrimSpace(n[open+1 : len(n)-1])
		if f, ok := headerFields[inner]; ok {
			return f
		}
		if f, ok := headerFields[strings.TrimSpace(n[:open])]; ok {
			return f
		}
	}

	return model.Field(snakeCase(n))
}

// snakeCase collapses a normalized label into a lowercase snake_case token.
func snakeCase(s string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
