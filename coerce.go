package reversa

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/reversa-app/reversa/model"
)

// statusMap translates marketplace operation statuses into the domestic
// enum. Unmapped values pass through lowercased; ingestion never rejects a
// row over an unknown status.
var statusMap = map[string]string{
	"approved":  model.StatusAprovado,
	"aprovado":  model.StatusAprovado,
	"pending":   model.StatusPendente,
	"pendente":  model.StatusPendente,
	"rejected":  model.StatusRejeitado,
	"rejeitado": model.StatusRejeitado,
	"cancelled": model.StatusCancelado,
	"canceled":  model.StatusCancelado,
	"cancelado": model.StatusCancelado,
}

// ParseMoney coerces a raw monetary string into a decimal. It accepts the
// Brazilian decimal-comma/thousands-dot convention as well as plain
// decimal-dot, strips currency symbols and other noise, and never fails:
// unparsable input coerces to zero. Correctness is enforced by the delta
// rules, not by rejecting rows here.
func ParseMoney(raw string) decimal.Decimal {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" || s == "-" {
		return decimal.Zero
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Whichever separator appears last is the decimal point; the other
		// is a thousands separator.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// Only commas: the last one is the decimal separator.
		s = strings.Replace(s[:lastComma], ",", "", -1) + "." + s[lastComma+1:]
	case strings.Count(s, ".") > 1:
		// Multiple dots: all but the last are thousands separators.
		s = strings.Replace(s[:lastDot], ".", "", -1) + s[lastDot:]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseBool coerces the loose boolean spellings seen in exports and query
// strings. Anything unrecognized is false.
func ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "sim", "y", "s", "on":
		return true
	}
	return false
}

// CanonicalStatus maps a marketplace status onto the domestic enum, passing
// unmapped values through lowercased.
func CanonicalStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if mapped, ok := statusMap[s]; ok {
		return mapped
	}
	return s
}

// CoerceRow converts a raw field-keyed row into a typed NormalizedRow.
// Coercion happens once, here; the rest of the pipeline never re-parses.
func CoerceRow(fields map[model.Field]string) model.NormalizedRow {
	row := model.NormalizedRow{
		OrderID:         strings.TrimSpace(fields[model.FieldOrderID]),
		Store:           strings.TrimSpace(fields[model.FieldStore]),
		SKU:             strings.TrimSpace(fields[model.FieldSKU]),
		CustomerName:    strings.TrimSpace(fields[model.FieldCustomerName]),
		ProductPrice:    ParseMoney(fields[model.FieldProductPrice]),
		ShippingOut:     ParseMoney(fields[model.FieldShippingOut]),
		ShippingReturn:  ParseMoney(fields[model.FieldShippingReturn]),
		OperationValue:  ParseMoney(fields[model.FieldOperationValue]),
		OperationAmount: ParseMoney(fields[model.FieldOperationAmount]),
		Amount:          ParseMoney(fields[model.FieldAmount]),
		EventType:       strings.ToLower(strings.TrimSpace(fields[model.FieldEventType])),
		Status:          CanonicalStatus(fields[model.FieldStatus]),
		StatusDetail:    strings.ToLower(strings.TrimSpace(fields[model.FieldStatusDetail])),
		Reason:          strings.TrimSpace(fields[model.FieldReason]),
		ReasonDetail:    strings.TrimSpace(fields[model.FieldReasonDetail]),
	}

	for f, v := range fields {
		switch f {
		case model.FieldOrderID, model.FieldStore, model.FieldSKU, model.FieldCustomerName,
			model.FieldProductPrice, model.FieldShippingOut, model.FieldShippingReturn,
			model.FieldOperationValue, model.FieldOperationAmount, model.FieldAmount,
			model.FieldEventType, model.FieldStatus, model.FieldStatusDetail,
			model.FieldReason, model.FieldReasonDetail, model.FieldDate:
		default:
			if row.Extra == nil {
				row.Extra = make(map[string]string)
			}
			row.Extra[string(f)] = strings.TrimSpace(v)
		}
	}

	return row
}
