package reversa

import (
	"github.com/shopspring/decimal"

	"github.com/reversa-app/reversa/model"
)

// RefundAmountFields is the ordered fallback chain used to derive the
// refund/chargeback amount from a row. Export dialects have named this value
// four different ways over the years; a new dialect means a new entry here
// and nowhere else.
var RefundAmountFields = []model.Field{
	model.FieldOperationValue,
	model.FieldOperationAmount,
	model.FieldAmount,
	model.FieldProductPrice,
}

// FreightDelta applies the freight rule: the candidate is the larger
// absolute shipping leg, and it only ever raises the stored freight.
// Successive export rows report partial and overlapping legs, so keeping the
// maximum avoids under-billing. Returns the new freight and whether it
// changed.
func FreightDelta(currentFreight, shippingOut, shippingReturn decimal.Decimal) (decimal.Decimal, bool) {
	candidate := shippingOut.Abs()
	if r := shippingReturn.Abs(); r.GreaterThan(candidate) {
		candidate = r
	}
	if candidate.GreaterThan(currentFreight) {
		return candidate, true
	}
	return currentFreight, false
}

// RefundDelta applies the refund/chargeback rule: subtract the row's amount
// from the current product value, floored at zero. Returns the new product
// value, the absolute amount used, and whether the value changed. Rows whose
// event type is neither refund nor chargeback never reach this rule.
func RefundDelta(currentValue decimal.Decimal, row model.NormalizedRow) (decimal.Decimal, decimal.Decimal, bool) {
	amount := refundAmount(row)
	next := currentValue.Sub(amount)
	if next.IsNegative() {
		next = decimal.Zero
	}
	return next, amount, !next.Equal(currentValue)
}

// refundAmount walks the fallback chain and returns the first non-zero
// absolute amount. Unparsable fields coerced to zero upstream are treated as
// absent here.
func refundAmount(row model.NormalizedRow) decimal.Decimal {
	for _, f := range RefundAmountFields {
		if v := row.AmountFor(f); !v.IsZero() {
			return v.Abs()
		}
	}
	return decimal.Zero
}
