package reversa

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/reversa-app/reversa/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFreightDeltaOnlyRaises(t *testing.T) {
	newFreight, changed := FreightDelta(d("0"), d("25.90"), d("0"))
	assert.True(t, changed)
	assert.True(t, newFreight.Equal(d("25.90")))

	// A smaller leg never lowers the stored freight.
	newFreight, changed = FreightDelta(d("25.90"), d("10.00"), d("0"))
	assert.False(t, changed)
	assert.True(t, newFreight.Equal(d("25.90")))

	// Equal candidate is a no-op, not a change.
	_, changed = FreightDelta(d("25.90"), d("25.90"), d("0"))
	assert.False(t, changed)
}

func TestFreightDeltaPicksLargerAbsoluteLeg(t *testing.T) {
	newFreight, changed := FreightDelta(d("0"), d("-12.00"), d("30.00"))
	assert.True(t, changed)
	assert.True(t, newFreight.Equal(d("30.00")))

	newFreight, changed = FreightDelta(d("0"), d("-45.00"), d("30.00"))
	assert.True(t, changed)
	assert.True(t, newFreight.Equal(d("45.00")))
}

func TestRefundDeltaSubtractsAndFloorsAtZero(t *testing.T) {
	row := model.NormalizedRow{OperationValue: d("-100.00")}

	next, amount, changed := RefundDelta(d("250.00"), row)
	assert.True(t, changed)
	assert.True(t, next.Equal(d("150.00")))
	assert.True(t, amount.Equal(d("100.00")))

	// Amount larger than the stored value floors at zero.
	next, amount, changed = RefundDelta(d("60.00"), row)
	assert.True(t, changed)
	assert.True(t, next.IsZero())
	assert.True(t, amount.Equal(d("100.00")))

	// Already at zero: the floor makes the value change a no-op.
	next, amount, changed = RefundDelta(d("0"), row)
	assert.False(t, changed)
	assert.True(t, next.IsZero())
	assert.True(t, amount.Equal(d("100.00")))
}

func TestRefundAmountFallbackChain(t *testing.T) {
	// operation_value wins when present.
	row := model.NormalizedRow{OperationValue: d("-80"), Amount: d("99"), ProductPrice: d("120")}
	_, amount, _ := RefundDelta(d("200"), row)
	assert.True(t, amount.Equal(d("80")))

	// Zero operation_value falls through to operation_amount.
	row = model.NormalizedRow{OperationAmount: d("-55"), ProductPrice: d("120")}
	_, amount, _ = RefundDelta(d("200"), row)
	assert.True(t, amount.Equal(d("55")))

	// amount before product_price.
	row = model.NormalizedRow{Amount: d("42"), ProductPrice: d("120")}
	_, amount, _ = RefundDelta(d("200"), row)
	assert.True(t, amount.Equal(d("42")))

	// product_price is the last resort.
	row = model.NormalizedRow{ProductPrice: d("120")}
	_, amount, _ = RefundDelta(d("200"), row)
	assert.True(t, amount.Equal(d("120")))

	// Nothing parsable: zero amount, no change.
	next, amount, changed := RefundDelta(d("200"), model.NormalizedRow{})
	assert.False(t, changed)
	assert.True(t, amount.IsZero())
	assert.True(t, next.Equal(d("200")))
}
