package model

// Field is a canonical column name produced by the header normalizer. Export
// files spell these a dozen different ways across locales; everything past
// the normalizer speaks only in Fields.
type Field string

const (
	FieldOrderID         Field = "order_id"
	FieldStore           Field = "store"
	FieldSKU             Field = "sku"
	FieldCustomerName    Field = "customer_name"
	FieldProductPrice    Field = "product_price"
	FieldShippingOut     Field = "shipping_out"
	FieldShippingReturn  Field = "shipping_return"
	FieldOperationValue  Field = "operation_value"
	FieldOperationAmount Field = "operation_amount"
	FieldAmount          Field = "amount"
	FieldEventType       Field = "event_type"
	FieldStatus          Field = "status"
	FieldStatusDetail    Field = "status_detail"
	FieldReason          Field = "reason"
	FieldReasonDetail    Field = "reason_detail"
	FieldDate            Field = "date"
)
