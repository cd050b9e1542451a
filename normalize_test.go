package reversa

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reversa-app/reversa/model"
)

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "valor do produto", NormalizeHeader("  Valor do Produto "))
	assert.Equal(t, "frete de devolucao", NormalizeHeader("Frete de Devolução"))
	assert.Equal(t, "numero do pedido", NormalizeHeader("Número do Pedido"))
}

func TestCanonicalFieldDictionary(t *testing.T) {
	tests := map[string]model.Field{
		"order_id":           model.FieldOrderID,
		"Pedido":             model.FieldOrderID,
		"ID do Pedido":       model.FieldOrderID,
		"Loja":               model.FieldStore,
		"Nome do Cliente":    model.FieldCustomerName,
		"Valor do Produto":   model.FieldProductPrice,
		"Preço do Produto":   model.FieldProductPrice,
		"Frete de Envio":     model.FieldShippingOut,
		"Frete de Devolução": model.FieldShippingReturn,
		"Valor da Operação":  model.FieldOperationValue,
		"Montante":           model.FieldAmount,
		"Tipo de Evento":     model.FieldEventType,
		"Situação":           model.FieldStatus,
		"Detalhe do Status":  model.FieldStatusDetail,
		"Motivo":             model.FieldReason,
		"Descrição do Motivo": model.FieldReasonDetail,
		"Data":               model.FieldDate,
	}
	for header, want := range tests {
		assert.Equal(t, want, CanonicalField(header), "header %q", header)
	}
}

func TestCanonicalFieldParentheticalFallback(t *testing.T) {
	// Inner token resolves first, then the prefix.
	assert.Equal(t, model.FieldOrderID, CanonicalField("ID do pedido (order_id)"))
	assert.Equal(t, model.FieldAmount, CanonicalField("Valor (em reais)"))
}

func TestCanonicalFieldUnknownPassthrough(t *testing.T) {
	assert.Equal(t, model.Field("canal_de_venda"), CanonicalField("Canal de Venda"))
	assert.Equal(t, model.Field("tracking_code_2"), CanonicalField("  Tracking Code 2 "))
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "canal_de_venda", snakeCase("canal de venda"))
	assert.Equal(t, "a_b_c", snakeCase("a  b--c"))
	assert.Equal(t, "abc", snakeCase("abc!"))
}
