package reversa

import (
	"sort"
	"strings"

	"github.com/reversa-app/reversa/internal/apierror"
)

// csvLayout is one named upload skeleton: a header row plus a single example
// row, used to seed correctly-shaped uploads.
type csvLayout struct {
	delimiter string
	headers   []string
	example   []string
}

// templateLayouts are the layouts the template endpoint can produce. The
// "mercadolivre" layout mirrors the marketplace's PT-BR export; "padrao" is
// the plain canonical one.
var templateLayouts = map[string]csvLayout{
	"padrao": {
		delimiter: ";",
		headers: []string{
			"order_id", "store", "sku", "customer_name", "product_price",
			"shipping_out", "shipping_return", "event_type", "status", "reason",
		},
		example: []string{
			"PED-0001", "Loja Exemplo", "SKU-123", "Maria Silva", "199,90",
			"24,90", "0,00", "refund", "approved", "arrependimento",
		},
	},
	"mercadolivre": {
		delimiter: ";",
		headers: []string{
			"ID do pedido (order_id)", "Loja", "SKU", "Cliente",
			"Valor do produto", "Tarifa de envio", "Tarifa de devolucao",
			"Tipo de evento", "Status da operacao", "Detalhe do status",
			"Motivo da devolucao (reason)",
		},
		example: []string{
			"2000001234567890", "Minha Loja", "SKU-123", "Maria Silva",
			"R$ 199,90", "R$ 24,90", "R$ 0,00", "refund", "approved",
			"reembolsado", "arrependimento",
		},
	},
}

// Template renders the CSV skeleton for a named layout.
func Template(layout string) (string, error) {
	l, ok := templateLayouts[strings.ToLower(strings.TrimSpace(layout))]
	if !ok {
		return "", apierror.NotFound("Unknown template layout: "+layout, nil)
	}
	return strings.Join(l.headers, l.delimiter) + "\n" +
		strings.Join(l.example, l.delimiter) + "\n", nil
}

// TemplateLayouts lists the available layout names.
func TemplateLayouts() []string {
	names := make([]string, 0, len(templateLayouts))
	for name := range templateLayouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
