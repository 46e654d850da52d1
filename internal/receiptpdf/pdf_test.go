package receiptpdf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ereceipt/internal/models"
)

func TestRender(t *testing.T) {
	r := &models.Receipt{
		ReceiptNumber:   "REC-20240101-ABCDEF1",
		CustomerName:    "Ann",
		CustomerEmail:   "ann@example.com",
		TransactionDate: "2024-01-01",
		Items:           []models.Item{{Name: "Widget", Quantity: 2, Price: 10}},
		Subtotal:        20,
		TaxRate:         10,
		Tax:             2,
		Total:           22,
		Currency:        "EUR",
		PaymentMethod:   "Cash",
		PaymentStatus:   "Paid",
		Notes:           "Delivered to the front desk",
	}

	tests := []struct {
		name  string
		owner *models.User
	}{
		{"without owner", nil},
		{"with branding", &models.User{BusinessName: "Café Olé", BusinessAddress: "1 Main St"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render(r, tt.owner)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
			assert.Contains(t, string(out), "%%EOF")
		})
	}
}
