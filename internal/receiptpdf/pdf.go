// Package receiptpdf рендерит чек в PDF (A4) через gofpdf.
package receiptpdf

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/magabrotheeeer/ereceipt/internal/lib/money"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

const fallbackName = "eReceipt"

// Render returns the PDF document of r branded with owner. owner may be nil.
func Render(r *models.Receipt, owner *models.User) ([]byte, error) {
	const op = "receiptpdf.Render"

	name, address, footer := fallbackName, "", models.DefaultFooterMessage
	if owner != nil {
		if owner.BusinessName != "" {
			name = owner.BusinessName
		}
		address = owner.BusinessAddress
		if owner.Settings.ReceiptFooterMessage != "" {
			footer = owner.Settings.ReceiptFooterMessage
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Receipt "+r.ReceiptNumber, true)
	pdf.SetAuthor(name, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, tr(name), "", 1, "C", false, 0, "")
	if address != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(address), "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, tr("Receipt Number: "+r.ReceiptNumber), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr("Date: "+r.TransactionDate), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 7, tr("Bill To: "+r.CustomerName), "", 1, "L", false, 0, "")
	if r.CustomerEmail != "" {
		pdf.CellFormat(0, 7, tr(r.CustomerEmail), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	widths := []float64{90, 25, 35, 40}
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range []string{"Item", "Qty", "Price", "Amount"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, h, "B", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 11)
	for _, it := range r.Items {
		pdf.CellFormat(widths[0], 7, tr(it.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, strconv.FormatFloat(it.Quantity, 'f', -1, 64), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, tr(money.Format(it.Price, r.Currency)), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, tr(money.Format(it.Amount(), r.Currency)), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	totals := []struct {
		label string
		value float64
	}{
		{"Subtotal", r.Subtotal},
		{"Tax (" + strconv.FormatFloat(r.TaxRate, 'f', -1, 64) + "%)", r.Tax},
		{"Total", r.Total},
	}
	for i, t := range totals {
		if i == len(totals)-1 {
			pdf.SetFont("Arial", "B", 12)
		}
		pdf.CellFormat(150, 7, tr(t.label+":"), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, tr(money.Format(t.value, r.Currency)), "", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr("Payment: "+r.PaymentMethod+" ("+r.PaymentStatus+")"), "", 1, "L", false, 0, "")
	if r.Notes != "" {
		pdf.MultiCell(0, 6, tr(r.Notes), "", "L", false)
	}
	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(0, 6, tr(footer), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}
