package services

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strconv"
	"strings"
	texttemplate "text/template"
	"unicode/utf8"

	"github.com/magabrotheeeer/ereceipt/internal/lib/money"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

// SMSLimit is the length budget of a single SMS body in characters.
const SMSLimit = 160

const ellipsis = "..."

// Branding is the owner data printed on a receipt.
type Branding struct {
	BusinessName    string
	BusinessAddress string
	Footer          string
}

// BrandingFor builds the branding of owner. A nil owner gets the fallback name.
func BrandingFor(owner *models.User, fallbackName string) Branding {
	b := Branding{BusinessName: fallbackName, Footer: models.DefaultFooterMessage}
	if owner == nil {
		return b
	}
	if name := strings.TrimSpace(owner.BusinessName); name != "" {
		b.BusinessName = name
	}
	b.BusinessAddress = owner.BusinessAddress
	if footer := strings.TrimSpace(owner.Settings.ReceiptFooterMessage); footer != "" {
		b.Footer = footer
	}
	return b
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type itemView struct {
	Name        string
	Description string
	Quantity    string
	Price       string
	Amount      string
}

type receiptView struct {
	Branding
	Number        string
	Date          string
	CustomerName  string
	CustomerEmail string
	Items         []itemView
	Subtotal      string
	TaxRate       string
	Tax           string
	Total         string
	PaymentMethod string
	Notes         string
}

func newReceiptView(r *models.Receipt, b Branding) receiptView {
	v := receiptView{
		Branding:      b,
		Number:        r.ReceiptNumber,
		Date:          r.TransactionDate,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		Subtotal:      money.Format(r.Subtotal, r.Currency),
		TaxRate:       formatNumber(r.TaxRate),
		Tax:           money.Format(r.Tax, r.Currency),
		Total:         money.Format(r.Total, r.Currency),
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
	}
	for _, it := range r.Items {
		v.Items = append(v.Items, itemView{
			Name:        it.Name,
			Description: it.Description,
			Quantity:    formatNumber(it.Quantity),
			Price:       money.Format(it.Price, r.Currency),
			Amount:      money.Format(it.Amount(), r.Currency),
		})
	}
	return v
}

var emailHTML = htmltemplate.Must(htmltemplate.New("receipt.html").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="margin:0;padding:0;font-family:-apple-system,'Segoe UI',Roboto,sans-serif;background-color:#f3f4f6;">
<div style="max-width:600px;margin:0 auto;padding:20px;">
  <div style="background:#059669;color:#fff;padding:30px;border-radius:12px 12px 0 0;text-align:center;">
    <h1 style="margin:0;font-size:28px;">{{.BusinessName}}</h1>
    {{if .BusinessAddress}}<p style="margin:8px 0 0;opacity:0.9;">{{.BusinessAddress}}</p>{{end}}
    <p style="margin:8px 0 0;opacity:0.9;">Digital Receipt</p>
  </div>
  <div style="background:#fff;padding:30px;border-radius:0 0 12px 12px;">
    <p style="margin:0;color:#6b7280;font-size:12px;">RECEIPT NUMBER</p>
    <p style="margin:4px 0 16px;font-size:18px;font-weight:700;color:#059669;">{{.Number}}</p>
    <p style="margin:0;color:#6b7280;font-size:12px;">DATE</p>
    <p style="margin:4px 0 16px;font-size:16px;">{{.Date}}</p>
    <p style="margin:0;color:#6b7280;font-size:12px;">BILL TO</p>
    <p style="margin:4px 0 0;font-size:16px;font-weight:600;">{{.CustomerName}}</p>
    {{if .CustomerEmail}}<p style="margin:2px 0 24px;color:#6b7280;">{{.CustomerEmail}}</p>{{end}}
    <table style="width:100%;border-collapse:collapse;margin-bottom:24px;">
      <thead>
        <tr style="background-color:#f9fafb;">
          <th style="padding:12px;text-align:left;">Item</th>
          <th style="padding:12px;text-align:center;">Qty</th>
          <th style="padding:12px;text-align:right;">Price</th>
          <th style="padding:12px;text-align:right;">Amount</th>
        </tr>
      </thead>
      <tbody>
      {{range .Items}}
        <tr>
          <td style="padding:12px;border-bottom:1px solid #e5e7eb;">{{.Name}}{{if .Description}}<br><span style="color:#6b7280;font-size:12px;">{{.Description}}</span>{{end}}</td>
          <td style="padding:12px;border-bottom:1px solid #e5e7eb;text-align:center;">{{.Quantity}}</td>
          <td style="padding:12px;border-bottom:1px solid #e5e7eb;text-align:right;">{{.Price}}</td>
          <td style="padding:12px;border-bottom:1px solid #e5e7eb;text-align:right;font-weight:600;">{{.Amount}}</td>
        </tr>
      {{end}}
      </tbody>
    </table>
    <div style="text-align:right;">
      <p style="margin:0 0 8px;">Subtotal: <strong>{{.Subtotal}}</strong></p>
      <p style="margin:0 0 12px;">Tax ({{.TaxRate}}%): <strong>{{.Tax}}</strong></p>
      <p style="margin:0;font-size:18px;font-weight:700;color:#059669;">Total: {{.Total}}</p>
    </div>
    {{if .Notes}}<p style="margin-top:24px;color:#374151;">{{.Notes}}</p>{{end}}
    <div style="margin-top:32px;padding-top:24px;border-top:1px solid #e5e7eb;text-align:center;">
      <p style="margin:0;color:#6b7280;font-size:14px;">{{.Footer}}</p>
      <p style="margin:8px 0 0;color:#059669;font-size:12px;">This is a paperless digital receipt</p>
    </div>
  </div>
</div>
</body>
</html>
`))

var emailText = texttemplate.Must(texttemplate.New("receipt.txt").Parse(`========================================
{{.BusinessName}} - Digital Receipt
========================================

Receipt Number: {{.Number}}
Date: {{.Date}}

Customer: {{.CustomerName}}
{{- if .CustomerEmail}}
Email: {{.CustomerEmail}}
{{- end}}

----------------------------------------
ITEMS:
{{range .Items}}  - {{.Name}} x{{.Quantity}} @ {{.Price}} = {{.Amount}}
{{end}}----------------------------------------

Subtotal: {{.Subtotal}}
Tax ({{.TaxRate}}%): {{.Tax}}
----------------------------------------
TOTAL: {{.Total}}
----------------------------------------
{{- if .Notes}}

{{.Notes}}
{{- end}}

{{.Footer}}
This is a paperless digital receipt.
========================================
`))

// Subject returns the email subject for a receipt number.
func Subject(number string) string {
	return "Your Receipt - " + number
}

// RenderEmail builds the HTML and plain-text bodies of a receipt email.
func RenderEmail(r *models.Receipt, b Branding) (models.EmailMessage, error) {
	const op = "services.notification.RenderEmail"
	view := newReceiptView(r, b)

	var html, text bytes.Buffer
	if err := emailHTML.Execute(&html, view); err != nil {
		return models.EmailMessage{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := emailText.Execute(&text, view); err != nil {
		return models.EmailMessage{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.EmailMessage{
		Subject:  Subject(r.ReceiptNumber),
		HTMLBody: html.String(),
		TextBody: text.String(),
	}, nil
}

// RenderSMS builds the SMS body, truncated to SMSLimit characters.
func RenderSMS(r *models.Receipt, b Branding) string {
	body := fmt.Sprintf("%s\nReceipt: %s\nTotal: %s\nDate: %s\n\n%s",
		b.BusinessName, r.ReceiptNumber, money.Format(r.Total, r.Currency), r.TransactionDate, b.Footer)
	return truncate(body, SMSLimit)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}
