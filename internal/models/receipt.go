package models

import (
	"math"
	"time"

	"github.com/magabrotheeeer/ereceipt/internal/delivery"
)

// Receipt defaults applied on creation.
const (
	DefaultPaymentMethod = "Cash"
	DefaultPaymentStatus = "Paid"
	DateLayout           = "2006-01-02"
)

// Item is a single receipt line.
type Item struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
}

// Amount returns quantity × unit price.
func (i Item) Amount() float64 {
	return i.Quantity * i.Price
}

// Receipt is a persisted receipt owned by exactly one user.
type Receipt struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	ReceiptNumber   string          `json:"receipt_number"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone"`
	TransactionDate string          `json:"transaction_date"`
	Items           []Item          `json:"items"`
	Subtotal        float64         `json:"subtotal"`
	TaxRate         float64         `json:"tax_rate"`
	Tax             float64         `json:"tax"`
	Total           float64         `json:"total"`
	Currency        string          `json:"currency"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentStatus   string          `json:"payment_status"`
	Notes           string          `json:"notes"`
	EmailSent       bool            `json:"email_sent"`
	EmailSentAt     *time.Time      `json:"email_sent_at"`
	SMSSent         bool            `json:"sms_sent"`
	SMSSentAt       *time.Time      `json:"sms_sent_at"`
	Status          delivery.Status `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ReceiptInput is the payload accepted when creating a receipt.
// Money fields are pointers so that a missing value can be told apart from zero.
type ReceiptInput struct {
	ReceiptNumber   string   `json:"receipt_number" validate:"omitempty,max=20"`
	CustomerName    string   `json:"customer_name"`
	CustomerEmail   string   `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone   string   `json:"customer_phone"`
	TransactionDate string   `json:"transaction_date" validate:"omitempty,datetime=2006-01-02"`
	Items           []Item   `json:"items"`
	Subtotal        *float64 `json:"subtotal"`
	TaxRate         *float64 `json:"tax_rate"`
	Tax             *float64 `json:"tax"`
	Total           *float64 `json:"total"`
	Currency        string   `json:"currency" validate:"omitempty,len=3"`
	PaymentMethod   string   `json:"payment_method"`
	PaymentStatus   string   `json:"payment_status"`
	Notes           string   `json:"notes"`
}

// ReceiptPatch lists the business fields an owner may change. Nil means "leave unchanged".
type ReceiptPatch struct {
	CustomerName    *string  `json:"customer_name"`
	CustomerEmail   *string  `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone   *string  `json:"customer_phone"`
	TransactionDate *string  `json:"transaction_date" validate:"omitempty,datetime=2006-01-02"`
	Items           *[]Item  `json:"items"`
	Subtotal        *float64 `json:"subtotal"`
	TaxRate         *float64 `json:"tax_rate"`
	Tax             *float64 `json:"tax"`
	Total           *float64 `json:"total"`
	PaymentMethod   *string  `json:"payment_method"`
	PaymentStatus   *string  `json:"payment_status"`
	Notes           *string  `json:"notes"`
}

// ReceiptFilter selects a page of an owner's receipts.
type ReceiptFilter struct {
	UserID  string
	Page    int
	PerPage int
	Search  string
	Status  delivery.Status
}

// Offset returns the number of rows to skip for the filter's page.
// Pages past the addressable range saturate at math.MaxInt.
func (f ReceiptFilter) Offset() int {
	if f.Page < 1 || f.PerPage < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PerPage {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PerPage
}

// ReceiptPage is one page of a filtered listing.
type ReceiptPage struct {
	Receipts []Receipt
	Total    int
}

// ReceiptStats aggregates all receipts of one owner.
type ReceiptStats struct {
	TotalReceipts int     `json:"total_receipts"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalTax      float64 `json:"total_tax"`
	EmailsSent    int     `json:"emails_sent"`
	SMSSent       int     `json:"sms_sent"`
}
