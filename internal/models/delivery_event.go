package models

import "time"

// DeliveryEvent records one send attempt for a receipt.
type DeliveryEvent struct {
	ID         int64     `json:"id"`
	ReceiptID  string    `json:"receipt_id"`
	UserID     string    `json:"user_id"`
	Channel    string    `json:"channel"`
	Recipient  string    `json:"recipient"`
	Sent       bool      `json:"sent"`
	Message    string    `json:"message"`
	ProviderID string    `json:"provider_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EmailMessage is a rendered email ready for transport.
type EmailMessage struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}
