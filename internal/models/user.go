// Package models содержит доменные типы сервиса: пользователей, чеки,
// события доставки и ошибки, которые разделяют хранилище, сервисы и HTTP-слой.
package models

import "time"

// Default settings applied to newly registered accounts.
const (
	DefaultTaxRate       = 10.0
	DefaultCurrency      = "USD"
	DefaultFooterMessage = "Thank you for your purchase!"
)

// User is a registered business account.
type User struct {
	ID              string       `json:"id"`
	Email           string       `json:"email"`
	PasswordHash    string       `json:"-"`
	BusinessName    string       `json:"business_name"`
	Phone           string       `json:"phone"`
	BusinessAddress string       `json:"business_address"`
	BusinessLogo    string       `json:"business_logo"`
	Settings        UserSettings `json:"settings"`
	IsActive        bool         `json:"is_active"`
	EmailVerified   bool         `json:"email_verified"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// UserSettings holds per-account receipt defaults.
type UserSettings struct {
	DefaultTaxRate       float64 `json:"default_tax_rate"`
	Currency             string  `json:"currency"`
	ReceiptFooterMessage string  `json:"receipt_footer_message"`
}

// DefaultSettings returns the settings a new account starts with.
func DefaultSettings() UserSettings {
	return UserSettings{
		DefaultTaxRate:       DefaultTaxRate,
		Currency:             DefaultCurrency,
		ReceiptFooterMessage: DefaultFooterMessage,
	}
}

// Profile carries the business fields supplied at registration.
type Profile struct {
	BusinessName    string `json:"business_name"`
	Phone           string `json:"phone"`
	BusinessAddress string `json:"business_address"`
	BusinessLogo    string `json:"business_logo"`
}

// ProfilePatch lists the mutable profile fields. Nil means "leave unchanged".
type ProfilePatch struct {
	BusinessName    *string        `json:"business_name"`
	Phone           *string        `json:"phone"`
	BusinessAddress *string        `json:"business_address"`
	BusinessLogo    *string        `json:"business_logo"`
	Settings        *SettingsPatch `json:"settings"`
}

// SettingsPatch lists the mutable settings fields.
type SettingsPatch struct {
	DefaultTaxRate       *float64 `json:"default_tax_rate"`
	Currency             *string  `json:"currency"`
	ReceiptFooterMessage *string  `json:"receipt_footer_message"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.BusinessName == nil && p.Phone == nil && p.BusinessAddress == nil &&
		p.BusinessLogo == nil && (p.Settings == nil || p.Settings.empty())
}

func (s *SettingsPatch) empty() bool {
	return s.DefaultTaxRate == nil && s.Currency == nil && s.ReceiptFooterMessage == nil
}

// TokenPair is returned on register and login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
