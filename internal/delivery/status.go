// Package delivery описывает статус доставки чека.
//
// Статус не хранится независимо: он всегда выводится из двух флагов
// email_sent и sms_sent. Derive задаёт это правило в Go, StatusExpr
// воспроизводит его в SQL, чтобы хранилище пересчитывало статус
// в том же UPDATE, что и флаг.
package delivery

import "fmt"

// Status is the aggregate delivery state of a receipt.
type Status string

const (
	StatusCreated   Status = "created"
	StatusEmailSent Status = "email_sent"
	StatusSMSSent   Status = "sms_sent"
	StatusBothSent  Status = "both_sent"
)

// Channel is a delivery channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Derive maps the two sent flags to a status.
func Derive(emailSent, smsSent bool) Status {
	switch {
	case emailSent && smsSent:
		return StatusBothSent
	case emailSent:
		return StatusEmailSent
	case smsSent:
		return StatusSMSSent
	default:
		return StatusCreated
	}
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusEmailSent, StatusSMSSent, StatusBothSent:
		return true
	}
	return false
}

// EmailSent reports whether the status implies a delivered email.
func (s Status) EmailSent() bool {
	return s == StatusEmailSent || s == StatusBothSent
}

// SMSSent reports whether the status implies a delivered SMS.
func (s Status) SMSSent() bool {
	return s == StatusSMSSent || s == StatusBothSent
}

// Apply returns the status after ch has been marked sent.
// Marks never regress a status and both_sent absorbs every further mark.
func Apply(s Status, ch Channel) Status {
	email, sms := s.EmailSent(), s.SMSSent()
	switch ch {
	case ChannelEmail:
		email = true
	case ChannelSMS:
		sms = true
	}
	return Derive(email, sms)
}

// StatusExpr renders Derive as a SQL CASE over two boolean expressions.
func StatusExpr(emailExpr, smsExpr string) string {
	return fmt.Sprintf(
		"CASE WHEN (%[1]s) AND (%[2]s) THEN '%[3]s' WHEN (%[1]s) THEN '%[4]s' WHEN (%[2]s) THEN '%[5]s' ELSE '%[6]s' END",
		emailExpr, smsExpr,
		Derive(true, true), Derive(true, false), Derive(false, true), Derive(false, false),
	)
}
