// Package phone приводит номера телефонов к формату E.164 перед отправкой SMS.
package phone

import (
	"errors"
	"strings"
)

// ErrInvalid is returned for numbers that cannot be turned into E.164.
var ErrInvalid = errors.New("invalid phone number format")

const (
	minDigits = 10
	maxDigits = 15
)

// Normalize strips everything except digits and a leading '+', then adds
// countryCode to bare 10-digit numbers. Numbers with fewer than 10 digits are rejected.
func Normalize(raw, countryCode string) (string, error) {
	raw = strings.TrimSpace(raw)
	hasPlus := strings.HasPrefix(raw, "+")

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if len(digits) < minDigits || len(digits) > maxDigits {
		return "", ErrInvalid
	}
	if hasPlus {
		return "+" + digits, nil
	}

	if len(digits) == minDigits {
		return "+" + strings.TrimPrefix(countryCode, "+") + digits, nil
	}
	return "+" + digits, nil
}
