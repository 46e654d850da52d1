// Package money formats currency amounts for receipts.
package money

import (
	"fmt"
	"strings"
)

// Format renders amount with two decimals and the currency symbol, falling
// back to the ISO code for currencies without one.
func Format(amount float64, currency string) string {
	switch strings.ToUpper(currency) {
	case "", "USD":
		return fmt.Sprintf("$%.2f", amount)
	case "EUR":
		return fmt.Sprintf("€%.2f", amount)
	case "GBP":
		return fmt.Sprintf("£%.2f", amount)
	default:
		return fmt.Sprintf("%s %.2f", strings.ToUpper(currency), amount)
	}
}
