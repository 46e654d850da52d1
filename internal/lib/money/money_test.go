package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{12.345, "USD", "$12.35"},
		{5, "", "$5.00"},
		{7.1, "eur", "€7.10"},
		{0, "GBP", "£0.00"},
		{1000, "JPY", "JPY 1000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.amount, tt.currency))
		})
	}
}
