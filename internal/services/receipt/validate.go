package services

import (
	"strings"

	"github.com/magabrotheeeer/ereceipt/internal/models"
)

func validateInput(in models.ReceiptInput) error {
	switch {
	case strings.TrimSpace(in.CustomerName) == "":
		return missing("customer_name")
	case len(in.Items) == 0:
		return missing("items")
	case in.Subtotal == nil:
		return missing("subtotal")
	case in.Tax == nil:
		return missing("tax")
	case in.Total == nil:
		return missing("total")
	}
	return validateItems(in.Items)
}

// validateItems reports the first bad item using its 1-based position.
func validateItems(items []models.Item) error {
	if len(items) == 0 {
		return missing("items")
	}
	for i, item := range items {
		n := i + 1
		if strings.TrimSpace(item.Name) == "" {
			return models.NewValidationError("items", "Item %d is missing name", n)
		}
		if item.Quantity <= 0 {
			return models.NewValidationError("items", "Item %d has invalid quantity", n)
		}
		if item.Price < 0 {
			return models.NewValidationError("items", "Item %d has invalid price", n)
		}
	}
	return nil
}

func missing(field string) error {
	return models.NewValidationError(field, "Missing required field: %s", field)
}
