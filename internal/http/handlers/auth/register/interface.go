package register

import (
	"context"

	"github.com/magabrotheeeer/ereceipt/internal/models"
)

// Service описывает регистрацию пользователя.
type Service interface {
	Register(ctx context.Context, email, password string, profile models.Profile) (*models.User, models.TokenPair, error)
}
