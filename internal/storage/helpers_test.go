package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/ereceipt/internal/migrations"
	"github.com/magabrotheeeer/ereceipt/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	return storage
}

// createTestUser сохраняет пользователя с уникальным email.
func createTestUser(t *testing.T, s *Storage) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), models.User{
		Email:        fmt.Sprintf("owner-%s@example.com", uuid.NewString()[:8]),
		PasswordHash: "hash",
		BusinessName: "Corner Shop",
		Settings:     models.DefaultSettings(),
		IsActive:     true,
	})
	require.NoError(t, err)
	return u
}

func ptr[T any](v T) *T {
	return &v
}

func testReceipt(ownerID, number, customer, email string) models.Receipt {
	return models.Receipt{
		UserID:          ownerID,
		ReceiptNumber:   number,
		CustomerName:    customer,
		CustomerEmail:   email,
		TransactionDate: "2025-01-15",
		Items:           []models.Item{{Name: "Widget", Quantity: 2, Price: 10}},
		Subtotal:        20,
		TaxRate:         10,
		Tax:             2,
		Total:           22,
		Currency:        "USD",
		PaymentMethod:   models.DefaultPaymentMethod,
		PaymentStatus:   models.DefaultPaymentStatus,
	}
}

// createTestReceipt сохраняет чек и выставляет ему created_at.
func createTestReceipt(t *testing.T, s *Storage, r models.Receipt, createdAt time.Time) *models.Receipt {
	t.Helper()
	created, err := s.CreateReceipt(context.Background(), r)
	require.NoError(t, err)
	_, err = s.DB.Exec(`UPDATE receipts SET created_at = $2 WHERE id = $1`, created.ID, createdAt)
	require.NoError(t, err)
	created.CreatedAt = createdAt
	return created
}
