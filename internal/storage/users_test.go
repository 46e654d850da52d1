package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ereceipt/internal/models"
)

func TestStorage_Users(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		u := createTestUser(t, s)
		assert.NotEmpty(t, u.ID)
		assert.True(t, u.IsActive)
		assert.False(t, u.EmailVerified)
		assert.Equal(t, models.DefaultSettings(), u.Settings)

		byID, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, byID.Email)

		byEmail, err := s.GetUserByEmail(ctx, strings.ToUpper(u.Email))
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		u := createTestUser(t, s)
		_, err := s.CreateUser(ctx, models.User{Email: u.Email, PasswordHash: "x", Settings: models.DefaultSettings()})
		assert.ErrorIs(t, err, models.ErrDuplicateEmail)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.GetUserByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, models.ErrNotFound)

		_, err = s.GetUserByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, models.ErrNotFound)

		_, err = s.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("update profile changes only given fields", func(t *testing.T) {
		u := createTestUser(t, s)

		updated, err := s.UpdateProfile(ctx, u.ID, models.ProfilePatch{
			Phone:    ptr("+15550001111"),
			Settings: &models.SettingsPatch{Currency: ptr("EUR")},
		})
		require.NoError(t, err)
		assert.Equal(t, "+15550001111", updated.Phone)
		assert.Equal(t, "EUR", updated.Settings.Currency)
		assert.Equal(t, u.BusinessName, updated.BusinessName)
		assert.Equal(t, u.Settings.DefaultTaxRate, updated.Settings.DefaultTaxRate)
		assert.Equal(t, u.PasswordHash, updated.PasswordHash)
		assert.True(t, !updated.UpdatedAt.Before(u.UpdatedAt))

		_, err = s.UpdateProfile(ctx, uuid.NewString(), models.ProfilePatch{Phone: ptr("1")})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("password and deactivate", func(t *testing.T) {
		u := createTestUser(t, s)

		require.NoError(t, s.UpdatePassword(ctx, u.ID, "new-hash"))
		require.NoError(t, s.Deactivate(ctx, u.ID))

		got, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", got.PasswordHash)
		assert.False(t, got.IsActive)

		assert.ErrorIs(t, s.Deactivate(ctx, uuid.NewString()), models.ErrNotFound)
	})
}
