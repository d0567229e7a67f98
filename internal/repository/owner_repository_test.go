package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khatapp/udhaar/internal/model"
)

func TestOwnerRepository(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewOwnerRepository(db)
	ctx := context.Background()

	t.Run("create and fetch", func(t *testing.T) {
		created, err := repo.Create(ctx, &model.Owner{
			ID:      "owner-1",
			Name:    "Shop One",
			Phone:   "8000000001",
			PinHash: "hash",
		})
		require.NoError(t, err)
		assert.Equal(t, "owner-1", created.ID)

		byPhone, err := repo.GetByPhone(ctx, "8000000001")
		require.NoError(t, err)
		assert.Equal(t, "Shop One", byPhone.Name)
	})

	t.Run("duplicate phone", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.Owner{
			ID:      "owner-2",
			Name:    "Shop Two",
			Phone:   "8000000001",
			PinHash: "hash",
		})
		assert.ErrorIs(t, err, ErrOwnerPhoneExists)
	})

	t.Run("update pin", func(t *testing.T) {
		require.NoError(t, repo.UpdatePin(ctx, "owner-1", "new-hash"))

		got, err := repo.GetByID(ctx, "owner-1")
		require.NoError(t, err)
		assert.Equal(t, "new-hash", got.PinHash)

		err = repo.UpdatePin(ctx, "no-such", "x")
		assert.ErrorIs(t, err, ErrOwnerNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrOwnerNotFound)
		_, err = repo.GetByPhone(ctx, "0000000000")
		assert.ErrorIs(t, err, ErrOwnerNotFound)
	})
}
