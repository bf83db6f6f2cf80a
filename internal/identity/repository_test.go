package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/infra/infratest"
)

func TestPostgresRepository(t *testing.T) {
	repo := NewPostgresRepository(infratest.MigratedPool(t))
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	location := "Nellore"
	user := User{
		ID:           uuid.NewString(),
		Name:         "Lakshmi",
		Email:        "lakshmi@x.com",
		PasswordHash: "hash",
		Phone:        "+91 90000 00000",
		FarmLocation: &location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.Create(ctx, user))

	dup := user
	dup.ID = uuid.NewString()
	require.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicateEmail)

	byEmail, err := repo.FindByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)
	require.Equal(t, location, *byEmail.FarmLocation)
	require.Nil(t, byEmail.FarmSize)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, byID.Email)

	_, err = repo.FindByID(ctx, "not-a-uuid")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = repo.FindByEmail(ctx, "missing@x.com")
	require.ErrorIs(t, err, ErrNotFound)

	size := 2.0
	byID.FarmSize = &size
	byID.Name = "Lakshmi Devi"
	byID.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, repo.UpdateProfile(ctx, byID))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "Lakshmi Devi", reloaded.Name)
	require.Equal(t, size, *reloaded.FarmSize)

	missing := byID
	missing.ID = uuid.NewString()
	require.ErrorIs(t, repo.UpdateProfile(ctx, missing), ErrNotFound)
}
