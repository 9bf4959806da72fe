package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/identity"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUserRepository(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	user, err := identity.NewUser("Rafi", "rafi@example.com", "secret123", identity.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, user))

	found, err := repo.FindByUsername(ctx, "  RAFI ")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, identity.RoleAdmin, found.Role)
	assert.True(t, found.Active)
	assert.True(t, found.VerifyPassword("secret123"))

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "rafi", byID.Username)

	exists, err := repo.ExistsByUsername(ctx, "rafi")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, exists)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	other, err := identity.NewUser("nadia", "nadia@shop.test", "secret456", identity.RoleUser)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	all, err := repo.FindAll(ctx, shared.Filter{OrderBy: "username", OrderDir: "asc"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "nadia", all[0].Username)

	matched, err := repo.FindAll(ctx, shared.Filter{Search: "EXAMPLE.com", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "rafi", matched[0].Username)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormUserRepository_SaveRejectsStaleVersion(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	user, err := identity.NewUser("nila", "nila@example.com", "secret123", identity.RoleUser)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, user))

	admin, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	stale, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)

	admin.ToggleActive()
	require.NoError(t, repo.Save(ctx, admin))

	stale.ToggleRole()
	assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, found.Active)
	assert.Equal(t, identity.RoleUser, found.Role)
}

func TestGormLoginAttemptRepository_CountFailuresSince(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormLoginAttemptRepository(db)
	ctx := context.Background()

	old := identity.NewLoginAttempt("10.0.0.1", "rafi", false)
	old.Timestamp = time.Now().Add(-2 * time.Hour)
	require.NoError(t, repo.Save(ctx, old))

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, identity.NewLoginAttempt("10.0.0.1", "rafi", false)))
	}
	require.NoError(t, repo.Save(ctx, identity.NewLoginAttempt("10.0.0.1", "rafi", true)))
	require.NoError(t, repo.Save(ctx, identity.NewLoginAttempt("10.0.0.2", "rafi", false)))

	count, err := repo.CountFailuresSince(ctx, "10.0.0.1", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = repo.CountFailuresSince(ctx, "10.0.0.9", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, count)
}
