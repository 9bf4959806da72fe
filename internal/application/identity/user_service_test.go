package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/identity"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	adminActor = shared.Actor{UserID: uuid.New(), IsAdmin: true}
	staffActor = shared.Actor{UserID: uuid.New()}
)

func TestUserService_RequiresAdmin(t *testing.T) {
	service := NewUserService(new(MockUserRepository), nil)
	ctx := context.Background()

	_, err := service.ListUsers(ctx, staffActor, ListUsersRequest{})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	_, err = service.CreateUser(ctx, staffActor, CreateUserRequest{Username: "nadia"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	_, err = service.ToggleActive(ctx, staffActor, uuid.New())
	assert.ErrorIs(t, err, shared.ErrForbidden)
	_, err = service.ToggleRole(ctx, staffActor, uuid.New())
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to the user role", func(t *testing.T) {
		repo := new(MockUserRepository)
		service := NewUserService(repo, nil)
		repo.On("ExistsByUsername", ctx, "nadia").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)

		info, err := service.CreateUser(ctx, adminActor, CreateUserRequest{
			Username: "nadia",
			Email:    "Nadia@Shop.test",
			Password: "secret123",
		})

		require.NoError(t, err)
		assert.Equal(t, "user", info.Role)
		assert.Equal(t, "nadia@shop.test", info.Email)
		assert.True(t, info.Active)
	})

	t.Run("duplicate username", func(t *testing.T) {
		repo := new(MockUserRepository)
		service := NewUserService(repo, nil)
		repo.On("ExistsByUsername", ctx, "nadia").Return(true, nil)

		_, err := service.CreateUser(ctx, adminActor, CreateUserRequest{Username: "nadia", Email: "n@shop.test", Password: "secret123"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("weak password is rejected by the domain", func(t *testing.T) {
		repo := new(MockUserRepository)
		service := NewUserService(repo, nil)
		repo.On("ExistsByUsername", ctx, "nadia").Return(false, nil)

		_, err := service.CreateUser(ctx, adminActor, CreateUserRequest{Username: "nadia", Email: "n@shop.test", Password: "password"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PASSWORD", domainErr.Code)
	})
}

func TestUserService_Toggles(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	service := NewUserService(repo, nil)
	user := createTestUser(t, identity.RoleUser)
	repo.On("FindByID", ctx, user.ID).Return(user, nil)
	repo.On("Save", ctx, user).Return(nil)

	info, err := service.ToggleActive(ctx, adminActor, user.ID)
	require.NoError(t, err)
	assert.False(t, info.Active)

	info, err = service.ToggleRole(ctx, adminActor, user.ID)
	require.NoError(t, err)
	assert.True(t, info.IsAdmin)

	t.Run("admins cannot toggle themselves", func(t *testing.T) {
		_, err := service.ToggleActive(ctx, adminActor, adminActor.UserID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_OPERATION", domainErr.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		missing := uuid.New()
		repo.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)
		_, err := service.ToggleRole(ctx, adminActor, missing)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	service := NewUserService(repo, nil)
	user := createTestUser(t, identity.RoleAdmin)
	repo.On("FindAll", ctx, shared.Filter{Search: "rafi", OrderBy: "username"}).Return([]identity.User{*user}, nil)

	users, err := service.ListUsers(ctx, adminActor, ListUsersRequest{Search: "rafi", OrderBy: "username"})

	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "rafi", users[0].Username)
	assert.True(t, users[0].IsAdmin)
}
