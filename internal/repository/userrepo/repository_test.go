package userrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/database/databasetest"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/repository/userrepo"
)

func newRepo(t *testing.T) *userrepo.UserRepository {
	t.Helper()
	return userrepo.NewUserRepository(databasetest.NewDB(t), 5*time.Second, logger.NewLogger("error"))
}

func save(t *testing.T, repo *userrepo.UserRepository, email string, role domain.UserRole) domain.User {
	t.Helper()

	user, err := repo.Save(context.Background(), domain.User{
		Email:        email,
		PasswordHash: "$2a$10$hash",
		Name:         email,
		Role:         role,
		Status:       domain.UserActive,
	})
	require.NoError(t, err)
	return user
}

func TestSave_Fail_DuplicateEmail(t *testing.T) {
	repo := newRepo(t)
	save(t, repo, "a@x.com", domain.RoleStocker)

	_, err := repo.Save(context.Background(), domain.User{Email: "a@x.com", PasswordHash: "h", Name: "B", Role: domain.RoleStocker, Status: domain.UserActive})

	assert.IsType(t, &apperror.DuplicateEmailError{}, err)
}

func TestFindByEmail_ExactMatch(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	saved := save(t, repo, "a@x.com", domain.RoleStocker)

	found, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, found.ID)
	assert.Equal(t, "$2a$10$hash", found.PasswordHash)

	_, err = repo.FindByEmail(ctx, "A@X.COM")
	assert.IsType(t, &apperror.NotFoundError{}, err)
}

func TestUpdateLastLogin(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	saved := save(t, repo, "a@x.com", domain.RoleStocker)
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	require.NoError(t, repo.UpdateLastLogin(ctx, saved.ID, at))

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	assert.True(t, at.Equal(*found.LastLoginAt))

	assert.IsType(t, &apperror.NotFoundError{}, repo.UpdateLastLogin(ctx, uuid.NewString(), at))
}

func TestQuery_ByRole(t *testing.T) {
	repo := newRepo(t)
	save(t, repo, "gerente@x.com", domain.RoleStockManager)
	save(t, repo, "a@x.com", domain.RoleStocker)
	save(t, repo, "b@x.com", domain.RoleStocker)

	managers, err := database.Collect(repo.Query(context.Background(), domain.UserFilter{Role: domain.RoleStockManager}))

	require.NoError(t, err)
	require.Len(t, managers, 1)
	assert.Equal(t, "gerente@x.com", managers[0].Email)
}
