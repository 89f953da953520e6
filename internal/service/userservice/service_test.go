package userservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/cache"
	"stockroom/internal/pkg/database/databasetest"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/token"
	"stockroom/internal/repository/userrepo"
	"stockroom/internal/service/userservice"
)

type recordingPublisher struct {
	events []domain.Event
}

func (p *recordingPublisher) Publish(evt domain.Event) { p.events = append(p.events, evt) }

func newTestService(t *testing.T) (*userservice.UserService, *sqlx.DB) {
	svc, db, _ := newObservedService(t)
	return svc, db
}

func newObservedService(t *testing.T) (*userservice.UserService, *sqlx.DB, *recordingPublisher) {
	t.Helper()

	db := databasetest.NewDB(t)
	log := logger.NewLogger("error")
	repo := userrepo.NewUserRepository(db, 5*time.Second, log)
	pub := &recordingPublisher{}
	svc := userservice.NewService(repo, token.NewService("segredo-de-teste", time.Hour), cache.NewMemoryClient(), pub, log)
	return svc, db, pub
}

func register(t *testing.T, svc *userservice.UserService, email, password, name string) domain.User {
	t.Helper()

	user, err := svc.Register(context.Background(), domain.UserRegistration{Email: email, Password: password, Name: name})
	require.NoError(t, err)
	return user
}

func TestRegister_HashesPasswordAndDefaults(t *testing.T) {
	svc, db := newTestService(t)

	user := register(t, svc, "a@x.com", "pw", "Alice")

	assert.Equal(t, domain.RoleStocker, user.Role)
	assert.Equal(t, domain.UserActive, user.Status)
	assert.Nil(t, user.LastLoginAt)

	var stored string
	require.NoError(t, db.Get(&stored, db.Rebind(`SELECT password_hash FROM users WHERE id = ?`), user.ID))
	assert.NotEqual(t, "pw", stored)
	assert.Contains(t, stored, "$2a$")
}

func TestRegister_DuplicateEmailFails(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	first := register(t, svc, "a@x.com", "pw", "Alice")

	_, err := svc.Register(ctx, domain.UserRegistration{Email: "a@x.com", Password: "pw2", Name: "Bob"})

	require.Error(t, err)
	assert.IsType(t, &apperror.DuplicateEmailError{}, err)

	stored, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.Name)

	session, err := svc.Login(ctx, domain.Credentials{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, session.UserID)
}

func TestRegister_EmailMatchIsCaseSensitive(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "a@x.com", "pw", "Alice")

	_, err := svc.Register(context.Background(), domain.UserRegistration{Email: "A@x.com", Password: "pw", Name: "Outra"})

	assert.NoError(t, err)
}

func TestRegister_Fail_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), domain.UserRegistration{Email: "nao-e-email", Password: "pw", Name: "X", Role: "ADMIN"})

	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "email deve ser um email válido")
	assert.Contains(t, err.Error(), "role deve ser um de")
}

func TestLogin_WrongPasswordDoesNotTouchLastLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user := register(t, svc, "a@x.com", "pw", "Alice")

	_, err := svc.Login(ctx, domain.Credentials{Email: "a@x.com", Password: "errada"})

	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	stored, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastLoginAt)
}

func TestLogin_UnknownEmailIsUnauthorized(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), domain.Credentials{Email: "ninguem@x.com", Password: "pw"})

	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	assert.Contains(t, err.Error(), "Credenciais inválidas")
}

func TestLogin_SuccessSetsLastLoginAndReturnsSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user := register(t, svc, "a@x.com", "pw", "Alice")
	before := time.Now().UTC().Add(-time.Second)

	session, err := svc.Login(ctx, domain.Credentials{Email: "a@x.com", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, domain.RoleStocker, session.Role)
	assert.Equal(t, "Alice", session.Name)
	assert.NotEmpty(t, session.Token)

	stored, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
	assert.True(t, stored.LastLoginAt.After(before))
}

func TestLogin_InactiveUserIsRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user := register(t, svc, "a@x.com", "pw", "Alice")
	inactive := domain.UserInactive
	_, err := svc.Update(ctx, user.ID, domain.UserPatch{Status: &inactive})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.Credentials{Email: "a@x.com", Password: "pw"})

	assert.IsType(t, &apperror.UnauthorizedError{}, err)
}

func TestLogout_RevokesSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc, "a@x.com", "pw", "Alice")
	session, err := svc.Login(ctx, domain.Credentials{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	claims, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, claims.UserID)

	require.NoError(t, svc.Logout(ctx, session.Token))

	_, err = svc.Authenticate(ctx, session.Token)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	assert.Error(t, svc.Logout(ctx, session.Token))
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user := register(t, svc, "a@x.com", "pw", "Alice")

	err := svc.ChangePassword(ctx, user.ID, domain.PasswordChange{CurrentPassword: "errada", NewPassword: "nova"})
	assert.IsType(t, &apperror.UnauthorizedError{}, err)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, domain.PasswordChange{CurrentPassword: "pw", NewPassword: "nova"}))

	_, err = svc.Login(ctx, domain.Credentials{Email: "a@x.com", Password: "pw"})
	assert.Error(t, err)
	_, err = svc.Login(ctx, domain.Credentials{Email: "a@x.com", Password: "nova"})
	assert.NoError(t, err)
}

func TestRegister_IgnoresRequestedRole(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Register(context.Background(), domain.UserRegistration{
		Email: "a@x.com", Password: "pw", Name: "Alice", Role: domain.RoleStockManager,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleStocker, user.Role)
}

func TestCreateUser_KeepsRole(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.CreateUser(context.Background(), domain.UserRegistration{
		Email: "gerente@x.com", Password: "pw", Name: "Gerente", Role: domain.RolePurchasingManager,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RolePurchasingManager, user.Role)
}

func TestAuthenticate_RejectsDeactivatedUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user := register(t, svc, "a@x.com", "pw", "Alice")
	session, err := svc.Login(ctx, domain.Credentials{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	inactive := domain.UserInactive
	_, err = svc.Update(ctx, user.ID, domain.UserPatch{Status: &inactive})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, session.Token)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
}

func TestAuthenticate_UsesCurrentRoleAndRejectsDeletedUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user := register(t, svc, "a@x.com", "pw", "Alice")
	session, err := svc.Login(ctx, domain.Credentials{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	manager := domain.RoleStockManager
	_, err = svc.Update(ctx, user.ID, domain.UserPatch{Role: &manager})
	require.NoError(t, err)

	claims, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleStockManager), claims.Role)

	require.NoError(t, svc.Delete(ctx, user.ID))
	_, err = svc.Authenticate(ctx, session.Token)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
}

func TestUserWrites_PublishEntityEvents(t *testing.T) {
	svc, _, pub := newObservedService(t)
	ctx := context.Background()
	user := register(t, svc, "a@x.com", "pw", "Alice")
	name := "Alice Souza"
	_, err := svc.Update(ctx, user.ID, domain.UserPatch{Name: &name})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, user.ID))

	require.Len(t, pub.events, 3)
	assert.Equal(t, domain.EventEntityCreated, pub.events[0].Type)
	assert.Equal(t, domain.EventEntityUpdated, pub.events[1].Type)
	assert.Equal(t, domain.EventEntityDeleted, pub.events[2].Type)
	for _, evt := range pub.events {
		assert.Equal(t, "user", evt.Entity)
		assert.Equal(t, user.ID, evt.EntityID)
	}
}
