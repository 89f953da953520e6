package userservice

import (
	"context"
	"errors"
	"iter"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/cache"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/events"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/token"
	"stockroom/internal/pkg/validation"
)

// UserRepository define o contrato que o Serviço de Usuários espera da camada de Persistência.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Update(ctx context.Context, user domain.User) (domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, filter domain.UserFilter) iter.Seq2[domain.User, error]
}

// TokenService é o contrato da camada de token (internal/pkg/token)
type TokenService interface {
	GenerateToken(userID string, userRole string) (string, *token.CustomClaims, error)
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// UserService define o serviço de lógica de negócio para a entidade User.
type UserService struct {
	UserRepo UserRepository
	TokenSvc TokenService
	Sessions cache.Client
	Events   domain.EventPublisher
	logger   logger.Logger
	hashCost int
	now      func() time.Time
}

// NewService cria uma nova instância do UserService, injetando o Repositório.
func NewService(repo UserRepository, tokenSvc TokenService, sessions cache.Client, publisher domain.EventPublisher, logger logger.Logger) *UserService {
	return &UserService{
		UserRepo: repo,
		TokenSvc: tokenSvc,
		Sessions: sessions,
		Events:   publisher,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Register é o auto-cadastro público: o usuário nasce ACTIVE e sempre STOCKER,
// qualquer que seja o papel pedido. Papéis elevados só via CreateUser.
func (s *UserService) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	if err := validation.Struct(registration); err != nil {
		return domain.User{}, err
	}
	if registration.Role != "" && registration.Role != domain.RoleStocker {
		s.logger.Warn("Papel ignorado no auto-cadastro.", map[string]interface{}{"role": registration.Role})
	}
	registration.Role = domain.RoleStocker
	return s.create(ctx, registration)
}

// CreateUser cadastra um usuário com o papel informado (STOCKER se vazio). Usado pela
// administração de usuários e pelo stockctl. O e-mail é comparado de forma exata;
// um e-mail já cadastrado resulta em DuplicateEmailError.
func (s *UserService) CreateUser(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	if err := validation.Struct(registration); err != nil {
		return domain.User{}, err
	}
	return s.create(ctx, registration)
}

func (s *UserService) create(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), s.hashCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	role := registration.Role
	if role == "" {
		role = domain.RoleStocker
	}

	user, err := s.UserRepo.Save(ctx, domain.User{
		Email:        registration.Email,
		PasswordHash: string(hashedPassword),
		Name:         strings.TrimSpace(registration.Name),
		Role:         role,
		Status:       domain.UserActive,
	})
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Usuário registrado.", map[string]interface{}{"user_id": user.ID, "role": user.Role})
	events.NotifyEntity(ctx, s.Events, domain.EventEntityCreated, "user", user.ID)
	return user, nil
}

// Login autentica um usuário, verifica a senha e gera um JWT. lastLoginAt só é
// alterado quando a autenticação tem sucesso.
func (s *UserService) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	if creds.Email == "" || creds.Password == "" {
		return domain.Session{}, apperror.NewUnauthorizedError("Email e senha são obrigatórios.")
	}

	user, err := s.UserRepo.FindByEmail(ctx, creds.Email)
	if err != nil {
		// NotFound vira 401 para não revelar quais e-mails existem.
		if apperror.IsNotFound(err) {
			return domain.Session{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return domain.Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		s.logger.Info("Senha incorreta no login.", map[string]interface{}{"user_id": user.ID})
		return domain.Session{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}
	if user.Status != domain.UserActive {
		return domain.Session{}, apperror.NewUnauthorizedError("Usuário inativo.")
	}

	tokenString, claims, err := s.TokenSvc.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return domain.Session{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	if err := s.UserRepo.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		return domain.Session{}, err
	}

	s.logger.Info("Login realizado.", map[string]interface{}{"user_id": user.ID})
	return domain.Session{
		Token:     tokenString,
		UserID:    user.ID,
		Name:      user.Name,
		Role:      user.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Authenticate valida o token de sessão e recusa sessões encerradas por logout ou de
// usuários removidos ou inativados. O papel devolvido é o atual, não o do token.
func (s *UserService) Authenticate(ctx context.Context, tokenString string) (*token.CustomClaims, error) {
	claims, err := s.TokenSvc.ValidateToken(tokenString)
	if err != nil {
		return nil, apperror.NewUnauthorizedError("Token inválido ou expirado.")
	}

	_, err = s.Sessions.Get(ctx, cache.RevokedSessionKey(claims.ID))
	switch {
	case err == nil:
		return nil, apperror.NewUnauthorizedError("Sessão encerrada.")
	case !errors.Is(err, cache.ErrCacheMiss):
		s.logger.Warn("Falha ao consultar sessões revogadas.", map[string]interface{}{"error": err.Error()})
		return nil, apperror.NewInternalError("Falha ao verificar a sessão.", err)
	}

	user, err := s.UserRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorizedError("Usuário da sessão não existe mais.")
		}
		return nil, err
	}
	if user.Status != domain.UserActive {
		return nil, apperror.NewUnauthorizedError("Usuário inativo.")
	}
	claims.Role = string(user.Role)
	return claims, nil
}

// Logout encerra a sessão: o identificador do token fica revogado até a sua expiração.
func (s *UserService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.Authenticate(ctx, tokenString)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.Sessions.Set(ctx, cache.RevokedSessionKey(claims.ID), "1", ttl); err != nil {
		return apperror.NewInternalError("Falha ao encerrar a sessão.", err)
	}

	s.logger.Info("Logout realizado.", map[string]interface{}{"user_id": claims.UserID})
	return nil
}

// ChangePassword troca a senha após conferir a senha atual.
func (s *UserService) ChangePassword(ctx context.Context, userID string, change domain.PasswordChange) error {
	if err := validation.Struct(change); err != nil {
		return err
	}

	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(change.CurrentPassword)); err != nil {
		return apperror.NewUnauthorizedError("Senha atual incorreta.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(change.NewPassword), s.hashCost)
	if err != nil {
		return apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}
	return s.UserRepo.UpdatePassword(ctx, userID, string(hashed))
}

// Get busca um usuário pelo ID.
func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	if err := validation.ID(id, "usuário"); err != nil {
		return domain.User{}, err
	}
	return s.UserRepo.FindByID(ctx, id)
}

// List devolve os usuários do filtro.
func (s *UserService) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	return database.Collect(s.UserRepo.Query(ctx, filter))
}

// Update altera nome, papel ou situação de um usuário.
func (s *UserService) Update(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error) {
	if err := validation.ID(id, "usuário"); err != nil {
		return domain.User{}, err
	}
	if err := validation.Struct(patch); err != nil {
		return domain.User{}, err
	}

	user, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	patch.Apply(&user)
	updated, err := s.UserRepo.Update(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	events.NotifyEntity(ctx, s.Events, domain.EventEntityUpdated, "user", id)
	return updated, nil
}

// Delete remove um usuário.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := validation.ID(id, "usuário"); err != nil {
		return err
	}
	if err := s.UserRepo.Delete(ctx, id); err != nil {
		return err
	}
	events.NotifyEntity(ctx, s.Events, domain.EventEntityDeleted, "user", id)
	return nil
}
