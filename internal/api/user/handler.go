package user

import (
	"context"
	"net/http"

	"stockroom/internal/api/response"
	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/middleware"
)

// UserService define o contrato que o Handler espera da camada de Serviço.
type UserService interface {
	Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
	CreateUser(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
	Login(ctx context.Context, creds domain.Credentials) (domain.Session, error)
	Logout(ctx context.Context, tokenString string) error
	ChangePassword(ctx context.Context, userID string, change domain.PasswordChange) error
	Get(ctx context.Context, id string) (domain.User, error)
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error)
	Delete(ctx context.Context, id string) error
}

// Handler agrupa os handlers de autenticação e de usuários.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// RegisterUserHandler lida com a requisição POST /v1/auth/register.
// @Summary Registra um novo usuário
// @Description A senha é armazenada apenas como hash bcrypt. O auto-cadastro sempre cria um STOCKER;
// @Description papéis elevados são atribuídos por um STOCK_MANAGER em POST /users.
// @Tags auth
// @Accept json
// @Produce json
// @Param registration body domain.UserRegistration true "Dados de registro"
// @Success 201 {object} domain.User "Usuário criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Email já cadastrado"
// @Router /auth/register [post]
func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var reg domain.UserRegistration
	if err := response.Decode(r, &reg); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	// O PasswordHash não sai no JSON (tag `json:"-"`).
	newUser, err := h.Service.Register(r.Context(), reg)
	response.Handle(h.Logger, w, r, newUser, err, http.StatusCreated)
}

// LoginUserHandler lida com a requisição POST /v1/auth/login.
// @Summary Autentica um usuário e retorna a sessão
// @Tags auth
// @Accept json
// @Produce json
// @Param login body domain.Credentials true "Email e senha"
// @Success 200 {object} domain.Session
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Failure 429 {object} domain.ErrorResponse "Muitas tentativas"
// @Router /auth/login [post]
func (h *Handler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := response.Decode(r, &creds); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	session, err := h.Service.Login(r.Context(), creds)
	response.Handle(h.Logger, w, r, session, err, http.StatusOK)
}

// LogoutHandler lida com POST /v1/auth/logout. O token deixa de ser aceito.
// @Summary Encerra a sessão atual
// @Tags auth
// @Success 204
// @Security ApiKeyAuth
// @Router /auth/logout [post]
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	tokenString, ok := middleware.BearerToken(r)
	if !ok {
		response.Handle(h.Logger, w, r, nil, apperror.NewUnauthorizedError("Token de autorização ausente."), http.StatusNoContent)
		return
	}

	err := h.Service.Logout(r.Context(), tokenString)
	response.Handle(h.Logger, w, r, nil, err, http.StatusNoContent)
}

// MeHandler lida com GET /v1/auth/me.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		response.Handle(h.Logger, w, r, nil, apperror.NewUnauthorizedError("Sessão ausente."), http.StatusOK)
		return
	}

	user, err := h.Service.Get(r.Context(), claims.UserID)
	response.Handle(h.Logger, w, r, user, err, http.StatusOK)
}

// ChangePasswordHandler lida com PUT /v1/auth/password para o usuário da sessão.
func (h *Handler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		response.Handle(h.Logger, w, r, nil, apperror.NewUnauthorizedError("Sessão ausente."), http.StatusOK)
		return
	}

	var change domain.PasswordChange
	if err := response.Decode(r, &change); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	err := h.Service.ChangePassword(r.Context(), claims.UserID, change)
	response.Handle(h.Logger, w, r, nil, err, http.StatusNoContent)
}

// CreateUserHandler lida com POST /v1/users: cadastro administrativo com papel.
// @Summary Cadastra um usuário com papel
// @Tags users
// @Accept json
// @Produce json
// @Param registration body domain.UserRegistration true "Dados do usuário"
// @Success 201 {object} domain.User
// @Failure 403 {object} domain.ErrorResponse "Apenas STOCK_MANAGER"
// @Security ApiKeyAuth
// @Router /users [post]
func (h *Handler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var reg domain.UserRegistration
	if err := response.Decode(r, &reg); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	newUser, err := h.Service.CreateUser(r.Context(), reg)
	response.Handle(h.Logger, w, r, newUser, err, http.StatusCreated)
}

// ListUsersHandler lida com GET /v1/users?name=&role=&status=.
func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := response.Page(r)
	if err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusOK)
		return
	}

	users, err := h.Service.List(r.Context(), domain.UserFilter{
		Name:   q.Get("name"),
		Role:   domain.UserRole(q.Get("role")),
		Status: domain.UserStatus(q.Get("status")),
		Sort:   response.Sort(r),
		Page:   page,
	})
	response.Handle(h.Logger, w, r, users, err, http.StatusOK)
}

func (h *Handler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.Get(r.Context(), response.ID(r))
	response.Handle(h.Logger, w, r, user, err, http.StatusOK)
}

func (h *Handler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	var patch domain.UserPatch
	if err := response.Decode(r, &patch); err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusBadRequest)
		return
	}

	user, err := h.Service.Update(r.Context(), response.ID(r), patch)
	response.Handle(h.Logger, w, r, user, err, http.StatusOK)
}

func (h *Handler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(r.Context(), response.ID(r))
	response.Handle(h.Logger, w, r, nil, err, http.StatusNoContent)
}
