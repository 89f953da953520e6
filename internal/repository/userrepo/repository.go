package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/logger"
)

const userColumns = `id, email, password_hash, name, role, status, created_at, updated_at, last_login_at`

var sortColumns = map[string]string{
	"name":          "LOWER(name)",
	"email":         "email",
	"created_at":    "created_at",
	"last_login_at": "last_login_at",
}

// UserRepository persiste usuários. O e-mail é único (comparação exata).
type UserRepository struct {
	DB        *sqlx.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sqlx.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere um novo usuário no banco de dados.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	r.logger.Debug("Iniciando Save de usuário no repositório.", map[string]interface{}{"email": user.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	user.LastLoginAt = nil

	q := database.Conn(ctx, r.DB)
	_, err := q.ExecContext(ctxTimeout, q.Rebind(`
		INSERT INTO users (id, email, password_hash, name, role, status, created_at, updated_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`),
		user.ID, user.Email, user.PasswordHash, user.Name, user.Role, user.Status, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Info("E-mail já cadastrado.", map[string]interface{}{"email": user.Email})
			return domain.User{}, apperror.NewDuplicateEmailError(user.Email)
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao inserir usuário", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID, "email": user.Email})
	return user, nil
}

// FindByEmail busca um usuário pelo endereço de e-mail.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, "email", email)
}

// FindByID busca um usuário pelo ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *UserRepository) findOne(ctx context.Context, column, value string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)
	var user domain.User
	err := q.GetContext(ctxTimeout, &user, q.Rebind(`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`), value)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Usuário não encontrado no DB.", map[string]interface{}{column: value})
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com %s '%s' não encontrado", column, value))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao buscar usuário", err)
	}
	return user, nil
}

// UpdateLastLogin registra o instante do último login bem-sucedido.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)
	result, err := q.ExecContext(ctxTimeout, q.Rebind(`UPDATE users SET last_login_at = ? WHERE id = ?`), at.UTC(), id)
	if err != nil {
		r.logger.Error("Falha ao registrar último login.", err)
		return apperror.NewDBError("Falha ao registrar último login", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Usuário com id '%s' não encontrado", id))
	}
	return nil
}

// Update grava nome, papel e situação.
func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.UpdatedAt = time.Now().UTC()

	q := database.Conn(ctx, r.DB)
	result, err := q.ExecContext(ctxTimeout, q.Rebind(`
		UPDATE users SET name = ?, role = ?, status = ?, updated_at = ? WHERE id = ?`),
		user.Name, user.Role, user.Status, user.UpdatedAt, user.ID,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar usuário.", err)
		return domain.User{}, apperror.NewDBError("Falha ao atualizar usuário", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com id '%s' não encontrado", user.ID))
	}
	return user, nil
}

// UpdatePassword troca o hash da senha.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)
	result, err := q.ExecContext(ctxTimeout, q.Rebind(`
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`),
		passwordHash, time.Now().UTC(), id,
	)
	if err != nil {
		r.logger.Error("Falha ao trocar senha.", err)
		return apperror.NewDBError("Falha ao trocar senha", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Usuário com id '%s' não encontrado", id))
	}
	return nil
}

// Delete remove o usuário.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)
	result, err := q.ExecContext(ctxTimeout, q.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		r.logger.Error("Falha ao deletar usuário.", err)
		return apperror.NewDBError("Falha ao deletar usuário", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Usuário com id '%s' não encontrado", id))
	}
	return nil
}

// Query devolve os usuários que atendem ao filtro.
func (r *UserRepository) Query(ctx context.Context, filter domain.UserFilter) iter.Seq2[domain.User, error] {
	query, args := database.Select(`SELECT `+userColumns+` FROM users`).
		NameContains("name", filter.Name).
		WhereIf(filter.Role != "", "role = ?", filter.Role).
		WhereIf(filter.Status != "", "status = ?", filter.Status).
		OrderBy(filter.Sort, sortColumns, "LOWER(name) ASC").
		Paginate(filter.Page).
		Build(r.DB)

	return database.Query[domain.User](ctx, r.DB, r.DBTimeout, query, args...)
}
