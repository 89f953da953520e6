package categoryrepo

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

const categoryColumns = `id, name, description, created_at, updated_at`

var sortColumns = map[string]string{
	"name":       "LOWER(name)",
	"created_at": "created_at",
}

// CategoryRepository implementa as operações CRUD de categorias.
type CategoryRepository struct {
	DB        *sqlx.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

func NewCategoryRepository(db *sqlx.DB, dbTimeout time.Duration, logger logger.Logger) *CategoryRepository {
	return &CategoryRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere uma nova categoria.
func (r *CategoryRepository) Save(ctx context.Context, category domain.Category) (domain.Category, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	category.ID = uuid.NewString()
	category.CreatedAt = time.Now().UTC()
	category.UpdatedAt = category.CreatedAt

	q := database.Conn(ctx, r.DB)
	_, err := q.ExecContext(ctxTimeout, q.Rebind(`
		INSERT INTO categories (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`),
		category.ID, category.Name, category.Description, category.CreatedAt, category.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir categoria no DB.", err)
		return domain.Category{}, apperror.NewDBError("Falha ao criar categoria", err)
	}

	r.logger.Info("Categoria criada com sucesso.", map[string]interface{}{"id": category.ID, "name": category.Name})
	return category, nil
}

// FindByID busca uma categoria pelo ID.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (domain.Category, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)
	var category domain.Category
	err := q.GetContext(ctxTimeout, &category, q.Rebind(`SELECT `+categoryColumns+` FROM categories WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, apperror.NewNotFoundError(fmt.Sprintf("Categoria com ID %s não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar categoria no DB.", err)
		return domain.Category{}, apperror.NewDBError("Falha ao buscar categoria", err)
	}
	return category, nil
}

// Update grava nome e descrição.
func (r *CategoryRepository) Update(ctx context.Context, category domain.Category) (domain.Category, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	category.UpdatedAt = time.Now().UTC()

	q := database.Conn(ctx, r.DB)
	result, err := q.ExecContext(ctxTimeout, q.Rebind(`
		UPDATE categories SET name = ?, description = ?, updated_at = ? WHERE id = ?`),
		category.Name, category.Description, category.UpdatedAt, category.ID,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar categoria no DB.", err)
		return domain.Category{}, apperror.NewDBError("Falha ao atualizar categoria", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.Category{}, apperror.NewNotFoundError(fmt.Sprintf("Categoria com ID %s não encontrada para atualização.", category.ID))
	}
	return category, nil
}

// Delete remove a categoria. Categorias com produtos não podem ser removidas.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)

	var products int
	if err := q.GetContext(ctxTimeout, &products, q.Rebind(`SELECT COUNT(*) FROM products WHERE category_id = ?`), id); err != nil {
		return apperror.NewDBError("Falha ao contar produtos da categoria", err)
	}
	if products > 0 {
		r.logger.Warn("Tentativa de remover categoria com produtos.", map[string]interface{}{"id": id, "products": products})
		return apperror.NewConflictError(fmt.Sprintf("A categoria %s possui %d produto(s) e não pode ser removida.", id, products))
	}

	result, err := q.ExecContext(ctxTimeout, q.Rebind(`DELETE FROM categories WHERE id = ?`), id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperror.NewConflictError(fmt.Sprintf("A categoria %s ainda é referenciada.", id))
		}
		r.logger.Error("Falha ao deletar categoria do DB.", err)
		return apperror.NewDBError("Falha ao deletar categoria", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Categoria com ID %s não encontrada para exclusão.", id))
	}

	r.logger.Info("Categoria deletada com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// Query devolve as categorias que atendem ao filtro.
func (r *CategoryRepository) Query(ctx context.Context, filter domain.CategoryFilter) iter.Seq2[domain.Category, error] {
	query, args := database.Select(`SELECT `+categoryColumns+` FROM categories`).
		NameContains("name", filter.Name).
		OrderBy(filter.Sort, sortColumns, "LOWER(name) ASC").
		Paginate(filter.Page).
		Build(r.DB)

	return database.Query[domain.Category](ctx, r.DB, r.DBTimeout, query, args...)
}

// Count devolve o total de categorias.
func (r *CategoryRepository) Count(ctx context.Context) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var n int
	if err := database.Conn(ctx, r.DB).GetContext(ctxTimeout, &n, `SELECT COUNT(*) FROM categories`); err != nil {
		return 0, apperror.NewDBError("Falha ao contar categorias", err)
	}
	return n, nil
}
