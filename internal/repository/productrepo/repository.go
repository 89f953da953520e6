package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/cache"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/logger"
)

const productColumns = `id, name, description, unit_price, quantity_in_stock, alert_threshold, category_id, version, created_at, updated_at`

// sortColumns é a lista branca de ordenação exposta aos chamadores.
var sortColumns = map[string]string{
	"name":       "LOWER(name)",
	"created_at": "created_at",
	"quantity":   "quantity_in_stock",
	"unit_price": "unit_price",
}

// ProductRepository acessa a tabela products, com cache-aside nas leituras por ID.
type ProductRepository struct {
	DB        *sqlx.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
func NewProductRepository(db *sqlx.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Save persiste um novo produto com quantidade zero; o estoque inicial entra pelo livro de estoque.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	product.ID = uuid.NewString()
	product.QuantityInStock = 0
	product.Version = 1
	product.CreatedAt = time.Now().UTC()
	product.UpdatedAt = product.CreatedAt

	q := database.Conn(ctx, r.DB)
	_, err := q.ExecContext(ctxTimeout, q.Rebind(`
		INSERT INTO products (id, name, description, unit_price, quantity_in_stock, alert_threshold, category_id, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		product.ID, product.Name, product.Description, product.UnitPrice, product.QuantityInStock,
		product.AlertThreshold, product.CategoryID, product.Version, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return domain.Product{}, apperror.NewValidationError(fmt.Sprintf("Categoria %s não existe.", product.CategoryID))
		}
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("Falha ao inserir produto", err)
	}

	r.logger.Debug("Produto inserido.", map[string]interface{}{"id": product.ID, "name": product.Name})
	return product, nil
}

// FindByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
// Dentro de uma unidade de trabalho o cache é ignorado para ler o estado da transação.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	useCache := !database.InTx(ctx)
	key := cache.ProductKey(id)

	// 1. Cache (READ)
	if useCache {
		cached, err := r.Cache.Get(ctx, key)
		if err == nil {
			var product domain.Product
			if json.Unmarshal([]byte(cached), &product) == nil {
				return product, nil
			}
			r.logger.Warn("Produto em cache ilegível, lendo do DB.", map[string]interface{}{"id": id})
		} else if err != cache.ErrCacheMiss {
			r.logger.Warn("Falha ao ler do cache.", map[string]interface{}{"id": id, "error": err.Error()})
		}
	}

	// 2. Banco de Dados
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)
	var product domain.Product
	err := q.GetContext(ctxTimeout, &product, q.Rebind(`SELECT `+productColumns+` FROM products WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.Product{}, apperror.NewDBError("Falha ao buscar produto", err)
	}

	// 3. Cache (WRITE)
	if useCache {
		if data, marshalErr := json.Marshal(product); marshalErr == nil {
			if err := r.Cache.Set(ctx, key, data, r.CacheTTL); err != nil {
				r.logger.Warn("Falha ao gravar produto no cache.", map[string]interface{}{"id": id, "error": err.Error()})
			}
		}
	}

	return product, nil
}

// Update grava os campos descritivos com verificação de versão (OCC).
// quantity_in_stock não é tocado aqui.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	product.UpdatedAt = time.Now().UTC()

	q := database.Conn(ctx, r.DB)
	result, err := q.ExecContext(ctxTimeout, q.Rebind(`
		UPDATE products
		SET name = ?, description = ?, unit_price = ?, alert_threshold = ?, category_id = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`),
		product.Name, product.Description, product.UnitPrice, product.AlertThreshold, product.CategoryID,
		product.UpdatedAt, product.ID, product.Version,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return domain.Product{}, apperror.NewValidationError(fmt.Sprintf("Categoria %s não existe.", product.CategoryID))
		}
		r.logger.Error("Falha ao atualizar produto.", err)
		return domain.Product{}, apperror.NewDBError("Falha ao atualizar produto", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return domain.Product{}, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rows == 0 {
		if _, findErr := r.FindByID(ctx, product.ID); findErr != nil {
			return domain.Product{}, findErr
		}
		r.logger.Warn("Falha no controle de concorrência otimista (OCC) do produto.", map[string]interface{}{
			"id":               product.ID,
			"expected_version": product.Version,
		})
		return domain.Product{}, apperror.NewConflictError("O produto foi modificado por outra operação. Tente novamente.")
	}

	product.Version++
	r.invalidate(ctx, product.ID)
	return product, nil
}

// Delete remove o produto (e seus movimentos, por cascata).
// Produtos referenciados por linhas de pedido não podem ser removidos.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)

	var lines int
	if err := q.GetContext(ctxTimeout, &lines, q.Rebind(`SELECT COUNT(*) FROM order_lines WHERE product_id = ?`), id); err != nil {
		return apperror.NewDBError("Falha ao verificar linhas de pedido do produto", err)
	}
	if lines > 0 {
		return apperror.NewConflictError(fmt.Sprintf("O produto %s está em %d linha(s) de pedido e não pode ser removido.", id, lines))
	}

	result, err := q.ExecContext(ctxTimeout, q.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		r.logger.Error("Falha ao deletar produto.", err)
		return apperror.NewDBError("Falha ao deletar produto", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rows == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe.", id))
	}

	r.invalidate(ctx, id)
	return nil
}

// Query devolve os produtos que atendem ao filtro, lidos sob demanda.
func (r *ProductRepository) Query(ctx context.Context, filter domain.ProductFilter) iter.Seq2[domain.Product, error] {
	query, args := database.Select(`SELECT `+productColumns+` FROM products`).
		NameContains("name", filter.Name).
		WhereIf(filter.CategoryID != "", "category_id = ?", filter.CategoryID).
		WhereIf(filter.LowStockOnly, "quantity_in_stock <= alert_threshold").
		Between("created_at", filter.CreatedFrom, filter.CreatedTo).
		OrderBy(filter.Sort, sortColumns, "LOWER(name) ASC").
		Paginate(filter.Page).
		Build(r.DB)

	return database.Query[domain.Product](ctx, r.DB, r.DBTimeout, query, args...)
}

// CountByCategory conta os produtos de uma categoria.
func (r *ProductRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)
	var n int
	if err := q.GetContext(ctxTimeout, &n, q.Rebind(`SELECT COUNT(*) FROM products WHERE category_id = ?`), categoryID); err != nil {
		return 0, apperror.NewDBError("Falha ao contar produtos da categoria", err)
	}
	return n, nil
}

// invalidate remove o produto do cache depois do commit da unidade de trabalho.
func (r *ProductRepository) invalidate(ctx context.Context, id string) {
	database.AfterCommit(ctx, func() {
		if err := r.Cache.Delete(context.WithoutCancel(ctx), cache.ProductKey(id)); err != nil {
			r.logger.Warn("Falha ao invalidar produto no cache.", map[string]interface{}{"id": id, "error": err.Error()})
		}
	})
}
