package stockrepo

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
	"stockroom/internal/pkg/cache"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/logger"
)

const movementColumns = `id, product_id, delta, quantity_after, reason, reference_type, reference_id, created_by, created_at`

var sortColumns = map[string]string{
	"created_at": "created_at",
	"delta":      "delta",
}

// StockRepository é o livro de estoque: altera products.quantity_in_stock e grava
// o movimento de auditoria na mesma transação.
type StockRepository struct {
	DB        *sqlx.DB
	Tx        *database.TxManager
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewStockRepository cria e retorna uma nova instância do Repositório de Estoque.
func NewStockRepository(tx *database.TxManager, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *StockRepository {
	return &StockRepository{
		DB:        tx.DB(),
		Tx:        tx,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Adjust aplica adj.Delta ao produto com controle de concorrência otimista (OCC).
// Se já houver uma unidade de trabalho no contexto, participa dela; caso contrário abre a sua.
// Quando o resultado seria negativo devolve InsufficientStockError e nada é gravado.
func (r *StockRepository) Adjust(ctx context.Context, adj domain.Adjustment) (domain.MovementResult, error) {
	r.logger.Debug("Iniciando ajuste de estoque no repositório.", map[string]interface{}{
		"product_id": adj.ProductID,
		"delta":      adj.Delta,
		"reference":  adj.ReferenceType,
	})

	var result domain.MovementResult
	err := r.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		result, err = r.adjust(ctx, adj)
		return err
	})
	if err != nil {
		return domain.MovementResult{}, err
	}
	return result, nil
}

func (r *StockRepository) adjust(ctx context.Context, adj domain.Adjustment) (domain.MovementResult, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)

	// 1. Obter o produto atual (com FOR UPDATE para bloquear a linha na transação).
	var product domain.Product
	err := q.GetContext(ctxTimeout, &product, q.Rebind(`
		SELECT id, name, description, unit_price, quantity_in_stock, alert_threshold, category_id, version, created_at, updated_at
		FROM products WHERE id = ?`+database.ForUpdate(q)), adj.ProductID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MovementResult{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe.", adj.ProductID))
	}
	if err != nil {
		r.logger.Error("Falha ao selecionar produto para ajuste de estoque.", err)
		return domain.MovementResult{}, apperror.NewDBError("Falha ao buscar estoque para atualização", err)
	}

	// 2. Estoque nunca fica negativo.
	newQuantity := product.QuantityInStock + adj.Delta
	if newQuantity < 0 {
		r.logger.Warn("Tentativa de ajustar estoque para quantidade negativa.", map[string]interface{}{
			"product_id":       adj.ProductID,
			"current_quantity": product.QuantityInStock,
			"delta":            adj.Delta,
		})
		return domain.MovementResult{}, apperror.NewInsufficientStockError(adj.ProductID, product.QuantityInStock, adj.Delta)
	}

	// 3. Atualizar com OCC.
	now := time.Now().UTC()
	res, err := q.ExecContext(ctxTimeout, q.Rebind(`
		UPDATE products
		SET quantity_in_stock = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?`),
		newQuantity, product.Version+1, now, product.ID, product.Version,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar estoque.", err)
		return domain.MovementResult{}, apperror.NewDBError("Falha ao atualizar estoque", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return domain.MovementResult{}, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("Falha no controle de concorrência otimista (OCC). Versão do registro desatualizada.", map[string]interface{}{
			"product_id":       adj.ProductID,
			"expected_version": product.Version,
		})
		return domain.MovementResult{}, apperror.NewConflictError("O estoque foi modificado por outra operação. Tente novamente.")
	}

	// 4. Movimento de auditoria.
	movement := domain.StockMovement{
		ID:            uuid.NewString(),
		ProductID:     product.ID,
		Delta:         adj.Delta,
		QuantityAfter: newQuantity,
		Reason:        adj.Reason,
		ReferenceType: adj.ReferenceType,
		ReferenceID:   adj.ReferenceID,
		CreatedBy:     domain.ActorFromContext(ctx),
		CreatedAt:     now,
	}
	if movement.ReferenceType == "" {
		movement.ReferenceType = domain.RefManual
	}
	_, err = q.ExecContext(ctxTimeout, q.Rebind(`
		INSERT INTO stock_movements (`+movementColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		movement.ID, movement.ProductID, movement.Delta, movement.QuantityAfter, movement.Reason,
		movement.ReferenceType, movement.ReferenceID, movement.CreatedBy, movement.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao gravar movimento de estoque.", err)
		return domain.MovementResult{}, apperror.NewDBError("Falha ao gravar movimento de estoque", err)
	}

	product.QuantityInStock = newQuantity
	product.Version++
	product.UpdatedAt = now

	database.AfterCommit(ctx, func() {
		if err := r.Cache.Delete(context.WithoutCancel(ctx), cache.ProductKey(product.ID)); err != nil {
			r.logger.Warn("Falha ao invalidar produto no cache.", map[string]interface{}{"id": product.ID, "error": err.Error()})
		}
	})

	r.logger.Info("Estoque atualizado com sucesso.", map[string]interface{}{
		"product_id":   product.ID,
		"delta":        adj.Delta,
		"new_quantity": newQuantity,
		"new_version":  product.Version,
	})
	return domain.MovementResult{Product: product, Movement: movement}, nil
}

// ListMovements devolve o histórico de movimentos, do mais recente ao mais antigo por padrão.
func (r *StockRepository) ListMovements(ctx context.Context, filter domain.MovementFilter) iter.Seq2[domain.StockMovement, error] {
	query, args := database.Select(`SELECT `+movementColumns+` FROM stock_movements`).
		WhereIf(filter.ProductID != "", "product_id = ?", filter.ProductID).
		WhereIf(filter.ReferenceType != "", "reference_type = ?", filter.ReferenceType).
		WhereIf(filter.ReferenceID != "", "reference_id = ?", filter.ReferenceID).
		Between("created_at", filter.From, filter.To).
		OrderBy(filter.Sort, sortColumns, "created_at DESC").
		Paginate(filter.Page).
		Build(r.DB)

	return database.Query[domain.StockMovement](ctx, r.DB, r.DBTimeout, query, args...)
}
