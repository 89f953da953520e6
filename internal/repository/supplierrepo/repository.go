package supplierrepo

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

const supplierColumns = `id, name, contact, email, phone, website, category_label, status, created_at, updated_at`

var sortColumns = map[string]string{
	"name":       "LOWER(name)",
	"created_at": "created_at",
	"status":     "status",
}

// SupplierRepository implementa as operações CRUD de fornecedores.
type SupplierRepository struct {
	DB        *sqlx.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

func NewSupplierRepository(db *sqlx.DB, dbTimeout time.Duration, logger logger.Logger) *SupplierRepository {
	return &SupplierRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere um novo fornecedor.
func (r *SupplierRepository) Save(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	supplier.ID = uuid.NewString()
	supplier.CreatedAt = time.Now().UTC()
	supplier.UpdatedAt = supplier.CreatedAt

	q := database.Conn(ctx, r.DB)
	_, err := q.ExecContext(ctxTimeout, q.Rebind(`
		INSERT INTO suppliers (id, name, contact, email, phone, website, category_label, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		supplier.ID, supplier.Name, supplier.Contact, supplier.Email, supplier.Phone, supplier.Website,
		supplier.CategoryLabel, supplier.Status, supplier.CreatedAt, supplier.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir fornecedor no DB.", err)
		return domain.Supplier{}, apperror.NewDBError("Falha ao criar fornecedor", err)
	}

	r.logger.Info("Fornecedor criado com sucesso.", map[string]interface{}{"id": supplier.ID, "name": supplier.Name})
	return supplier, nil
}

// FindByID busca um fornecedor pelo ID.
func (r *SupplierRepository) FindByID(ctx context.Context, id string) (domain.Supplier, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)
	var supplier domain.Supplier
	err := q.GetContext(ctxTimeout, &supplier, q.Rebind(`SELECT `+supplierColumns+` FROM suppliers WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Supplier{}, apperror.NewNotFoundError(fmt.Sprintf("Fornecedor com ID %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar fornecedor no DB.", err)
		return domain.Supplier{}, apperror.NewDBError("Falha ao buscar fornecedor", err)
	}
	return supplier, nil
}

// Update grava todos os campos editáveis do fornecedor.
func (r *SupplierRepository) Update(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	supplier.UpdatedAt = time.Now().UTC()

	q := database.Conn(ctx, r.DB)
	result, err := q.ExecContext(ctxTimeout, q.Rebind(`
		UPDATE suppliers
		SET name = ?, contact = ?, email = ?, phone = ?, website = ?, category_label = ?, status = ?, updated_at = ?
		WHERE id = ?`),
		supplier.Name, supplier.Contact, supplier.Email, supplier.Phone, supplier.Website,
		supplier.CategoryLabel, supplier.Status, supplier.UpdatedAt, supplier.ID,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar fornecedor no DB.", err)
		return domain.Supplier{}, apperror.NewDBError("Falha ao atualizar fornecedor", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.Supplier{}, apperror.NewNotFoundError(fmt.Sprintf("Fornecedor com ID %s não encontrado para atualização.", supplier.ID))
	}
	return supplier, nil
}

// Delete remove o fornecedor. Fornecedores com pedidos não podem ser removidos.
func (r *SupplierRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)

	var orders int
	if err := q.GetContext(ctxTimeout, &orders, q.Rebind(`SELECT COUNT(*) FROM purchase_orders WHERE supplier_id = ?`), id); err != nil {
		return apperror.NewDBError("Falha ao contar pedidos do fornecedor", err)
	}
	if orders > 0 {
		r.logger.Warn("Tentativa de remover fornecedor com pedidos.", map[string]interface{}{"id": id, "orders": orders})
		return apperror.NewConflictError(fmt.Sprintf("O fornecedor %s possui %d pedido(s) e não pode ser removido.", id, orders))
	}

	result, err := q.ExecContext(ctxTimeout, q.Rebind(`DELETE FROM suppliers WHERE id = ?`), id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperror.NewConflictError(fmt.Sprintf("O fornecedor %s ainda é referenciado.", id))
		}
		r.logger.Error("Falha ao deletar fornecedor do DB.", err)
		return apperror.NewDBError("Falha ao deletar fornecedor", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Fornecedor com ID %s não encontrado para exclusão.", id))
	}

	r.logger.Info("Fornecedor deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// Query devolve os fornecedores que atendem ao filtro.
func (r *SupplierRepository) Query(ctx context.Context, filter domain.SupplierFilter) iter.Seq2[domain.Supplier, error] {
	query, args := database.Select(`SELECT `+supplierColumns+` FROM suppliers`).
		NameContains("name", filter.Name).
		WhereIf(filter.Status != "", "status = ?", filter.Status).
		Between("created_at", filter.CreatedFrom, filter.CreatedTo).
		OrderBy(filter.Sort, sortColumns, "LOWER(name) ASC").
		Paginate(filter.Page).
		Build(r.DB)

	return database.Query[domain.Supplier](ctx, r.DB, r.DBTimeout, query, args...)
}
