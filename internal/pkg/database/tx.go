package database

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sethvargo/go-retry"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
)

// Querier é o conjunto de operações comum a *sqlx.DB e *sqlx.Tx.
type Querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type txKey struct{}

// unitOfWork é a transação ativa e as ações adiadas até o commit.
type unitOfWork struct {
	tx          *sqlx.Tx
	afterCommit []func()
}

// Conn devolve a transação ativa no contexto ou, na ausência dela, o próprio DB.
func Conn(ctx context.Context, db *sqlx.DB) Querier {
	if uow, ok := ctx.Value(txKey{}).(*unitOfWork); ok {
		return uow.tx
	}
	return db
}

// InTx informa se há uma unidade de trabalho ativa no contexto.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*unitOfWork)
	return ok
}

// AfterCommit agenda fn para depois do commit da unidade de trabalho ativa.
// Sem transação no contexto, fn é executada imediatamente. Em rollback, fn é descartada.
func AfterCommit(ctx context.Context, fn func()) {
	if uow, ok := ctx.Value(txKey{}).(*unitOfWork); ok {
		uow.afterCommit = append(uow.afterCommit, fn)
		return
	}
	fn()
}

// TxManager executa unidades de trabalho (commit ou rollback) sobre o armazenamento.
type TxManager struct {
	db         *sqlx.DB
	maxRetries uint64
	retryBase  time.Duration
	logger     logger.Logger
}

// NewTxManager cria o gerenciador de transações. maxRetries limita as novas tentativas
// em falhas transitórias (lock ocupado, falha de serialização, deadlock).
func NewTxManager(db *sqlx.DB, maxRetries uint64, retryBase time.Duration, logger logger.Logger) *TxManager {
	if retryBase <= 0 {
		retryBase = 50 * time.Millisecond
	}
	return &TxManager{db: db, maxRetries: maxRetries, retryBase: retryBase, logger: logger}
}

// DB devolve o handle injetado.
func (m *TxManager) DB() *sqlx.DB {
	return m.db
}

// WithinTx executa fn dentro de uma única transação. Chamadas aninhadas reutilizam a
// transação externa, de modo que o commit ou rollback é decidido pelo nível mais externo.
// Uma falha transitória repete a unidade inteira: nada é commitado pela metade.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}

	var hooks []func()
	attempt := 0
	backoff := retry.WithMaxRetries(m.maxRetries, retry.NewExponential(m.retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		uow, err := m.run(ctx, fn)
		if err != nil {
			if IsTransient(err) {
				m.logger.Warn("Falha transitória na transação, repetindo.", map[string]interface{}{
					"attempt": attempt,
					"error":   err.Error(),
				})
				return retry.RetryableError(err)
			}
			return err
		}
		hooks = uow.afterCommit
		return nil
	})
	if err != nil {
		return err
	}

	for _, h := range hooks {
		h()
	}
	return nil
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) (uow *unitOfWork, err error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		m.logger.Error("Falha ao iniciar transação.", err)
		return nil, apperror.NewDBError("Falha ao iniciar transação", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, context.Canceled) {
				m.logger.Debug("Rollback após falha.", map[string]interface{}{"error": rbErr.Error()})
			}
		}
	}()

	uow = &unitOfWork{tx: tx}
	if err = fn(context.WithValue(ctx, txKey{}, uow)); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		m.logger.Error("Falha ao commitar transação.", err)
		return nil, apperror.NewDBError("Falha ao commitar transação", err)
	}
	return uow, nil
}

// --- Classificação de erros de driver ---

// IsTransient identifica falhas em que repetir a transação inteira é seguro.
func IsTransient(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return true
		}
		return false
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff { // código primário
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}
	return false
}

// IsUniqueViolation identifica violação de índice único (e.g., email duplicado).
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// IsForeignKeyViolation identifica referência inexistente ou ainda em uso.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return false
}
