// Package databasetest abre bancos SQLite em memória já migrados para testes de integração.
package databasetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/logger"
)

// NewDB devolve um banco :memory: com o schema aplicado; é fechado no fim do teste.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

// NewTxManager devolve um gerenciador de transações sobre db, sem novas tentativas.
func NewTxManager(db *sqlx.DB) *database.TxManager {
	return database.NewTxManager(db, 0, 0, logger.NewLogger("error"))
}

// InsertCategory grava uma categoria e devolve o ID.
func InsertCategory(t testing.TB, db *sqlx.DB, name string) string {
	t.Helper()

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := db.Exec(db.Rebind(`INSERT INTO categories (id, name, description, created_at, updated_at) VALUES (?, ?, '', ?, ?)`),
		id, name, now, now)
	require.NoError(t, err)
	return id
}

// InsertProduct grava um produto com a quantidade informada (sem movimento) e devolve o ID.
func InsertProduct(t testing.TB, db *sqlx.DB, categoryID, name string, quantity int) string {
	t.Helper()

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := db.Exec(db.Rebind(`
		INSERT INTO products (id, name, description, unit_price, quantity_in_stock, alert_threshold, category_id, version, created_at, updated_at)
		VALUES (?, ?, '', '10.00', ?, 2, ?, 1, ?, ?)`),
		id, name, quantity, categoryID, now, now)
	require.NoError(t, err)
	return id
}

// InsertSupplier grava um fornecedor ativo e devolve o ID.
func InsertSupplier(t testing.TB, db *sqlx.DB, name string) string {
	t.Helper()

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := db.Exec(db.Rebind(`INSERT INTO suppliers (id, name, status, created_at, updated_at) VALUES (?, ?, 'ACTIVE', ?, ?)`),
		id, name, now, now)
	require.NoError(t, err)
	return id
}

// StockOf lê a quantidade em estoque direto da tabela.
func StockOf(t testing.TB, db *sqlx.DB, productID string) int {
	t.Helper()

	var qty int
	require.NoError(t, db.Get(&qty, db.Rebind(`SELECT quantity_in_stock FROM products WHERE id = ?`), productID))
	return qty
}

// CountRows conta as linhas de uma tabela que atendem a where.
func CountRows(t testing.TB, db *sqlx.DB, table, where string, args ...interface{}) int {
	t.Helper()

	var n int
	require.NoError(t, db.Get(&n, db.Rebind(`SELECT COUNT(*) FROM `+table+` WHERE `+where), args...))
	return n
}
