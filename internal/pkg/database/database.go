package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // driver "postgres"
	_ "modernc.org/sqlite" // driver "sqlite" (Go puro, arquivo local ou :memory:)
)

// Nomes de driver suportados.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	// O sqlx não conhece o nome "sqlite" do modernc; as queries usam '?'.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Open escolhe o driver pela DSN: URLs postgres:// usam o PostgreSQL,
// qualquer outra coisa é tratada como caminho de arquivo SQLite.
func Open(dsn string) (*sqlx.DB, error) {
	if IsPostgresDSN(dsn) {
		return NewPostgresDB(dsn)
	}
	return NewSQLiteDB(dsn)
}

// IsPostgresDSN informa se a DSN aponta para um servidor PostgreSQL.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// NewPostgresDB inicializa e configura o pool de conexões com o PostgreSQL.
func NewPostgresDB(dataSourceName string) (*sqlx.DB, error) {
	// 1. Abrir a Conexão
	db, err := sqlx.Open(DriverPostgres, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir a conexão com o DB: %w", err)
	}

	// 2. Testar a Conexão Imediatamente
	if err = pingWithTimeout(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao realizar o ping inicial no DB: %w", err)
	}

	// 3. Configuração do Connection Pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return db, nil
}

// NewSQLiteDB abre o armazenamento local em arquivo (ou ":memory:").
// O SQLite é usado com uma única conexão: o modelo é de escritor único e um banco
// ":memory:" só existe enquanto a conexão que o criou estiver aberta.
// Consequência: nenhuma query pode ser executada enquanto um iterador de linhas
// da mesma conexão estiver aberto.
func NewSQLiteDB(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverSQLite, sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir o arquivo SQLite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err = pingWithTimeout(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao realizar o ping inicial no SQLite: %w", err)
	}

	return db, nil
}

// sqliteDSN acrescenta os pragmas obrigatórios: chaves estrangeiras (cascata das linhas de
// pedido), espera em caso de lock e formato de data legível pelo próprio driver.
func sqliteDSN(path string) string {
	params := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	if path != ":memory:" && !strings.HasPrefix(path, "file::memory:") {
		params += "&_pragma=journal_mode(WAL)"
	}
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

func pingWithTimeout(db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
