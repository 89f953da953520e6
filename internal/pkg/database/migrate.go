package database

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// NewMigrator cria o provider do goose com as migrações embutidas no binário,
// no dialeto do driver em uso.
func NewMigrator(db *sqlx.DB) (*goose.Provider, error) {
	dialect := goose.DialectSQLite3
	if db.DriverName() == DriverPostgres {
		dialect = goose.DialectPostgres
	}

	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir migrações embutidas: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return nil, fmt.Errorf("falha ao criar provider do goose: %w", err)
	}
	return provider, nil
}

// Migrate aplica todas as migrações pendentes.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	provider, err := NewMigrator(db)
	if err != nil {
		return err
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("falha ao aplicar migrações: %w", err)
	}
	return nil
}

// RunMigrations executa um comando do goose (up, down, status) e escreve o
// resultado em out.
func RunMigrations(ctx context.Context, db *sqlx.DB, command string, out io.Writer) error {
	provider, err := NewMigrator(db)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		for _, res := range results {
			fmt.Fprintf(out, "OK   %s (%s)\n", res.Source.Path, res.Duration)
		}
		if err != nil {
			return fmt.Errorf("falha ao aplicar migrações: %w", err)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "nenhuma migração pendente")
		}
	case "down":
		res, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("falha ao reverter migração: %w", err)
		}
		fmt.Fprintf(out, "DOWN %s (%s)\n", res.Source.Path, res.Duration)
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("falha ao consultar migrações: %w", err)
		}
		for _, st := range statuses {
			applied := "-"
			if st.State == goose.StateApplied {
				applied = st.AppliedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(out, "%-8s %-25s %s\n", st.State, applied, st.Source.Path)
		}
	default:
		return fmt.Errorf("comando de migração desconhecido: %q", command)
	}
	return nil
}
