package database

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
)

// Query devolve uma sequência preguiçosa e reiniciável: cada range executa a consulta
// de novo e lê as linhas sob demanda. A conexão (transação ou DB) é resolvida a cada
// iteração a partir do contexto.
func Query[T any](ctx context.Context, db *sqlx.DB, timeout time.Duration, query string, args ...interface{}) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		rows, err := Conn(ctx, db).QueryxContext(ctxTimeout, query, args...)
		if err != nil {
			yield(zero, apperror.NewDBError("Falha ao executar consulta", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var item T
			if err := rows.StructScan(&item); err != nil {
				yield(zero, apperror.NewDBError("Falha ao ler linha da consulta", err))
				return
			}
			if !yield(item, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(zero, apperror.NewDBError("Falha ao percorrer resultado", err))
		}
	}
}

// Collect materializa uma sequência, parando no primeiro erro.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	items := make([]T, 0)
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ForUpdate devolve a cláusula de lock de linha quando o dialeto a suporta.
// No SQLite a transação já detém o lock de escrita do arquivo.
func ForUpdate(q Querier) string {
	if q.DriverName() == DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// SelectBuilder monta SELECTs com filtros opcionais, ordenação por lista branca
// e paginação. Os placeholders são escritos como '?' e convertidos no Build.
type SelectBuilder struct {
	base    string
	where   []string
	args    []interface{}
	orderBy string
	limit   int
	offset  int
}

// Select inicia o builder com "SELECT ... FROM ...".
func Select(base string) *SelectBuilder {
	return &SelectBuilder{base: base}
}

// Where acrescenta uma condição (unida por AND).
func (b *SelectBuilder) Where(cond string, args ...interface{}) *SelectBuilder {
	b.where = append(b.where, cond)
	b.args = append(b.args, args...)
	return b
}

// WhereIf acrescenta a condição apenas quando ok é verdadeiro.
func (b *SelectBuilder) WhereIf(ok bool, cond string, args ...interface{}) *SelectBuilder {
	if ok {
		return b.Where(cond, args...)
	}
	return b
}

// NameContains filtra por substring sem diferenciar maiúsculas.
func (b *SelectBuilder) NameContains(column, term string) *SelectBuilder {
	term = strings.TrimSpace(term)
	if term == "" {
		return b
	}
	return b.Where(fmt.Sprintf("LOWER(%s) LIKE ?", column), "%"+strings.ToLower(term)+"%")
}

// Between filtra a coluna de data pelo intervalo fechado [from, to].
func (b *SelectBuilder) Between(column string, from, to *time.Time) *SelectBuilder {
	if from != nil {
		b.Where(column+" >= ?", from.UTC())
	}
	if to != nil {
		b.Where(column+" <= ?", to.UTC())
	}
	return b
}

// OrderBy aplica a ordenação pedida se o campo estiver em allowed (campo -> coluna);
// caso contrário usa def. O id entra como desempate para uma ordem estável.
func (b *SelectBuilder) OrderBy(sort domain.Sort, allowed map[string]string, def string) *SelectBuilder {
	column, ok := allowed[sort.Field]
	if !ok {
		b.orderBy = def
		return b
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	b.orderBy = fmt.Sprintf("%s %s", column, dir)
	return b
}

// Paginate aplica LIMIT/OFFSET (Limit 0 = sem limite; o offset vale mesmo assim).
func (b *SelectBuilder) Paginate(p domain.Page) *SelectBuilder {
	b.limit = p.Limit
	b.offset = p.Offset
	return b
}

// Build devolve a query no formato de placeholder do driver e os argumentos.
func (b *SelectBuilder) Build(db *sqlx.DB) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(b.base)
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	if b.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderBy)
		sb.WriteString(", id ASC")
	}
	args := append([]interface{}(nil), b.args...)
	switch {
	case b.limit > 0:
		sb.WriteString(" LIMIT ?")
		args = append(args, b.limit)
	case b.offset > 0 && db.DriverName() != DriverPostgres:
		// SQLite só aceita OFFSET depois de um LIMIT; -1 = sem limite.
		sb.WriteString(" LIMIT -1")
	}
	if b.offset > 0 {
		sb.WriteString(" OFFSET ?")
		args = append(args, b.offset)
	}
	return db.Rebind(sb.String()), args
}
