package locationrepo

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

const locationColumns = `id, name, zone, type, capacity, occupancy, created_at, updated_at`

var sortColumns = map[string]string{
	"name":       "LOWER(name)",
	"zone":       "LOWER(zone)",
	"capacity":   "capacity",
	"created_at": "created_at",
}

// LocationRepository implementa a interface para operações CRUD de locais de armazenagem.
type LocationRepository struct {
	DB        *sqlx.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewLocationRepository cria e retorna uma nova instância do Repositório de Locais.
func NewLocationRepository(db *sqlx.DB, dbTimeout time.Duration, logger logger.Logger) *LocationRepository {
	return &LocationRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere um novo local no banco de dados.
func (r *LocationRepository) Save(ctx context.Context, location domain.Location) (domain.Location, error) {
	r.logger.Debug("Iniciando Save de local no repositório.", map[string]interface{}{"name": location.Name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	location.ID = uuid.NewString()
	now := time.Now().UTC()
	location.CreatedAt = now
	location.UpdatedAt = now

	q := database.Conn(ctx, r.DB)
	_, err := q.ExecContext(ctxTimeout, q.Rebind(`
		INSERT INTO locations (id, name, zone, type, capacity, occupancy, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		location.ID, location.Name, location.Zone, location.Type, location.Capacity, location.Occupancy,
		location.CreatedAt, location.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir local no DB.", err)
		return domain.Location{}, apperror.NewDBError("Falha ao criar local", err)
	}

	r.logger.Info("Local criado com sucesso.", map[string]interface{}{"id": location.ID, "name": location.Name})
	return location, nil
}

// FindByID busca um local pelo ID.
func (r *LocationRepository) FindByID(ctx context.Context, id string) (domain.Location, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)
	var location domain.Location
	err := q.GetContext(ctxTimeout, &location, q.Rebind(`SELECT `+locationColumns+` FROM locations WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Local não encontrado.", map[string]interface{}{"id": id})
		return domain.Location{}, apperror.NewNotFoundError(fmt.Sprintf("Local com ID %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar local no DB.", err)
		return domain.Location{}, apperror.NewDBError("Falha ao buscar local", err)
	}
	return location, nil
}

// Update atualiza um local existente.
func (r *LocationRepository) Update(ctx context.Context, location domain.Location) (domain.Location, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	location.UpdatedAt = time.Now().UTC()

	q := database.Conn(ctx, r.DB)
	result, err := q.ExecContext(ctxTimeout, q.Rebind(`
		UPDATE locations
		SET name = ?, zone = ?, type = ?, capacity = ?, occupancy = ?, updated_at = ?
		WHERE id = ?`),
		location.Name, location.Zone, location.Type, location.Capacity, location.Occupancy,
		location.UpdatedAt, location.ID,
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar local no DB.", err)
		return domain.Location{}, apperror.NewDBError("Falha ao atualizar local", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Location{}, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		r.logger.Info("Local não encontrado para atualização.", map[string]interface{}{"id": location.ID})
		return domain.Location{}, apperror.NewNotFoundError(fmt.Sprintf("Local com ID %s não encontrado para atualização.", location.ID))
	}

	r.logger.Info("Local atualizado com sucesso.", map[string]interface{}{"id": location.ID, "name": location.Name})
	return location, nil
}

// Delete remove um local pelo ID.
func (r *LocationRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	q := database.Conn(ctx, r.DB)
	result, err := q.ExecContext(ctxTimeout, q.Rebind(`DELETE FROM locations WHERE id = ?`), id)
	if err != nil {
		r.logger.Error("Falha ao deletar local do DB.", err)
		return apperror.NewDBError("Falha ao deletar local", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		r.logger.Info("Local não encontrado para exclusão.", map[string]interface{}{"id": id})
		return apperror.NewNotFoundError(fmt.Sprintf("Local com ID %s não encontrado para exclusão.", id))
	}

	r.logger.Info("Local deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// Query devolve os locais que atendem ao filtro.
func (r *LocationRepository) Query(ctx context.Context, filter domain.LocationFilter) iter.Seq2[domain.Location, error] {
	query, args := database.Select(`SELECT `+locationColumns+` FROM locations`).
		NameContains("name", filter.Name).
		NameContains("zone", filter.Zone).
		Between("created_at", filter.CreatedFrom, filter.CreatedTo).
		OrderBy(filter.Sort, sortColumns, "LOWER(name) ASC").
		Paginate(filter.Page).
		Build(r.DB)

	return database.Query[domain.Location](ctx, r.DB, r.DBTimeout, query, args...)
}
