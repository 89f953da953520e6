package locationrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/database/databasetest"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/repository/locationrepo"
)

func newRepo(t *testing.T) *locationrepo.LocationRepository {
	t.Helper()

	return locationrepo.NewLocationRepository(databasetest.NewDB(t), 5*time.Second, logger.NewLogger("error"))
}

func TestSaveAndFindByID(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, domain.Location{Name: "Corredor A", Zone: "Nord", Type: "Étagère", Capacity: 100, Occupancy: 30})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Corredor A", found.Name)
	assert.Equal(t, 100, found.Capacity)
	assert.Equal(t, 30, found.Occupancy)
	assert.InDelta(t, 30.0, found.OccupancyRate(), 0.001)
}

func TestSave_Fail_OccupancyAboveCapacity(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.Save(context.Background(), domain.Location{Name: "Doca", Capacity: 10, Occupancy: 11})

	assert.IsType(t, &apperror.PersistenceError{}, err)
}

func TestFindByID_Fail_NotFound(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.FindByID(context.Background(), uuid.NewString())

	assert.IsType(t, &apperror.NotFoundError{}, err)
}

func TestUpdate_PersistsAndKeepsConstraint(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	saved, err := repo.Save(ctx, domain.Location{Name: "Corredor A", Capacity: 50, Occupancy: 40})
	require.NoError(t, err)

	saved.Occupancy = 45
	_, err = repo.Update(ctx, saved)
	require.NoError(t, err)

	shrunk := saved
	shrunk.Capacity = 30
	_, err = repo.Update(ctx, shrunk)
	assert.IsType(t, &apperror.PersistenceError{}, err)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, found.Capacity)
	assert.Equal(t, 45, found.Occupancy)
}

func TestUpdate_Fail_NotFound(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.Update(context.Background(), domain.Location{ID: uuid.NewString(), Name: "X", Capacity: 1})

	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	saved, err := repo.Save(ctx, domain.Location{Name: "Doca", Capacity: 10})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, saved.ID))

	_, err = repo.FindByID(ctx, saved.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, apperror.IsNotFound(repo.Delete(ctx, saved.ID)))
}

func TestQuery_FiltersAndSorts(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	for _, l := range []domain.Location{
		{Name: "Corredor B", Zone: "Nord", Capacity: 80},
		{Name: "corredor a", Zone: "Sud", Capacity: 20},
		{Name: "Doca", Zone: "Nord", Capacity: 200},
	} {
		_, err := repo.Save(ctx, l)
		require.NoError(t, err)
	}

	byName, err := database.Collect(repo.Query(ctx, domain.LocationFilter{Name: "CORREDOR"}))
	require.NoError(t, err)
	require.Len(t, byName, 2)
	assert.Equal(t, "corredor a", byName[0].Name)

	nord, err := database.Collect(repo.Query(ctx, domain.LocationFilter{Zone: "nord"}))
	require.NoError(t, err)
	assert.Len(t, nord, 2)

	biggest, err := database.Collect(repo.Query(ctx, domain.LocationFilter{
		Sort: domain.Sort{Field: "capacity", Desc: true},
		Page: domain.Page{Limit: 1},
	}))
	require.NoError(t, err)
	require.Len(t, biggest, 1)
	assert.Equal(t, "Doca", biggest[0].Name)
}
