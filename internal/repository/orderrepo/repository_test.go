package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/database/databasetest"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/repository/orderrepo"
)

type orderFixture struct {
	repo     *orderrepo.OrderRepository
	supplier string
	products []string
}

func newOrderFixture(t *testing.T, products ...string) *orderFixture {
	t.Helper()
	db := databasetest.NewDB(t)
	category := databasetest.InsertCategory(t, db, "Tintas")
	f := &orderFixture{
		repo:     orderrepo.NewOrderRepository(db, 5*time.Second, logger.NewLogger("error")),
		supplier: databasetest.InsertSupplier(t, db, "Acme"),
	}
	for _, name := range products {
		f.products = append(f.products, databasetest.InsertProduct(t, db, category, name, 0))
	}
	return f
}

func TestCreate_LinesKeepInsertionOrder(t *testing.T) {
	f := newOrderFixture(t, "P1", "P2", "P3", "P4", "P5", "P6")
	ctx := context.Background()

	// Ordem de inserção propositalmente diferente da ordem dos ids dos produtos.
	order := domain.PurchaseOrder{SupplierID: f.supplier, Status: domain.OrderPending}
	want := make([]string, 0, len(f.products))
	for i := len(f.products) - 1; i >= 0; i-- {
		order.Lines = append(order.Lines, domain.OrderLine{ProductID: f.products[i], Quantity: i + 1})
		want = append(want, f.products[i])
	}

	created, err := f.repo.Create(ctx, order)
	require.NoError(t, err)

	lines, err := f.repo.Lines(ctx, created.ID)
	require.NoError(t, err)
	got := make([]string, 0, len(lines))
	for _, l := range lines {
		got = append(got, l.ProductID)
	}
	assert.Equal(t, want, got)

	found, err := f.repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, found.Lines, len(want))
	for i, l := range found.Lines {
		assert.Equal(t, created.Lines[i].ID, l.ID)
		assert.Equal(t, want[i], l.ProductID)
	}
}

func TestCreate_ComputesTotalFromCurrentPrice(t *testing.T) {
	f := newOrderFixture(t, "Tinta", "Rolo")
	ctx := context.Background()

	created, err := f.repo.Create(ctx, domain.PurchaseOrder{
		SupplierID: f.supplier,
		Status:     domain.OrderPending,
		Lines: []domain.OrderLine{
			{ProductID: f.products[0], Quantity: 2},
			{ProductID: f.products[1], Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.Version)

	found, err := f.repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	// InsertProduct grava preço unitário 10.00.
	assert.Equal(t, "50", found.Total.String())
}

func TestCreate_Fail_UnknownSupplier(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.repo.Create(context.Background(), domain.PurchaseOrder{SupplierID: uuid.NewString(), Status: domain.OrderPending})

	assert.IsType(t, &apperror.ValidationError{}, err)
}

func TestUpdateStatus_StaleVersionConflicts(t *testing.T) {
	f := newOrderFixture(t, "Tinta")
	ctx := context.Background()
	created, err := f.repo.Create(ctx, domain.PurchaseOrder{
		SupplierID: f.supplier,
		Status:     domain.OrderPending,
		Lines:      []domain.OrderLine{{ProductID: f.products[0], Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, f.repo.UpdateStatus(ctx, created.ID, domain.OrderInProgress, created.Version))
	err = f.repo.UpdateStatus(ctx, created.ID, domain.OrderDelivered, created.Version)
	assert.IsType(t, &apperror.ConflictError{}, err)

	n, err := f.repo.CountByStatus(ctx, domain.OrderInProgress)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDelete_Fail_NotFound(t *testing.T) {
	f := newOrderFixture(t)

	err := f.repo.Delete(context.Background(), uuid.NewString())

	assert.True(t, apperror.IsNotFound(err))
}
