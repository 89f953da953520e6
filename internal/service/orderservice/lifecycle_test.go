package orderservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/cache"
	"stockroom/internal/pkg/database/databasetest"
	"stockroom/internal/pkg/events"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/repository/orderrepo"
	"stockroom/internal/repository/productrepo"
	"stockroom/internal/repository/stockrepo"
	"stockroom/internal/repository/supplierrepo"
	"stockroom/internal/service/orderservice"
	"stockroom/internal/service/stockservice"
)

type lifecycle struct {
	db       *sqlx.DB
	orders   *orderservice.Service
	ledger   *stockservice.Service
	hub      *events.Hub
	supplier string
	p1, p2   string
}

func newLifecycle(t *testing.T) lifecycle {
	t.Helper()
	return newLifecycleWithRepo(t, func(r *orderrepo.OrderRepository) orderservice.OrderRepository { return r })
}

func newLifecycleWithRepo(t *testing.T, wrap func(*orderrepo.OrderRepository) orderservice.OrderRepository) lifecycle {
	t.Helper()

	db := databasetest.NewDB(t)
	tx := databasetest.NewTxManager(db)
	log := logger.NewLogger("error")
	memCache := cache.NewMemoryClient()
	hub := events.NewHub(32, log)
	timeout := 5 * time.Second

	ledger := stockservice.NewService(
		stockrepo.NewStockRepository(tx, memCache, timeout, log),
		productrepo.NewProductRepository(db, memCache, timeout, time.Minute, log),
		hub, log,
	)
	orders := orderservice.NewService(
		wrap(orderrepo.NewOrderRepository(db, timeout, log)),
		supplierrepo.NewSupplierRepository(db, timeout, log),
		ledger, tx, hub, log,
	)

	category := databasetest.InsertCategory(t, db, "Ferragens")
	return lifecycle{
		db:       db,
		orders:   orders,
		ledger:   ledger,
		hub:      hub,
		supplier: databasetest.InsertSupplier(t, db, "Acme"),
		p1:       databasetest.InsertProduct(t, db, category, "P1", 0),
		p2:       databasetest.InsertProduct(t, db, category, "P2", 0),
	}
}

func (l lifecycle) createOrder(t *testing.T, lines ...domain.NewOrderLine) domain.PurchaseOrder {
	t.Helper()

	order, err := l.orders.Create(context.Background(), domain.NewPurchaseOrder{
		SupplierID: l.supplier,
		Notes:      "reposição",
		Lines:      lines,
	})
	require.NoError(t, err)
	return order
}

func TestCreate_StartsPendingWithTotal(t *testing.T) {
	l := newLifecycle(t)

	order := l.createOrder(t, domain.NewOrderLine{ProductID: l.p1, Quantity: 5}, domain.NewOrderLine{ProductID: l.p2, Quantity: 3})

	assert.Equal(t, domain.OrderPending, order.Status)
	assert.Len(t, order.Lines, 2)
	assert.Equal(t, "80", order.Total.String()) // 8 x 10.00
	assert.Equal(t, 0, databasetest.StockOf(t, l.db, l.p1))
}

func TestCreate_Fail_UnknownProductLeavesNothingBehind(t *testing.T) {
	l := newLifecycle(t)

	_, err := l.orders.Create(context.Background(), domain.NewPurchaseOrder{
		SupplierID: l.supplier,
		Lines: []domain.NewOrderLine{
			{ProductID: l.p1, Quantity: 1},
			{ProductID: "8f14e45f-ceea-4e7a-9c3b-2f6d1d1b0a11", Quantity: 1},
		},
	})

	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Zero(t, databasetest.CountRows(t, l.db, "purchase_orders", "1 = 1"))
	assert.Zero(t, databasetest.CountRows(t, l.db, "order_lines", "1 = 1"))
}

func TestSetStatus_DeliveringAddsEachLineExactlyOnce(t *testing.T) {
	l := newLifecycle(t)
	ctx := context.Background()
	order := l.createOrder(t, domain.NewOrderLine{ProductID: l.p1, Quantity: 5}, domain.NewOrderLine{ProductID: l.p2, Quantity: 3})

	delivered, err := l.orders.SetStatus(ctx, order.ID, domain.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDelivered, delivered.Status)
	assert.Equal(t, 5, databasetest.StockOf(t, l.db, l.p1))
	assert.Equal(t, 3, databasetest.StockOf(t, l.db, l.p2))

	// salvar o mesmo status de novo não acumula
	_, err = l.orders.SetStatus(ctx, order.ID, domain.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, 5, databasetest.StockOf(t, l.db, l.p1))
	assert.Equal(t, 3, databasetest.StockOf(t, l.db, l.p2))

	assert.Equal(t, 2, databasetest.CountRows(t, l.db, "stock_movements", "reference_type = ? AND reference_id = ?",
		domain.RefPurchaseOrder, order.ID))
}

func TestSetStatus_NonDeliveredTransitionsHaveNoStockEffect(t *testing.T) {
	l := newLifecycle(t)
	ctx := context.Background()
	order := l.createOrder(t, domain.NewOrderLine{ProductID: l.p1, Quantity: 5})

	for _, status := range []domain.OrderStatus{domain.OrderInProgress, domain.OrderCancelled, domain.OrderPending} {
		_, err := l.orders.SetStatus(ctx, order.ID, status)
		require.NoError(t, err)
		assert.Equal(t, 0, databasetest.StockOf(t, l.db, l.p1))
	}
}

func TestSetStatus_LeavingDeliveredReversesIncrements(t *testing.T) {
	l := newLifecycle(t)
	ctx := context.Background()
	order := l.createOrder(t, domain.NewOrderLine{ProductID: l.p1, Quantity: 5}, domain.NewOrderLine{ProductID: l.p2, Quantity: 3})

	_, err := l.orders.SetStatus(ctx, order.ID, domain.OrderDelivered)
	require.NoError(t, err)
	_, err = l.orders.SetStatus(ctx, order.ID, domain.OrderCancelled)
	require.NoError(t, err)

	assert.Equal(t, 0, databasetest.StockOf(t, l.db, l.p1))
	assert.Equal(t, 0, databasetest.StockOf(t, l.db, l.p2))

	// e entrar de novo aplica de novo: uma vez por cruzamento da fronteira
	_, err = l.orders.SetStatus(ctx, order.ID, domain.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, 5, databasetest.StockOf(t, l.db, l.p1))
}

func TestSetStatus_FailedReversalIsAllOrNothing(t *testing.T) {
	l := newLifecycle(t)
	ctx := context.Background()
	order := l.createOrder(t, domain.NewOrderLine{ProductID: l.p1, Quantity: 5}, domain.NewOrderLine{ProductID: l.p2, Quantity: 3})

	_, err := l.orders.SetStatus(ctx, order.ID, domain.OrderDelivered)
	require.NoError(t, err)

	// P2 foi consumido por fora: o estorno de 3 deixaria o estoque negativo
	_, err = l.ledger.ApplyMovement(ctx, l.p2, -2, "consumo")
	require.NoError(t, err)

	_, err = l.orders.SetStatus(ctx, order.ID, domain.OrderCancelled)

	var conflict *apperror.StockConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, order.ID, conflict.OrderID)
	require.Len(t, conflict.Lines, 1)
	assert.Equal(t, l.p2, conflict.Lines[0].ProductID)

	current, err := l.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDelivered, current.Status)
	// o estorno de P1 foi desfeito junto
	assert.Equal(t, 5, databasetest.StockOf(t, l.db, l.p1))
	assert.Equal(t, 1, databasetest.StockOf(t, l.db, l.p2))
}

func TestSetStatus_PublishesOnlyAfterCommit(t *testing.T) {
	l := newLifecycle(t)
	ctx := context.Background()
	order := l.createOrder(t, domain.NewOrderLine{ProductID: l.p1, Quantity: 5})
	_, err := l.orders.SetStatus(ctx, order.ID, domain.OrderDelivered)
	require.NoError(t, err)
	_, err = l.ledger.ApplyMovement(ctx, l.p1, -5, "consumo")
	require.NoError(t, err)

	ch, cancel := l.hub.Subscribe()
	defer cancel()

	_, err = l.orders.SetStatus(ctx, order.ID, domain.OrderPending)
	require.Error(t, err)

	select {
	case evt := <-ch:
		t.Fatalf("notificação inesperada após rollback: %+v", evt)
	default:
	}
}

func TestDelete_DeliveredOrderReversesStockFirst(t *testing.T) {
	l := newLifecycle(t)
	ctx := context.Background()
	order := l.createOrder(t, domain.NewOrderLine{ProductID: l.p1, Quantity: 5})
	_, err := l.orders.SetStatus(ctx, order.ID, domain.OrderDelivered)
	require.NoError(t, err)
	require.Equal(t, 5, databasetest.StockOf(t, l.db, l.p1))

	require.NoError(t, l.orders.Delete(ctx, order.ID))

	assert.Equal(t, 0, databasetest.StockOf(t, l.db, l.p1))
	assert.Zero(t, databasetest.CountRows(t, l.db, "purchase_orders", "id = ?", order.ID))
	assert.Zero(t, databasetest.CountRows(t, l.db, "order_lines", "order_id = ?", order.ID))
}

func TestDelete_PendingOrderLeavesStockUntouched(t *testing.T) {
	l := newLifecycle(t)
	ctx := context.Background()
	_, err := l.ledger.ApplyMovement(ctx, l.p1, 5, "entrada")
	require.NoError(t, err)
	order := l.createOrder(t, domain.NewOrderLine{ProductID: l.p1, Quantity: 5})

	require.NoError(t, l.orders.Delete(ctx, order.ID))

	assert.Equal(t, 5, databasetest.StockOf(t, l.db, l.p1))
	assert.Zero(t, databasetest.CountRows(t, l.db, "order_lines", "order_id = ?", order.ID))
}

func TestDelete_DeliveredOrderWithConsumedStockFails(t *testing.T) {
	l := newLifecycle(t)
	ctx := context.Background()
	order := l.createOrder(t, domain.NewOrderLine{ProductID: l.p1, Quantity: 5})
	_, err := l.orders.SetStatus(ctx, order.ID, domain.OrderDelivered)
	require.NoError(t, err)
	_, err = l.ledger.ApplyMovement(ctx, l.p1, -1, "consumo")
	require.NoError(t, err)

	err = l.orders.Delete(ctx, order.ID)

	assert.IsType(t, &apperror.StockConflictError{}, err)
	assert.Equal(t, 1, databasetest.CountRows(t, l.db, "purchase_orders", "id = ?", order.ID))
	assert.Equal(t, 4, databasetest.StockOf(t, l.db, l.p1))
}

func TestList_FiltersByProductAndStatus(t *testing.T) {
	l := newLifecycle(t)
	ctx := context.Background()
	withP1 := l.createOrder(t, domain.NewOrderLine{ProductID: l.p1, Quantity: 1})
	l.createOrder(t, domain.NewOrderLine{ProductID: l.p2, Quantity: 1})
	_, err := l.orders.SetStatus(ctx, withP1.ID, domain.OrderInProgress)
	require.NoError(t, err)

	byProduct, err := l.orders.List(ctx, domain.OrderFilter{ProductID: l.p1})
	require.NoError(t, err)
	require.Len(t, byProduct, 1)
	assert.Equal(t, withP1.ID, byProduct[0].ID)
	assert.Len(t, byProduct[0].Lines, 1)

	pending, err := l.orders.List(ctx, domain.OrderFilter{Status: domain.OrderPending})
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestUpdate_ChangesNotesWithoutTouchingStatus(t *testing.T) {
	l := newLifecycle(t)
	ctx := context.Background()
	order := l.createOrder(t, domain.NewOrderLine{ProductID: l.p1, Quantity: 1})
	notes := "entregar pela manhã"

	updated, err := l.orders.Update(ctx, order.ID, domain.PurchaseOrderPatch{Notes: &notes})

	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, domain.OrderPending, updated.Status)
	assert.Equal(t, order.Version+1, updated.Version)
}

// failingStatusRepo grava tudo normalmente, exceto a troca de status.
type failingStatusRepo struct {
	*orderrepo.OrderRepository
	err error
}

func (r failingStatusRepo) UpdateStatus(context.Context, string, domain.OrderStatus, int) error {
	return r.err
}

func TestSetStatus_StatusWriteFailureRollsBackStock(t *testing.T) {
	writeErr := apperror.NewDBError("Falha ao atualizar status", errors.New("disk full"))
	l := newLifecycleWithRepo(t, func(r *orderrepo.OrderRepository) orderservice.OrderRepository {
		return failingStatusRepo{OrderRepository: r, err: writeErr}
	})
	ctx := context.Background()
	order := l.createOrder(t, domain.NewOrderLine{ProductID: l.p1, Quantity: 5}, domain.NewOrderLine{ProductID: l.p2, Quantity: 2})

	ch, cancel := l.hub.Subscribe()
	defer cancel()

	_, err := l.orders.SetStatus(ctx, order.ID, domain.OrderDelivered)
	require.Error(t, err)
	assert.ErrorIs(t, err, writeErr)

	assert.Equal(t, 0, databasetest.StockOf(t, l.db, l.p1))
	assert.Equal(t, 0, databasetest.StockOf(t, l.db, l.p2))
	assert.Zero(t, databasetest.CountRows(t, l.db, "stock_movements", "1 = 1"))

	current, err := l.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, current.Status)

	// A trilha de auditoria também volta atrás.
	movements, err := l.ledger.ListMovements(ctx, domain.MovementFilter{ProductID: l.p1})
	require.NoError(t, err)
	assert.Empty(t, movements)

	select {
	case evt := <-ch:
		t.Fatalf("notificação inesperada após rollback: %+v", evt)
	default:
	}
}
