package stockservice_test

import (
	"context"
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
	"stockroom/internal/repository/productrepo"
	"stockroom/internal/repository/stockrepo"
	"stockroom/internal/service/stockservice"
)

type ledgerFixture struct {
	db      *sqlx.DB
	svc     *stockservice.Service
	hub     *events.Hub
	product string
}

func newLedger(t *testing.T, initial int) ledgerFixture {
	t.Helper()

	db := databasetest.NewDB(t)
	log := logger.NewLogger("error")
	memCache := cache.NewMemoryClient()
	hub := events.NewHub(16, log)

	repo := stockrepo.NewStockRepository(databasetest.NewTxManager(db), memCache, 5*time.Second, log)
	products := productrepo.NewProductRepository(db, memCache, 5*time.Second, time.Minute, log)

	category := databasetest.InsertCategory(t, db, "Ferragens")
	product := databasetest.InsertProduct(t, db, category, "Parafuso", initial)

	return ledgerFixture{
		db:      db,
		svc:     stockservice.NewService(repo, products, hub, log),
		hub:     hub,
		product: product,
	}
}

func TestLedger_RejectsNegativeStockWithoutWriting(t *testing.T) {
	f := newLedger(t, 3)
	ctx := context.Background()

	_, err := f.svc.ApplyMovement(ctx, f.product, -4, "saída")

	insufficient, ok := apperror.AsInsufficientStock(err)
	require.True(t, ok)
	assert.Equal(t, 3, insufficient.Available)
	assert.Equal(t, -4, insufficient.Delta)
	assert.Equal(t, 3, databasetest.StockOf(t, f.db, f.product))
	assert.Zero(t, databasetest.CountRows(t, f.db, "stock_movements", "product_id = ?", f.product))
}

func TestLedger_StockNeverNegativeOverSequence(t *testing.T) {
	f := newLedger(t, 0)
	ctx := context.Background()

	for _, delta := range []int{5, -3, -3, 4, -6, -1, 2} {
		_, _ = f.svc.ApplyMovement(ctx, f.product, delta, "sequência")
		assert.GreaterOrEqual(t, databasetest.StockOf(t, f.db, f.product), 0)
	}
	// 5 -3 (2) -3 recusado, +4 (6) -6 (0) -1 recusado, +2 (2)
	assert.Equal(t, 2, databasetest.StockOf(t, f.db, f.product))
}

func TestLedger_ReverseRestoresQuantity(t *testing.T) {
	f := newLedger(t, 10)
	ctx := context.Background()

	_, err := f.svc.ApplyMovement(ctx, f.product, -7, "venda")
	require.NoError(t, err)
	result, err := f.svc.ReverseMovement(ctx, f.product, -7)
	require.NoError(t, err)

	assert.Equal(t, 10, result.Product.QuantityInStock)
	assert.Equal(t, 10, databasetest.StockOf(t, f.db, f.product))
}

func TestLedger_ReverseFailsWhenStockWasConsumed(t *testing.T) {
	f := newLedger(t, 0)
	ctx := context.Background()

	_, err := f.svc.ApplyMovement(ctx, f.product, 5, "entrada")
	require.NoError(t, err)
	_, err = f.svc.ApplyMovement(ctx, f.product, -4, "consumo")
	require.NoError(t, err)

	_, err = f.svc.ReverseMovement(ctx, f.product, 5)

	_, ok := apperror.AsInsufficientStock(err)
	assert.True(t, ok)
	assert.Equal(t, 1, databasetest.StockOf(t, f.db, f.product))
}

func TestLedger_RecordsAuditTrail(t *testing.T) {
	f := newLedger(t, 0)
	ctx := domain.WithActor(context.Background(), "user-42")

	_, err := f.svc.ApplyMovement(ctx, f.product, 8, "recebimento")
	require.NoError(t, err)
	_, err = f.svc.ReverseMovement(ctx, f.product, 3)
	require.NoError(t, err)

	movements, err := f.svc.ListMovements(context.Background(), domain.MovementFilter{
		ProductID: f.product,
		Sort:      domain.Sort{Field: "created_at"},
	})
	require.NoError(t, err)
	require.Len(t, movements, 2)

	assert.Equal(t, 8, movements[0].Delta)
	assert.Equal(t, 8, movements[0].QuantityAfter)
	assert.Equal(t, "recebimento", movements[0].Reason)
	assert.Equal(t, domain.RefManual, movements[0].ReferenceType)
	assert.Equal(t, "user-42", movements[0].CreatedBy)

	assert.Equal(t, -3, movements[1].Delta)
	assert.Equal(t, 5, movements[1].QuantityAfter)
	assert.Equal(t, domain.RefReversal, movements[1].ReferenceType)
}

func TestLedger_PublishesStockChanged(t *testing.T) {
	f := newLedger(t, 3)
	ch, cancel := f.hub.Subscribe()
	defer cancel()

	_, err := f.svc.ApplyMovement(context.Background(), f.product, -2, "saída")
	require.NoError(t, err)

	select {
	case evt := <-ch:
		assert.Equal(t, domain.EventStockChanged, evt.Type)
		payload := evt.Payload.(domain.StockChanged)
		assert.Equal(t, 1, payload.Quantity)
		assert.True(t, payload.LowStock)
	case <-time.After(time.Second):
		t.Fatal("notificação não recebida")
	}
}

func TestLedger_LowStockListsProductsAtThreshold(t *testing.T) {
	f := newLedger(t, 2) // limite de alerta = 2
	category := databasetest.InsertCategory(t, f.db, "Outros")
	databasetest.InsertProduct(t, f.db, category, "Arruela", 50)

	low, err := f.svc.LowStock(context.Background(), domain.Page{})

	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, f.product, low[0].ID)
}
