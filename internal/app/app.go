// Package app monta a árvore de dependências (Repository -> Service) compartilhada
// pelo servidor HTTP e pelo stockctl.
package app

import (
	"github.com/jmoiron/sqlx"

	"stockroom/config"
	"stockroom/internal/pkg/cache"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/events"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/token"
	"stockroom/internal/repository/categoryrepo"
	"stockroom/internal/repository/locationrepo"
	"stockroom/internal/repository/orderrepo"
	"stockroom/internal/repository/productrepo"
	"stockroom/internal/repository/stockrepo"
	"stockroom/internal/repository/supplierrepo"
	"stockroom/internal/repository/userrepo"
	"stockroom/internal/service/categoryservice"
	"stockroom/internal/service/locationservice"
	"stockroom/internal/service/orderservice"
	"stockroom/internal/service/productservice"
	"stockroom/internal/service/reportservice"
	"stockroom/internal/service/stockservice"
	"stockroom/internal/service/supplierservice"
	"stockroom/internal/service/userservice"
)

// Services agrupa os serviços de negócio prontos para uso.
type Services struct {
	Products   *productservice.Service
	Categories *categoryservice.Service
	Suppliers  *supplierservice.Service
	Locations  *locationservice.Service
	Stock      *stockservice.Service
	Orders     *orderservice.Service
	Reports    *reportservice.Service
	Users      *userservice.UserService
	Events     *events.Hub
}

// New injeta as dependências na ordem Repository -> Service.
func New(cfg *config.Config, db *sqlx.DB, cacheClient cache.Client, log logger.Logger) *Services {
	tx := database.NewTxManager(db, cfg.TxMaxRetries, cfg.TxRetryBase, log)
	hub := events.NewHub(64, log)

	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)
	categoryRepo := categoryrepo.NewCategoryRepository(db, cfg.DBTimeout, log)
	supplierRepo := supplierrepo.NewSupplierRepository(db, cfg.DBTimeout, log)
	orderRepo := orderrepo.NewOrderRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	ledger := stockservice.NewService(stockrepo.NewStockRepository(tx, cacheClient, cfg.DBTimeout, log), productRepo, hub, log)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	svc := &Services{
		Products:   productservice.NewService(productRepo, categoryRepo, ledger, tx, hub, log),
		Categories: categoryservice.NewService(categoryRepo, hub, log),
		Suppliers:  supplierservice.NewService(supplierRepo, hub, log),
		Locations:  locationservice.NewService(locationrepo.NewLocationRepository(db, cfg.DBTimeout, log), hub, log),
		Stock:      ledger,
		Orders:     orderservice.NewService(orderRepo, supplierRepo, ledger, tx, hub, log),
		Reports:    reportservice.NewService(productRepo, categoryRepo, orderRepo, log),
		Users:      userservice.NewService(userrepo.NewUserRepository(db, cfg.DBTimeout, log), tokenSvc, cacheClient, hub, log),
		Events:     hub,
	}
	log.Debug("Serviços inicializados.", nil)
	return svc
}
