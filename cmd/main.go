package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stockroom/config"
	"stockroom/internal/api/category"
	"stockroom/internal/api/events"
	"stockroom/internal/api/location"
	"stockroom/internal/api/order"
	"stockroom/internal/api/product"
	"stockroom/internal/api/report"
	"stockroom/internal/api/router"
	"stockroom/internal/api/stock"
	"stockroom/internal/api/supplier"
	"stockroom/internal/api/user"
	"stockroom/internal/app"
	"stockroom/internal/pkg/cache"
	"stockroom/internal/pkg/database"
	"stockroom/internal/pkg/logger"
)

// @title Stockroom API
// @version 1.0
// @description Estoque, pedidos de compra e autenticação do Stockroom.
// @BasePath /v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	stdlog.Println("⚡ Inicializando serviço Stockroom...")
	// Sem .env as variáveis podem vir do ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		stdlog.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment})

	// 1. Infraestrutura
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão com o banco estabelecida.", map[string]interface{}{"driver": db.DriverName()})

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	err = database.Migrate(migrateCtx, db)
	cancelMigrate()
	if err != nil {
		log.Fatal("Falha ao aplicar migrações.", err)
	}

	cacheClient, err := cache.NewClient(cfg.RedisAddr)
	if err != nil {
		log.Fatal("Falha ao conectar ao cache.", err)
	}
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR vazio, usando cache em memória.", nil)
	}

	// 2. Injeção de dependências: Repository -> Service -> Handler
	svc := app.New(cfg, db, cacheClient, log)

	handler, err := router.NewRouter(router.Handlers{
		Products:   product.NewHandler(svc.Products, log),
		Categories: category.NewHandler(svc.Categories, log),
		Suppliers:  supplier.NewHandler(svc.Suppliers, log),
		Locations:  location.NewHandler(svc.Locations, log),
		Stock:      stock.NewHandler(svc.Stock, log),
		Orders:     order.NewHandler(svc.Orders, log),
		Reports:    report.NewHandler(svc.Reports, log),
		Users:      user.NewHandler(svc.Users, log),
		Events:     events.NewHandler(svc.Events, log),
	}, router.Options{
		Auth:           svc.Users,
		LoginRateLimit: cfg.LoginRateLimit,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Falha ao configurar o roteador.", err)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 3. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor Stockroom ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
