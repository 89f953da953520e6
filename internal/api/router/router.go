package router

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"stockroom/internal/api/category"
	"stockroom/internal/api/events"
	"stockroom/internal/api/location"
	"stockroom/internal/api/order"
	"stockroom/internal/api/product"
	"stockroom/internal/api/report"
	"stockroom/internal/api/response"
	"stockroom/internal/api/stock"
	"stockroom/internal/api/supplier"
	"stockroom/internal/api/user"
	"stockroom/internal/domain"
	"stockroom/internal/pkg/logger"
	"stockroom/internal/pkg/middleware"

	_ "stockroom/docs" // registra a especificação OpenAPI servida em /swagger/
)

// Handlers reúne os handlers já inicializados por injeção de dependências.
type Handlers struct {
	Products   *product.Handler
	Categories *category.Handler
	Suppliers  *supplier.Handler
	Locations  *location.Handler
	Stock      *stock.Handler
	Orders     *order.Handler
	Reports    *report.Handler
	Users      *user.Handler
	Events     *events.Handler
}

// Options configura autenticação e limites do roteador.
type Options struct {
	Auth           middleware.Authenticator
	LoginRateLimit string
	Logger         logger.Logger
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, opts Options) (http.Handler, error) {
	log := opts.Logger
	writeErr := func(w http.ResponseWriter, r *http.Request, err error) {
		response.Handle(log, w, r, nil, err, http.StatusOK)
	}

	loginLimiter, err := middleware.RateLimiter(opts.LoginRateLimit, writeErr)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	r.Use(requestLogger(log))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Rota não encontrada", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	})

	// --- Rotas públicas ---
	r.HandleFunc("/ping", PingHandler).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/auth/register", h.Users.RegisterUserHandler).Methods(http.MethodPost)
	v1.Handle("/auth/login", loginLimiter(http.HandlerFunc(h.Users.LoginUserHandler))).Methods(http.MethodPost)

	// --- Rotas autenticadas ---
	api := v1.NewRoute().Subrouter()
	api.Use(middleware.NewAuthMiddleware(opts.Auth, writeErr))

	only := func(roles ...domain.UserRole) func(http.HandlerFunc) http.Handler {
		gate := middleware.PermissionMiddleware(writeErr, roles...)
		return func(fn http.HandlerFunc) http.Handler { return gate(fn) }
	}
	manager := only(domain.RoleStockManager)
	mover := only(domain.RoleStocker, domain.RoleStockManager)
	purchasing := only(domain.RolePurchasingManager, domain.RoleStockManager)

	api.HandleFunc("/auth/logout", h.Users.LogoutHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", h.Users.MeHandler).Methods(http.MethodGet)
	api.HandleFunc("/auth/password", h.Users.ChangePasswordHandler).Methods(http.MethodPut)

	// Catálogo
	api.HandleFunc("/products", h.Products.ListProductsHandler).Methods(http.MethodGet)
	api.Handle("/products", manager(h.Products.CreateProductHandler)).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", h.Products.GetProductByIDHandler).Methods(http.MethodGet)
	api.Handle("/products/{id}", manager(h.Products.UpdateProductHandler)).Methods(http.MethodPatch)
	api.Handle("/products/{id}", manager(h.Products.DeleteProductHandler)).Methods(http.MethodDelete)

	api.HandleFunc("/categories", h.Categories.ListCategoriesHandler).Methods(http.MethodGet)
	api.Handle("/categories", manager(h.Categories.CreateCategoryHandler)).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id}", h.Categories.GetCategoryHandler).Methods(http.MethodGet)
	api.Handle("/categories/{id}", manager(h.Categories.UpdateCategoryHandler)).Methods(http.MethodPatch)
	api.Handle("/categories/{id}", manager(h.Categories.DeleteCategoryHandler)).Methods(http.MethodDelete)

	api.HandleFunc("/locations", h.Locations.ListLocationsHandler).Methods(http.MethodGet)
	api.Handle("/locations", manager(h.Locations.CreateLocationHandler)).Methods(http.MethodPost)
	api.HandleFunc("/locations/{id}", h.Locations.GetLocationByIDHandler).Methods(http.MethodGet)
	api.Handle("/locations/{id}", manager(h.Locations.UpdateLocationHandler)).Methods(http.MethodPatch)
	api.Handle("/locations/{id}", manager(h.Locations.DeleteLocationHandler)).Methods(http.MethodDelete)

	// Estoque
	api.HandleFunc("/stock/movements", h.Stock.ListMovementsHandler).Methods(http.MethodGet)
	api.Handle("/stock/movements", mover(h.Stock.MoveStockHandler)).Methods(http.MethodPost)
	api.HandleFunc("/stock/low", h.Stock.LowStockHandler).Methods(http.MethodGet)

	// Compras
	api.HandleFunc("/suppliers", h.Suppliers.ListSuppliersHandler).Methods(http.MethodGet)
	api.Handle("/suppliers", purchasing(h.Suppliers.CreateSupplierHandler)).Methods(http.MethodPost)
	api.HandleFunc("/suppliers/{id}", h.Suppliers.GetSupplierHandler).Methods(http.MethodGet)
	api.Handle("/suppliers/{id}", purchasing(h.Suppliers.UpdateSupplierHandler)).Methods(http.MethodPatch)
	api.Handle("/suppliers/{id}", purchasing(h.Suppliers.DeleteSupplierHandler)).Methods(http.MethodDelete)

	api.HandleFunc("/orders", h.Orders.ListOrdersHandler).Methods(http.MethodGet)
	api.Handle("/orders", purchasing(h.Orders.CreateOrderHandler)).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", h.Orders.GetOrderHandler).Methods(http.MethodGet)
	api.Handle("/orders/{id}", purchasing(h.Orders.UpdateOrderHandler)).Methods(http.MethodPatch)
	api.Handle("/orders/{id}", purchasing(h.Orders.DeleteOrderHandler)).Methods(http.MethodDelete)
	api.Handle("/orders/{id}/status", purchasing(h.Orders.SetOrderStatusHandler)).Methods(http.MethodPut)

	// Relatórios e notificações
	api.HandleFunc("/reports/summary", h.Reports.SummaryHandler).Methods(http.MethodGet)
	api.HandleFunc("/events", h.Events.StreamHandler).Methods(http.MethodGet)

	// Administração de usuários
	api.Handle("/users", manager(h.Users.ListUsersHandler)).Methods(http.MethodGet)
	api.Handle("/users", manager(h.Users.CreateUserHandler)).Methods(http.MethodPost)
	api.Handle("/users/{id}", manager(h.Users.GetUserHandler)).Methods(http.MethodGet)
	api.Handle("/users/{id}", manager(h.Users.UpdateUserHandler)).Methods(http.MethodPatch)
	api.Handle("/users/{id}", manager(h.Users.DeleteUserHandler)).Methods(http.MethodDelete)

	return r, nil
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap expõe o writer original ao http.ResponseController (flush do SSE).
func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

func requestLogger(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.Info("Requisição HTTP", map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}
