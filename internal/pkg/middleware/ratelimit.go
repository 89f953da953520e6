package middleware

import (
	"fmt"
	"net/http"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	apperror "stockroom/internal/errors"
)

// RateLimiter limita requisições por IP. rate usa o formato do ulule ("10-M" = 10 por minuto).
// Respostas incluem os headers X-RateLimit-*; o excesso recebe 429 no formato padrão da API.
func RateLimiter(rate string, writeErr ErrorWriter) (func(http.Handler) http.Handler, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("taxa de rate limit inválida %q: %w", rate, err)
	}

	instance := limiter.New(memory.NewStore(), parsed)
	mw := stdlib.NewMiddleware(instance,
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			writeErr(w, r, apperror.NewTooManyRequestsError("Muitas tentativas. Aguarde e tente novamente."))
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			writeErr(w, r, apperror.NewInternalError("Falha no controle de taxa.", err))
		}),
	)
	return mw.Handler, nil
}
