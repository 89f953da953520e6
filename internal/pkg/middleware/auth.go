package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/token"
)

// ContextKey é o tipo das chaves que o middleware grava no contexto.
type ContextKey int

const (
	UserClaimsKey ContextKey = iota
)

// UserClaims representa os dados do usuário extraídos da sessão, anexados ao contexto.
type UserClaims struct {
	UserID    string
	Role      domain.UserRole
	SessionID string
}

// Authenticator valida o token e recusa sessões encerradas.
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (*token.CustomClaims, error)
}

// ErrorWriter escreve o erro no formato padrão da API.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// BearerToken extrai o token do header Authorization: Bearer <token>.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || strings.TrimSpace(tokenString) == "" {
		return "", false
	}
	return strings.TrimSpace(tokenString), true
}

// NewAuthMiddleware valida a sessão e anexa as claims e o autor das operações ao contexto.
func NewAuthMiddleware(auth Authenticator, writeErr ErrorWriter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := BearerToken(r)
			if !ok {
				writeErr(w, r, apperror.NewUnauthorizedError("Token de autorização ausente ou malformado."))
				return
			}

			claims, err := auth.Authenticate(r.Context(), tokenString)
			if err != nil {
				writeErr(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, UserClaims{
				UserID:    claims.UserID,
				Role:      domain.UserRole(claims.Role),
				SessionID: claims.ID,
			})
			ctx = domain.WithActor(ctx, claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserClaimsFromContext é uma função utilitária para extrair as claims no handler.
func GetUserClaimsFromContext(ctx context.Context) (UserClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(UserClaims)
	return claims, ok
}

// PermissionMiddleware libera a rota apenas para os papéis informados.
func PermissionMiddleware(writeErr ErrorWriter, requiredRoles ...domain.UserRole) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserClaimsFromContext(r.Context())
			if !ok {
				writeErr(w, r, apperror.NewUnauthorizedError("Autorização necessária. Token não processado."))
				return
			}

			if !slices.Contains(requiredRoles, claims.Role) {
				writeErr(w, r, apperror.NewForbiddenError("Você não tem a permissão necessária."))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
