package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError é a interface central para todos os erros customizados do Stockroom.
// Ela permite que o código externo (Handler, CLI) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION_ERROR", "NOT_FOUND", "PERSISTENCE_ERROR")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (erro original)
}

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa falhas de validação de dados de entrada.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um conflito na regra de negócio (OCC, referência ainda em uso).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// DuplicateEmailError indica que o email já pertence a outro usuário (comparação exata).
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("Email duplicado: o email '%s' já está em uso.", e.Email)
}
func (e *DuplicateEmailError) Category() string { return "DUPLICATE_EMAIL" }
func (e *DuplicateEmailError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *DuplicateEmailError) Unwrap() error    { return nil }

// NewDuplicateEmailError cria um erro de email duplicado.
func NewDuplicateEmailError(email string) AppError {
	return &DuplicateEmailError{Email: email}
}

// InsufficientStockError indica que um movimento deixaria o estoque negativo.
type InsufficientStockError struct {
	ProductID string
	Available int
	Delta     int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente: produto %s tem %d unidades, movimento de %d deixaria o estoque negativo.",
		e.ProductID, e.Available, e.Delta)
}
func (e *InsufficientStockError) Category() string { return "INSUFFICIENT_STOCK" }
func (e *InsufficientStockError) HTTPStatus() int  { return http.StatusUnprocessableEntity } // 422
func (e *InsufficientStockError) Unwrap() error    { return nil }

// NewInsufficientStockError cria um erro de estoque insuficiente.
func NewInsufficientStockError(productID string, available, delta int) AppError {
	return &InsufficientStockError{ProductID: productID, Available: available, Delta: delta}
}

// StockConflictError agrega as falhas de estoque das linhas de um pedido.
// Nenhuma alteração do pedido é aplicada quando este erro é retornado.
type StockConflictError struct {
	OrderID string
	Lines   []*InsufficientStockError
}

func (e *StockConflictError) Error() string {
	parts := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		parts = append(parts, fmt.Sprintf("%s (disponível %d, movimento %d)", l.ProductID, l.Available, l.Delta))
	}
	return fmt.Sprintf("Conflito de estoque no pedido %s: %s", e.OrderID, strings.Join(parts, "; "))
}
func (e *StockConflictError) Category() string { return "STOCK_CONFLICT" }
func (e *StockConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *StockConflictError) Unwrap() error    { return nil }

// NewStockConflictError cria o erro agregado de um pedido.
func NewStockConflictError(orderID string, lines []*InsufficientStockError) AppError {
	return &StockConflictError{OrderID: orderID, Lines: lines}
}

// UnauthorizedError representa credenciais ausentes ou inválidas.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autenticado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um erro de autenticação.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// ForbiddenError representa uma sessão válida sem o papel necessário.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string    { return fmt.Sprintf("Acesso negado: %s", e.Msg) }
func (e *ForbiddenError) Category() string { return "FORBIDDEN" }
func (e *ForbiddenError) HTTPStatus() int  { return http.StatusForbidden } // 403
func (e *ForbiddenError) Unwrap() error    { return nil }

// NewForbiddenError cria um erro de autorização.
func NewForbiddenError(msg string) AppError {
	return &ForbiddenError{Msg: msg}
}

// TooManyRequestsError indica que o cliente excedeu o limite de requisições.
type TooManyRequestsError struct {
	Msg string
}

func (e *TooManyRequestsError) Error() string    { return fmt.Sprintf("Limite excedido: %s", e.Msg) }
func (e *TooManyRequestsError) Category() string { return "RATE_LIMITED" }
func (e *TooManyRequestsError) HTTPStatus() int  { return http.StatusTooManyRequests } // 429
func (e *TooManyRequestsError) Unwrap() error    { return nil }

func NewTooManyRequestsError(msg string) AppError {
	return &TooManyRequestsError{Msg: msg}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// PersistenceError representa falhas de I/O do armazenamento (driver SQL, commit, timeout).
type PersistenceError struct {
	Msg string
	Err error // Erro original do driver
}

func (e *PersistenceError) Error() string    { return fmt.Sprintf("Erro de Persistência: %s", e.Msg) }
func (e *PersistenceError) Category() string { return "PERSISTENCE_ERROR" }
func (e *PersistenceError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *PersistenceError) Unwrap() error    { return e.Err }

// NewDBError é o atalho usado pelos repositórios para encapsular falhas do DB.
func NewDBError(msg string, err error) AppError {
	if err == nil {
		return &PersistenceError{Msg: msg}
	}
	return &PersistenceError{Msg: fmt.Sprintf("%s (DB): %s", msg, err.Error()), Err: err}
}

// InternalError representa falhas inesperadas fora do armazenamento (hash, token, serialização).
type InternalError struct {
	Msg string
	Err error
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor.
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// --- Helpers ---

// IsNotFound informa se err (ou algum erro encapsulado) é um NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// AsInsufficientStock extrai um InsufficientStockError da cadeia de erros.
func AsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var target *InsufficientStockError
	ok := errors.As(err, &target)
	return target, ok
}

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP e corpo de resposta.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tratado como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}
