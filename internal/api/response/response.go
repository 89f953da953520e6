// Package response padroniza as respostas JSON e a leitura de parâmetros dos handlers.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
)

const maxPageSize = 200

// Handle processa erros de serviço e envia respostas padronizadas ao cliente.
func Handle(log logger.Logger, w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)

		log.Debug("Requisição concluída com sucesso", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": successStatus,
		})

		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				log.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		log.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		log.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}

// Decode lê o corpo JSON em dst. Campos desconhecidos são rejeitados.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.NewValidationError("Payload inválido. Verifique o formato JSON.")
	}
	return nil
}

// ID devolve a variável {id} da rota.
func ID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// Page lê limit e offset da query string.
func Page(r *http.Request) (domain.Page, error) {
	q := r.URL.Query()
	var page domain.Page

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page, apperror.NewValidationError("limit deve ser um inteiro não negativo.")
		}
		page.Limit = min(n, maxPageSize)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page, apperror.NewValidationError("offset deve ser um inteiro não negativo.")
		}
		page.Offset = n
	}
	return page, nil
}

// Sort lê ?sort=campo ou ?sort=-campo (descendente).
func Sort(r *http.Request) domain.Sort {
	v := strings.TrimSpace(r.URL.Query().Get("sort"))
	if strings.HasPrefix(v, "-") {
		return domain.Sort{Field: v[1:], Desc: true}
	}
	return domain.Sort{Field: v}
}

// Time lê um parâmetro RFC 3339 ou data simples (2006-01-02). Ausente devolve nil.
func Time(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperror.NewValidationError(fmt.Sprintf("%s deve ser uma data RFC 3339 ou AAAA-MM-DD.", name))
}

// Bool lê um parâmetro booleano; ausente é false.
func Bool(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperror.NewValidationError(fmt.Sprintf("%s deve ser true ou false.", name))
	}
	return b, nil
}
