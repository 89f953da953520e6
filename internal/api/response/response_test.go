package response_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/api/response"
	"stockroom/internal/domain"
	apperror "stockroom/internal/errors"
	"stockroom/internal/pkg/logger"
)

var log = logger.NewLoggerWithOutput("error", io.Discard)

func TestHandle_Success(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Handle(log, rec, httptest.NewRequest(http.MethodPost, "/v1/categories", nil),
		domain.Category{ID: "c-1", Name: "Ferramentas"}, nil, http.StatusCreated)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"Ferramentas"`)
}

func TestHandle_NoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Handle(log, rec, httptest.NewRequest(http.MethodDelete, "/v1/categories/c-1", nil), nil, nil, http.StatusNoContent)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandle_MapsErrors(t *testing.T) {
	cases := []struct {
		err      error
		status   int
		category string
	}{
		{apperror.NewValidationError("nome obrigatório"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{apperror.NewConflictError("versão desatualizada"), http.StatusConflict, "CONFLICT"},
		{apperror.NewInsufficientStockError("p-1", 1, -3), http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
		{apperror.NewTooManyRequestsError("calma"), http.StatusTooManyRequests, "RATE_LIMITED"},
		{errors.New("driver caiu"), http.StatusInternalServerError, "UNKNOWN_ERROR"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		response.Handle(log, rec, httptest.NewRequest(http.MethodGet, "/", nil), nil, tc.err, http.StatusOK)

		assert.Equal(t, tc.status, rec.Code)
		var body domain.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, tc.category, body.Category)
		assert.Equal(t, tc.status, body.Code)
		assert.NotEmpty(t, body.Message)
	}
}

func TestDecode_RejectsUnknownFieldsAndBadJSON(t *testing.T) {
	var dst domain.NewCategory
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"A","cor":"azul"}`))
	err := response.Decode(r, &dst)
	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	assert.Error(t, response.Decode(r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Parafusos"}`))
	require.NoError(t, response.Decode(r, &dst))
	assert.Equal(t, "Parafusos", dst.Name)
}

func TestID(t *testing.T) {
	r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/v1/products/abc", nil), map[string]string{"id": "abc"})
	assert.Equal(t, "abc", response.ID(r))
}

func TestPage(t *testing.T) {
	page, err := response.Page(httptest.NewRequest(http.MethodGet, "/?limit=1000&offset=20", nil))
	require.NoError(t, err)
	assert.Equal(t, domain.Page{Limit: 200, Offset: 20}, page)

	page, err = response.Page(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, domain.Page{}, page)

	_, err = response.Page(httptest.NewRequest(http.MethodGet, "/?limit=-1", nil))
	assert.Error(t, err)
	_, err = response.Page(httptest.NewRequest(http.MethodGet, "/?offset=x", nil))
	assert.Error(t, err)
}

func TestSort(t *testing.T) {
	assert.Equal(t, domain.Sort{Field: "name"}, response.Sort(httptest.NewRequest(http.MethodGet, "/?sort=name", nil)))
	assert.Equal(t, domain.Sort{Field: "quantity", Desc: true}, response.Sort(httptest.NewRequest(http.MethodGet, "/?sort=-quantity", nil)))
	assert.Equal(t, domain.Sort{}, response.Sort(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestTime(t *testing.T) {
	got, err := response.Time(httptest.NewRequest(http.MethodGet, "/?from=2024-05-02", nil), "from")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), *got)

	got, err = response.Time(httptest.NewRequest(http.MethodGet, "/?from=2024-05-02T10:00:00-03:00", nil), "from")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 2, 13, 0, 0, 0, time.UTC), *got)

	got, err = response.Time(httptest.NewRequest(http.MethodGet, "/", nil), "from")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = response.Time(httptest.NewRequest(http.MethodGet, "/?from=02/05/2024", nil), "from")
	assert.Error(t, err)
}

func TestBool(t *testing.T) {
	b, err := response.Bool(httptest.NewRequest(http.MethodGet, "/?low=true", nil), "low")
	require.NoError(t, err)
	assert.True(t, b)

	b, err = response.Bool(httptest.NewRequest(http.MethodGet, "/", nil), "low")
	require.NoError(t, err)
	assert.False(t, b)

	_, err = response.Bool(httptest.NewRequest(http.MethodGet, "/?low=talvez", nil), "low")
	assert.Error(t, err)
}
