package report

import (
	"context"
	"net/http"

	"stockroom/internal/api/response"
	"stockroom/internal/domain"
	"stockroom/internal/pkg/logger"
)

type ReportService interface {
	Summary(ctx context.Context, filter domain.ReportFilter) (domain.StockReport, error)
}

type Handler struct {
	Service ReportService
	Logger  logger.Logger
}

func NewHandler(svc ReportService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// SummaryHandler lida com GET /v1/reports/summary?category_id=&since=.
// @Summary Resumo do estoque
// @Description Com since, considera apenas produtos presentes em pedidos datados a partir dessa data.
// @Tags reports
// @Produce json
// @Param category_id query string false "Filtra por categoria"
// @Param since query string false "Data inicial do período (AAAA-MM-DD)"
// @Success 200 {object} domain.StockReport
// @Security ApiKeyAuth
// @Router /reports/summary [get]
func (h *Handler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	since, err := response.Time(r, "since")
	if err != nil {
		response.Handle(h.Logger, w, r, nil, err, http.StatusOK)
		return
	}

	report, err := h.Service.Summary(r.Context(), domain.ReportFilter{
		CategoryID: r.URL.Query().Get("category_id"),
		Since:      since,
	})
	response.Handle(h.Logger, w, r, report, err, http.StatusOK)
}
