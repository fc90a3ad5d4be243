package http

import (
	"net/http"

	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type DashboardHandler struct {
	dashboardUC usecase.DashboardUC
	logger      logger.Logger
}

func NewDashboardHandler(dashboardUC usecase.DashboardUC, logger logger.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardUC: dashboardUC, logger: logger}
}

// overview
//
//	@Summary		Панель пользователя
//	@Description	Кассир видит свой терминал, администратор — общую статистику и разбивку по терминалам
//	@Tags			dashboard
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	DashboardResponse
//	@Router			/dashboard [get]
func (h *DashboardHandler) overview(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	stats, err := h.dashboardUC.Stats(r.Context(), session.Terminal)
	if err != nil {
		h.logger.Errorf(err, "dashboard stats failed. terminal: %s", session.Terminal)
		WriteError(w, err)
		return
	}

	res := DashboardResponse{Stats: toStatsResponse(stats)}
	if session.IsAdmin() {
		perTerminal, err := h.dashboardUC.StatsByTerminal(r.Context())
		if err != nil {
			h.logger.Errorf(err, "dashboard breakdown failed")
			WriteError(w, err)
			return
		}
		for i := range perTerminal {
			res.Terminals = append(res.Terminals, toStatsResponse(&perTerminal[i]))
		}
	}

	WriteSuccess(w, http.StatusOK, res)
}

// terminal
//
//	@Summary	Статистика терминала
//	@Tags		dashboard
//	@Produce	json
//	@Security	BearerAuth
//	@Param		terminal	path		string	true	"Терминал или ALL"
//	@Success	200			{object}	StatsResponse
//	@Failure	403			{object}	ErrorResponse
//	@Router		/dashboard/{terminal} [get]
func (h *DashboardHandler) terminal(w http.ResponseWriter, r *http.Request) {
	terminal, err := allowedTerminal(sessionFrom(r.Context()), chi.URLParam(r, "terminal"))
	if err != nil {
		WriteError(w, err)
		return
	}

	stats, err := h.dashboardUC.Stats(r.Context(), terminal)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toStatsResponse(stats))
}

// diagnostics
//
//	@Summary	Состояние системы
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	DiagnosticsResponse
//	@Router		/diagnostics [get]
func (h *DashboardHandler) diagnostics(w http.ResponseWriter, r *http.Request) {
	res, err := h.dashboardUC.Diagnostics(r.Context())
	if err != nil {
		h.logger.Errorf(err, "diagnostics failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, DiagnosticsResponse{
		Status:      res.Status,
		Products:    res.Products,
		LedgerLines: res.LedgerLines,
		Backend:     res.Backend,
		CheckedAt:   res.CheckedAt,
	})
}
