package http

import (
	"net/http"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type SaleHandler struct {
	saleUC usecase.SaleUC
	logger logger.Logger
}

func NewSaleHandler(saleUC usecase.SaleUC, logger logger.Logger) *SaleHandler {
	return &SaleHandler{saleUC: saleUC, logger: logger}
}

// finalize
//
//	@Summary		Проведение продажи по корзине
//	@Description	Выдаёт номер продажи и клиента, пишет строки журнала и очищает корзину.
//	@Description	Терминал берётся из сессии; администратор указывает его в теле запроса.
//	@Tags			sales
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		FinalizeSaleRequest	false	"Терминал"
//	@Success		201		{object}	FinalizeSaleResponse
//	@Failure		400		{object}	ErrorResponse	"Пустая корзина или неверные позиции"
//	@Failure		503		{object}	ErrorResponse	"Терминал занят, повторите запрос"
//	@Router			/sales [post]
func (h *SaleHandler) finalize(w http.ResponseWriter, r *http.Request) {
	var body FinalizeSaleRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &body); err != nil {
			WriteError(w, err)
			return
		}
	}

	session := sessionFrom(r.Context())
	terminal, err := allowedTerminal(session, body.Terminal)
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.saleUC.FinalizeSale(r.Context(), usecase.NewFinalizeSaleReq(session.Username, terminal, session.Username))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toFinalizeSaleResponse(res))
}

// list
//
//	@Summary	Журнал продаж
//	@Tags		sales
//	@Produce	json
//	@Security	BearerAuth
//	@Param		terminal	query	string	false	"Терминал или ALL"
//	@Param		date		query	string	false	"День YYYY-MM-DD"
//	@Success	200			{array}	SaleLineResponse
//	@Router		/sales [get]
func (h *SaleHandler) list(w http.ResponseWriter, r *http.Request) {
	terminal, err := allowedTerminal(sessionFrom(r.Context()), r.URL.Query().Get("terminal"))
	if err != nil {
		WriteError(w, err)
		return
	}

	lines, err := h.saleUC.ListSales(r.Context(), domain.LedgerFilter{
		Terminal: terminal,
		Date:     r.URL.Query().Get("date"),
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toSaleLinesResponse(lines))
}

// nextClient
//
//	@Summary	Идентификатор клиента для следующей продажи
//	@Tags		terminals
//	@Produce	json
//	@Security	BearerAuth
//	@Param		terminal	path		string	true	"Терминал"
//	@Success	200			{object}	NextClientResponse
//	@Router		/terminals/{terminal}/next-client [get]
func (h *SaleHandler) nextClient(w http.ResponseWriter, r *http.Request) {
	terminal, err := allowedTerminal(sessionFrom(r.Context()), chi.URLParam(r, "terminal"))
	if err != nil {
		WriteError(w, err)
		return
	}

	clientID, err := h.saleUC.PeekNextClientID(r.Context(), terminal)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NextClientResponse{Terminal: terminal.String(), CurrentClientID: clientID})
}

// allocate
//
//	@Summary		Выдача пары номеров без продажи
//	@Description	Продвигает счётчики терминала (и ALL). Только для администратора.
//	@Tags			terminals
//	@Produce		json
//	@Security		BearerAuth
//	@Param			terminal	path		string	true	"Терминал или ALL"
//	@Success		201			{object}	AllocationResponse
//	@Router			/terminals/{terminal}/allocate [post]
func (h *SaleHandler) allocate(w http.ResponseWriter, r *http.Request) {
	terminal := domain.ParseTerminalID(chi.URLParam(r, "terminal"))
	if terminal == "" {
		WriteError(w, e.ErrUnknownTerminal)
		return
	}

	alloc, err := h.saleUC.NextSaleID(r.Context(), terminal)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Infof("Counters advanced manually. terminal: %s, sale_id: %d, by: %s",
		terminal, alloc.SaleID, sessionFrom(r.Context()).Username)

	WriteSuccess(w, http.StatusCreated, AllocationResponse{
		Terminal: alloc.Terminal.String(),
		SaleID:   alloc.SaleID,
		ClientID: alloc.ClientID(),
	})
}
