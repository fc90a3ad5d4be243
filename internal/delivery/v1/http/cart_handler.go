package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	cartUC usecase.CartUC
	logger logger.Logger
}

func NewCartHandler(cartUC usecase.CartUC, logger logger.Logger) *CartHandler {
	return &CartHandler{cartUC: cartUC, logger: logger}
}

// get
//
//	@Summary	Корзина текущего пользователя
//	@Tags		cart
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	CartResponse
//	@Router		/cart [get]
func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	view, err := h.cartUC.Get(r.Context(), sessionFrom(r.Context()).Username)
	if err != nil {
		h.logger.Errorf(err, "cart read failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(view))
}

// addItem
//
//	@Summary		Добавление товара в корзину
//	@Description	Цена фиксируется в момент добавления; quantity по умолчанию 1
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		AddCartItemRequest	true	"Позиция"
//	@Success		200		{object}	CartResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/cart/items [post]
func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var body AddCartItemRequest
	if err := decodeJSON(w, r, &body); err != nil {
		WriteError(w, err)
		return
	}

	quantity := domain.MinQuantity
	if body.Quantity != nil {
		quantity = *body.Quantity
	}

	owner := sessionFrom(r.Context()).Username
	view, err := h.cartUC.AddItem(r.Context(), usecase.NewAddCartItemReq(owner, body.Product, quantity))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(view))
}

// removeItem
//
//	@Summary	Удаление позиции корзины по индексу (с нуля)
//	@Tags		cart
//	@Produce	json
//	@Security	BearerAuth
//	@Param		index	path		int	true	"Индекс позиции"
//	@Success	200		{object}	CartResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/cart/items/{index} [delete]
func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		WriteError(w, e.ErrInvalidCartIndex)
		return
	}

	view, err := h.cartUC.RemoveItem(r.Context(), sessionFrom(r.Context()).Username, index)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(view))
}

// clear
//
//	@Summary	Очистка корзины
//	@Tags		cart
//	@Security	BearerAuth
//	@Success	204
//	@Router		/cart [delete]
func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.cartUC.Clear(r.Context(), sessionFrom(r.Context()).Username); err != nil {
		h.logger.Errorf(err, "cart clear failed")
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
