package http

import (
	"net/http"

	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	catalogUC usecase.CatalogUC
	logger    logger.Logger
}

func NewProductHandler(catalogUC usecase.CatalogUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{catalogUC: catalogUC, logger: logger}
}

// search
//
//	@Summary		Поиск товаров по подстроке
//	@Description	Возвращает имена доступных товаров; запрос короче 2 символов даёт пустой список
//	@Tags			products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			q		query		string	true	"Запрос"
//	@Param			limit	query		int		false	"Максимум результатов"
//	@Success		200		{array}		string
//	@Router			/products/search [get]
func (h *ProductHandler) search(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r.URL.Query().Get("limit"), "limit")
	if err != nil {
		WriteError(w, err)
		return
	}

	names, err := h.catalogUC.SearchProducts(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.logger.Errorf(err, "product search failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, names)
}

// list
//
//	@Summary	Каталог товаров
//	@Tags		products
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	ProductResponse
//	@Router		/products [get]
func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogUC.ListProducts(r.Context())
	if err != nil {
		h.logger.Errorf(err, "product list failed")
		WriteError(w, err)
		return
	}

	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}

	WriteSuccess(w, http.StatusOK, out)
}

// get
//
//	@Summary		Карточка товара
//	@Description	Точное совпадение, затем без учёта регистра, затем подстрока
//	@Tags			products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			name	path		string	true	"Имя товара"
//	@Success		200		{object}	ProductResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/products/{name} [get]
func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	product, found, err := h.catalogUC.FindProduct(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.logger.Errorf(err, "product lookup failed")
		WriteError(w, err)
		return
	}
	if !found {
		WriteError(w, e.ErrProductNotFound)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// create
//
//	@Summary	Добавление товара
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		ProductRequest	true	"Товар"
//	@Success	201		{object}	ProductResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Router		/products [post]
func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	product, err := h.catalogUC.CreateProduct(r.Context(), req)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponse(product))
}

// update
//
//	@Summary	Изменение товара
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		name	path		string			true	"Текущее имя товара"
//	@Param		body	body		ProductRequest	true	"Новые данные"
//	@Success	200		{object}	ProductResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/products/{name} [put]
func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	product, err := h.catalogUC.UpdateProduct(r.Context(), chi.URLParam(r, "name"), req)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// delete
//
//	@Summary	Удаление товара
//	@Tags		products
//	@Security	BearerAuth
//	@Param		name	path	string	true	"Имя товара"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{name} [delete]
func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogUC.DeleteProduct(r.Context(), chi.URLParam(r, "name")); err != nil {
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (*usecase.ProductReq, bool) {
	var body ProductRequest
	if err := decodeJSON(w, r, &body); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return nil, false
	}

	req, err := body.toUseCase()
	if err != nil {
		WriteError(w, err)
		return nil, false
	}

	return req, true
}
