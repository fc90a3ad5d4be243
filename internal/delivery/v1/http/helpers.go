package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/shopspring/decimal"
)

const (
	maxBodySize       = 1 << 20
	busyRetryAfterSec = 1
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Kind    e.Kind `json:"kind"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, kind e.Kind, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// ToHTTPResponse переводит категорию ошибки в HTTP-статус и сообщение для клиента.
func ToHTTPResponse(err error) (int, e.Kind, string) {
	kind := e.KindOf(err)

	switch kind {
	case e.KindValidation:
		return http.StatusBadRequest, kind, e.Message(err)
	case e.KindUnauthorized:
		return http.StatusUnauthorized, kind, e.Message(err)
	case e.KindForbidden:
		return http.StatusForbidden, kind, e.Message(err)
	case e.KindNotFound:
		return http.StatusNotFound, kind, e.Message(err)
	case e.KindBusy:
		return http.StatusServiceUnavailable, kind, e.Message(err)
	case e.KindUnknownTerminal, e.KindPersistence:
		return http.StatusInternalServerError, kind, e.Message(err)
	default:
		return http.StatusInternalServerError, e.KindInternal, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, kind, msg := ToHTTPResponse(err)
	if kind == e.KindBusy {
		w.Header().Set("Retry-After", strconv.Itoa(busyRetryAfterSec))
	}
	WriteSuccess(w, code, NewErrorResponse(code, kind, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса в dst, отклоняя неизвестные поля.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	return nil
}

// parsePrice разбирает цену из JSON-числа или строки ("599.99").
// Проверки знака и точности выполняет каталог.
func parsePrice(raw json.Number) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw.String())
	if s == "" {
		return decimal.Zero, e.ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, e.ErrInvalidPrice
	}

	return d, nil
}

// money выводит сумму JSON-числом с двумя знаками без потери точности.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func parseIntParam(s string, name string) (int, error) {
	if s == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, e.Wrap(name, e.ErrStatusBadRequest)
	}

	return n, nil
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "

	header := r.Header.Get("Authorization")
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}

	return ""
}
