package e

import (
	"errors"
	"fmt"
)

// Kind — машинно-проверяемая категория ошибки.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindBusy            Kind = "system_busy"
	KindPersistence     Kind = "persistence"
	KindUnknownTerminal Kind = "unknown_terminal"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindInternal        Kind = "internal"
)

// Базовые ошибки по категориям. Конкретные ошибки оборачивают одну из них.
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrSystemBusy      = errors.New("system busy, try again")
	ErrPersistence     = errors.New("persistence error")
	ErrUnknownTerminal = errors.New("unknown terminal")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
)

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// 400 Bad Request
	ErrCartEmpty           = kindErr(ErrValidation, "cart empty")
	ErrCartFull            = kindErr(ErrValidation, "cart is full")
	ErrInvalidQuantity     = kindErr(ErrValidation, "invalid quantity")
	ErrInvalidPrice        = kindErr(ErrValidation, "price must be positive")
	ErrPricePrecision      = kindErr(ErrValidation, "price must have at most 2 decimal places")
	ErrUnknownProduct      = kindErr(ErrValidation, "unknown product")
	ErrProductNameRequired = kindErr(ErrValidation, "product name is required")
	ErrProductExists       = kindErr(ErrValidation, "product already exists")
	ErrInvalidCartIndex    = kindErr(ErrValidation, "invalid cart item index")
	ErrStatusBadRequest    = kindErr(ErrValidation, "bad request")
	ErrInvalidDate         = kindErr(ErrValidation, "invalid date, expected YYYY-MM-DD")

	// 401/403
	ErrInvalidCredentials = kindErr(ErrUnauthorized, "invalid username or password")
	ErrSessionExpired     = kindErr(ErrUnauthorized, "session expired")
	ErrAdminRequired      = kindErr(ErrForbidden, "admin role required")
	ErrTerminalForbidden  = kindErr(ErrForbidden, "terminal not allowed for this user")

	// 404
	ErrProductNotFound = kindErr(ErrNotFound, "product not found")

	// 500
	ErrInternalServerError  = errors.New("internal server error")
	ErrIncorrectEnvVariable = errors.New("incorrect environment variable")
)

// kindError — конкретная ошибка, сохраняющая категорию для errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (k *kindError) Error() string { return k.msg }

func (k *kindError) Unwrap() error { return k.kind }

func kindErr(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// Persistence помечает ошибку хранилища категорией KindPersistence, не теряя исходную причину.
// Ошибки, у которых категория уже есть, только оборачиваются.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindInternal {
		return Wrap(op, err)
	}

	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

// KindOf определяет категорию ошибки по цепочке обёрток.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrSystemBusy):
		return KindBusy
	case errors.Is(err, ErrUnknownTerminal):
		return KindUnknownTerminal
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	default:
		return KindInternal
	}
}

// Message возвращает человекочитаемое сообщение без технических деталей обёрток.
func Message(err error) string {
	var known *kindError
	if errors.As(err, &known) {
		return known.msg
	}

	switch KindOf(err) {
	case KindValidation:
		return ErrStatusBadRequest.Error()
	case KindBusy:
		return ErrSystemBusy.Error()
	case KindUnknownTerminal:
		return ErrUnknownTerminal.Error()
	case KindNotFound:
		return ErrNotFound.Error()
	case KindUnauthorized:
		return ErrUnauthorized.Error()
	case KindForbidden:
		return ErrForbidden.Error()
	case KindPersistence:
		return ErrPersistence.Error()
	default:
		return ErrInternalServerError.Error()
	}
}
