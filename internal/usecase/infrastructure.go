package usecase

import (
	"context"
	"io"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
)

// MessageProducer публикует сырые события во внешнюю шину.
type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

// TerminalLocker даёт эксклюзивный доступ к счётчикам терминала с ограниченным ожиданием.
type TerminalLocker interface {
	Acquire(ctx context.Context, key string) (func(), error)
	Timeout() time.Duration
}

// LedgerWorkbook строит выгрузку журнала в формате электронной таблицы.
type LedgerWorkbook interface {
	Write(w io.Writer, terminals []domain.TerminalID, lines []domain.SaleLine) error
}
