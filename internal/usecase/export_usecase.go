package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportUseCase выгружает журнал продаж в электронную таблицу.
type ExportUseCase struct {
	ledger    *SaleLedger
	workbook  LedgerWorkbook
	reports   ReportRepository
	terminals domain.TerminalSet
	company   string
	logger    logger.Logger
	now       func() time.Time
}

func NewExportUC(
	sales SaleRepository,
	workbook LedgerWorkbook,
	reports ReportRepository,
	terminals domain.TerminalSet,
	company string,
	logger logger.Logger,
) *ExportUseCase {
	return &ExportUseCase{
		ledger:    NewSaleLedger(sales),
		workbook:  workbook,
		reports:   reports,
		terminals: terminals,
		company:   company,
		logger:    logger,
		now:       time.Now,
	}
}

// BuildLedger строит книгу: лист на каждый терминал и лист ALL со всеми строками.
func (x *ExportUseCase) BuildLedger(ctx context.Context) (*Report, error) {
	const op = "ExportUseCase.BuildLedger"

	lines, err := x.ledger.Lines(ctx, domain.LedgerFilter{Terminal: domain.AggregateTerminal})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var buf bytes.Buffer
	if err := x.workbook.Write(&buf, x.terminals.Terminals(), lines); err != nil {
		return nil, e.Wrap(op, err)
	}

	name := fmt.Sprintf("%s_ventas_%s.xlsx", x.company, x.now().Format("20060102_150405"))
	return NewReport(name, XLSXContentType, buf.Bytes()), nil
}

// ExportLedger загружает книгу в хранилище и возвращает временную ссылку на скачивание.
func (x *ExportUseCase) ExportLedger(ctx context.Context) (*ExportRes, error) {
	const op = "ExportUseCase.ExportLedger"

	report, err := x.BuildLedger(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	key, err := x.reports.Upload(ctx, report)
	if err != nil {
		return nil, e.Persistence(op, err)
	}

	url, err := x.reports.PresignedURL(ctx, key)
	if err != nil {
		return nil, e.Persistence(op, err)
	}

	x.logger.Infof("Ledger exported. key: %s, size: %d", key, len(report.Data))

	return &ExportRes{Key: key, URL: url}, nil
}
