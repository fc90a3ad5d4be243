package memory

import (
	"context"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
)

type SaleRepo struct {
	s *Store
}

// AppendLines добавляет строки в транзакцию. Идентификаторы выдаются сразу и не возвращаются при откате.
func (r *SaleRepo) AppendLines(ctx context.Context, lines []domain.SaleLine) ([]domain.SaleLine, error) {
	const op = "memory.SaleRepo.AppendLines"

	state, err := txFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if err := r.s.fault(func(f Faults) error { return f.AppendLines }); err != nil {
		return nil, e.Wrap(op, err)
	}

	r.s.mu.Lock()
	saved := make([]domain.SaleLine, len(lines))
	for i, line := range lines {
		r.s.nextLineID++
		line.ID = r.s.nextLineID
		saved[i] = line
	}
	r.s.mu.Unlock()

	state.lines = append(state.lines, saved...)
	return saved, nil
}

func (r *SaleRepo) ListLines(ctx context.Context, filter domain.LedgerFilter) ([]domain.SaleLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.SaleLine, 0)
	for _, line := range r.s.lines {
		if filter.Matches(line) {
			out = append(out, line)
		}
	}

	return out, nil
}

func (r *SaleRepo) Summarize(ctx context.Context, terminal domain.TerminalID, today string) (domain.LedgerSummary, error) {
	lines, err := r.ListLines(ctx, domain.LedgerFilter{Terminal: terminal})
	if err != nil {
		return domain.LedgerSummary{}, err
	}

	return domain.SummarizeLines(lines, today), nil
}
