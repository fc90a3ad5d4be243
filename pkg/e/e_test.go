package e

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"cart empty", Wrap("SaleUseCase.FinalizeSale", ErrCartEmpty), KindValidation},
		{"busy", Wrap("op", ErrSystemBusy), KindBusy},
		{"unknown terminal", fmt.Errorf("%w: POS9", ErrUnknownTerminal), KindUnknownTerminal},
		{"not found", ErrProductNotFound, KindNotFound},
		{"credentials", ErrInvalidCredentials, KindUnauthorized},
		{"forbidden", Wrap("op", ErrForbidden), KindForbidden},
		{"persistence", Persistence("repo", errors.New("disk full")), KindPersistence},
		{"plain", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestPersistenceKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Persistence("SaleRepo.AppendLines", cause)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, Persistence("noop", nil))

	busy := Persistence("CounterRepo.LockForUpdate", ErrSystemBusy)
	assert.Equal(t, KindBusy, KindOf(busy))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "cart empty", Message(Wrap("a", Wrap("b", ErrCartEmpty))))
	assert.Equal(t, ErrSystemBusy.Error(), Message(Wrap("lock", ErrSystemBusy)))
	assert.Equal(t, ErrInternalServerError.Error(), Message(errors.New("pq: relation does not exist")))
}
