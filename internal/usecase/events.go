package usecase

import (
	"fmt"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// newSaleCommittedEvent собирает событие о проведённой продаже.
// Payload — protobuf Struct, суммы передаются строками без потери точности.
func newSaleCommittedEvent(receipt *domain.SaleReceipt, salesperson string, at time.Time) (*OutboxEvent, error) {
	eventID := uuid.NewString()

	payload, err := structpb.NewStruct(map[string]any{
		"event_id":     eventID,
		"event_type":   string(SaleCommitted),
		"terminal":     receipt.Terminal.String(),
		"sale_id":      receipt.SaleID,
		"client_id":    receipt.ClientID,
		"line_count":   receipt.LineCount,
		"subtotal":     receipt.Totals.Subtotal.StringFixed(2),
		"tax":          receipt.Totals.Tax.StringFixed(2),
		"total":        receipt.Totals.Total.StringFixed(2),
		"salesperson":  salesperson,
		"committed_at": at.Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	raw, err := proto.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:      eventID,
		EventType:    SaleCommitted,
		AggregateKey: saleAggregateKey(receipt.Terminal, receipt.SaleID),
		Payload:      raw,
		Status:       Pending,
		CreatedAt:    at,
	}, nil
}

// DecodeSaleCommitted разбирает payload события sale.committed.
func DecodeSaleCommitted(raw []byte) (map[string]any, error) {
	var payload structpb.Struct
	if err := proto.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload.AsMap(), nil
}

func saleAggregateKey(terminal domain.TerminalID, saleID int64) string {
	return fmt.Sprintf("%s:%d", terminal, saleID)
}
