package payment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/order"
	"github.com/noah-isme/backend-pos/internal/paymethod"
)

var (
	// ErrOrderNotFound indicates the target order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrMethodNotFound indicates the payment method code is not configured.
	ErrMethodNotFound = errors.New("payment method not found")
)

// Receipt is the settlement state after recording a payment.
type Receipt struct {
	Entry         Entry               `json:"entry"`
	PaymentStatus order.PaymentStatus `json:"payment_status"`
	TotalPaid     decimal.Decimal     `json:"total_paid"`
	Due           decimal.Decimal     `json:"due"`
	Overpaid      decimal.Decimal     `json:"overpaid"`
}

// Service records payments against orders and keeps the derived
// settlement fields on the order row current.
type Service struct {
	Pool    *pgxpool.Pool
	Methods *paymethod.Service
	Bus     *events.Bus
	Log     zerolog.Logger
}

// RecordPayment appends a payment entry for the order, recomputes the
// settlement totals and stamps the derived payment status. An empty
// method code resolves to the configured default method.
func (s *Service) RecordPayment(ctx context.Context, orderID uuid.UUID, methodCode string, amount decimal.Decimal, metadata map[string]string) (Receipt, error) {
	var zero Receipt
	if s == nil || s.Pool == nil {
		return zero, errors.New("payment service not configured")
	}
	ctx, span := otel.Tracer("payment.Service").Start(ctx, "PaymentService.RecordPayment")
	defer span.End()

	start := time.Now()
	methodLabel := "unknown"
	result := "error"
	defer func() {
		span.SetAttributes(
			attribute.String("payment.method", methodLabel),
			attribute.String("payment.result", result),
			attribute.Float64("payment.duration_ms", obs.DurationMillis(time.Since(start))),
		)
		if obs.PaymentRecordedTotal != nil {
			obs.PaymentRecordedTotal.WithLabelValues(methodLabel, result).Inc()
		}
	}()

	if !amount.IsPositive() {
		result = "invalid_amount"
		return zero, ErrInvalidAmount
	}
	method, err := s.resolveMethod(ctx, methodCode)
	if err != nil {
		if errors.Is(err, paymethod.ErrNotFound) {
			err = ErrMethodNotFound
		}
		return zero, err
	}
	methodLabel = method.Code
	span.SetAttributes(attribute.String("order.id", orderID.String()))

	receipt, becamePaid, err := s.recordTx(ctx, orderID, method.Code, amount, metadata)
	if err != nil {
		span.RecordError(err)
		return zero, err
	}
	result = "success"

	s.emit(ctx, events.TopicPaymentRecorded, orderID, map[string]any{
		"orderId":    orderID.String(),
		"methodCode": method.Code,
		"amount":     amount.String(),
		"status":     receipt.PaymentStatus,
	})
	if becamePaid {
		s.emit(ctx, events.TopicOrderPaid, orderID, map[string]any{
			"orderId":   orderID.String(),
			"totalPaid": receipt.TotalPaid.String(),
		})
	}
	return receipt, nil
}

func (s *Service) recordTx(ctx context.Context, orderID uuid.UUID, methodCode string, amount decimal.Decimal, metadata map[string]string) (Receipt, bool, error) {
	var zero Receipt
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return zero, false, err
	}
	defer tx.Rollback(ctx)

	var (
		totalNum   pgtype.Numeric
		prevStatus order.PaymentStatus
	)
	err = tx.QueryRow(ctx,
		`SELECT pricing_total, payment_status FROM orders WHERE id = $1 FOR UPDATE`, orderID).
		Scan(&totalNum, &prevStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, false, ErrOrderNotFound
	}
	if err != nil {
		return zero, false, err
	}
	total, err := common.NumericToDecimal(totalNum)
	if err != nil {
		return zero, false, err
	}

	entry := Entry{ID: uuid.New(), OrderID: orderID, MethodCode: methodCode, Amount: amount, Metadata: metadata}
	meta, err := encodeMetadata(metadata)
	if err != nil {
		return zero, false, err
	}
	err = tx.QueryRow(ctx, `
INSERT INTO payments (id, order_id, method_code, amount, metadata, recorded_at)
VALUES ($1, $2, $3, $4, $5, now())
RETURNING recorded_at`,
		entry.ID, orderID, methodCode, common.DecimalToNumeric(amount), meta).
		Scan(&entry.RecordedAt)
	if err != nil {
		return zero, false, err
	}

	entries, err := listEntriesTx(ctx, tx, orderID)
	if err != nil {
		return zero, false, err
	}
	alloc := NewAllocation(entries)
	status := alloc.StatusFor(total)
	paid := alloc.TotalAllocated()
	due := alloc.Due(total)

	_, err = tx.Exec(ctx, `
UPDATE orders
SET total_paid = $2, due = $3, payment_status = $4, updated_at = now()
WHERE id = $1`,
		orderID, common.DecimalToNumeric(paid), common.DecimalToNumeric(due), status)
	if err != nil {
		return zero, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return zero, false, err
	}

	receipt := Receipt{
		Entry:         entry,
		PaymentStatus: status,
		TotalPaid:     paid,
		Due:           due,
		Overpaid:      alloc.Overpaid(total),
	}
	becamePaid := status == order.PaymentPaid && prevStatus != order.PaymentPaid
	return receipt, becamePaid, nil
}

// ListForOrder returns the recorded payments for an order, oldest first.
func (s *Service) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]Entry, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("payment service not configured")
	}
	return listEntriesTx(ctx, s.Pool, orderID)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listEntriesTx(ctx context.Context, q querier, orderID uuid.UUID) ([]Entry, error) {
	rows, err := q.Query(ctx, `
SELECT id, order_id, method_code, amount, metadata, recorded_at
FROM payments
WHERE order_id = $1
ORDER BY recorded_at, id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			amount pgtype.Numeric
			meta   []byte
		)
		if err := rows.Scan(&e.ID, &e.OrderID, &e.MethodCode, &amount, &meta, &e.RecordedAt); err != nil {
			return nil, err
		}
		if e.Amount, err = common.NumericToDecimal(amount); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Service) resolveMethod(ctx context.Context, code string) (paymethod.Method, error) {
	if s.Methods == nil {
		return paymethod.Method{}, errors.New("payment method catalog not configured")
	}
	code = strings.TrimSpace(strings.ToLower(code))
	if code == "" {
		return s.Methods.Default(ctx)
	}
	methods, err := s.Methods.List(ctx)
	if err != nil {
		return paymethod.Method{}, err
	}
	for _, m := range methods {
		if m.Code == code {
			return m, nil
		}
	}
	return paymethod.Method{}, ErrMethodNotFound
}

func (s *Service) emit(ctx context.Context, topic string, orderID uuid.UUID, payload map[string]any) {
	if s.Bus == nil {
		return
	}
	if _, err := s.Bus.Emit(ctx, topic, orderID, payload); err != nil {
		s.Log.Warn().Err(err).Str("order_id", orderID.String()).Str("topic", topic).Msg("emit payment event")
	}
}

func encodeMetadata(metadata map[string]string) ([]byte, error) {
	if len(metadata) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(metadata)
}
