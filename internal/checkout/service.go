package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/order"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/voucher"
)

var (
	// ErrEmptyOrder rejects a checkout without any lines.
	ErrEmptyOrder = errors.New("order has no lines")
	// ErrOrderLocked rejects repricing an order in a terminal status.
	ErrOrderLocked = errors.New("order can no longer be repriced")
)

// LineInput is one requested order line. UnitPrice, when set, overrides
// the catalog price for this sale; the catalog price is still kept as
// the original price on the stored line.
type LineInput struct {
	ProductID uuid.UUID        `json:"product_id"`
	VariantID *uuid.UUID       `json:"variant_id,omitempty"`
	Qty       int              `json:"qty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// Input is a checkout (or reprice) request.
type Input struct {
	Lines       []LineInput      `json:"lines"`
	VoucherCode string           `json:"voucher_code,omitempty"`
	Discount    decimal.Decimal  `json:"discount"`
	Shipping    decimal.Decimal  `json:"shipping"`
	TaxBps      *int64           `json:"tax_bps,omitempty"`
	TaxFlat     *decimal.Decimal `json:"tax_flat,omitempty"`
	Note        string           `json:"note,omitempty"`
}

// Output is the created (or repriced) order with its frozen summary.
type Output struct {
	OrderID       uuid.UUID           `json:"order_id"`
	Status        order.Status        `json:"status"`
	PaymentStatus order.PaymentStatus `json:"payment_status"`
	Summary       pricing.Summary     `json:"summary"`
	VoucherCode   string              `json:"voucher_code,omitempty"`
}

// ProductLookup resolves a product reference into a sellable line source.
type ProductLookup interface {
	Lookup(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (cart.Product, error)
}

// Service orchestrates line aggregation, charge computation and order
// persistence.
type Service struct {
	Pool     *pgxpool.Pool
	Catalog  ProductLookup
	Vouchers *voucher.Service
	TaxBps   int64
	Currency string
	Events   *events.Bus
	Log      zerolog.Logger
}

// Create runs the full engine for a new order. The computed summary is
// frozen on the order row; later catalog or tax changes never touch it.
func (s *Service) Create(ctx context.Context, in Input) (Output, error) {
	var zero Output
	if s == nil || s.Pool == nil || s.Catalog == nil {
		return zero, errors.New("checkout service not configured")
	}
	ctx, span := otel.Tracer("checkout.Service").Start(ctx, "CheckoutService.Create")
	defer span.End()
	result := "error"
	defer func() {
		span.SetAttributes(attribute.String("checkout.result", result))
		if obs.CheckoutTotal != nil {
			obs.CheckoutTotal.WithLabelValues(result).Inc()
		}
	}()

	draft, err := s.buildDraft(ctx, in)
	if err != nil {
		return zero, err
	}
	summary, voucherCode, err := s.price(ctx, draft, in)
	if err != nil {
		return zero, err
	}

	orderID := uuid.New()
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return zero, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
INSERT INTO orders (
  id, status, fulfillment_status, payment_status, currency, voucher_code, note,
  pricing_subtotal, pricing_tax, pricing_discount, pricing_shipping,
  pricing_total, total_paid, due, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())`,
		orderID, order.StatusPending, order.FulfillmentUnfulfilled, order.PaymentPending,
		s.Currency, nullableText(voucherCode), nullableText(in.Note),
		common.DecimalToNumeric(summary.Subtotal), common.DecimalToNumeric(summary.Tax),
		common.DecimalToNumeric(summary.Discount), common.DecimalToNumeric(summary.Shipping),
		common.DecimalToNumeric(summary.Total), common.DecimalToNumeric(decimal.Zero),
		common.DecimalToNumeric(summary.Due))
	if err != nil {
		return zero, err
	}
	if err := insertItems(ctx, tx, orderID, draft.Lines()); err != nil {
		return zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		return zero, err
	}
	result = "success"

	if voucherCode != "" && s.Vouchers != nil {
		if err := s.Vouchers.MarkUsed(ctx, voucherCode); err != nil {
			s.Log.Warn().Err(err).Str("voucher", voucherCode).Msg("mark voucher used")
		}
	}
	if s.Events != nil {
		_, _ = s.Events.Emit(ctx, events.TopicOrderCreated, orderID, map[string]any{
			"orderId": orderID.String(),
			"total":   summary.Total.String(),
		})
	}
	return Output{
		OrderID:       orderID,
		Status:        order.StatusPending,
		PaymentStatus: order.PaymentPending,
		Summary:       summary,
		VoucherCode:   voucherCode,
	}, nil
}

// Reprice re-runs the full engine for an existing order, replacing its
// lines and summary. Payments already recorded stay and the payment
// status is re-derived against the new total.
func (s *Service) Reprice(ctx context.Context, orderID uuid.UUID, in Input) (Output, error) {
	var zero Output
	if s == nil || s.Pool == nil || s.Catalog == nil {
		return zero, errors.New("checkout service not configured")
	}
	ctx, span := otel.Tracer("checkout.Service").Start(ctx, "CheckoutService.Reprice")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID.String()))

	draft, err := s.buildDraft(ctx, in)
	if err != nil {
		return zero, err
	}
	summary, voucherCode, err := s.price(ctx, draft, in)
	if err != nil {
		return zero, err
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return zero, err
	}
	defer tx.Rollback(ctx)

	var (
		status  order.Status
		paidNum pgtype.Numeric
	)
	row := tx.QueryRow(ctx, `SELECT status, total_paid FROM orders WHERE id = $1 FOR UPDATE`, orderID)
	if err := row.Scan(&status, &paidNum); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, order.ErrNotFound
		}
		return zero, err
	}
	if status.IsTerminal() {
		return zero, ErrOrderLocked
	}
	paid, err := common.NumericToDecimal(paidNum)
	if err != nil {
		return zero, err
	}

	recomputed, err := pricing.Compute(pricing.Inputs{
		Subtotal:  summary.Subtotal,
		Tax:       taxSpec(s, in),
		Discount:  summary.Discount,
		Shipping:  summary.Shipping,
		TotalPaid: paid,
	})
	if err != nil {
		return zero, err
	}
	payStatus := paymentStatusFor(paid, recomputed.Total)

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return zero, err
	}
	if err := insertItems(ctx, tx, orderID, draft.Lines()); err != nil {
		return zero, err
	}
	_, err = tx.Exec(ctx, `
UPDATE orders SET
  voucher_code = $2, note = COALESCE(NULLIF($3, ''), note),
  pricing_subtotal = $4, pricing_tax = $5, pricing_discount = $6,
  pricing_shipping = $7, pricing_total = $8, due = $9,
  payment_status = $10, updated_at = now()
WHERE id = $1`,
		orderID, nullableText(voucherCode), in.Note,
		common.DecimalToNumeric(recomputed.Subtotal), common.DecimalToNumeric(recomputed.Tax),
		common.DecimalToNumeric(recomputed.Discount), common.DecimalToNumeric(recomputed.Shipping),
		common.DecimalToNumeric(recomputed.Total), common.DecimalToNumeric(recomputed.Due),
		payStatus)
	if err != nil {
		return zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		return zero, err
	}

	if s.Events != nil {
		_, _ = s.Events.Emit(ctx, events.TopicOrderRepriced, orderID, map[string]any{
			"orderId": orderID.String(),
			"total":   recomputed.Total.String(),
		})
	}
	return Output{
		OrderID:       orderID,
		Status:        status,
		PaymentStatus: payStatus,
		Summary:       recomputed,
		VoucherCode:   voucherCode,
	}, nil
}

func (s *Service) buildDraft(ctx context.Context, in Input) (*cart.Draft, error) {
	if len(in.Lines) == 0 {
		return nil, ErrEmptyOrder
	}
	draft := &cart.Draft{}
	for _, line := range in.Lines {
		product, err := s.Catalog.Lookup(ctx, line.ProductID, line.VariantID)
		if err != nil {
			return nil, err
		}
		if err := draft.AddLine(product, line.Qty); err != nil {
			return nil, err
		}
		if line.UnitPrice != nil {
			if err := draft.SetUnitPrice(product.ID, line.VariantID, *line.UnitPrice); err != nil {
				return nil, err
			}
		}
	}
	return draft, nil
}

func (s *Service) price(ctx context.Context, draft *cart.Draft, in Input) (pricing.Summary, string, error) {
	subtotal := draft.Subtotal()
	discount := in.Discount
	voucherCode := ""
	if in.VoucherCode != "" && s.Vouchers != nil {
		resolved, err := s.Vouchers.Resolve(ctx, in.VoucherCode, subtotal)
		if err != nil {
			return pricing.Summary{}, "", err
		}
		discount = discount.Add(resolved)
		voucherCode = in.VoucherCode
	}
	summary, err := pricing.Compute(pricing.Inputs{
		Subtotal: subtotal,
		Tax:      taxSpec(s, in),
		Discount: discount,
		Shipping: in.Shipping,
	})
	if err != nil {
		return pricing.Summary{}, "", err
	}
	return summary, voucherCode, nil
}

func taxSpec(s *Service, in Input) pricing.TaxSpec {
	spec := pricing.TaxSpec{PercentBps: s.TaxBps}
	if in.TaxBps != nil {
		spec.PercentBps = *in.TaxBps
	}
	if in.TaxFlat != nil {
		spec.Flat = *in.TaxFlat
	}
	return spec
}

func paymentStatusFor(paid, total decimal.Decimal) order.PaymentStatus {
	switch {
	case paid.IsZero() || paid.IsNegative():
		return order.PaymentPending
	case paid.LessThan(total):
		return order.PaymentPartiallyPaid
	default:
		return order.PaymentPaid
	}
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, lines []cart.Line) error {
	for i, line := range lines {
		_, err := tx.Exec(ctx, `
INSERT INTO order_items (
  id, order_id, product_id, variant_id, title,
  unit_price, original_price, qty, line_total, position
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			uuid.New(), orderID, line.ProductID, line.VariantID, line.Title,
			common.DecimalToNumeric(line.UnitPrice), common.DecimalToNumeric(line.OriginalPrice),
			line.Qty, common.DecimalToNumeric(line.Total()), i)
		if err != nil {
			return err
		}
	}
	return nil
}

func nullableText(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
