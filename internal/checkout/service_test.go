package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/order"
	"github.com/noah-isme/backend-pos/internal/voucher"
)

type stubCatalog struct {
	products map[uuid.UUID]cart.Product
}

func (s stubCatalog) Lookup(_ context.Context, productID uuid.UUID, variantID *uuid.UUID) (cart.Product, error) {
	p, ok := s.products[productID]
	if !ok {
		return cart.Product{}, errors.New("product not found")
	}
	p.VariantID = variantID
	return p, nil
}

type stubVoucherStore struct {
	rules map[string]voucher.Rule
}

func (s stubVoucherStore) GetRuleByCode(_ context.Context, code string) (voucher.Rule, error) {
	r, ok := s.rules[code]
	if !ok {
		return voucher.Rule{}, voucher.ErrCouponNotFound
	}
	return r, nil
}

func (s stubVoucherStore) IncrementUsage(_ context.Context, _ string) error { return nil }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBuildDraftAggregatesLines(t *testing.T) {
	productA := uuid.New()
	productB := uuid.New()
	svc := &Service{Catalog: stubCatalog{products: map[uuid.UUID]cart.Product{
		productA: {ID: productA, Title: "A", Price: dec("25.00")},
		productB: {ID: productB, Title: "B", Price: dec("10.50")},
	}}}

	draft, err := svc.buildDraft(context.Background(), Input{Lines: []LineInput{
		{ProductID: productA, Qty: 2},
		{ProductID: productB, Qty: 1},
	}})
	if err != nil {
		t.Fatalf("buildDraft: %v", err)
	}
	if !draft.Subtotal().Equal(dec("60.50")) {
		t.Fatalf("expected subtotal 60.50, got %s", draft.Subtotal())
	}
}

func TestBuildDraftRejectsEmptyAndBadQuantity(t *testing.T) {
	svc := &Service{Catalog: stubCatalog{}}
	if _, err := svc.buildDraft(context.Background(), Input{}); !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}

	productID := uuid.New()
	svc = &Service{Catalog: stubCatalog{products: map[uuid.UUID]cart.Product{
		productID: {ID: productID, Title: "A", Price: dec("5")},
	}}}
	_, err := svc.buildDraft(context.Background(), Input{Lines: []LineInput{{ProductID: productID, Qty: 0}}})
	if !errors.Is(err, cart.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestBuildDraftAppliesPriceOverride(t *testing.T) {
	productID := uuid.New()
	svc := &Service{Catalog: stubCatalog{products: map[uuid.UUID]cart.Product{
		productID: {ID: productID, Title: "A", Price: dec("30")},
	}}}
	override := dec("20")
	draft, err := svc.buildDraft(context.Background(), Input{Lines: []LineInput{
		{ProductID: productID, Qty: 1, UnitPrice: &override},
	}})
	if err != nil {
		t.Fatalf("buildDraft: %v", err)
	}
	lines := draft.Lines()
	if !lines[0].UnitPrice.Equal(dec("20")) || !lines[0].OriginalPrice.Equal(dec("30")) {
		t.Fatalf("override must keep original price: %+v", lines[0])
	}
}

func TestPriceEndToEndScenario(t *testing.T) {
	productA := uuid.New()
	productB := uuid.New()
	svc := &Service{
		TaxBps: 800,
		Catalog: stubCatalog{products: map[uuid.UUID]cart.Product{
			productA: {ID: productA, Title: "A", Price: dec("25.00")},
			productB: {ID: productB, Title: "B", Price: dec("10.50")},
		}},
	}
	in := Input{
		Lines: []LineInput{
			{ProductID: productA, Qty: 2},
			{ProductID: productB, Qty: 1},
		},
		Discount: dec("5"),
		Shipping: dec("3.50"),
	}
	draft, err := svc.buildDraft(context.Background(), in)
	if err != nil {
		t.Fatalf("buildDraft: %v", err)
	}
	summary, code, err := svc.price(context.Background(), draft, in)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if code != "" {
		t.Fatalf("expected no voucher, got %q", code)
	}
	if !summary.Tax.Equal(dec("4.84")) {
		t.Fatalf("expected tax 4.84, got %s", summary.Tax)
	}
	if !summary.Total.Equal(dec("63.84")) {
		t.Fatalf("expected total 63.84, got %s", summary.Total)
	}
}

func TestPriceResolvesVoucherDiscount(t *testing.T) {
	productID := uuid.New()
	svc := &Service{
		Catalog: stubCatalog{products: map[uuid.UUID]cart.Product{
			productID: {ID: productID, Title: "A", Price: dec("100")},
		}},
		Vouchers: &voucher.Service{Store: stubVoucherStore{rules: map[string]voucher.Rule{
			"SAVE10": {Code: "SAVE10", Kind: "flat", Value: dec("10")},
		}}},
	}
	in := Input{
		Lines:       []LineInput{{ProductID: productID, Qty: 1}},
		VoucherCode: "SAVE10",
	}
	draft, err := svc.buildDraft(context.Background(), in)
	if err != nil {
		t.Fatalf("buildDraft: %v", err)
	}
	summary, code, err := svc.price(context.Background(), draft, in)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if code != "SAVE10" {
		t.Fatalf("expected voucher code echoed, got %q", code)
	}
	if !summary.Total.Equal(dec("90.00")) {
		t.Fatalf("expected total 90.00, got %s", summary.Total)
	}

	in.VoucherCode = "NOPE"
	if _, _, err := svc.price(context.Background(), draft, in); !errors.Is(err, voucher.ErrInvalidCoupon) {
		t.Fatalf("expected ErrInvalidCoupon, got %v", err)
	}
}

func TestPaymentStatusFor(t *testing.T) {
	total := dec("200")
	if got := paymentStatusFor(decimal.Zero, total); got != order.PaymentPending {
		t.Fatalf("expected pending, got %s", got)
	}
	if got := paymentStatusFor(dec("100"), total); got != order.PaymentPartiallyPaid {
		t.Fatalf("expected partially_paid, got %s", got)
	}
	if got := paymentStatusFor(dec("250"), total); got != order.PaymentPaid {
		t.Fatalf("expected paid, got %s", got)
	}
}
