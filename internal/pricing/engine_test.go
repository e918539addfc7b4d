package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputePercentTax(t *testing.T) {
	summary, err := Compute(Inputs{
		Subtotal: dec("100"),
		Tax:      TaxSpec{PercentBps: 1000},
		Discount: dec("20"),
		Shipping: dec("5"),
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !summary.Tax.Equal(dec("10")) {
		t.Fatalf("expected tax 10, got %s", summary.Tax)
	}
	if summary.Total.String() != "95" {
		t.Fatalf("expected total 95, got %s", summary.Total)
	}
}

func TestComputeFlatTaxIgnoredWhenPercentSet(t *testing.T) {
	summary, err := Compute(Inputs{
		Subtotal: dec("200"),
		Tax:      TaxSpec{PercentBps: 500, Flat: dec("99")},
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !summary.Tax.Equal(dec("10")) {
		t.Fatalf("percent tax should win, got %s", summary.Tax)
	}
}

func TestComputeClampsNegativeTotal(t *testing.T) {
	summary, err := Compute(Inputs{
		Subtotal: dec("50"),
		Discount: dec("1000"),
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !summary.Total.IsZero() {
		t.Fatalf("expected total clamped to 0, got %s", summary.Total)
	}
}

func TestComputeRejectsNegativeCharges(t *testing.T) {
	if _, err := Compute(Inputs{Subtotal: dec("10"), Discount: dec("-1")}); !errors.Is(err, ErrInvalidCharge) {
		t.Fatalf("expected ErrInvalidCharge for negative discount, got %v", err)
	}
	if _, err := Compute(Inputs{Subtotal: dec("10"), Shipping: dec("-0.01")}); !errors.Is(err, ErrInvalidCharge) {
		t.Fatalf("expected ErrInvalidCharge for negative shipping, got %v", err)
	}
	if _, err := Compute(Inputs{Subtotal: dec("10"), Tax: TaxSpec{Flat: dec("-2")}}); !errors.Is(err, ErrInvalidCharge) {
		t.Fatalf("expected ErrInvalidCharge for negative flat tax, got %v", err)
	}
}

func TestComputeDueAndOverpayment(t *testing.T) {
	summary, err := Compute(Inputs{
		Subtotal:  dec("200"),
		TotalPaid: dec("100"),
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if summary.Due.String() != "100" {
		t.Fatalf("expected due 100, got %s", summary.Due)
	}

	summary, err = Compute(Inputs{
		Subtotal:  dec("200"),
		TotalPaid: dec("250"),
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !summary.Due.IsZero() {
		t.Fatalf("expected due 0 on overpayment, got %s", summary.Due)
	}
	if summary.Overpaid.String() != "50" {
		t.Fatalf("expected overpaid 50, got %s", summary.Overpaid)
	}
}

func TestComputeIdempotent(t *testing.T) {
	in := Inputs{
		Subtotal: dec("60.50"),
		Tax:      TaxSpec{PercentBps: 800},
		Discount: dec("5"),
		Shipping: dec("3.50"),
	}
	first, err := Compute(in)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	second, err := Compute(in)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !first.Total.Equal(second.Total) || !first.Tax.Equal(second.Tax) || !first.Due.Equal(second.Due) {
		t.Fatalf("compute is not idempotent: %+v vs %+v", first, second)
	}
}

func TestComputeEndToEndScenario(t *testing.T) {
	// 2 x 25.00 + 1 x 10.50 = 60.50, 8% tax, 5 discount, 3.50 shipping.
	summary, err := Compute(Inputs{
		Subtotal: dec("60.50"),
		Tax:      TaxSpec{PercentBps: 800},
		Discount: dec("5"),
		Shipping: dec("3.50"),
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !summary.Tax.Equal(dec("4.84")) {
		t.Fatalf("expected tax 4.84, got %s", summary.Tax)
	}
	if summary.Total.String() != "63.84" {
		t.Fatalf("expected total 63.84, got %s", summary.Total)
	}

	paid, err := Compute(Inputs{
		Subtotal:  dec("60.50"),
		Tax:       TaxSpec{PercentBps: 800},
		Discount:  dec("5"),
		Shipping:  dec("3.50"),
		TotalPaid: dec("63.84"),
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !paid.Due.IsZero() {
		t.Fatalf("expected due 0, got %s", paid.Due)
	}
}

func TestComputeRoundsHalfUpAtTheEnd(t *testing.T) {
	// 33.33 * 7.5% = 2.49975; total = 35.82975 -> 35.83 only if intermediate
	// tax is carried unrounded.
	summary, err := Compute(Inputs{
		Subtotal: dec("33.33"),
		Tax:      TaxSpec{PercentBps: 750},
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if summary.Total.String() != "35.83" {
		t.Fatalf("expected total 35.83, got %s", summary.Total)
	}
}
