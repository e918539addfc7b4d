package cart

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAddLineMergesSameProductVariant(t *testing.T) {
	var d Draft
	p := Product{ID: uuid.New(), Title: "Widget", Price: dec("25.00")}
	if err := d.AddLine(p, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := d.AddLine(p, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	lines := d.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(lines))
	}
	if lines[0].Qty != 3 {
		t.Fatalf("expected qty 3, got %d", lines[0].Qty)
	}
	if lines[0].Total().String() != "75" {
		t.Fatalf("expected line total 75, got %s", lines[0].Total())
	}
}

func TestAddLineDistinguishesVariants(t *testing.T) {
	var d Draft
	productID := uuid.New()
	small := uuid.New()
	large := uuid.New()
	if err := d.AddLine(Product{ID: productID, VariantID: &small, Price: dec("9.99")}, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := d.AddLine(Product{ID: productID, VariantID: &large, Price: dec("12.99")}, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if d.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d", d.Len())
	}
}

func TestSubtotalTracksMutations(t *testing.T) {
	var d Draft
	a := Product{ID: uuid.New(), Title: "A", Price: dec("25.00")}
	b := Product{ID: uuid.New(), Title: "B", Price: dec("10.50")}
	if err := d.AddLine(a, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := d.AddLine(b, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if d.Subtotal().String() != "60.5" {
		t.Fatalf("expected subtotal 60.5, got %s", d.Subtotal())
	}
	if err := d.SetQuantity(a.ID, nil, 1); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if d.Subtotal().String() != "35.5" {
		t.Fatalf("expected subtotal 35.5, got %s", d.Subtotal())
	}
	d.RemoveLine(b.ID, nil)
	if d.Subtotal().String() != "25" {
		t.Fatalf("expected subtotal 25, got %s", d.Subtotal())
	}
}

func TestSetQuantityRejectsZero(t *testing.T) {
	var d Draft
	p := Product{ID: uuid.New(), Price: dec("5.00")}
	if err := d.AddLine(p, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := d.SetQuantity(p.ID, nil, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if d.Lines()[0].Qty != 2 {
		t.Fatalf("line should be unchanged after invalid set, got qty %d", d.Lines()[0].Qty)
	}
}

func TestSetUnitPricePreservesOriginal(t *testing.T) {
	var d Draft
	p := Product{ID: uuid.New(), Price: dec("100.00")}
	if err := d.AddLine(p, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := d.SetUnitPrice(p.ID, nil, dec("80.00")); err != nil {
		t.Fatalf("set price: %v", err)
	}
	line := d.Lines()[0]
	if line.UnitPrice.String() != "80" {
		t.Fatalf("expected overridden price 80, got %s", line.UnitPrice)
	}
	if line.OriginalPrice.String() != "100" {
		t.Fatalf("original price must be preserved, got %s", line.OriginalPrice)
	}
	if err := d.SetUnitPrice(p.ID, nil, dec("-1")); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestRemoveAbsentLineIsNoop(t *testing.T) {
	var d Draft
	d.RemoveLine(uuid.New(), nil)
	if d.Len() != 0 {
		t.Fatalf("expected empty draft")
	}
	if !d.Subtotal().IsZero() {
		t.Fatalf("expected zero subtotal for empty draft, got %s", d.Subtotal())
	}
}
