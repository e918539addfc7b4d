package payment

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/order"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRecordRejectsNonPositiveAmounts(t *testing.T) {
	var a Allocation
	if _, err := a.Record("cash", decimal.Zero, nil); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}
	if _, err := a.Record("cash", dec("-5"), nil); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}
	if len(a.Entries()) != 0 {
		t.Fatal("rejected amounts must not be recorded")
	}
}

func TestStatusDerivation(t *testing.T) {
	total := dec("200")
	var a Allocation

	if got := a.StatusFor(total); got != order.PaymentPending {
		t.Fatalf("empty allocation: expected pending, got %s", got)
	}

	for _, amt := range []string{"50", "50"} {
		if _, err := a.Record("cash", dec(amt), nil); err != nil {
			t.Fatalf("record %s: %v", amt, err)
		}
	}
	if got := a.StatusFor(total); got != order.PaymentPartiallyPaid {
		t.Fatalf("expected partially_paid, got %s", got)
	}
	if got := a.Due(total); !got.Equal(dec("100.00")) {
		t.Fatalf("expected due 100.00, got %s", got)
	}

	if _, err := a.Record("card", dec("100"), nil); err != nil {
		t.Fatalf("record 100: %v", err)
	}
	if got := a.StatusFor(total); got != order.PaymentPaid {
		t.Fatalf("expected paid, got %s", got)
	}
	if got := a.Due(total); !got.Equal(decimal.Zero) {
		t.Fatalf("expected due 0.00, got %s", got)
	}
}

func TestOverpaymentSurfacedNotRejected(t *testing.T) {
	total := dec("200")
	a := NewAllocation(nil)
	if _, err := a.Record("cash", dec("250"), nil); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := a.StatusFor(total); got != order.PaymentPaid {
		t.Fatalf("expected paid, got %s", got)
	}
	if got := a.Due(total); !got.Equal(decimal.Zero) {
		t.Fatalf("due must floor at zero, got %s", got)
	}
	if got := a.Overpaid(total); !got.Equal(dec("50.00")) {
		t.Fatalf("expected overpaid 50.00, got %s", got)
	}
}

func TestEntriesPreserveOrderAndMetadata(t *testing.T) {
	var a Allocation
	if _, err := a.Record("cash", dec("10"), map[string]string{"register": "1"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := a.Record("card", dec("20"), map[string]string{"last4": "4242"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	entries := a.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].MethodCode != "cash" || entries[1].MethodCode != "card" {
		t.Fatal("entries must keep insertion order")
	}
	if entries[1].Metadata["last4"] != "4242" {
		t.Fatal("metadata must be preserved per entry")
	}
	if !a.TotalAllocated().Equal(dec("30")) {
		t.Fatalf("expected total 30, got %s", a.TotalAllocated())
	}
}
