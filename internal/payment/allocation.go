package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/order"
)

// ErrInvalidAmount rejects non-positive payment amounts.
var ErrInvalidAmount = errors.New("payment amount must be positive")

// Entry is one recorded payment against an order.
type Entry struct {
	ID         uuid.UUID         `json:"id"`
	OrderID    uuid.UUID         `json:"order_id"`
	MethodCode string            `json:"method_code"`
	Amount     decimal.Decimal   `json:"amount"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	RecordedAt time.Time         `json:"recorded_at"`
}

// Allocation is the ordered, append-only sequence of payments for an order.
type Allocation struct {
	entries []Entry
}

// NewAllocation builds an allocation from already recorded entries.
func NewAllocation(entries []Entry) Allocation {
	return Allocation{entries: append([]Entry(nil), entries...)}
}

// Record appends a payment entry. Amounts are not capped at the remaining
// due; overpayment is surfaced downstream, never rejected here.
func (a *Allocation) Record(methodCode string, amount decimal.Decimal, metadata map[string]string) (Entry, error) {
	if !amount.IsPositive() {
		return Entry{}, ErrInvalidAmount
	}
	e := Entry{ID: uuid.New(), MethodCode: methodCode, Amount: amount, Metadata: metadata}
	a.entries = append(a.entries, e)
	return e, nil
}

// Entries returns a copy of the recorded payments in order.
func (a Allocation) Entries() []Entry {
	return append([]Entry(nil), a.entries...)
}

// TotalAllocated sums all recorded amounts.
func (a Allocation) TotalAllocated() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range a.entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// Due returns the outstanding amount against the order total, floored at
// zero and rounded to cents.
func (a Allocation) Due(total decimal.Decimal) decimal.Decimal {
	due := total.Sub(a.TotalAllocated())
	if due.IsNegative() {
		return decimal.Zero.Round(2)
	}
	return due.Round(2)
}

// Overpaid returns the excess over the order total, zero when none. The
// engine never auto-refunds; the excess is a reporting signal.
func (a Allocation) Overpaid(total decimal.Decimal) decimal.Decimal {
	over := a.TotalAllocated().Sub(total)
	if over.IsPositive() {
		return over.Round(2)
	}
	return decimal.Zero.Round(2)
}

// StatusFor derives the payment status from allocated payments against the
// order total.
func (a Allocation) StatusFor(total decimal.Decimal) order.PaymentStatus {
	allocated := a.TotalAllocated()
	switch {
	case allocated.IsZero() || allocated.IsNegative():
		return order.PaymentPending
	case allocated.LessThan(total):
		return order.PaymentPartiallyPaid
	default:
		return order.PaymentPaid
	}
}
