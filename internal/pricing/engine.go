package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidCharge is returned when a negative discount, shipping or flat tax
// value is supplied.
var ErrInvalidCharge = errors.New("invalid charge input")

// TaxSpec describes how tax is derived from the subtotal. A positive
// PercentBps (basis points, 800 = 8%) takes precedence over the flat amount.
type TaxSpec struct {
	PercentBps int64
	Flat       decimal.Decimal
}

// Inputs carries everything the charge calculation depends on.
type Inputs struct {
	Subtotal  decimal.Decimal
	Tax       TaxSpec
	Discount  decimal.Decimal
	Shipping  decimal.Decimal
	TotalPaid decimal.Decimal
}

// Summary aggregates computed charge components. Total and Due are rounded to
// two decimal places; Tax and Discount are carried unrounded.
type Summary struct {
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Discount  decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
	TotalPaid decimal.Decimal
	Due       decimal.Decimal
	Overpaid  decimal.Decimal
}

var bpsDivisor = decimal.NewFromInt(10000)

// Compute calculates order charges given the provided inputs. It is pure and
// deterministic: calling it twice with the same inputs yields the same
// summary. Rounding happens once, when Total and Due are derived.
func Compute(in Inputs) (Summary, error) {
	if in.Discount.IsNegative() || in.Shipping.IsNegative() {
		return Summary{}, ErrInvalidCharge
	}
	tax := in.Tax.Flat
	if in.Tax.PercentBps > 0 {
		tax = in.Subtotal.Mul(decimal.NewFromInt(in.Tax.PercentBps)).Div(bpsDivisor)
	}
	if tax.IsNegative() {
		return Summary{}, ErrInvalidCharge
	}

	total := in.Subtotal.Add(tax).Sub(in.Discount).Add(in.Shipping)
	if total.IsNegative() {
		total = decimal.Zero
	}
	total = total.Round(2)

	due := total.Sub(in.TotalPaid).Round(2)
	overpaid := decimal.Zero
	if due.IsNegative() {
		overpaid = due.Neg()
		due = decimal.Zero
	}

	return Summary{
		Subtotal:  in.Subtotal,
		Tax:       tax,
		Discount:  in.Discount,
		Shipping:  in.Shipping,
		Total:     total,
		TotalPaid: in.TotalPaid,
		Due:       due,
		Overpaid:  overpaid,
	}, nil
}
