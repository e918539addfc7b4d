package cart

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidQuantity is returned when a quantity below 1 is requested.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// ErrInvalidPrice is returned when a negative unit price override is requested.
var ErrInvalidPrice = errors.New("unit price must not be negative")

// Product is the catalog view the draft needs when a line is added. The price
// is trusted at add time; overrides afterwards go through SetUnitPrice.
type Product struct {
	ID        uuid.UUID
	VariantID *uuid.UUID
	Title     string
	Price     decimal.Decimal
}

// Line is one product/variant entry in a draft order.
type Line struct {
	ProductID     uuid.UUID
	VariantID     *uuid.UUID
	Title         string
	UnitPrice     decimal.Decimal
	OriginalPrice decimal.Decimal
	Qty           int
}

// Total returns unit price multiplied by quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// Draft holds the ordered set of line items for an order being composed. It is
// purely in-memory; persistence happens at checkout.
type Draft struct {
	lines []Line
}

// AddLine appends a line for the product, or increments the quantity when a
// line for the same (product, variant) pair already exists.
func (d *Draft) AddLine(p Product, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if p.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if idx := d.find(p.ID, p.VariantID); idx >= 0 {
		d.lines[idx].Qty += qty
		return nil
	}
	d.lines = append(d.lines, Line{
		ProductID:     p.ID,
		VariantID:     p.VariantID,
		Title:         p.Title,
		UnitPrice:     p.Price,
		OriginalPrice: p.Price,
		Qty:           qty,
	})
	return nil
}

// RemoveLine deletes the matching line. Removing an absent line is a no-op.
func (d *Draft) RemoveLine(productID uuid.UUID, variantID *uuid.UUID) {
	idx := d.find(productID, variantID)
	if idx < 0 {
		return
	}
	d.lines = append(d.lines[:idx], d.lines[idx+1:]...)
}

// SetQuantity overwrites the quantity for the matching line. The line is left
// untouched when the quantity is invalid or the line does not exist.
func (d *Draft) SetQuantity(productID uuid.UUID, variantID *uuid.UUID, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	idx := d.find(productID, variantID)
	if idx < 0 {
		return nil
	}
	d.lines[idx].Qty = qty
	return nil
}

// SetUnitPrice overrides the selling price for the matching line, e.g. a
// negotiated price. The original catalog price is preserved.
func (d *Draft) SetUnitPrice(productID uuid.UUID, variantID *uuid.UUID, price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	idx := d.find(productID, variantID)
	if idx < 0 {
		return nil
	}
	d.lines[idx].UnitPrice = price
	return nil
}

// Subtotal sums the totals of all current lines. An empty draft yields zero.
func (d *Draft) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range d.lines {
		subtotal = subtotal.Add(line.Total())
	}
	return subtotal
}

// Lines returns a copy of the current line items in insertion order.
func (d *Draft) Lines() []Line {
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	return out
}

// Len reports the number of lines in the draft.
func (d *Draft) Len() int {
	return len(d.lines)
}

func (d *Draft) find(productID uuid.UUID, variantID *uuid.UUID) int {
	for i, line := range d.lines {
		if line.ProductID != productID {
			continue
		}
		if variantEqual(line.VariantID, variantID) {
			return i
		}
	}
	return -1
}

func variantEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
