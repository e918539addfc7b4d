package voucher

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidCoupon is the base error for every coupon resolution failure.
// Specific failures wrap it so callers can match the whole class at once.
var ErrInvalidCoupon = errors.New("invalid coupon")

var (
	// ErrCouponNotFound is returned when the code resolves to no rule.
	ErrCouponNotFound = fmt.Errorf("coupon not found: %w", ErrInvalidCoupon)
	// ErrCouponInactive is returned when the coupon is used before its window opens.
	ErrCouponInactive = fmt.Errorf("coupon not active: %w", ErrInvalidCoupon)
	// ErrCouponExpired is returned when the coupon window has closed.
	ErrCouponExpired = fmt.Errorf("coupon expired: %w", ErrInvalidCoupon)
	// ErrUsageLimitReached indicates the coupon exhausted its global quota.
	ErrUsageLimitReached = fmt.Errorf("coupon usage limit reached: %w", ErrInvalidCoupon)
	// ErrMinimumSpendUnmet indicates the subtotal did not meet the coupon requirement.
	ErrMinimumSpendUnmet = fmt.Errorf("coupon minimum spend not met: %w", ErrInvalidCoupon)
)

// Rule captures the runtime constraints of a coupon.
type Rule struct {
	Code       string
	Kind       string
	Value      decimal.Decimal
	PercentBps *int32
	MinSpend   decimal.Decimal
	UsageLimit *int32
	UsedCount  int32
	ValidFrom  *time.Time
	ValidTo    *time.Time
}

// Validate ensures the rule can be applied at the provided instant and subtotal.
func (r Rule) Validate(now time.Time, subtotal decimal.Decimal) error {
	if subtotal.LessThan(r.MinSpend) {
		return ErrMinimumSpendUnmet
	}
	if r.ValidFrom != nil && now.Before(*r.ValidFrom) {
		return ErrCouponInactive
	}
	if r.ValidTo != nil && now.After(*r.ValidTo) {
		return ErrCouponExpired
	}
	if r.UsageLimit != nil && *r.UsageLimit >= 0 && r.UsedCount >= *r.UsageLimit {
		return ErrUsageLimitReached
	}
	return nil
}

var bpsDivisor = decimal.NewFromInt(10000)

// Discount determines the discount amount for the subtotal. The result is
// capped at the subtotal and never negative.
func (r Rule) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.Sign() <= 0 {
		return decimal.Zero
	}
	discount := r.Value
	if strings.EqualFold(r.Kind, "percent") {
		if r.PercentBps == nil || *r.PercentBps <= 0 {
			return decimal.Zero
		}
		discount = subtotal.Mul(decimal.NewFromInt(int64(*r.PercentBps))).Div(bpsDivisor)
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}
