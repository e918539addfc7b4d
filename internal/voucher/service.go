package voucher

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Store loads coupon rules from persistence.
type Store interface {
	GetRuleByCode(ctx context.Context, code string) (Rule, error)
	IncrementUsage(ctx context.Context, code string) error
}

// Service resolves coupon codes into flat discount amounts. The charge
// calculator only ever sees the resolved amount, never the raw code.
type Service struct {
	Store Store
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Resolve validates the coupon against the subtotal and returns the discount
// amount it grants. Every failure wraps ErrInvalidCoupon.
func (s *Service) Resolve(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	if s == nil || s.Store == nil {
		return decimal.Zero, errors.New("voucher service not configured")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return decimal.Zero, ErrCouponNotFound
	}
	rule, err := s.Store.GetRuleByCode(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	if err := rule.Validate(s.now(), subtotal); err != nil {
		return decimal.Zero, err
	}
	return rule.Discount(subtotal), nil
}

// MarkUsed increments the usage counter after a successful checkout.
func (s *Service) MarkUsed(ctx context.Context, code string) error {
	if s == nil || s.Store == nil {
		return errors.New("voucher service not configured")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	return s.Store.IncrementUsage(ctx, code)
}
