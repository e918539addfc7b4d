package voucher

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-pos/internal/common"
)

// PGStore loads coupon rules from Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

// GetRuleByCode fetches the rule for a coupon code.
func (s PGStore) GetRuleByCode(ctx context.Context, code string) (Rule, error) {
	if s.Pool == nil {
		return Rule{}, errors.New("voucher store not configured")
	}
	const q = `
SELECT code, kind, value, percent_bps, min_spend, usage_limit, used_count, valid_from, valid_to
FROM vouchers
WHERE code = $1`
	var (
		rule       Rule
		value      pgtype.Numeric
		minSpend   pgtype.Numeric
		percentBps pgtype.Int4
		usageLimit pgtype.Int4
		validFrom  pgtype.Timestamptz
		validTo    pgtype.Timestamptz
	)
	err := s.Pool.QueryRow(ctx, q, code).Scan(
		&rule.Code, &rule.Kind, &value, &percentBps, &minSpend,
		&usageLimit, &rule.UsedCount, &validFrom, &validTo,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rule{}, ErrCouponNotFound
		}
		return Rule{}, err
	}
	if rule.Value, err = common.NumericToDecimal(value); err != nil {
		return Rule{}, err
	}
	if rule.MinSpend, err = common.NumericToDecimal(minSpend); err != nil {
		return Rule{}, err
	}
	if percentBps.Valid {
		bps := percentBps.Int32
		rule.PercentBps = &bps
	}
	if usageLimit.Valid {
		limit := usageLimit.Int32
		rule.UsageLimit = &limit
	}
	if validFrom.Valid {
		from := validFrom.Time
		rule.ValidFrom = &from
	}
	if validTo.Valid {
		to := validTo.Time
		rule.ValidTo = &to
	}
	return rule, nil
}

// IncrementUsage bumps the used counter for the coupon code.
func (s PGStore) IncrementUsage(ctx context.Context, code string) error {
	if s.Pool == nil {
		return errors.New("voucher store not configured")
	}
	_, err := s.Pool.Exec(ctx, `UPDATE vouchers SET used_count = used_count + 1 WHERE code = $1`, code)
	return err
}
