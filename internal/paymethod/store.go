package paymethod

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-pos/internal/common"
)

// PGStore persists payment methods in Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

const methodColumns = `id, code, name, processing_fee, fee_type, is_default, created_at, updated_at`

// List returns all methods ordered by creation time.
func (s PGStore) List(ctx context.Context) ([]Method, error) {
	if s.Pool == nil {
		return nil, errors.New("paymethod store not configured")
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+methodColumns+` FROM payment_methods ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var methods []Method
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

// Get returns a single method by id.
func (s PGStore) Get(ctx context.Context, id uuid.UUID) (Method, error) {
	if s.Pool == nil {
		return Method{}, errors.New("paymethod store not configured")
	}
	row := s.Pool.QueryRow(ctx, `SELECT `+methodColumns+` FROM payment_methods WHERE id = $1`, id)
	m, err := scanMethod(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Method{}, ErrNotFound
		}
		return Method{}, err
	}
	return m, nil
}

// Create inserts a new method. The default flag is managed through SetDefault
// only, so inserts always start non-default.
func (s PGStore) Create(ctx context.Context, m Method) (Method, error) {
	if s.Pool == nil {
		return Method{}, errors.New("paymethod store not configured")
	}
	const q = `
INSERT INTO payment_methods (id, code, name, processing_fee, fee_type, is_default)
VALUES ($1, $2, $3, $4, $5, FALSE)
RETURNING ` + methodColumns
	row := s.Pool.QueryRow(ctx, q, m.ID, m.Code, m.Name, common.DecimalToNumeric(m.ProcessingFee), string(m.FeeType))
	created, err := scanMethod(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Method{}, ErrDuplicateCode
		}
		return Method{}, err
	}
	return created, nil
}

// SetDefault demotes every other method and promotes the given one in a
// single UPDATE inside one transaction, so no reader observes zero or
// multiple defaults.
func (s PGStore) SetDefault(ctx context.Context, id uuid.UUID) error {
	if s.Pool == nil {
		return errors.New("paymethod store not configured")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payment_methods WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, `UPDATE payment_methods SET is_default = (id = $1), updated_at = now()`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes a non-default method. Deleting the current default fails
// with ErrCannotDeleteDefault and leaves the catalog unchanged.
func (s PGStore) Delete(ctx context.Context, id uuid.UUID) error {
	if s.Pool == nil {
		return errors.New("paymethod store not configured")
	}
	tag, err := s.Pool.Exec(ctx, `DELETE FROM payment_methods WHERE id = $1 AND is_default = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var isDefault bool
	err = s.Pool.QueryRow(ctx, `SELECT is_default FROM payment_methods WHERE id = $1`, id).Scan(&isDefault)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if isDefault {
		return ErrCannotDeleteDefault
	}
	return ErrNotFound
}

func scanMethod(row pgx.Row) (Method, error) {
	var (
		m   Method
		fee pgtype.Numeric
		ft  string
	)
	if err := row.Scan(&m.ID, &m.Code, &m.Name, &fee, &ft, &m.IsDefault, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return Method{}, err
	}
	value, err := common.NumericToDecimal(fee)
	if err != nil {
		return Method{}, err
	}
	m.ProcessingFee = value
	m.FeeType = FeeType(ft)
	return m, nil
}
