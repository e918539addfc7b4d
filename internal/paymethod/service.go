package paymethod

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/obs"
)

// FeeType describes how a processing fee is applied.
type FeeType string

const (
	// FeeFlat is a fixed amount added per transaction.
	FeeFlat FeeType = "flat"
	// FeePercentage is a percentage of the transaction amount.
	FeePercentage FeeType = "percentage"
)

var (
	// ErrNotFound indicates the requested payment method does not exist.
	ErrNotFound = errors.New("payment method not found")
	// ErrInvalidInput is returned when the provided payload is invalid.
	ErrInvalidInput = errors.New("invalid payment method input")
	// ErrCannotDeleteDefault guards the currently-default method against deletion.
	ErrCannotDeleteDefault = errors.New("cannot delete the default payment method")
	// ErrConflictingDefault reports more than one default observed at read time.
	// It is surfaced, never silently repaired.
	ErrConflictingDefault = errors.New("conflicting default payment methods")
	// ErrDuplicateCode indicates the method code is already taken.
	ErrDuplicateCode = errors.New("payment method code already exists")
)

// Method is a configured payment method in the catalog.
type Method struct {
	ID            uuid.UUID       `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	ProcessingFee decimal.Decimal `json:"processing_fee"`
	FeeType       FeeType         `json:"fee_type"`
	IsDefault     bool            `json:"is_default"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Store persists the payment method catalog. SetDefault must be atomic: no
// reader may ever observe zero or multiple defaults mid-operation.
type Store interface {
	List(ctx context.Context) ([]Method, error)
	Get(ctx context.Context, id uuid.UUID) (Method, error)
	Create(ctx context.Context, m Method) (Method, error)
	SetDefault(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service encapsulates payment method catalog operations.
type Service struct {
	Store Store
}

// List returns all configured methods.
func (s *Service) List(ctx context.Context) ([]Method, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("paymethod service not configured")
	}
	return s.Store.List(ctx)
}

// Create validates and stores a new method.
func (s *Service) Create(ctx context.Context, m Method) (Method, error) {
	if s == nil || s.Store == nil {
		return Method{}, errors.New("paymethod service not configured")
	}
	m.Code = strings.TrimSpace(strings.ToLower(m.Code))
	if m.Code == "" || strings.TrimSpace(m.Name) == "" {
		return Method{}, ErrInvalidInput
	}
	if m.FeeType != FeeFlat && m.FeeType != FeePercentage {
		return Method{}, ErrInvalidInput
	}
	if m.ProcessingFee.IsNegative() {
		return Method{}, ErrInvalidInput
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	created, err := s.Store.Create(ctx, m)
	if err != nil {
		return Method{}, err
	}
	if m.IsDefault {
		if err := s.Store.SetDefault(ctx, created.ID); err != nil {
			return Method{}, err
		}
		created.IsDefault = true
	}
	return created, nil
}

// SetDefault promotes the method to the single system-wide default. The store
// performs the demote-and-promote as one atomic write.
func (s *Service) SetDefault(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("paymethod service not configured")
	}
	if err := s.Store.SetDefault(ctx, id); err != nil {
		return err
	}
	if obs.DefaultMethodSwapTotal != nil {
		obs.DefaultMethodSwapTotal.Inc()
	}
	return nil
}

// Delete removes a method. The current default is protected; it must be
// reassigned or un-flagged first.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("paymethod service not configured")
	}
	return s.Store.Delete(ctx, id)
}

// Default returns the current default method. More than one default in the
// catalog is reported as ErrConflictingDefault.
func (s *Service) Default(ctx context.Context) (Method, error) {
	if s == nil || s.Store == nil {
		return Method{}, errors.New("paymethod service not configured")
	}
	methods, err := s.Store.List(ctx)
	if err != nil {
		return Method{}, err
	}
	var found *Method
	for i := range methods {
		if !methods[i].IsDefault {
			continue
		}
		if found != nil {
			return Method{}, ErrConflictingDefault
		}
		found = &methods[i]
	}
	if found == nil {
		return Method{}, ErrNotFound
	}
	return *found, nil
}
