package paymethod

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memStore struct {
	mu      sync.Mutex
	methods []Method
}

func (s *memStore) List(_ context.Context) ([]Method, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Method, len(s.methods))
	copy(out, s.methods)
	return out, nil
}

func (s *memStore) Get(_ context.Context, id uuid.UUID) (Method, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.methods {
		if m.ID == id {
			return m, nil
		}
	}
	return Method{}, ErrNotFound
}

func (s *memStore) Create(_ context.Context, m Method) (Method, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.methods {
		if existing.Code == m.Code {
			return Method{}, ErrDuplicateCode
		}
	}
	m.IsDefault = false
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	s.methods = append(s.methods, m)
	return m, nil
}

func (s *memStore) SetDefault(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.methods {
		if s.methods[i].ID == id {
			found = true
		}
	}
	if !found {
		return ErrNotFound
	}
	for i := range s.methods {
		s.methods[i].IsDefault = s.methods[i].ID == id
	}
	return nil
}

func (s *memStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.methods {
		if m.ID != id {
			continue
		}
		if m.IsDefault {
			return ErrCannotDeleteDefault
		}
		s.methods = append(s.methods[:i], s.methods[i+1:]...)
		return nil
	}
	return ErrNotFound
}

func newTestService(t *testing.T, codes ...string) (*Service, []Method) {
	t.Helper()
	svc := &Service{Store: &memStore{}}
	created := make([]Method, 0, len(codes))
	for _, code := range codes {
		m, err := svc.Create(context.Background(), Method{
			Code:          code,
			Name:          code,
			ProcessingFee: decimal.Zero,
			FeeType:       FeeFlat,
		})
		if err != nil {
			t.Fatalf("create %s: %v", code, err)
		}
		created = append(created, m)
	}
	return svc, created
}

func countDefaults(t *testing.T, svc *Service) int {
	t.Helper()
	methods, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defaults := 0
	for _, m := range methods {
		if m.IsDefault {
			defaults++
		}
	}
	return defaults
}

func TestSetDefaultLeavesExactlyOneDefault(t *testing.T) {
	svc, methods := newTestService(t, "cash", "card", "transfer")
	ctx := context.Background()
	for _, m := range []Method{methods[0], methods[2], methods[1], methods[0]} {
		if err := svc.SetDefault(ctx, m.ID); err != nil {
			t.Fatalf("set default: %v", err)
		}
		if got := countDefaults(t, svc); got != 1 {
			t.Fatalf("expected exactly one default, got %d", got)
		}
	}
	def, err := svc.Default(ctx)
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if def.ID != methods[0].ID {
		t.Fatalf("expected %s as default, got %s", methods[0].Code, def.Code)
	}
}

func TestNoDefaultUntilAssigned(t *testing.T) {
	svc, _ := newTestService(t, "cash", "card")
	if got := countDefaults(t, svc); got != 0 {
		t.Fatalf("expected zero defaults before assignment, got %d", got)
	}
	if _, err := svc.Default(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteDefaultIsRejected(t *testing.T) {
	svc, methods := newTestService(t, "cash", "card")
	ctx := context.Background()
	if err := svc.SetDefault(ctx, methods[0].ID); err != nil {
		t.Fatalf("set default: %v", err)
	}
	if err := svc.Delete(ctx, methods[0].ID); !errors.Is(err, ErrCannotDeleteDefault) {
		t.Fatalf("expected ErrCannotDeleteDefault, got %v", err)
	}
	remaining, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("catalog must be unchanged, got %d methods", len(remaining))
	}
	if err := svc.Delete(ctx, methods[1].ID); err != nil {
		t.Fatalf("deleting a non-default must succeed: %v", err)
	}
}

func TestConflictingDefaultIsReportedNotRepaired(t *testing.T) {
	store := &memStore{methods: []Method{
		{ID: uuid.New(), Code: "cash", IsDefault: true},
		{ID: uuid.New(), Code: "card", IsDefault: true},
	}}
	svc := &Service{Store: store}
	if _, err := svc.Default(context.Background()); !errors.Is(err, ErrConflictingDefault) {
		t.Fatalf("expected ErrConflictingDefault, got %v", err)
	}
	methods, _ := store.List(context.Background())
	defaults := 0
	for _, m := range methods {
		if m.IsDefault {
			defaults++
		}
	}
	if defaults != 2 {
		t.Fatalf("conflict must not be silently resolved, got %d defaults", defaults)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := &Service{Store: &memStore{}}
	ctx := context.Background()
	if _, err := svc.Create(ctx, Method{Code: "", Name: "x", FeeType: FeeFlat}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty code, got %v", err)
	}
	if _, err := svc.Create(ctx, Method{Code: "cash", Name: "Cash", FeeType: "weird"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad fee type, got %v", err)
	}
	if _, err := svc.Create(ctx, Method{Code: "cash", Name: "Cash", FeeType: FeeFlat, ProcessingFee: decimal.NewFromInt(-1)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative fee, got %v", err)
	}
}

func TestCreateWithDefaultFlagPromotes(t *testing.T) {
	svc := &Service{Store: &memStore{}}
	ctx := context.Background()
	first, err := svc.Create(ctx, Method{Code: "cash", Name: "Cash", FeeType: FeeFlat, IsDefault: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !first.IsDefault {
		t.Fatal("expected created method to be default")
	}
	second, err := svc.Create(ctx, Method{Code: "card", Name: "Card", FeeType: FeePercentage, IsDefault: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !second.IsDefault {
		t.Fatal("expected new method to take over default")
	}
	if got := countDefaults(t, svc); got != 1 {
		t.Fatalf("expected one default after takeover, got %d", got)
	}
}
