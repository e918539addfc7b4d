package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/obs"
)

// Detail is an order with its lines.
type Detail struct {
	Order Order  `json:"order"`
	Items []Item `json:"items"`
}

// Service exposes order tracking operations on top of the store.
type Service struct {
	Store *PGStore
	Bus   *events.Bus
	Log   zerolog.Logger
}

// Get loads an order with its items.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Detail, error) {
	if s == nil || s.Store == nil {
		return Detail{}, errors.New("order service not configured")
	}
	o, err := s.Store.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	items, err := s.Store.ListItems(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Order: o, Items: items}, nil
}

// List returns a page of orders with the total count.
func (s *Service) List(ctx context.Context, limit, offset int32) ([]Order, int64, error) {
	if s == nil || s.Store == nil {
		return nil, 0, errors.New("order service not configured")
	}
	return s.Store.List(ctx, limit, offset)
}

// History returns the status change log for an order.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]StatusChange, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("order service not configured")
	}
	return s.Store.History(ctx, id)
}

// ChangeStatus applies an externally triggered status transition, records
// it in the history and announces it on the event bus.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, to Status, note string) (StatusChange, error) {
	if s == nil || s.Store == nil {
		return StatusChange{}, errors.New("order service not configured")
	}
	change, err := s.Store.ChangeStatus(ctx, id, to, note)
	if err != nil {
		return StatusChange{}, err
	}
	if obs.OrderStatusChangeTotal != nil {
		obs.OrderStatusChangeTotal.WithLabelValues(string(to)).Inc()
	}
	s.emit(ctx, change)
	return change, nil
}

// SetFulfillment sets the fulfillment axis. It never touches order status.
func (s *Service) SetFulfillment(ctx context.Context, id uuid.UUID, fs FulfillmentStatus) error {
	if s == nil || s.Store == nil {
		return errors.New("order service not configured")
	}
	return s.Store.SetFulfillment(ctx, id, fs)
}

func (s *Service) emit(ctx context.Context, change StatusChange) {
	if s.Bus == nil {
		return
	}
	topic := events.TopicOrderStatusChanged
	if change.To == StatusCancelled {
		topic = events.TopicOrderCanceled
	}
	payload := map[string]any{
		"orderId": change.OrderID.String(),
		"from":    change.From,
		"to":      change.To,
	}
	if change.Note != "" {
		payload["note"] = change.Note
	}
	if _, err := s.Bus.Emit(ctx, topic, change.OrderID, payload); err != nil {
		s.Log.Warn().Err(err).Str("order_id", change.OrderID.String()).Msg("emit status change event")
	}
}
