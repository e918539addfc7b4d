package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/cart"
)

// Service orchestrates catalog queries and detail caching.
type Service struct {
	Store *PGStore
	Cache *Cache
	Log   zerolog.Logger
}

func detailKey(id uuid.UUID) string {
	return fmt.Sprintf("catalog:product:%s", id)
}

// List returns a page of active products.
func (s *Service) List(ctx context.Context, search string, limit, offset int32) ([]Product, int64, error) {
	if s == nil || s.Store == nil {
		return nil, 0, errors.New("catalog service not configured")
	}
	return s.Store.List(ctx, search, limit, offset)
}

// Get loads a product detail, serving from cache when possible.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	if s == nil || s.Store == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	var cached Product
	hit, err := s.Cache.GetJSON(ctx, detailKey(id), &cached)
	if err != nil {
		s.Log.Warn().Err(err).Str("product_id", id.String()).Msg("catalog cache read")
	}
	if hit {
		return cached, nil
	}
	p, err := s.Store.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := s.Cache.SetJSON(ctx, detailKey(id), p); err != nil {
		s.Log.Warn().Err(err).Str("product_id", id.String()).Msg("catalog cache write")
	}
	return p, nil
}

// Lookup resolves a product (and optional variant) into a sellable line
// source. Variant price, when set, overrides the product price.
func (s *Service) Lookup(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (cart.Product, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return cart.Product{}, err
	}
	if !p.Active {
		return cart.Product{}, ErrNotFound
	}
	price := p.Price
	title := p.Title
	if variantID != nil {
		var found *Variant
		for i := range p.Variants {
			if p.Variants[i].ID == *variantID {
				found = &p.Variants[i]
				break
			}
		}
		if found == nil {
			return cart.Product{}, ErrNotFound
		}
		if found.Price != nil {
			price = *found.Price
		}
		if found.Name != "" {
			title = p.Title + " (" + found.Name + ")"
		}
	}
	if price.LessThan(decimal.Zero) {
		return cart.Product{}, ErrNotFound
	}
	return cart.Product{ID: p.ID, VariantID: variantID, Title: title, Price: price}, nil
}
