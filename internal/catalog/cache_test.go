package catalog

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func TestCacheRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	cache := NewCache(client, time.Minute)

	ctx := context.Background()
	product := Product{ID: uuid.New(), SKU: "ESP-001", Title: "Espresso", Price: decimal.RequireFromString("3.50"), Active: true}
	key := detailKey(product.ID)

	var missed Product
	hit, err := cache.GetJSON(ctx, key, &missed)
	if err != nil {
		t.Fatalf("get before set: %v", err)
	}
	if hit {
		t.Fatal("expected cache miss")
	}

	if err := cache.SetJSON(ctx, key, product); err != nil {
		t.Fatalf("set: %v", err)
	}

	var cached Product
	hit, err = cache.GetJSON(ctx, key, &cached)
	if err != nil {
		t.Fatalf("get after set: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if cached.Title != product.Title || !cached.Price.Equal(product.Price) {
		t.Fatalf("unexpected cached product: %+v", cached)
	}

	if err := cache.Invalidate(ctx, key); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	hit, err = cache.GetJSON(ctx, key, &cached)
	if err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if hit {
		t.Fatal("expected miss after invalidate")
	}
}

func TestCacheNilClientIsNoop(t *testing.T) {
	var cache *Cache
	ctx := context.Background()
	hit, err := cache.GetJSON(ctx, "k", &Product{})
	if err != nil || hit {
		t.Fatalf("nil cache get: hit=%v err=%v", hit, err)
	}
	if err := cache.SetJSON(ctx, "k", Product{}); err != nil {
		t.Fatalf("nil cache set: %v", err)
	}
}
