package rediscache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"salonbook/backend/internal/domain"
)

type fakeCatalog struct {
	listFn func(ctx context.Context) ([]domain.Service, error)
	getFn  func(ctx context.Context, id uuid.UUID) (domain.Service, error)
}

func (f *fakeCatalog) ListServices(ctx context.Context) ([]domain.Service, error) {
	if f.listFn == nil {
		panic("ListServices not configured")
	}
	return f.listFn(ctx)
}

func (f *fakeCatalog) GetService(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	if f.getFn == nil {
		panic("GetService not configured")
	}
	return f.getFn(ctx, id)
}

var haircut = domain.Service{
	ID:              uuid.MustParse("00000000-0000-0000-0000-0000000000a1"),
	Name:            "Men's haircut",
	DurationMinutes: 60,
	Price:           decimal.RequireFromString("50.00"),
}

func TestCatalogCache_FailsOpenWhenRedisUnavailable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	calls := 0
	inner := &fakeCatalog{listFn: func(context.Context) ([]domain.Service, error) {
		calls++
		return []domain.Service{haircut}, nil
	}}
	c := NewCatalogCache(rdb, inner, time.Minute, nil)

	for i := 0; i < 2; i++ {
		got, err := c.ListServices(context.Background())
		if err != nil {
			t.Fatalf("ListServices error: %v", err)
		}
		if len(got) != 1 || got[0].ID != haircut.ID {
			t.Fatalf("services = %v", got)
		}
	}
	if calls != 2 {
		t.Fatalf("inner calls = %d, want 2", calls)
	}
}

func TestCatalogCacheIntegration_ReadThrough(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("SALON_TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("SALON_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	calls := 0
	inner := &fakeCatalog{
		listFn: func(context.Context) ([]domain.Service, error) {
			calls++
			return []domain.Service{haircut}, nil
		},
		getFn: func(context.Context, uuid.UUID) (domain.Service, error) {
			calls++
			return haircut, nil
		},
	}
	c := NewCatalogCache(rdb, inner, time.Minute, nil)
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}
	t.Cleanup(func() { _ = c.Invalidate(context.Background()) })

	for i := 0; i < 3; i++ {
		got, err := c.ListServices(ctx)
		if err != nil {
			t.Fatalf("ListServices error: %v", err)
		}
		if len(got) != 1 || !got[0].Price.Equal(haircut.Price) || got[0].DurationMinutes != 60 {
			t.Fatalf("services = %+v", got)
		}
	}
	if calls != 1 {
		t.Fatalf("inner list calls = %d, want 1", calls)
	}

	if _, err := c.GetService(ctx, haircut.ID); err != nil {
		t.Fatalf("GetService error: %v", err)
	}
	if _, err := c.GetService(ctx, haircut.ID); err != nil {
		t.Fatalf("GetService error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("inner calls = %d, want 2", calls)
	}

	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}
	if _, err := c.ListServices(ctx); err != nil {
		t.Fatalf("ListServices error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("inner calls after invalidate = %d, want 3", calls)
	}
}
