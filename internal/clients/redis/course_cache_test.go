package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

func TestCourseCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	cache := NewCourseCache(logger.Nop(), store, 30*time.Second)

	if _, ok := cache.GetPublished(ctx); ok {
		t.Fatalf("expected a miss on an empty cache")
	}

	id := uuid.New()
	cache.SetPublished(ctx, []*types.Course{{ID: id, Title: "Go", Status: types.CourseStatusPublished}})
	if store.ttls[publishedCoursesKey] != 30*time.Second {
		t.Fatalf("expected ttl to be applied, got %s", store.ttls[publishedCoursesKey])
	}

	got, ok := cache.GetPublished(ctx)
	if !ok || len(got) != 1 || got[0].ID != id || got[0].Title != "Go" {
		t.Fatalf("unexpected cached value: ok=%v %+v", ok, got)
	}

	cache.Invalidate(ctx)
	if _, ok := cache.GetPublished(ctx); ok {
		t.Fatalf("expected a miss after Invalidate")
	}
}

func TestCourseCacheEmptyListIsAHit(t *testing.T) {
	ctx := context.Background()
	cache := NewCourseCache(logger.Nop(), newMemStore(), time.Minute)
	cache.SetPublished(ctx, nil)
	got, ok := cache.GetPublished(ctx)
	if !ok || len(got) != 0 {
		t.Fatalf("expected an empty hit, ok=%v len=%d", ok, len(got))
	}
}

func TestCourseCacheReadFailureIsAMiss(t *testing.T) {
	store := newMemStore()
	store.failGet = true
	cache := NewCourseCache(logger.Nop(), store, time.Minute)
	if _, ok := cache.GetPublished(context.Background()); ok {
		t.Fatalf("expected a miss when redis fails")
	}
}

func TestNopCourseCache(t *testing.T) {
	cache := NewCourseCache(logger.Nop(), nil, time.Minute)
	cache.SetPublished(context.Background(), []*types.Course{{Title: "x"}})
	if _, ok := cache.GetPublished(context.Background()); ok {
		t.Fatalf("nop cache should always miss")
	}
}
