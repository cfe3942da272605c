package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

const publishedCoursesKey = "courses:published"

// CourseCache holds the published course listing. Cache failures are logged
// and reported as misses.
type CourseCache interface {
	GetPublished(ctx context.Context) ([]*types.Course, bool)
	SetPublished(ctx context.Context, courses []*types.Course)
	Invalidate(ctx context.Context)
}

// KVStore is the part of goredis.Cmdable the cache uses.
type KVStore interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

type courseCache struct {
	log *logger.Logger
	rdb KVStore
	ttl time.Duration
}

func NewCourseCache(log *logger.Logger, rdb KVStore, ttl time.Duration) CourseCache {
	if rdb == nil {
		return NopCourseCache()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &courseCache{log: log.With("cache", "CourseCache"), rdb: rdb, ttl: ttl}
}

func (c *courseCache) GetPublished(ctx context.Context) ([]*types.Course, bool) {
	raw, err := c.rdb.Get(ctx, publishedCoursesKey).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warn("course cache read failed", "error", err)
		}
		observability.Current().ObserveCache("courses_published", false)
		return nil, false
	}
	var courses []*types.Course
	if err := json.Unmarshal(raw, &courses); err != nil {
		c.log.Warn("course cache payload unreadable", "error", err)
		observability.Current().ObserveCache("courses_published", false)
		return nil, false
	}
	observability.Current().ObserveCache("courses_published", true)
	return courses, true
}

func (c *courseCache) SetPublished(ctx context.Context, courses []*types.Course) {
	if courses == nil {
		courses = []*types.Course{}
	}
	raw, err := json.Marshal(courses)
	if err != nil {
		c.log.Warn("course cache encode failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, publishedCoursesKey, raw, c.ttl).Err(); err != nil {
		c.log.Warn("course cache write failed", "error", err)
	}
}

func (c *courseCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, publishedCoursesKey).Err(); err != nil {
		c.log.Warn("course cache invalidate failed", "error", err)
	}
}

type nopCourseCache struct{}

func NopCourseCache() CourseCache { return nopCourseCache{} }

func (nopCourseCache) GetPublished(context.Context) ([]*types.Course, bool) { return nil, false }
func (nopCourseCache) SetPublished(context.Context, []*types.Course)        {}
func (nopCourseCache) Invalidate(context.Context)                          {}
