package services

import (
	"context"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/repos"
	"github.com/yungbote/lms-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/apierr"
	"github.com/yungbote/lms-backend/internal/platform/media/mediatest"
)

const testSecret = "test-secret"

type fixture struct {
	db    *gorm.DB
	host  *mediatest.Host
	cache *memCourseCache

	users       repos.UserRepo
	courseRepo  repos.CourseRepo
	lessonRepo  repos.LessonRepo
	enrollRepo  repos.EnrollmentRepo
	auth        AuthService
	courses     CourseService
	lessons     LessonService
	enrollments EnrollmentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	host := mediatest.New()
	cache := &memCourseCache{}

	f := &fixture{
		db:         db,
		host:       host,
		cache:      cache,
		users:      repos.NewUserRepo(db, log),
		courseRepo: repos.NewCourseRepo(db, log),
		lessonRepo: repos.NewLessonRepo(db, log),
		enrollRepo: repos.NewEnrollmentRepo(db, log),
	}
	avatars, err := NewAvatarService(db, log, f.users, host)
	if err != nil {
		t.Fatalf("avatar service: %v", err)
	}
	f.auth = NewAuthService(db, log, f.users, avatars, testSecret, 0, bcrypt.MinCost)
	f.enrollments = NewEnrollmentService(db, log, f.enrollRepo, f.courseRepo)
	f.courses = NewCourseService(db, log, f.courseRepo, f.lessonRepo, f.enrollRepo, host, cache)
	f.lessons = NewLessonService(db, log, f.lessonRepo, f.courseRepo, f.enrollments, host)
	return f
}

func wantKind(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", status)
	}
	if !apierr.IsKind(err, status) {
		t.Fatalf("expected status %d, got %d (%v)", status, apierr.StatusOf(err), err)
	}
}

func wantMessage(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil || err.Error() != msg {
		t.Fatalf("expected %q, got %v", msg, err)
	}
}

// memCourseCache counts calls so tests can observe read-through behavior.
type memCourseCache struct {
	mu            sync.Mutex
	published     []*types.Course
	cached        bool
	hits          int
	invalidations int
}

func (c *memCourseCache) GetPublished(ctx context.Context) ([]*types.Course, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cached {
		return nil, false
	}
	c.hits++
	return c.published, true
}

func (c *memCourseCache) SetPublished(ctx context.Context, courses []*types.Course) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = courses
	c.cached = true
}

func (c *memCourseCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = nil
	c.cached = false
	c.invalidations++
}

func ptr[T any](v T) *T { return &v }
