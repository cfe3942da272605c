package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/clients/redis"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"github.com/yungbote/lms-backend/internal/services"
)

type Services struct {
	Avatar     services.AvatarService
	Auth       services.AuthService
	Course     services.CourseService
	Lesson     services.LessonService
	Enrollment services.EnrollmentService

	LoginLimiter redis.RateLimiter
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	avatarService, err := services.NewAvatarService(db, log, reposet.User, clients.Media)
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}

	courseCache := redis.NopCourseCache()
	loginLimiter := redis.NopRateLimiter()
	if clients.Redis != nil {
		courseCache = redis.NewCourseCache(log, clients.Redis, cfg.Cache.CourseTTL)
		loginLimiter = redis.NewRateLimiter(log, clients.Redis, "login", cfg.Cache.LoginRateLimit, cfg.Cache.LoginRateWindow)
	}

	authService := services.NewAuthService(
		db,
		log,
		reposet.User,
		avatarService,
		cfg.Auth.JWTSecretKey,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.BcryptCost,
	)
	enrollmentService := services.NewEnrollmentService(db, log, reposet.Enrollment, reposet.Course)
	courseService := services.NewCourseService(
		db,
		log,
		reposet.Course,
		reposet.Lesson,
		reposet.Enrollment,
		clients.Media,
		courseCache,
	)
	lessonService := services.NewLessonService(
		db,
		log,
		reposet.Lesson,
		reposet.Course,
		enrollmentService,
		clients.Media,
	)

	return Services{
		Avatar:       avatarService,
		Auth:         authService,
		Course:       courseService,
		Lesson:       lessonService,
		Enrollment:   enrollmentService,
		LoginLimiter: loginLimiter,
	}, nil
}

// seedAdmin creates the configured instructor account. Nothing happens when
// no admin credentials are configured.
func seedAdmin(ctx context.Context, log *logger.Logger, cfg AdminConfig, auth services.AuthService) error {
	if !cfg.enabled() {
		log.Info("No admin account configured; instructors must be seeded out of band")
		return nil
	}
	user, err := auth.EnsureAdmin(ctx, services.RegisterInput{
		FirstName: cfg.FirstName,
		LastName:  cfg.LastName,
		Email:     cfg.Email,
		Password:  cfg.Password,
	})
	if err != nil {
		return fmt.Errorf("seed admin %s: %w", cfg.Email, err)
	}
	log.Info("Admin account ready", "user_id", user.ID.String())
	return nil
}
