package app

import (
	"github.com/gin-gonic/gin"

	lmshttp "github.com/yungbote/lms-backend/internal/http"
	httpH "github.com/yungbote/lms-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lms-backend/internal/http/middleware"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type Middleware struct {
	Auth       *httpMW.AuthMiddleware
	LoginLimit gin.HandlerFunc
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Auth       *httpH.AuthHandler
	Course     *httpH.CourseHandler
	Lesson     *httpH.LessonHandler
	Enrollment *httpH.EnrollmentHandler
}

func wireHandlers(log *logger.Logger, services Services, health httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(health),
		Auth:       httpH.NewAuthHandler(services.Auth),
		Course:     httpH.NewCourseHandler(log, services.Course),
		Lesson:     httpH.NewLessonHandler(log, services.Lesson),
		Enrollment: httpH.NewEnrollmentHandler(log, services.Enrollment),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:       httpMW.NewAuthMiddleware(log, services.Auth),
		LoginLimit: httpMW.RateLimit(log, services.LoginLimiter, "login"),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *lmshttp.Server {
	return lmshttp.NewServer(log, lmshttp.RouterConfig{
		Log:               log,
		ServiceName:       cfg.Otel.ServiceName,
		TracingEnabled:    cfg.Otel.Enabled,
		Metrics:           metrics,
		CORSOrigins:       cfg.HTTP.CORSOrigins,
		MaxUploadBytes:    cfg.maxUploadBytes(),
		TrustedProxies:    cfg.HTTP.TrustedProxies,
		AuthMiddleware:    middleware.Auth,
		LoginRateLimiter:  middleware.LoginLimit,
		HealthHandler:     handlers.Health,
		AuthHandler:       handlers.Auth,
		CourseHandler:     handlers.Course,
		LessonHandler:     handlers.Lesson,
		EnrollmentHandler: handlers.Enrollment,
	})
}
