package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	types "github.com/yungbote/lms-backend/internal/domain"
	httpH "github.com/yungbote/lms-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lms-backend/internal/http/middleware"
	"github.com/yungbote/lms-backend/internal/http/response"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	TracingEnabled bool
	Metrics        *observability.Metrics
	CORSOrigins    []string
	MaxUploadBytes int64
	TrustedProxies []string

	AuthMiddleware   *httpMW.AuthMiddleware
	LoginRateLimiter gin.HandlerFunc

	HealthHandler     *httpH.HealthHandler
	AuthHandler       *httpH.AuthHandler
	CourseHandler     *httpH.CourseHandler
	LessonHandler     *httpH.LessonHandler
	EnrollmentHandler *httpH.EnrollmentHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	response.UseJSONFieldNames()

	r := gin.New()
	// ClientIP keys the login limiter, so forwarded headers only count from
	// listed proxies.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		if cfg.Log != nil {
			cfg.Log.Warn("invalid trusted proxies; trusting none", "error", err)
		}
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		serviceName := cfg.ServiceName
		if serviceName == "" {
			serviceName = "lms-backend"
		}
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.BodyLimit(cfg.MaxUploadBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	requireAuth := func(c *gin.Context) { c.Next() }
	if cfg.AuthMiddleware != nil {
		requireAuth = cfg.AuthMiddleware.RequireAuth()
	}
	adminOnly := httpMW.RequireRoles(types.RoleAdmin)
	loginLimit := cfg.LoginRateLimiter
	if loginLimit == nil {
		loginLimit = func(c *gin.Context) { c.Next() }
	}

	// Auth
	if cfg.AuthHandler != nil {
		for _, prefix := range []string{"/auth", "/api/auth"} {
			auth := r.Group(prefix)
			auth.POST("/register", cfg.AuthHandler.Register)
			auth.POST("/login", loginLimit, cfg.AuthHandler.Login)
			auth.GET("/profile", requireAuth, cfg.AuthHandler.Profile)
			auth.PATCH("/avatar", requireAuth, cfg.AuthHandler.UpdateAvatar)
		}
	}

	// Courses
	if cfg.CourseHandler != nil {
		courses := r.Group("/courses")
		courses.POST("/create", requireAuth, adminOnly, cfg.CourseHandler.Create)
		courses.GET("/published", cfg.CourseHandler.ListPublished)
		courses.GET("/my-courses", requireAuth, adminOnly, cfg.CourseHandler.ListMine)
		courses.GET("/:id", cfg.CourseHandler.Get)
		courses.PATCH("/:id", requireAuth, adminOnly, cfg.CourseHandler.Update)
		courses.DELETE("/:id", requireAuth, adminOnly, cfg.CourseHandler.Delete)
	}

	// Lessons
	if cfg.LessonHandler != nil {
		lessons := r.Group("/lessons")
		lessons.POST("/create", requireAuth, adminOnly, cfg.LessonHandler.Create)
		lessons.GET("/instructor/my-lessons", requireAuth, adminOnly, cfg.LessonHandler.ListMine)
		lessons.GET("/course/:id", cfg.LessonHandler.ListForCourse)
		lessons.GET("/:id", requireAuth, cfg.LessonHandler.Get)
		lessons.PATCH("/:id", requireAuth, adminOnly, cfg.LessonHandler.Update)
		lessons.DELETE("/:id", requireAuth, adminOnly, cfg.LessonHandler.Delete)
		lessons.DELETE("/:id/resources/*assetId", requireAuth, adminOnly, cfg.LessonHandler.DeleteResource)
	}

	// Enrollments
	if cfg.EnrollmentHandler != nil {
		enrollments := r.Group("/enrollments", requireAuth)
		enrollments.POST("", cfg.EnrollmentHandler.Create)
		enrollments.GET("/my-courses", cfg.EnrollmentHandler.ListMine)
		enrollments.GET("/check/:courseId", cfg.EnrollmentHandler.Check)
		enrollments.GET("/:courseId", cfg.EnrollmentHandler.Get)
		enrollments.PATCH("/:courseId", cfg.EnrollmentHandler.UpdateProgress)
		enrollments.DELETE("/:courseId", cfg.EnrollmentHandler.Delete)
	}

	return r
}
