package repos

import (
	"github.com/yungbote/lms-backend/internal/data/repos/learning"
	"github.com/yungbote/lms-backend/internal/data/repos/user"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo

type CourseRepo = learning.CourseRepo
type LessonRepo = learning.LessonRepo
type EnrollmentRepo = learning.EnrollmentRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }

func NewCourseRepo(db *gorm.DB, log *logger.Logger) CourseRepo {
	return learning.NewCourseRepo(db, log)
}

func NewLessonRepo(db *gorm.DB, log *logger.Logger) LessonRepo {
	return learning.NewLessonRepo(db, log)
}

func NewEnrollmentRepo(db *gorm.DB, log *logger.Logger) EnrollmentRepo {
	return learning.NewEnrollmentRepo(db, log)
}
