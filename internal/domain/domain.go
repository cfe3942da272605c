package domain

import (
	"github.com/yungbote/lms-backend/internal/domain/learning"
	"github.com/yungbote/lms-backend/internal/domain/user"
)

const (
	RoleStudent = user.RoleStudent
	RoleAdmin   = user.RoleAdmin

	CourseStatusDraft     = learning.CourseStatusDraft
	CourseStatusPublished = learning.CourseStatusPublished

	ResourceVideo    = learning.ResourceVideo
	ResourceImage    = learning.ResourceImage
	ResourcePDF      = learning.ResourcePDF
	ResourceDocument = learning.ResourceDocument
	ResourceLink     = learning.ResourceLink

	EnrollmentActive    = learning.EnrollmentActive
	EnrollmentCompleted = learning.EnrollmentCompleted
	EnrollmentDropped   = learning.EnrollmentDropped
)

type User = user.User

type Course = learning.Course
type Lesson = learning.Lesson
type LessonSummary = learning.LessonSummary
type Resource = learning.Resource
type Enrollment = learning.Enrollment

// Models lists every persisted type, in migration order.
func Models() []any {
	return []any{
		&User{},
		&Course{},
		&Lesson{},
		&Enrollment{},
	}
}

var (
	ValidRole             = user.ValidRole
	ValidCourseStatus     = learning.ValidCourseStatus
	ValidEnrollmentStatus = learning.ValidEnrollmentStatus
)
