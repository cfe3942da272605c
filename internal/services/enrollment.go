package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/db"
	"github.com/yungbote/lms-backend/internal/data/repos"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/apierr"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type UpdateEnrollmentInput struct {
	Progress         *int
	Status           *string
	CompletedLessons *[]uuid.UUID
}

type EnrollmentService interface {
	Create(ctx context.Context, studentID uuid.UUID, courseID string) (*types.Enrollment, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Enrollment, error)
	FindOne(ctx context.Context, studentID uuid.UUID, courseID string) (*types.Enrollment, error)
	UpdateProgress(ctx context.Context, studentID uuid.UUID, courseID string, in UpdateEnrollmentInput) (*types.Enrollment, error)
	Remove(ctx context.Context, studentID uuid.UUID, courseID string) (*MessageResult, error)
	IsEnrolled(ctx context.Context, studentID, courseID uuid.UUID) (bool, error)
}

type enrollmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	enrollmentRepo repos.EnrollmentRepo
	courseRepo     repos.CourseRepo
}

func NewEnrollmentService(db *gorm.DB, baseLog *logger.Logger, enrollmentRepo repos.EnrollmentRepo, courseRepo repos.CourseRepo) EnrollmentService {
	serviceLog := baseLog.With("service", "EnrollmentService")
	return &enrollmentService{
		db:             db,
		log:            serviceLog,
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
	}
}

// Create enrolls the student. The unique (student, course) index backs the
// pre-check, so a concurrent duplicate still resolves to Conflict.
func (es *enrollmentService) Create(ctx context.Context, studentID uuid.UUID, courseID string) (*types.Enrollment, error) {
	cid, err := parseID(courseID, invalidCourseID)
	if err != nil {
		return nil, err
	}
	courses, err := es.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{cid})
	if err != nil {
		return nil, apierr.Normalize(err, invalidCourseID)
	}
	if len(courses) == 0 || courses[0] == nil {
		return nil, apierr.NotFound("Course not found")
	}
	if !courses[0].IsPublished() {
		return nil, apierr.BadRequest("Cannot enroll in unpublished course")
	}

	exists, err := es.enrollmentRepo.Exists(ctx, nil, studentID, cid)
	if err != nil {
		return nil, apierr.Normalize(err, "Failed to enroll in course")
	}
	if exists {
		return nil, apierr.Conflict("Already enrolled in this course")
	}

	enrollment := &types.Enrollment{
		ID:               uuid.New(),
		StudentID:        studentID,
		CourseID:         cid,
		Progress:         0,
		Status:           types.EnrollmentActive,
		CompletedLessons: datatypes.JSONSlice[uuid.UUID]{},
	}
	if _, err := es.enrollmentRepo.Create(ctx, nil, []*types.Enrollment{enrollment}); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Conflict("Already enrolled in this course")
		}
		es.log.Error("create enrollment failed", "course_id", cid.String(), "error", err)
		return nil, apierr.Normalize(err, "Failed to enroll in course")
	}
	return enrollment, nil
}

func (es *enrollmentService) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Enrollment, error) {
	enrollments, err := es.enrollmentRepo.GetByStudentID(ctx, nil, studentID)
	if err != nil {
		return nil, apierr.Normalize(err, "Failed to load enrollments")
	}
	return enrollments, nil
}

func (es *enrollmentService) FindOne(ctx context.Context, studentID uuid.UUID, courseID string) (*types.Enrollment, error) {
	enrollment, err := es.find(ctx, studentID, courseID)
	if err != nil {
		return nil, apierr.Normalize(err, invalidCourseID)
	}
	return enrollment, nil
}

func (es *enrollmentService) UpdateProgress(ctx context.Context, studentID uuid.UUID, courseID string, in UpdateEnrollmentInput) (*types.Enrollment, error) {
	fields := map[string]any{}
	if in.Progress != nil {
		if *in.Progress < 0 || *in.Progress > 100 {
			return nil, apierr.BadRequest("progress must be between 0 and 100")
		}
		fields["progress"] = *in.Progress
	}
	if in.Status != nil {
		if !types.ValidEnrollmentStatus(*in.Status) {
			return nil, apierr.BadRequest("status must be one of: active, completed, dropped")
		}
		fields["status"] = *in.Status
	}
	if in.CompletedLessons != nil {
		fields["completed_lessons"] = datatypes.NewJSONSlice(dedupeIDs(*in.CompletedLessons))
	}

	enrollment, err := es.find(ctx, studentID, courseID)
	if err != nil {
		return nil, apierr.Normalize(err, invalidCourseID)
	}
	updated, err := es.enrollmentRepo.Update(ctx, nil, enrollment.ID, fields)
	if err != nil {
		es.log.Error("update enrollment failed", "enrollment_id", enrollment.ID.String(), "error", err)
		return nil, apierr.Normalize(err, "Failed to update enrollment")
	}
	if updated == nil {
		return nil, apierr.NotFound("Enrollment not found")
	}
	return updated, nil
}

func (es *enrollmentService) Remove(ctx context.Context, studentID uuid.UUID, courseID string) (*MessageResult, error) {
	enrollment, err := es.find(ctx, studentID, courseID)
	if err != nil {
		return nil, apierr.Normalize(err, invalidCourseID)
	}
	if err := es.enrollmentRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{enrollment.ID}); err != nil {
		return nil, apierr.Normalize(err, "Failed to remove enrollment")
	}
	return &MessageResult{Message: "Successfully unenrolled from course"}, nil
}

func (es *enrollmentService) IsEnrolled(ctx context.Context, studentID, courseID uuid.UUID) (bool, error) {
	if studentID == uuid.Nil || courseID == uuid.Nil {
		return false, nil
	}
	return es.enrollmentRepo.Exists(ctx, nil, studentID, courseID)
}

func (es *enrollmentService) find(ctx context.Context, studentID uuid.UUID, courseID string) (*types.Enrollment, error) {
	cid, err := parseID(courseID, invalidCourseID)
	if err != nil {
		return nil, err
	}
	enrollment, err := es.enrollmentRepo.GetByStudentAndCourse(ctx, nil, studentID, cid)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, apierr.NotFound("Enrollment not found")
	}
	return enrollment, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
