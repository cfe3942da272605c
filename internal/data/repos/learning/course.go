package learning

import (
	"context"

	"github.com/google/uuid"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Course, error)
	GetByInstructorIDs(ctx context.Context, tx *gorm.DB, instructorIDs []uuid.UUID) ([]*types.Course, error)
	ListByStatus(ctx context.Context, tx *gorm.DB, status string) ([]*types.Course, error)
	Update(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, fields map[string]any) (*types.Course, error)
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	repoLog := baseLog.With("repo", "CourseRepo")
	return &courseRepo{db: db, log: repoLog}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(courses) == 0 {
		return []*types.Course{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Course
	if len(courseIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", courseIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) GetByInstructorIDs(ctx context.Context, tx *gorm.DB, instructorIDs []uuid.UUID) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Course
	if len(instructorIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("instructor_id IN ?", instructorIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) ListByStatus(ctx context.Context, tx *gorm.DB, status string) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Course
	if err := transaction.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Update applies fields and returns the row as stored afterwards, nil if it
// no longer exists.
func (r *courseRepo) Update(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, fields map[string]any) (*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) > 0 {
		if err := transaction.WithContext(ctx).
			Model(&types.Course{}).
			Where("id = ?", courseID).
			Updates(fields).Error; err != nil {
			return nil, err
		}
	}

	var results []*types.Course
	if err := transaction.WithContext(ctx).
		Where("id = ?", courseID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *courseRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(courseIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", courseIDs).
		Delete(&types.Course{}).Error
}
