package learning

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type LessonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]*types.Lesson, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.Lesson, error)
	GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Lesson, error)
	GetSummariesByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.LessonSummary, error)
	GetByInstructorID(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.Lesson, error)
	MaxOrder(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int, bool, error)
	Update(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, fields map[string]any) (*types.Lesson, error)
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	repoLog := baseLog.With("repo", "LessonRepo")
	return &lessonRepo{db: db, log: repoLog}
}

func (r *lessonRepo) Create(ctx context.Context, tx *gorm.DB, lessons []*types.Lesson) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(lessons) == 0 {
		return []*types.Lesson{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

// GetByIDs loads lessons with their Course resolved.
func (r *lessonRepo) GetByIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Lesson
	if len(lessonIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Course").
		Where("id IN ?", lessonIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lessonRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Lesson
	if len(courseIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Order("order_index ASC").
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lessonRepo) GetSummariesByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.LessonSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LessonSummary
	if err := transaction.WithContext(ctx).
		Model(&types.Lesson{}).
		Select("id", "course_id", "title", "description", "order_index", "is_published").
		Where("course_id = ?", courseID).
		Order("order_index ASC").
		Order("created_at ASC").
		Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lessonRepo) GetByInstructorID(ctx context.Context, tx *gorm.DB, instructorID uuid.UUID) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Lesson
	if err := transaction.WithContext(ctx).
		Select("lesson.*").
		Joins("JOIN course ON course.id = lesson.course_id").
		Where("course.instructor_id = ?", instructorID).
		Preload("Course").
		Order("lesson.course_id ASC").
		Order("lesson.order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// MaxOrder returns the highest order in the course; ok is false when the
// course has no lessons yet.
func (r *lessonRepo) MaxOrder(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (int, bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var max sql.NullInt64
	if err := transaction.WithContext(ctx).
		Model(&types.Lesson{}).
		Where("course_id = ?", courseID).
		Select("MAX(order_index)").
		Scan(&max).Error; err != nil {
		return 0, false, err
	}
	if !max.Valid {
		return 0, false, nil
	}
	return int(max.Int64), true, nil
}

func (r *lessonRepo) Update(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, fields map[string]any) (*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) > 0 {
		if err := transaction.WithContext(ctx).
			Model(&types.Lesson{}).
			Where("id = ?", lessonID).
			Updates(fields).Error; err != nil {
			return nil, err
		}
	}

	var results []*types.Lesson
	if err := transaction.WithContext(ctx).
		Preload("Course").
		Where("id = ?", lessonID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *lessonRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, lessonIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(lessonIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", lessonIDs).
		Delete(&types.Lesson{}).Error
}
