package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/clients/redis"
	"github.com/yungbote/lms-backend/internal/data/repos"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/apierr"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"github.com/yungbote/lms-backend/internal/platform/media"
)

const invalidCourseID = "Invalid course ID format"

type CreateCourseInput struct {
	Title       string
	Description string
	Price       *float64
	Status      string
}

// UpdateCourseInput carries only the fields the caller supplied.
type UpdateCourseInput struct {
	Title       *string
	Description *string
	Price       *float64
	Status      *string
}

type CourseService interface {
	Create(ctx context.Context, instructorID uuid.UUID, in CreateCourseInput, banner *media.File) (*types.Course, error)
	FindAllPublished(ctx context.Context) ([]*types.Course, error)
	FindByInstructor(ctx context.Context, instructorID uuid.UUID) ([]*types.Course, error)
	FindOne(ctx context.Context, id string) (*types.Course, error)
	Update(ctx context.Context, id string, instructorID uuid.UUID, in UpdateCourseInput, banner *media.File) (*types.Course, error)
	Remove(ctx context.Context, id string, instructorID uuid.UUID) (*MessageResult, error)
}

type courseService struct {
	db             *gorm.DB
	log            *logger.Logger
	courseRepo     repos.CourseRepo
	lessonRepo     repos.LessonRepo
	enrollmentRepo repos.EnrollmentRepo
	host           media.Host
	cache          redis.CourseCache
	reaper         *assetReaper
}

func NewCourseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	lessonRepo repos.LessonRepo,
	enrollmentRepo repos.EnrollmentRepo,
	host media.Host,
	cache redis.CourseCache,
) CourseService {
	serviceLog := baseLog.With("service", "CourseService")
	if cache == nil {
		cache = redis.NopCourseCache()
	}
	return &courseService{
		db:             db,
		log:            serviceLog,
		courseRepo:     courseRepo,
		lessonRepo:     lessonRepo,
		enrollmentRepo: enrollmentRepo,
		host:           host,
		cache:          cache,
		reaper:         newAssetReaper(host, serviceLog),
	}
}

func (cs *courseService) Create(ctx context.Context, instructorID uuid.UUID, in CreateCourseInput, banner *media.File) (*types.Course, error) {
	course := &types.Course{
		ID:           uuid.New(),
		InstructorID: instructorID,
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Status:       strings.TrimSpace(in.Status),
	}
	if in.Price != nil {
		course.Price = *in.Price
	}
	if err := validateCourse(course.Title, course.Description, in.Price, course.Status); err != nil {
		return nil, err
	}

	if banner != nil {
		asset, err := cs.host.UploadImage(ctx, *banner)
		if err != nil {
			cs.log.Error("banner upload failed", "error", err)
			return nil, apierr.Normalize(err, "Failed to upload course banner")
		}
		course.BannerURL = asset.URL
		course.BannerAssetID = asset.AssetID
	}

	if _, err := cs.courseRepo.Create(ctx, nil, []*types.Course{course}); err != nil {
		cs.log.Error("create course failed", "error", err)
		if course.BannerAssetID != "" {
			cs.reaper.deleteOne(context.WithoutCancel(ctx), course.BannerAssetID, media.KindImage)
		}
		return nil, apierr.Normalize(err, "Failed to create course")
	}
	cs.cache.Invalidate(ctx)
	return course, nil
}

func (cs *courseService) FindAllPublished(ctx context.Context) ([]*types.Course, error) {
	if cached, ok := cs.cache.GetPublished(ctx); ok {
		return cached, nil
	}
	courses, err := cs.courseRepo.ListByStatus(ctx, nil, types.CourseStatusPublished)
	if err != nil {
		cs.log.Error("list published courses failed", "error", err)
		return nil, apierr.Normalize(err, "Failed to load courses")
	}
	cs.cache.SetPublished(ctx, courses)
	return courses, nil
}

func (cs *courseService) FindByInstructor(ctx context.Context, instructorID uuid.UUID) ([]*types.Course, error) {
	courses, err := cs.courseRepo.GetByInstructorIDs(ctx, nil, []uuid.UUID{instructorID})
	if err != nil {
		return nil, apierr.Normalize(err, "Failed to load courses")
	}
	return courses, nil
}

func (cs *courseService) FindOne(ctx context.Context, id string) (*types.Course, error) {
	course, err := cs.load(ctx, nil, id)
	if err != nil {
		return nil, apierr.Normalize(err, invalidCourseID)
	}
	return course, nil
}

func (cs *courseService) Update(ctx context.Context, id string, instructorID uuid.UUID, in UpdateCourseInput, banner *media.File) (*types.Course, error) {
	updated, err := cs.update(ctx, id, instructorID, in, banner)
	if err != nil {
		return nil, apierr.Normalize(err, invalidCourseID)
	}
	return updated, nil
}

func (cs *courseService) update(ctx context.Context, id string, instructorID uuid.UUID, in UpdateCourseInput, banner *media.File) (*types.Course, error) {
	course, err := cs.load(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := ensureInstructor(course, instructorID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return nil, apierr.BadRequest("title should not be empty")
		}
		fields["title"] = t
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			return nil, apierr.BadRequest("description should not be empty")
		}
		fields["description"] = d
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, apierr.BadRequest("price must not be less than 0")
		}
		fields["price"] = *in.Price
	}
	if in.Status != nil {
		if !types.ValidCourseStatus(*in.Status) {
			return nil, apierr.BadRequest("status must be one of: draft, published")
		}
		fields["status"] = *in.Status
	}

	var newBannerID string
	if banner != nil {
		asset, err := cs.host.UploadImage(ctx, *banner)
		if err != nil {
			return nil, fmt.Errorf("upload banner: %w", err)
		}
		newBannerID = asset.AssetID
		fields["banner_url"] = asset.URL
		fields["banner_asset_id"] = asset.AssetID
	}

	updated, err := cs.courseRepo.Update(ctx, nil, course.ID, fields)
	if err != nil || updated == nil {
		if newBannerID != "" {
			cs.reaper.deleteOne(context.WithoutCancel(ctx), newBannerID, media.KindImage)
		}
		if err != nil {
			cs.log.Error("update course failed", "course_id", course.ID.String(), "error", err)
			return nil, err
		}
		return nil, apierr.NotFound("Course not found")
	}
	if newBannerID != "" && course.BannerAssetID != "" && course.BannerAssetID != newBannerID {
		cs.reaper.deleteOne(ctx, course.BannerAssetID, media.KindImage)
	}
	cs.cache.Invalidate(ctx)
	return updated, nil
}

// Remove deletes the course together with its lessons and enrollments, then
// clears every hosted asset they referenced.
func (cs *courseService) Remove(ctx context.Context, id string, instructorID uuid.UUID) (*MessageResult, error) {
	course, err := cs.load(ctx, nil, id)
	if err != nil {
		return nil, apierr.Normalize(err, invalidCourseID)
	}
	if err := ensureInstructor(course, instructorID); err != nil {
		return nil, err
	}

	var orphaned []types.Resource
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lessons, err := cs.lessonRepo.GetByCourseIDs(ctx, tx, []uuid.UUID{course.ID})
		if err != nil {
			return err
		}
		lessonIDs := make([]uuid.UUID, 0, len(lessons))
		for _, l := range lessons {
			lessonIDs = append(lessonIDs, l.ID)
			orphaned = append(orphaned, l.Resources...)
		}
		if err := cs.lessonRepo.FullDeleteByIDs(ctx, tx, lessonIDs); err != nil {
			return err
		}
		if err := cs.enrollmentRepo.DeleteByCourseIDs(ctx, tx, []uuid.UUID{course.ID}); err != nil {
			return err
		}
		return cs.courseRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{course.ID})
	})
	if err != nil {
		cs.log.Error("remove course failed", "course_id", course.ID.String(), "error", err)
		return nil, apierr.Normalize(err, invalidCourseID)
	}

	if course.BannerAssetID != "" {
		cs.reaper.deleteOne(ctx, course.BannerAssetID, media.KindImage)
	}
	cs.reaper.deleteResources(ctx, orphaned)
	cs.cache.Invalidate(ctx)

	return &MessageResult{Message: "Course deleted successfully"}, nil
}

func (cs *courseService) load(ctx context.Context, tx *gorm.DB, id string) (*types.Course, error) {
	courseID, err := parseID(id, invalidCourseID)
	if err != nil {
		return nil, err
	}
	courses, err := cs.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 || courses[0] == nil {
		return nil, apierr.NotFound("Course not found")
	}
	return courses[0], nil
}

func validateCourse(title, description string, price *float64, status string) error {
	if title == "" {
		return apierr.BadRequest("title should not be empty")
	}
	if description == "" {
		return apierr.BadRequest("description should not be empty")
	}
	if price != nil && *price < 0 {
		return apierr.BadRequest("price must not be less than 0")
	}
	if status != "" && !types.ValidCourseStatus(status) {
		return apierr.BadRequest("status must be one of: draft, published")
	}
	return nil
}
