package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/repos"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/domain/learning"
	"github.com/yungbote/lms-backend/internal/platform/apierr"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"github.com/yungbote/lms-backend/internal/platform/media"
)

const invalidLessonID = "Invalid lesson ID format"

// LinkInput is an external link supplied alongside a lesson.
type LinkInput struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type CreateLessonInput struct {
	CourseID      string
	Title         string
	Description   string
	Order         *int
	IsPublished   bool
	TextContent   string
	ExternalLinks []LinkInput
}

// UpdateLessonInput carries only the fields the caller supplied.
type UpdateLessonInput struct {
	Title             *string
	Description       *string
	Order             *int
	IsPublished       *bool
	TextContent       *string
	ExternalLinks     []LinkInput
	RemoveResourceIDs []string
}

// EnrollmentChecker answers lesson visibility questions.
type EnrollmentChecker interface {
	IsEnrolled(ctx context.Context, studentID, courseID uuid.UUID) (bool, error)
}

type LessonService interface {
	Create(ctx context.Context, instructorID uuid.UUID, in CreateLessonInput, files []media.File) (*types.Lesson, error)
	FindByCoursePublic(ctx context.Context, courseID string) ([]*types.LessonSummary, error)
	FindOne(ctx context.Context, id string, userID uuid.UUID) (*types.Lesson, error)
	FindByInstructor(ctx context.Context, instructorID uuid.UUID) ([]*types.Lesson, error)
	Update(ctx context.Context, id string, instructorID uuid.UUID, in UpdateLessonInput, files []media.File) (*types.Lesson, error)
	Remove(ctx context.Context, id string, instructorID uuid.UUID) (*MessageResult, error)
	RemoveResource(ctx context.Context, lessonID, assetID string, instructorID uuid.UUID) (*MessageResult, error)
}

type lessonService struct {
	db          *gorm.DB
	log         *logger.Logger
	lessonRepo  repos.LessonRepo
	courseRepo  repos.CourseRepo
	enrollments EnrollmentChecker
	host        media.Host
	reaper      *assetReaper
}

func NewLessonService(
	db *gorm.DB,
	baseLog *logger.Logger,
	lessonRepo repos.LessonRepo,
	courseRepo repos.CourseRepo,
	enrollments EnrollmentChecker,
	host media.Host,
) LessonService {
	serviceLog := baseLog.With("service", "LessonService")
	return &lessonService{
		db:          db,
		log:         serviceLog,
		lessonRepo:  lessonRepo,
		courseRepo:  courseRepo,
		enrollments: enrollments,
		host:        host,
		reaper:      newAssetReaper(host, serviceLog),
	}
}

func (ls *lessonService) Create(ctx context.Context, instructorID uuid.UUID, in CreateLessonInput, files []media.File) (*types.Lesson, error) {
	lesson, err := ls.create(ctx, instructorID, in, files)
	if err != nil {
		return nil, apierr.Normalize(err, "Failed to create lesson")
	}
	return lesson, nil
}

func (ls *lessonService) create(ctx context.Context, instructorID uuid.UUID, in CreateLessonInput, files []media.File) (*types.Lesson, error) {
	courseID, err := parseID(in.CourseID, "Invalid course ID")
	if err != nil {
		return nil, err
	}
	courses, err := ls.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 || courses[0] == nil {
		return nil, apierr.NotFound("Course not found")
	}
	course := courses[0]
	if err := ensureInstructor(course, instructorID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.BadRequest("title should not be empty")
	}

	// Not transactional: two concurrent creates may both take max+1.
	order := 1
	if in.Order != nil {
		order = *in.Order
	} else {
		maxOrder, found, err := ls.lessonRepo.MaxOrder(ctx, nil, course.ID)
		if err != nil {
			return nil, err
		}
		if found {
			order = maxOrder + 1
		}
	}

	uploaded, err := ls.ingestFiles(ctx, files)
	if err != nil {
		ls.reaper.discard(ctx, uploaded)
		return nil, err
	}
	resources := append([]types.Resource{}, uploaded...)
	resources = appendLinks(resources, in.ExternalLinks, false)

	if err := validateResources(resources); err != nil {
		ls.reaper.discard(ctx, uploaded)
		return nil, err
	}

	lesson := &types.Lesson{
		ID:          uuid.New(),
		CourseID:    course.ID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Order:       order,
		IsPublished: in.IsPublished,
		TextContent: in.TextContent,
		Resources:   datatypes.NewJSONSlice(resources),
	}
	if _, err := ls.lessonRepo.Create(ctx, nil, []*types.Lesson{lesson}); err != nil {
		ls.log.Error("create lesson failed", "course_id", course.ID.String(), "error", err)
		ls.reaper.discard(ctx, uploaded)
		return nil, err
	}
	return lesson, nil
}

// FindByCoursePublic lists a course's lessons without resources or text.
func (ls *lessonService) FindByCoursePublic(ctx context.Context, courseID string) ([]*types.LessonSummary, error) {
	cid, err := parseID(courseID, "Invalid course ID")
	if err != nil {
		return nil, err
	}
	summaries, err := ls.lessonRepo.GetSummariesByCourseID(ctx, nil, cid)
	if err != nil {
		return nil, apierr.Normalize(err, "Invalid course ID")
	}
	return summaries, nil
}

func (ls *lessonService) FindOne(ctx context.Context, id string, userID uuid.UUID) (*types.Lesson, error) {
	lesson, err := ls.findVisible(ctx, id, userID)
	if err != nil {
		return nil, apierr.Normalize(err, invalidLessonID)
	}
	return lesson, nil
}

func (ls *lessonService) findVisible(ctx context.Context, id string, userID uuid.UUID) (*types.Lesson, error) {
	if userID == uuid.Nil {
		return nil, apierr.Forbidden("You must be logged in to view lesson details")
	}
	lesson, err := ls.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if lesson.Course != nil && lesson.Course.InstructorID == userID {
		return lesson, nil
	}
	enrolled := false
	if ls.enrollments != nil {
		enrolled, err = ls.enrollments.IsEnrolled(ctx, userID, lesson.CourseID)
		if err != nil {
			return nil, err
		}
	}
	if !enrolled {
		return nil, apierr.Forbidden("You must be enrolled in this course to view lesson details")
	}
	return lesson, nil
}

func (ls *lessonService) FindByInstructor(ctx context.Context, instructorID uuid.UUID) ([]*types.Lesson, error) {
	lessons, err := ls.lessonRepo.GetByInstructorID(ctx, nil, instructorID)
	if err != nil {
		return nil, apierr.Normalize(err, "Failed to load lessons")
	}
	return lessons, nil
}

func (ls *lessonService) Update(ctx context.Context, id string, instructorID uuid.UUID, in UpdateLessonInput, files []media.File) (*types.Lesson, error) {
	lesson, err := ls.update(ctx, id, instructorID, in, files)
	if err != nil {
		return nil, apierr.Normalize(err, "Failed to update lesson")
	}
	return lesson, nil
}

// update merges removals, uploads and links into the stored resource list and
// persists the result together with the supplied scalar fields. Remote
// deletes for removed resources run after the write succeeds.
func (ls *lessonService) update(ctx context.Context, id string, instructorID uuid.UUID, in UpdateLessonInput, files []media.File) (*types.Lesson, error) {
	lesson, err := ls.loadOwned(ctx, id, instructorID)
	if err != nil {
		return nil, err
	}

	resources := make([]types.Resource, 0, len(lesson.Resources))
	for _, r := range lesson.Resources {
		if r.Valid() {
			resources = append(resources, r)
		}
	}

	var removed []types.Resource
	if len(in.RemoveResourceIDs) > 0 {
		resources, removed = splitRemoved(resources, in.RemoveResourceIDs)
	}

	uploaded, err := ls.ingestFiles(ctx, files)
	if err != nil {
		ls.reaper.discard(ctx, uploaded)
		return nil, err
	}
	resources = append(resources, uploaded...)
	resources = appendLinks(resources, in.ExternalLinks, true)

	if err := validateResources(resources); err != nil {
		ls.reaper.discard(ctx, uploaded)
		return nil, err
	}

	fields := map[string]any{
		"resources": datatypes.NewJSONSlice(resources),
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			ls.reaper.discard(ctx, uploaded)
			return nil, apierr.BadRequest("title should not be empty")
		}
		fields["title"] = t
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Order != nil {
		fields["order_index"] = *in.Order
	}
	if in.IsPublished != nil {
		fields["is_published"] = *in.IsPublished
	}
	if in.TextContent != nil {
		fields["text_content"] = *in.TextContent
	}

	updated, err := ls.lessonRepo.Update(ctx, nil, lesson.ID, fields)
	if err != nil {
		ls.log.Error("update lesson failed", "lesson_id", lesson.ID.String(), "error", err)
		ls.reaper.discard(ctx, uploaded)
		return nil, err
	}
	if updated == nil {
		ls.reaper.discard(ctx, uploaded)
		return nil, apierr.NotFound("Lesson not found")
	}
	// Removed assets go only once the row no longer references them.
	ls.reaper.deleteResources(ctx, removed)
	return updated, nil
}

func (ls *lessonService) Remove(ctx context.Context, id string, instructorID uuid.UUID) (*MessageResult, error) {
	lesson, err := ls.loadOwned(ctx, id, instructorID)
	if err != nil {
		return nil, apierr.Normalize(err, invalidLessonID)
	}

	ls.reaper.deleteResources(ctx, lesson.Resources)

	if err := ls.lessonRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{lesson.ID}); err != nil {
		ls.log.Error("delete lesson failed", "lesson_id", lesson.ID.String(), "error", err)
		return nil, apierr.Normalize(err, invalidLessonID)
	}
	return &MessageResult{Message: "Lesson deleted successfully"}, nil
}

func (ls *lessonService) RemoveResource(ctx context.Context, lessonID, assetID string, instructorID uuid.UUID) (*MessageResult, error) {
	res, err := ls.removeResource(ctx, lessonID, assetID, instructorID)
	if err != nil {
		return nil, apierr.Normalize(err, "Invalid request")
	}
	return res, nil
}

func (ls *lessonService) removeResource(ctx context.Context, lessonID, assetID string, instructorID uuid.UUID) (*MessageResult, error) {
	lesson, err := ls.loadOwned(ctx, lessonID, instructorID)
	if err != nil {
		return nil, err
	}

	assetID = strings.TrimSpace(assetID)
	kept, removed := splitRemoved(lesson.Resources, []string{assetID})
	if assetID == "" || len(removed) == 0 {
		return nil, apierr.NotFound("Resource not found")
	}

	ls.reaper.deleteResources(ctx, removed)

	updated, err := ls.lessonRepo.Update(ctx, nil, lesson.ID, map[string]any{
		"resources": datatypes.NewJSONSlice(kept),
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apierr.NotFound("Lesson not found")
	}
	return &MessageResult{Message: "Resource deleted successfully"}, nil
}

func (ls *lessonService) load(ctx context.Context, id string) (*types.Lesson, error) {
	lessonID, err := parseID(id, invalidLessonID)
	if err != nil {
		return nil, err
	}
	lessons, err := ls.lessonRepo.GetByIDs(ctx, nil, []uuid.UUID{lessonID})
	if err != nil {
		return nil, err
	}
	if len(lessons) == 0 || lessons[0] == nil {
		return nil, apierr.NotFound("Lesson not found")
	}
	return lessons[0], nil
}

func (ls *lessonService) loadOwned(ctx context.Context, id string, instructorID uuid.UUID) (*types.Lesson, error) {
	lesson, err := ls.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if lesson.Course == nil {
		return nil, apierr.NotFound("Course not found")
	}
	if err := ensureInstructor(lesson.Course, instructorID); err != nil {
		return nil, err
	}
	return lesson, nil
}

// ingestFiles uploads each file through the host method matching its
// classified type. On error the resources uploaded so far are returned so the
// caller can discard them.
func (ls *lessonService) ingestFiles(ctx context.Context, files []media.File) ([]types.Resource, error) {
	out := make([]types.Resource, 0, len(files))
	for _, f := range files {
		kind := learning.ResourceTypeForContentType(f.ContentType)

		var (
			asset *media.Asset
			err   error
		)
		switch kind {
		case types.ResourceVideo:
			asset, err = ls.host.UploadVideo(ctx, f)
		case types.ResourceImage:
			asset, err = ls.host.UploadLessonImage(ctx, f)
		default:
			asset, err = ls.host.UploadDocument(ctx, f)
		}
		if err != nil {
			ls.log.Error("resource upload failed", "filename", f.Filename, "type", kind, "error", err)
			return out, fmt.Errorf("upload %s: %w", f.Filename, err)
		}

		size := f.Size
		res := types.Resource{
			URL:      asset.URL,
			AssetID:  asset.AssetID,
			Filename: f.Filename,
			Type:     kind,
			Size:     &size,
		}
		if kind == types.ResourceVideo && asset.Duration != nil {
			d := *asset.Duration
			res.Duration = &d
		}
		out = append(out, res)
	}
	return out, nil
}

// appendLinks adds trimmed, non-empty links. With dedupe set, a link whose url
// is already present as a link resource is skipped.
func appendLinks(resources []types.Resource, links []LinkInput, dedupe bool) []types.Resource {
	seen := map[string]struct{}{}
	if dedupe {
		for _, r := range resources {
			if r.Type == types.ResourceLink {
				seen[r.URL] = struct{}{}
			}
		}
	}
	for _, link := range links {
		url := strings.TrimSpace(link.URL)
		name := strings.TrimSpace(link.Filename)
		if url == "" || name == "" {
			continue
		}
		if dedupe {
			if _, ok := seen[url]; ok {
				continue
			}
			seen[url] = struct{}{}
		}
		resources = append(resources, types.Resource{
			URL:      url,
			Filename: name,
			Type:     types.ResourceLink,
		})
	}
	return resources
}

// splitRemoved partitions resources by whether their asset id is listed.
// Links carry no asset id and always stay.
func splitRemoved(resources []types.Resource, assetIDs []string) (kept, removed []types.Resource) {
	ids := make(map[string]struct{}, len(assetIDs))
	for _, id := range assetIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids[id] = struct{}{}
		}
	}
	kept = make([]types.Resource, 0, len(resources))
	for _, r := range resources {
		if _, ok := ids[r.AssetID]; ok && r.AssetID != "" && r.Type != types.ResourceLink {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	return kept, removed
}

func validateResources(resources []types.Resource) error {
	for i, r := range resources {
		if !r.Valid() {
			return apierr.BadRequest(fmt.Sprintf("Resource at index %d is invalid", i))
		}
	}
	return nil
}
