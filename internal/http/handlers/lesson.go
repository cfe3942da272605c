package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lms-backend/internal/http/response"
	"github.com/yungbote/lms-backend/internal/platform/apierr"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"github.com/yungbote/lms-backend/internal/services"
)

type LessonHandler struct {
	log           *logger.Logger
	lessonService services.LessonService
}

func NewLessonHandler(log *logger.Logger, lessonService services.LessonService) *LessonHandler {
	return &LessonHandler{
		log:           log.With("handler", "LessonHandler"),
		lessonService: lessonService,
	}
}

func (h *LessonHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	fields, files, err := readFields(c, "files", maxLessonFiles)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	links, err := parseLinksField(fields["externalLinks"], "externalLinks")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if strings.TrimSpace(fields["title"]) == "" {
		response.RespondAPIError(c, apierr.BadRequest("title should not be empty"))
		return
	}
	if strings.TrimSpace(fields["course"]) == "" {
		response.RespondAPIError(c, apierr.BadRequest("course should not be empty"))
		return
	}

	in := services.CreateLessonInput{
		CourseID:      fields["course"],
		Title:         fields["title"],
		Description:   fields["description"],
		Order:         parseOptionalInt(fields["order"]),
		IsPublished:   parseFormBool(fields["isPublished"]),
		TextContent:   fields["textContent"],
		ExternalLinks: links,
	}
	lesson, err := h.lessonService.Create(c.Request.Context(), userID, in, files)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, lesson)
}

func (h *LessonHandler) ListMine(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	lessons, err := h.lessonService.FindByInstructor(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, lessons)
}

// ListForCourse is public and returns summaries only.
func (h *LessonHandler) ListForCourse(c *gin.Context) {
	summaries, err := h.lessonService.FindByCoursePublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, summaries)
}

func (h *LessonHandler) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	lesson, err := h.lessonService.FindOne(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, lesson)
}

func (h *LessonHandler) Update(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	fields, files, err := readFields(c, "files", maxLessonFiles)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}

	var in services.UpdateLessonInput
	if v, ok := fields.get("externalLinks"); ok {
		links, err := parseLinksField(v, "externalLinks")
		if err != nil {
			response.RespondAPIError(c, err)
			return
		}
		in.ExternalLinks = links
	}
	if v, ok := fields.get("removeResourceIds"); ok {
		ids, err := parseStringListField(v, "removeResourceIds")
		if err != nil {
			response.RespondAPIError(c, err)
			return
		}
		in.RemoveResourceIDs = ids
	}
	if v, ok := fields.get("title"); ok {
		in.Title = &v
	}
	if v, ok := fields.get("description"); ok {
		in.Description = &v
	}
	if v, ok := fields.get("textContent"); ok {
		in.TextContent = &v
	}
	if v, ok := fields.get("order"); ok {
		in.Order = parseOptionalInt(v)
	}
	if v, ok := fields.get("isPublished"); ok {
		published := parseFormBool(v)
		in.IsPublished = &published
	}

	lesson, err := h.lessonService.Update(c.Request.Context(), c.Param("id"), userID, in, files)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, lesson)
}

func (h *LessonHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	res, err := h.lessonService.Remove(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// DeleteResource removes one hosted resource. The asset id is a wildcard
// segment since ids contain slashes.
func (h *LessonHandler) DeleteResource(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	assetID := strings.TrimPrefix(c.Param("assetId"), "/")
	if assetID == "" {
		response.RespondAPIError(c, apierr.NotFound("Resource not found"))
		return
	}
	res, err := h.lessonService.RemoveResource(c.Request.Context(), c.Param("id"), assetID, userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}
