package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lms-backend/internal/http/response"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"github.com/yungbote/lms-backend/internal/platform/media"
	"github.com/yungbote/lms-backend/internal/services"
)

type CourseHandler struct {
	log           *logger.Logger
	courseService services.CourseService
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		log:           log.With("handler", "CourseHandler"),
		courseService: courseService,
	}
}

func (h *CourseHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	fields, banners, err := readFields(c, "banner", 1)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	price, err := parseOptionalFloat(fields["price"], "price")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	in := services.CreateCourseInput{
		Title:       fields["title"],
		Description: fields["description"],
		Price:       price,
		Status:      fields["status"],
	}
	course, err := h.courseService.Create(c.Request.Context(), userID, in, firstFile(banners))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, course)
}

func (h *CourseHandler) ListPublished(c *gin.Context) {
	courses, err := h.courseService.FindAllPublished(c.Request.Context())
	if err != nil {
		h.log.Error("ListPublished failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, courses)
}

func (h *CourseHandler) ListMine(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	courses, err := h.courseService.FindByInstructor(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, courses)
}

func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courseService.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, course)
}

func (h *CourseHandler) Update(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	fields, banners, err := readFields(c, "banner", 1)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var in services.UpdateCourseInput
	if v, ok := fields.get("title"); ok {
		in.Title = &v
	}
	if v, ok := fields.get("description"); ok {
		in.Description = &v
	}
	if v, ok := fields.get("status"); ok {
		in.Status = &v
	}
	if v, ok := fields.get("price"); ok {
		price, err := parseOptionalFloat(v, "price")
		if err != nil {
			response.RespondAPIError(c, err)
			return
		}
		in.Price = price
	}
	course, err := h.courseService.Update(c.Request.Context(), c.Param("id"), userID, in, firstFile(banners))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, course)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	res, err := h.courseService.Remove(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func firstFile(files []media.File) *media.File {
	if len(files) == 0 {
		return nil
	}
	return &files[0]
}
