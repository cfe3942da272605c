package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/http/response"
	"github.com/yungbote/lms-backend/internal/platform/apierr"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"github.com/yungbote/lms-backend/internal/services"
)

type EnrollmentHandler struct {
	log               *logger.Logger
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(log *logger.Logger, enrollmentService services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		log:               log.With("handler", "EnrollmentHandler"),
		enrollmentService: enrollmentService,
	}
}

func (h *EnrollmentHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req struct {
		Course string `json:"course" form:"course" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	enrollment, err := h.enrollmentService.Create(c.Request.Context(), userID, req.Course)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, enrollment)
}

func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	enrollments, err := h.enrollmentService.FindByStudent(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, enrollments)
}

// Check reports whether the caller holds an enrollment for the course.
func (h *EnrollmentHandler) Check(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.RespondAPIError(c, apierr.BadRequest("Invalid course ID format"))
		return
	}
	enrolled, err := h.enrollmentService.IsEnrolled(c.Request.Context(), userID, courseID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrolled": enrolled})
}

func (h *EnrollmentHandler) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	enrollment, err := h.enrollmentService.FindOne(c.Request.Context(), userID, c.Param("courseId"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, enrollment)
}

func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req struct {
		Progress         *int      `json:"progress" binding:"omitempty,min=0,max=100"`
		Status           *string   `json:"status" binding:"omitempty,oneof=active completed dropped"`
		CompletedLessons *[]string `json:"completedLessons"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	in := services.UpdateEnrollmentInput{
		Progress: req.Progress,
		Status:   req.Status,
	}
	if req.CompletedLessons != nil {
		ids := make([]uuid.UUID, 0, len(*req.CompletedLessons))
		for _, raw := range *req.CompletedLessons {
			id, err := uuid.Parse(raw)
			if err != nil {
				response.RespondAPIError(c, apierr.BadRequest("each value in completedLessons must be a UUID"))
				return
			}
			ids = append(ids, id)
		}
		in.CompletedLessons = &ids
	}
	enrollment, err := h.enrollmentService.UpdateProgress(c.Request.Context(), userID, c.Param("courseId"), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, enrollment)
}

func (h *EnrollmentHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	res, err := h.enrollmentService.Remove(c.Request.Context(), userID, c.Param("courseId"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}
