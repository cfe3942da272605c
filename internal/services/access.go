package services

import (
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/platform/apierr"
)

// MessageResult is the body returned by delete style operations.
type MessageResult struct {
	Message string `json:"message"`
}

// ensureInstructor fails unless userID owns course. Ownership depends on the
// loaded record, so it runs inside the service methods rather than in a guard.
func ensureInstructor(course *types.Course, userID uuid.UUID) error {
	if course == nil || userID == uuid.Nil || course.InstructorID != userID {
		return apierr.Forbidden("You are not the instructor of this course")
	}
	return nil
}

// parseID maps a malformed identifier to BadRequest(msg).
func parseID(raw string, msg string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apierr.BadRequest(msg)
	}
	return id, nil
}
