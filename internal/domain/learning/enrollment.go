package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentDropped   = "dropped"
)

type Enrollment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_student_course,priority:1" json:"studentId"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_student_course,priority:2;index" json:"courseId"`
	Course    *Course   `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`

	Progress         int                            `gorm:"column:progress;not null;default:0" json:"progress"`
	Status           string                         `gorm:"column:status;not null;default:'active'" json:"status"`
	CompletedLessons datatypes.JSONSlice[uuid.UUID] `gorm:"column:completed_lessons" json:"completedLessons"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Enrollment) TableName() string { return "enrollment" }

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = EnrollmentActive
	}
	if e.CompletedLessons == nil {
		e.CompletedLessons = datatypes.JSONSlice[uuid.UUID]{}
	}
	return nil
}

func ValidEnrollmentStatus(s string) bool {
	return s == EnrollmentActive || s == EnrollmentCompleted || s == EnrollmentDropped
}
