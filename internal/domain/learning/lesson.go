package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Lesson struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index:idx_lesson_course_order,priority:1" json:"courseId"`
	Course   *Course   `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`

	Title       string `gorm:"column:title;not null" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`
	// Order is not unique per course; equal values are allowed.
	Order       int    `gorm:"column:order_index;not null;index:idx_lesson_course_order,priority:2" json:"order"`
	IsPublished bool   `gorm:"column:is_published;not null;default:false" json:"isPublished"`
	TextContent string `gorm:"column:text_content;type:text" json:"textContent"`

	Resources datatypes.JSONSlice[Resource] `gorm:"column:resources" json:"resources"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Lesson) TableName() string { return "lesson" }

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Resources == nil {
		l.Resources = datatypes.JSONSlice[Resource]{}
	}
	return nil
}

// LessonSummary is the public projection of a lesson: no resources, no text body.
type LessonSummary struct {
	ID          uuid.UUID `gorm:"column:id" json:"id"`
	CourseID    uuid.UUID `gorm:"column:course_id" json:"courseId"`
	Title       string    `gorm:"column:title" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Order       int       `gorm:"column:order_index" json:"order"`
	IsPublished bool      `gorm:"column:is_published" json:"isPublished"`
}

func (l *Lesson) Summary() LessonSummary {
	return LessonSummary{
		ID:          l.ID,
		CourseID:    l.CourseID,
		Title:       l.Title,
		Description: l.Description,
		Order:       l.Order,
		IsPublished: l.IsPublished,
	}
}
