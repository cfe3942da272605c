package learning

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lms-backend/internal/domain/user"
	"gorm.io/gorm"
)

const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
)

type Course struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	InstructorID uuid.UUID  `gorm:"type:uuid;not null;index" json:"instructorId"`
	Instructor   *user.User `gorm:"foreignKey:InstructorID;references:ID" json:"instructor,omitempty"`

	Title       string  `gorm:"column:title;not null" json:"title"`
	Description string  `gorm:"column:description;type:text;not null" json:"description"`
	Price       float64 `gorm:"column:price;not null;default:0" json:"price"`
	Status      string  `gorm:"column:status;not null;default:'draft';index" json:"status"`

	BannerURL     string `gorm:"column:banner_url" json:"bannerUrl,omitempty"`
	BannerAssetID string `gorm:"column:banner_asset_id" json:"bannerAssetId,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Course) TableName() string { return "course" }

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CourseStatusDraft
	}
	return nil
}

func (c *Course) IsPublished() bool { return c != nil && c.Status == CourseStatusPublished }

func ValidCourseStatus(s string) bool {
	return s == CourseStatusDraft || s == CourseStatusPublished
}
