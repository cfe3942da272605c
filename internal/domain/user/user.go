package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	// RoleAdmin is the instructor role: admins author courses and lessons.
	RoleAdmin = "admin"
)

type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password      string    `gorm:"not null;column:password" json:"-"`
	FirstName     string    `gorm:"not null;column:first_name" json:"firstName"`
	LastName      string    `gorm:"not null;column:last_name" json:"lastName"`
	Role          string    `gorm:"not null;column:role;default:'student';index" json:"role"`
	AvatarAssetID string    `gorm:"column:avatar_asset_id" json:"-"`
	AvatarURL     string    `gorm:"column:avatar_url" json:"avatarUrl,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return nil
}

func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleAdmin
}
