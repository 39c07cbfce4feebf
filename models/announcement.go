package models

import (
	"time"

	"gorm.io/datatypes"
)

// Announcement is a platform-wide notice targeted at one or more roles.
type Announcement struct {
	AnnouncementID string         `gorm:"primaryKey;column:announcement_id;type:char(36)" json:"announcement_id"`
	Title          string         `gorm:"column:title" json:"title"`
	Body           *string        `gorm:"column:body;type:text" json:"body,omitempty"`
	TargetRoles    datatypes.JSON `gorm:"column:target_roles" json:"target_roles"`
	StartsAt       time.Time      `gorm:"column:starts_at;not null" json:"starts_at"`
	ExpiresAt      *time.Time     `gorm:"column:expires_at" json:"expires_at,omitempty"`
	CreatedBy      int            `gorm:"column:created_by" json:"created_by"`
	CreateAt       *time.Time     `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time     `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time     `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (Announcement) TableName() string { return "announcements" }
