package models

import (
	"strings"
	"time"
)

// Role IDs used across the API.
const (
	RoleInnovator = 1
	RoleAssessor  = 2
	RoleAdmin     = 3
	RoleAccessor  = 4
)

type User struct {
	UserID             int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname          string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname          string     `gorm:"column:user_lname" json:"user_lname"`
	Email              string     `gorm:"column:email;unique" json:"email"`
	Password           string     `gorm:"column:password" json:"-"`
	RoleID             int        `gorm:"column:role_id" json:"role_id"`
	OrganisationUnitID *string    `gorm:"column:organisation_unit_id;type:char(36)" json:"organisation_unit_id,omitempty"`
	CreateAt           *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt           *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt           *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Role             Role              `gorm:"foreignKey:RoleID;references:RoleID" json:"role,omitempty"`
	OrganisationUnit *OrganisationUnit `gorm:"foreignKey:OrganisationUnitID;references:OrganisationUnitID" json:"organisation_unit,omitempty"`
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role     string     `gorm:"column:role" json:"role"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (User) TableName() string { return "users" }
func (Role) TableName() string { return "roles" }

// DisplayName joins first and last name, falling back to the email local part.
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.UserFname) + " " + strings.TrimSpace(u.UserLname))
	if name != "" {
		return name
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}
