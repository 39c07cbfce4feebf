package models

import "time"

type SupportStatus string

const (
	SupportStatusSuggested  SupportStatus = "SUGGESTED"
	SupportStatusEngaging   SupportStatus = "ENGAGING"
	SupportStatusWaiting    SupportStatus = "WAITING"
	SupportStatusUnassigned SupportStatus = "UNASSIGNED"
	SupportStatusUnsuitable SupportStatus = "UNSUITABLE"
	SupportStatusClosed     SupportStatus = "CLOSED"
)

// InnovationSupport is the per-organisation-unit engagement record for an
// innovation. On reassessment, ENGAGING supports drop back to SUGGESTED and
// lose their assigned users; every other status is preserved.
type InnovationSupport struct {
	SupportID          string        `gorm:"primaryKey;column:support_id;type:char(36)" json:"support_id"`
	InnovationID       string        `gorm:"column:innovation_id;type:char(36);index;not null" json:"innovation_id"`
	OrganisationUnitID string        `gorm:"column:organisation_unit_id;type:char(36);index;not null" json:"organisation_unit_id"`
	Status             SupportStatus `gorm:"column:status;type:varchar(20);not null" json:"status"`
	CreateAt           *time.Time    `gorm:"column:create_at" json:"create_at"`
	UpdateAt           *time.Time    `gorm:"column:update_at" json:"update_at"`
	DeleteAt           *time.Time    `gorm:"column:delete_at" json:"delete_at,omitempty"`

	OrganisationUnit OrganisationUnit  `gorm:"foreignKey:OrganisationUnitID;references:OrganisationUnitID" json:"organisation_unit,omitempty"`
	AssignedRoles    []SupportUserRole `gorm:"foreignKey:SupportID" json:"assigned_roles,omitempty"`
}

// SupportUserRole assigns an accessor user to a support record.
type SupportUserRole struct {
	SupportID string `gorm:"primaryKey;column:support_id;type:char(36)" json:"support_id"`
	UserID    int    `gorm:"primaryKey;column:user_id" json:"user_id"`
}

func (InnovationSupport) TableName() string { return "innovation_supports" }
func (SupportUserRole) TableName() string   { return "innovation_support_user_roles" }
