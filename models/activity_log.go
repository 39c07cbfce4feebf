package models

import (
	"time"

	"gorm.io/datatypes"
)

type ActivityType string

const (
	ActivityNeedsAssessmentStart     ActivityType = "NEEDS_ASSESSMENT_START"
	ActivityNeedsAssessmentCompleted ActivityType = "NEEDS_ASSESSMENT_COMPLETED"
	ActivityNeedsAssessmentEdited    ActivityType = "NEEDS_ASSESSMENT_EDITED"
	ActivityOrganisationSuggestion   ActivityType = "ORGANISATION_SUGGESTION"
	ActivityNeedsReassessmentRequest ActivityType = "NEEDS_REASSESSMENT_REQUESTED"
)

// ActivityLog is an append-only trail of innovation events.
type ActivityLog struct {
	ActivityID   string         `gorm:"primaryKey;column:activity_id;type:char(36)" json:"activity_id"`
	InnovationID string         `gorm:"column:innovation_id;type:char(36);index;not null" json:"innovation_id"`
	Activity     ActivityType   `gorm:"column:activity;type:varchar(60);not null" json:"activity"`
	UserID       int            `gorm:"column:user_id;not null" json:"user_id"`
	Params       datatypes.JSON `gorm:"column:params" json:"params,omitempty"`
	CreateAt     time.Time      `gorm:"column:create_at;autoCreateTime" json:"create_at"`
}

func (ActivityLog) TableName() string { return "activity_logs" }
