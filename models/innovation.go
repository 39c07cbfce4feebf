package models

import "time"

type InnovationStatus string

const (
	InnovationStatusCreated                InnovationStatus = "CREATED"
	InnovationStatusWaitingNeedsAssessment InnovationStatus = "WAITING_NEEDS_ASSESSMENT"
	InnovationStatusNeedsAssessment        InnovationStatus = "NEEDS_ASSESSMENT"
	InnovationStatusInProgress             InnovationStatus = "IN_PROGRESS"
	InnovationStatusArchived               InnovationStatus = "ARCHIVED"
)

// Innovation is a unit of work being tracked through needs assessment
// and organisation support.
type Innovation struct {
	InnovationID        string           `gorm:"primaryKey;column:innovation_id;type:char(36)" json:"innovation_id"`
	Name                string           `gorm:"column:name;type:varchar(500);not null" json:"name"`
	OwnerID             int              `gorm:"column:owner_id;index" json:"owner_id"`
	Status              InnovationStatus `gorm:"column:status;type:varchar(50);not null" json:"status"`
	HasBeenAssessed     bool             `gorm:"column:has_been_assessed" json:"has_been_assessed"`
	CurrentAssessmentID *string          `gorm:"column:current_assessment_id;type:char(36)" json:"current_assessment_id,omitempty"`
	ArchivedBy          *int             `gorm:"column:archived_by" json:"archived_by,omitempty"`
	CreateAt            *time.Time       `gorm:"column:create_at" json:"create_at"`
	UpdateAt            *time.Time       `gorm:"column:update_at" json:"update_at"`
	DeleteAt            *time.Time       `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Owner             User        `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CurrentAssessment *Assessment `gorm:"foreignKey:CurrentAssessmentID" json:"current_assessment,omitempty"`
}

type CollaboratorStatus string

const (
	CollaboratorStatusActive  CollaboratorStatus = "ACTIVE"
	CollaboratorStatusPending CollaboratorStatus = "PENDING"
	CollaboratorStatusRemoved CollaboratorStatus = "REMOVED"
)

// InnovationCollaborator links additional innovator users to an innovation.
type InnovationCollaborator struct {
	CollaboratorID string             `gorm:"primaryKey;column:collaborator_id;type:char(36)" json:"collaborator_id"`
	InnovationID   string             `gorm:"column:innovation_id;type:char(36);index" json:"innovation_id"`
	UserID         int                `gorm:"column:user_id;index" json:"user_id"`
	Status         CollaboratorStatus `gorm:"column:status;type:varchar(20)" json:"status"`
	CreateAt       *time.Time         `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time         `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time         `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// InnovationShare records which organisations an innovation is shared with.
// Accessor-side reads are scoped to shared innovations only.
type InnovationShare struct {
	InnovationID   string `gorm:"primaryKey;column:innovation_id;type:char(36)" json:"innovation_id"`
	OrganisationID string `gorm:"primaryKey;column:organisation_id;type:char(36)" json:"organisation_id"`
}

// InnovationSection tracks per-section state of the innovation record.
// The assessment detail view reports which sections changed since the
// previous assessment was finished.
type InnovationSection struct {
	SectionID    string     `gorm:"primaryKey;column:section_id;type:char(36)" json:"section_id"`
	InnovationID string     `gorm:"column:innovation_id;type:char(36);index" json:"innovation_id"`
	Section      string     `gorm:"column:section;type:varchar(100)" json:"section"`
	Status       string     `gorm:"column:status;type:varchar(20)" json:"status"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
}

func (Innovation) TableName() string             { return "innovations" }
func (InnovationCollaborator) TableName() string { return "innovation_collaborators" }
func (InnovationShare) TableName() string        { return "innovation_shares" }
func (InnovationSection) TableName() string      { return "innovation_sections" }
