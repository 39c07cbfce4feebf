package models

import (
	"time"

	"gorm.io/datatypes"
)

// Assessment is one versioned needs-assessment of an innovation. A fresh
// assessment starts at major version 1; an edit of a submitted assessment
// bumps the minor version and a reassessment bumps the major version with
// PreviousAssessmentID pointing at the superseded record.
type Assessment struct {
	AssessmentID         string     `gorm:"primaryKey;column:assessment_id;type:char(36)" json:"assessment_id"`
	InnovationID         string     `gorm:"column:innovation_id;type:char(36);index;not null" json:"innovation_id"`
	MajorVersion         int        `gorm:"column:major_version;not null" json:"major_version"`
	MinorVersion         int        `gorm:"column:minor_version;not null" json:"minor_version"`
	StartedAt            *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	FinishedAt           *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
	AssignedTo           *int       `gorm:"column:assigned_to" json:"assigned_to,omitempty"`
	PreviousAssessmentID *string    `gorm:"column:previous_assessment_id;type:char(36)" json:"previous_assessment_id,omitempty"`

	Summary     *string `gorm:"column:summary;type:text" json:"summary,omitempty"`
	Description *string `gorm:"column:description;type:text" json:"description,omitempty"`

	MaturityLevel              *string `gorm:"column:maturity_level" json:"maturity_level,omitempty"`
	MaturityLevelComment       *string `gorm:"column:maturity_level_comment;type:text" json:"maturity_level_comment,omitempty"`
	HasRegulatoryApprovals     *string `gorm:"column:has_regulatory_approvals" json:"has_regulatory_approvals,omitempty"`
	RegulatoryApprovalsComment *string `gorm:"column:has_regulatory_approvals_comment;type:text" json:"has_regulatory_approvals_comment,omitempty"`
	HasEvidence                *string `gorm:"column:has_evidence" json:"has_evidence,omitempty"`
	EvidenceComment            *string `gorm:"column:has_evidence_comment;type:text" json:"has_evidence_comment,omitempty"`
	HasValidation              *string `gorm:"column:has_validation" json:"has_validation,omitempty"`
	ValidationComment          *string `gorm:"column:has_validation_comment;type:text" json:"has_validation_comment,omitempty"`
	HasProposition             *string `gorm:"column:has_proposition" json:"has_proposition,omitempty"`
	PropositionComment         *string `gorm:"column:has_proposition_comment;type:text" json:"has_proposition_comment,omitempty"`
	HasCompetitionKnowledge    *string `gorm:"column:has_competition_knowledge" json:"has_competition_knowledge,omitempty"`
	CompetitionComment         *string `gorm:"column:has_competition_knowledge_comment;type:text" json:"has_competition_knowledge_comment,omitempty"`
	HasImplementationPlan      *string `gorm:"column:has_implementation_plan" json:"has_implementation_plan,omitempty"`
	ImplementationComment      *string `gorm:"column:has_implementation_plan_comment;type:text" json:"has_implementation_plan_comment,omitempty"`
	HasScaleResource           *string `gorm:"column:has_scale_resource" json:"has_scale_resource,omitempty"`
	ScaleResourceComment       *string `gorm:"column:has_scale_resource_comment;type:text" json:"has_scale_resource_comment,omitempty"`

	ExemptedReason  *string    `gorm:"column:exempted_reason" json:"exempted_reason,omitempty"`
	ExemptedMessage *string    `gorm:"column:exempted_message;type:text" json:"exempted_message,omitempty"`
	ExemptedAt      *time.Time `gorm:"column:exempted_at" json:"exempted_at,omitempty"`

	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Assignee           *User              `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	PreviousAssessment *Assessment        `gorm:"foreignKey:PreviousAssessmentID;references:AssessmentID" json:"previous_assessment,omitempty"`
	SuggestedUnits     []OrganisationUnit `gorm:"many2many:innovation_assessment_organisation_units;foreignKey:AssessmentID;joinForeignKey:assessment_id;references:OrganisationUnitID;joinReferences:organisation_unit_id" json:"suggested_units,omitempty"`
}

// AssessmentOrganisationUnit is the join row behind Assessment.SuggestedUnits,
// mapped explicitly so suggestion sets can be replaced inside a transaction.
type AssessmentOrganisationUnit struct {
	AssessmentID       string `gorm:"primaryKey;column:assessment_id;type:char(36)" json:"assessment_id"`
	OrganisationUnitID string `gorm:"primaryKey;column:organisation_unit_id;type:char(36)" json:"organisation_unit_id"`
}

// ReassessmentRequest links a reassessment's new assessment to the one it
// supersedes, with the innovator-supplied reasoning.
type ReassessmentRequest struct {
	ReassessmentID       string         `gorm:"primaryKey;column:reassessment_id;type:char(36)" json:"reassessment_id"`
	InnovationID         string         `gorm:"column:innovation_id;type:char(36);index;not null" json:"innovation_id"`
	AssessmentID         string         `gorm:"column:assessment_id;type:char(36);not null" json:"assessment_id"`
	PreviousAssessmentID string         `gorm:"column:previous_assessment_id;type:char(36);not null" json:"previous_assessment_id"`
	Reasons              datatypes.JSON `gorm:"column:reasons" json:"reasons,omitempty"`
	Description          *string        `gorm:"column:description;type:text" json:"description,omitempty"`
	WhatSupportDoYouNeed *string        `gorm:"column:what_support_do_you_need;type:text" json:"what_support_do_you_need,omitempty"`
	CreateAt             *time.Time     `gorm:"column:create_at" json:"create_at"`
	UpdateAt             *time.Time     `gorm:"column:update_at" json:"update_at"`
	DeleteAt             *time.Time     `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (Assessment) TableName() string                 { return "innovation_assessments" }
func (AssessmentOrganisationUnit) TableName() string { return "innovation_assessment_organisation_units" }
func (ReassessmentRequest) TableName() string        { return "innovation_reassessment_requests" }

// IsFinished reports whether the assessment has been submitted.
func (a Assessment) IsFinished() bool { return a.FinishedAt != nil }

// IsExempted reports whether a KPI exemption has been recorded.
func (a Assessment) IsExempted() bool {
	return a.ExemptedReason != nil && *a.ExemptedReason != ""
}
