package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"innovation-tracking-api/config"
	"innovation-tracking-api/models"
	"innovation-tracking-api/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssessmentService owns the innovation assessment lifecycle: creation,
// partial updates, submission, KPI exemptions and reassessment chaining.
type AssessmentService struct {
	db       *gorm.DB
	users    *UserService
	activity *ActivityLogService
	notifier *NotifierService
}

func NewAssessmentService(db *gorm.DB) *AssessmentService {
	if db == nil {
		db = config.DB
	}
	return &AssessmentService{
		db:       db,
		users:    NewUserService(db),
		activity: NewActivityLogService(),
		notifier: NewNotifierService(db),
	}
}

// AssessmentAssignee is the resolved assignee block on assessment responses.
type AssessmentAssignee struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ReassessmentInfo is present on assessments that were created by a
// reassessment request.
type ReassessmentInfo struct {
	ReassessmentID       string     `json:"reassessment_id"`
	PreviousAssessmentID string     `json:"previous_assessment_id"`
	PreviousFinishedAt   *time.Time `json:"previous_finished_at,omitempty"`
	Reasons              []string   `json:"reasons,omitempty"`
	Description          *string    `json:"description,omitempty"`
	UpdatedSections      []string   `json:"sections_updated_since_previous_assessment"`
}

// AssessmentInfo is the full assessment detail response.
type AssessmentInfo struct {
	ID                      string                  `json:"id"`
	MajorVersion            int                     `json:"major_version"`
	MinorVersion            int                     `json:"minor_version"`
	StartedAt               *time.Time              `json:"started_at,omitempty"`
	FinishedAt              *time.Time              `json:"finished_at,omitempty"`
	Assignee                *AssessmentAssignee     `json:"assignee,omitempty"`
	Summary                 *string                 `json:"summary,omitempty"`
	Description             *string                 `json:"description,omitempty"`
	IsLatest                bool                    `json:"is_latest"`
	SuggestedOrganisations  []OrganisationWithUnits `json:"suggested_organisations"`
	Reassessment            *ReassessmentInfo       `json:"reassessment,omitempty"`
}

// AssessmentListItem is one row of the finished-assessments listing.
type AssessmentListItem struct {
	ID           string     `json:"id"`
	MajorVersion int        `json:"major_version"`
	MinorVersion int        `json:"minor_version"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// UpdateAssessmentData carries a partial assessment update. Nil pointers
// leave the stored value untouched.
type UpdateAssessmentData struct {
	Summary     *string
	Description *string

	MaturityLevel              *string
	MaturityLevelComment       *string
	HasRegulatoryApprovals     *string
	RegulatoryApprovalsComment *string
	HasEvidence                *string
	EvidenceComment            *string
	HasValidation              *string
	ValidationComment          *string
	HasProposition             *string
	PropositionComment         *string
	HasCompetitionKnowledge    *string
	CompetitionComment         *string
	HasImplementationPlan      *string
	ImplementationComment      *string
	HasScaleResource           *string
	ScaleResourceComment       *string

	SuggestedOrganisationUnitIDs *[]string
	IsSubmission                 bool
}

// ReassessmentData carries the innovator-supplied reasoning for a
// reassessment request.
type ReassessmentData struct {
	Reasons              []string
	Description          *string
	WhatSupportDoYouNeed *string
}

// ReassessmentResult identifies the records created by CreateReassessment.
type ReassessmentResult struct {
	AssessmentID   string `json:"assessment_id"`
	ReassessmentID string `json:"reassessment_id"`
}

// ExemptionInfo is the KPI-exemption read shape.
type ExemptionInfo struct {
	IsExempted bool              `json:"is_exempted"`
	Exemption  *ExemptionDetails `json:"exemption,omitempty"`
}

type ExemptionDetails struct {
	Reason     string     `json:"reason"`
	Message    *string    `json:"message,omitempty"`
	ExemptedAt *time.Time `json:"exempted_at,omitempty"`
}

// GetAssessmentInfo loads an assessment with its assignee and suggested
// units grouped by organisation. Assessments created by a reassessment also
// carry the reassessment block, including the innovation-record sections
// that changed since the previous assessment was finished.
func (s *AssessmentService) GetAssessmentInfo(ctx context.Context, assessmentID string) (*AssessmentInfo, error) {
	var assessment models.Assessment
	if err := s.db.WithContext(ctx).
		Preload("SuggestedUnits").
		Preload("SuggestedUnits.Organisation").
		Preload("PreviousAssessment").
		Where("assessment_id = ? AND delete_at IS NULL", assessmentID).
		First(&assessment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("assessment not found")
		}
		return nil, err
	}

	var innovation models.Innovation
	if err := s.db.WithContext(ctx).
		Where("innovation_id = ? AND delete_at IS NULL", assessment.InnovationID).
		First(&innovation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("innovation not found")
		}
		return nil, err
	}

	info := &AssessmentInfo{
		ID:                     assessment.AssessmentID,
		MajorVersion:           assessment.MajorVersion,
		MinorVersion:           assessment.MinorVersion,
		StartedAt:              assessment.StartedAt,
		FinishedAt:             assessment.FinishedAt,
		Summary:                assessment.Summary,
		Description:            assessment.Description,
		IsLatest:               innovation.CurrentAssessmentID != nil && *innovation.CurrentAssessmentID == assessment.AssessmentID,
		SuggestedOrganisations: GroupUnitsByOrganisation(assessment.SuggestedUnits),
	}

	if assessment.AssignedTo != nil {
		usersMap, err := s.users.GetUsersMap(ctx, []int{*assessment.AssignedTo})
		if err != nil {
			return nil, err
		}
		if assignee, ok := usersMap[*assessment.AssignedTo]; ok {
			info.Assignee = &AssessmentAssignee{ID: assignee.UserID, Name: assignee.DisplayName()}
		}
	}

	if assessment.PreviousAssessmentID != nil {
		var request models.ReassessmentRequest
		if err := s.db.WithContext(ctx).
			Where("assessment_id = ? AND delete_at IS NULL", assessment.AssessmentID).
			First(&request).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		} else if err == nil {
			updatedSections, err := s.GetSectionsUpdatedSincePreviousAssessment(ctx, assessment.InnovationID)
			if err != nil {
				return nil, err
			}

			var reasons []string
			if len(request.Reasons) > 0 {
				if err := json.Unmarshal(request.Reasons, &reasons); err != nil {
					return nil, err
				}
			}

			reassessment := &ReassessmentInfo{
				ReassessmentID:       request.ReassessmentID,
				PreviousAssessmentID: request.PreviousAssessmentID,
				Reasons:              reasons,
				Description:          request.Description,
				UpdatedSections:      updatedSections,
			}
			if assessment.PreviousAssessment != nil {
				reassessment.PreviousFinishedAt = assessment.PreviousAssessment.FinishedAt
			}
			info.Reassessment = reassessment
		}
	}

	return info, nil
}

// CreateAssessment starts the first needs assessment of an innovation,
// assigned to the requesting assessor. Fails when any assessment already
// exists for the innovation.
func (s *AssessmentService) CreateAssessment(ctx context.Context, actor Actor, innovationID string, comment string) (string, error) {
	assessmentID := uuid.NewString()
	now := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var innovation models.Innovation
		if err := tx.Where("innovation_id = ? AND delete_at IS NULL", innovationID).
			First(&innovation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("innovation not found")
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Assessment{}).
			Where("innovation_id = ? AND delete_at IS NULL", innovationID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return utils.UnprocessableError("assessment already exists for this innovation")
		}

		assessment := models.Assessment{
			AssessmentID: assessmentID,
			InnovationID: innovationID,
			MajorVersion: 1,
			MinorVersion: 0,
			StartedAt:    &now,
			AssignedTo:   &actor.UserID,
			CreateAt:     &now,
			UpdateAt:     &now,
		}
		if err := tx.Create(&assessment).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"status":                string(models.InnovationStatusNeedsAssessment),
			"current_assessment_id": assessmentID,
			"update_at":             now,
		}
		if err := tx.Model(&models.Innovation{}).
			Where("innovation_id = ?", innovationID).
			Updates(updates).Error; err != nil {
			return err
		}

		return s.activity.Append(tx, innovationID, actor.UserID, models.ActivityNeedsAssessmentStart, map[string]any{
			"assessmentId": assessmentID,
			"comment":      comment,
		})
	})
	if err != nil {
		return "", err
	}

	return assessmentID, nil
}

// UpdateAssessment applies a partial update, optionally submitting the
// assessment. Submission stamps finishedAt, moves the innovation to
// IN_PROGRESS and fires the completion notification after commit; suggested
// organisation units can be added at submission time but never removed.
func (s *AssessmentService) UpdateAssessment(ctx context.Context, actor Actor, innovationID, assessmentID string, data UpdateAssessmentData) (string, error) {
	now := time.Now()
	var finalUnitIDs []string
	submitted := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var innovation models.Innovation
		if err := tx.Where("innovation_id = ? AND delete_at IS NULL", innovationID).
			First(&innovation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("innovation not found")
			}
			return err
		}

		var assessment models.Assessment
		if err := tx.Where("assessment_id = ? AND innovation_id = ? AND delete_at IS NULL", assessmentID, innovationID).
			First(&assessment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("assessment not found")
			}
			return err
		}

		if assessment.IsFinished() {
			return utils.UnprocessableError("assessment already submitted")
		}

		updates := contentUpdates(data)

		if data.SuggestedOrganisationUnitIDs != nil {
			newlySuggested, unitIDs, err := s.replaceSuggestedUnits(tx, assessment.AssessmentID, *data.SuggestedOrganisationUnitIDs, data.IsSubmission)
			if err != nil {
				return err
			}
			finalUnitIDs = unitIDs

			if len(newlySuggested) > 0 {
				if err := s.activity.Append(tx, innovationID, actor.UserID, models.ActivityOrganisationSuggestion, map[string]any{
					"assessmentId":        assessment.AssessmentID,
					"organisationUnitIds": newlySuggested,
				}); err != nil {
					return err
				}
			}
		} else if data.IsSubmission {
			var unitIDs []string
			if err := tx.Model(&models.AssessmentOrganisationUnit{}).
				Where("assessment_id = ?", assessment.AssessmentID).
				Pluck("organisation_unit_id", &unitIDs).Error; err != nil {
				return err
			}
			finalUnitIDs = unitIDs
		}

		if data.IsSubmission {
			updates["finished_at"] = now
			submitted = true

			innovationUpdates := map[string]any{
				"status":            string(models.InnovationStatusInProgress),
				"has_been_assessed": true,
				"update_at":         now,
			}
			if err := tx.Model(&models.Innovation{}).
				Where("innovation_id = ?", innovationID).
				Updates(innovationUpdates).Error; err != nil {
				return err
			}

			if err := s.activity.Append(tx, innovationID, actor.UserID, models.ActivityNeedsAssessmentCompleted, map[string]any{
				"assessmentId": assessment.AssessmentID,
			}); err != nil {
				return err
			}
		} else if assessment.PreviousAssessmentID != nil {
			// A non-submitting save of a reassessment-linked assessment pulls
			// the innovation back into the assessment queue.
			if err := tx.Model(&models.Innovation{}).
				Where("innovation_id = ?", innovationID).
				Updates(map[string]any{
					"status":    string(models.InnovationStatusNeedsAssessment),
					"update_at": now,
				}).Error; err != nil {
				return err
			}
		}

		updates["update_at"] = now
		return tx.Model(&models.Assessment{}).
			Where("assessment_id = ?", assessment.AssessmentID).
			Updates(updates).Error
	})
	if err != nil {
		return "", err
	}

	if submitted {
		go s.notifier.NeedsAssessmentCompleted(persistentContext(ctx), innovationID, assessmentID, finalUnitIDs)
	}

	return assessmentID, nil
}

// EditAssessment clones a submitted assessment into a new minor version so
// its content can be revised and resubmitted. The innovation keeps its
// current status while the edit is in flight.
func (s *AssessmentService) EditAssessment(ctx context.Context, actor Actor, innovationID string) (string, error) {
	newID := uuid.NewString()
	now := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var innovation models.Innovation
		if err := tx.Where("innovation_id = ? AND delete_at IS NULL", innovationID).
			First(&innovation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("innovation not found")
			}
			return err
		}
		if innovation.CurrentAssessmentID == nil {
			return utils.NotFoundError("assessment not found")
		}

		var current models.Assessment
		if err := tx.Where("assessment_id = ?", *innovation.CurrentAssessmentID).
			First(&current).Error; err != nil {
			return err
		}
		if !current.IsFinished() {
			return utils.ConflictError("assessment not submitted")
		}

		clone := current
		clone.AssessmentID = newID
		clone.MinorVersion = current.MinorVersion + 1
		clone.FinishedAt = nil
		clone.StartedAt = &now
		clone.AssignedTo = &actor.UserID
		clone.CreateAt = &now
		clone.UpdateAt = &now
		if err := tx.Create(&clone).Error; err != nil {
			return err
		}

		if err := copySuggestedUnits(tx, current.AssessmentID, newID); err != nil {
			return err
		}

		if err := tx.Model(&models.Innovation{}).
			Where("innovation_id = ?", innovationID).
			Updates(map[string]any{"current_assessment_id": newID, "update_at": now}).Error; err != nil {
			return err
		}

		return s.activity.Append(tx, innovationID, actor.UserID, models.ActivityNeedsAssessmentEdited, map[string]any{
			"assessmentId":         newID,
			"previousAssessmentId": current.AssessmentID,
		})
	})
	if err != nil {
		return "", err
	}

	return newID, nil
}

// CreateReassessment opens a new major-version assessment chained to the
// innovation's current one. Innovator-initiated requests require no engaging
// supports and, on archived innovations, that the requester is the owner.
// ENGAGING supports drop back to SUGGESTED and lose their assigned users.
func (s *AssessmentService) CreateReassessment(ctx context.Context, actor Actor, innovationID string, data ReassessmentData) (*ReassessmentResult, error) {
	newAssessmentID := uuid.NewString()
	reassessmentID := uuid.NewString()
	now := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var innovation models.Innovation
		if err := tx.Where("innovation_id = ? AND delete_at IS NULL", innovationID).
			First(&innovation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("innovation not found")
			}
			return err
		}
		if innovation.CurrentAssessmentID == nil {
			return utils.NotFoundError("assessment not found")
		}

		var previous models.Assessment
		if err := tx.Where("assessment_id = ?", *innovation.CurrentAssessmentID).
			First(&previous).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("assessment not found")
			}
			return err
		}
		if !previous.IsFinished() {
			return utils.UnprocessableError("cannot request reassessment")
		}

		innovatorInitiated := actor.RoleID == models.RoleInnovator
		if innovatorInitiated {
			if innovation.Status == models.InnovationStatusArchived && actor.UserID != innovation.OwnerID {
				return utils.ForbiddenError("collaborator must be the innovation owner")
			}

			var engaging int64
			if err := tx.Model(&models.InnovationSupport{}).
				Where("innovation_id = ? AND status = ? AND delete_at IS NULL", innovationID, models.SupportStatusEngaging).
				Count(&engaging).Error; err != nil {
				return err
			}
			if engaging > 0 {
				return utils.UnprocessableError("cannot request reassessment")
			}
		} else {
			if innovation.Status != models.InnovationStatusInProgress && innovation.Status != models.InnovationStatusArchived {
				return utils.UnprocessableError("cannot request reassessment")
			}
		}

		assessment := previous
		assessment.AssessmentID = newAssessmentID
		assessment.MajorVersion = previous.MajorVersion + 1
		assessment.MinorVersion = 0
		assessment.StartedAt = nil
		assessment.FinishedAt = nil
		assessment.AssignedTo = nil
		assessment.ExemptedReason = nil
		assessment.ExemptedMessage = nil
		assessment.ExemptedAt = nil
		assessment.PreviousAssessmentID = &previous.AssessmentID
		assessment.CreateAt = &now
		assessment.UpdateAt = &now
		if err := tx.Create(&assessment).Error; err != nil {
			return err
		}

		targetStatus := models.InnovationStatusWaitingNeedsAssessment
		if !innovatorInitiated {
			targetStatus = models.InnovationStatusNeedsAssessment
		}
		if err := tx.Model(&models.Innovation{}).
			Where("innovation_id = ?", innovationID).
			Updates(map[string]any{
				"current_assessment_id": newAssessmentID,
				"status":                string(targetStatus),
				"update_at":             now,
			}).Error; err != nil {
			return err
		}

		reasonsJSON, err := json.Marshal(data.Reasons)
		if err != nil {
			return err
		}
		request := models.ReassessmentRequest{
			ReassessmentID:       reassessmentID,
			InnovationID:         innovationID,
			AssessmentID:         newAssessmentID,
			PreviousAssessmentID: previous.AssessmentID,
			Reasons:              reasonsJSON,
			Description:          data.Description,
			WhatSupportDoYouNeed: data.WhatSupportDoYouNeed,
			CreateAt:             &now,
			UpdateAt:             &now,
		}
		if err := tx.Create(&request).Error; err != nil {
			return err
		}

		if err := resetEngagingSupports(tx, innovationID, now); err != nil {
			return err
		}

		return s.activity.Append(tx, innovationID, actor.UserID, models.ActivityNeedsReassessmentRequest, map[string]any{
			"assessmentId":   newAssessmentID,
			"reassessmentId": reassessmentID,
		})
	})
	if err != nil {
		return nil, err
	}

	go s.notifier.ReassessmentRequested(persistentContext(ctx), innovationID)

	return &ReassessmentResult{AssessmentID: newAssessmentID, ReassessmentID: reassessmentID}, nil
}

// UpdateAssessor reassigns an assessment to a different needs assessor.
func (s *AssessmentService) UpdateAssessor(ctx context.Context, actor Actor, innovationID, assessmentID string, newAssessorID int) (int, error) {
	newAssessor, err := s.users.GetUser(ctx, newAssessorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, utils.NotFoundError("assessor not found")
		}
		return 0, err
	}
	if newAssessor.RoleID != models.RoleAssessor {
		return 0, utils.NotFoundError("assessor not found")
	}

	var assessment models.Assessment
	if err := s.db.WithContext(ctx).
		Where("assessment_id = ? AND innovation_id = ? AND delete_at IS NULL", assessmentID, innovationID).
		First(&assessment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, utils.NotFoundError("assessment not found")
		}
		return 0, err
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&models.Assessment{}).
		Where("assessment_id = ?", assessment.AssessmentID).
		Updates(map[string]any{"assigned_to": newAssessorID, "update_at": now}).Error; err != nil {
		return 0, err
	}

	go s.notifier.AssessorChanged(persistentContext(ctx), innovationID, assessmentID, newAssessorID)

	return newAssessorID, nil
}

// UpsertExemption records or amends the KPI exemption on an assessment.
// The exemption timestamp is stamped once, on first call, and preserved on
// later updates.
func (s *AssessmentService) UpsertExemption(ctx context.Context, actor Actor, assessmentID string, reason string, message *string) error {
	var assessment models.Assessment
	if err := s.db.WithContext(ctx).
		Where("assessment_id = ? AND delete_at IS NULL", assessmentID).
		First(&assessment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFoundError("assessment not found")
		}
		return err
	}

	now := time.Now()
	updates := map[string]any{
		"exempted_reason":  reason,
		"exempted_message": message,
		"update_at":        now,
	}
	if assessment.ExemptedAt == nil {
		updates["exempted_at"] = now
	}

	return s.db.WithContext(ctx).Model(&models.Assessment{}).
		Where("assessment_id = ?", assessmentID).
		Updates(updates).Error
}

// GetExemption returns the KPI-exemption state of an assessment.
func (s *AssessmentService) GetExemption(ctx context.Context, assessmentID string) (*ExemptionInfo, error) {
	var assessment models.Assessment
	if err := s.db.WithContext(ctx).
		Where("assessment_id = ? AND delete_at IS NULL", assessmentID).
		First(&assessment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("assessment not found")
		}
		return nil, err
	}

	if !assessment.IsExempted() {
		return &ExemptionInfo{IsExempted: false}, nil
	}

	return &ExemptionInfo{
		IsExempted: true,
		Exemption: &ExemptionDetails{
			Reason:     *assessment.ExemptedReason,
			Message:    assessment.ExemptedMessage,
			ExemptedAt: assessment.ExemptedAt,
		},
	}, nil
}

// ListAssessments returns the innovation's finished assessments ordered by
// start time.
func (s *AssessmentService) ListAssessments(ctx context.Context, innovationID string) ([]AssessmentListItem, error) {
	var assessments []models.Assessment
	if err := s.db.WithContext(ctx).
		Where("innovation_id = ? AND finished_at IS NOT NULL AND delete_at IS NULL", innovationID).
		Order("started_at ASC").
		Find(&assessments).Error; err != nil {
		return nil, err
	}

	items := make([]AssessmentListItem, 0, len(assessments))
	for _, a := range assessments {
		items = append(items, AssessmentListItem{
			ID:           a.AssessmentID,
			MajorVersion: a.MajorVersion,
			MinorVersion: a.MinorVersion,
			StartedAt:    a.StartedAt,
			FinishedAt:   a.FinishedAt,
		})
	}
	return items, nil
}

// GetSectionsUpdatedSincePreviousAssessment returns the innovation-record
// sections whose content changed after the previous assessment was finished.
// It returns an empty list when the innovation has no previous assessment.
func (s *AssessmentService) GetSectionsUpdatedSincePreviousAssessment(ctx context.Context, innovationID string) ([]string, error) {
	var innovation models.Innovation
	if err := s.db.WithContext(ctx).
		Where("innovation_id = ? AND delete_at IS NULL", innovationID).
		First(&innovation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("innovation not found")
		}
		return nil, err
	}

	sections := []string{}
	if innovation.CurrentAssessmentID == nil {
		return sections, nil
	}

	var current models.Assessment
	if err := s.db.WithContext(ctx).
		Where("assessment_id = ?", *innovation.CurrentAssessmentID).
		First(&current).Error; err != nil {
		return nil, err
	}
	if current.PreviousAssessmentID == nil {
		return sections, nil
	}

	var previous models.Assessment
	if err := s.db.WithContext(ctx).
		Where("assessment_id = ?", *current.PreviousAssessmentID).
		First(&previous).Error; err != nil {
		return nil, err
	}
	if previous.FinishedAt == nil {
		return sections, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.InnovationSection{}).
		Where("innovation_id = ? AND update_at > ?", innovationID, *previous.FinishedAt).
		Order("section ASC").
		Pluck("section", &sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// contentUpdates collects the non-nil content fields of a partial update.
func contentUpdates(data UpdateAssessmentData) map[string]any {
	updates := map[string]any{}
	set := func(column string, value *string) {
		if value != nil {
			updates[column] = *value
		}
	}

	set("summary", data.Summary)
	set("description", data.Description)
	set("maturity_level", data.MaturityLevel)
	set("maturity_level_comment", data.MaturityLevelComment)
	set("has_regulatory_approvals", data.HasRegulatoryApprovals)
	set("has_regulatory_approvals_comment", data.RegulatoryApprovalsComment)
	set("has_evidence", data.HasEvidence)
	set("has_evidence_comment", data.EvidenceComment)
	set("has_validation", data.HasValidation)
	set("has_validation_comment", data.ValidationComment)
	set("has_proposition", data.HasProposition)
	set("has_proposition_comment", data.PropositionComment)
	set("has_competition_knowledge", data.HasCompetitionKnowledge)
	set("has_competition_knowledge_comment", data.CompetitionComment)
	set("has_implementation_plan", data.HasImplementationPlan)
	set("has_implementation_plan_comment", data.ImplementationComment)
	set("has_scale_resource", data.HasScaleResource)
	set("has_scale_resource_comment", data.ScaleResourceComment)

	return updates
}

// replaceSuggestedUnits swaps the suggestion set of an assessment. When the
// update is a submission, previously suggested units must all survive into
// the new set. Returns the newly added unit ids and the final set.
func (s *AssessmentService) replaceSuggestedUnits(tx *gorm.DB, assessmentID string, unitIDs []string, isSubmission bool) ([]string, []string, error) {
	var existing []string
	if err := tx.Model(&models.AssessmentOrganisationUnit{}).
		Where("assessment_id = ?", assessmentID).
		Pluck("organisation_unit_id", &existing).Error; err != nil {
		return nil, nil, err
	}

	incoming := make(map[string]bool, len(unitIDs))
	deduped := make([]string, 0, len(unitIDs))
	for _, id := range unitIDs {
		if !incoming[id] {
			incoming[id] = true
			deduped = append(deduped, id)
		}
	}

	if isSubmission {
		for _, id := range existing {
			if !incoming[id] {
				return nil, nil, utils.ConflictError("suggested organisation units cannot be removed")
			}
		}
	}

	wasSuggested := make(map[string]bool, len(existing))
	for _, id := range existing {
		wasSuggested[id] = true
	}
	newlySuggested := make([]string, 0, len(deduped))
	for _, id := range deduped {
		if !wasSuggested[id] {
			newlySuggested = append(newlySuggested, id)
		}
	}

	if err := tx.Where("assessment_id = ?", assessmentID).
		Delete(&models.AssessmentOrganisationUnit{}).Error; err != nil {
		return nil, nil, err
	}
	for _, id := range deduped {
		row := models.AssessmentOrganisationUnit{AssessmentID: assessmentID, OrganisationUnitID: id}
		if err := tx.Create(&row).Error; err != nil {
			return nil, nil, err
		}
	}

	return newlySuggested, deduped, nil
}

func copySuggestedUnits(tx *gorm.DB, fromAssessmentID, toAssessmentID string) error {
	var unitIDs []string
	if err := tx.Model(&models.AssessmentOrganisationUnit{}).
		Where("assessment_id = ?", fromAssessmentID).
		Pluck("organisation_unit_id", &unitIDs).Error; err != nil {
		return err
	}
	for _, id := range unitIDs {
		row := models.AssessmentOrganisationUnit{AssessmentID: toAssessmentID, OrganisationUnitID: id}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// resetEngagingSupports drops every ENGAGING support back to SUGGESTED and
// clears its assigned users. Supports in any other status are untouched.
func resetEngagingSupports(tx *gorm.DB, innovationID string, now time.Time) error {
	var engagingIDs []string
	if err := tx.Model(&models.InnovationSupport{}).
		Where("innovation_id = ? AND status = ? AND delete_at IS NULL", innovationID, models.SupportStatusEngaging).
		Pluck("support_id", &engagingIDs).Error; err != nil {
		return err
	}
	if len(engagingIDs) == 0 {
		return nil
	}

	if err := tx.Model(&models.InnovationSupport{}).
		Where("support_id IN ?", engagingIDs).
		Updates(map[string]any{"status": string(models.SupportStatusSuggested), "update_at": now}).Error; err != nil {
		return err
	}

	return tx.Where("support_id IN ?", engagingIDs).
		Delete(&models.SupportUserRole{}).Error
}
