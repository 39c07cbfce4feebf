package controllers

import (
	"net/http"

	"innovation-tracking-api/services"

	"github.com/gin-gonic/gin"
)

type createAssessmentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

type updateAssessmentRequest struct {
	Summary     *string `json:"summary"`
	Description *string `json:"description"`

	MaturityLevel              *string `json:"maturity_level"`
	MaturityLevelComment       *string `json:"maturity_level_comment"`
	HasRegulatoryApprovals     *string `json:"has_regulatory_approvals"`
	RegulatoryApprovalsComment *string `json:"has_regulatory_approvals_comment"`
	HasEvidence                *string `json:"has_evidence"`
	EvidenceComment            *string `json:"has_evidence_comment"`
	HasValidation              *string `json:"has_validation"`
	ValidationComment          *string `json:"has_validation_comment"`
	HasProposition             *string `json:"has_proposition"`
	PropositionComment         *string `json:"has_proposition_comment"`
	HasCompetitionKnowledge    *string `json:"has_competition_knowledge"`
	CompetitionComment         *string `json:"has_competition_knowledge_comment"`
	HasImplementationPlan      *string `json:"has_implementation_plan"`
	ImplementationComment      *string `json:"has_implementation_plan_comment"`
	HasScaleResource           *string `json:"has_scale_resource"`
	ScaleResourceComment       *string `json:"has_scale_resource_comment"`

	SuggestedOrganisationUnitIDs *[]string `json:"suggested_organisation_unit_ids"`
	IsSubmission                 bool      `json:"is_submission"`
}

type createReassessmentRequest struct {
	Reasons              []string `json:"reasons" binding:"required,min=1"`
	Description          *string  `json:"description"`
	WhatSupportDoYouNeed *string  `json:"what_support_do_you_need"`
}

type updateAssessorRequest struct {
	AssessorID int `json:"assessor_id" binding:"required"`
}

type upsertExemptionRequest struct {
	Reason  string  `json:"reason" binding:"required"`
	Message *string `json:"message"`
}

// GetAssessment returns the assessment detail view.
func GetAssessment(c *gin.Context) {
	svc := services.NewAssessmentService(nil)

	info, err := svc.GetAssessmentInfo(c.Request.Context(), c.Param("assessmentId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// CreateAssessment starts the needs assessment of an innovation.
func CreateAssessment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	svc := services.NewAssessmentService(nil)
	assessmentID, err := svc.CreateAssessment(c.Request.Context(), actor, c.Param("innovationId"), req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": assessmentID})
}

// UpdateAssessment applies a partial update or submits the assessment.
func UpdateAssessment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	svc := services.NewAssessmentService(nil)
	assessmentID, err := svc.UpdateAssessment(c.Request.Context(), actor,
		c.Param("innovationId"), c.Param("assessmentId"), services.UpdateAssessmentData{
			Summary:                    req.Summary,
			Description:                req.Description,
			MaturityLevel:              req.MaturityLevel,
			MaturityLevelComment:       req.MaturityLevelComment,
			HasRegulatoryApprovals:     req.HasRegulatoryApprovals,
			RegulatoryApprovalsComment: req.RegulatoryApprovalsComment,
			HasEvidence:                req.HasEvidence,
			EvidenceComment:            req.EvidenceComment,
			HasValidation:              req.HasValidation,
			ValidationComment:          req.ValidationComment,
			HasProposition:             req.HasProposition,
			PropositionComment:         req.PropositionComment,
			HasCompetitionKnowledge:    req.HasCompetitionKnowledge,
			CompetitionComment:         req.CompetitionComment,
			HasImplementationPlan:      req.HasImplementationPlan,
			ImplementationComment:      req.ImplementationComment,
			HasScaleResource:           req.HasScaleResource,
			ScaleResourceComment:       req.ScaleResourceComment,

			SuggestedOrganisationUnitIDs: req.SuggestedOrganisationUnitIDs,
			IsSubmission:                 req.IsSubmission,
		})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": assessmentID})
}

// EditAssessment opens a new minor version of a submitted assessment.
func EditAssessment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	svc := services.NewAssessmentService(nil)
	assessmentID, err := svc.EditAssessment(c.Request.Context(), actor, c.Param("innovationId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": assessmentID})
}

// CreateReassessment opens a reassessment request on an innovation.
func CreateReassessment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReassessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	svc := services.NewAssessmentService(nil)
	result, err := svc.CreateReassessment(c.Request.Context(), actor, c.Param("innovationId"), services.ReassessmentData{
		Reasons:              req.Reasons,
		Description:          req.Description,
		WhatSupportDoYouNeed: req.WhatSupportDoYouNeed,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"assessment":   gin.H{"id": result.AssessmentID},
		"reassessment": gin.H{"id": result.ReassessmentID},
	})
}

// UpdateAssessor reassigns an assessment to another needs assessor.
func UpdateAssessor(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateAssessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	svc := services.NewAssessmentService(nil)
	assessorID, err := svc.UpdateAssessor(c.Request.Context(), actor,
		c.Param("innovationId"), c.Param("assessmentId"), req.AssessorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assessor_id": assessorID})
}

// UpsertExemption records or amends the KPI exemption on an assessment.
func UpsertExemption(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req upsertExemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	svc := services.NewAssessmentService(nil)
	if err := svc.UpsertExemption(c.Request.Context(), actor, c.Param("assessmentId"), req.Reason, req.Message); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetExemption returns the KPI-exemption state of an assessment.
func GetExemption(c *gin.Context) {
	svc := services.NewAssessmentService(nil)

	info, err := svc.GetExemption(c.Request.Context(), c.Param("assessmentId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// GetAssessments lists an innovation's finished assessments.
func GetAssessments(c *gin.Context) {
	svc := services.NewAssessmentService(nil)

	items, err := svc.ListAssessments(c.Request.Context(), c.Param("innovationId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}
