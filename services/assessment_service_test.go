package services

import (
	"context"
	"testing"
	"time"

	"innovation-tracking-api/models"
	"innovation-tracking-api/utils"
)

func strPtr(s string) *string { return &s }

func submitAssessment(t *testing.T, svc *AssessmentService, actor Actor, innovationID, assessmentID string) {
	t.Helper()

	_, err := svc.UpdateAssessment(context.Background(), actor, innovationID, assessmentID, UpdateAssessmentData{
		IsSubmission: true,
	})
	if err != nil {
		t.Fatalf("submit assessment: %v", err)
	}
}

func TestCreateAssessmentStartsNeedsAssessment(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	actor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	assessmentID, err := svc.CreateAssessment(context.Background(), actor, innovation.InnovationID, "looks promising")
	if err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}

	assessment := reloadAssessment(t, db, assessmentID)
	if assessment.MajorVersion != 1 || assessment.MinorVersion != 0 {
		t.Fatalf("expected version 1.0, got %d.%d", assessment.MajorVersion, assessment.MinorVersion)
	}
	if assessment.StartedAt == nil {
		t.Fatal("expected started_at to be stamped")
	}
	if assessment.AssignedTo == nil || *assessment.AssignedTo != assessor.UserID {
		t.Fatalf("expected assessment assigned to %d, got %v", assessor.UserID, assessment.AssignedTo)
	}

	updated := reloadInnovation(t, db, innovation.InnovationID)
	if updated.Status != models.InnovationStatusNeedsAssessment {
		t.Fatalf("expected innovation status NEEDS_ASSESSMENT, got %s", updated.Status)
	}
	if updated.CurrentAssessmentID == nil || *updated.CurrentAssessmentID != assessmentID {
		t.Fatalf("expected current assessment %s, got %v", assessmentID, updated.CurrentAssessmentID)
	}

	var logs int64
	if err := db.Model(&models.ActivityLog{}).
		Where("innovation_id = ? AND activity = ?", innovation.InnovationID, models.ActivityNeedsAssessmentStart).
		Count(&logs).Error; err != nil {
		t.Fatalf("count activity logs: %v", err)
	}
	if logs != 1 {
		t.Fatalf("expected 1 start activity, got %d", logs)
	}
}

func TestCreateAssessmentRejectsSecondAssessment(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	actor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	if _, err := svc.CreateAssessment(context.Background(), actor, innovation.InnovationID, ""); err != nil {
		t.Fatalf("first CreateAssessment returned error: %v", err)
	}

	_, err := svc.CreateAssessment(context.Background(), actor, innovation.InnovationID, "")
	requireKind(t, err, utils.KindUnprocessable)
}

func TestCreateAssessmentUnknownInnovation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)
	assessor := seedUser(t, db, models.RoleAssessor, nil)

	_, err := svc.CreateAssessment(context.Background(), Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}, "no-such-innovation", "")
	requireKind(t, err, utils.KindNotFound)
}

func TestUpdateAssessmentSubmissionFinishesAssessment(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	actor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	assessmentID, err := svc.CreateAssessment(context.Background(), actor, innovation.InnovationID, "")
	if err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}

	_, err = svc.UpdateAssessment(context.Background(), actor, innovation.InnovationID, assessmentID, UpdateAssessmentData{
		Summary:       strPtr("strong clinical evidence"),
		MaturityLevel: strPtr("READY"),
		IsSubmission:  true,
	})
	if err != nil {
		t.Fatalf("UpdateAssessment returned error: %v", err)
	}

	assessment := reloadAssessment(t, db, assessmentID)
	if !assessment.IsFinished() {
		t.Fatal("expected assessment to be finished after submission")
	}
	if assessment.Summary == nil || *assessment.Summary != "strong clinical evidence" {
		t.Fatalf("expected summary to be saved, got %v", assessment.Summary)
	}

	updated := reloadInnovation(t, db, innovation.InnovationID)
	if updated.Status != models.InnovationStatusInProgress {
		t.Fatalf("expected innovation status IN_PROGRESS, got %s", updated.Status)
	}
	if !updated.HasBeenAssessed {
		t.Fatal("expected has_been_assessed to be set")
	}
}

func TestUpdateAssessmentRejectsFinishedAssessment(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	actor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	assessmentID, err := svc.CreateAssessment(context.Background(), actor, innovation.InnovationID, "")
	if err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}
	submitAssessment(t, svc, actor, innovation.InnovationID, assessmentID)

	_, err = svc.UpdateAssessment(context.Background(), actor, innovation.InnovationID, assessmentID, UpdateAssessmentData{
		Summary: strPtr("late change"),
	})
	requireKind(t, err, utils.KindUnprocessable)

	_, err = svc.UpdateAssessment(context.Background(), actor, innovation.InnovationID, assessmentID, UpdateAssessmentData{
		IsSubmission: true,
	})
	requireKind(t, err, utils.KindUnprocessable)
}

func TestUpdateAssessmentSubmissionCannotRemoveSuggestedUnits(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	actor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	org := seedOrganisation(t, db, "North Trust")
	unitA := seedOrganisationUnit(t, db, org.OrganisationID, "Cardiology")
	unitB := seedOrganisationUnit(t, db, org.OrganisationID, "Radiology")
	unitC := seedOrganisationUnit(t, db, org.OrganisationID, "Oncology")

	assessmentID, err := svc.CreateAssessment(context.Background(), actor, innovation.InnovationID, "")
	if err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}

	draft := []string{unitA.OrganisationUnitID, unitB.OrganisationUnitID}
	if _, err := svc.UpdateAssessment(context.Background(), actor, innovation.InnovationID, assessmentID, UpdateAssessmentData{
		SuggestedOrganisationUnitIDs: &draft,
	}); err != nil {
		t.Fatalf("draft save returned error: %v", err)
	}

	shrunk := []string{unitA.OrganisationUnitID}
	_, err = svc.UpdateAssessment(context.Background(), actor, innovation.InnovationID, assessmentID, UpdateAssessmentData{
		SuggestedOrganisationUnitIDs: &shrunk,
		IsSubmission:                 true,
	})
	requireKind(t, err, utils.KindConflict)

	grown := []string{unitA.OrganisationUnitID, unitB.OrganisationUnitID, unitC.OrganisationUnitID}
	if _, err := svc.UpdateAssessment(context.Background(), actor, innovation.InnovationID, assessmentID, UpdateAssessmentData{
		SuggestedOrganisationUnitIDs: &grown,
		IsSubmission:                 true,
	}); err != nil {
		t.Fatalf("submission with superset returned error: %v", err)
	}

	var joined int64
	if err := db.Model(&models.AssessmentOrganisationUnit{}).
		Where("assessment_id = ?", assessmentID).
		Count(&joined).Error; err != nil {
		t.Fatalf("count suggestion rows: %v", err)
	}
	if joined != 3 {
		t.Fatalf("expected 3 suggested units, got %d", joined)
	}
}

func TestEditAssessmentClonesMinorVersion(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	actor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	org := seedOrganisation(t, db, "North Trust")
	unit := seedOrganisationUnit(t, db, org.OrganisationID, "Cardiology")

	assessmentID, err := svc.CreateAssessment(context.Background(), actor, innovation.InnovationID, "")
	if err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}

	// Editing is only allowed once the assessment is submitted.
	if _, err := svc.EditAssessment(context.Background(), actor, innovation.InnovationID); !utils.IsKind(err, utils.KindConflict) {
		t.Fatalf("expected conflict editing an unsubmitted assessment, got %v", err)
	}

	units := []string{unit.OrganisationUnitID}
	if _, err := svc.UpdateAssessment(context.Background(), actor, innovation.InnovationID, assessmentID, UpdateAssessmentData{
		Summary:                      strPtr("original summary"),
		SuggestedOrganisationUnitIDs: &units,
		IsSubmission:                 true,
	}); err != nil {
		t.Fatalf("submit returned error: %v", err)
	}

	editedID, err := svc.EditAssessment(context.Background(), actor, innovation.InnovationID)
	if err != nil {
		t.Fatalf("EditAssessment returned error: %v", err)
	}
	if editedID == assessmentID {
		t.Fatal("expected edit to create a new assessment record")
	}

	edited := reloadAssessment(t, db, editedID)
	if edited.MajorVersion != 1 || edited.MinorVersion != 1 {
		t.Fatalf("expected version 1.1, got %d.%d", edited.MajorVersion, edited.MinorVersion)
	}
	if edited.IsFinished() {
		t.Fatal("expected edited assessment to be unfinished")
	}
	if edited.Summary == nil || *edited.Summary != "original summary" {
		t.Fatalf("expected content to carry over, got %v", edited.Summary)
	}

	var joined int64
	if err := db.Model(&models.AssessmentOrganisationUnit{}).
		Where("assessment_id = ?", editedID).
		Count(&joined).Error; err != nil {
		t.Fatalf("count suggestion rows: %v", err)
	}
	if joined != 1 {
		t.Fatalf("expected suggested units to be copied, got %d rows", joined)
	}

	updated := reloadInnovation(t, db, innovation.InnovationID)
	if updated.CurrentAssessmentID == nil || *updated.CurrentAssessmentID != editedID {
		t.Fatalf("expected current assessment %s, got %v", editedID, updated.CurrentAssessmentID)
	}
}

func TestCreateReassessmentChainsMajorVersions(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	assessorActor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	assessmentID, err := svc.CreateAssessment(context.Background(), assessorActor, innovation.InnovationID, "")
	if err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}
	if _, err := svc.UpdateAssessment(context.Background(), assessorActor, innovation.InnovationID, assessmentID, UpdateAssessmentData{
		Summary:      strPtr("first round"),
		IsSubmission: true,
	}); err != nil {
		t.Fatalf("submit returned error: %v", err)
	}

	if err := svc.UpsertExemption(context.Background(), assessorActor, assessmentID, "NO_KPI", nil); err != nil {
		t.Fatalf("UpsertExemption returned error: %v", err)
	}

	ownerActor := Actor{UserID: owner.UserID, RoleID: models.RoleInnovator}
	result, err := svc.CreateReassessment(context.Background(), ownerActor, innovation.InnovationID, ReassessmentData{
		Reasons:     []string{"NEW_EVIDENCE"},
		Description: strPtr("pilot results are in"),
	})
	if err != nil {
		t.Fatalf("CreateReassessment returned error: %v", err)
	}

	reassessed := reloadAssessment(t, db, result.AssessmentID)
	if reassessed.MajorVersion != 2 || reassessed.MinorVersion != 0 {
		t.Fatalf("expected version 2.0, got %d.%d", reassessed.MajorVersion, reassessed.MinorVersion)
	}
	if reassessed.PreviousAssessmentID == nil || *reassessed.PreviousAssessmentID != assessmentID {
		t.Fatalf("expected previous assessment %s, got %v", assessmentID, reassessed.PreviousAssessmentID)
	}
	if reassessed.Summary == nil || *reassessed.Summary != "first round" {
		t.Fatalf("expected content to carry over, got %v", reassessed.Summary)
	}
	if reassessed.StartedAt != nil || reassessed.FinishedAt != nil || reassessed.AssignedTo != nil {
		t.Fatal("expected lifecycle fields to be cleared on the new assessment")
	}
	if reassessed.ExemptedReason != nil || reassessed.ExemptedAt != nil {
		t.Fatal("expected exemption not to carry over")
	}

	updated := reloadInnovation(t, db, innovation.InnovationID)
	if updated.Status != models.InnovationStatusWaitingNeedsAssessment {
		t.Fatalf("expected WAITING_NEEDS_ASSESSMENT after innovator request, got %s", updated.Status)
	}
	if updated.CurrentAssessmentID == nil || *updated.CurrentAssessmentID != result.AssessmentID {
		t.Fatalf("expected current assessment %s, got %v", result.AssessmentID, updated.CurrentAssessmentID)
	}

	var request models.ReassessmentRequest
	if err := db.Where("reassessment_id = ?", result.ReassessmentID).First(&request).Error; err != nil {
		t.Fatalf("load reassessment request: %v", err)
	}
	if request.AssessmentID != result.AssessmentID || request.PreviousAssessmentID != assessmentID {
		t.Fatalf("reassessment request links wrong assessments: %+v", request)
	}
}

func TestCreateReassessmentByAssessorQueuesImmediately(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	actor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	assessmentID, err := svc.CreateAssessment(context.Background(), actor, innovation.InnovationID, "")
	if err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}
	submitAssessment(t, svc, actor, innovation.InnovationID, assessmentID)

	if _, err := svc.CreateReassessment(context.Background(), actor, innovation.InnovationID, ReassessmentData{}); err != nil {
		t.Fatalf("CreateReassessment returned error: %v", err)
	}

	updated := reloadInnovation(t, db, innovation.InnovationID)
	if updated.Status != models.InnovationStatusNeedsAssessment {
		t.Fatalf("expected NEEDS_ASSESSMENT after assessor request, got %s", updated.Status)
	}
}

func TestCreateReassessmentResetsEngagingSupports(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	accessor := seedUser(t, db, models.RoleAccessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	actor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	org := seedOrganisation(t, db, "North Trust")
	unitA := seedOrganisationUnit(t, db, org.OrganisationID, "Cardiology")
	unitB := seedOrganisationUnit(t, db, org.OrganisationID, "Radiology")

	assessmentID, err := svc.CreateAssessment(context.Background(), actor, innovation.InnovationID, "")
	if err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}
	submitAssessment(t, svc, actor, innovation.InnovationID, assessmentID)

	engaging := seedSupport(t, db, innovation.InnovationID, unitA.OrganisationUnitID, models.SupportStatusEngaging)
	closed := seedSupport(t, db, innovation.InnovationID, unitB.OrganisationUnitID, models.SupportStatusClosed)
	if err := db.Create(&models.SupportUserRole{SupportID: engaging.SupportID, UserID: accessor.UserID}).Error; err != nil {
		t.Fatalf("seed support user role: %v", err)
	}

	if _, err := svc.CreateReassessment(context.Background(), actor, innovation.InnovationID, ReassessmentData{}); err != nil {
		t.Fatalf("CreateReassessment returned error: %v", err)
	}

	var resetSupport models.InnovationSupport
	if err := db.Where("support_id = ?", engaging.SupportID).First(&resetSupport).Error; err != nil {
		t.Fatalf("reload support: %v", err)
	}
	if resetSupport.Status != models.SupportStatusSuggested {
		t.Fatalf("expected ENGAGING support to drop to SUGGESTED, got %s", resetSupport.Status)
	}

	var untouched models.InnovationSupport
	if err := db.Where("support_id = ?", closed.SupportID).First(&untouched).Error; err != nil {
		t.Fatalf("reload support: %v", err)
	}
	if untouched.Status != models.SupportStatusClosed {
		t.Fatalf("expected CLOSED support to be untouched, got %s", untouched.Status)
	}

	var roles int64
	if err := db.Model(&models.SupportUserRole{}).
		Where("support_id = ?", engaging.SupportID).
		Count(&roles).Error; err != nil {
		t.Fatalf("count support user roles: %v", err)
	}
	if roles != 0 {
		t.Fatalf("expected assigned users to be removed, got %d", roles)
	}
}

func TestCreateReassessmentBlockedByEngagingSupportsForInnovator(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	assessorActor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	org := seedOrganisation(t, db, "North Trust")
	unit := seedOrganisationUnit(t, db, org.OrganisationID, "Cardiology")

	assessmentID, err := svc.CreateAssessment(context.Background(), assessorActor, innovation.InnovationID, "")
	if err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}
	submitAssessment(t, svc, assessorActor, innovation.InnovationID, assessmentID)
	seedSupport(t, db, innovation.InnovationID, unit.OrganisationUnitID, models.SupportStatusEngaging)

	ownerActor := Actor{UserID: owner.UserID, RoleID: models.RoleInnovator}
	_, err = svc.CreateReassessment(context.Background(), ownerActor, innovation.InnovationID, ReassessmentData{})
	requireKind(t, err, utils.KindUnprocessable)
}

func TestCreateReassessmentOnArchivedRequiresOwner(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	collaborator := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	assessorActor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	assessmentID, err := svc.CreateAssessment(context.Background(), assessorActor, innovation.InnovationID, "")
	if err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}
	submitAssessment(t, svc, assessorActor, innovation.InnovationID, assessmentID)

	if err := db.Model(&models.Innovation{}).
		Where("innovation_id = ?", innovation.InnovationID).
		Update("status", string(models.InnovationStatusArchived)).Error; err != nil {
		t.Fatalf("archive innovation: %v", err)
	}

	_, err = svc.CreateReassessment(context.Background(), Actor{UserID: collaborator.UserID, RoleID: models.RoleInnovator}, innovation.InnovationID, ReassessmentData{})
	requireKind(t, err, utils.KindForbidden)

	if _, err := svc.CreateReassessment(context.Background(), Actor{UserID: owner.UserID, RoleID: models.RoleInnovator}, innovation.InnovationID, ReassessmentData{}); err != nil {
		t.Fatalf("owner reassessment on archived innovation returned error: %v", err)
	}
}

func TestCreateReassessmentRequiresFinishedAssessment(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	actor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	if _, err := svc.CreateAssessment(context.Background(), actor, innovation.InnovationID, ""); err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}

	_, err := svc.CreateReassessment(context.Background(), actor, innovation.InnovationID, ReassessmentData{})
	requireKind(t, err, utils.KindUnprocessable)
}

func TestUpdateAssessorRequiresAssessorRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	otherAssessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	actor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	assessmentID, err := svc.CreateAssessment(context.Background(), actor, innovation.InnovationID, "")
	if err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}

	// The innovation owner is not an assessor, so they cannot be assigned.
	_, err = svc.UpdateAssessor(context.Background(), actor, innovation.InnovationID, assessmentID, owner.UserID)
	requireKind(t, err, utils.KindNotFound)

	assignedID, err := svc.UpdateAssessor(context.Background(), actor, innovation.InnovationID, assessmentID, otherAssessor.UserID)
	if err != nil {
		t.Fatalf("UpdateAssessor returned error: %v", err)
	}
	if assignedID != otherAssessor.UserID {
		t.Fatalf("expected assignee %d, got %d", otherAssessor.UserID, assignedID)
	}

	assessment := reloadAssessment(t, db, assessmentID)
	if assessment.AssignedTo == nil || *assessment.AssignedTo != otherAssessor.UserID {
		t.Fatalf("expected assigned_to %d, got %v", otherAssessor.UserID, assessment.AssignedTo)
	}
}

func TestUpsertExemptionStampsTimestampOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	actor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	assessmentID, err := svc.CreateAssessment(context.Background(), actor, innovation.InnovationID, "")
	if err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}

	info, err := svc.GetExemption(context.Background(), assessmentID)
	if err != nil {
		t.Fatalf("GetExemption returned error: %v", err)
	}
	if info.IsExempted {
		t.Fatal("expected a fresh assessment not to be exempted")
	}

	if err := svc.UpsertExemption(context.Background(), actor, assessmentID, "NO_KPI", strPtr("out of scope")); err != nil {
		t.Fatalf("first UpsertExemption returned error: %v", err)
	}
	first := reloadAssessment(t, db, assessmentID)
	if first.ExemptedAt == nil {
		t.Fatal("expected exempted_at to be stamped")
	}

	time.Sleep(10 * time.Millisecond)
	if err := svc.UpsertExemption(context.Background(), actor, assessmentID, "OTHER", nil); err != nil {
		t.Fatalf("second UpsertExemption returned error: %v", err)
	}
	second := reloadAssessment(t, db, assessmentID)
	if second.ExemptedReason == nil || *second.ExemptedReason != "OTHER" {
		t.Fatalf("expected reason to be updated, got %v", second.ExemptedReason)
	}
	if !second.ExemptedAt.Equal(*first.ExemptedAt) {
		t.Fatalf("expected exempted_at to be preserved, got %v then %v", first.ExemptedAt, second.ExemptedAt)
	}

	info, err = svc.GetExemption(context.Background(), assessmentID)
	if err != nil {
		t.Fatalf("GetExemption returned error: %v", err)
	}
	if !info.IsExempted || info.Exemption == nil || info.Exemption.Reason != "OTHER" {
		t.Fatalf("expected exemption with reason OTHER, got %+v", info)
	}
}

func TestListAssessmentsReturnsFinishedOnly(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	actor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	firstID, err := svc.CreateAssessment(context.Background(), actor, innovation.InnovationID, "")
	if err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}
	submitAssessment(t, svc, actor, innovation.InnovationID, firstID)

	// The reassessment opens an unfinished assessment that must not be listed.
	result, err := svc.CreateReassessment(context.Background(), actor, innovation.InnovationID, ReassessmentData{})
	if err != nil {
		t.Fatalf("CreateReassessment returned error: %v", err)
	}

	items, err := svc.ListAssessments(context.Background(), innovation.InnovationID)
	if err != nil {
		t.Fatalf("ListAssessments returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 finished assessment, got %d", len(items))
	}
	if items[0].ID != firstID {
		t.Fatalf("expected assessment %s, got %s", firstID, items[0].ID)
	}

	submitAssessment(t, svc, actor, innovation.InnovationID, result.AssessmentID)
	items, err = svc.ListAssessments(context.Background(), innovation.InnovationID)
	if err != nil {
		t.Fatalf("ListAssessments returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 finished assessments, got %d", len(items))
	}
}

func TestGetAssessmentInfoGroupsSuggestedUnits(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	actor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	north := seedOrganisation(t, db, "North Trust")
	south := seedOrganisation(t, db, "South Trust")
	unitA := seedOrganisationUnit(t, db, north.OrganisationID, "Cardiology")
	unitB := seedOrganisationUnit(t, db, north.OrganisationID, "Radiology")
	unitC := seedOrganisationUnit(t, db, south.OrganisationID, "Oncology")

	assessmentID, err := svc.CreateAssessment(context.Background(), actor, innovation.InnovationID, "")
	if err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}

	units := []string{unitA.OrganisationUnitID, unitB.OrganisationUnitID, unitC.OrganisationUnitID}
	if _, err := svc.UpdateAssessment(context.Background(), actor, innovation.InnovationID, assessmentID, UpdateAssessmentData{
		SuggestedOrganisationUnitIDs: &units,
	}); err != nil {
		t.Fatalf("UpdateAssessment returned error: %v", err)
	}

	info, err := svc.GetAssessmentInfo(context.Background(), assessmentID)
	if err != nil {
		t.Fatalf("GetAssessmentInfo returned error: %v", err)
	}
	if !info.IsLatest {
		t.Fatal("expected the current assessment to be reported as latest")
	}
	if info.Assignee == nil || info.Assignee.ID != assessor.UserID {
		t.Fatalf("expected assignee %d, got %+v", assessor.UserID, info.Assignee)
	}
	if len(info.SuggestedOrganisations) != 2 {
		t.Fatalf("expected units grouped into 2 organisations, got %d", len(info.SuggestedOrganisations))
	}
	byOrg := map[string]OrganisationWithUnits{}
	for _, org := range info.SuggestedOrganisations {
		byOrg[org.ID] = org
	}
	if len(byOrg[north.OrganisationID].Units) != 2 || len(byOrg[south.OrganisationID].Units) != 1 {
		t.Fatalf("unexpected grouping: %v", byOrg)
	}
	if byOrg[north.OrganisationID].Name != "North Trust" || byOrg[south.OrganisationID].Name != "South Trust" {
		t.Fatalf("expected organisation names on grouped entries, got %+v", info.SuggestedOrganisations)
	}
	if byOrg[south.OrganisationID].Units[0].Name != "Oncology" {
		t.Fatalf("expected Oncology under South Trust, got %+v", byOrg[south.OrganisationID].Units)
	}
}

func TestGetAssessmentInfoReportsReassessmentAndUpdatedSections(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	actor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	firstID, err := svc.CreateAssessment(context.Background(), actor, innovation.InnovationID, "")
	if err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}
	submitAssessment(t, svc, actor, innovation.InnovationID, firstID)

	result, err := svc.CreateReassessment(context.Background(), actor, innovation.InnovationID, ReassessmentData{
		Reasons: []string{"NEW_EVIDENCE", "MARKET_CHANGE"},
	})
	if err != nil {
		t.Fatalf("CreateReassessment returned error: %v", err)
	}

	// One section changed after the previous assessment finished, one before.
	before := time.Now().Add(-time.Hour)
	after := time.Now().Add(time.Hour)
	sections := []models.InnovationSection{
		{SectionID: "s1", InnovationID: innovation.InnovationID, Section: "UNDERSTANDING_OF_NEEDS", UpdateAt: &after},
		{SectionID: "s2", InnovationID: innovation.InnovationID, Section: "COST_OF_INNOVATION", UpdateAt: &before},
	}
	for i := range sections {
		if err := db.Create(&sections[i]).Error; err != nil {
			t.Fatalf("seed innovation section: %v", err)
		}
	}

	info, err := svc.GetAssessmentInfo(context.Background(), result.AssessmentID)
	if err != nil {
		t.Fatalf("GetAssessmentInfo returned error: %v", err)
	}
	if info.Reassessment == nil {
		t.Fatal("expected reassessment block on the new assessment")
	}
	if info.Reassessment.ReassessmentID != result.ReassessmentID {
		t.Fatalf("expected reassessment %s, got %s", result.ReassessmentID, info.Reassessment.ReassessmentID)
	}
	if info.Reassessment.PreviousAssessmentID != firstID {
		t.Fatalf("expected previous assessment %s, got %s", firstID, info.Reassessment.PreviousAssessmentID)
	}
	if info.Reassessment.PreviousFinishedAt == nil {
		t.Fatal("expected previous finished_at to be reported")
	}
	if len(info.Reassessment.Reasons) != 2 {
		t.Fatalf("expected 2 reasons, got %v", info.Reassessment.Reasons)
	}
	if len(info.Reassessment.UpdatedSections) != 1 || info.Reassessment.UpdatedSections[0] != "UNDERSTANDING_OF_NEEDS" {
		t.Fatalf("expected only the section updated after submission, got %v", info.Reassessment.UpdatedSections)
	}

	previousInfo, err := svc.GetAssessmentInfo(context.Background(), firstID)
	if err != nil {
		t.Fatalf("GetAssessmentInfo returned error: %v", err)
	}
	if previousInfo.IsLatest {
		t.Fatal("expected the superseded assessment not to be latest")
	}
	if previousInfo.Reassessment != nil {
		t.Fatal("expected no reassessment block on the original assessment")
	}
}

func TestGetAssessmentInfoUnknownAssessment(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	_, err := svc.GetAssessmentInfo(context.Background(), "no-such-assessment")
	requireKind(t, err, utils.KindNotFound)
}

func TestNonSubmittingSaveOfReassessmentPullsInnovationBackIntoQueue(t *testing.T) {
	db := newTestDB(t)
	svc := NewAssessmentService(db)

	owner := seedUser(t, db, models.RoleInnovator, nil)
	assessor := seedUser(t, db, models.RoleAssessor, nil)
	innovation := seedInnovation(t, db, owner.UserID, models.InnovationStatusWaitingNeedsAssessment)
	actor := Actor{UserID: assessor.UserID, RoleID: models.RoleAssessor}

	firstID, err := svc.CreateAssessment(context.Background(), actor, innovation.InnovationID, "")
	if err != nil {
		t.Fatalf("CreateAssessment returned error: %v", err)
	}
	submitAssessment(t, svc, actor, innovation.InnovationID, firstID)

	result, err := svc.CreateReassessment(context.Background(), Actor{UserID: owner.UserID, RoleID: models.RoleInnovator}, innovation.InnovationID, ReassessmentData{})
	if err != nil {
		t.Fatalf("CreateReassessment returned error: %v", err)
	}
	if reloadInnovation(t, db, innovation.InnovationID).Status != models.InnovationStatusWaitingNeedsAssessment {
		t.Fatal("expected WAITING_NEEDS_ASSESSMENT after innovator request")
	}

	if _, err := svc.UpdateAssessment(context.Background(), actor, innovation.InnovationID, result.AssessmentID, UpdateAssessmentData{
		Summary: strPtr("picking this up"),
	}); err != nil {
		t.Fatalf("UpdateAssessment returned error: %v", err)
	}

	if got := reloadInnovation(t, db, innovation.InnovationID).Status; got != models.InnovationStatusNeedsAssessment {
		t.Fatalf("expected NEEDS_ASSESSMENT after the assessor starts working, got %s", got)
	}
}
