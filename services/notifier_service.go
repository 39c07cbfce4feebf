package services

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"

	"innovation-tracking-api/config"
	"innovation-tracking-api/models"

	"gorm.io/gorm"
)

// NotifierService dispatches typed notification events after the primary
// transaction has committed. Delivery is best effort: failures are logged
// and never surfaced to the caller.
type NotifierService struct {
	db *gorm.DB
}

func NewNotifierService(db *gorm.DB) *NotifierService {
	if db == nil {
		db = config.DB
	}
	return &NotifierService{db: db}
}

// NeedsAssessmentCompleted notifies the innovation owner and active
// collaborators that the needs assessment was submitted, plus the accessors
// of any suggested organisation units.
func (s *NotifierService) NeedsAssessmentCompleted(ctx context.Context, innovationID, assessmentID string, suggestedUnitIDs []string) {
	ctx = persistentContext(ctx)

	var innovation models.Innovation
	if err := s.db.WithContext(ctx).
		Where("innovation_id = ? AND delete_at IS NULL", innovationID).
		First(&innovation).Error; err != nil {
		log.Printf("notifier: needs assessment completed: load innovation %s: %v", innovationID, err)
		return
	}

	title := "Needs assessment completed"
	message := fmt.Sprintf("The needs assessment for innovation %q has been completed.", innovation.Name)
	s.notifyUsers(ctx, s.innovatorUserIDs(ctx, innovation), title, message, "success", innovationID)

	if len(suggestedUnitIDs) > 0 {
		var accessorIDs []int
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("organisation_unit_id IN ? AND delete_at IS NULL", suggestedUnitIDs).
			Pluck("user_id", &accessorIDs).Error; err != nil {
			log.Printf("notifier: needs assessment completed: load accessors: %v", err)
		} else {
			accessorMsg := fmt.Sprintf("Your organisation unit has been suggested to support innovation %q.", innovation.Name)
			s.notifyUsers(ctx, accessorIDs, "Organisation suggested", accessorMsg, "info", innovationID)
		}
	}
}

// AssessorChanged notifies the newly assigned assessor.
func (s *NotifierService) AssessorChanged(ctx context.Context, innovationID, assessmentID string, newAssessorID int) {
	ctx = persistentContext(ctx)

	var innovation models.Innovation
	if err := s.db.WithContext(ctx).
		Where("innovation_id = ? AND delete_at IS NULL", innovationID).
		First(&innovation).Error; err != nil {
		log.Printf("notifier: assessor changed: load innovation %s: %v", innovationID, err)
		return
	}

	message := fmt.Sprintf("You are now the assigned assessor for innovation %q.", innovation.Name)
	s.notifyUsers(ctx, []int{newAssessorID}, "Assessment assigned", message, "info", innovationID)
}

// ReassessmentRequested notifies assessors that an innovation is back in the
// needs-assessment queue.
func (s *NotifierService) ReassessmentRequested(ctx context.Context, innovationID string) {
	ctx = persistentContext(ctx)

	var innovation models.Innovation
	if err := s.db.WithContext(ctx).
		Where("innovation_id = ? AND delete_at IS NULL", innovationID).
		First(&innovation).Error; err != nil {
		log.Printf("notifier: reassessment requested: load innovation %s: %v", innovationID, err)
		return
	}

	var assessorIDs []int
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("role_id = ? AND delete_at IS NULL", models.RoleAssessor).
		Pluck("user_id", &assessorIDs).Error; err != nil {
		log.Printf("notifier: reassessment requested: load assessors: %v", err)
		return
	}

	message := fmt.Sprintf("A reassessment has been requested for innovation %q.", innovation.Name)
	s.notifyUsers(ctx, assessorIDs, "Reassessment requested", message, "info", innovationID)
}

func (s *NotifierService) innovatorUserIDs(ctx context.Context, innovation models.Innovation) []int {
	ids := []int{innovation.OwnerID}

	var collaboratorIDs []int
	if err := s.db.WithContext(ctx).Model(&models.InnovationCollaborator{}).
		Where("innovation_id = ? AND status = ? AND delete_at IS NULL", innovation.InnovationID, models.CollaboratorStatusActive).
		Pluck("user_id", &collaboratorIDs).Error; err != nil {
		log.Printf("notifier: load collaborators for %s: %v", innovation.InnovationID, err)
		return ids
	}

	seen := map[int]bool{innovation.OwnerID: true}
	for _, id := range collaboratorIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *NotifierService) notifyUsers(ctx context.Context, userIDs []int, title, message, kind, innovationID string) {
	if len(userIDs) == 0 {
		return
	}

	for _, userID := range userIDs {
		n := models.Notification{
			UserID:              userID,
			Title:               title,
			Message:             message,
			Type:                kind,
			RelatedInnovationID: &innovationID,
		}
		if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
			log.Printf("notifier: create notification for user %d: %v", userID, err)
		}
	}

	var emails []string
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id IN ? AND delete_at IS NULL AND email <> ''", userIDs).
		Pluck("email", &emails).Error; err != nil {
		log.Printf("notifier: load recipient emails: %v", err)
		return
	}

	go sendMailSafe(emails, title, buildNotificationEmailHTML(title, message))
}

func sendMailSafe(to []string, subject, html string) {
	if len(to) == 0 {
		return
	}
	if err := config.SendMail(to, subject, html); err != nil {
		log.Printf("notification email send failed (subject=%q to=%v): %v", subject, to, err)
	}
}

func buildNotificationEmailHTML(subject, message string) string {
	escapedSubject := template.HTMLEscapeString(subject)
	escapedMessage := template.HTMLEscapeString(strings.TrimSpace(message))
	escapedMessage = strings.ReplaceAll(strings.ReplaceAll(escapedMessage, "\r\n", "\n"), "\r", "\n")
	escapedMessage = strings.ReplaceAll(escapedMessage, "\n", "<br />")

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
  <div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px 24px 28px 24px;">
    <p style="margin:0 0 16px 0;font-size:16px;line-height:1.7;color:#111827;">%s</p>
    <p style="margin:0 0 0 0;font-size:16px;line-height:1.7;color:#111827;word-break:break-word;">%s</p>
  </div>
</div>
</body>
</html>`, escapedSubject, escapedSubject, escapedMessage)
}
