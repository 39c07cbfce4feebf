package services

import (
	"encoding/json"

	"innovation-tracking-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLogService appends typed activity events scoped to an innovation.
// Append runs on the caller's transaction so a failed log write rolls back
// the whole mutation.
type ActivityLogService struct{}

func NewActivityLogService() *ActivityLogService { return &ActivityLogService{} }

func (s *ActivityLogService) Append(tx *gorm.DB, innovationID string, actorID int, activity models.ActivityType, params map[string]any) error {
	var raw []byte
	if len(params) > 0 {
		var err error
		raw, err = json.Marshal(params)
		if err != nil {
			return err
		}
	}

	entry := models.ActivityLog{
		ActivityID:   uuid.NewString(),
		InnovationID: innovationID,
		Activity:     activity,
		UserID:       actorID,
		Params:       raw,
	}
	return tx.Create(&entry).Error
}
