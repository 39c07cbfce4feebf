package services

import (
	"context"

	"innovation-tracking-api/config"
	"innovation-tracking-api/models"

	"gorm.io/gorm"
)

// StatisticsService exposes read-only counters derived from assessments,
// supports and notifications.
type StatisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) *StatisticsService {
	if db == nil {
		db = config.DB
	}
	return &StatisticsService{db: db}
}

// AssessmentWorkload counts finished vs in-flight assessments assigned to
// one assessor.
type AssessmentWorkload struct {
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
}

func (s *StatisticsService) AssessorWorkload(ctx context.Context, assessorID int) (*AssessmentWorkload, error) {
	var workload AssessmentWorkload

	base := s.db.WithContext(ctx).Model(&models.Assessment{}).
		Where("assigned_to = ? AND delete_at IS NULL", assessorID)

	if err := base.Session(&gorm.Session{}).
		Where("finished_at IS NOT NULL").
		Count(&workload.Completed).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("finished_at IS NULL").
		Count(&workload.Pending).Error; err != nil {
		return nil, err
	}
	return &workload, nil
}

// SupportsByStatus counts an innovation's supports per status.
func (s *StatisticsService) SupportsByStatus(ctx context.Context, innovationID string) (map[models.SupportStatus]int64, error) {
	var rows []struct {
		Status models.SupportStatus
		Total  int64
	}
	if err := s.db.WithContext(ctx).Model(&models.InnovationSupport{}).
		Select("status, COUNT(*) AS total").
		Where("innovation_id = ? AND delete_at IS NULL", innovationID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.SupportStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// UnreadNotifications counts a user's unread in-app notifications.
func (s *StatisticsService) UnreadNotifications(ctx context.Context, userID int) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// InnovationsByStatus counts tracked innovations per lifecycle status.
func (s *StatisticsService) InnovationsByStatus(ctx context.Context) (map[models.InnovationStatus]int64, error) {
	var rows []struct {
		Status models.InnovationStatus
		Total  int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Innovation{}).
		Select("status, COUNT(*) AS total").
		Where("delete_at IS NULL").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.InnovationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
