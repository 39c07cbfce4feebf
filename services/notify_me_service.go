package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"innovation-tracking-api/config"
	"innovation-tracking-api/models"
	"innovation-tracking-api/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotifyMeService manages per-user-role event subscriptions and renders them
// into event-type-specific response shapes.
type NotifyMeService struct {
	db *gorm.DB
}

func NewNotifyMeService(db *gorm.DB) *NotifyMeService {
	if db == nil {
		db = config.DB
	}
	return &NotifyMeService{db: db}
}

// SubscriptionPreConditions narrow when a subscription fires.
type SubscriptionPreConditions struct {
	UnitIDs  []string               `json:"units,omitempty"`
	Statuses []models.SupportStatus `json:"status,omitempty"`
	Sections []string               `json:"sections,omitempty"`
}

// SubscriptionConfig is the polymorphic subscription payload. Its shape is
// tagged by EventType; Date is required for SCHEDULED subscriptions.
type SubscriptionConfig struct {
	EventType        models.NotifyMeEventType        `json:"event_type"`
	SubscriptionType models.NotifyMeSubscriptionType `json:"subscription_type"`
	Date             *time.Time                      `json:"date,omitempty"`
	PreConditions    *SubscriptionPreConditions      `json:"pre_conditions,omitempty"`
	CustomMessage    *string                         `json:"custom_message,omitempty"`
}

// SubscriptionResponse is one rendered subscription. Which optional fields
// are populated depends on the event type.
type SubscriptionResponse struct {
	ID               string                          `json:"id"`
	UpdatedAt        *time.Time                      `json:"updated_at,omitempty"`
	EventType        models.NotifyMeEventType        `json:"event_type"`
	SubscriptionType models.NotifyMeSubscriptionType `json:"subscription_type"`
	ScheduledDate    *time.Time                      `json:"scheduled_date,omitempty"`
	Organisations    []OrganisationWithUnits         `json:"organisations,omitempty"`
	Statuses         []models.SupportStatus          `json:"status,omitempty"`
	Sections         []string                        `json:"sections,omitempty"`
	CustomMessage    *string                         `json:"custom_message,omitempty"`
}

// InnovationSubscriptions groups a user's subscriptions per innovation for
// the cross-innovation listing.
type InnovationSubscriptions struct {
	InnovationID  string                 `json:"innovation_id"`
	Name          string                 `json:"name"`
	Count         int                    `json:"count"`
	Subscriptions []SubscriptionResponse `json:"subscriptions,omitempty"`
}

// responseBuilder renders one subscription of a given event type.
// unitsByID carries the bulk-resolved organisation units referenced by any
// subscription in the batch.
type responseBuilder func(sub models.NotifyMeSubscription, cfg SubscriptionConfig, unitsByID map[string]models.OrganisationUnit) SubscriptionResponse

var subscriptionBuilders = map[models.NotifyMeEventType]responseBuilder{
	models.EventTypeSupportUpdated: func(sub models.NotifyMeSubscription, cfg SubscriptionConfig, unitsByID map[string]models.OrganisationUnit) SubscriptionResponse {
		resp := baseResponse(sub, cfg)
		resp.Organisations = groupConfiguredUnits(cfg, unitsByID)
		if cfg.PreConditions != nil {
			resp.Statuses = cfg.PreConditions.Statuses
		}
		return resp
	},
	models.EventTypeProgressUpdateCreated: func(sub models.NotifyMeSubscription, cfg SubscriptionConfig, unitsByID map[string]models.OrganisationUnit) SubscriptionResponse {
		resp := baseResponse(sub, cfg)
		resp.Organisations = groupConfiguredUnits(cfg, unitsByID)
		return resp
	},
	models.EventTypeInnovationRecordUpdated: genericBuilder(func(cfg SubscriptionConfig, resp *SubscriptionResponse) {
		if cfg.PreConditions != nil {
			resp.Sections = cfg.PreConditions.Sections
		}
	}),
	models.EventTypeDocumentUploaded: genericBuilder(nil),
	models.EventTypeReminder: genericBuilder(func(cfg SubscriptionConfig, resp *SubscriptionResponse) {
		resp.CustomMessage = cfg.CustomMessage
	}),
}

func genericBuilder(project func(cfg SubscriptionConfig, resp *SubscriptionResponse)) responseBuilder {
	return func(sub models.NotifyMeSubscription, cfg SubscriptionConfig, _ map[string]models.OrganisationUnit) SubscriptionResponse {
		resp := baseResponse(sub, cfg)
		if project != nil {
			project(cfg, &resp)
		}
		return resp
	}
}

func baseResponse(sub models.NotifyMeSubscription, cfg SubscriptionConfig) SubscriptionResponse {
	return SubscriptionResponse{
		ID:               sub.SubscriptionID,
		UpdatedAt:        sub.UpdateAt,
		EventType:        sub.EventType,
		SubscriptionType: cfg.SubscriptionType,
		ScheduledDate:    cfg.Date,
	}
}

func groupConfiguredUnits(cfg SubscriptionConfig, unitsByID map[string]models.OrganisationUnit) []OrganisationWithUnits {
	if cfg.PreConditions == nil || len(cfg.PreConditions.UnitIDs) == 0 {
		return nil
	}
	units := make([]models.OrganisationUnit, 0, len(cfg.PreConditions.UnitIDs))
	for _, id := range cfg.PreConditions.UnitIDs {
		if unit, ok := unitsByID[id]; ok {
			units = append(units, unit)
		}
	}
	return GroupUnitsByOrganisation(units)
}

// CreateSubscription persists a new subscription, together with its
// notification schedule when the subscription type is SCHEDULED.
func (s *NotifyMeService) CreateSubscription(ctx context.Context, actor Actor, innovationID string, cfg SubscriptionConfig) (string, error) {
	if _, ok := subscriptionBuilders[cfg.EventType]; !ok {
		return "", utils.BadRequestError("unknown event type")
	}
	if err := validateSchedule(cfg); err != nil {
		return "", err
	}

	var innovation models.Innovation
	if err := s.db.WithContext(ctx).
		Where("innovation_id = ? AND delete_at IS NULL", innovationID).
		First(&innovation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", utils.NotFoundError("innovation not found")
		}
		return "", err
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	subscriptionID := uuid.NewString()
	now := time.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := models.NotifyMeSubscription{
			SubscriptionID: subscriptionID,
			UserID:         actor.UserID,
			RoleID:         actor.RoleID,
			InnovationID:   innovationID,
			EventType:      cfg.EventType,
			Config:         raw,
			CreateAt:       &now,
			UpdateAt:       &now,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}

		if cfg.SubscriptionType == models.SubscriptionTypeScheduled {
			schedule := models.NotificationSchedule{SubscriptionID: subscriptionID, SendDate: *cfg.Date}
			if err := tx.Create(&schedule).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return subscriptionID, nil
}

// UpdateSubscription replaces the config of a subscription owned by the
// caller's role. The event type is immutable; the notification schedule is
// kept in lockstep with the SCHEDULED subscription type.
func (s *NotifyMeService) UpdateSubscription(ctx context.Context, actor Actor, subscriptionID string, cfg SubscriptionConfig) error {
	var sub models.NotifyMeSubscription
	if err := s.db.WithContext(ctx).
		Where("subscription_id = ? AND user_id = ? AND role_id = ? AND delete_at IS NULL", subscriptionID, actor.UserID, actor.RoleID).
		First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ForbiddenError("subscription does not belong to the requesting role")
		}
		return err
	}

	if cfg.EventType != sub.EventType {
		return utils.BadRequestError("subscription event type cannot be changed")
	}
	if err := validateSchedule(cfg); err != nil {
		return err
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.NotifyMeSubscription{}).
			Where("subscription_id = ?", sub.SubscriptionID).
			Updates(map[string]any{"config": raw, "update_at": now}).Error; err != nil {
			return err
		}

		if cfg.SubscriptionType == models.SubscriptionTypeScheduled {
			schedule := models.NotificationSchedule{SubscriptionID: sub.SubscriptionID, SendDate: *cfg.Date}
			return tx.Save(&schedule).Error
		}
		return tx.Where("subscription_id = ?", sub.SubscriptionID).
			Delete(&models.NotificationSchedule{}).Error
	})
}

// DeleteSubscription soft-deletes one subscription owned by the caller.
// Deleting an unknown or foreign subscription is a silent no-op.
func (s *NotifyMeService) DeleteSubscription(ctx context.Context, actor Actor, subscriptionID string) error {
	ids := []string{subscriptionID}
	return s.DeleteSubscriptions(ctx, actor, &ids)
}

// DeleteSubscriptions soft-deletes the caller's subscriptions, either the
// given ids or every subscription when ids is nil. Schedules are removed
// outright.
func (s *NotifyMeService) DeleteSubscriptions(ctx context.Context, actor Actor, subscriptionIDs *[]string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.NotifyMeSubscription{}).
			Where("user_id = ? AND role_id = ? AND delete_at IS NULL", actor.UserID, actor.RoleID)
		if subscriptionIDs != nil {
			query = query.Where("subscription_id IN ?", *subscriptionIDs)
		}

		var ids []string
		if err := query.Pluck("subscription_id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		now := time.Now()
		if err := tx.Model(&models.NotifyMeSubscription{}).
			Where("subscription_id IN ?", ids).
			Updates(map[string]any{"delete_at": now, "update_at": now}).Error; err != nil {
			return err
		}

		return tx.Where("subscription_id IN ?", ids).
			Delete(&models.NotificationSchedule{}).Error
	})
}

// GetSubscription returns one of the caller's subscriptions, rendered.
func (s *NotifyMeService) GetSubscription(ctx context.Context, actor Actor, subscriptionID string) (*SubscriptionResponse, error) {
	var sub models.NotifyMeSubscription
	if err := s.db.WithContext(ctx).
		Where("subscription_id = ? AND user_id = ? AND role_id = ? AND delete_at IS NULL", subscriptionID, actor.UserID, actor.RoleID).
		First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("subscription not found")
		}
		return nil, err
	}

	responses, err := s.buildResponses(ctx, []models.NotifyMeSubscription{sub})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// GetInnovationSubscriptions lists the caller's subscriptions on one
// innovation, newest first.
func (s *NotifyMeService) GetInnovationSubscriptions(ctx context.Context, actor Actor, innovationID string) ([]SubscriptionResponse, error) {
	var subs []models.NotifyMeSubscription
	if err := s.db.WithContext(ctx).
		Where("innovation_id = ? AND user_id = ? AND role_id = ? AND delete_at IS NULL", innovationID, actor.UserID, actor.RoleID).
		Order("create_at DESC").
		Find(&subs).Error; err != nil {
		return nil, err
	}

	return s.buildResponses(ctx, subs)
}

// GetNotifyMeSubscriptions lists the caller's subscriptions across
// innovations, grouped per innovation and sorted by innovation name.
// Accessor callers only see innovations shared with their organisation.
func (s *NotifyMeService) GetNotifyMeSubscriptions(ctx context.Context, actor Actor, withDetails bool) ([]InnovationSubscriptions, error) {
	query := s.db.WithContext(ctx).
		Preload("Innovation").
		Where("user_id = ? AND role_id = ? AND delete_at IS NULL", actor.UserID, actor.RoleID)

	if actor.RoleID == models.RoleAccessor && actor.OrganisationID != nil {
		query = query.Where("innovation_id IN (?)",
			s.db.Model(&models.InnovationShare{}).
				Select("innovation_id").
				Where("organisation_id = ?", *actor.OrganisationID))
	}

	var subs []models.NotifyMeSubscription
	if err := query.Order("create_at DESC").Find(&subs).Error; err != nil {
		return nil, err
	}

	grouped := make(map[string]*InnovationSubscriptions)
	order := make([]string, 0)
	bySubs := make(map[string][]models.NotifyMeSubscription)
	for _, sub := range subs {
		entry, ok := grouped[sub.InnovationID]
		if !ok {
			entry = &InnovationSubscriptions{
				InnovationID: sub.InnovationID,
				Name:         sub.Innovation.Name,
			}
			grouped[sub.InnovationID] = entry
			order = append(order, sub.InnovationID)
		}
		entry.Count++
		bySubs[sub.InnovationID] = append(bySubs[sub.InnovationID], sub)
	}

	result := make([]InnovationSubscriptions, 0, len(order))
	for _, innovationID := range order {
		entry := grouped[innovationID]
		if withDetails {
			responses, err := s.buildResponses(ctx, bySubs[innovationID])
			if err != nil {
				return nil, err
			}
			entry.Subscriptions = responses
		}
		result = append(result, *entry)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// buildResponses renders a batch of subscriptions, resolving every
// referenced organisation unit in one query.
func (s *NotifyMeService) buildResponses(ctx context.Context, subs []models.NotifyMeSubscription) ([]SubscriptionResponse, error) {
	configs := make([]SubscriptionConfig, len(subs))
	unitIDSet := make(map[string]bool)
	for i, sub := range subs {
		if _, ok := subscriptionBuilders[sub.EventType]; !ok {
			return nil, utils.NotImplementedError(fmt.Sprintf("no response builder for event type %s", sub.EventType))
		}

		var cfg SubscriptionConfig
		if len(sub.Config) > 0 {
			if err := json.Unmarshal(sub.Config, &cfg); err != nil {
				return nil, utils.InternalError("invalid subscription config", err)
			}
		}
		configs[i] = cfg

		if cfg.PreConditions != nil {
			switch sub.EventType {
			case models.EventTypeSupportUpdated, models.EventTypeProgressUpdateCreated:
				for _, id := range cfg.PreConditions.UnitIDs {
					unitIDSet[id] = true
				}
			}
		}
	}

	unitsByID := make(map[string]models.OrganisationUnit, len(unitIDSet))
	if len(unitIDSet) > 0 {
		unitIDs := make([]string, 0, len(unitIDSet))
		for id := range unitIDSet {
			unitIDs = append(unitIDs, id)
		}

		var units []models.OrganisationUnit
		if err := s.db.WithContext(ctx).
			Preload("Organisation").
			Where("organisation_unit_id IN ?", unitIDs).
			Find(&units).Error; err != nil {
			return nil, err
		}
		for _, unit := range units {
			unitsByID[unit.OrganisationUnitID] = unit
		}
	}

	scheduleDates, err := s.scheduleDates(ctx, subs)
	if err != nil {
		return nil, err
	}

	responses := make([]SubscriptionResponse, 0, len(subs))
	for i, sub := range subs {
		build := subscriptionBuilders[sub.EventType]
		resp := build(sub, configs[i], unitsByID)
		if date, ok := scheduleDates[sub.SubscriptionID]; ok {
			resp.ScheduledDate = &date
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *NotifyMeService) scheduleDates(ctx context.Context, subs []models.NotifyMeSubscription) (map[string]time.Time, error) {
	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.SubscriptionID)
	}
	dates := make(map[string]time.Time, len(ids))
	if len(ids) == 0 {
		return dates, nil
	}

	var schedules []models.NotificationSchedule
	if err := s.db.WithContext(ctx).
		Where("subscription_id IN ?", ids).
		Find(&schedules).Error; err != nil {
		return nil, err
	}
	for _, schedule := range schedules {
		dates[schedule.SubscriptionID] = schedule.SendDate
	}
	return dates, nil
}

func validateSchedule(cfg SubscriptionConfig) error {
	if cfg.SubscriptionType != models.SubscriptionTypeScheduled {
		return nil
	}
	if cfg.Date == nil {
		return utils.BadRequestError("scheduled subscriptions require a date")
	}
	if cfg.Date.Before(time.Now()) {
		return utils.BadRequestError("cannot schedule a notification in the past")
	}
	return nil
}
