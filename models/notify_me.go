package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotifyMeEventType string

const (
	EventTypeSupportUpdated          NotifyMeEventType = "SUPPORT_UPDATED"
	EventTypeProgressUpdateCreated   NotifyMeEventType = "PROGRESS_UPDATE_CREATED"
	EventTypeInnovationRecordUpdated NotifyMeEventType = "INNOVATION_RECORD_UPDATED"
	EventTypeDocumentUploaded        NotifyMeEventType = "DOCUMENT_UPLOADED"
	EventTypeReminder                NotifyMeEventType = "REMINDER"
)

type NotifyMeSubscriptionType string

const (
	SubscriptionTypeInstantly NotifyMeSubscriptionType = "INSTANTLY"
	SubscriptionTypeScheduled NotifyMeSubscriptionType = "SCHEDULED"
	SubscriptionTypeOnce      NotifyMeSubscriptionType = "ONCE"
)

// NotifyMeSubscription is a per-user-role, per-innovation subscription to a
// typed event. Config is a JSON payload whose shape is tagged by EventType;
// the event type itself is immutable after creation.
type NotifyMeSubscription struct {
	SubscriptionID string            `gorm:"primaryKey;column:subscription_id;type:char(36)" json:"subscription_id"`
	UserID         int               `gorm:"column:user_id;index;not null" json:"user_id"`
	RoleID         int               `gorm:"column:role_id;not null" json:"role_id"`
	InnovationID   string            `gorm:"column:innovation_id;type:char(36);index;not null" json:"innovation_id"`
	EventType      NotifyMeEventType `gorm:"column:event_type;type:varchar(50);not null" json:"event_type"`
	Config         datatypes.JSON    `gorm:"column:config" json:"config"`
	CreateAt       *time.Time        `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time        `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time        `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Innovation Innovation `gorm:"foreignKey:InnovationID;references:InnovationID" json:"innovation,omitempty"`
}

// NotificationSchedule is owned by a SCHEDULED subscription and is created,
// updated and deleted in lockstep with it.
type NotificationSchedule struct {
	SubscriptionID string    `gorm:"primaryKey;column:subscription_id;type:char(36)" json:"subscription_id"`
	SendDate       time.Time `gorm:"column:send_date;not null" json:"send_date"`
}

func (NotifyMeSubscription) TableName() string { return "notify_me_subscriptions" }
func (NotificationSchedule) TableName() string { return "notification_schedules" }
