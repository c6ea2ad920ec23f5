package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeNotification     = "notification.raised"
	EventTypeAccountCreated   = "account.created"
	EventTypeProgressLogged   = "activity.progress_logged"
	EventTypePeriodActivated  = "period.activated"
	EventTypeCommandCompleted = "command.completed"
)

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type NotificationEvent struct {
	BaseEvent
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}

func NewNotificationEvent(severity, title, message string) *NotificationEvent {
	return &NotificationEvent{
		BaseEvent: newBase(EventTypeNotification, map[string]interface{}{
			"severity": severity,
			"title":    title,
			"message":  message,
		}),
		Severity: severity,
		Title:    title,
		Message:  message,
	}
}

type AccountCreatedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

func NewAccountCreatedEvent(userID, role, status string) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseEvent: newBase(EventTypeAccountCreated, map[string]interface{}{
			"user_id": userID,
			"role":    role,
			"status":  status,
		}),
		UserID: userID,
		Role:   role,
		Status: status,
	}
}

type ProgressLoggedEvent struct {
	BaseEvent
	ActivityID string `json:"activity_id"`
	UserID     string `json:"user_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Percentage int    `json:"percentage"`
}

func NewProgressLoggedEvent(activityID, userID string, year, month, percentage int) *ProgressLoggedEvent {
	return &ProgressLoggedEvent{
		BaseEvent: newBase(EventTypeProgressLogged, map[string]interface{}{
			"activity_id": activityID,
			"user_id":     userID,
			"year":        year,
			"month":       month,
			"percentage":  percentage,
		}),
		ActivityID: activityID,
		UserID:     userID,
		Year:       year,
		Month:      month,
		Percentage: percentage,
	}
}

type PeriodActivatedEvent struct {
	BaseEvent
	PeriodID string `json:"period_id"`
	Name     string `json:"name"`
}

func NewPeriodActivatedEvent(periodID, name string) *PeriodActivatedEvent {
	return &PeriodActivatedEvent{
		BaseEvent: newBase(EventTypePeriodActivated, map[string]interface{}{
			"period_id": periodID,
			"name":      name,
		}),
		PeriodID: periodID,
		Name:     name,
	}
}

type CommandCompletedEvent struct {
	BaseEvent
	Collection string `json:"collection"`
	Key        string `json:"key"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
}

func NewCommandCompletedEvent(collection, key, outcome, reason string) *CommandCompletedEvent {
	return &CommandCompletedEvent{
		BaseEvent: newBase(EventTypeCommandCompleted, map[string]interface{}{
			"collection": collection,
			"key":        key,
			"outcome":    outcome,
			"reason":     reason,
		}),
		Collection: collection,
		Key:        key,
		Outcome:    outcome,
		Reason:     reason,
	}
}
