// Package notify delivers transient user-facing notifications. Delivery is fire-and-forget.
package notify

import (
	"context"
	"log/slog"

	"github.com/tarefa360/tarefa360/internal/core/events"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarn    Severity = "warn"
	SeverityError   Severity = "error"
)

type Notification struct {
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Publisher is the part of the event bus a notifier needs.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// BusNotifier raises notifications as events on the bus.
type BusNotifier struct {
	bus    Publisher
	logger *slog.Logger
}

func NewBusNotifier(bus Publisher, logger *slog.Logger) *BusNotifier {
	return &BusNotifier{bus: bus, logger: logger}
}

func (n *BusNotifier) Notify(ctx context.Context, note Notification) {
	event := events.NewNotificationEvent(string(note.Severity), note.Title, note.Message)
	if err := n.bus.Publish(ctx, event); err != nil {
		n.logger.Warn("failed to publish notification", "title", note.Title, "error", err)
	}
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) {}

// LogSubscriber records notifications raised on the bus.
func LogSubscriber(logger *slog.Logger) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		n, ok := event.(*events.NotificationEvent)
		if !ok {
			return nil
		}
		level := slog.LevelInfo
		switch Severity(n.Severity) {
		case SeverityWarn:
			level = slog.LevelWarn
		case SeverityError:
			level = slog.LevelError
		}
		logger.Log(ctx, level, "notification", "severity", n.Severity, "title", n.Title, "message", n.Message)
		return nil
	}
}

// AuditSubscriber records every domain event at debug level.
func AuditSubscriber(logger *slog.Logger) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		logger.Debug("domain event",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}
}
