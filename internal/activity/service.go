package activity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/core/common/validation"
	activityDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/activity"
	"github.com/tarefa360/tarefa360/internal/core/events"
	"github.com/tarefa360/tarefa360/internal/notify"
	"github.com/tarefa360/tarefa360/internal/progress"
)

type RepositoryAPI interface {
	Create(ctx context.Context, activity *activityDatamodel.Activity) error
	GetByID(ctx context.Context, id string) (*activityDatamodel.Activity, error)
	ListByUser(ctx context.Context, userID string) ([]*activityDatamodel.Activity, error)
	Update(ctx context.Context, activity *activityDatamodel.Activity) error
	Delete(ctx context.Context, id string) error
}

// OwnerDirectory tells whether a user may own activities.
type OwnerDirectory interface {
	CanOwnActivities(ctx context.Context, userID string) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     RepositoryAPI
	owners   OwnerDirectory
	notifier notify.Notifier
	bus      EventPublisher
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, owners OwnerDirectory, notifier notify.Notifier, bus EventPublisher, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		repo:     repo,
		owners:   owners,
		notifier: notifier,
		bus:      bus,
		logger:   logger,
	}
}

func (s *Service) CreateActivity(ctx context.Context, ownerID string, req CreateActivityRequest) (*Activity, error) {
	act, err := New(ownerID, req)
	if err != nil {
		s.logger.Warn("activity validation failed", "error", err, "user_id", ownerID)
		return nil, err
	}

	if s.owners != nil {
		allowed, err := s.owners.CanOwnActivities(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, internal.NewValidationError("this account cannot register activities", internal.ErrCodeInvalidRole)
		}
	}

	act.ID = uuid.New().String()
	if err := s.repo.Create(ctx, ToDataModel(act)); err != nil {
		s.logger.Error("failed to create activity", "error", err, "user_id", ownerID)
		return nil, internal.NewConnectionError(err)
	}

	s.logger.Info("activity created", "activity_id", act.ID, "user_id", ownerID)
	s.notifier.Notify(ctx, notify.Notification{Severity: notify.SeveritySuccess, Title: "Atividade criada", Message: act.Title})
	return act, nil
}

// GetActivity loads any activity; callers decide read-only from ownership.
func (s *Service) GetActivity(ctx context.Context, id string) (*Activity, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get activity", "error", err, "activity_id", id)
		return nil, internal.NewConnectionError(err)
	}
	if row == nil {
		return nil, internal.ErrActivityNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) ListActivities(ctx context.Context, userID string) ([]*Activity, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list activities", "error", err, "user_id", userID)
		return nil, internal.NewConnectionError(err)
	}
	return FromDataModelSlice(rows), nil
}

// owned loads an activity for mutation by actorID.
func (s *Service) owned(ctx context.Context, actorID, id string) (*Activity, error) {
	act, err := s.GetActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	if !act.IsOwnedBy(actorID) {
		s.logger.Warn("mutation attempted in read-only mode", "activity_id", id, "actor_id", actorID, "owner_id", act.UserID)
		return nil, internal.ErrReadOnly
	}
	return act, nil
}

func (s *Service) UpdateActivity(ctx context.Context, actorID, id string, req UpdateActivityRequest) (*Activity, error) {
	act, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	next, err := act.ApplyEdit(req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, ToDataModel(next)); err != nil {
		s.logger.Error("failed to update activity", "error", err, "activity_id", id)
		return nil, internal.NewConnectionError(err)
	}

	s.logger.Info("activity updated", "activity_id", id)
	return next, nil
}

func (s *Service) DeleteActivity(ctx context.Context, actorID, id string) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete activity", "error", err, "activity_id", id)
		return internal.NewConnectionError(err)
	}
	s.logger.Info("activity deleted", "activity_id", id)
	return nil
}

func (s *Service) AddProgress(ctx context.Context, actorID, id string, req AddProgressRequest) (*Activity, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	act, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	next, err := act.WithProgress(req.Entry())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, ToDataModel(next)); err != nil {
		s.logger.Error("failed to store progress entry", "error", err, "activity_id", id)
		return nil, internal.NewConnectionError(err)
	}

	latest := next.Latest()
	s.logger.Info("progress entry added", "activity_id", id, "year", req.Year, "month", req.Month)
	if s.bus != nil {
		stored := next.ProgressHistory[len(next.ProgressHistory)-1]
		if err := s.bus.Publish(ctx, events.NewProgressLoggedEvent(id, next.UserID, stored.Year, stored.Month, stored.Percentage)); err != nil {
			s.logger.Warn("failed to publish progress event", "error", err)
		}
	}
	s.notifier.Notify(ctx, notify.Notification{
		Severity: notify.SeveritySuccess,
		Title:    "Progresso registrado",
		Message:  fmt.Sprintf("%02d/%d: %d%%", latest.Month, latest.Year, latest.Percentage),
	})
	return next, nil
}

func (s *Service) RemoveProgress(ctx context.Context, actorID, id string, year, month int) (*Activity, error) {
	act, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	next := act.WithoutProgress(year, month)
	if len(next.ProgressHistory) == len(act.ProgressHistory) {
		return act, nil
	}

	if err := s.repo.Update(ctx, ToDataModel(next)); err != nil {
		s.logger.Error("failed to remove progress entry", "error", err, "activity_id", id)
		return nil, internal.NewConnectionError(err)
	}

	s.logger.Info("progress entry removed", "activity_id", id, "year", year, "month", month)
	return next, nil
}

// Ledger returns the progress history newest first. Reading is allowed in read-only mode.
func (s *Service) Ledger(ctx context.Context, viewerID, id string) (LedgerResponse, error) {
	act, err := s.GetActivity(ctx, id)
	if err != nil {
		return LedgerResponse{}, err
	}
	sorted := progress.SortedDescending(act.ProgressHistory)
	return LedgerResponse{
		ActivityID: act.ID,
		Entries:    sorted,
		Latest:     progress.Latest(sorted),
		ReadOnly:   !act.IsOwnedBy(viewerID),
	}, nil
}
