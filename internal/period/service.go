package period

import (
	"context"
	"log/slog"

	"github.com/tarefa360/tarefa360/internal"
	periodDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/period"
	"github.com/tarefa360/tarefa360/internal/core/events"
	"github.com/tarefa360/tarefa360/internal/core/mirror"
	"github.com/tarefa360/tarefa360/internal/notify"
)

const collection = "evaluation_periods"

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*periodDatamodel.EvaluationPeriod, error)
	GetByID(ctx context.Context, id string) (*periodDatamodel.EvaluationPeriod, error)
	GetActive(ctx context.Context) (*periodDatamodel.EvaluationPeriod, error)
	Create(ctx context.Context, p *periodDatamodel.EvaluationPeriod) error
	// CreateActive deactivates every period and stores p as active, in one transaction.
	CreateActive(ctx context.Context, p *periodDatamodel.EvaluationPeriod) error
	Update(ctx context.Context, p *periodDatamodel.EvaluationPeriod) error
	// Activate deactivates every other period and activates id, in one transaction.
	Activate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     RepositoryAPI
	periods  *mirror.Mirror[*Period]
	notifier notify.Notifier
	bus      EventPublisher
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, notifier notify.Notifier, bus EventPublisher, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		repo:     repo,
		periods:  mirror.New(func(p *Period) string { return p.ID }),
		notifier: notifier,
		bus:      bus,
		logger:   logger,
	}
}

func (s *Service) GetAllPeriods(ctx context.Context) PeriodsResponse {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Warn("failed to get periods, serving last known", "error", err, "loaded", s.periods.Loaded())
		if !s.periods.Loaded() {
			return PeriodsResponse{Periods: []*Period{}, Stale: true}
		}
		return PeriodsResponse{Periods: s.periods.View(), Stale: true}
	}
	s.periods.Replace(FromDataModelSlice(rows))

	periods := s.periods.View()
	s.logger.Info("retrieved periods", "count", len(periods))
	return PeriodsResponse{Periods: periods}
}

func (s *Service) GetActivePeriod(ctx context.Context) (*Period, error) {
	row, err := s.repo.GetActive(ctx)
	if err != nil {
		for _, p := range s.periods.View() {
			if p.IsActive() {
				return p, nil
			}
		}
		return nil, internal.NewConnectionError(err)
	}
	if row == nil {
		return nil, internal.ErrPeriodNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) CreatePeriod(ctx context.Context, req PeriodRequest) (*Period, error) {
	p, err := NewPeriod(req)
	if err != nil {
		return nil, err
	}

	if req.Activate {
		p.Activate()
		err = s.repo.CreateActive(ctx, ToDataModel(p))
	} else {
		err = s.repo.Create(ctx, ToDataModel(p))
	}
	if err != nil {
		s.logger.Error("failed to create period", "error", err)
		return nil, internal.NewConnectionError(err)
	}

	written := []*Period{p}
	if p.IsActive() {
		written = append(written, s.demoted(p.ID)...)
	}
	s.settle(ctx, written)

	s.logger.Info("period created", "period_id", p.ID, "active", p.IsActive())
	if p.IsActive() {
		s.announce(ctx, p)
	}
	return p, nil
}

// demoted returns inactive copies of the mirrored active periods other than keepID.
func (s *Service) demoted(keepID string) []*Period {
	var out []*Period
	for _, p := range s.periods.View() {
		if p.ID == keepID || !p.IsActive() {
			continue
		}
		cp := *p
		cp.Deactivate()
		out = append(out, &cp)
	}
	return out
}

// settle brings the mirror in line with a write the store accepted. It reloads the collection;
// when that read fails, the written periods are confirmed over the last load instead.
func (s *Service) settle(ctx context.Context, written []*Period) {
	rows, err := s.repo.GetAll(ctx)
	if err == nil {
		s.periods.Replace(FromDataModelSlice(rows))
		return
	}
	s.logger.Warn("failed to reload periods after write", "error", err)
	for _, p := range written {
		s.resolve(ctx, s.periods.Begin(p), nil)
	}
}

func (s *Service) UpdatePeriod(ctx context.Context, id string, req PeriodRequest) (*Period, error) {
	existing, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := existing.ApplyEdit(req)
	if err != nil {
		return nil, err
	}

	cmd := s.periods.Begin(next)
	if err := s.repo.Update(ctx, ToDataModel(next)); err != nil {
		s.resolve(ctx, cmd, err)
		return nil, internal.NewConnectionError(err)
	}
	s.resolve(ctx, cmd, nil)

	s.logger.Info("period updated", "period_id", id)
	return next, nil
}

// ActivatePeriod makes id the only active period.
func (s *Service) ActivatePeriod(ctx context.Context, id string) (*Period, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Activate(ctx, id); err != nil {
		s.logger.Error("failed to activate period", "error", err, "period_id", id)
		return nil, internal.NewConnectionError(err)
	}

	next := *p
	next.Activate()
	s.settle(ctx, append([]*Period{&next}, s.demoted(id)...))

	s.logger.Info("period activated", "period_id", id)
	s.announce(ctx, &next)
	return &next, nil
}

func (s *Service) DeletePeriod(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	cmd := s.periods.BeginDelete(id)
	if err := s.repo.Delete(ctx, id); err != nil {
		s.resolve(ctx, cmd, err)
		return internal.NewConnectionError(err)
	}
	s.resolve(ctx, cmd, nil)

	s.logger.Info("period deleted", "period_id", id)
	return nil
}

func (s *Service) get(ctx context.Context, id string) (*Period, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewConnectionError(err)
	}
	if row == nil {
		return nil, internal.ErrPeriodNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) announce(ctx context.Context, p *Period) {
	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewPeriodActivatedEvent(p.ID, p.Name))
	}
	s.notifier.Notify(ctx, notify.Notification{Severity: notify.SeverityInfo, Title: "Período ativo", Message: p.Name})
}

func (s *Service) resolve(ctx context.Context, cmd *mirror.Command[*Period], err error) {
	var outcome mirror.Outcome
	reason := ""
	if err != nil {
		outcome = cmd.Fail(err)
		reason = err.Error()
	} else {
		outcome = cmd.Confirm()
	}
	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewCommandCompletedEvent(collection, cmd.Key(), outcome.String(), reason))
	}
}
