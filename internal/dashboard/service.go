package dashboard

import (
	"context"
	"log/slog"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/progress"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Admin(ctx context.Context) (*AdminDashboard, error) {
	counts, err := s.repo.CountUsers(ctx)
	if err != nil {
		s.logger.Error("failed to count users", "error", err)
		return nil, internal.NewConnectionError(err)
	}

	period, err := s.repo.ActivePeriod(ctx)
	if err != nil {
		s.logger.Error("failed to load active period", "error", err)
		return nil, internal.NewConnectionError(err)
	}

	d := &AdminDashboard{Counts: counts, ActivePeriod: period}
	if d.Counts == nil {
		d.Counts = []RoleCount{}
	}
	for _, c := range counts {
		d.TotalUsers += c.Total
	}
	return d, nil
}

func (s *Service) Appraiser(ctx context.Context, appraiserID string) (*AppraiserDashboard, error) {
	appraisees, err := s.repo.Appraisees(ctx, appraiserID)
	if err != nil {
		s.logger.Error("failed to load appraisees", "error", err, "appraiser_id", appraiserID)
		return nil, internal.NewConnectionError(err)
	}

	ids := make([]string, 0, len(appraisees))
	index := make(map[string]int, len(appraisees))
	for i, a := range appraisees {
		ids = append(ids, a.ID)
		index[a.ID] = i
	}

	rows, err := s.repo.ActivitiesOf(ctx, ids...)
	if err != nil {
		s.logger.Error("failed to load activities", "error", err, "appraiser_id", appraiserID)
		return nil, internal.NewConnectionError(err)
	}

	latest := make(map[string][]*progress.Entry, len(appraisees))
	for _, row := range rows {
		i, ok := index[row.UserID]
		if !ok {
			continue
		}
		appraisees[i].ActivityCount++
		latest[row.UserID] = append(latest[row.UserID], row.summary().LatestProgress)
	}
	for i := range appraisees {
		appraisees[i].LatestProgress = latestOf(latest[appraisees[i].ID])
	}

	return &AppraiserDashboard{AppraiserID: appraiserID, Appraisees: appraisees}, nil
}

func (s *Service) Appraisee(ctx context.Context, userID string) (*AppraiseeDashboard, error) {
	rows, err := s.repo.ActivitiesOf(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load activities", "error", err, "user_id", userID)
		return nil, internal.NewConnectionError(err)
	}

	activities := make([]ActivitySummary, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, row.summary())
	}
	return &AppraiseeDashboard{UserID: userID, Activities: activities}, nil
}
