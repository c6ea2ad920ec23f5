// Package dashboard is the read model behind the role dashboards. It queries the store directly
// through sqlx and never writes.
package dashboard

import (
	"encoding/json"
	"time"

	"github.com/tarefa360/tarefa360/internal/progress"
)

type RoleCount struct {
	Role   string `db:"role" json:"role"`
	Status string `db:"status" json:"status"`
	Total  int    `db:"total" json:"total"`
}

type ActivePeriod struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
}

type AdminDashboard struct {
	Counts       []RoleCount   `json:"counts"`
	TotalUsers   int           `json:"total_users"`
	ActivePeriod *ActivePeriod `json:"active_period"`
}

type ActivitySummary struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	LatestProgress *progress.Entry `json:"latest_progress"`
}

type AppraiseeSummary struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	NomeDeGuerra   string          `json:"nome_de_guerra"`
	PostoGrad      string          `json:"posto_grad"`
	ActivityCount  int             `json:"activity_count"`
	LatestProgress *progress.Entry `json:"latest_progress"`
}

type AppraiserDashboard struct {
	AppraiserID string             `json:"appraiser_id"`
	Appraisees  []AppraiseeSummary `json:"appraisees"`
}

type AppraiseeDashboard struct {
	UserID     string            `json:"user_id"`
	Activities []ActivitySummary `json:"activities"`
}

// ActivityRow is an activity as the dashboards read it.
type ActivityRow struct {
	ID              string `db:"id"`
	UserID          string `db:"user_id"`
	Title           string `db:"title"`
	ProgressHistory []byte `db:"progress_history"`
}

func (r ActivityRow) history() []progress.Entry {
	if len(r.ProgressHistory) == 0 {
		return nil
	}
	var entries []progress.Entry
	if err := json.Unmarshal(r.ProgressHistory, &entries); err != nil {
		return nil
	}
	return entries
}

func (r ActivityRow) summary() ActivitySummary {
	return ActivitySummary{
		ID:             r.ID,
		Title:          r.Title,
		LatestProgress: progress.Latest(r.history()),
	}
}

// latestOf picks the most recent entry among several activities.
func latestOf(entries []*progress.Entry) *progress.Entry {
	var latest *progress.Entry
	for _, e := range entries {
		if e == nil {
			continue
		}
		if latest == nil || latest.Before(*e) {
			latest = e
		}
	}
	return latest
}
