package dashboard

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type RepositoryAPI interface {
	CountUsers(ctx context.Context) ([]RoleCount, error)
	ActivePeriod(ctx context.Context) (*ActivePeriod, error)
	Appraisees(ctx context.Context, appraiserID string) ([]AppraiseeSummary, error)
	ActivitiesOf(ctx context.Context, userIDs ...string) ([]ActivityRow, error)
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CountUsers(ctx context.Context) ([]RoleCount, error) {
	var counts []RoleCount
	query := `SELECT role, status, COUNT(*) AS total FROM users GROUP BY role, status ORDER BY role, status`
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *Repository) ActivePeriod(ctx context.Context) (*ActivePeriod, error) {
	var p ActivePeriod
	query := r.db.Rebind(`SELECT id, name, start_date, end_date FROM evaluation_periods WHERE status = ? ORDER BY start_date DESC LIMIT 1`)
	if err := r.db.GetContext(ctx, &p, query, "Active"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Appraisees(ctx context.Context, appraiserID string) ([]AppraiseeSummary, error) {
	rows := []struct {
		ID           string `db:"id"`
		Name         string `db:"name"`
		NomeDeGuerra string `db:"nome_de_guerra"`
		PostoGrad    string `db:"posto_grad"`
	}{}
	query := r.db.Rebind(`
		SELECT u.id, u.name, u.nome_de_guerra, u.posto_grad
		FROM associations a
		JOIN users u ON u.id = a.appraisee_id
		WHERE a.appraiser_id = ?
		ORDER BY u.name`)
	if err := r.db.SelectContext(ctx, &rows, query, appraiserID); err != nil {
		return nil, err
	}

	out := make([]AppraiseeSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, AppraiseeSummary{ID: row.ID, Name: row.Name, NomeDeGuerra: row.NomeDeGuerra, PostoGrad: row.PostoGrad})
	}
	return out, nil
}

func (r *Repository) ActivitiesOf(ctx context.Context, userIDs ...string) ([]ActivityRow, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, user_id, title, progress_history FROM activities WHERE user_id IN (?) ORDER BY created_at`, userIDs)
	if err != nil {
		return nil, err
	}

	var rows []ActivityRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}
