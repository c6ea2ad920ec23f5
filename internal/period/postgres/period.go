package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	periodDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/period"
	"github.com/tarefa360/tarefa360/internal/period"
)

type PeriodRepository struct {
	db *gorm.DB
}

func NewPeriodRepository(db *gorm.DB) period.RepositoryAPI {
	return &PeriodRepository{db: db}
}

func (r *PeriodRepository) GetAll(ctx context.Context) ([]*periodDatamodel.EvaluationPeriod, error) {
	var periods []*periodDatamodel.EvaluationPeriod
	err := r.db.WithContext(ctx).Order("start_date DESC").Find(&periods).Error
	return periods, err
}

func (r *PeriodRepository) first(ctx context.Context, query string, arg interface{}) (*periodDatamodel.EvaluationPeriod, error) {
	var p periodDatamodel.EvaluationPeriod
	err := r.db.WithContext(ctx).Where(query, arg).Order("start_date DESC").First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PeriodRepository) GetByID(ctx context.Context, id string) (*periodDatamodel.EvaluationPeriod, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PeriodRepository) GetActive(ctx context.Context) (*periodDatamodel.EvaluationPeriod, error) {
	return r.first(ctx, "status = ?", string(period.StatusActive))
}

func (r *PeriodRepository) Create(ctx context.Context, p *periodDatamodel.EvaluationPeriod) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func deactivateAll(tx *gorm.DB) error {
	return tx.Model(&periodDatamodel.EvaluationPeriod{}).
		Where("status = ?", string(period.StatusActive)).
		Updates(map[string]interface{}{
			"status":     string(period.StatusInactive),
			"updated_at": time.Now(),
		}).Error
}

func (r *PeriodRepository) CreateActive(ctx context.Context, p *periodDatamodel.EvaluationPeriod) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deactivateAll(tx); err != nil {
			return err
		}
		return tx.Create(p).Error
	})
}

func (r *PeriodRepository) Update(ctx context.Context, p *periodDatamodel.EvaluationPeriod) error {
	return r.db.WithContext(ctx).
		Model(&periodDatamodel.EvaluationPeriod{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"name":       p.Name,
			"start_date": p.StartDate,
			"end_date":   p.EndDate,
			"status":     p.Status,
			"updated_at": time.Now(),
		}).Error
}

func (r *PeriodRepository) Activate(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deactivateAll(tx); err != nil {
			return err
		}
		return tx.Model(&periodDatamodel.EvaluationPeriod{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     string(period.StatusActive),
				"updated_at": time.Now(),
			}).Error
	})
}

func (r *PeriodRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&periodDatamodel.EvaluationPeriod{}).Error
}
