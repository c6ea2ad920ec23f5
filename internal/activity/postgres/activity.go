package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tarefa360/tarefa360/internal/activity"
	activityDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/activity"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) activity.RepositoryAPI {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, act *activityDatamodel.Activity) error {
	return r.db.WithContext(ctx).Create(act).Error
}

func (r *ActivityRepository) GetByID(ctx context.Context, id string) (*activityDatamodel.Activity, error) {
	var act activityDatamodel.Activity
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&act).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &act, nil
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID string) ([]*activityDatamodel.Activity, error) {
	var acts []*activityDatamodel.Activity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&acts).Error
	return acts, err
}

// Update writes the editable columns. start_date and user_id are never rewritten.
func (r *ActivityRepository) Update(ctx context.Context, act *activityDatamodel.Activity) error {
	return r.db.WithContext(ctx).
		Model(&activityDatamodel.Activity{}).
		Where("id = ?", act.ID).
		Updates(map[string]interface{}{
			"title":            act.Title,
			"description":      act.Description,
			"progress_history": act.ProgressHistory,
			"updated_at":       time.Now(),
		}).Error
}

func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&activityDatamodel.Activity{}).Error
}
