package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/tarefa360/tarefa360/internal/association"
	associationDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/association"
)

type AssociationRepository struct {
	db *gorm.DB
}

func NewAssociationRepository(db *gorm.DB) association.RepositoryAPI {
	return &AssociationRepository{db: db}
}

func (r *AssociationRepository) List(ctx context.Context) ([]*associationDatamodel.Association, error) {
	var rows []*associationDatamodel.Association
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *AssociationRepository) Create(ctx context.Context, a *associationDatamodel.Association) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AssociationRepository) Reassign(ctx context.Context, appraiseeID string, a *associationDatamodel.Association) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("appraisee_id = ?", appraiseeID).Delete(&associationDatamodel.Association{}).Error; err != nil {
			return err
		}
		return tx.Create(a).Error
	})
}

func (r *AssociationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&associationDatamodel.Association{}).Error
}
