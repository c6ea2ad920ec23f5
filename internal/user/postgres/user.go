package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	associationDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/association"
	userDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/user"
	"github.com/tarefa360/tarefa360/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.WithContext(ctx).Order("name ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*userDatamodel.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) GetByCPF(ctx context.Context, cpf string) (*userDatamodel.User, error) {
	return r.first(ctx, "cpf = ?", cpf)
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User, assoc *associationDatamodel.Association) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		if assoc != nil {
			return tx.Create(assoc).Error
		}
		return nil
	})
}

// Update rewrites the profile columns and applies link in the same transaction. Credentials are
// changed only through UpdatePassword.
func (r *UserRepository) Update(ctx context.Context, u *userDatamodel.User, link *user.AppraiserLink) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateProfile(tx, u); err != nil {
			return err
		}
		if link == nil {
			return nil
		}
		if err := tx.Where("appraisee_id = ?", u.ID).Delete(&associationDatamodel.Association{}).Error; err != nil {
			return err
		}
		if link.Appraiser != nil {
			return tx.Create(link.Appraiser).Error
		}
		return nil
	})
}

func updateProfile(tx *gorm.DB, u *userDatamodel.User) error {
	return tx.
		Model(&userDatamodel.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"cpf":            u.CPF,
			"name":           u.Name,
			"nome_de_guerra": u.NomeDeGuerra,
			"posto_grad":     u.PostoGrad,
			"email":          u.Email,
			"sector":         u.Sector,
			"job_title":      u.JobTitle,
			"role":           u.Role,
			"status":         u.Status,
			"avatar_url":     u.AvatarURL,
			"updated_at":     time.Now(),
		}).Error
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string, forceChange bool) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash":         hash,
			"force_password_change": forceChange,
			"updated_at":            time.Now(),
		}).Error
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id, url string) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"avatar_url": url,
			"updated_at": time.Now(),
		}).Error
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("appraisee_id = ? OR appraiser_id = ?", id, id).
			Delete(&associationDatamodel.Association{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&userDatamodel.User{}).Error
	})
}
