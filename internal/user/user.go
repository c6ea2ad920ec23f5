package user

import (
	"time"

	userDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/user"
	"github.com/tarefa360/tarefa360/internal/identity"
)

type User struct {
	ID                  string          `json:"id"`
	CPF                 string          `json:"cpf"`
	Name                string          `json:"name"`
	NomeDeGuerra        string          `json:"nome_de_guerra"`
	PostoGrad           string          `json:"posto_grad"`
	Email               string          `json:"email"`
	Sector              string          `json:"sector"`
	JobTitle            string          `json:"job_title"`
	Role                Role            `json:"role"`
	Status              identity.Status `json:"status"`
	PasswordHash        string          `json:"-"`
	ForcePasswordChange bool            `json:"force_password_change"`
	AvatarURL           string          `json:"avatar_url"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u.Status == identity.StatusActive
}

func (u *User) Credential() identity.Credential {
	return identity.Credential{ID: u.ID, CPF: u.CPF}
}

func (u *User) clone() *User {
	cp := *u
	return &cp
}

func Credentials(users []*User) []identity.Credential {
	out := make([]identity.Credential, 0, len(users))
	for _, u := range users {
		out = append(out, u.Credential())
	}
	return out
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:                  u.ID,
		CPF:                 u.CPF,
		Name:                u.Name,
		NomeDeGuerra:        u.NomeDeGuerra,
		PostoGrad:           u.PostoGrad,
		Email:               u.Email,
		Sector:              u.Sector,
		JobTitle:            u.JobTitle,
		Role:                string(u.Role),
		Status:              string(u.Status),
		PasswordHash:        u.PasswordHash,
		ForcePasswordChange: u.ForcePasswordChange,
		AvatarURL:           u.AvatarURL,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:                  u.ID,
		CPF:                 u.CPF,
		Name:                u.Name,
		NomeDeGuerra:        u.NomeDeGuerra,
		PostoGrad:           u.PostoGrad,
		Email:               u.Email,
		Sector:              u.Sector,
		JobTitle:            u.JobTitle,
		Role:                Role(u.Role),
		Status:              identity.Status(u.Status),
		PasswordHash:        u.PasswordHash,
		ForcePasswordChange: u.ForcePasswordChange,
		AvatarURL:           u.AvatarURL,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*userDatamodel.User) []*User {
	out := make([]*User, len(rows))
	for i, row := range rows {
		out[i] = FromDataModel(row)
	}
	return out
}
