package user

import "time"

type User struct {
	ID                  string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	CPF                 string    `gorm:"column:cpf;type:varchar(11);index;not null"`
	Name                string    `gorm:"column:name;not null"`
	NomeDeGuerra        string    `gorm:"column:nome_de_guerra;not null"`
	PostoGrad           string    `gorm:"column:posto_grad"`
	Email               string    `gorm:"column:email"`
	Sector              string    `gorm:"column:sector"`
	JobTitle            string    `gorm:"column:job_title"`
	Role                string    `gorm:"column:role;type:varchar(16);index;not null"`
	Status              string    `gorm:"column:status;type:varchar(16);not null"`
	PasswordHash        string    `gorm:"column:password_hash;not null"`
	ForcePasswordChange bool      `gorm:"column:force_password_change;not null"`
	AvatarURL           string    `gorm:"column:avatar_url"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
