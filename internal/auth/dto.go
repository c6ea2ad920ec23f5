package auth

import (
	"github.com/tarefa360/tarefa360/internal/core/common/validation"
)

type LoginDTO struct {
	CPF      string `json:"cpf"`
	Password string `json:"password"`
}

func (dto LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("cpf", dto.CPF).Required()
	v.Field("password", dto.Password).Required()
	if err := v.ValidateFirst(); err != nil {
		return err
	}
	return nil
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type ChangePasswordResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}
