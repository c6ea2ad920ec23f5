package identity

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/tarefa360/tarefa360/internal"
)

const MinPasswordLength = 6

// DerivePassword builds the initial password: the first four CPF digits followed by the nome de guerra.
func DerivePassword(cpf, nomeDeGuerra string) string {
	prefix := cpf
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return prefix + nomeDeGuerra
}

// PasswordChange is a self-service password change request.
type PasswordChange struct {
	CurrentPassword     string
	NewPassword         string
	ConfirmPassword     string
	ForcePasswordChange bool
}

// ValidatePasswordChange checks req. matchesCurrent is consulted only when the account is not
// under a forced change.
func ValidatePasswordChange(req PasswordChange, matchesCurrent func(string) bool) error {
	if req.NewPassword == "" {
		return internal.NewValidationFieldError("new_password", "new password is required", internal.ErrCodeRequiredField)
	}
	if req.NewPassword != req.ConfirmPassword {
		return internal.NewValidationFieldError("confirm_password", "password confirmation does not match", internal.ErrCodePasswordMismatch)
	}
	if len(req.NewPassword) < MinPasswordLength {
		return internal.NewValidationFieldError("new_password", "new password must be at least 6 characters", internal.ErrCodeInvalidPassword)
	}
	if req.ForcePasswordChange {
		return nil
	}
	if matchesCurrent == nil || !matchesCurrent(req.CurrentPassword) {
		return internal.NewValidationFieldError("current_password", "current password is incorrect", internal.ErrCodeInvalidPassword)
	}
	return nil
}

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword reports whether password matches hash. Malformed hashes never match.
func ComparePassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
