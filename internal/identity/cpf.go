// Package identity holds the credential rules shared by every account flow: CPF handling,
// default credentials, status derivation and password changes. Everything here is a pure
// function over the state passed in.
package identity

import (
	"strings"

	"github.com/tarefa360/tarefa360/internal"
)

// SentinelCPF is assigned to accounts created without a CPF. It is never unique.
const SentinelCPF = "99999999999"

const cpfLength = 11

// Credential is the slice of a user that the CPF rules need.
type Credential struct {
	ID  string
	CPF string
}

// NormalizeCPF strips every non-digit character.
func NormalizeCPF(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateCPF accepts exactly eleven digits, or an empty value when allowEmpty is set.
func ValidateCPF(cpf string, allowEmpty bool) error {
	if cpf == "" && allowEmpty {
		return nil
	}
	if len(cpf) != cpfLength || NormalizeCPF(cpf) != cpf {
		return internal.NewValidationFieldError("cpf", "cpf must be exactly 11 digits", internal.ErrCodeInvalidCPF)
	}
	return nil
}

// CheckCPFUniqueness rejects cpf when another user in roster already holds it.
// Empty and sentinel values are exempt.
func CheckCPFUniqueness(cpf string, roster []Credential, excludingID string) error {
	cpf = NormalizeCPF(cpf)
	if cpf == "" || cpf == SentinelCPF {
		return nil
	}
	for _, c := range roster {
		if excludingID != "" && c.ID == excludingID {
			continue
		}
		if NormalizeCPF(c.CPF) == cpf {
			return internal.NewDuplicateError("cpf already belongs to another user", internal.ErrCodeDuplicateCPF)
		}
	}
	return nil
}

// EffectiveCPF substitutes the sentinel for a missing CPF.
func EffectiveCPF(cpf string) string {
	if cpf == "" {
		return SentinelCPF
	}
	return cpf
}

// IsRealCPF reports whether cpf identifies a person rather than a placeholder.
func IsRealCPF(cpf string) bool {
	return cpf != "" && cpf != SentinelCPF
}
