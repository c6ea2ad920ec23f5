package user

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/core/common/validation"
	"github.com/tarefa360/tarefa360/internal/identity"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Flow names the path an account is created through; each carries its own default-CPF policy.
type Flow int

const (
	// FlowAdminCreate is an administrator registering any account.
	FlowAdminCreate Flow = iota
	// FlowAppraiserQuickAdd is an appraiser registering a fellow appraiser.
	FlowAppraiserQuickAdd
)

func (f Flow) Policy() identity.DefaultCPFPolicy {
	if f == FlowAppraiserQuickAdd {
		return identity.ActiveWithSentinel
	}
	return identity.InactiveUntilCPF
}

func (f Flow) String() string {
	if f == FlowAppraiserQuickAdd {
		return "appraiser-quick-add"
	}
	return "admin-create"
}

// AccountInput is the raw account form.
type AccountInput struct {
	CPF          string `json:"cpf"`
	Name         string `json:"name"`
	NomeDeGuerra string `json:"nome_de_guerra"`
	PostoGrad    string `json:"posto_grad"`
	Email        string `json:"email"`
	Sector       string `json:"sector"`
	JobTitle     string `json:"job_title"`
	Role         string `json:"role"`
	AppraiserID  string `json:"appraiser_id"`
}

func (in AccountInput) value(f Field) string {
	switch f {
	case FieldName:
		return in.Name
	case FieldNomeDeGuerra:
		return in.NomeDeGuerra
	case FieldPostoGrad:
		return in.PostoGrad
	case FieldEmail:
		return in.Email
	case FieldSector:
		return in.Sector
	case FieldJobTitle:
		return in.JobTitle
	}
	return ""
}

// AssociationPayload binds a new appraisee to the selected appraiser.
type AssociationPayload struct {
	AppraiseeID string
	AppraiserID string
}

// Draft is an accepted account ready for the store.
type Draft struct {
	User *User
	// InitialPassword is the derived default credential, before hashing.
	InitialPassword string
	Association     *AssociationPayload
}

// ValidateAccount checks role, required fields and the appraiser relation. It reports the first
// failure only.
func ValidateAccount(mode Mode, in AccountInput) (Role, error) {
	role, err := ParseRole(in.Role)
	if err != nil {
		return "", err
	}

	policy := role.Policy()
	v := validation.NewValidator()
	for _, f := range policy.RequiredFields {
		v.Field(string(f), in.value(f)).Required()
	}
	if err := v.ValidateFirst(); err != nil {
		return "", err
	}

	if mode == ModeCreate && policy.RequiresAppraiserOnCreate && strings.TrimSpace(in.AppraiserID) == "" {
		return "", internal.NewMissingAppraiserError()
	}
	return role, nil
}

func checkCPF(raw string, roster []identity.Credential, excludingID string) (string, error) {
	cpf := identity.NormalizeCPF(raw)
	if err := identity.ValidateCPF(cpf, true); err != nil {
		return "", err
	}
	if err := identity.CheckCPFUniqueness(cpf, roster, excludingID); err != nil {
		return "", err
	}
	return identity.EffectiveCPF(cpf), nil
}

// PrepareCreate turns a create form into a new account, deriving status and the default password.
func PrepareCreate(in AccountInput, roster []identity.Credential, flow Flow) (*Draft, error) {
	role, err := ValidateAccount(ModeCreate, in)
	if err != nil {
		return nil, err
	}

	cpf, err := checkCPF(in.CPF, roster, "")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &User{
		ID:                  uuid.New().String(),
		CPF:                 cpf,
		Name:                strings.TrimSpace(in.Name),
		NomeDeGuerra:        strings.TrimSpace(in.NomeDeGuerra),
		PostoGrad:           strings.TrimSpace(in.PostoGrad),
		Email:               strings.TrimSpace(in.Email),
		Sector:              strings.TrimSpace(in.Sector),
		JobTitle:            strings.TrimSpace(in.JobTitle),
		Role:                role,
		Status:              identity.DeriveStatus(cpf, flow.Policy()),
		ForcePasswordChange: true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	draft := &Draft{
		User:            u,
		InitialPassword: identity.DerivePassword(cpf, u.NomeDeGuerra),
	}
	if role == RoleAppraisee {
		draft.Association = &AssociationPayload{
			AppraiseeID: u.ID,
			AppraiserID: strings.TrimSpace(in.AppraiserID),
		}
	}
	return draft, nil
}

// ApplyEdit returns the edited account. Status follows the CPF, so supplying one reactivates an
// inactive account. Password fields are untouched.
func ApplyEdit(existing *User, in AccountInput, roster []identity.Credential) (*User, error) {
	role, err := ValidateAccount(ModeEdit, in)
	if err != nil {
		return nil, err
	}

	cpf, err := checkCPF(in.CPF, roster, existing.ID)
	if err != nil {
		return nil, err
	}

	next := existing.clone()
	next.CPF = cpf
	next.Name = strings.TrimSpace(in.Name)
	next.NomeDeGuerra = strings.TrimSpace(in.NomeDeGuerra)
	next.PostoGrad = strings.TrimSpace(in.PostoGrad)
	next.Email = strings.TrimSpace(in.Email)
	next.Sector = strings.TrimSpace(in.Sector)
	next.JobTitle = strings.TrimSpace(in.JobTitle)
	next.Role = role
	next.Status = identity.DeriveStatus(cpf, identity.InactiveUntilCPF)
	next.UpdatedAt = time.Now()
	return next, nil
}

// ProfileInput is what a user may change about themselves.
type ProfileInput struct {
	Name         string `json:"name"`
	NomeDeGuerra string `json:"nome_de_guerra"`
	Email        string `json:"email"`
}

func ApplyProfileEdit(existing *User, in ProfileInput) (*User, error) {
	v := validation.NewValidator()
	v.Field(string(FieldName), in.Name).Required()
	v.Field(string(FieldNomeDeGuerra), in.NomeDeGuerra).Required()
	v.Field(string(FieldEmail), in.Email).Required()
	if err := v.ValidateFirst(); err != nil {
		return nil, err
	}

	next := existing.clone()
	next.Name = strings.TrimSpace(in.Name)
	next.NomeDeGuerra = strings.TrimSpace(in.NomeDeGuerra)
	next.Email = strings.TrimSpace(in.Email)
	next.UpdatedAt = time.Now()
	return next, nil
}
