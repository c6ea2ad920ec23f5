package user

import (
	"fmt"
	"strings"

	"github.com/tarefa360/tarefa360/internal"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAppraiser Role = "appraiser"
	RoleAppraisee Role = "appraisee"
)

// Field names an account attribute in the order forms present it.
type Field string

const (
	FieldName         Field = "name"
	FieldNomeDeGuerra Field = "nome_de_guerra"
	FieldPostoGrad    Field = "posto_grad"
	FieldEmail        Field = "email"
	FieldSector       Field = "sector"
	FieldJobTitle     Field = "job_title"
)

var accountFields = []Field{FieldName, FieldNomeDeGuerra, FieldPostoGrad, FieldEmail, FieldSector, FieldJobTitle}

// RolePolicy is everything that varies by role.
type RolePolicy struct {
	Role                      Role
	RequiredFields            []Field
	RequiresAppraiserOnCreate bool
	CanOwnActivities          bool
	DashboardRoute            string
}

var rolePolicies = map[Role]RolePolicy{
	RoleAdmin: {
		Role:           RoleAdmin,
		RequiredFields: accountFields,
		DashboardRoute: "/admin/dashboard",
	},
	RoleAppraiser: {
		Role:             RoleAppraiser,
		RequiredFields:   accountFields,
		CanOwnActivities: true,
		DashboardRoute:   "/appraiser/dashboard",
	},
	RoleAppraisee: {
		Role:                      RoleAppraisee,
		RequiredFields:            accountFields,
		RequiresAppraiserOnCreate: true,
		CanOwnActivities:          true,
		DashboardRoute:            "/appraisee/dashboard",
	},
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rolePolicies[r]; !ok {
		return "", internal.NewValidationFieldError("role", fmt.Sprintf("role must be one of admin, appraiser, appraisee; got %q", s), internal.ErrCodeInvalidRole)
	}
	return r, nil
}

func (r Role) IsValid() bool {
	_, ok := rolePolicies[r]
	return ok
}

// Policy returns the role's policy. Unknown roles get an empty policy.
func (r Role) Policy() RolePolicy {
	return rolePolicies[r]
}

func (r Role) DashboardRoute() string {
	return rolePolicies[r].DashboardRoute
}

func Roles() []Role {
	return []Role{RoleAdmin, RoleAppraiser, RoleAppraisee}
}
