package identity

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// DefaultCPFPolicy decides the status of an account that has no real CPF.
type DefaultCPFPolicy int

const (
	// InactiveUntilCPF keeps placeholder accounts inactive until an administrator supplies a CPF.
	InactiveUntilCPF DefaultCPFPolicy = iota
	// ActiveWithSentinel activates the account immediately even though it holds the sentinel CPF.
	ActiveWithSentinel
)

func (p DefaultCPFPolicy) String() string {
	if p == ActiveWithSentinel {
		return "active-with-sentinel"
	}
	return "inactive-until-cpf"
}

// DeriveStatus is Active for a real CPF; otherwise the policy decides.
func DeriveStatus(cpf string, policy DefaultCPFPolicy) Status {
	if IsRealCPF(cpf) {
		return StatusActive
	}
	if policy == ActiveWithSentinel {
		return StatusActive
	}
	return StatusInactive
}
