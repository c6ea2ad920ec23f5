package period

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/core/common/validation"
	periodDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/period"
)

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

type Period struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Period) IsActive() bool {
	return p.Status == StatusActive
}

func (p *Period) Activate() {
	p.Status = StatusActive
	p.UpdatedAt = time.Now()
}

func (p *Period) Deactivate() {
	p.Status = StatusInactive
	p.UpdatedAt = time.Now()
}

func validateRange(name, start, end string) error {
	v := validation.NewValidator()
	v.Field("name", name).Required().MaxLength(120)
	v.Field("start_date", start).Required().Date()
	v.Field("end_date", end).Required().Date()
	if err := v.ValidateFirst(); err != nil {
		return err
	}

	s, _ := time.Parse(validation.DateLayout, strings.TrimSpace(start))
	e, _ := time.Parse(validation.DateLayout, strings.TrimSpace(end))
	if e.Before(s) {
		return internal.NewValidationFieldError("end_date", "end_date must not be before start_date", internal.ErrCodeInvalidPeriod)
	}
	return nil
}

// NewPeriod validates req and builds an inactive period.
func NewPeriod(req PeriodRequest) (*Period, error) {
	if err := validateRange(req.Name, req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Period{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		StartDate: strings.TrimSpace(req.StartDate),
		EndDate:   strings.TrimSpace(req.EndDate),
		Status:    StatusInactive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ApplyEdit returns the edited period. The status is set as given; other periods are not touched.
func (p *Period) ApplyEdit(req PeriodRequest) (*Period, error) {
	if err := validateRange(req.Name, req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	next := *p
	next.Name = strings.TrimSpace(req.Name)
	next.StartDate = strings.TrimSpace(req.StartDate)
	next.EndDate = strings.TrimSpace(req.EndDate)
	if req.Status != "" {
		switch Status(req.Status) {
		case StatusActive, StatusInactive:
			next.Status = Status(req.Status)
		default:
			return nil, internal.NewValidationFieldError("status", "status must be Active or Inactive", internal.ErrCodeInvalidPeriod)
		}
	}
	next.UpdatedAt = time.Now()
	return &next, nil
}

func ToDataModel(p *Period) *periodDatamodel.EvaluationPeriod {
	start, _ := time.Parse(validation.DateLayout, p.StartDate)
	end, _ := time.Parse(validation.DateLayout, p.EndDate)
	return &periodDatamodel.EvaluationPeriod{
		ID:        p.ID,
		Name:      p.Name,
		StartDate: start,
		EndDate:   end,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func FromDataModel(row *periodDatamodel.EvaluationPeriod) *Period {
	return &Period{
		ID:        row.ID,
		Name:      row.Name,
		StartDate: row.StartDate.Format(validation.DateLayout),
		EndDate:   row.EndDate.Format(validation.DateLayout),
		Status:    Status(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*periodDatamodel.EvaluationPeriod) []*Period {
	out := make([]*Period, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out
}
