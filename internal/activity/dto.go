package activity

import (
	"time"

	"github.com/tarefa360/tarefa360/internal/core/common/validation"
	"github.com/tarefa360/tarefa360/internal/progress"
)

type CreateActivityRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
}

// UpdateActivityRequest carries the editable fields. StartDate and UserID are accepted only
// so that an attempt to change them can be rejected.
type UpdateActivityRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	StartDate   *string `json:"start_date,omitempty"`
	UserID      *string `json:"user_id,omitempty"`
}

type AddProgressRequest struct {
	Year       int    `json:"year" validate:"required,min=1"`
	Month      int    `json:"month" validate:"required,min=1,max=12"`
	Percentage int    `json:"percentage"`
	Comment    string `json:"comment" validate:"max=2000"`
}

func (r AddProgressRequest) Entry() progress.Entry {
	return progress.Entry{
		Year:       r.Year,
		Month:      r.Month,
		Percentage: r.Percentage,
		Comment:    r.Comment,
	}
}

type ActivityResponse struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	StartDate       string           `json:"start_date"`
	ProgressHistory []progress.Entry `json:"progress_history"`
	Latest          *progress.Entry  `json:"latest_progress"`
	ReadOnly        bool             `json:"read_only"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ToResponse renders a for viewerID; viewers other than the owner get a read-only view.
func (a *Activity) ToResponse(viewerID string) ActivityResponse {
	history := a.ProgressHistory
	if history == nil {
		history = []progress.Entry{}
	}
	return ActivityResponse{
		ID:              a.ID,
		UserID:          a.UserID,
		Title:           a.Title,
		Description:     a.Description,
		StartDate:       a.StartDate.Format(validation.DateLayout),
		ProgressHistory: history,
		Latest:          a.Latest(),
		ReadOnly:        !a.IsOwnedBy(viewerID),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

type LedgerResponse struct {
	ActivityID string           `json:"activity_id"`
	Entries    []progress.Entry `json:"entries"`
	Latest     *progress.Entry  `json:"latest"`
	ReadOnly   bool             `json:"read_only"`
}

type FormCheckResponse struct {
	SaveAllowed       bool `json:"save_allowed"`
	StartDateEditable bool `json:"start_date_editable"`
}
