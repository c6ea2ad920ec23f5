package activity

import (
	"strings"
	"time"

	"github.com/tarefa360/tarefa360/internal/core/common/validation"
)

// FormState is what an activity editor holds before saving.
type FormState struct {
	ActivityID     string `json:"activity_id"`
	Title          string `json:"title"`
	StartDate      string `json:"start_date"`
	DateParseError bool   `json:"date_parse_error"`
	// EntryDraftOpen is set while a progress entry is half typed in its sub-form.
	EntryDraftOpen bool `json:"entry_draft_open"`
}

// IsSaveAllowed reports whether the editor may save; an open entry draft always blocks it.
func IsSaveAllowed(f FormState) bool {
	if strings.TrimSpace(f.Title) == "" || strings.TrimSpace(f.StartDate) == "" {
		return false
	}
	if f.DateParseError {
		return false
	}
	if _, err := time.Parse(validation.DateLayout, strings.TrimSpace(f.StartDate)); err != nil {
		return false
	}
	return !f.EntryDraftOpen
}

// StartDateEditable is false once the activity exists.
func StartDateEditable(f FormState) bool {
	return f.ActivityID == ""
}
