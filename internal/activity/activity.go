package activity

import (
	"strings"
	"time"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/core/common/validation"
	activityDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/activity"
	"github.com/tarefa360/tarefa360/internal/progress"
)

type Activity struct {
	ID              string
	UserID          string
	Title           string
	Description     string
	StartDate       time.Time
	ProgressHistory []progress.Entry
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New validates req and builds an activity owned by ownerID.
func New(ownerID string, req CreateActivityRequest) (*Activity, error) {
	v := validation.NewValidator()
	v.Field("title", req.Title).Required().MaxLength(200)
	v.Field("start_date", req.StartDate).Required().Date()
	if err := v.Validate(); err != nil {
		return nil, err
	}

	start, _ := time.Parse(validation.DateLayout, strings.TrimSpace(req.StartDate))
	now := time.Now()
	return &Activity{
		UserID:          ownerID,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		StartDate:       start,
		ProgressHistory: []progress.Entry{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (a *Activity) IsOwnedBy(userID string) bool {
	return userID != "" && a.UserID == userID
}

func (a *Activity) clone() *Activity {
	cp := *a
	cp.ProgressHistory = append([]progress.Entry(nil), a.ProgressHistory...)
	return &cp
}

// ApplyEdit returns a copy with title and description changed. Start date and owner are fixed.
func (a *Activity) ApplyEdit(req UpdateActivityRequest) (*Activity, error) {
	v := validation.NewValidator()
	v.Field("title", req.Title).Required().MaxLength(200)
	v.Field("start_date", req.StartDate).Custom(func(value interface{}) *internal.AppError {
		s, _ := value.(*string)
		if s == nil || strings.TrimSpace(*s) == "" || strings.TrimSpace(*s) == a.StartDate.Format(validation.DateLayout) {
			return nil
		}
		return internal.NewValidationFieldError("start_date", "start_date cannot change after creation", internal.ErrCodeImmutableField)
	})
	v.Field("user_id", req.UserID).Custom(func(value interface{}) *internal.AppError {
		s, _ := value.(*string)
		if s == nil || *s == "" || *s == a.UserID {
			return nil
		}
		return internal.NewValidationFieldError("user_id", "user_id cannot change after creation", internal.ErrCodeImmutableField)
	})
	if err := v.Validate(); err != nil {
		return nil, err
	}

	next := a.clone()
	next.Title = strings.TrimSpace(req.Title)
	next.Description = req.Description
	next.UpdatedAt = time.Now()
	return next, nil
}

// WithProgress returns a copy with entry added to the ledger.
func (a *Activity) WithProgress(entry progress.Entry) (*Activity, error) {
	history, err := progress.AddEntry(a.ProgressHistory, entry)
	if err != nil {
		return nil, err
	}
	next := a.clone()
	next.ProgressHistory = history
	next.UpdatedAt = time.Now()
	return next, nil
}

// WithoutProgress returns a copy without the (year, month) entry.
func (a *Activity) WithoutProgress(year, month int) *Activity {
	next := a.clone()
	next.ProgressHistory = progress.RemoveEntry(a.ProgressHistory, year, month)
	next.UpdatedAt = time.Now()
	return next
}

func (a *Activity) Latest() *progress.Entry {
	return progress.Latest(a.ProgressHistory)
}

func ToDataModel(a *Activity) *activityDatamodel.Activity {
	history := make([]activityDatamodel.ProgressEntry, len(a.ProgressHistory))
	for i, e := range a.ProgressHistory {
		history[i] = activityDatamodel.ProgressEntry{
			Year:       e.Year,
			Month:      e.Month,
			Percentage: e.Percentage,
			Comment:    e.Comment,
		}
	}
	return &activityDatamodel.Activity{
		ID:              a.ID,
		UserID:          a.UserID,
		Title:           a.Title,
		Description:     a.Description,
		StartDate:       a.StartDate,
		ProgressHistory: history,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func FromDataModel(a *activityDatamodel.Activity) *Activity {
	history := make([]progress.Entry, len(a.ProgressHistory))
	for i, e := range a.ProgressHistory {
		history[i] = progress.Entry{
			Year:       e.Year,
			Month:      e.Month,
			Percentage: e.Percentage,
			Comment:    e.Comment,
		}
	}
	return &Activity{
		ID:              a.ID,
		UserID:          a.UserID,
		Title:           a.Title,
		Description:     a.Description,
		StartDate:       a.StartDate,
		ProgressHistory: history,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*activityDatamodel.Activity) []*Activity {
	result := make([]*Activity, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}
