// Package association keeps the appraisee to appraiser registry.
package association

import (
	"time"

	"github.com/google/uuid"

	associationDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/association"
)

type Association struct {
	ID          string    `json:"id"`
	AppraiseeID string    `json:"appraisee_id"`
	AppraiserID string    `json:"appraiser_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Create builds a new association. It does not check whether the appraisee is already bound.
func Create(appraiseeID, appraiserID string) Association {
	return Association{
		ID:          uuid.New().String(),
		AppraiseeID: appraiseeID,
		AppraiserID: appraiserID,
		CreatedAt:   time.Now(),
	}
}

// FindAppraiserFor returns the appraiser of the first association naming appraiseeID.
func FindAppraiserFor(appraiseeID string, associations []Association) (string, bool) {
	for _, a := range associations {
		if a.AppraiseeID == appraiseeID {
			return a.AppraiserID, true
		}
	}
	return "", false
}

// FindAppraiseesFor lists the appraisees bound to appraiserID in registry order.
func FindAppraiseesFor(appraiserID string, associations []Association) []string {
	out := []string{}
	for _, a := range associations {
		if a.AppraiserID == appraiserID {
			out = append(out, a.AppraiseeID)
		}
	}
	return out
}

// Remove returns a copy of associations without the one identified by id.
func Remove(associations []Association, id string) []Association {
	out := make([]Association, 0, len(associations))
	for _, a := range associations {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}

func ToDataModel(a Association) *associationDatamodel.Association {
	return &associationDatamodel.Association{
		ID:          a.ID,
		AppraiseeID: a.AppraiseeID,
		AppraiserID: a.AppraiserID,
		CreatedAt:   a.CreatedAt,
	}
}

func FromDataModel(row *associationDatamodel.Association) Association {
	return Association{
		ID:          row.ID,
		AppraiseeID: row.AppraiseeID,
		AppraiserID: row.AppraiserID,
		CreatedAt:   row.CreatedAt,
	}
}

func FromDataModelSlice(rows []*associationDatamodel.Association) []Association {
	out := make([]Association, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out
}
