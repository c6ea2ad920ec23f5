package dashboard

import (
	"context"
	"net/http"

	"github.com/tarefa360/tarefa360/internal/transport"
)

type ServiceAPI interface {
	Admin(ctx context.Context) (*AdminDashboard, error)
	Appraiser(ctx context.Context, appraiserID string) (*AppraiserDashboard, error)
	Appraisee(ctx context.Context, userID string) (*AppraiseeDashboard, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Admin(r.Context())
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, d)
}

// Appraiser serves the caller's dashboard; ?user_id= views another appraiser's.
func (h *Handler) Appraiser(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("user_id")
	if id == "" {
		var ok bool
		if id, ok = h.ActorID(w, r); !ok {
			return
		}
	}

	d, err := h.Service.Appraiser(r.Context(), id)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) Appraisee(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("user_id")
	if id == "" {
		var ok bool
		if id, ok = h.ActorID(w, r); !ok {
			return
		}
	}

	d, err := h.Service.Appraisee(r.Context(), id)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, d)
}
