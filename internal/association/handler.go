package association

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context) Listing
	Create(ctx context.Context, req CreateAssociationRequest) (*Association, error)
	Delete(ctx context.Context, id string) error
	Reassign(ctx context.Context, appraiseeID, appraiserID string) error
	AppraiserFor(ctx context.Context, appraiseeID string) (string, bool, error)
	AppraiseesFor(ctx context.Context, appraiserID string) ([]string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

func (h *Handler) ListAssociations(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.List(r.Context()))
}

func (h *Handler) CreateAssociation(w http.ResponseWriter, r *http.Request) {
	var req CreateAssociationRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleError(w, err)
		return
	}

	a, err := h.Service.Create(r.Context(), req)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) DeleteAssociation(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAppraiser handles GET /users/{id}/appraiser
func (h *Handler) GetAppraiser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	appraiserID, ok, err := h.Service.AppraiserFor(r.Context(), id)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	if !ok {
		h.HandleError(w, internal.ErrAssociationNotFound)
		return
	}
	h.WriteJSON(w, http.StatusOK, AppraiserResponse{AppraiseeID: id, AppraiserID: appraiserID})
}

// ReassignAppraiser handles PUT /users/{id}/appraiser
func (h *Handler) ReassignAppraiser(w http.ResponseWriter, r *http.Request) {
	var req ReassignRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.Service.Reassign(r.Context(), id, req.AppraiserID); err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, AppraiserResponse{AppraiseeID: id, AppraiserID: req.AppraiserID})
}

// GetAppraisees handles GET /users/{id}/appraisees
func (h *Handler) GetAppraisees(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ids, err := h.Service.AppraiseesFor(r.Context(), id)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, AppraiseesResponse{AppraiserID: id, AppraiseeIDs: ids})
}
