package activity

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/transport"
)

type ServiceAPI interface {
	CreateActivity(ctx context.Context, ownerID string, req CreateActivityRequest) (*Activity, error)
	GetActivity(ctx context.Context, id string) (*Activity, error)
	ListActivities(ctx context.Context, userID string) ([]*Activity, error)
	UpdateActivity(ctx context.Context, actorID, id string, req UpdateActivityRequest) (*Activity, error)
	DeleteActivity(ctx context.Context, actorID, id string) error
	AddProgress(ctx context.Context, actorID, id string, req AddProgressRequest) (*Activity, error)
	RemoveProgress(ctx context.Context, actorID, id string, year, month int) (*Activity, error)
	Ledger(ctx context.Context, viewerID, id string) (LedgerResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// ListActivities lists the caller's activities, or another user's via ?user_id= in read-only form.
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.ActorID(w, r)
	if !ok {
		return
	}

	ownerID := actorID
	if q := r.URL.Query().Get("user_id"); q != "" {
		ownerID = q
	}

	acts, err := h.Service.ListActivities(r.Context(), ownerID)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	out := make([]ActivityResponse, 0, len(acts))
	for _, a := range acts {
		out = append(out, a.ToResponse(actorID))
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"activities": out,
		"read_only":  ownerID != actorID,
	})
}

func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.ActorID(w, r)
	if !ok {
		return
	}

	var req CreateActivityRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleError(w, err)
		return
	}

	act, err := h.Service.CreateActivity(r.Context(), actorID, req)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, act.ToResponse(actorID))
}

func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.ActorID(w, r)
	if !ok {
		return
	}

	act, err := h.Service.GetActivity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, act.ToResponse(actorID))
}

func (h *Handler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.ActorID(w, r)
	if !ok {
		return
	}

	var req UpdateActivityRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleError(w, err)
		return
	}

	act, err := h.Service.UpdateActivity(r.Context(), actorID, chi.URLParam(r, "id"), req)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, act.ToResponse(actorID))
}

func (h *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.ActorID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteActivity(r.Context(), actorID, chi.URLParam(r, "id")); err != nil {
		h.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.ActorID(w, r)
	if !ok {
		return
	}

	ledger, err := h.Service.Ledger(r.Context(), actorID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ledger)
}

func (h *Handler) AddProgress(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.ActorID(w, r)
	if !ok {
		return
	}

	var req AddProgressRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleError(w, err)
		return
	}

	act, err := h.Service.AddProgress(r.Context(), actorID, chi.URLParam(r, "id"), req)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, act.ToResponse(actorID))
}

func (h *Handler) RemoveProgress(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.ActorID(w, r)
	if !ok {
		return
	}

	year, yearErr := strconv.Atoi(chi.URLParam(r, "year"))
	month, monthErr := strconv.Atoi(chi.URLParam(r, "month"))
	if yearErr != nil || monthErr != nil {
		h.HandleError(w, internal.NewValidationError("year and month must be integers", internal.ErrCodeInvalidDate))
		return
	}

	act, err := h.Service.RemoveProgress(r.Context(), actorID, chi.URLParam(r, "id"), year, month)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, act.ToResponse(actorID))
}

// CheckForm answers whether an editor in the given state may save.
func (h *Handler) CheckForm(w http.ResponseWriter, r *http.Request) {
	var state FormState
	if err := h.DecodeJSON(r, &state); err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, FormCheckResponse{
		SaveAllowed:       IsSaveAllowed(state),
		StartDateEditable: StartDateEditable(state),
	})
}
