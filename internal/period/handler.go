package period

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/tarefa360/tarefa360/internal/transport"
)

type ServiceAPI interface {
	GetAllPeriods(ctx context.Context) PeriodsResponse
	GetActivePeriod(ctx context.Context) (*Period, error)
	CreatePeriod(ctx context.Context, req PeriodRequest) (*Period, error)
	UpdatePeriod(ctx context.Context, id string, req PeriodRequest) (*Period, error)
	ActivatePeriod(ctx context.Context, id string) (*Period, error)
	DeletePeriod(ctx context.Context, id string) error
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

func (h *Handler) GetPeriods(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.GetAllPeriods(r.Context()))
}

func (h *Handler) GetActivePeriod(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetActivePeriod(r.Context())
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req PeriodRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleError(w, err)
		return
	}

	p, err := h.Service.CreatePeriod(r.Context(), req)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdatePeriod(w http.ResponseWriter, r *http.Request) {
	var req PeriodRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleError(w, err)
		return
	}

	p, err := h.Service.UpdatePeriod(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) ActivatePeriod(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.ActivatePeriod(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeletePeriod(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
