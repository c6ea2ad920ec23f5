package user

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/transport"
)

type ServiceAPI interface {
	ListUsers(ctx context.Context) Listing
	GetUser(ctx context.Context, id string) (*User, error)
	CreateAccount(ctx context.Context, in AccountInput) (*User, error)
	QuickAddAppraiser(ctx context.Context, in AccountInput) (*User, error)
	UpdateAccount(ctx context.Context, id string, in AccountInput) (*User, error)
	UpdateProfile(ctx context.Context, id string, in ProfileInput) (*User, error)
	SetAvatar(ctx context.Context, id, url string) (*User, error)
	DeleteUser(ctx context.Context, id string) error
}

// AvatarSaver stores uploaded avatars and returns their URLs.
type AvatarSaver interface {
	Save(userID string, r io.Reader) (string, error)
	Remove(url string) error
	Prune(userID, keepURL string) error
}

type Handler struct {
	*transport.BaseHandler
	Service   ServiceAPI
	Avatars   AvatarSaver
	MaxUpload int64
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, avatars AvatarSaver, maxUpload int64) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Avatars:     avatars,
		MaxUpload:   maxUpload,
	}
}

// ListUsers handles GET /users. When the store is down the last known roster is returned
// with connection_error set.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	listing := h.Service.ListUsers(r.Context())
	if listing.Stale {
		w.Header().Set("X-Data-Stale", "true")
	}
	h.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in AccountInput
	if err := h.DecodeJSON(r, &in); err != nil {
		h.HandleError(w, err)
		return
	}

	u, err := h.Service.CreateAccount(r.Context(), in)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) QuickAddAppraiser(w http.ResponseWriter, r *http.Request) {
	var in AccountInput
	if err := h.DecodeJSON(r, &in); err != nil {
		h.HandleError(w, err)
		return
	}

	u, err := h.Service.QuickAddAppraiser(r.Context(), in)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ActorID(w, r)
	if !ok {
		return
	}

	u, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in AccountInput
	if err := h.DecodeJSON(r, &in); err != nil {
		h.HandleError(w, err)
		return
	}

	u, err := h.Service.UpdateAccount(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ActorID(w, r)
	if !ok {
		return
	}

	var in ProfileInput
	if err := h.DecodeJSON(r, &in); err != nil {
		h.HandleError(w, err)
		return
	}

	u, err := h.Service.UpdateProfile(r.Context(), id, in)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// UploadAvatar handles POST /users/me/avatar with a multipart "avatar" file.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ActorID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)
	if err := r.ParseMultipartForm(h.MaxUpload); err != nil {
		h.HandleError(w, internal.NewValidationError("avatar upload is too large or malformed", internal.ErrCodeInvalidImage).WithCause(err))
		return
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		h.HandleError(w, internal.NewValidationFieldError("avatar", "avatar file is required", internal.ErrCodeRequiredField))
		return
	}
	defer file.Close()

	url, err := h.Avatars.Save(id, file)
	if err != nil {
		h.HandleError(w, err)
		return
	}

	u, err := h.Service.SetAvatar(r.Context(), id, url)
	if err != nil {
		if rmErr := h.Avatars.Remove(url); rmErr != nil {
			h.Logger.Warn("failed to remove unreferenced avatar", "url", url, "error", rmErr)
		}
		h.HandleError(w, err)
		return
	}
	if err := h.Avatars.Prune(id, url); err != nil {
		h.Logger.Warn("failed to prune old avatars", "user_id", id, "error", err)
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
