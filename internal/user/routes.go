package user

import (
	"errors"
	"net/http"

	"github.com/Sokol111/ecommerce-choreography/pkg/core/logger"
	"github.com/Sokol111/ecommerce-choreography/pkg/http/problems"
	"github.com/Sokol111/ecommerce-choreography/pkg/http/render"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/events"
	"go.uber.org/zap"
)

// EventPublishedHeader is "false" on a 201 whose user.created event could not be published.
const EventPublishedHeader = "X-Event-Published"

type createUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

func toResponse(u *User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: events.Timestamp(u.CreatedAt)}
}

type handler struct {
	svc *Service
	log *zap.Logger
}

func newHandler(svc *Service, log *zap.Logger) *handler {
	return &handler{svc: svc, log: log}
}

func (h *handler) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /users", h.createUser)
	mux.HandleFunc("GET /users/{id}", h.getUser)
}

func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := render.DecodeJSON(w, r, &req); err != nil {
		problems.Write(w, r, problems.New(http.StatusBadRequest, err.Error()))
		return
	}

	res, err := h.svc.Create(r.Context(), req.Email, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if !res.Published {
		w.Header().Set(EventPublishedHeader, "false")
	}
	render.JSON(w, http.StatusCreated, toResponse(res.User))
}

func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, toResponse(u))
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidUser):
		problems.Write(w, r, problems.New(http.StatusBadRequest, err.Error()))
	case errors.Is(err, ErrEmailTaken):
		problems.Write(w, r, problems.New(http.StatusConflict, err.Error()))
	case errors.Is(err, ErrNotFound):
		problems.Write(w, r, problems.New(http.StatusNotFound, err.Error()))
	default:
		logger.GetOr(r.Context(), h.log).Error("user request failed", zap.Error(err))
		problems.Write(w, r, problems.New(http.StatusInternalServerError, "internal server error"))
	}
}
