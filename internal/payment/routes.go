package payment

import (
	"errors"
	"net/http"

	"github.com/Sokol111/ecommerce-choreography/pkg/core/logger"
	"github.com/Sokol111/ecommerce-choreography/pkg/http/problems"
	"github.com/Sokol111/ecommerce-choreography/pkg/http/render"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/events"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type paymentResponse struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"orderId"`
	UserID      string  `json:"userId"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	CompletedAt string  `json:"completedAt"`
}

func toResponse(p *Payment) paymentResponse {
	return paymentResponse{
		ID:          p.ID,
		OrderID:     p.OrderID,
		UserID:      p.UserID,
		Amount:      p.Amount,
		Status:      string(p.Status),
		CompletedAt: events.Timestamp(p.CompletedAt),
	}
}

type routes struct {
	repo Repository
	log  *zap.Logger
}

func newRoutes(repo Repository, log *zap.Logger) *routes {
	return &routes{repo: repo, log: log}
}

func (h *routes) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /payments/{id}", h.getPayment)
	mux.HandleFunc("GET /orders/{orderId}/payments", h.listOrderPayments)
}

func (h *routes) getPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			problems.Write(w, r, problems.New(http.StatusNotFound, err.Error()))
			return
		}
		h.internalError(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, toResponse(p))
}

func (h *routes) listOrderPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.repo.FindByOrderID(r.Context(), r.PathValue("orderId"))
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, lo.Map(payments, func(p *Payment, _ int) paymentResponse { return toResponse(p) }))
}

func (h *routes) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logger.GetOr(r.Context(), h.log).Error("payment request failed", zap.Error(err))
	problems.Write(w, r, problems.New(http.StatusInternalServerError, "internal server error"))
}
