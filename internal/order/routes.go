package order

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

type orderResponse struct {
	ID          string             `json:"id"`
	UserID      string             `json:"userId"`
	Items       []events.OrderItem `json:"items"`
	TotalAmount float64            `json:"totalAmount"`
	CreatedAt   string             `json:"createdAt"`
}

func toResponse(o *Order) orderResponse {
	return orderResponse{
		ID:     o.ID,
		UserID: o.UserID,
		Items: lo.Map(o.Items, func(i Item, _ int) events.OrderItem {
			return events.OrderItem{ProductID: i.ProductID, Quantity: i.Quantity, Price: i.Price}
		}),
		TotalAmount: o.TotalAmount,
		CreatedAt:   events.Timestamp(o.CreatedAt),
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
	mux.HandleFunc("GET /orders/{id}", h.getOrder)
	mux.HandleFunc("GET /users/{userId}/orders", h.listUserOrders)
}

func (h *routes) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.repo.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			problems.Write(w, r, problems.New(http.StatusNotFound, err.Error()))
			return
		}
		h.internalError(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, toResponse(o))
}

func (h *routes) listUserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.repo.FindByUserID(r.Context(), r.PathValue("userId"))
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, lo.Map(orders, func(o *Order, _ int) orderResponse { return toResponse(o) }))
}

func (h *routes) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logger.GetOr(r.Context(), h.log).Error("order request failed", zap.Error(err))
	problems.Write(w, r, problems.New(http.StatusInternalServerError, "internal server error"))
}
