package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRoutes(t *testing.T) {
	p := &Payment{
		ID:          "p1",
		OrderID:     "o1",
		UserID:      "u1",
		Amount:      100,
		Status:      StatusFailed,
		CompletedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	repo := &mockRepository{
		findByIDFunc: func(_ context.Context, id string) (*Payment, error) {
			if id == "p1" {
				return p, nil
			}
			return nil, ErrNotFound
		},
		findByOrderIDFunc: func(_ context.Context, orderID string) ([]*Payment, error) {
			if orderID == "o1" {
				return []*Payment{p}, nil
			}
			return nil, nil
		},
	}
	mux := http.NewServeMux()
	newRoutes(repo, zap.NewNop()).register(mux)

	const paymentJSON = `{"id":"p1","orderId":"o1","userId":"u1","amount":100,"status":"failed","completedAt":"2024-01-01T00:00:00.000Z"}`

	tests := []struct {
		name     string
		target   string
		wantCode int
		wantBody string
	}{
		{name: "get payment", target: "/payments/p1", wantCode: http.StatusOK, wantBody: paymentJSON},
		{name: "unknown payment", target: "/payments/p2", wantCode: http.StatusNotFound},
		{name: "order payments", target: "/orders/o1/payments", wantCode: http.StatusOK, wantBody: "[" + paymentJSON + "]"},
		{name: "order without payments", target: "/orders/o2/payments", wantCode: http.StatusOK, wantBody: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}
