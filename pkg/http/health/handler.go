// Package health serves the liveness and readiness probes.
package health

import (
	"net/http"

	corehealth "github.com/Sokol111/ecommerce-choreography/pkg/core/health"
	json "github.com/goccy/go-json"
	"go.uber.org/fx"
)

type healthHandler struct {
	readiness corehealth.ReadinessChecker
	traffic   corehealth.TrafficController
}

func newHealthHandler(r corehealth.ReadinessChecker, t corehealth.TrafficController) *healthHandler {
	return &healthHandler{readiness: r, traffic: t}
}

// NewHealthRoutesModule registers GET /health/live and GET /health/ready.
func NewHealthRoutesModule() fx.Option {
	return fx.Invoke(func(mux *http.ServeMux, r corehealth.ReadinessChecker, t corehealth.TrafficController) {
		newHealthHandler(r, t).register(mux)
	})
}

func (h *healthHandler) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health/live", h.isLive)
	mux.HandleFunc("GET /health/ready", h.isReady)
}

func (h *healthHandler) isReady(w http.ResponseWriter, r *http.Request) {
	ready := h.readiness.IsReady()
	if ready {
		// the first 200 tells the probe-gated tracker that traffic is flowing
		h.traffic.MarkTrafficReady()
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}

	if r.URL.Query().Get("format") == "json" || r.Header.Get("Accept") == "application/json" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(h.readiness.GetStatus())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	if ready {
		_, _ = w.Write([]byte("ready"))
		return
	}
	_, _ = w.Write([]byte("not ready"))
}

func (h *healthHandler) isLive(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("alive"))
}
