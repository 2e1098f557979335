package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	corehealth "github.com/Sokol111/ecommerce-choreography/pkg/core/health"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReadiness struct {
	ready         bool
	trafficMarked int
}

func (f *fakeReadiness) IsReady() bool { return f.ready }

func (f *fakeReadiness) GetStatus() corehealth.ReadinessStatus {
	return corehealth.ReadinessStatus{
		Ready:      f.ready,
		Components: []corehealth.ComponentStatus{{Name: "kafka-producer", Ready: f.ready}},
	}
}

func (f *fakeReadiness) MarkTrafficReady() { f.trafficMarked++ }

func serve(t *testing.T, f *fakeReadiness, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	newHealthHandler(f, f).register(mux)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestIsLive(t *testing.T) {
	w := serve(t, &fakeReadiness{}, "/health/live")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", w.Body.String())
}

func TestIsReady(t *testing.T) {
	tests := []struct {
		name        string
		ready       bool
		wantCode    int
		wantBody    string
		wantTraffic int
	}{
		{name: "ready", ready: true, wantCode: http.StatusOK, wantBody: "ready", wantTraffic: 1},
		{name: "not ready", ready: false, wantCode: http.StatusServiceUnavailable, wantBody: "not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeReadiness{ready: tt.ready}

			w := serve(t, f, "/health/ready")

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
			assert.Equal(t, tt.wantTraffic, f.trafficMarked)
		})
	}
}

func TestIsReady_JSON(t *testing.T) {
	w := serve(t, &fakeReadiness{ready: false}, "/health/ready?format=json")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var status corehealth.ReadinessStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.Ready)
	require.Len(t, status.Components, 1)
	assert.Equal(t, "kafka-producer", status.Components[0].Name)
}
