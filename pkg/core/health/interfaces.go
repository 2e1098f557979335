package health

import "time"

type ComponentStatus struct {
	Name      string    `json:"name"`
	Ready     bool      `json:"ready"`
	StartedAt time.Time `json:"started_at"`
	ReadyAt   time.Time `json:"ready_at,omitzero"`
}

type ReadinessStatus struct {
	Ready        bool              `json:"ready"`
	TrafficReady bool              `json:"traffic_ready"`
	Components   []ComponentStatus `json:"components"`
	ReadyAt      time.Time         `json:"ready_at,omitzero"`
}

// ComponentManager registers components that gate readiness.
type ComponentManager interface {
	// AddComponent registers name and returns the function that marks it ready.
	AddComponent(name string) func()
}

// ReadinessChecker reports readiness.
type ReadinessChecker interface {
	IsReady() bool
	GetStatus() ReadinessStatus
}

// TrafficController marks the moment an external probe first sees the service ready.
type TrafficController interface {
	MarkTrafficReady()
}
