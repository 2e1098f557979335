package health

import (
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type component struct {
	name      string
	ready     bool
	startedAt time.Time
	readyAt   time.Time
}

type readiness struct {
	mu         sync.RWMutex
	components map[string]*component

	readyChan   chan struct{}
	readyOnce   sync.Once
	trafficChan chan struct{}
	trafficOnce sync.Once

	logger *zap.Logger
}

func newReadiness(logger *zap.Logger) *readiness {
	return &readiness{
		components:  make(map[string]*component),
		readyChan:   make(chan struct{}),
		trafficChan: make(chan struct{}),
		logger:      logger,
	}
}

func (r *readiness) AddComponent(name string) func() {
	if strings.TrimSpace(name) == "" {
		panic("health: component name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.components[name]; !exists {
		r.components[name] = &component{name: name, startedAt: time.Now()}
	}
	return func() { r.markReady(name) }
}

func (r *readiness) markReady(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comp, ok := r.components[name]
	if !ok || comp.ready {
		return
	}
	comp.ready = true
	comp.readyAt = time.Now()
	r.logger.Info("component ready", zap.String("component", name))

	for _, c := range r.components {
		if !c.ready {
			return
		}
	}
	r.readyOnce.Do(func() {
		close(r.readyChan)
		r.logger.Info("all components are ready", zap.Int("component_count", len(r.components)))
	})
}

func (r *readiness) IsReady() bool {
	return isClosed(r.readyChan)
}

func (r *readiness) GetStatus() ReadinessStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := ReadinessStatus{
		Ready:        r.IsReady(),
		TrafficReady: isClosed(r.trafficChan),
		Components:   make([]ComponentStatus, 0, len(r.components)),
	}
	for _, c := range r.components {
		if status.Ready && c.readyAt.After(status.ReadyAt) {
			status.ReadyAt = c.readyAt
		}
		status.Components = append(status.Components, ComponentStatus{
			Name:      c.name,
			Ready:     c.ready,
			StartedAt: c.startedAt,
			ReadyAt:   c.readyAt,
		})
	}
	slices.SortFunc(status.Components, func(a, b ComponentStatus) int { return strings.Compare(a.Name, b.Name) })
	return status
}

// MarkTrafficReady records the first readiness probe answered while ready.
// It is a no-op until all components are ready.
func (r *readiness) MarkTrafficReady() {
	if !r.IsReady() {
		return
	}
	r.trafficOnce.Do(func() {
		close(r.trafficChan)
		r.logger.Info("ready for traffic")
	})
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
