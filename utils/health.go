package utils

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HealthProbe checks one dependency.
type HealthProbe func(ctx context.Context) error

// HealthStatus represents current status of the storage backends.
type HealthStatus struct {
	Healthy      bool            `json:"healthy"`
	Dependencies map[string]bool `json:"dependencies"`
	CheckedAt    time.Time       `json:"checkedAt"`
}

// HealthMonitor runs probes periodically and keeps the latest snapshot in memory.
type HealthMonitor struct {
	probes   map[string]HealthProbe
	interval time.Duration
	logger   *zap.Logger

	mu      sync.RWMutex
	current HealthStatus
}

func NewHealthMonitor(interval time.Duration, logger *zap.Logger) *HealthMonitor {
	return &HealthMonitor{
		probes:   make(map[string]HealthProbe),
		interval: interval,
		logger:   logger,
		current:  HealthStatus{Healthy: true, Dependencies: map[string]bool{}},
	}
}

// Register adds a named probe. Must be called before Start.
func (m *HealthMonitor) Register(name string, probe HealthProbe) {
	m.probes[name] = probe
}

// Status returns latest stored health snapshot.
func (m *HealthMonitor) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Check runs every probe once and stores the result.
func (m *HealthMonitor) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy:      true,
		Dependencies: make(map[string]bool, len(m.probes)),
		CheckedAt:    time.Now(),
	}
	for name, probe := range m.probes {
		probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := probe(probeCtx)
		cancel()

		status.Dependencies[name] = err == nil
		if err != nil {
			status.Healthy = false
			m.logger.Warn("Health probe failed", zap.String("dependency", name), zap.Error(err))
		}
	}

	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

// Start checks immediately, then on every tick until ctx is done.
func (m *HealthMonitor) Start(ctx context.Context) {
	m.Check(ctx)
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}
