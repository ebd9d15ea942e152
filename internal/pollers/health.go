package pollers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmitchellscott/mediamaster/internal/config"
	"github.com/rmitchellscott/mediamaster/internal/database"
	"github.com/rmitchellscott/mediamaster/internal/logging"
	"github.com/rmitchellscott/mediamaster/internal/metrics"
	"github.com/rmitchellscott/mediamaster/internal/upstream"
)

// InstanceHealth is the latest probe result for one instance.
type InstanceHealth struct {
	InstanceID   uuid.UUID           `json:"instance_id"`
	InstanceName string              `json:"instance_name"`
	Type         string              `json:"type"`
	Enabled      bool                `json:"enabled"`
	Status       upstream.TestStatus `json:"status"`
	Version      string              `json:"version,omitempty"`
	Message      string              `json:"message,omitempty"`
	CheckedAt    time.Time           `json:"checked_at"`
}

// HealthPoller probes every configured instance on an interval and keeps
// the latest classification per instance. Disabled instances are listed
// but not probed.
type HealthPoller struct {
	*BasePoller
	instances *database.InstanceService
	timeout   time.Duration

	mu     sync.RWMutex
	status map[uuid.UUID]InstanceHealth
}

// NewHealthPoller creates the instance health poller. The interval comes
// from HEALTH_POLL_INTERVAL (default 30s).
func NewHealthPoller(db *gorm.DB) *HealthPoller {
	p := &HealthPoller{
		instances: database.NewInstanceService(db),
		timeout:   config.GetDuration("UPSTREAM_TIMEOUT", upstream.DefaultTimeout),
		status:    make(map[uuid.UUID]InstanceHealth),
	}

	interval := config.GetDuration("HEALTH_POLL_INTERVAL", 30*time.Second)
	cfg := DefaultConfig("instance-health", interval)
	cfg.MaxRetries = 1
	p.BasePoller = NewBasePoller(cfg, p.poll)
	return p
}

// poll probes every instance sequentially. The BasePoller loop guarantees
// cycles never overlap.
func (p *HealthPoller) poll(ctx context.Context) error {
	instances, err := p.instances.GetAllInstances()
	if err != nil {
		return err
	}

	now := time.Now()
	fresh := make(map[uuid.UUID]InstanceHealth, len(instances))
	for _, inst := range instances {
		health := InstanceHealth{
			InstanceID:   inst.ID,
			InstanceName: inst.Name,
			Type:         inst.Type,
			Enabled:      inst.Enabled,
			CheckedAt:    now,
		}

		if !inst.Enabled {
			health.Status = upstream.TestStatusError
			health.Message = "instance is disabled"
			fresh[inst.ID] = health
			continue
		}

		result := upstream.TestConnection(ctx, inst.Type, inst.URL, inst.APIKey, p.timeout)
		health.Status = result.Status
		health.Version = result.Version
		health.Message = result.Message
		fresh[inst.ID] = health

		metrics.HealthChecks.WithLabelValues(string(result.Status)).Inc()
		if !result.OK() {
			logging.WarnWithComponent(logging.ComponentHealthPoller, "Instance unhealthy",
				"instance", inst.Name, "status", result.Status, "message", result.Message)
		}
	}

	p.mu.Lock()
	p.status = fresh
	p.mu.Unlock()
	return nil
}

// Snapshot returns the latest health result per instance.
func (p *HealthPoller) Snapshot() []InstanceHealth {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]InstanceHealth, 0, len(p.status))
	for _, health := range p.status {
		out = append(out, health)
	}
	return out
}

// CheckNow runs a single probe cycle outside the polling loop, used by the
// health endpoint when no cycle has completed yet.
func (p *HealthPoller) CheckNow(ctx context.Context) error {
	return p.poll(ctx)
}
