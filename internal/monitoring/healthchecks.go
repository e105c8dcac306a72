package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	HEALTHCHECK_TIMER   = 15
	HEALTHCHECK_TIMEOUT = 2 * time.Second
)

// Pinger is satisfied by *clients.ValkeyClient.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckHealth pings once and records the outcome in healthy.
func CheckHealth(ctx context.Context, name string, p Pinger, healthy *atomic.Bool) bool {
	ctx, cancel := context.WithTimeout(ctx, HEALTHCHECK_TIMEOUT)
	defer cancel()

	err := p.Ping(ctx)
	isHealthy := err == nil
	if was := healthy.Swap(isHealthy); was != isHealthy {
		if isHealthy {
			slog.Info("[HealthCheck] Dependency recovered", slog.String("name", name))
		} else {
			slog.Warn("[HealthCheck] Dependency is unhealthy",
				slog.String("name", name),
				slog.String("error", err.Error()))
		}
	}
	return isHealthy
}

// MonitorValkeyHealth keeps healthy current until ctx is done.
func MonitorValkeyHealth(ctx context.Context, p Pinger, healthy *atomic.Bool) {
	ticker := time.NewTicker(time.Second * HEALTHCHECK_TIMER)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CheckHealth(ctx, "valkey", p, healthy)
		}
	}
}
