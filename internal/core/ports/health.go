package ports

//go:generate mockgen -source=health.go -destination=mocks/mock_health.go -package=mocks

import "context"

// HealthChecker checks storage backend health.
type HealthChecker interface {
	// Ping verifies the backend is reachable. Returns nil if healthy.
	Ping(ctx context.Context) error
	// Name returns the backend name (e.g., "postgresql", "redis").
	Name() string
}
