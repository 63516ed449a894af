package file

import (
	"context"
	"fmt"
	"os"
)

// HealthCheck implements ports.HealthChecker for the file store.
type HealthCheck struct {
	dir string
}

// NewHealthCheck creates a health checker for the store's directory.
func NewHealthCheck(store *BlobStore) *HealthCheck {
	return &HealthCheck{dir: store.Dir()}
}

// Ping checks the storage directory still exists and is writable.
func (h *HealthCheck) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.CreateTemp(h.dir, ".health-*")
	if err != nil {
		return fmt.Errorf("storage dir %s not writable: %w", h.dir, err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "file"
}
