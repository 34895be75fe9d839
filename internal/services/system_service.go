package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/blendaura/api/internal/repositories"
)

// ErrSystemUnhealthy indicates a backing dependency failed its probe.
var ErrSystemUnhealthy = errors.New("system: unhealthy")

type systemService struct {
	health repositories.HealthRepository
}

// NewSystemService returns a SystemService probing the backing store.
func NewSystemService(health repositories.HealthRepository) (SystemService, error) {
	if health == nil {
		return nil, errors.New("system service: health repository is required")
	}
	return &systemService{health: health}, nil
}

// Health pings the backing store.
func (s *systemService) Health(ctx context.Context) error {
	if err := s.health.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrSystemUnhealthy, err)
	}
	return nil
}
