package cache

import (
	"context"
	"time"

	"venuepos/backend/internal/domain"
)

// AvailabilityCache stores the busy intervals of one court on one business
// day. Misses and errors fall through to the repository.
type AvailabilityCache interface {
	Get(ctx context.Context, courtID string, date string) (*domain.CourtAvailability, bool, error)
	Set(ctx context.Context, value *domain.CourtAvailability, ttl time.Duration) error
	Invalidate(ctx context.Context, courtID string, dates ...string) error
}

type NoopAvailabilityCache struct{}

func (NoopAvailabilityCache) Get(_ context.Context, _ string, _ string) (*domain.CourtAvailability, bool, error) {
	return nil, false, nil
}

func (NoopAvailabilityCache) Set(_ context.Context, _ *domain.CourtAvailability, _ time.Duration) error {
	return nil
}

func (NoopAvailabilityCache) Invalidate(_ context.Context, _ string, _ ...string) error {
	return nil
}

func availabilityKey(courtID string, date string) string {
	return "availability:" + courtID + ":" + date
}
