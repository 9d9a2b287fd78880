package port

import (
	"context"
	"time"

	"yield_dashboard/internal/domain/entity"
)

// DashboardResource identifies one of the independently cached resources.
type DashboardResource string

const (
	ResourceMetrics       DashboardResource = "metrics"
	ResourceTokenBalances DashboardResource = "token-balances"
)

// ResourceSnapshot is the cached value of a resource for one user, together
// with its lifecycle state.
type ResourceSnapshot struct {
	State  entity.ResourceState
	Report *entity.MetricsReport
	Err    error
}

// DashboardOrchestrator coordinates the per-user cached metrics and
// token-balance resources: keyed fetching, invalidation, removal and
// coalesced manual refresh.
type DashboardOrchestrator interface {
	// Subscribe marks a consumer active for the user and triggers the
	// initial fetch. An empty user id disables fetching entirely.
	Subscribe(ctx context.Context, userID string) error

	// Unsubscribe releases an active consumer.
	Unsubscribe(userID string)

	// Snapshot returns the current cached state of one resource.
	Snapshot(userID string, res DashboardResource) ResourceSnapshot

	// Invalidate marks the user's cached resources stale and refetches them
	// for active consumers. A positive delay schedules a second refetch,
	// giving upstream state time to settle after a transaction.
	Invalidate(userID string, delay time.Duration)

	// Remove drops the user's cached resources entirely.
	Remove(userID string)

	// ManualRefresh refetches both resources concurrently. Calls arriving
	// while a refresh for the same user is in flight are coalesced.
	ManualRefresh(ctx context.Context, userID string) error

	// OnAccountChanged dispatches the wallet connection transition:
	// disconnect removes cached data, an account switch invalidates and
	// refetches, anything else is a no-op.
	OnAccountChanged(ctx context.Context, previous, next string)
}
