package port

import (
	"context"

	"yield_dashboard/internal/domain/entity"
)

// MetricsService normalizes upstream yield and balance payloads into the
// internal report shapes.
type MetricsService interface {
	// GetMetrics aggregates yield and balances across the configured assets
	// into a full report with history.
	GetMetrics(ctx context.Context, userID string) (*entity.MetricsReport, error)

	// GetYieldMetrics builds the single-fund summary used by the dashboard
	// headline cards.
	GetYieldMetrics(ctx context.Context, userID string) (*entity.MetricsReport, error)

	// GetTokenBalances returns the normalized base-asset balances for a user.
	GetTokenBalances(ctx context.Context, userID string) (*entity.MetricsReport, error)
}
