package service

import (
	"context"

	"github.com/JonnyWalker81/focusmetrics/internal/models"
)

// AnalyticsService serves derived analytics through the cache
type AnalyticsService interface {
	GetProductivityMetrics(ctx context.Context, userID string) (*models.ProductivityMetrics, error)
	GetTrends(ctx context.Context, userID, period string) ([]models.TrendPoint, error)
	GetSleepCorrelation(ctx context.Context, userID string) (*models.CorrelationResult, error)
	GetPerformanceWindows(ctx context.Context, userID string) (*models.PerformanceWindows, error)
	// RefreshMetrics recomputes the productivity metrics and overwrites the cached entry
	RefreshMetrics(ctx context.Context, userID string) (*models.ProductivityMetrics, error)
}

// ActivityService defines the interface for activity ingestion
type ActivityService interface {
	RecordActivity(ctx context.Context, userID string, req *models.CreateActivityRequest) (*models.ActivityRecord, error)
}

// WellnessService defines the interface for wellness ingestion
type WellnessService interface {
	LogWellness(ctx context.Context, userID string, req *models.LogWellnessRequest) (*models.WellnessRecord, error)
}

// RefreshDispatcher schedules a background metrics refresh without blocking.
// It reports false when the job could not be queued.
type RefreshDispatcher interface {
	Dispatch(ctx context.Context, userID string) bool
}

// MetricsRefresher recomputes cached metrics for a user
type MetricsRefresher interface {
	RefreshMetrics(ctx context.Context, userID string) (*models.ProductivityMetrics, error)
}
