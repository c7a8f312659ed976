package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/JonnyWalker81/focusmetrics/internal/analytics"
	"github.com/JonnyWalker81/focusmetrics/internal/cache"
	"github.com/JonnyWalker81/focusmetrics/internal/logger"
	"github.com/JonnyWalker81/focusmetrics/internal/models"
	"github.com/JonnyWalker81/focusmetrics/internal/repository"
)

const tracerName = "github.com/JonnyWalker81/focusmetrics/internal/service"

type analyticsService struct {
	activityRepo repository.ActivityRepository
	wellnessRepo repository.WellnessRepository
	cache        *cache.Store
	cfg          AnalyticsConfig
	group        singleflight.Group
	tracer       trace.Tracer
	log          logger.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	activityRepo repository.ActivityRepository,
	wellnessRepo repository.WellnessRepository,
	store *cache.Store,
	cfg AnalyticsConfig,
	log logger.Logger,
) AnalyticsService {
	if log == nil {
		log = logger.Default()
	}
	return &analyticsService{
		activityRepo: activityRepo,
		wellnessRepo: wellnessRepo,
		cache:        store,
		cfg:          cfg.withDefaults(),
		tracer:       otel.Tracer(tracerName),
		log:          log.With(logger.String("component", "analytics")),
	}
}

func (s *analyticsService) GetProductivityMetrics(ctx context.Context, userID string) (*models.ProductivityMetrics, error) {
	metrics, err := readThrough(ctx, s, metricsKey(userID), s.cfg.TTL.Metrics, func(ctx context.Context) (models.ProductivityMetrics, error) {
		return s.computeMetrics(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return &metrics, nil
}

func (s *analyticsService) GetTrends(ctx context.Context, userID, periodName string) ([]models.TrendPoint, error) {
	period := analytics.ResolvePeriod(periodName)

	return readThrough(ctx, s, trendsKey(userID, period.Name), s.cfg.TTL.Trends, func(ctx context.Context) ([]models.TrendPoint, error) {
		now := s.cfg.Now()
		records, err := s.activityRepo.GetByUserIDAndDateRange(ctx, userID, now.Add(-period.Lookback), now)
		if err != nil {
			return nil, dependencyError("get activities", err)
		}
		return analytics.BucketTrends(records, period, s.cfg.Location), nil
	})
}

func (s *analyticsService) GetSleepCorrelation(ctx context.Context, userID string) (*models.CorrelationResult, error) {
	result, err := readThrough(ctx, s, correlationKey(userID), s.cfg.TTL.Correlation, func(ctx context.Context) (models.CorrelationResult, error) {
		since := s.cfg.Now().Add(-CorrelationLookback)
		rows, err := s.wellnessRepo.GetJoinedWithActivity(ctx, userID, since)
		if err != nil {
			return models.CorrelationResult{}, dependencyError("get wellness with activity", err)
		}
		return analytics.AnalyzeWellness(rows), nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *analyticsService) GetPerformanceWindows(ctx context.Context, userID string) (*models.PerformanceWindows, error) {
	windows, err := readThrough(ctx, s, windowsKey(userID), s.cfg.TTL.Windows, func(ctx context.Context) (models.PerformanceWindows, error) {
		now := s.cfg.Now()
		records, err := s.activityRepo.GetByUserIDAndDateRange(ctx, userID, now.Add(-WindowsLookback), now)
		if err != nil {
			return models.PerformanceWindows{}, dependencyError("get activities", err)
		}
		return analytics.DetectPeakWindows(analytics.HourlyAggregates(records, s.cfg.Location)), nil
	})
	if err != nil {
		return nil, err
	}
	return &windows, nil
}

func (s *analyticsService) RefreshMetrics(ctx context.Context, userID string) (*models.ProductivityMetrics, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.refresh_metrics", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	srcCtx, cancel := context.WithTimeout(ctx, s.cfg.SourceTimeout)
	defer cancel()

	metrics, err := s.computeMetrics(srcCtx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh failed")
		return nil, err
	}

	cache.Set(ctx, s.cache, metricsKey(userID), metrics, s.cfg.TTL.Metrics)
	return &metrics, nil
}

func (s *analyticsService) computeMetrics(ctx context.Context, userID string) (models.ProductivityMetrics, error) {
	now := s.cfg.Now()
	records, err := s.activityRepo.GetByUserIDAndDateRange(ctx, userID, now.Add(-MetricsLookback), now)
	if err != nil {
		return models.ProductivityMetrics{}, dependencyError("get activities", err)
	}
	return analytics.ComputeProductivityMetrics(records, s.cfg.CategoryAverage), nil
}

// readThrough serves key from the cache, computing and storing it on a miss.
// With coalescing enabled, concurrent misses for the same key share one computation.
func readThrough[T any](ctx context.Context, s *analyticsService, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.read_through", trace.WithAttributes(
		attribute.String("cache.key", key),
	))
	defer span.End()

	if cached, ok := cache.Get[T](ctx, s.cache, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.log.WithContext(ctx).Debug("cache hit", logger.String("key", key))
		return cached, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))
	s.log.WithContext(ctx).Debug("cache miss", logger.String("key", key))

	var (
		value T
		err   error
	)
	if s.cfg.CoalesceMisses {
		value, err = coalesced(ctx, s, key, ttl, compute)
	} else {
		value, err = computeAndStore(ctx, s, key, ttl, compute)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compute failed")
		return value, err
	}
	return value, nil
}

func coalesced[T any](ctx context.Context, s *analyticsService, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	var zero T

	// The shared computation must outlive any single caller that gives up
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return computeAndStore(detached, s, key, ttl, compute)
	})

	select {
	case <-ctx.Done():
		return zero, fmt.Errorf("waiting for %s: %w", key, ctx.Err())
	case res := <-ch:
		if res.Shared {
			trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("cache.coalesced", true))
		}
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func computeAndStore[T any](ctx context.Context, s *analyticsService, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	srcCtx, cancel := context.WithTimeout(ctx, s.cfg.SourceTimeout)
	defer cancel()

	start := time.Now()
	value, err := compute(srcCtx)
	if err != nil {
		s.log.WithContext(ctx).Warn("analytics computation failed",
			logger.String("key", key),
			logger.Err(err),
		)
		return value, err
	}

	s.log.WithContext(ctx).Debug("analytics computed",
		logger.String("key", key),
		logger.Duration("duration", time.Since(start)),
	)
	cache.Set(ctx, s.cache, key, value, ttl)
	return value, nil
}
