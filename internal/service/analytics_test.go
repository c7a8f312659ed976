package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/JonnyWalker81/focusmetrics/internal/cache"
	"github.com/JonnyWalker81/focusmetrics/internal/models"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type analyticsFixture struct {
	svc        AnalyticsService
	activities *mockActivityRepository
	wellness   *mockWellnessRepository
	backend    *countingBackend
	store      *cache.Store
	clock      *testClock
}

func newAnalyticsFixture(t *testing.T, mutate func(*AnalyticsConfig)) *analyticsFixture {
	t.Helper()

	clock := &testClock{now: time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)}
	backend := &countingBackend{Backend: cache.NewMemoryBackend().WithClock(clock.Now)}
	store := cache.NewStore(backend, cache.WithLogger(testLogger()))

	cfg := DefaultAnalyticsConfig()
	cfg.Now = clock.Now
	if mutate != nil {
		mutate(&cfg)
	}

	f := &analyticsFixture{
		activities: &mockActivityRepository{},
		wellness:   &mockWellnessRepository{},
		backend:    backend,
		store:      store,
		clock:      clock,
	}
	f.svc = NewAnalyticsService(f.activities, f.wellness, store, cfg, testLogger())
	return f
}

func (f *analyticsFixture) addActivity(userID string, ago time.Duration, duration, score int) {
	f.activities.records = append(f.activities.records, models.ActivityRecord{
		UserID:            userID,
		Category:          "coding",
		ProductivityScore: score,
		FocusQuality:      intPtr(score),
		DurationSeconds:   duration,
		StartTime:         f.clock.Now().Add(-ago),
	})
}

func TestGetProductivityMetrics_MissThenHit(t *testing.T) {
	f := newAnalyticsFixture(t, nil)
	f.addActivity("u1", 3*time.Hour, 60, 80)
	f.addActivity("u1", 2*time.Hour, 120, 50)
	f.addActivity("u1", time.Hour, 60, 100)

	first, err := f.svc.GetProductivityMetrics(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetProductivityMetrics failed: %v", err)
	}
	if first.ProductivityScore != 70 {
		t.Errorf("Expected productivity score 70, got %d", first.ProductivityScore)
	}
	if f.activities.lastUntil.Sub(f.activities.lastSince) != MetricsLookback {
		t.Errorf("Expected a %v window, got %v", MetricsLookback, f.activities.lastUntil.Sub(f.activities.lastSince))
	}

	second, err := f.svc.GetProductivityMetrics(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetProductivityMetrics failed: %v", err)
	}
	if f.activities.calls() != 1 {
		t.Errorf("Expected the second read to be served from cache, source called %d times", f.activities.calls())
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected cached value %+v, got %+v", first, second)
	}

	cached, ok := cache.Get[models.ProductivityMetrics](context.Background(), f.store, "user_analytics:u1")
	if !ok || cached.ProductivityScore != 70 {
		t.Errorf("Expected user_analytics:u1 to hold the computed metrics, got %+v (ok=%v)", cached, ok)
	}
}

func TestGetProductivityMetrics_RecomputesAfterTTL(t *testing.T) {
	f := newAnalyticsFixture(t, nil)
	f.addActivity("u1", time.Hour, 600, 90)

	ctx := context.Background()
	if _, err := f.svc.GetProductivityMetrics(ctx, "u1"); err != nil {
		t.Fatalf("GetProductivityMetrics failed: %v", err)
	}

	f.clock.Advance(59 * time.Minute)
	if _, err := f.svc.GetProductivityMetrics(ctx, "u1"); err != nil {
		t.Fatalf("GetProductivityMetrics failed: %v", err)
	}
	if f.activities.calls() != 1 {
		t.Fatalf("Expected a hit within the TTL, source called %d times", f.activities.calls())
	}

	f.clock.Advance(2 * time.Minute)
	if _, err := f.svc.GetProductivityMetrics(ctx, "u1"); err != nil {
		t.Fatalf("GetProductivityMetrics failed: %v", err)
	}
	if f.activities.calls() != 2 {
		t.Errorf("Expected a recompute after the TTL, source called %d times", f.activities.calls())
	}
}

func TestGetProductivityMetrics_EmptyWindow(t *testing.T) {
	f := newAnalyticsFixture(t, nil)

	metrics, err := f.svc.GetProductivityMetrics(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetProductivityMetrics failed: %v", err)
	}
	if metrics.ProductivityScore != 0 || metrics.TotalFocusTimeMinutes != 0 || metrics.AverageFocusQuality != 0 {
		t.Errorf("Expected zero metrics, got %+v", metrics)
	}
	if metrics.CategoryBreakdown == nil || len(metrics.CategoryBreakdown) != 0 {
		t.Errorf("Expected an empty breakdown, got %v", metrics.CategoryBreakdown)
	}
}

func TestGetProductivityMetrics_MalformedCacheIsOverwritten(t *testing.T) {
	f := newAnalyticsFixture(t, nil)
	f.addActivity("u1", time.Hour, 600, 75)

	ctx := context.Background()
	if err := f.backend.Set(ctx, "user_analytics:u1", []byte(`{"productivity_score":"oops"`), time.Hour); err != nil {
		t.Fatalf("seeding cache failed: %v", err)
	}

	metrics, err := f.svc.GetProductivityMetrics(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProductivityMetrics failed: %v", err)
	}
	if metrics.ProductivityScore != 75 {
		t.Errorf("Expected recomputed score 75, got %d", metrics.ProductivityScore)
	}

	cached, ok := cache.Get[models.ProductivityMetrics](ctx, f.store, "user_analytics:u1")
	if !ok || cached.ProductivityScore != 75 {
		t.Errorf("Expected the malformed entry to be overwritten, got %+v (ok=%v)", cached, ok)
	}
}

func TestGetProductivityMetrics_SourceFailure(t *testing.T) {
	f := newAnalyticsFixture(t, nil)
	f.activities.err = errSourceDown

	_, err := f.svc.GetProductivityMetrics(context.Background(), "u1")
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Errorf("Expected ErrDependencyUnavailable, got %v", err)
	}
	if !errors.Is(err, errSourceDown) {
		t.Errorf("Expected the source error to be wrapped, got %v", err)
	}

	if _, ok := cache.Get[models.ProductivityMetrics](context.Background(), f.store, "user_analytics:u1"); ok {
		t.Error("Expected nothing to be cached after a failure")
	}
}

func TestGetProductivityMetrics_SourceTimeout(t *testing.T) {
	f := newAnalyticsFixture(t, func(cfg *AnalyticsConfig) {
		cfg.SourceTimeout = 20 * time.Millisecond
	})
	f.activities.entered = make(chan struct{}, 1)
	f.activities.release = make(chan struct{})

	_, err := f.svc.GetProductivityMetrics(context.Background(), "u1")
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Errorf("Expected ErrDependencyUnavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected a deadline error, got %v", err)
	}
}

func TestGetTrends_UnknownPeriodFallsBackToWeek(t *testing.T) {
	f := newAnalyticsFixture(t, nil)
	f.addActivity("u1", 26*time.Hour, 1800, 60)
	f.addActivity("u1", 2*time.Hour, 1800, 80)

	ctx := context.Background()
	points, err := f.svc.GetTrends(ctx, "u1", "fortnight")
	if err != nil {
		t.Fatalf("GetTrends failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("Expected 2 daily points, got %d", len(points))
	}
	if !points[0].PeriodStart.Before(points[1].PeriodStart) {
		t.Error("Expected ascending trend points")
	}
	if got := f.activities.lastUntil.Sub(f.activities.lastSince); got != 7*24*time.Hour {
		t.Errorf("Expected a 7 day lookback, got %v", got)
	}

	if _, ok := cache.Get[[]models.TrendPoint](ctx, f.store, "productivity_trends:u1:week"); !ok {
		t.Error("Expected trends cached under the resolved period")
	}

	if _, err := f.svc.GetTrends(ctx, "u1", "week"); err != nil {
		t.Fatalf("GetTrends failed: %v", err)
	}
	if f.activities.calls() != 1 {
		t.Errorf("Expected week and the fallback to share a cache entry, source called %d times", f.activities.calls())
	}
}

func TestGetTrends_PeriodsAreCachedSeparately(t *testing.T) {
	f := newAnalyticsFixture(t, nil)
	f.addActivity("u1", time.Hour, 600, 70)

	ctx := context.Background()
	for _, period := range []string{"day", "month", "year"} {
		if _, err := f.svc.GetTrends(ctx, "u1", period); err != nil {
			t.Fatalf("GetTrends(%s) failed: %v", period, err)
		}
	}
	if f.activities.calls() != 3 {
		t.Errorf("Expected one computation per period, got %d", f.activities.calls())
	}
}

func correlationRows(sleep []float64, productivity []float64) []models.WellnessActivityRow {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]models.WellnessActivityRow, len(sleep))
	for i := range sleep {
		rows[i] = models.WellnessActivityRow{
			Date:            start.AddDate(0, 0, i),
			SleepHours:      floatPtr(sleep[i]),
			AvgProductivity: floatPtr(productivity[i]),
			SessionCount:    1,
		}
	}
	return rows
}

func TestGetSleepCorrelation_StrongPositive(t *testing.T) {
	f := newAnalyticsFixture(t, nil)
	f.wellness.rows = correlationRows(
		[]float64{6, 7, 8, 9, 6, 7, 8},
		[]float64{50, 60, 75, 70, 55, 62, 78},
	)

	result, err := f.svc.GetSleepCorrelation(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetSleepCorrelation failed: %v", err)
	}
	if result.Coefficient <= 0.5 || result.Coefficient > 1 {
		t.Errorf("Expected a strong positive coefficient, got %f", result.Coefficient)
	}
	if len(result.Insights) < 2 {
		t.Errorf("Expected sleep and optimal duration insights, got %v", result.Insights)
	}
	if want := f.clock.Now().Add(-CorrelationLookback); !f.wellness.lastSince.Equal(want) {
		t.Errorf("Expected wellness since %v, got %v", want, f.wellness.lastSince)
	}

	if _, err := f.svc.GetSleepCorrelation(context.Background(), "u1"); err != nil {
		t.Fatalf("GetSleepCorrelation failed: %v", err)
	}
	if f.wellness.joinCalls != 1 {
		t.Errorf("Expected a cache hit, join called %d times", f.wellness.joinCalls)
	}
}

func TestGetSleepCorrelation_InsufficientData(t *testing.T) {
	f := newAnalyticsFixture(t, nil)
	f.wellness.rows = correlationRows(
		[]float64{6, 7, 8, 9, 7},
		[]float64{50, 60, 75, 70, 65},
	)

	result, err := f.svc.GetSleepCorrelation(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetSleepCorrelation failed: %v", err)
	}
	if result.Coefficient != 0 {
		t.Errorf("Expected coefficient 0, got %f", result.Coefficient)
	}
	if len(result.Insights) != 0 {
		t.Errorf("Expected no insights, got %v", result.Insights)
	}
	if len(result.Rows) != 5 {
		t.Errorf("Expected the raw rows to be returned, got %d", len(result.Rows))
	}
}

func TestGetSleepCorrelation_SourceFailure(t *testing.T) {
	f := newAnalyticsFixture(t, nil)
	f.wellness.err = errSourceDown

	if _, err := f.svc.GetSleepCorrelation(context.Background(), "u1"); !errors.Is(err, ErrDependencyUnavailable) {
		t.Errorf("Expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestGetPerformanceWindows(t *testing.T) {
	f := newAnalyticsFixture(t, nil)
	day := time.Date(2024, 3, 19, 0, 0, 0, 0, time.UTC)
	for _, r := range []struct {
		hour  int
		score int
	}{{9, 90}, {9, 90}, {14, 60}, {20, 50}} {
		f.activities.records = append(f.activities.records, models.ActivityRecord{
			UserID: "u1", Category: "coding", ProductivityScore: r.score, DurationSeconds: 600,
			StartTime: day.Add(time.Duration(r.hour) * time.Hour),
		})
	}

	windows, err := f.svc.GetPerformanceWindows(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetPerformanceWindows failed: %v", err)
	}
	if len(windows.Windows) != 1 || windows.Windows[0].HourOfDay != 9 {
		t.Fatalf("Expected a single 9 AM window, got %+v", windows.Windows)
	}
	if windows.Windows[0].SessionCount != 2 {
		t.Errorf("Expected 2 sessions at 9 AM, got %d", windows.Windows[0].SessionCount)
	}
	if len(windows.Recommendations) != 1 {
		t.Errorf("Expected one recommendation, got %v", windows.Recommendations)
	}
	if got := f.activities.lastUntil.Sub(f.activities.lastSince); got != WindowsLookback {
		t.Errorf("Expected a %v window, got %v", WindowsLookback, got)
	}
}

func TestRefreshMetrics_OverwritesWithoutReading(t *testing.T) {
	f := newAnalyticsFixture(t, nil)
	f.addActivity("u1", time.Hour, 600, 88)

	ctx := context.Background()
	cache.Set(ctx, f.store, "user_analytics:u1", models.ProductivityMetrics{ProductivityScore: 1}, time.Hour)
	readsBefore := f.backend.getCount()

	refreshed, err := f.svc.RefreshMetrics(ctx, "u1")
	if err != nil {
		t.Fatalf("RefreshMetrics failed: %v", err)
	}
	if refreshed.ProductivityScore != 88 {
		t.Errorf("Expected score 88, got %d", refreshed.ProductivityScore)
	}
	if f.backend.getCount() != readsBefore {
		t.Error("Expected RefreshMetrics not to read the cache")
	}

	metrics, err := f.svc.GetProductivityMetrics(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProductivityMetrics failed: %v", err)
	}
	if metrics.ProductivityScore != 88 {
		t.Errorf("Expected the refreshed value to be served, got %d", metrics.ProductivityScore)
	}
	if f.activities.calls() != 1 {
		t.Errorf("Expected the read to hit the refreshed entry, source called %d times", f.activities.calls())
	}
}

func TestReadThrough_CoalescesConcurrentMisses(t *testing.T) {
	f := newAnalyticsFixture(t, nil)
	f.addActivity("u1", time.Hour, 600, 70)
	f.activities.entered = make(chan struct{}, 10)
	f.activities.release = make(chan struct{})

	const callers = 5
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.GetProductivityMetrics(context.Background(), "u1")
			errs <- err
		}()
	}

	<-f.activities.entered
	for f.backend.getCount() < callers {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(f.activities.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	}
	if f.activities.calls() != 1 {
		t.Errorf("Expected one shared computation, got %d", f.activities.calls())
	}
}

func TestReadThrough_WithoutCoalescing(t *testing.T) {
	f := newAnalyticsFixture(t, func(cfg *AnalyticsConfig) {
		cfg.CoalesceMisses = false
	})
	f.addActivity("u1", time.Hour, 600, 70)
	f.activities.entered = make(chan struct{}, 10)
	f.activities.release = make(chan struct{})

	const callers = 3
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.GetProductivityMetrics(context.Background(), "u1"); err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}

	for i := 0; i < callers; i++ {
		<-f.activities.entered
	}
	close(f.activities.release)
	wg.Wait()

	if f.activities.calls() != callers {
		t.Errorf("Expected %d independent computations, got %d", callers, f.activities.calls())
	}
}

func TestReadThrough_CallerCancellationDoesNotAbortSharedComputation(t *testing.T) {
	f := newAnalyticsFixture(t, nil)
	f.addActivity("u1", time.Hour, 600, 64)
	f.activities.entered = make(chan struct{}, 1)
	f.activities.release = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.svc.GetProductivityMetrics(ctx, "u1")
		done <- err
	}()

	<-f.activities.entered
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	close(f.activities.release)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if cached, ok := cache.Get[models.ProductivityMetrics](context.Background(), f.store, "user_analytics:u1"); ok {
			if cached.ProductivityScore != 64 {
				t.Errorf("Expected score 64, got %d", cached.ProductivityScore)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("Expected the detached computation to populate the cache")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
