package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/JonnyWalker81/focusmetrics/internal/cache"
	"github.com/JonnyWalker81/focusmetrics/internal/logger"
	"github.com/JonnyWalker81/focusmetrics/internal/models"
)

// mockActivityRepository is a mock implementation of ActivityRepository for testing
type mockActivityRepository struct {
	mu        sync.Mutex
	records   []models.ActivityRecord
	err       error
	rangeCall int
	lastSince time.Time
	lastUntil time.Time
	created   []*models.ActivityRecord

	// When set, GetByUserIDAndDateRange signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func (m *mockActivityRepository) Create(ctx context.Context, record *models.ActivityRecord) (*models.ActivityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, record)
	m.records = append(m.records, *record)
	return record, nil
}

func (m *mockActivityRepository) GetByUserIDAndDateRange(ctx context.Context, userID string, since, until time.Time) ([]models.ActivityRecord, error) {
	m.mu.Lock()
	m.rangeCall++
	m.lastSince, m.lastUntil = since, until
	entered, release := m.entered, m.release
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []models.ActivityRecord
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockActivityRepository) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rangeCall
}

// mockWellnessRepository is a mock implementation of WellnessRepository for testing
type mockWellnessRepository struct {
	mu        sync.Mutex
	rows      []models.WellnessActivityRow
	upserted  []*models.WellnessRecord
	err       error
	joinCalls int
	lastSince time.Time
}

func (m *mockWellnessRepository) Upsert(ctx context.Context, record *models.WellnessRecord) (*models.WellnessRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.upserted = append(m.upserted, record)
	return record, nil
}

func (m *mockWellnessRepository) GetJoinedWithActivity(ctx context.Context, userID string, sinceDate time.Time) ([]models.WellnessActivityRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joinCalls++
	m.lastSince = sinceDate
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

// countingBackend counts reads to the wrapped backend
type countingBackend struct {
	cache.Backend
	mu   sync.Mutex
	gets int
}

func (b *countingBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	b.gets++
	b.mu.Unlock()
	return b.Backend.Get(ctx, key)
}

func (b *countingBackend) getCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gets
}

type mockDispatcher struct {
	mu      sync.Mutex
	userIDs []string
	accept  bool
}

func (d *mockDispatcher) Dispatch(ctx context.Context, userID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.userIDs = append(d.userIDs, userID)
	return d.accept
}

type mockRefresher struct {
	mu      sync.Mutex
	userIDs []string
	err     error
	done    chan string
}

func (r *mockRefresher) RefreshMetrics(ctx context.Context, userID string) (*models.ProductivityMetrics, error) {
	r.mu.Lock()
	r.userIDs = append(r.userIDs, userID)
	err := r.err
	r.mu.Unlock()
	if r.done != nil {
		r.done <- userID
	}
	if err != nil {
		return nil, err
	}
	return &models.ProductivityMetrics{}, nil
}

var errSourceDown = errors.New("connection refused")

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func testLogger() logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Format: "json", Output: discard{}})
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
