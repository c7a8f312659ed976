package repository

import (
	"context"
	"time"

	"github.com/JonnyWalker81/focusmetrics/internal/models"
)

// ActivityRepository defines the interface for activity record access
type ActivityRepository interface {
	Create(ctx context.Context, record *models.ActivityRecord) (*models.ActivityRecord, error)
	// GetByUserIDAndDateRange returns records with since <= start_time < until, ascending by start time
	GetByUserIDAndDateRange(ctx context.Context, userID string, since, until time.Time) ([]models.ActivityRecord, error)
}

// WellnessRepository defines the interface for wellness log access
type WellnessRepository interface {
	// Upsert creates or replaces the wellness log for the record's user and date
	Upsert(ctx context.Context, record *models.WellnessRecord) (*models.WellnessRecord, error)
	// GetJoinedWithActivity returns wellness days on or after sinceDate, ascending by date,
	// each joined with the activity that started on the following day
	GetJoinedWithActivity(ctx context.Context, userID string, sinceDate time.Time) ([]models.WellnessActivityRow, error)
}
